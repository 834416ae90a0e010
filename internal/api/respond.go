package api

import (
	"encoding/json"
	"net/http"
	"regexp"
)

const maxRequestBodySize = 1 << 20 // 1MB

// errorBody is the error envelope every endpoint shares.
type errorBody struct {
	Error    bool   `json:"error"`
	Mensaje  string `json:"mensaje"`
	Codigo   int    `json:"codigo"`
	Detalles any    `json:"detalles,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes the Spanish error envelope. detalles may be nil.
func respondError(w http.ResponseWriter, codigo int, mensaje string, detalles any) {
	respondJSON(w, codigo, errorBody{
		Error:    true,
		Mensaje:  mensaje,
		Codigo:   codigo,
		Detalles: detalles,
	})
}

// corsMiddleware answers preflights and marks every response as
// cross-origin accessible, matching the gateway the clients were built
// against.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validEmail(correo string) bool {
	return emailPattern.MatchString(correo)
}

// decodeBody decodes a JSON request body into target with a size cap.
func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
