package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tecsup/agente/internal/agent"
	"github.com/tecsup/agente/internal/auth"
	"github.com/tecsup/agente/internal/store"
)

const maxMensajeChars = 5000

func productFromURL(r *http.Request) (agent.Product, bool) {
	producto := agent.Product(chi.URLParam(r, "producto"))
	return producto, agent.KnownProduct(producto)
}

func handleContextos(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		producto, ok := productFromURL(r)
		if !ok {
			respondError(w, http.StatusNotFound, fmt.Sprintf("Producto '%s' no encontrado", chi.URLParam(r, "producto")), nil)
			return
		}

		modes := agent.Modes(producto)
		nombres := make([]string, len(modes))
		descripciones := make(map[string]string, len(modes))
		tablas := make(map[string][]string, len(modes))
		for i, m := range modes {
			nombres[i] = string(m)
			descripciones[string(m)] = m.Description()
			cctx := &agent.Context{Producto: producto, Modo: m}
			tablas[string(m)] = cctx.RequiredTables(d.Tables)
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"contextos":         nombres,
			"total":             len(nombres),
			"descripciones":     descripciones,
			"tablas_requeridas": tablas,
		})
	}
}

type consultaRequest struct {
	Correo   string `json:"correo"`
	Contexto string `json:"contexto"`
	Mensaje  string `json:"mensaje"`
}

func handleConsulta(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		producto, ok := productFromURL(r)
		if !ok {
			respondError(w, http.StatusNotFound, fmt.Sprintf("Producto '%s' no encontrado", chi.URLParam(r, "producto")), nil)
			return
		}

		var req consultaRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "El cuerpo de la petición no es JSON válido", nil)
			return
		}

		correo := req.Correo
		if correo == "" {
			correo = auth.EmailFromRequest(r)
		}

		var errores []string
		if correo == "" {
			errores = append(errores, "El campo 'correo' es requerido")
		} else if !validEmail(correo) {
			errores = append(errores, "El formato del correo es inválido")
		}
		if req.Contexto == "" {
			errores = append(errores, "El campo 'contexto' es requerido")
		}
		if req.Mensaje == "" {
			errores = append(errores, "El campo 'mensaje' es requerido")
		} else if len([]rune(req.Mensaje)) > maxMensajeChars {
			errores = append(errores, "El mensaje no puede exceder 5000 caracteres")
		}
		if len(errores) > 0 {
			respondError(w, http.StatusBadRequest, "Errores de validación", errores)
			return
		}

		res, err := d.Agent.Consult(r.Context(), producto, req.Contexto, correo, req.Mensaje)
		if err != nil {
			var unknownMode *agent.UnknownModeError
			switch {
			case errors.As(err, &unknownMode):
				respondError(w, http.StatusBadRequest, unknownMode.Error(), nil)
			case errors.Is(err, store.ErrNotFound):
				respondError(w, http.StatusNotFound, fmt.Sprintf("Usuario con correo '%s' no encontrado", correo), nil)
			case errors.Is(err, agent.ErrAutorizacionRequerida):
				respondError(w, http.StatusForbidden, "El usuario no ha autorizado la recopilación de datos", nil)
			default:
				d.Log.Error("consulta failed", "producto", producto, "contexto", req.Contexto, "error", err)
				respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			}
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"respuesta":          res.Respuesta,
			"contexto":           string(res.Contexto),
			"timestamp":          res.Timestamp.UTC().Format(time.RFC3339),
			"historial_guardado": res.ResumenGuardado,
			"usuario":            map[string]string{"correo": correo},
		})
	}
}
