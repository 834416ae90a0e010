package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tecsup/agente/internal/repo"
)

// handlePutPerfil upserts one of the student profile resources. The whole
// record is replaced, never merged.
func handlePutPerfil(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recurso := chi.URLParam(r, "recurso")

		var correo string
		var save func() error

		switch recurso {
		case "academico":
			var datos repo.DatosAcademicos
			if err := decodeBody(w, r, &datos); err != nil {
				respondError(w, http.StatusBadRequest, "El cuerpo de la petición no es JSON válido", nil)
				return
			}
			correo = datos.Correo
			save = func() error { return d.Repos.Academic.Put(datos.Correo, datos) }
		case "emocional":
			var datos repo.DatosEmocionales
			if err := decodeBody(w, r, &datos); err != nil {
				respondError(w, http.StatusBadRequest, "El cuerpo de la petición no es JSON válido", nil)
				return
			}
			correo = datos.Correo
			save = func() error { return d.Repos.Emotional.Put(datos.Correo, datos) }
		case "socioeconomico":
			var datos repo.DatosSocioeconomicos
			if err := decodeBody(w, r, &datos); err != nil {
				respondError(w, http.StatusBadRequest, "El cuerpo de la petición no es JSON válido", nil)
				return
			}
			correo = datos.Correo
			save = func() error { return d.Repos.Socioeconomic.Put(datos.Correo, datos) }
		default:
			respondError(w, http.StatusNotFound, "Recurso de perfil desconocido: "+recurso, nil)
			return
		}

		if correo == "" || !validEmail(correo) {
			respondError(w, http.StatusBadRequest, "El campo 'correo' es requerido y debe ser válido", nil)
			return
		}
		if !requireUser(w, d, correo) {
			return
		}

		if err := save(); err != nil {
			d.Log.Error("saving profile failed", "recurso", recurso, "correo", correo, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"recurso":     recurso,
			"correo":      correo,
			"actualizado": true,
		})
	}
}
