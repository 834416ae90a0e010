package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tecsup/agente/internal/auth"
	"github.com/tecsup/agente/internal/repo"
	"github.com/tecsup/agente/internal/store"
)

func handleListRecetas(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		correo := ownerFromQuery(r)
		if correo == "" || !validEmail(correo) {
			respondError(w, http.StatusBadRequest, "El campo 'correo' es requerido y debe ser válido", nil)
			return
		}

		recetas, err := d.Repos.Recetas.ByUser(correo)
		if err != nil {
			d.Log.Error("listing prescriptions failed", "correo", correo, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}
		if recetas == nil {
			recetas = []repo.Receta{}
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"recetas": recetas,
			"total":   len(recetas),
		})
	}
}

func handleCreateReceta(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var receta repo.Receta
		if err := decodeBody(w, r, &receta); err != nil {
			respondError(w, http.StatusBadRequest, "El cuerpo de la petición no es JSON válido", nil)
			return
		}
		if receta.Correo == "" {
			receta.Correo = auth.EmailFromRequest(r)
		}
		if receta.Correo == "" || !validEmail(receta.Correo) {
			respondError(w, http.StatusBadRequest, "El campo 'correo' es requerido y debe ser válido", nil)
			return
		}
		if len(receta.Medicamentos) == 0 {
			respondError(w, http.StatusBadRequest, "La receta debe incluir al menos un medicamento", nil)
			return
		}
		for _, med := range receta.Medicamentos {
			if med.Producto == "" {
				respondError(w, http.StatusBadRequest, "Cada medicamento debe indicar 'producto'", nil)
				return
			}
		}

		if !requireUser(w, d, receta.Correo) {
			return
		}

		saved, err := d.Repos.Recetas.Put(receta)
		if err != nil {
			d.Log.Error("saving prescription failed", "correo", receta.Correo, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		respondJSON(w, http.StatusCreated, saved)
	}
}

func handleUpdateReceta(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var receta repo.Receta
		if err := decodeBody(w, r, &receta); err != nil {
			respondError(w, http.StatusBadRequest, "El cuerpo de la petición no es JSON válido", nil)
			return
		}
		if receta.Correo == "" {
			receta.Correo = auth.EmailFromRequest(r)
		}
		if receta.Correo == "" || !validEmail(receta.Correo) {
			respondError(w, http.StatusBadRequest, "El campo 'correo' es requerido y debe ser válido", nil)
			return
		}

		if _, err := d.Repos.Recetas.Get(receta.Correo, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(w, http.StatusNotFound, "Receta no encontrada", nil)
				return
			}
			d.Log.Error("loading prescription failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		receta.ID = id
		saved, err := d.Repos.Recetas.Put(receta)
		if err != nil {
			d.Log.Error("updating prescription failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		respondJSON(w, http.StatusOK, saved)
	}
}

func handleDeleteReceta(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		correo := ownerFromQuery(r)
		if correo == "" || !validEmail(correo) {
			respondError(w, http.StatusBadRequest, "El campo 'correo' es requerido y debe ser válido", nil)
			return
		}

		if err := d.Repos.Recetas.Delete(correo, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(w, http.StatusNotFound, "Receta no encontrada", nil)
				return
			}
			d.Log.Error("deleting prescription failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"id": id, "eliminado": true})
	}
}
