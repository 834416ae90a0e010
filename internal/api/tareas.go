package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tecsup/agente/internal/auth"
	"github.com/tecsup/agente/internal/repo"
	"github.com/tecsup/agente/internal/store"
)

// ownerFromQuery resolves the resource owner: explicit ?correo= first, then
// the bearer token identity.
func ownerFromQuery(r *http.Request) string {
	if correo := r.URL.Query().Get("correo"); correo != "" {
		return correo
	}
	return auth.EmailFromRequest(r)
}

func handleListTareas(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		correo := ownerFromQuery(r)
		if correo == "" || !validEmail(correo) {
			respondError(w, http.StatusBadRequest, "El campo 'correo' es requerido y debe ser válido", nil)
			return
		}

		tareas, err := d.Repos.Tareas.ByUser(correo, d.LimiteTareas)
		if err != nil {
			d.Log.Error("listing tasks failed", "correo", correo, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}
		if tareas == nil {
			tareas = []repo.Tarea{}
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"tareas": tareas,
			"total":  len(tareas),
		})
	}
}

func handleCreateTarea(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tarea repo.Tarea
		if err := decodeBody(w, r, &tarea); err != nil {
			respondError(w, http.StatusBadRequest, "El cuerpo de la petición no es JSON válido", nil)
			return
		}
		if tarea.Correo == "" {
			tarea.Correo = auth.EmailFromRequest(r)
		}
		if tarea.Correo == "" || !validEmail(tarea.Correo) {
			respondError(w, http.StatusBadRequest, "El campo 'correo' es requerido y debe ser válido", nil)
			return
		}
		if tarea.Texto == "" {
			respondError(w, http.StatusBadRequest, "El campo 'texto' es requerido", nil)
			return
		}

		if !requireUser(w, d, tarea.Correo) {
			return
		}

		saved, err := d.Repos.Tareas.Put(tarea)
		if err != nil {
			d.Log.Error("saving task failed", "correo", tarea.Correo, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		respondJSON(w, http.StatusCreated, saved)
	}
}

func handleUpdateTarea(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var tarea repo.Tarea
		if err := decodeBody(w, r, &tarea); err != nil {
			respondError(w, http.StatusBadRequest, "El cuerpo de la petición no es JSON válido", nil)
			return
		}
		if tarea.Correo == "" {
			tarea.Correo = auth.EmailFromRequest(r)
		}
		if tarea.Correo == "" || !validEmail(tarea.Correo) {
			respondError(w, http.StatusBadRequest, "El campo 'correo' es requerido y debe ser válido", nil)
			return
		}

		if _, err := d.Repos.Tareas.Get(tarea.Correo, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(w, http.StatusNotFound, "Tarea no encontrada", nil)
				return
			}
			d.Log.Error("loading task failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		tarea.ID = id
		saved, err := d.Repos.Tareas.Put(tarea)
		if err != nil {
			d.Log.Error("updating task failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		respondJSON(w, http.StatusOK, saved)
	}
}

func handleDeleteTarea(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		correo := ownerFromQuery(r)
		if correo == "" || !validEmail(correo) {
			respondError(w, http.StatusBadRequest, "El campo 'correo' es requerido y debe ser válido", nil)
			return
		}

		if err := d.Repos.Tareas.Delete(correo, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(w, http.StatusNotFound, "Tarea no encontrada", nil)
				return
			}
			d.Log.Error("deleting task failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"id": id, "eliminado": true})
	}
}
