package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tecsup/agente/internal/repo"
	"github.com/tecsup/agente/internal/store"
)

type autorizacionRequest struct {
	Correo       string `json:"correo"`
	Autorizacion bool   `json:"autorizacion"`
}

func handleAutorizacion(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req autorizacionRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "El cuerpo de la petición no es JSON válido", nil)
			return
		}
		if req.Correo == "" || !validEmail(req.Correo) {
			respondError(w, http.StatusBadRequest, "El campo 'correo' es requerido y debe ser válido", nil)
			return
		}

		if err := d.Repos.Users.SetAuthorization(req.Correo, req.Autorizacion); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(w, http.StatusNotFound, fmt.Sprintf("Usuario con correo '%s' no encontrado", req.Correo), nil)
				return
			}
			d.Log.Error("updating authorization failed", "correo", req.Correo, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"correo":       req.Correo,
			"autorizacion": req.Autorizacion,
			"actualizado":  true,
		})
	}
}

func handleGetUsuario(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		correo := chi.URLParam(r, "correo")
		if !validEmail(correo) {
			respondError(w, http.StatusBadRequest, "El formato del correo es inválido", nil)
			return
		}

		user, err := d.Repos.Users.GetByEmail(correo)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondError(w, http.StatusNotFound, fmt.Sprintf("Usuario con correo '%s' no encontrado", correo), nil)
				return
			}
			d.Log.Error("loading user failed", "correo", correo, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		respondJSON(w, http.StatusOK, user)
	}
}

func handlePutUsuario(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		correo := chi.URLParam(r, "correo")
		if !validEmail(correo) {
			respondError(w, http.StatusBadRequest, "El formato del correo es inválido", nil)
			return
		}

		var user repo.User
		if err := decodeBody(w, r, &user); err != nil {
			respondError(w, http.StatusBadRequest, "El cuerpo de la petición no es JSON válido", nil)
			return
		}
		// The path is authoritative for identity.
		user.Correo = correo

		if err := d.Repos.Users.Put(user); err != nil {
			d.Log.Error("saving user failed", "correo", correo, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		respondJSON(w, http.StatusOK, user)
	}
}
