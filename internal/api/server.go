// Package api exposes the HTTP surface of the companion-agent service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tecsup/agente/internal/agent"
	"github.com/tecsup/agente/internal/repo"
)

// Deps bundles everything the handlers need. It is constructed once at
// startup and passed down explicitly.
type Deps struct {
	Repos        *repo.Repositories
	Agent        *agent.Service
	Tables       repo.Tables
	LimiteTareas int
	Log          *slog.Logger
}

// NewHandler builds the router for both products. Static segments win over
// the {producto} wildcard, so the shared resource routes coexist with the
// per-product ones.
func NewHandler(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/health", handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/{producto}/contextos", handleContextos(d))
		r.Post("/{producto}/consulta", handleConsulta(d))

		r.Post("/usuarios/autorizacion", handleAutorizacion(d))
		r.Get("/usuarios/{correo}", handleGetUsuario(d))
		r.Put("/usuarios/{correo}", handlePutUsuario(d))

		r.Post("/historial", handleHistorial(d))
		r.Post("/memoria", handleMemoria(d))

		r.Get("/tareas", handleListTareas(d))
		r.Post("/tareas", handleCreateTarea(d))
		r.Put("/tareas/{id}", handleUpdateTarea(d))
		r.Delete("/tareas/{id}", handleDeleteTarea(d))

		r.Get("/recetas", handleListRecetas(d))
		r.Post("/recetas", handleCreateReceta(d))
		r.Put("/recetas/{id}", handleUpdateReceta(d))
		r.Delete("/recetas/{id}", handleDeleteReceta(d))

		r.Put("/perfil/{recurso}", handlePutPerfil(d))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
