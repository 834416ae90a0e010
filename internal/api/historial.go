package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tecsup/agente/internal/auth"
	"github.com/tecsup/agente/internal/repo"
)

// historialRequest carries one day of device measurements. Sensor and
// wearable bags overlap; wearable values win when both report a metric.
type historialRequest struct {
	Correo    string                 `json:"correo"`
	Fecha     string                 `json:"fecha"`
	Sensores  map[string]json.Number `json:"sensores"`
	Wearables map[string]json.Number `json:"wearables"`
}

// metricAliases maps accepted payload keys to canonical metric names.
// Later entries win when a bag carries both spellings.
var metricAliases = []struct{ alias, canonical string }{
	{"pasos", "pasos"},
	{"horas_de_sueno", "horas_sueno"},
	{"horas_sueno", "horas_sueno"},
	{"ritmo_cardiaco", "ritmo_cardiaco"},
}

func flattenMetrics(req historialRequest) map[string]json.Number {
	metricas := make(map[string]json.Number)
	for _, bag := range []map[string]json.Number{req.Sensores, req.Wearables} {
		for _, m := range metricAliases {
			if v, ok := bag[m.alias]; ok && v != "" {
				metricas[m.canonical] = v
			}
		}
	}
	return metricas
}

func handleHistorial(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req historialRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "El cuerpo de la petición no es JSON válido", nil)
			return
		}

		correo := req.Correo
		if correo == "" {
			correo = auth.EmailFromRequest(r)
		}
		if correo == "" || !validEmail(correo) {
			respondError(w, http.StatusBadRequest, "El campo 'correo' es requerido y debe ser válido", nil)
			return
		}

		metricas := flattenMetrics(req)
		if len(metricas) == 0 {
			respondError(w, http.StatusBadRequest, "Se requiere al menos una métrica en 'sensores' o 'wearables'", nil)
			return
		}

		if !requireUser(w, d, correo) {
			return
		}

		fecha := req.Fecha
		if fecha == "" {
			fecha = time.Now().UTC().Format(time.RFC3339)
		}

		saved, err := d.Repos.Interactions.Append(repo.Interaction{
			Correo:   correo,
			Fecha:    fecha,
			Metricas: metricas,
		})
		if err != nil {
			d.Log.Error("saving metrics record failed", "correo", correo, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		respondJSON(w, http.StatusCreated, map[string]any{
			"id":       saved.ID,
			"correo":   saved.Correo,
			"fecha":    saved.Fecha,
			"metricas": saved.Metricas,
		})
	}
}

type memoriaRequest struct {
	Correo    string `json:"correo"`
	Resumen   string `json:"resumen"`
	Intencion string `json:"intencion"`
}

func handleMemoria(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req memoriaRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "El cuerpo de la petición no es JSON válido", nil)
			return
		}

		correo := req.Correo
		if correo == "" {
			correo = auth.EmailFromRequest(r)
		}
		if correo == "" || !validEmail(correo) {
			respondError(w, http.StatusBadRequest, "El campo 'correo' es requerido y debe ser válido", nil)
			return
		}
		if req.Resumen == "" {
			respondError(w, http.StatusBadRequest, "El campo 'resumen' es requerido", nil)
			return
		}

		if !requireUser(w, d, correo) {
			return
		}

		saved, err := d.Repos.Interactions.Append(repo.Interaction{
			Correo:    correo,
			Resumen:   req.Resumen,
			Intencion: req.Intencion,
		})
		if err != nil {
			d.Log.Error("saving memory record failed", "correo", correo, "error", err)
			respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
			return
		}

		respondJSON(w, http.StatusCreated, map[string]any{
			"id":     saved.ID,
			"correo": saved.Correo,
			"fecha":  saved.Fecha,
		})
	}
}

// requireUser answers 404 and returns false when correo has no account.
func requireUser(w http.ResponseWriter, d Deps, correo string) bool {
	exists, err := d.Repos.Users.Exists(correo)
	if err != nil {
		d.Log.Error("checking user failed", "correo", correo, "error", err)
		respondError(w, http.StatusInternalServerError, "Error interno del servidor", nil)
		return false
	}
	if !exists {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Usuario con correo '%s' no encontrado", correo), nil)
		return false
	}
	return true
}
