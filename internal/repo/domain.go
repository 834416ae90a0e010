package repo

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tecsup/agente/internal/store"
)

// Recetas stores prescriptions keyed by (correo, receta id).
type Recetas struct {
	store *store.Store
	table string
}

func NewRecetas(s *store.Store, table string) *Recetas {
	return &Recetas{store: s, table: table}
}

func (r *Recetas) ByUser(correo string) ([]Receta, error) {
	recs, err := r.store.QueryByOwner(r.table, correo, store.QueryOptions{Descending: true})
	if err != nil {
		return nil, err
	}
	out := make([]Receta, 0, len(recs))
	for _, rec := range recs {
		var receta Receta
		if err := rec.DecodePayload(&receta); err != nil {
			return nil, fmt.Errorf("decoding receta %s: %w", rec.SortKey, err)
		}
		out = append(out, receta)
	}
	return out, nil
}

func (r *Recetas) Get(correo, id string) (Receta, error) {
	rec, err := r.store.Get(r.table, correo, id)
	if err != nil {
		return Receta{}, err
	}
	var receta Receta
	if err := rec.DecodePayload(&receta); err != nil {
		return Receta{}, fmt.Errorf("decoding receta %s: %w", id, err)
	}
	return receta, nil
}

// Put inserts or fully replaces a prescription, assigning an ID when absent.
func (r *Recetas) Put(receta Receta) (Receta, error) {
	if receta.Correo == "" {
		return Receta{}, fmt.Errorf("putting receta: correo is required")
	}
	if receta.ID == "" {
		receta.ID = uuid.NewString()
	}
	payload, err := json.Marshal(receta)
	if err != nil {
		return Receta{}, fmt.Errorf("encoding receta: %w", err)
	}
	err = r.store.Put(store.Record{
		Table:        r.table,
		PartitionKey: receta.Correo,
		SortKey:      receta.ID,
		Payload:      payload,
	})
	if err != nil {
		return Receta{}, err
	}
	return receta, nil
}

func (r *Recetas) Delete(correo, id string) error {
	return r.store.Delete(r.table, correo, id)
}

// Tareas stores pending assignments keyed by (correo, tarea id).
type Tareas struct {
	store *store.Store
	table string
}

func NewTareas(s *store.Store, table string) *Tareas {
	return &Tareas{store: s, table: table}
}

func (r *Tareas) ByUser(correo string, limit int) ([]Tarea, error) {
	recs, err := r.store.QueryByOwner(r.table, correo, store.QueryOptions{Limit: limit, Descending: true})
	if err != nil {
		return nil, err
	}
	out := make([]Tarea, 0, len(recs))
	for _, rec := range recs {
		var tarea Tarea
		if err := rec.DecodePayload(&tarea); err != nil {
			return nil, fmt.Errorf("decoding tarea %s: %w", rec.SortKey, err)
		}
		out = append(out, tarea)
	}
	return out, nil
}

func (r *Tareas) Get(correo, id string) (Tarea, error) {
	rec, err := r.store.Get(r.table, correo, id)
	if err != nil {
		return Tarea{}, err
	}
	var tarea Tarea
	if err := rec.DecodePayload(&tarea); err != nil {
		return Tarea{}, fmt.Errorf("decoding tarea %s: %w", id, err)
	}
	return tarea, nil
}

func (r *Tareas) Put(tarea Tarea) (Tarea, error) {
	if tarea.Correo == "" {
		return Tarea{}, fmt.Errorf("putting tarea: correo is required")
	}
	if tarea.ID == "" {
		tarea.ID = uuid.NewString()
	}
	payload, err := json.Marshal(tarea)
	if err != nil {
		return Tarea{}, fmt.Errorf("encoding tarea: %w", err)
	}
	err = r.store.Put(store.Record{
		Table:        r.table,
		PartitionKey: tarea.Correo,
		SortKey:      tarea.ID,
		Payload:      payload,
	})
	if err != nil {
		return Tarea{}, err
	}
	return tarea, nil
}

func (r *Tareas) Delete(correo, id string) error {
	return r.store.Delete(r.table, correo, id)
}

// catalogKey is the single partition holding the shared service catalog.
// Services are the one table not owned by a user.
const catalogKey = "_catalogo"

// Servicios stores the shared catalog of support services.
type Servicios struct {
	store *store.Store
	table string
}

func NewServicios(s *store.Store, table string) *Servicios {
	return &Servicios{store: s, table: table}
}

func (r *Servicios) List(limit int) ([]Servicio, error) {
	recs, err := r.store.QueryByOwner(r.table, catalogKey, store.QueryOptions{Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]Servicio, 0, len(recs))
	for _, rec := range recs {
		var servicio Servicio
		if err := rec.DecodePayload(&servicio); err != nil {
			return nil, fmt.Errorf("decoding servicio %s: %w", rec.SortKey, err)
		}
		out = append(out, servicio)
	}
	return out, nil
}

func (r *Servicios) Put(servicio Servicio) (Servicio, error) {
	if servicio.ID == "" {
		servicio.ID = uuid.NewString()
	}
	payload, err := json.Marshal(servicio)
	if err != nil {
		return Servicio{}, fmt.Errorf("encoding servicio: %w", err)
	}
	err = r.store.Put(store.Record{
		Table:        r.table,
		PartitionKey: catalogKey,
		SortKey:      servicio.ID,
		Payload:      payload,
	})
	if err != nil {
		return Servicio{}, err
	}
	return servicio, nil
}
