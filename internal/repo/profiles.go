package repo

import (
	"encoding/json"
	"fmt"

	"github.com/tecsup/agente/internal/store"
)

// profileRepo implements the one-record-per-user pattern shared by the
// academic, emotional, and socioeconomic profile tables. Updates are
// full-record replacements.
type profileRepo[T any] struct {
	store *store.Store
	table string
}

// ForUser returns the profile stored for correo, or store.ErrNotFound.
func (p *profileRepo[T]) ForUser(correo string) (T, error) {
	var zero T
	rec, err := p.store.Get(p.table, correo, "")
	if err != nil {
		return zero, err
	}
	var out T
	if err := rec.DecodePayload(&out); err != nil {
		return zero, fmt.Errorf("decoding %s record for %s: %w", p.table, correo, err)
	}
	return out, nil
}

// Put inserts or fully replaces the profile for correo.
func (p *profileRepo[T]) Put(correo string, value T) error {
	if correo == "" {
		return fmt.Errorf("putting %s record: correo is required", p.table)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", p.table, err)
	}
	return p.store.Put(store.Record{
		Table:        p.table,
		PartitionKey: correo,
		Payload:      payload,
	})
}

// Academic holds DatosAcademicos profiles.
type Academic struct{ profileRepo[DatosAcademicos] }

func NewAcademic(s *store.Store, table string) *Academic {
	return &Academic{profileRepo[DatosAcademicos]{store: s, table: table}}
}

// Emotional holds DatosEmocionales profiles.
type Emotional struct{ profileRepo[DatosEmocionales] }

func NewEmotional(s *store.Store, table string) *Emotional {
	return &Emotional{profileRepo[DatosEmocionales]{store: s, table: table}}
}

// Socioeconomic holds DatosSocioeconomicos profiles.
type Socioeconomic struct{ profileRepo[DatosSocioeconomicos] }

func NewSocioeconomic(s *store.Store, table string) *Socioeconomic {
	return &Socioeconomic{profileRepo[DatosSocioeconomicos]{store: s, table: table}}
}

// Repositories bundles every typed repository over one store, constructed
// once at process start and passed down explicitly.
type Repositories struct {
	Users         *Users
	Interactions  *Interactions
	Recetas       *Recetas
	Tareas        *Tareas
	Servicios     *Servicios
	Academic      *Academic
	Emotional     *Emotional
	Socioeconomic *Socioeconomic
}

// New builds the repository set for the configured table names.
func New(s *store.Store, t Tables) *Repositories {
	return &Repositories{
		Users:         NewUsers(s, t.Usuarios),
		Interactions:  NewInteractions(s, t.Interacciones),
		Recetas:       NewRecetas(s, t.Recetas),
		Tareas:        NewTareas(s, t.Tareas),
		Servicios:     NewServicios(s, t.Servicios),
		Academic:      NewAcademic(s, t.DatosAcademicos),
		Emotional:     NewEmotional(s, t.DatosEmocionales),
		Socioeconomic: NewSocioeconomic(s, t.DatosSocioeconomicos),
	}
}
