package repo

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tecsup/agente/internal/store"
)

// Interactions is the append-mostly log of exchange summaries and ingested
// metric records. The sort key is "<RFC3339 timestamp>#<uuid>" so records
// order chronologically and concurrent appends for the same user never
// collide.
type Interactions struct {
	store *store.Store
	table string
}

func NewInteractions(s *store.Store, table string) *Interactions {
	return &Interactions{store: s, table: table}
}

// Append stores a new interaction. A missing ID or Fecha is filled in.
func (r *Interactions) Append(in Interaction) (Interaction, error) {
	if in.Correo == "" {
		return Interaction{}, fmt.Errorf("appending interaction: correo is required")
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Fecha == "" {
		in.Fecha = time.Now().UTC().Format(time.RFC3339)
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return Interaction{}, fmt.Errorf("encoding interaction: %w", err)
	}
	err = r.store.Put(store.Record{
		Table:        r.table,
		PartitionKey: in.Correo,
		SortKey:      in.Fecha + "#" + in.ID,
		Payload:      payload,
	})
	if err != nil {
		return Interaction{}, err
	}
	return in, nil
}

// RecentByUser returns up to limit interactions, most recent first. An owner
// with no records yields an empty slice, not an error.
func (r *Interactions) RecentByUser(correo string, limit int) ([]Interaction, error) {
	recs, err := r.store.QueryByOwner(r.table, correo, store.QueryOptions{
		Limit:      limit,
		Descending: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeInteractions(recs)
}

// InWindow returns interactions with a timestamp at or after since, most
// recent first.
func (r *Interactions) InWindow(correo string, since time.Time) ([]Interaction, error) {
	recs, err := r.store.QueryByOwner(r.table, correo, store.QueryOptions{
		Descending:  true,
		SortKeyFrom: since.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	return decodeInteractions(recs)
}

// PruneOld deletes every interaction beyond the keep most recent ones and
// returns the number deleted.
func (r *Interactions) PruneOld(correo string, keep int) (int, error) {
	recs, err := r.store.QueryByOwner(r.table, correo, store.QueryOptions{Descending: true})
	if err != nil {
		return 0, err
	}
	if len(recs) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, rec := range recs[keep:] {
		if err := r.store.Delete(r.table, correo, rec.SortKey); err != nil {
			return deleted, fmt.Errorf("pruning interaction %s: %w", rec.SortKey, err)
		}
		deleted++
	}
	return deleted, nil
}

func decodeInteractions(recs []store.Record) ([]Interaction, error) {
	out := make([]Interaction, 0, len(recs))
	for _, rec := range recs {
		var in Interaction
		if err := rec.DecodePayload(&in); err != nil {
			return nil, fmt.Errorf("decoding interaction %s: %w", rec.SortKey, err)
		}
		out = append(out, in)
	}
	return out, nil
}
