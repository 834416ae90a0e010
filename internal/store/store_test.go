package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get("usuarios", "nadie@example.com", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on empty store = %v, want ErrNotFound", err)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	payload := json.RawMessage(`{"correo":"a@b.com","nombre":"Ana","autorizacion":true}`)
	rec := Record{Table: "usuarios", PartitionKey: "a@b.com", Payload: payload}
	if err := s.Put(rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get("usuarios", "a@b.com", "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	var decoded map[string]any
	if err := got.DecodePayload(&decoded); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if decoded["nombre"] != "Ana" {
		t.Errorf("nombre = %v, want Ana", decoded["nombre"])
	}
	if decoded["autorizacion"] != true {
		t.Errorf("autorizacion = %v, want true", decoded["autorizacion"])
	}
}

// Floating-point values must survive a write/read cycle without drift; the
// payload is stored as raw JSON and decoded with json.Number.
func TestNumericFidelity(t *testing.T) {
	s := openTestStore(t)

	cases := []string{"2.5", "0.1", "98.6", "123456789.123456789", "3"}
	for i, num := range cases {
		payload := json.RawMessage(fmt.Sprintf(`{"valor":%s}`, num))
		rec := Record{Table: "historial", PartitionKey: "a@b.com", SortKey: fmt.Sprintf("%03d", i), Payload: payload}
		if err := s.Put(rec); err != nil {
			t.Fatalf("Put(%s): %v", num, err)
		}

		got, err := s.Get("historial", "a@b.com", fmt.Sprintf("%03d", i))
		if err != nil {
			t.Fatalf("Get(%s): %v", num, err)
		}

		var decoded struct {
			Valor json.Number `json:"valor"`
		}
		if err := got.DecodePayload(&decoded); err != nil {
			t.Fatalf("DecodePayload(%s): %v", num, err)
		}
		if decoded.Valor.String() != num {
			t.Errorf("valor round-tripped to %q, want %q", decoded.Valor.String(), num)
		}
	}
}

func TestPutUpsert(t *testing.T) {
	s := openTestStore(t)

	rec := Record{Table: "usuarios", PartitionKey: "a@b.com", Payload: json.RawMessage(`{"v":1}`)}
	if err := s.Put(rec); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	rec.Payload = json.RawMessage(`{"v":2}`)
	if err := s.Put(rec); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, err := s.Get("usuarios", "a@b.com", "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Payload) != `{"v":2}` {
		t.Errorf("payload = %s, want {\"v\":2}", got.Payload)
	}
}

func TestPutRejectsInvalidJSON(t *testing.T) {
	s := openTestStore(t)

	rec := Record{Table: "usuarios", PartitionKey: "a@b.com", Payload: json.RawMessage(`{broken`)}
	if err := s.Put(rec); err == nil {
		t.Error("Put accepted invalid JSON payload")
	}
}

func putSeq(t *testing.T, s *Store, table, pk string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		rec := Record{
			Table:        table,
			PartitionKey: pk,
			SortKey:      fmt.Sprintf("2026-01-%02d", i+1),
			Payload:      json.RawMessage(fmt.Sprintf(`{"n":%d}`, i)),
		}
		if err := s.Put(rec); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}
}

func TestQueryByOwnerDescendingLimit(t *testing.T) {
	s := openTestStore(t)
	putSeq(t, s, "interacciones", "a@b.com", 8)

	got, err := s.QueryByOwner("interacciones", "a@b.com", QueryOptions{Limit: 3, Descending: true})
	if err != nil {
		t.Fatalf("QueryByOwner: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	if got[0].SortKey != "2026-01-08" {
		t.Errorf("first record sk = %q, want most recent", got[0].SortKey)
	}
	if got[2].SortKey != "2026-01-06" {
		t.Errorf("third record sk = %q, want 2026-01-06", got[2].SortKey)
	}
}

func TestQueryByOwnerRange(t *testing.T) {
	s := openTestStore(t)
	putSeq(t, s, "interacciones", "a@b.com", 8)

	got, err := s.QueryByOwner("interacciones", "a@b.com", QueryOptions{
		SortKeyFrom: "2026-01-03",
		SortKeyTo:   "2026-01-05",
	})
	if err != nil {
		t.Fatalf("QueryByOwner: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records in range, want 3", len(got))
	}
	if got[0].SortKey != "2026-01-03" || got[2].SortKey != "2026-01-05" {
		t.Errorf("range bounds wrong: %q .. %q", got[0].SortKey, got[2].SortKey)
	}
}

func TestQueryByOwnerUnknownOwner(t *testing.T) {
	s := openTestStore(t)
	putSeq(t, s, "interacciones", "a@b.com", 2)

	got, err := s.QueryByOwner("interacciones", "otro@b.com", QueryOptions{})
	if err != nil {
		t.Fatalf("QueryByOwner: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records for unknown owner, want 0", len(got))
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	putSeq(t, s, "tareas", "a@b.com", 1)

	if err := s.Delete("tareas", "a@b.com", "2026-01-01"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("tareas", "a@b.com", "2026-01-01"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}
