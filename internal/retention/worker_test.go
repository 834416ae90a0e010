package retention

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/tecsup/agente/internal/repo"
	"github.com/tecsup/agente/internal/store"
)

func openTestRepos(t *testing.T) *repo.Repositories {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open(:memory:): %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return repo.New(s, repo.Tables{
		Usuarios:      "usuarios",
		Interacciones: "interacciones",
	})
}

func seedHistory(t *testing.T, repos *repo.Repositories, correo string, n int) {
	t.Helper()
	if err := repos.Users.Put(repo.User{Correo: correo}); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		_, err := repos.Interactions.Append(repo.Interaction{
			Correo:  correo,
			Fecha:   base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			Resumen: fmt.Sprintf("interaccion %d", i),
		})
		if err != nil {
			t.Fatalf("seeding interaction: %v", err)
		}
	}
}

func TestRunOncePrunesAllUsers(t *testing.T) {
	repos := openTestRepos(t)
	seedHistory(t, repos, "ana@example.com", 8)
	seedHistory(t, repos, "luis@example.com", 3)

	w := NewWorker(repos.Users, repos.Interactions, 5, time.Minute, slog.New(slog.DiscardHandler))

	total, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if total != 3 {
		t.Errorf("pruned %d, want 3", total)
	}

	kept, err := repos.Interactions.RecentByUser("ana@example.com", 100)
	if err != nil {
		t.Fatalf("RecentByUser: %v", err)
	}
	if len(kept) != 5 {
		t.Errorf("ana has %d interactions, want 5", len(kept))
	}
	if kept[0].Resumen != "interaccion 7" {
		t.Errorf("newest survivor = %q, want interaccion 7", kept[0].Resumen)
	}

	untouched, err := repos.Interactions.RecentByUser("luis@example.com", 100)
	if err != nil {
		t.Fatalf("RecentByUser: %v", err)
	}
	if len(untouched) != 3 {
		t.Errorf("luis has %d interactions, want 3 untouched", len(untouched))
	}
}

func TestRunOnceEmptyStore(t *testing.T) {
	repos := openTestRepos(t)
	w := NewWorker(repos.Users, repos.Interactions, 5, time.Minute, slog.New(slog.DiscardHandler))

	total, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if total != 0 {
		t.Errorf("pruned %d on empty store", total)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	repos := openTestRepos(t)
	w := NewWorker(repos.Users, repos.Interactions, 5, 10*time.Millisecond, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
