// Package retention prunes old interaction records so per-user history
// stays bounded.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Worker periodically trims every user's interaction history down to the
// configured keep-count.
type Worker struct {
	users  userLister
	prune  func(correo string, keep int) (int, error)
	keep   int
	poll   time.Duration
	logger *slog.Logger
}

type userLister interface {
	List() ([]string, error)
}

type historyRepo interface {
	PruneOld(correo string, keep int) (int, error)
}

// NewWorker creates a Worker. If pollInterval is <= 0, it defaults to one
// hour. keep must be positive (validated in config).
func NewWorker(users userLister, history historyRepo, keep int, pollInterval time.Duration, logger *slog.Logger) *Worker {
	if pollInterval <= 0 {
		pollInterval = time.Hour
	}
	return &Worker{
		users:  users,
		prune:  history.PruneOld,
		keep:   keep,
		poll:   pollInterval,
		logger: logger,
	}
}

// Run prunes on each tick until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if _, err := w.RunOnce(ctx); err != nil {
			w.logger.Error("retention sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.poll):
		}
	}
}

// RunOnce sweeps every known user once and returns the total number of
// records pruned. A failure for one user does not stop the sweep.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	correos, err := w.users.List()
	if err != nil {
		return 0, fmt.Errorf("listing users: %w", err)
	}

	total := 0
	for _, correo := range correos {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		deleted, err := w.prune(correo, w.keep)
		if err != nil {
			w.logger.Warn("pruning history failed", "correo", correo, "error", err)
			continue
		}
		if deleted > 0 {
			w.logger.Debug("pruned interaction history", "correo", correo, "deleted", deleted)
			total += deleted
		}
	}
	return total, nil
}
