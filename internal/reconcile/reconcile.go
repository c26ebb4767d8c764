// Package reconcile finishes attachment moves whose publish committed but
// whose directory rename did not happen.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"freleefty/internal/middleware"
	"freleefty/internal/models"
	"freleefty/internal/observability"
	"freleefty/internal/repository"
	"freleefty/internal/storage"

	"gorm.io/gorm"
)

// DefaultBatch is how many pending moves one Run processes.
const DefaultBatch = 500

// Result summarizes one Run.
type Result struct {
	Done   int
	Failed int
}

// Reconciler applies rows of the pending_file_moves outbox to the filesystem.
type Reconciler struct {
	store *repository.Store
	files *storage.Manager
}

// New returns a Reconciler over store and files.
func New(store *repository.Store, files *storage.Manager) *Reconciler {
	return &Reconciler{store: store, files: files}
}

// Settle moves one draft directory to its edition and clears the outbox row.
// A move whose edition was deleted meanwhile drops the draft directory
// instead. On failure the row is kept and its attempt counter bumped.
func (r *Reconciler) Settle(ctx context.Context, move models.PendingFileMove) error {
	err := r.apply(ctx, move)
	if err != nil {
		if recErr := r.store.PendingMoves.RecordFailure(ctx, move.DraftID, err.Error()); recErr != nil {
			middleware.Logger.ErrorContext(ctx, "failed to record pending move failure",
				"draft_id", move.DraftID, "error", recErr)
		}
		return err
	}
	return r.store.PendingMoves.Delete(ctx, move.DraftID)
}

func (r *Reconciler) apply(ctx context.Context, move models.PendingFileMove) error {
	_, err := r.store.Editions.GetByID(ctx, move.EditionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.files.DeleteDraftFiles(move.DraftID)
	}
	if err != nil {
		return fmt.Errorf("load edition %d: %w", move.EditionID, err)
	}
	return r.files.MoveDraftFilesToEdition(move.DraftID, move.EditionID)
}

// Run settles up to limit pending moves, oldest first. Individual failures
// are counted, not returned; the error is only for failing to read the outbox.
func (r *Reconciler) Run(ctx context.Context, limit int) (Result, error) {
	if limit <= 0 {
		limit = DefaultBatch
	}
	moves, err := r.store.PendingMoves.List(ctx, limit)
	if err != nil {
		return Result{}, fmt.Errorf("list pending moves: %w", err)
	}

	var res Result
	for _, move := range moves {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := r.Settle(ctx, move); err != nil {
			res.Failed++
			observability.PendingMovesReconciled.WithLabelValues("error").Inc()
			middleware.Logger.WarnContext(ctx, "pending file move failed",
				"draft_id", move.DraftID, "edition_id", move.EditionID,
				"attempts", move.Attempts+1, "error", err)
			continue
		}
		res.Done++
		observability.PendingMovesReconciled.WithLabelValues("ok").Inc()
	}

	middleware.Logger.InfoContext(ctx, "pending file moves reconciled", "done", res.Done, "failed", res.Failed)
	return res, nil
}
