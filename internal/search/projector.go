package search

import (
	"context"
	"log/slog"
)

// Projector keeps the search index in step with task mutations. Index
// failures are logged and swallowed: the database write has already
// committed by the time the projector runs, and a stale document is
// repairable while a rolled-back save is not.
type Projector struct {
	index  Index
	logger *slog.Logger
}

// NewProjector creates a projector writing to the given index.
func NewProjector(index Index, logger *slog.Logger) *Projector {
	if index == nil {
		panic("index cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{
		index:  index,
		logger: logger.With(slog.String("component", "search_projector")),
	}
}

// TaskSaved projects the task and upserts its document. Called after every
// successful create, update, or restore.
func (p *Projector) TaskSaved(ctx context.Context, doc Document) {
	if err := p.index.Upsert(ctx, doc); err != nil {
		p.logger.ErrorContext(ctx, "failed to upsert search document",
			slog.String("task_id", doc.ID),
			slog.String("owner_id", doc.OwnerID),
			slog.String("error", err.Error()))
	}
}

// TaskDeleted removes the task's document from the index. Called after every
// successful soft delete.
func (p *Projector) TaskDeleted(ctx context.Context, ownerID, taskID string) {
	if err := p.index.Delete(ctx, ownerID, taskID); err != nil {
		p.logger.ErrorContext(ctx, "failed to delete search document",
			slog.String("task_id", taskID),
			slog.String("owner_id", ownerID),
			slog.String("error", err.Error()))
	}
}
