package search_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/mocks"
	"github.com/taskhub/taskhub-api/internal/search"
)

func TestProjectorTaskSaved(t *testing.T) {
	t.Parallel()

	index := mocks.NewMemoryIndex()
	projector := search.NewProjector(index, slog.Default())

	task, err := domain.NewTask(uuid.New(), "Index me")
	require.NoError(t, err)

	projector.TaskSaved(context.Background(), search.Project(task))

	doc, ok := index.Get(task.ID.String())
	require.True(t, ok)
	assert.Equal(t, "Index me", doc.Title)

	t.Run("replay is idempotent", func(t *testing.T) {
		projector.TaskSaved(context.Background(), search.Project(task))
		assert.Equal(t, 1, index.Len())
	})

	t.Run("upsert replaces the document", func(t *testing.T) {
		require.NoError(t, task.UpdateTitle("Renamed"))
		projector.TaskSaved(context.Background(), search.Project(task))

		doc, ok := index.Get(task.ID.String())
		require.True(t, ok)
		assert.Equal(t, "Renamed", doc.Title)
		assert.Equal(t, 1, index.Len())
	})
}

func TestProjectorTaskDeleted(t *testing.T) {
	t.Parallel()

	index := mocks.NewMemoryIndex()
	projector := search.NewProjector(index, slog.Default())

	task, err := domain.NewTask(uuid.New(), "Remove me")
	require.NoError(t, err)

	projector.TaskSaved(context.Background(), search.Project(task))
	projector.TaskDeleted(context.Background(), task.OwnerID.String(), task.ID.String())

	_, ok := index.Get(task.ID.String())
	assert.False(t, ok)

	// Deleting an absent document is not an error.
	projector.TaskDeleted(context.Background(), task.OwnerID.String(), task.ID.String())
	assert.Equal(t, 0, index.Len())
}

func TestProjectorSwallowsIndexFailures(t *testing.T) {
	t.Parallel()

	index := mocks.NewMemoryIndex()
	index.UpsertErr = errors.New("index unavailable")
	index.DeleteErr = errors.New("index unavailable")
	projector := search.NewProjector(index, slog.Default())

	task, err := domain.NewTask(uuid.New(), "Unlucky")
	require.NoError(t, err)

	// Neither call panics or surfaces the failure.
	projector.TaskSaved(context.Background(), search.Project(task))
	projector.TaskDeleted(context.Background(), task.OwnerID.String(), task.ID.String())

	assert.Equal(t, 0, index.Len())
}
