package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// PostgreSQL error codes
const pgForeignKeyViolationCode = "23503"

// taskColumns is the column list shared by every task SELECT.
const taskColumns = "id, owner_id, title, description, is_completed, due_date, priority, created_at, updated_at, deleted_at"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns validation errors from the domain Task if data is invalid.
// Returns store.ErrInvalidEntity if the owner ID doesn't exist (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, owner_id, title, description, is_completed, due_date, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		task.IsCompleted,
		task.DueDate,
		string(task.Priority),
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()),
				slog.String("owner_id", task.OwnerID.String()))
			return fmt.Errorf("%w: owner with ID %s not found",
				store.ErrInvalidEntity, task.OwnerID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("owner_id", task.OwnerID.String()))
		return store.NewStoreError("task", "create", "insert failed", err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", task.OwnerID.String()),
		slog.String("priority", task.Priority.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// It retrieves a task by its unique ID. A soft-deleted task is treated as
// absent unless includeTrashed is true.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
	includeTrashed bool,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := "SELECT " + taskColumns + " FROM tasks WHERE id = $1"
	if !includeTrashed {
		query += " AND deleted_at IS NULL"
	}

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", "get", "query failed", err)
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// It saves changes to an existing live task. The id, owner_id and
// created_at columns are never part of the SET list, so those fields stay
// immutable no matter what the entity carries.
// Returns store.ErrTaskNotFound if no live task with that ID exists.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, is_completed = $3, due_date = $4, priority = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.IsCompleted,
		task.DueDate,
		string(task.Priority),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "update", "update failed", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "update", "rows affected failed", err)
	}

	if rowsAffected == 0 {
		log.Debug("task not found for update",
			slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()))
	return nil
}

// SoftDelete implements store.TaskStore.SoftDelete
// It sets the deleted_at marker on a live task. Deleting an already-deleted
// task is a no-op.
// Returns store.ErrTaskNotFound if the ID never existed.
func (s *PostgresTaskStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	result, err := s.db.ExecContext(
		ctx,
		"UPDATE tasks SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL",
		now,
		id,
	)
	if err != nil {
		log.Error("failed to soft delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return store.NewStoreError("task", "soft_delete", "update failed", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("task", "soft_delete", "rows affected failed", err)
	}

	if rowsAffected == 0 {
		// Either the task is already deleted (idempotent no-op) or it
		// never existed.
		exists, err := s.exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			log.Debug("task not found for soft delete",
				slog.String("task_id", id.String()))
			return store.ErrTaskNotFound
		}
		log.Debug("task already soft deleted",
			slog.String("task_id", id.String()))
		return nil
	}

	log.Info("task soft deleted",
		slog.String("task_id", id.String()))
	return nil
}

// Restore implements store.TaskStore.Restore
// It clears the deleted_at marker. Restoring a live task is a no-op.
// Returns store.ErrTaskNotFound if the ID never existed.
func (s *PostgresTaskStore) Restore(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	result, err := s.db.ExecContext(
		ctx,
		"UPDATE tasks SET deleted_at = NULL, updated_at = $1 WHERE id = $2 AND deleted_at IS NOT NULL",
		now,
		id,
	)
	if err != nil {
		log.Error("failed to restore task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return store.NewStoreError("task", "restore", "update failed", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("task", "restore", "rows affected failed", err)
	}

	if rowsAffected == 0 {
		exists, err := s.exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			log.Debug("task not found for restore",
				slog.String("task_id", id.String()))
			return store.ErrTaskNotFound
		}
		log.Debug("task already live, restore is a no-op",
			slog.String("task_id", id.String()))
		return nil
	}

	log.Info("task restored",
		slog.String("task_id", id.String()))
	return nil
}

// List implements store.TaskStore.List
// It compiles the composed query against the current instant and returns
// matching tasks in creation order.
func (s *PostgresTaskStore) List(ctx context.Context, q store.TaskQuery) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args, err := q.SQL(time.Now().UTC())
	if err != nil {
		log.Warn("refusing to execute invalid task query",
			slog.String("error", err.Error()))
		return nil, err
	}

	query := "SELECT " + taskColumns + " FROM tasks WHERE " + where + " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "query failed", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "list", "scan failed", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "iteration failed", err)
	}

	// Return empty slice instead of nil if no tasks found
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	return tasks, nil
}

// exists reports whether any row with the given ID exists, trashed or not.
func (s *PostgresTaskStore) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		"SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, store.NewStoreError("task", "exists", "query failed", err)
	}
	return exists, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row in taskColumns order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description sql.NullString
	var dueDate, deletedAt sql.NullTime
	var priority string

	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&description,
		&task.IsCompleted,
		&dueDate,
		&priority,
		&task.CreatedAt,
		&task.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = &description.String
	}
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		task.DueDate = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		task.DeletedAt = &t
	}
	task.Priority = domain.Priority(priority)

	return &task, nil
}
