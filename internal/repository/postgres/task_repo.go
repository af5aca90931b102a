package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	repo "taskBoard/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const selectTask = `SELECT
				id,
				title,
				description,
				status,
				priority,
				owner_id,
				assignee_id,
				labels,
				due_date,
				version,
				created_at,
				updated_at
				FROM tasks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.OwnerID,
		&t.AssigneeID,
		&t.Labels,
		&t.DueDate,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if t.Labels == nil {
		t.Labels = []string{}
	}
	t.StatusHistory = []task.HistoryEntry{}
	return t, nil
}

// Create inserts the task and its initial history in one transaction.
func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO tasks
				(id, title, description, status, priority, owner_id, assignee_id, labels, due_date, version, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $10)
				RETURNING created_at, updated_at, version`

	createdAt := taskToCreate.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err = tx.QueryRow(ctx, query,
		taskToCreate.ID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.Priority,
		taskToCreate.OwnerID,
		taskToCreate.AssigneeID,
		labelsOrEmpty(taskToCreate.Labels),
		taskToCreate.DueDate,
		createdAt,
	).Scan(&taskToCreate.CreatedAt, &taskToCreate.UpdatedAt, &taskToCreate.Version)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrDuplicate
		}
		logger.Error("Repository: failed to insert task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("insert task: %w", err)
	}

	if err := insertHistory(ctx, tx, taskToCreate.ID, taskToCreate.StatusHistory); err != nil {
		logger.Error("Repository: failed to insert task history", err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	warnIfSlow("create_task", start, slowQuery)
	return nil
}

// Update writes the mutable fields guarded by the version column and appends
// the given history entries in the same transaction. On success the task gets
// the new version and the stored history. UpdatedAt is written as given; a
// zero value means now.
func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task, appended ...task.HistoryEntry) error {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updatedAt := taskToUpdate.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				status = $3,
				priority = $4,
				assignee_id = $5,
				labels = $6,
				due_date = $7,
				version = version + 1,
				updated_at = $8
			WHERE id = $9 AND version = $10
			RETURNING updated_at, version`

	err = tx.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Status,
		taskToUpdate.Priority,
		taskToUpdate.AssigneeID,
		labelsOrEmpty(taskToUpdate.Labels),
		taskToUpdate.DueDate,
		updatedAt,
		taskToUpdate.ID,
		taskToUpdate.Version,
	).Scan(&taskToUpdate.UpdatedAt, &taskToUpdate.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, taskToUpdate.ID).Scan(&exists); err != nil {
				return fmt.Errorf("check task existence: %w", err)
			}
			if !exists {
				return repo.ErrNotFound
			}
			logger.Warn("Repository: version conflict on task update",
				zap.String("task_id", taskToUpdate.ID.String()),
				zap.Int("expected_version", taskToUpdate.Version))
			return repo.ErrVersionConflict
		}
		logger.Error("Repository: failed to update task", err)
		return fmt.Errorf("update task: %w", err)
	}

	if err := insertHistory(ctx, tx, taskToUpdate.ID, appended); err != nil {
		logger.Error("Repository: failed to append task history", err)
		return err
	}

	history, err := loadHistory(ctx, tx, []uuid.UUID{taskToUpdate.ID})
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	taskToUpdate.StatusHistory = history[taskToUpdate.ID]

	warnIfSlow("update_task", start, slowQuery)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	t, err := scanTask(s.pool.QueryRow(ctx, selectTask+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get task", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("get task: %w", err)
	}

	history, err := loadHistory(ctx, s.pool, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if entries, ok := history[id]; ok {
		t.StatusHistory = entries
	}

	warnIfSlow("get_task", start, slowQuery)
	return t, nil
}

// List returns every task, newest first, with its history.
func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, selectTask+` ORDER BY created_at DESC`)
	if err != nil {
		logger.Error("Repository: failed to list tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	ids := []uuid.UUID{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	history, err := loadHistory(ctx, s.pool, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if entries, ok := history[t.ID]; ok {
			t.StatusHistory = entries
		}
	}

	warnIfSlow("list_tasks", start, slowQuery+time.Millisecond*time.Duration(len(tasks)))
	return tasks, nil
}

// Delete removes the task; its history goes with it through ON DELETE CASCADE.
func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow("delete_task", start, slowQuery)
	return nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, taskID uuid.UUID, entries []task.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		var comment *string
		if e.Comment != "" {
			c := e.Comment
			comment = &c
		}
		batch.Queue(`INSERT INTO task_status_history (task_id, status, changed_by, changed_at, comment)
				VALUES ($1, $2, $3, $4, $5)`,
			taskID, e.Status, e.ChangedBy, e.ChangedAt, comment)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func loadHistory(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID][]task.HistoryEntry, error) {
	res := make(map[uuid.UUID][]task.HistoryEntry, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	rows, err := q.Query(ctx, `SELECT task_id, status, changed_by, changed_at, comment
				FROM task_status_history
				WHERE task_id = ANY($1::uuid[])
				ORDER BY id`, uuidStrings(ids))
	if err != nil {
		logger.Error("Repository: failed to load task history", err)
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			taskID  uuid.UUID
			entry   task.HistoryEntry
			comment *string
		)
		if err := rows.Scan(&taskID, &entry.Status, &entry.ChangedBy, &entry.ChangedAt, &comment); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if comment != nil {
			entry.Comment = *comment
		}
		res[taskID] = append(res[taskID], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return res, nil
}

func labelsOrEmpty(labels []string) []string {
	if labels == nil {
		return []string{}
	}
	return labels
}

func uuidStrings(ids []uuid.UUID) []string {
	res := make([]string, len(ids))
	for i, id := range ids {
		res[i] = id.String()
	}
	return res
}
