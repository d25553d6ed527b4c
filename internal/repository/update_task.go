package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/db"
)

type UpdateTaskRepository struct {
	db *db.DB
}

func NewUpdateTaskRepository(d *db.DB) *UpdateTaskRepository {
	return &UpdateTaskRepository{db: d}
}

func scanUpdateTask(row interface {
	Scan(dest ...any) error
}) (*core.UpdateTask, error) {
	var t core.UpdateTask
	var startedAt, completedAt sql.NullTime
	var resultJSON, errorJSON sql.NullString

	err := row.Scan(&t.TaskID, &t.Trigger, &t.Status, &startedAt, &completedAt, &resultJSON, &errorJSON)
	if err == sql.ErrNoRows {
		return nil, core.NewNotFoundError("update_task", "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan update task: %w", err)
	}

	if startedAt.Valid {
		t.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if resultJSON.Valid {
		var res core.TaskResult
		if err := json.Unmarshal([]byte(resultJSON.String), &res); err != nil {
			return nil, fmt.Errorf("failed to decode task result: %w", err)
		}
		t.Result = &res
	}
	if errorJSON.Valid {
		var taskErr core.TaskError
		if err := json.Unmarshal([]byte(errorJSON.String), &taskErr); err != nil {
			return nil, fmt.Errorf("failed to decode task error: %w", err)
		}
		t.Error = &taskErr
	}
	return &t, nil
}

func (r *UpdateTaskRepository) Create(ctx context.Context, t *core.UpdateTask) error {
	_, err := r.db.Queryer(ctx).ExecContext(ctx, `
		INSERT INTO update_tasks (task_id, trigger, status)
		VALUES ($1, $2, $3)`, t.TaskID, t.Trigger, t.Status)
	if err != nil {
		return fmt.Errorf("failed to create update task: %w", err)
	}
	return nil
}

func (r *UpdateTaskRepository) GetByID(ctx context.Context, taskID string) (*core.UpdateTask, error) {
	row := r.db.Queryer(ctx).QueryRowContext(ctx, `
		SELECT task_id, trigger, status, started_at, completed_at, result, error
		FROM update_tasks WHERE task_id = $1`, taskID)
	return scanUpdateTask(row)
}

// GetRunning returns the currently running task, if any, enforcing the
// single-pending-task invariant at the call site.
func (r *UpdateTaskRepository) GetRunning(ctx context.Context) (*core.UpdateTask, error) {
	row := r.db.Queryer(ctx).QueryRowContext(ctx, `
		SELECT task_id, trigger, status, started_at, completed_at, result, error
		FROM update_tasks WHERE status IN ('pending', 'running')
		ORDER BY task_id DESC LIMIT 1`)
	t, err := scanUpdateTask(row)
	if core.IsNotFound(err) {
		return nil, nil
	}
	return t, err
}

func (r *UpdateTaskRepository) TransitionToRunning(ctx context.Context, taskID string, startedAt time.Time) error {
	res, err := r.db.Queryer(ctx).ExecContext(ctx, `
		UPDATE update_tasks SET status = $2, started_at = $3 WHERE task_id = $1`,
		taskID, core.StatusRunning, startedAt)
	if err != nil {
		return fmt.Errorf("failed to transition task to running: %w", err)
	}
	return requireOneRow(res, "update_task")
}

func (r *UpdateTaskRepository) TransitionToCompleted(ctx context.Context, taskID string, completedAt time.Time, result core.TaskResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode task result: %w", err)
	}
	res, err := r.db.Queryer(ctx).ExecContext(ctx, `
		UPDATE update_tasks SET status = $2, completed_at = $3, result = $4 WHERE task_id = $1`,
		taskID, core.StatusCompleted, completedAt, string(payload))
	if err != nil {
		return fmt.Errorf("failed to transition task to completed: %w", err)
	}
	return requireOneRow(res, "update_task")
}

func (r *UpdateTaskRepository) TransitionToFailed(ctx context.Context, taskID string, completedAt time.Time, taskErr core.TaskError) error {
	payload, err := json.Marshal(taskErr)
	if err != nil {
		return fmt.Errorf("failed to encode task error: %w", err)
	}
	res, err := r.db.Queryer(ctx).ExecContext(ctx, `
		UPDATE update_tasks SET status = $2, completed_at = $3, error = $4 WHERE task_id = $1`,
		taskID, core.StatusFailed, completedAt, string(payload))
	if err != nil {
		return fmt.Errorf("failed to transition task to failed: %w", err)
	}
	return requireOneRow(res, "update_task")
}
