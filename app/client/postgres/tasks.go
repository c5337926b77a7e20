package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

func (c *Client) SaveTask(ctx context.Context, task Task) (int64, error) {
	var id int64

	err := c.pool.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, datetime, priority, category, notes)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		task.UserID, task.Title, task.Datetime, task.Priority, task.Category, task.Notes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save task: %w", err)
	}

	return id, nil
}

func (c *Client) GetTasks(ctx context.Context, userID int64) ([]Task, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, user_id, title, datetime, priority, category, notes, notified
		 FROM tasks WHERE user_id = $1 ORDER BY datetime NULLS LAST, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetDueTasks returns every task, across all users, whose due time has
// elapsed and which has not been notified yet.
func (c *Client) GetDueTasks(ctx context.Context, now time.Time) ([]Task, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, user_id, title, datetime, priority, category, notes, notified
		 FROM tasks WHERE datetime IS NOT NULL AND datetime <= $1 AND NOT notified`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

func scanTasks(rows pgx.Rows) ([]Task, error) {
	tasks := make([]Task, 0)

	for rows.Next() {
		var task Task
		if err := rows.Scan(&task.ID, &task.UserID, &task.Title, &task.Datetime,
			&task.Priority, &task.Category, &task.Notes, &task.Notified); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading tasks: %w", err)
	}

	return tasks, nil
}

func (c *Client) DeleteTask(ctx context.Context, userID, taskID int64) (bool, error) {
	tag, err := c.pool.Exec(ctx,
		`DELETE FROM tasks WHERE user_id = $1 AND id = $2`, userID, taskID)
	if err != nil {
		return false, fmt.Errorf("failed to delete task %d: %w", taskID, err)
	}

	return tag.RowsAffected() > 0, nil
}

func (c *Client) SetTaskNotified(ctx context.Context, userID, taskID int64, notified bool) (bool, error) {
	tag, err := c.pool.Exec(ctx,
		`UPDATE tasks SET notified = $3 WHERE user_id = $1 AND id = $2`,
		userID, taskID, notified)
	if err != nil {
		return false, fmt.Errorf("failed to update task %d: %w", taskID, err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkTaskNotified is the reminder worker's variant: no per-user scoping,
// the worker already holds the full row.
func (c *Client) MarkTaskNotified(ctx context.Context, taskID int64) error {
	_, err := c.pool.Exec(ctx, `UPDATE tasks SET notified = TRUE WHERE id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("failed to mark task %d notified: %w", taskID, err)
	}

	return nil
}

func (c *Client) DeleteCompletedTasks(ctx context.Context, userID int64) (bool, error) {
	tag, err := c.pool.Exec(ctx,
		`DELETE FROM tasks WHERE user_id = $1 AND notified`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete completed tasks: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (c *Client) SavePendingTask(ctx context.Context, userID int64, title string) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO pending_tasks (user_id, title) VALUES ($1, $2)`, userID, title)
	if err != nil {
		return fmt.Errorf("failed to save pending task: %w", err)
	}

	return nil
}

// GetPendingTask returns the most recent pending task for the user, or nil
// when there is none.
func (c *Client) GetPendingTask(ctx context.Context, userID int64) (*PendingTask, error) {
	var pending PendingTask

	err := c.pool.QueryRow(ctx,
		`SELECT id, title FROM pending_tasks WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID,
	).Scan(&pending.ID, &pending.Title)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending task: %w", err)
	}

	return &pending, nil
}

func (c *Client) DeletePendingTask(ctx context.Context, pendingID int64) error {
	_, err := c.pool.Exec(ctx, `DELETE FROM pending_tasks WHERE id = $1`, pendingID)
	if err != nil {
		return fmt.Errorf("failed to delete pending task %d: %w", pendingID, err)
	}

	return nil
}
