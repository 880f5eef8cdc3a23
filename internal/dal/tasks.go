package dal

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"studioops/atelier-pms/internal/domain"
)

const taskCols = `taskid, projectid, title, COALESCE(description,''), status, priority,
	progress, assigned_to, deadline, billing_itemid, time_spent, groupid, created_at`

func scanTask(row pgxRow) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.Progress,
		&t.AssignedTo,
		&t.Deadline,
		&t.BillingItemID,
		&t.TimeSpent,
		&t.GroupID,
		&t.CreatedAt,
	)
	return t, err
}

func (r *Repo) CreateTask(ctx context.Context, req domain.CreateTaskRequest) (domain.Task, error) {
	status := req.Status
	if status == "" {
		status = string(domain.StatusTodo)
	}
	priority := req.Priority
	if priority == "" {
		priority = string(domain.PriorityMedium)
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO tasks (taskid, projectid, title, description, status, priority, assigned_to, deadline, billing_itemid, groupid)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING %s
	`, taskCols),
		uuid.NewString(), req.ProjectID, req.Title, req.Description, status, priority,
		req.AssignedTo, req.Deadline, req.BillingItemID, req.GroupID)

	t, err := scanTask(row)
	return t, notFound(err)
}

func (r *Repo) UpdateTask(ctx context.Context, taskID string, req domain.UpdateTaskRequest) (domain.Task, error) {
	sets := make([]string, 0, 10)
	args := make([]any, 0, 11)
	i := 1

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, v)
		i++
	}

	if req.Title != nil {
		add("title", *req.Title)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}
	if req.Priority != nil {
		add("priority", *req.Priority)
	}
	if req.Progress != nil {
		add("progress", *req.Progress)
	}
	if req.AssignedTo != nil {
		add("assigned_to", *req.AssignedTo)
	}
	if req.Deadline != nil {
		add("deadline", *req.Deadline)
	}
	if req.BillingItemID != nil {
		add("billing_itemid", *req.BillingItemID)
	}
	if req.TimeSpent != nil {
		add("time_spent", *req.TimeSpent)
	}
	if req.GroupID != nil {
		add("groupid", *req.GroupID)
	}

	if len(sets) == 0 {
		return domain.Task{}, fmt.Errorf("no fields to update")
	}

	args = append(args, taskID)
	q := fmt.Sprintf("UPDATE tasks SET %s WHERE taskid = $%d RETURNING %s",
		strings.Join(sets, ", "), i, taskCols)

	t, err := scanTask(r.pool.QueryRow(ctx, q, args...))
	return t, notFound(err)
}

func (r *Repo) DeleteTask(ctx context.Context, taskID string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE taskid = $1`, taskID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) listTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM tasks WHERE projectid = $1 ORDER BY created_at ASC
	`, taskCols), projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Task, 0, 16)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
