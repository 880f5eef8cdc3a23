package dal

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"studioops/atelier-pms/internal/domain"
)

const groupCols = `groupid, projectid, name, COALESCE(description,''), COALESCE(color,''),
	status, billing_itemid, created_at`

func scanGroup(row pgxRow) (domain.TaskGroup, error) {
	var g domain.TaskGroup
	err := row.Scan(
		&g.ID,
		&g.ProjectID,
		&g.Name,
		&g.Description,
		&g.Color,
		&g.Status,
		&g.BillingItemID,
		&g.CreatedAt,
	)
	return g, err
}

func (r *Repo) CreateTaskGroup(ctx context.Context, req domain.CreateTaskGroupRequest) (domain.TaskGroup, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO task_groups (groupid, projectid, name, description, color, billing_itemid)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING %s
	`, groupCols),
		uuid.NewString(), req.ProjectID, req.Name, req.Description, req.Color, req.BillingItemID)

	g, err := scanGroup(row)
	return g, notFound(err)
}

func (r *Repo) UpdateTaskGroup(ctx context.Context, groupID string, req domain.UpdateTaskGroupRequest) (domain.TaskGroup, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	i := 1

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, v)
		i++
	}

	if req.Name != nil {
		add("name", strings.TrimSpace(*req.Name))
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Color != nil {
		add("color", *req.Color)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}
	if req.BillingItemID != nil {
		add("billing_itemid", *req.BillingItemID)
	}

	if len(sets) == 0 {
		return domain.TaskGroup{}, fmt.Errorf("no fields to update")
	}

	args = append(args, groupID)
	q := fmt.Sprintf("UPDATE task_groups SET %s WHERE groupid = $%d RETURNING %s",
		strings.Join(sets, ", "), i, groupCols)

	g, err := scanGroup(r.pool.QueryRow(ctx, q, args...))
	return g, notFound(err)
}

// DeleteTaskGroup detaches member tasks first so they fall back to the
// ungrouped board rather than disappearing with the group.
func (r *Repo) DeleteTaskGroup(ctx context.Context, groupID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE tasks SET groupid = NULL WHERE groupid = $1`, groupID); err != nil {
		return err
	}

	ct, err := tx.Exec(ctx, `DELETE FROM task_groups WHERE groupid = $1`, groupID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *Repo) listTaskGroups(ctx context.Context, projectID string) ([]domain.TaskGroup, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM task_groups WHERE projectid = $1 ORDER BY created_at ASC
	`, groupCols), projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.TaskGroup, 0, 8)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
