package dal

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"studioops/atelier-pms/internal/domain"
)

const projectCols = `projectid, name, companyid, status, paid, deadline,
	discount_percentage, advance_amount, advance_payment_date,
	COALESCE(advance_payment_method,''), COALESCE(advance_notes,''), team, created_at`

func scanProject(row pgxRow) (domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.CompanyID,
		&p.Status,
		&p.Paid,
		&p.Deadline,
		&p.DiscountPercentage,
		&p.AdvanceAmount,
		&p.AdvancePaymentDate,
		&p.AdvancePaymentMethod,
		&p.AdvanceNotes,
		&p.Team,
		&p.CreatedAt,
	)
	return p, err
}

func (r *Repo) CreateProject(ctx context.Context, req domain.CreateProjectRequest) (domain.Project, error) {
	status := req.Status
	if status == "" {
		status = string(domain.ProjectPending)
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO projects (projectid, name, companyid, status, deadline, discount_percentage,
			advance_amount, advance_payment_date, advance_payment_method, advance_notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING %s
	`, projectCols),
		uuid.NewString(), req.Name, req.CompanyID, status, req.Deadline, req.DiscountPercentage,
		req.AdvanceAmount, req.AdvancePaymentDate, req.AdvancePaymentMethod, req.AdvanceNotes)

	p, err := scanProject(row)
	return p, notFound(err)
}

func (r *Repo) UpdateProject(ctx context.Context, projectID string, req domain.UpdateProjectRequest) (domain.Project, error) {
	sets := make([]string, 0, 10)
	args := make([]any, 0, 11)
	i := 1

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, v)
		i++
	}

	if req.Name != nil {
		add("name", strings.TrimSpace(*req.Name))
	}
	if req.CompanyID != nil {
		add("companyid", *req.CompanyID)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}
	if req.Paid != nil {
		add("paid", *req.Paid)
	}
	if req.Deadline != nil {
		add("deadline", *req.Deadline)
	}
	if req.DiscountPercentage != nil {
		add("discount_percentage", *req.DiscountPercentage)
	}
	if req.AdvanceAmount != nil {
		add("advance_amount", *req.AdvanceAmount)
	}
	if req.AdvancePaymentDate != nil {
		add("advance_payment_date", *req.AdvancePaymentDate)
	}
	if req.AdvancePaymentMethod != nil {
		add("advance_payment_method", *req.AdvancePaymentMethod)
	}
	if req.AdvanceNotes != nil {
		add("advance_notes", *req.AdvanceNotes)
	}

	if len(sets) == 0 {
		return domain.Project{}, fmt.Errorf("no fields to update")
	}

	args = append(args, projectID)
	q := fmt.Sprintf("UPDATE projects SET %s WHERE projectid = $%d RETURNING %s",
		strings.Join(sets, ", "), i, projectCols)

	p, err := scanProject(r.pool.QueryRow(ctx, q, args...))
	return p, notFound(err)
}

// DeleteProject removes the project; tasks, groups, billing items and issues
// go with it via the schema's ON DELETE CASCADE.
func (r *Repo) DeleteProject(ctx context.Context, projectID string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE projectid = $1`, projectID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProject returns the project with its owned collections loaded.
func (r *Repo) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM projects WHERE projectid = $1
	`, projectCols), projectID))
	if err != nil {
		return nil, notFound(err)
	}

	if err := r.loadChildren(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns every project with its owned collections loaded. The
// result is the denormalized graph the store snapshots at startup.
func (r *Repo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM projects ORDER BY created_at DESC
	`, projectCols))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) loadChildren(ctx context.Context, p *domain.Project) error {
	var err error
	if p.Tasks, err = r.listTasks(ctx, p.ID); err != nil {
		return err
	}
	if p.TaskGroups, err = r.listTaskGroups(ctx, p.ID); err != nil {
		return err
	}
	if p.BillingItems, err = r.listBillingItems(ctx, p.ID); err != nil {
		return err
	}
	if p.Issues, err = r.listIssues(ctx, p.ID); err != nil {
		return err
	}
	return nil
}
