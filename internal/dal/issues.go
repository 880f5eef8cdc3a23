package dal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studioops/atelier-pms/internal/domain"
)

const issueCols = `issueid, projectid, title, COALESCE(description,''), type, status, priority,
	assigned_to, reported_by, taskid, groupid, rejection_reason, approved_at, rejected_at, created_at`

func scanIssue(row pgxRow) (domain.Issue, error) {
	var is domain.Issue
	err := row.Scan(
		&is.ID,
		&is.ProjectID,
		&is.Title,
		&is.Description,
		&is.Type,
		&is.Status,
		&is.Priority,
		&is.AssignedTo,
		&is.ReportedBy,
		&is.TaskID,
		&is.GroupID,
		&is.RejectionReason,
		&is.ApprovedAt,
		&is.RejectedAt,
		&is.CreatedAt,
	)
	return is, err
}

// CreateIssue stores the issue with the status the store decided on
// (change requests enter the approval queue, everything else opens).
func (r *Repo) CreateIssue(ctx context.Context, req domain.CreateIssueRequest, reportedBy string, status domain.IssueStatus) (domain.Issue, error) {
	typ := req.Type
	if typ == "" {
		typ = string(domain.IssueGeneral)
	}
	priority := req.Priority
	if priority == "" {
		priority = string(domain.PriorityMedium)
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO issues (issueid, projectid, title, description, type, status, priority, assigned_to, reported_by, taskid, groupid)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING %s
	`, issueCols),
		uuid.NewString(), req.ProjectID, req.Title, req.Description, typ, status, priority,
		req.AssignedTo, reportedBy, req.TaskID, req.GroupID)

	is, err := scanIssue(row)
	return is, notFound(err)
}

func (r *Repo) UpdateIssue(ctx context.Context, issueID string, req domain.UpdateIssueRequest) (domain.Issue, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
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
	if req.AssignedTo != nil {
		add("assigned_to", *req.AssignedTo)
	}
	if req.RejectionReason != nil {
		add("rejection_reason", *req.RejectionReason)
	}

	if len(sets) == 0 {
		return domain.Issue{}, fmt.Errorf("no fields to update")
	}

	args = append(args, issueID)
	q := fmt.Sprintf("UPDATE issues SET %s WHERE issueid = $%d RETURNING %s",
		strings.Join(sets, ", "), i, issueCols)

	is, err := scanIssue(r.pool.QueryRow(ctx, q, args...))
	return is, notFound(err)
}

// ResolveApproval records an admin/manager verdict on a change request.
func (r *Repo) ResolveApproval(ctx context.Context, issueID string, approved bool, reason string, at time.Time) (domain.Issue, error) {
	var q string
	var args []any
	if approved {
		q = fmt.Sprintf(`UPDATE issues SET status = $1, approved_at = $2 WHERE issueid = $3 RETURNING %s`, issueCols)
		args = []any{domain.IssueApproved, at, issueID}
	} else {
		q = fmt.Sprintf(`UPDATE issues SET status = $1, rejected_at = $2, rejection_reason = $3 WHERE issueid = $4 RETURNING %s`, issueCols)
		args = []any{domain.IssueRejected, at, reason, issueID}
	}

	is, err := scanIssue(r.pool.QueryRow(ctx, q, args...))
	return is, notFound(err)
}

func (r *Repo) DeleteIssue(ctx context.Context, issueID string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE issueid = $1`, issueID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) listIssues(ctx context.Context, projectID string) ([]domain.Issue, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM issues WHERE projectid = $1 ORDER BY created_at ASC
	`, issueCols), projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Issue, 0, 8)
	for rows.Next() {
		is, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, is)
	}
	return out, rows.Err()
}
