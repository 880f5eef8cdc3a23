package dal

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"studioops/atelier-pms/internal/domain"
)

const billingCols = `itemid, projectid, name, COALESCE(description,''), quantity,
	unit_price, total_price, status, created_at`

func scanBillingItem(row pgxRow) (domain.BillingItem, error) {
	var b domain.BillingItem
	err := row.Scan(
		&b.ID,
		&b.ProjectID,
		&b.Name,
		&b.Description,
		&b.Quantity,
		&b.UnitPrice,
		&b.TotalPrice,
		&b.Status,
		&b.CreatedAt,
	)
	return b, err
}

func (r *Repo) CreateBillingItem(ctx context.Context, req domain.CreateBillingItemRequest) (domain.BillingItem, error) {
	status := req.Status
	if status == "" {
		status = string(domain.BillingPending)
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO billing_items (itemid, projectid, name, description, quantity, unit_price, total_price, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING %s
	`, billingCols),
		uuid.NewString(), req.ProjectID, req.Name, req.Description,
		req.Quantity, req.UnitPrice, float64(req.Quantity)*req.UnitPrice, status)

	b, err := scanBillingItem(row)
	return b, notFound(err)
}

// UpdateBillingItem always rewrites total_price: the store recomputes it from
// the merged quantity and unit price on every edit.
func (r *Repo) UpdateBillingItem(ctx context.Context, itemID string, req domain.UpdateBillingItemRequest, totalPrice float64) (domain.BillingItem, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
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
	if req.Quantity != nil {
		add("quantity", *req.Quantity)
	}
	if req.UnitPrice != nil {
		add("unit_price", *req.UnitPrice)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}
	add("total_price", totalPrice)

	args = append(args, itemID)
	q := fmt.Sprintf("UPDATE billing_items SET %s WHERE itemid = $%d RETURNING %s",
		strings.Join(sets, ", "), i, billingCols)

	b, err := scanBillingItem(r.pool.QueryRow(ctx, q, args...))
	return b, notFound(err)
}

func (r *Repo) DeleteBillingItem(ctx context.Context, itemID string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM billing_items WHERE itemid = $1`, itemID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) listBillingItems(ctx context.Context, projectID string) ([]domain.BillingItem, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM billing_items WHERE projectid = $1 ORDER BY created_at ASC
	`, billingCols), projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.BillingItem, 0, 16)
	for rows.Next() {
		b, err := scanBillingItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
