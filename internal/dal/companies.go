package dal

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"studioops/atelier-pms/internal/domain"
)

const companyCols = `companyid, name, COALESCE(email,''), COALESCE(phone,''), COALESCE(address,''),
	COALESCE(logo_url,''), COALESCE(logo_alt_text,''), is_active, created_at`

func scanCompany(row pgxRow) (domain.Company, error) {
	var c domain.Company
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.LogoURL,
		&c.LogoAltText,
		&c.IsActive,
		&c.CreatedAt,
	)
	return c, err
}

func (r *Repo) CreateCompany(ctx context.Context, req domain.CreateCompanyRequest) (domain.Company, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO companies (companyid, name, email, phone, address, logo_url, logo_alt_text)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING %s
	`, companyCols),
		uuid.NewString(), req.Name, req.Email, req.Phone, req.Address, req.LogoURL, req.LogoAltText)

	c, err := scanCompany(row)
	return c, notFound(err)
}

func (r *Repo) UpdateCompany(ctx context.Context, companyID string, req domain.UpdateCompanyRequest) (domain.Company, error) {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	i := 1

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, v)
		i++
	}

	if req.Name != nil {
		add("name", strings.TrimSpace(*req.Name))
	}
	if req.Email != nil {
		add("email", *req.Email)
	}
	if req.Phone != nil {
		add("phone", *req.Phone)
	}
	if req.Address != nil {
		add("address", *req.Address)
	}
	if req.LogoURL != nil {
		add("logo_url", *req.LogoURL)
	}
	if req.LogoAltText != nil {
		add("logo_alt_text", *req.LogoAltText)
	}
	if req.IsActive != nil {
		add("is_active", *req.IsActive)
	}

	if len(sets) == 0 {
		return domain.Company{}, fmt.Errorf("no fields to update")
	}

	args = append(args, companyID)
	q := fmt.Sprintf("UPDATE companies SET %s WHERE companyid = $%d RETURNING %s",
		strings.Join(sets, ", "), i, companyCols)

	c, err := scanCompany(r.pool.QueryRow(ctx, q, args...))
	return c, notFound(err)
}

func (r *Repo) DeleteCompany(ctx context.Context, companyID string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE companyid = $1`, companyID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM companies ORDER BY name ASC
	`, companyCols))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Company, 0, 16)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
