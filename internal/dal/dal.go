// Package dal is the data access layer: a Postgres repository holding the
// persisted form of the project/company graph. Columns are snake_case; the
// exported records use the application's camelCase model, so all field-name
// translation happens here and nowhere else.
package dal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound reports that the target row no longer exists, e.g. it was
// deleted by a concurrent session.
var ErrNotFound = errors.New("entity not found")

type Repo struct {
	pool *pgxpool.Pool
}

// Connect opens the pool, pings it and applies the init script.
func Connect(ctx context.Context, user, password, address, name, initSQLPath string) (*Repo, error) {
	pool, err := pgxpool.New(
		ctx,
		fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", user, password, address, name),
	)
	if err != nil {
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping the db: %w", err)
	}

	b, err := os.ReadFile(initSQLPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open and read the init sql file: %w", err)
	}
	log.Printf("executing initialization script...")
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		return nil, fmt.Errorf("failed to execute init sql: %w", err)
	}

	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() {
	r.pool.Close()
}

// pgxRow is satisfied by both pgx.Row and pgx.Rows, so the scan helpers
// serve single-row and list queries alike.
type pgxRow interface {
	Scan(dest ...any) error
}

// notFound maps the pgx sentinel onto ours at the package boundary.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
