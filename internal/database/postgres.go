package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed postgres.sql
var postgresSchema embed.FS

type Postgres struct {
	*pgxpool.Pool
}

// NewPostgres подключается по DATABASE_URL и накатывает схему.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	db := &Postgres{pool}
	if err := db.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return db, nil
}

func (db *Postgres) Migrate(ctx context.Context) error {
	schema, err := postgresSchema.ReadFile("postgres.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(schema))
	return err
}
