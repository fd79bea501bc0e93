package cartstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrations embed.FS

// OpenPostgres connects and brings the cart schema up to date.
func OpenPostgres(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	drv, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("preparing migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

type PostgresKV struct {
	db *sqlx.DB
}

func NewPostgresKV(db *sqlx.DB) *PostgresKV {
	return &PostgresKV{db: db}
}

func (p *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte

	const q = `SELECT data FROM cart_profiles WHERE profile = $1`
	if err := p.db.GetContext(ctx, &data, q, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("selecting cart row: %w", err)
	}
	return data, nil
}

func (p *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	const q = `
	INSERT INTO cart_profiles (profile, data, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (profile)
	DO UPDATE SET data = EXCLUDED.data, updated_at = now()`

	if _, err := p.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("upserting cart row: %w", err)
	}
	return nil
}

func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM cart_profiles WHERE profile = $1`
	if _, err := p.db.ExecContext(ctx, q, key); err != nil {
		return fmt.Errorf("deleting cart row: %w", err)
	}
	return nil
}
