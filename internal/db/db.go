package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"task-manager/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Configuración razonable para ambientes iniciales.
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         text PRIMARY KEY,
	name       text NOT NULL,
	email      text NOT NULL UNIQUE,
	age        integer NOT NULL DEFAULT 0,
	password_hash text NOT NULL,
	avatar     bytea,
	tokens     text[] NOT NULL DEFAULT '{}',
	created_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          text PRIMARY KEY,
	owner_id    text NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	description text NOT NULL,
	completed   boolean NOT NULL DEFAULT false,
	created_at  timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS tasks_owner_idx ON tasks (owner_id);
`

// EnsureSchema crea las tablas basicas si no existen. No es un sistema de
// migraciones; solo bootstrap de arranque.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
