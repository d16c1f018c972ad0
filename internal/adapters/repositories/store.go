package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"logistics-route-service/internal/config"
	"logistics-route-service/internal/platform/db"
	"logistics-route-service/internal/ports"
	"logistics-route-service/migrations"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSchemaNotInitialized is returned by CheckSchema when the route tables
// do not exist yet.
var ErrSchemaNotInitialized = errors.New("schema not initialized")

// Store owns the database handle behind the configured route repository.
type Store struct {
	Driver string
	Routes ports.RouteRepository

	pool   *pgxpool.Pool
	sqlite *sql.DB
}

// OpenStore connects to the configured driver. It does not touch the schema;
// call Migrate for that.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := db.OpenPostgres(ctx, cfg.URL, cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		return &Store{Driver: cfg.Driver, Routes: NewPostgresRouteRepository(pool), pool: pool}, nil

	case "sqlite":
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("open store: create data dir: %w", err)
			}
		}
		conn, err := db.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return &Store{Driver: cfg.Driver, Routes: NewSqliteRouteRepository(conn), sqlite: conn}, nil

	default:
		return nil, fmt.Errorf("open store: unsupported driver %q", cfg.Driver)
	}
}

// Migrate brings the schema up to date and returns what was applied.
func (s *Store) Migrate(ctx context.Context) ([]string, error) {
	if s.pool != nil {
		return migrations.Apply(ctx, s.pool)
	}
	if err := InitSchema(s.sqlite); err != nil {
		return nil, err
	}
	return []string{"sqlite schema"}, nil
}

// CheckSchema reports ErrSchemaNotInitialized when Migrate has never run
// against the store.
func (s *Store) CheckSchema(ctx context.Context) error {
	var exists bool
	if s.pool != nil {
		err := s.pool.QueryRow(ctx, `SELECT to_regclass('delivery_routes') IS NOT NULL`).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check schema: %w", err)
		}
	} else {
		var n int
		err := s.sqlite.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'delivery_routes'`).Scan(&n)
		if err != nil {
			return fmt.Errorf("check schema: %w", err)
		}
		exists = n > 0
	}
	if !exists {
		return ErrSchemaNotInitialized
	}
	return nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.sqlite != nil {
		_ = s.sqlite.Close()
	}
}
