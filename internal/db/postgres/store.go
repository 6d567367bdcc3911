package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/geodex/internal/db"
)

// Config holds connection parameters for the PostGIS store.
type Config struct {
	DSN         string
	MaxConns    int32
	MinConns    int32
	MaxConnLife time.Duration
	MaxConnIdle time.Duration
}

// Store wraps a pgxpool connected to a PostGIS-enabled database. It holds
// dataset spatial extents and answers bounding-box intersection queries.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a PostGIS store and verifies connectivity.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLife > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLife
	}
	if cfg.MaxConnIdle > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdle
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &db.Error{Op: db.OpPgPing, Err: err}
	}
	return nil
}

// Close shuts down the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the metadata table and its spatial index when absent.
// The postgis extension must already be installed in the target database.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS dcat_metadata (
			dataset_id TEXT PRIMARY KEY,
			title TEXT,
			geom geometry(POLYGON, 4326)
		)`,
		`CREATE INDEX IF NOT EXISTS dcat_metadata_geom_idx ON dcat_metadata USING GIST (geom)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return &db.Error{Op: db.OpPgExec, Err: err}
		}
	}
	return nil
}

// IntersectingIDs returns IDs of datasets whose stored extent intersects the
// envelope. Corners are WGS84 lon/lat.
func (s *Store) IntersectingIDs(ctx context.Context, west, south, east, north float64) ([]string, error) {
	const q = `SELECT dataset_id FROM dcat_metadata WHERE ST_Intersects(geom, ST_MakeEnvelope($1, $2, $3, $4, 4326))`

	rows, err := s.pool.Query(ctx, q, west, south, east, north)
	if err != nil {
		return nil, &db.Error{Op: db.OpPgQuery, Err: err}
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &db.Error{Op: db.OpPgQuery, Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpPgQuery, Err: err}
	}
	return ids, nil
}

// UpsertGeometry stores or replaces a dataset's spatial extent. The geometry
// arrives as a WKT polygon in WGS84.
func (s *Store) UpsertGeometry(ctx context.Context, datasetID, title, wkt string) error {
	const q = `INSERT INTO dcat_metadata (dataset_id, title, geom)
		VALUES ($1, $2, ST_GeomFromText($3, 4326))
		ON CONFLICT (dataset_id) DO UPDATE SET title = EXCLUDED.title, geom = EXCLUDED.geom`

	if _, err := s.pool.Exec(ctx, q, datasetID, title, wkt); err != nil {
		return &db.Error{Op: db.OpPgExec, Err: err}
	}
	return nil
}
