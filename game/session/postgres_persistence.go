package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/wricardo/tile-merge-game/game/engine"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS tile_sessions (
	id               TEXT PRIMARY KEY,
	config_name      TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	last_accessed_at TIMESTAMPTZ NOT NULL,
	best_score       INTEGER NOT NULL DEFAULT 0,
	game_state       JSONB
)`

const upsertSession = `
INSERT INTO tile_sessions (id, config_name, created_at, last_accessed_at, best_score, game_state)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
	config_name      = EXCLUDED.config_name,
	last_accessed_at = EXCLUDED.last_accessed_at,
	best_score       = EXCLUDED.best_score,
	game_state       = EXCLUDED.game_state`

// defaultQueryTimeout bounds each statement.
const defaultQueryTimeout = 5 * time.Second

// PostgresPersistence implements SessionPersistence on a tile_sessions table.
type PostgresPersistence struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  *zap.Logger
}

// NewPostgresPersistence connects, checks the connection and creates the
// table if needed.
func NewPostgresPersistence(ctx context.Context, databaseURL string, logger *zap.Logger) (*PostgresPersistence, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createSessionsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	stats := pool.Stat()
	logger.Info("database connection pool initialized",
		zap.Int32("total_conns", stats.TotalConns()),
		zap.Int32("idle_conns", stats.IdleConns()),
	)

	return &PostgresPersistence{pool: pool, timeout: defaultQueryTimeout, logger: logger}, nil
}

// Close releases the pool.
func (p *PostgresPersistence) Close() {
	p.pool.Close()
}

func (p *PostgresPersistence) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), p.timeout)
}

// Save upserts the record.
func (p *PostgresPersistence) Save(data *PersistedSessionData) error {
	if data == nil {
		return fmt.Errorf("session cannot be nil")
	}

	var state []byte
	if data.GameState != nil {
		encoded, err := json.Marshal(data.GameState)
		if err != nil {
			return fmt.Errorf("failed to marshal game state: %w", err)
		}
		state = encoded
	}

	ctx, cancel := p.ctx()
	defer cancel()

	_, err := p.pool.Exec(ctx, upsertSession,
		strings.ToLower(data.ID), data.ConfigName, data.CreatedAt, data.LastAccessedAt, data.BestScore, state)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load reads one record.
func (p *PostgresPersistence) Load(id string) (*PersistedSessionData, error) {
	ctx, cancel := p.ctx()
	defer cancel()

	var (
		data  PersistedSessionData
		state []byte
	)
	err := p.pool.QueryRow(ctx,
		`SELECT id, config_name, created_at, last_accessed_at, best_score, game_state
		 FROM tile_sessions WHERE id = $1`, strings.ToLower(id),
	).Scan(&data.ID, &data.ConfigName, &data.CreatedAt, &data.LastAccessedAt, &data.BestScore, &state)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if len(state) > 0 {
		var gs engine.GameState
		if err := json.Unmarshal(state, &gs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
		}
		data.GameState = &gs
	}

	return &data, nil
}

// Delete removes one record.
func (p *PostgresPersistence) Delete(id string) error {
	ctx, cancel := p.ctx()
	defer cancel()

	tag, err := p.pool.Exec(ctx, `DELETE FROM tile_sessions WHERE id = $1`, strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns every stored ID, oldest first.
func (p *PostgresPersistence) ListAll() ([]string, error) {
	ctx, cancel := p.ctx()
	defer cancel()

	rows, err := p.pool.Query(ctx, `SELECT id FROM tile_sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan session ids: %w", err)
	}
	return ids, nil
}

// Exists checks for a record. Query errors are logged and reported as absent.
func (p *PostgresPersistence) Exists(id string) bool {
	ctx, cancel := p.ctx()
	defer cancel()

	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tile_sessions WHERE id = $1)`, strings.ToLower(id),
	).Scan(&exists)
	if err != nil {
		p.logger.Warn("session lookup failed", zap.String("session_id", id), zap.Error(err))
		return false
	}
	return exists
}
