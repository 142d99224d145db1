// internal/settings/postgres.go
package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/uno/internal/models"
)

const createTable = `
CREATE TABLE IF NOT EXISTS game_settings (
	client_id          TEXT PRIMARY KEY,
	player_name        TEXT NOT NULL,
	player_count       INT NOT NULL,
	initial_card_count INT NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps settings in the game_settings table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore opens a pool on connStr and makes sure the table exists.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	if connStr == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres settings backend")
	}

	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create game_settings: %w", err)
	}
	return &PostgresStore{db: pool}, nil
}

func (p *PostgresStore) Load(ctx context.Context, clientID string) (models.GameSettings, error) {
	var s models.GameSettings
	q := `SELECT player_name, player_count, initial_card_count FROM game_settings WHERE client_id=$1`
	err := p.db.QueryRow(ctx, q, clientID).Scan(&s.PlayerName, &s.PlayerCount, &s.InitialCardCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.GameSettings{}, fmt.Errorf("failed to load settings for '%s': %w", clientID, err)
	}
	return s.Normalize(), nil
}

func (p *PostgresStore) Save(ctx context.Context, clientID string, s models.GameSettings) (models.GameSettings, error) {
	n := s.Normalize()
	q := `
	INSERT INTO game_settings (client_id, player_name, player_count, initial_card_count, updated_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (client_id) DO UPDATE
	SET player_name=EXCLUDED.player_name,
	    player_count=EXCLUDED.player_count,
	    initial_card_count=EXCLUDED.initial_card_count,
	    updated_at=now()
	`
	err := pgx.BeginTxFunc(ctx, p.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, clientID, n.PlayerName, n.PlayerCount, n.InitialCardCount)
		return execErr
	})
	if err != nil {
		return models.GameSettings{}, fmt.Errorf("failed to save settings for '%s': %w", clientID, err)
	}
	return n, nil
}

func (p *PostgresStore) Close() error {
	p.db.Close()
	return nil
}
