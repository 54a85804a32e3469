package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSaveNotFound = errors.New("save not found")

type SaveRow struct {
	SaveID     string          `json:"save_id"`
	SlotName   string          `json:"slot_name"`
	ArtistName string          `json:"artist_name"`
	Genre      string          `json:"genre"`
	Timestamp  int64           `json:"timestamp"`
	Version    string          `json:"version"`
	GameState  json.RawMessage `json:"game_state,omitempty"`
	SavedAt    time.Time       `json:"saved_at"`
}

// SaveService owns the saves table. One row per (user, slot); a save to an
// existing slot replaces it in place and keeps the same save ID.
type SaveService struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewSaveService(db *pgxpool.Pool, logger *slog.Logger) *SaveService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveService{db: db, log: logger}
}

func (s *SaveService) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS saves (
			save_id     UUID PRIMARY KEY,
			user_id     TEXT NOT NULL,
			slot_name   TEXT NOT NULL,
			artist_name TEXT NOT NULL DEFAULT '',
			genre       TEXT NOT NULL DEFAULT '',
			timestamp_ms BIGINT NOT NULL,
			version     TEXT NOT NULL DEFAULT '1.0.0',
			game_state  JSONB NOT NULL,
			saved_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, slot_name)
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure saves schema: %w", err)
	}
	return nil
}

func (s *SaveService) Upsert(ctx context.Context, userID, slotName, artistName, genre, version string, timestampMS int64, gameState json.RawMessage) (SaveRow, error) {
	var row SaveRow
	err := s.db.QueryRow(ctx, `
		INSERT INTO saves (save_id, user_id, slot_name, artist_name, genre, timestamp_ms, version, game_state, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (user_id, slot_name) DO UPDATE SET
			artist_name = EXCLUDED.artist_name,
			genre = EXCLUDED.genre,
			timestamp_ms = EXCLUDED.timestamp_ms,
			version = EXCLUDED.version,
			game_state = EXCLUDED.game_state,
			saved_at = now()
		RETURNING save_id, slot_name, artist_name, genre, timestamp_ms, version, saved_at
	`, uuid.NewString(), userID, slotName, artistName, genre, timestampMS, version, gameState).
		Scan(&row.SaveID, &row.SlotName, &row.ArtistName, &row.Genre, &row.Timestamp, &row.Version, &row.SavedAt)
	if err != nil {
		return SaveRow{}, fmt.Errorf("upsert save: %w", err)
	}
	return row, nil
}

func (s *SaveService) GetBySlot(ctx context.Context, userID, slotName string) (SaveRow, error) {
	var row SaveRow
	err := s.db.QueryRow(ctx, `
		SELECT save_id, slot_name, artist_name, genre, timestamp_ms, version, game_state, saved_at
		FROM saves
		WHERE user_id = $1 AND slot_name = $2
	`, userID, slotName).
		Scan(&row.SaveID, &row.SlotName, &row.ArtistName, &row.Genre, &row.Timestamp, &row.Version, &row.GameState, &row.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SaveRow{}, ErrSaveNotFound
	}
	if err != nil {
		return SaveRow{}, fmt.Errorf("get save: %w", err)
	}
	return row, nil
}

// List returns one page of summaries (no game state) plus the total count.
func (s *SaveService) List(ctx context.Context, userID string, page, perPage int) ([]SaveRow, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(1) FROM saves WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count saves: %w", err)
	}
	rows, err := s.db.Query(ctx, `
		SELECT save_id, slot_name, artist_name, genre, timestamp_ms, version, saved_at
		FROM saves
		WHERE user_id = $1
		ORDER BY timestamp_ms DESC
		LIMIT $2 OFFSET $3
	`, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	out := []SaveRow{}
	for rows.Next() {
		var row SaveRow
		if err := rows.Scan(&row.SaveID, &row.SlotName, &row.ArtistName, &row.Genre, &row.Timestamp, &row.Version, &row.SavedAt); err != nil {
			return nil, 0, fmt.Errorf("scan save: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *SaveService) Delete(ctx context.Context, userID, saveID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM saves WHERE user_id = $1 AND save_id = $2`, userID, saveID)
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSaveNotFound
	}
	return nil
}
