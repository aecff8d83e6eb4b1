package extrabox

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a Store backed by the extra_boxes table.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// Increment adds one extra box for name and returns the new total.
func (s *store) Increment(ctx context.Context, name string) (int, error) {
	key := BuildKey(name)
	if key == "" {
		return 0, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO extra_boxes (player_key, player_name, count, updated_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(player_key) DO UPDATE SET
			count = count + 1,
			player_name = excluded.player_name,
			updated_at = excluded.updated_at;
	`, key, strings.TrimSpace(name), time.Now().Unix())
	if err != nil {
		log.Error("Failed to increment extra boxes", "error", err, "key", key)
		return 0, err
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT count FROM extra_boxes WHERE player_key = ?", key).Scan(&count); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Info("Extra box granted", "player", name, "key", key, "total", count)
	return count, nil
}

// Get returns the extra-box count for name, or 0 when none were granted.
func (s *store) Get(ctx context.Context, name string) (int, error) {
	key := BuildKey(name)
	if key == "" {
		return 0, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT count FROM extra_boxes WHERE player_key = ?", key).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// All returns every counter ordered by key.
func (s *store) All(ctx context.Context) ([]Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT player_key, player_name, count, updated_at FROM extra_boxes ORDER BY player_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counters := make([]Counter, 0)
	for rows.Next() {
		var c Counter
		var updatedAt int64
		if err := rows.Scan(&c.Key, &c.Name, &c.Count, &updatedAt); err != nil {
			return nil, err
		}
		c.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		counters = append(counters, c)
	}
	return counters, rows.Err()
}
