package store

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"pet-progress-api/internal/models"
)

type SQLite struct {
	DB *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "pet-progress.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &SQLite{DB: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.DB.Close() }

func (s *SQLite) init() error {
	if _, err := s.DB.Exec(`
		CREATE TABLE IF NOT EXISTS saved_blobs (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
	`); err != nil {
		return err
	}
	_, err := s.DB.Exec(`
		CREATE TABLE IF NOT EXISTS progress_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player TEXT NOT NULL,
			pet_count INTEGER NOT NULL,
			pet_hours REAL NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
	`)
	return err
}

// SaveBlob upserts the durable text blob for a key (the export snapshot
// lives under "petData").
func (s *SQLite) SaveBlob(key, payload string) error {
	if key == "" {
		return errors.New("key required")
	}
	_, err := s.DB.Exec(`INSERT INTO saved_blobs (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`,
		key, payload, time.Now().UTC())
	return err
}

// LoadBlob returns the stored payload for a key; the second return is false
// when the key has never been written.
func (s *SQLite) LoadBlob(key string) (string, bool, error) {
	var payload string
	err := s.DB.QueryRow(`SELECT payload FROM saved_blobs WHERE key=?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return payload, true, nil
}

func (s *SQLite) RecordProgress(player string, petCount int, petHours float64) error {
	if player == "" {
		return errors.New("player required")
	}
	_, err := s.DB.Exec(`INSERT INTO progress_history (player, pet_count, pet_hours, updated_at) VALUES (?, ?, ?, ?)`,
		player, petCount, petHours, time.Now().UTC())
	return err
}

func (s *SQLite) ProgressHistory(player string, limit int) ([]models.ProgressRecord, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := s.DB.Query(`SELECT pet_count, pet_hours, updated_at FROM progress_history WHERE player=? ORDER BY updated_at DESC LIMIT ?`,
		player, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.ProgressRecord
	for rows.Next() {
		var count int
		var hours float64
		var updated time.Time
		if err := rows.Scan(&count, &hours, &updated); err != nil {
			return nil, err
		}
		out = append(out, models.ProgressRecord{
			Player:    player,
			PetCount:  count,
			PetHours:  hours,
			UpdatedAt: updated,
		})
	}
	return out, rows.Err()
}

// Players returns the distinct players with recorded history, newest first.
func (s *SQLite) Players() ([]string, error) {
	rows, err := s.DB.Query(`SELECT player FROM progress_history GROUP BY player ORDER BY MAX(updated_at) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var players []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
