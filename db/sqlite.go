package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"fraudscore/ml"
	"fraudscore/scoring"
)

// ScoreRecord is one audited scoring decision.
type ScoreRecord struct {
	ID           string             `json:"id"`
	RequestID    string             `json:"request_id,omitempty"`
	Probability  float64            `json:"probability"`
	Band         scoring.RiskBand   `json:"band"`
	ModelVersion string             `json:"model_version"`
	Features     map[string]float64 `json:"features"`
	CreatedAt    time.Time          `json:"created_at"`
}

// ModelLoad records an artifact the service started with.
type ModelLoad struct {
	Kind     string    `json:"kind"`
	Version  string    `json:"version"`
	Path     string    `json:"path"`
	SHA256   string    `json:"sha256"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Store is the SQLite audit log. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

const schemaDDL = `
    CREATE TABLE IF NOT EXISTS scores (
        id TEXT PRIMARY KEY,
        request_id TEXT,
        probability REAL NOT NULL,
        band TEXT NOT NULL,
        model_version TEXT NOT NULL,
        features TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_scores_created_at ON scores(created_at);
    CREATE TABLE IF NOT EXISTS model_loads (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        kind TEXT NOT NULL,
        version TEXT NOT NULL,
        path TEXT NOT NULL,
        sha256 TEXT NOT NULL,
        loaded_at DATETIME NOT NULL
    );
    `

// Open opens (creating if needed) the database at path and applies the
// schema. wal switches the journal to write-ahead logging.
func Open(path string, wal bool) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	database.SetMaxOpenConns(1)

	if wal {
		if _, err := database.Exec(`PRAGMA journal_mode=WAL`); err != nil {
			database.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}
	if _, err := database.Exec(schemaDDL); err != nil {
		database.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: database}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveScore inserts rec, assigning an ID and timestamp when they are empty.
// It returns the stored record.
func (s *Store) SaveScore(ctx context.Context, rec ScoreRecord) (ScoreRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	band, err := rec.Band.MarshalText()
	if err != nil {
		return ScoreRecord{}, err
	}
	feats, err := json.Marshal(rec.Features)
	if err != nil {
		return ScoreRecord{}, err
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO scores (id, request_id, probability, band, model_version, features, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RequestID, rec.Probability, string(band), rec.ModelVersion, string(feats), rec.CreatedAt)
	if err != nil {
		return ScoreRecord{}, err
	}
	return rec, nil
}

// ListScores returns the most recent records, newest first.
func (s *Store) ListScores(ctx context.Context, limit int) ([]ScoreRecord, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, request_id, probability, band, model_version, features, created_at
        FROM scores
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]ScoreRecord, 0)
	for rows.Next() {
		var rec ScoreRecord
		var requestID sql.NullString
		var band, feats string
		if err := rows.Scan(&rec.ID, &requestID, &rec.Probability, &band, &rec.ModelVersion, &feats, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.RequestID = requestID.String
		if err := rec.Band.UnmarshalText([]byte(band)); err != nil {
			return nil, fmt.Errorf("score %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(feats), &rec.Features); err != nil {
			return nil, fmt.Errorf("score %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByBand returns how many audited scores fall in each band.
func (s *Store) CountByBand(ctx context.Context) (map[scoring.RiskBand]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT band, COUNT(*) FROM scores GROUP BY band`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[scoring.RiskBand]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		band, err := scoring.ParseRiskBand(name)
		if err != nil {
			return nil, err
		}
		counts[band] = n
	}
	return counts, rows.Err()
}

func (s *Store) RecordModelLoad(ctx context.Context, info ml.Info) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO model_loads (kind, version, path, sha256, loaded_at)
        VALUES (?, ?, ?, ?, ?)`,
		info.Kind, info.Version, info.Path, info.SHA256, info.LoadedAt.UTC())
	return err
}

func (s *Store) ListModelLoads(ctx context.Context) ([]ModelLoad, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT kind, version, path, sha256, loaded_at
        FROM model_loads
        ORDER BY loaded_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loads := make([]ModelLoad, 0)
	for rows.Next() {
		var l ModelLoad
		if err := rows.Scan(&l.Kind, &l.Version, &l.Path, &l.SHA256, &l.LoadedAt); err != nil {
			return nil, err
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}
