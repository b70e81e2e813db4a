// Package sqlite persists the ledger state to a single SQLite table, one
// JSON payload per collection.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

const (
	bucketAnimals   = "animals"
	bucketBreeding  = "breeding"
	bucketOffspring = "offspring"
	bucketFeeders   = "feeders"
	bucketNotes     = "notes"
)

var buckets = []string{bucketAnimals, bucketBreeding, bucketOffspring, bucketFeeders, bucketNotes}

// Store snapshots the full state on every Save. Rows are keyed by farm so
// one file can hold several ledgers.
type Store struct {
	db     *sql.DB
	farm   string
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewStore opens (creating if needed) the database at path.
func NewStore(ctx context.Context, path, farm string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		path = "herd-ledger.db"
	}
	if farm == "" {
		farm = "default"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		farm TEXT NOT NULL,
		bucket TEXT NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (farm, bucket)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, farm: farm, path: path, logger: logger}, nil
}

// Load decodes every bucket of the farm. A farm with no rows loads empty.
func (s *Store) Load(ctx context.Context) (models.State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state WHERE farm = ?`, s.farm)
	if err != nil {
		return models.State{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	st := models.NewState()
	for rows.Next() {
		var (
			bucket  string
			payload []byte
		)
		if err := rows.Scan(&bucket, &payload); err != nil {
			return models.State{}, fmt.Errorf("scan: %w", err)
		}
		var target any
		switch bucket {
		case bucketAnimals:
			target = &st.Animals
		case bucketBreeding:
			target = &st.BreedingRecords
		case bucketOffspring:
			target = &st.OffspringIndex
		case bucketFeeders:
			target = &st.FeederPrograms
		case bucketNotes:
			target = &st.Notes
		default:
			s.logger.Warn("ignoring unknown state bucket", zap.String("bucket", bucket))
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return models.State{}, fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	if err := rows.Err(); err != nil {
		return models.State{}, fmt.Errorf("iterate state: %w", err)
	}
	return st.Normalize(), nil
}

// Save writes every bucket in one transaction.
func (s *Store) Save(ctx context.Context, state models.State) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state = state.Normalize()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, bucket := range buckets {
		var data []byte
		switch bucket {
		case bucketAnimals:
			data, err = json.Marshal(state.Animals)
		case bucketBreeding:
			data, err = json.Marshal(state.BreedingRecords)
		case bucketOffspring:
			data, err = json.Marshal(state.OffspringIndex)
		case bucketFeeders:
			data, err = json.Marshal(state.FeederPrograms)
		case bucketNotes:
			data, err = json.Marshal(state.Notes)
		}
		if err != nil {
			return fmt.Errorf("encode %s: %w", bucket, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state(farm,bucket,payload) VALUES(?,?,?) ON CONFLICT(farm,bucket) DO UPDATE SET payload=excluded.payload`,
			s.farm, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
