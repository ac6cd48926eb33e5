// Package sqlite implements the SQLite storage backend for GameVault.
// JSONL files in the data directory are the source of truth; SQLite is a
// query engine rebuilt from them on every Attach.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// File names inside the data directory.
const (
	dbFile    = "gamevault.db"
	gamesFile = "games.jsonl"
	usersFile = "users.jsonl"
)

// timeLayout is fixed-width so that stored timestamps sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Compile-time interface check.
var _ types.Vault = (*Backend)(nil)

// Backend implements the Vault interface using SQLite as the query engine
// and JSONL files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *slog.Logger
	games    *gamesTable
	users    *usersTable

	syncStrategy  string         // effective sync strategy: immediate, on_close, batch
	batchSize     int            // number of writes before batch flush
	batchInterval time.Duration  // time between batch flushes
	pendingWrites []pendingWrite // writes waiting for a JSONL persist
	batchTimer    *time.Timer    // timer for interval-based batch flush
	batchMu       sync.Mutex     // protects pendingWrites and batchTimer
}

// pendingWrite is a deferred JSONL write, used by the on_close and batch
// sync strategies.
type pendingWrite struct {
	file    string
	persist func() error
}

// NewBackend creates a detached backend. A nil logger uses slog.Default.
func NewBackend(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{logger: logger}
}

// Games returns the games table.
// Returns ErrVaultDetached if the backend is not attached.
func (b *Backend) Games() (types.GamesTable, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrVaultDetached
	}
	return b.games, nil
}

// Users returns the users table.
// Returns ErrVaultDetached if the backend is not attached.
func (b *Backend) Users() (types.UsersTable, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrVaultDetached
	}
	return b.users, nil
}

// Attach validates config, creates DataDir if needed, builds a fresh SQLite
// database and loads the JSONL files into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	config.DataDir = dataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// The database is derived state; start from an empty file.
	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps writes and JSONL snapshots consistent.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return err
	}
	counts, err := loadAllJSONL(db, dataDir)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.syncStrategy = config.SQLiteConfig.GetSyncStrategy()
	b.batchSize = config.SQLiteConfig.GetBatchSize()
	b.batchInterval = time.Duration(config.SQLiteConfig.GetBatchInterval()) * time.Second
	b.pendingWrites = nil
	b.games = &gamesTable{backend: b}
	b.users = &usersTable{backend: b}
	b.attached = true

	if b.syncStrategy == types.SyncBatch && b.batchInterval > 0 {
		b.startBatchTimer()
	}

	b.logger.Info("vault attached",
		"data_dir", dataDir,
		"sync_strategy", b.syncStrategy,
		"games", counts[gamesFile],
		"users", counts[usersFile])
	return nil
}

// Detach flushes pending writes and closes the database. After Detach, all
// operations return ErrVaultDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.stopBatchTimer()

	if err := b.flushPendingWrites(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.games = nil
	b.users = nil
	b.logger.Info("vault detached", "data_dir", b.config.DataDir)
	return nil
}

// DataDir returns the data directory of the attached backend.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}

// generateUUID returns a new UUID v7 for entity IDs.
func generateUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating UUID v7: %w", err)
	}
	return id.String(), nil
}

// persist writes file now or queues the write, following the sync strategy.
// The caller must hold b.mu.
func (b *Backend) persist(file string, write func() error) error {
	if b.syncStrategy == types.SyncImmediate || b.syncStrategy == "" {
		return write()
	}
	b.queueWrite(file, write)
	return nil
}

// queueWrite adds a write to the pending queue. For the batch strategy the
// queue is flushed once it reaches batchSize.
func (b *Backend) queueWrite(file string, write func() error) {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	b.pendingWrites = append(b.pendingWrites, pendingWrite{file: file, persist: write})

	if b.syncStrategy == types.SyncBatch && b.batchSize > 0 && len(b.pendingWrites) >= b.batchSize {
		if err := b.flushPendingWritesLocked(); err != nil {
			b.logger.Error("batch flush failed", "error", err)
		}
	}
}

// flushPendingWrites runs all queued writes. The caller must hold b.mu.
func (b *Backend) flushPendingWrites() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()
	return b.flushPendingWritesLocked()
}

// flushPendingWritesLocked runs the queued writes, collapsing repeated
// writes of the same file into one since each write snapshots the whole
// table. The caller must hold b.batchMu.
func (b *Backend) flushPendingWritesLocked() error {
	if len(b.pendingWrites) == 0 {
		return nil
	}
	done := map[string]bool{}
	for i := len(b.pendingWrites) - 1; i >= 0; i-- {
		pw := b.pendingWrites[i]
		if done[pw.file] {
			continue
		}
		if err := pw.persist(); err != nil {
			return fmt.Errorf("flush %s: %w", pw.file, err)
		}
		done[pw.file] = true
	}
	b.pendingWrites = nil
	return nil
}

// pendingCount returns the number of queued writes.
func (b *Backend) pendingCount() int {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()
	return len(b.pendingWrites)
}

// startBatchTimer starts the periodic flush of the batch strategy.
func (b *Backend) startBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		return
	}

	b.batchTimer = time.AfterFunc(b.batchInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if !b.attached {
			return
		}
		if err := b.flushPendingWrites(); err != nil {
			b.logger.Error("interval flush failed", "error", err)
		}

		b.batchMu.Lock()
		if b.batchTimer != nil {
			b.batchTimer.Reset(b.batchInterval)
		}
		b.batchMu.Unlock()
	})
}

// stopBatchTimer stops the batch interval timer if running.
func (b *Backend) stopBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}
