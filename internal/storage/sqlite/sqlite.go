// Package sqlitestorage implements the storage.Backend interface using an
// in-memory SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend via composition; the only SQLite-specific
// concerns are creating the in-memory DB and the periodic disk dump,
// both of which go through the shared database.Manager.
package sqlitestorage

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/tommytrillva/midnight-sub001/internal/cache"
	"github.com/tommytrillva/midnight-sub001/internal/database"
	"github.com/tommytrillva/midnight-sub001/internal/logging"
	"github.com/tommytrillva/midnight-sub001/internal/session"
	gormstorage "github.com/tommytrillva/midnight-sub001/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpInterval time.Duration
	DumpDir      string // Directory for periodic VACUUM INTO dumps
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	dbm      *database.Manager
	cfg      Config
	log      *logging.SlogManager
	stopChan chan struct{}
}

// New creates a new SQLite storage backend. The manager ends up holding
// the in-memory connection so callers sharing it (the monitor) see a
// valid DB; nil gets replaced with a private, quiet one.
func New(cfg Config, dbm *database.Manager, vehicleCache *cache.VehicleCache, driftRuns *cache.DriftRunCache, logManager *logging.SlogManager, sessionCtx *session.Context) (*Backend, error) {
	if dbm == nil {
		dbm = database.NewManager(zerolog.Nop())
	}

	db, err := dbm.GetSqliteDB("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	dbm.DB = db
	dbm.IsValid = true
	dbm.ShouldSaveLocal = true
	if cfg.DumpDir != "" {
		dbm.SqliteFilePath = filepath.Join(cfg.DumpDir, "midnight_recorder.db")
	}

	gormBackend := gormstorage.New(gormstorage.Dependencies{
		DB:             db,
		VehicleCache:   vehicleCache,
		DriftRunCache:  driftRuns,
		LogManager:     logManager,
		SessionContext: sessionCtx,
	})

	return &Backend{
		Backend:  gormBackend,
		dbm:      dbm,
		cfg:      cfg,
		log:      logManager,
		stopChan: make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.dbm.SqliteFilePath != "" && b.cfg.DumpInterval > 0 {
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine and closes the embedded GORM backend.
func (b *Backend) Close() error {
	close(b.stopChan)
	return b.Backend.Close()
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via
// VACUUM INTO. VACUUM INTO creates a point-in-time snapshot, so no pause
// mechanism is needed.
func (b *Backend) dumpLoop() {
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.dbm.DumpMemoryToDisk(); err != nil {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
			} else {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
			}
		}
	}
}
