// Package postgres implements the storage.Backend interface on a
// database.Manager connection, delegating queueing and batch writes to
// the shared GORM backend. The manager prefers Postgres and falls back
// to a local in-memory SQLite database when it is unreachable, so a
// dead DB server degrades the session instead of killing it.
package postgres

import (
	"github.com/rs/zerolog"

	"github.com/tommytrillva/midnight-sub001/internal/cache"
	"github.com/tommytrillva/midnight-sub001/internal/database"
	"github.com/tommytrillva/midnight-sub001/internal/logging"
	"github.com/tommytrillva/midnight-sub001/internal/session"
	gormstorage "github.com/tommytrillva/midnight-sub001/internal/storage/gorm"
)

// Backend wraps the GORM backend over a managed postgres connection.
type Backend struct {
	*gormstorage.Backend
	deps gormstorage.Dependencies
	dbm  *database.Manager
}

// New creates a new postgres storage backend. The connection is deferred
// to Init so construction never blocks on the network. A nil manager
// gets replaced with a private, quiet one.
func New(dbm *database.Manager, vehicleCache *cache.VehicleCache, driftRuns *cache.DriftRunCache, logManager *logging.SlogManager, sessionCtx *session.Context) *Backend {
	if dbm == nil {
		dbm = database.NewManager(zerolog.Nop())
	}
	deps := gormstorage.Dependencies{
		VehicleCache:   vehicleCache,
		DriftRunCache:  driftRuns,
		LogManager:     logManager,
		SessionContext: sessionCtx,
	}
	return &Backend{
		Backend: gormstorage.New(deps),
		deps:    deps,
		dbm:     dbm,
	}
}

// Init connects through the database manager (viper db.* settings,
// SQLite fallback) and initializes the embedded GORM backend on
// whichever connection came up.
func (b *Backend) Init() error {
	if err := b.dbm.Connect(); err != nil {
		return err
	}

	b.deps.DB = b.dbm.DB
	b.Backend = gormstorage.New(b.deps)
	return b.Backend.Init()
}
