// internal/storage/factory.go
package storage

import (
	"fmt"
	"strings"

	"github.com/tommytrillva/midnight-sub001/internal/cache"
	"github.com/tommytrillva/midnight-sub001/internal/config"
	"github.com/tommytrillva/midnight-sub001/internal/database"
	"github.com/tommytrillva/midnight-sub001/internal/logging"
	"github.com/tommytrillva/midnight-sub001/internal/session"
	"github.com/tommytrillva/midnight-sub001/internal/storage/memory"
	"github.com/tommytrillva/midnight-sub001/internal/storage/postgres"
	sqlitestorage "github.com/tommytrillva/midnight-sub001/internal/storage/sqlite"
	"github.com/tommytrillva/midnight-sub001/internal/storage/websocket"
)

// Dependencies holds the shared state database-backed backends need.
type Dependencies struct {
	VehicleCache   *cache.VehicleCache
	DriftRunCache  *cache.DriftRunCache
	LogManager     *logging.SlogManager
	SessionContext *session.Context

	// Database owns the DB connection for the sqlite and postgres
	// backends. Callers that share it (the monitor) can watch its
	// validity; nil makes the backend create a private one.
	Database *database.Manager
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(deps.Database, deps.VehicleCache, deps.DriftRunCache, deps.LogManager, deps.SessionContext), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: cfg.SQLite.DumpInterval,
			DumpDir:      cfg.SQLite.DumpDir,
		}, deps.Database, deps.VehicleCache, deps.DriftRunCache, deps.LogManager, deps.SessionContext)
	case "memory":
		return memory.New(cfg.Memory), nil
	case "websocket":
		return websocket.New(websocket.Config{
			URL:    httpToWS(cfg.Websocket.ServerURL),
			Secret: cfg.Websocket.APIKey,
		}), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// httpToWS rewrites an http(s) server URL to its ws(s) equivalent so the
// config can hold the same URL used for uploads.
func httpToWS(serverURL string) string {
	switch {
	case strings.HasPrefix(serverURL, "https://"):
		return "wss://" + strings.TrimPrefix(serverURL, "https://")
	case strings.HasPrefix(serverURL, "http://"):
		return "ws://" + strings.TrimPrefix(serverURL, "http://")
	default:
		return serverURL
	}
}
