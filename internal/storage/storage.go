// internal/storage/storage.go
package storage

import (
	"time"

	"github.com/tommytrillva/midnight-sub001/internal/model"
	"github.com/tommytrillva/midnight-sub001/pkg/core"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(session *core.Session, track *core.Track) error
	EndSession() error

	// Entity registration
	AddVehicle(v *core.Vehicle) error

	// Telemetry recording
	RecordSample(s *core.VehicleSample) error
	RecordEvent(e *core.RaceEvent) error

	// Drift run lifecycle. AddDriftRun opens a run and returns its
	// backend-assigned ID (0 if the backend assigns none); EndDriftRun
	// finalizes the run identified by DriftRun.ID.
	AddDriftRun(d *core.DriftRun) (uint, error)
	EndDriftRun(d *core.DriftRun) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the replay web frontend.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}

// DBWriteDurationProvider is an optional interface for backends that
// track how long their last database flush took.
type DBWriteDurationProvider interface {
	GetLastDBWriteDuration() time.Duration
}

// QueueLengthProvider is an optional interface for backends with
// internal write queues, so the monitor can sample their depth.
type QueueLengthProvider interface {
	QueueLengths() model.QueueLengths
}
