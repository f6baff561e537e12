// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/tommytrillva/midnight-sub001/internal/config"
	"github.com/tommytrillva/midnight-sub001/pkg/core"
)

// VehicleRecord groups a vehicle with all its time-series data
type VehicleRecord struct {
	Vehicle core.Vehicle
	Samples []core.VehicleSample
	Events  []core.RaceEvent
}

// Backend stores session data in memory and exports a replay file when
// the session ends.
type Backend struct {
	cfg     config.MemoryConfig
	session *core.Session
	track   *core.Track

	vehicles  map[uint16]*VehicleRecord // keyed by vehicle ID
	driftRuns []core.DriftRun

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		vehicles: make(map[uint16]*VehicleRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session
func (b *Backend) StartSession(session *core.Session, track *core.Track) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = session
	b.track = track

	// Reset all collections
	b.vehicles = make(map[uint16]*VehicleRecord)
	b.driftRuns = nil
	b.idCounter = 0

	return nil
}

// EndSession finalizes and exports the session data
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.exportJSON()
}

// AddVehicle registers a new vehicle
func (b *Backend) AddVehicle(v *core.Vehicle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.vehicles[v.ID] = &VehicleRecord{
		Vehicle: *v,
		Samples: make([]core.VehicleSample, 0),
		Events:  make([]core.RaceEvent, 0),
	}
	return nil
}

// GetVehicleByID looks up a vehicle by its ID
func (b *Backend) GetVehicleByID(id uint16) (*core.Vehicle, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if record, ok := b.vehicles[id]; ok {
		return &record.Vehicle, true
	}
	return nil, false
}

// RecordByID returns a copy of a vehicle's record with all its
// time-series data.
func (b *Backend) RecordByID(id uint16) (VehicleRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	record, ok := b.vehicles[id]
	if !ok {
		return VehicleRecord{}, false
	}
	out := VehicleRecord{Vehicle: record.Vehicle}
	out.Samples = append(out.Samples, record.Samples...)
	out.Events = append(out.Events, record.Events...)
	return out, true
}

// DriftRuns returns a copy of all drift runs recorded so far.
func (b *Backend) DriftRuns() []core.DriftRun {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]core.DriftRun(nil), b.driftRuns...)
}

// RecordSample records a vehicle sample
func (b *Backend) RecordSample(s *core.VehicleSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.vehicles[s.VehicleID]; ok {
		record.Samples = append(record.Samples, *s)
	}
	return nil // silently ignore if vehicle not found
}

// RecordEvent records a race event
func (b *Backend) RecordEvent(e *core.RaceEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.vehicles[e.VehicleID]; ok {
		record.Events = append(record.Events, *e)
	}
	return nil
}

// AddDriftRun opens a drift run and assigns it a backend-local ID
func (b *Backend) AddDriftRun(d *core.DriftRun) (uint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	d.ID = b.idCounter
	b.driftRuns = append(b.driftRuns, *d)
	return d.ID, nil
}

// EndDriftRun finalizes the open drift run with matching ID
func (b *Backend) EndDriftRun(d *core.DriftRun) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.driftRuns {
		if b.driftRuns[i].ID == d.ID {
			b.driftRuns[i].EndFrame = d.EndFrame
			b.driftRuns[i].DurationSecs = d.DurationSecs
			b.driftRuns[i].PeakAngle = d.PeakAngle
			b.driftRuns[i].Score = d.Score
			b.driftRuns[i].SpinOut = d.SpinOut
			return nil
		}
	}
	return nil // silently ignore unknown runs
}
