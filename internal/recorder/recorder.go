// Package recorder bridges the telemetry bus and the storage backend: it
// subscribes to the event kinds the dynamics core emits, converts them to
// recording rows, and owns the drift-run lifecycle.
package recorder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tommytrillva/midnight-sub001/internal/cache"
	"github.com/tommytrillva/midnight-sub001/internal/geo"
	"github.com/tommytrillva/midnight-sub001/internal/influx"
	"github.com/tommytrillva/midnight-sub001/internal/logging"
	"github.com/tommytrillva/midnight-sub001/internal/session"
	"github.com/tommytrillva/midnight-sub001/internal/storage"
	"github.com/tommytrillva/midnight-sub001/pkg/core"
	"github.com/tommytrillva/midnight-sub001/pkg/dynamics"
	"github.com/tommytrillva/midnight-sub001/pkg/telemetry"
)

// ErrTooEarlyForSampleAssociation is returned when telemetry arrives
// before its vehicle is registered
var ErrTooEarlyForSampleAssociation = fmt.Errorf("too early for sample association")

// Dependencies holds all dependencies for the recorder manager
type Dependencies struct {
	VehicleCache   *cache.VehicleCache
	DriftRunCache  *cache.DriftRunCache
	LogManager     *logging.SlogManager
	SessionContext *session.Context

	// Geo anchors sample lat/lon; nil leaves them zero.
	Geo *geo.Ref

	// Influx mirrors samples to the metrics sink; nil disables mirroring.
	Influx *influx.Manager
}

// openRun tracks a drift run between its start and end events. The peak
// angle comes from samples, which are the only continuous signal the
// recorder sees.
type openRun struct {
	run       core.DriftRun
	peakAngle float64
}

// Manager consumes telemetry events and per-frame samples and writes
// them through the storage backend.
type Manager struct {
	deps    Dependencies
	backend storage.Backend

	mu       sync.Mutex
	openRuns map[uint16]*openRun
	spunOut  map[uint16]bool
}

// NewManager creates a new recorder manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	return &Manager{
		deps:     deps,
		backend:  backend,
		openRuns: make(map[uint16]*openRun),
		spunOut:  make(map[uint16]bool),
	}
}

// RegisterHandlers subscribes the recorder to the bus. Drift lifecycle
// events are synchronous so the open-run bookkeeping is settled before
// the next sample arrives; discrete events are buffered by volume.
// Continuous kinds (speed_changed, engine_rpm_updated, nitro_flame) are
// already captured by the per-frame samples and are left to the
// audio/VFX subscribers.
func (m *Manager) RegisterHandlers(bus *telemetry.Bus) {
	bus.Subscribe(telemetry.KindDriftStarted, m.handleDriftStarted, telemetry.Logged())
	bus.Subscribe(telemetry.KindDriftEnded, m.handleDriftEnded, telemetry.Logged())
	bus.Subscribe(telemetry.KindSpinOut, m.handleSpinOut, telemetry.Logged())

	bus.Subscribe(telemetry.KindGearShifted, m.handleGearShifted, telemetry.Buffered(1000), telemetry.Logged())
	bus.Subscribe(telemetry.KindTireScreech, m.handleTireScreech, telemetry.Buffered(5000), telemetry.Logged())
	bus.Subscribe(telemetry.KindNitroActivated, m.handleNitroActivated, telemetry.Buffered(500), telemetry.Logged())
	bus.Subscribe(telemetry.KindNitroDepleted, m.handleNitroDepleted, telemetry.Buffered(500), telemetry.Logged())
}

// AddVehicle registers a vehicle joining the session: cached for event
// association, then handed to the backend.
func (m *Manager) AddVehicle(v *core.Vehicle) {
	m.deps.VehicleCache.Add(*v)
	m.backend.AddVehicle(v)
}

// RecordSample converts one dynamics snapshot into a vehicle sample and
// writes it. Called by the session runner every capture frame.
func (m *Manager) RecordSample(snap dynamics.StateSnapshot) error {
	if _, ok := m.deps.VehicleCache.Get(snap.VehicleID); !ok {
		return ErrTooEarlyForSampleAssociation
	}

	s := core.VehicleSample{
		VehicleID:    snap.VehicleID,
		Time:         time.Now(),
		CaptureFrame: snap.Tick,
		Position:     core.Position2D{X: snap.Position.X, Y: snap.Position.Y},
		Heading:      snap.Heading,
		SpeedKmh:     snap.SpeedKmh,
		Gear:         snap.Gear,
		RPM:          snap.RPM,
		Shifting:     snap.Shifting,
		Throttle:     snap.Throttle,
		Brake:        snap.Brake,
		DriftState:   snap.DriftState.String(),
		DriftAngle:   snap.DriftAngle,
		DriftScore:   snap.DriftScore,
		GripFront:    snap.GripFront,
		GripRear:     snap.GripRear,
		Hydroplaning: snap.Hydroplaning,
		Nitro:        snap.Nitro,
		NitroActive:  snap.NitroActive,
		Drafting:     snap.Drafting,
	}

	if m.deps.Geo != nil {
		s.Lon, s.Lat = m.deps.Geo.ToLonLat(s.Position)
	}

	m.backend.RecordSample(&s)
	m.trackPeakAngle(&s)

	if m.deps.Influx != nil {
		name := m.deps.SessionContext.GetSession().Name
		point := influx.SamplePoint(name, &s)
		if err := m.deps.Influx.WritePoint(context.Background(), influx.BucketSessionData, point); err != nil {
			m.deps.LogManager.Logger().Warn("Failed to mirror sample to influx", "error", err)
		}
	}

	return nil
}

// trackPeakAngle folds a sample's drift angle into the vehicle's open
// run, if one exists.
func (m *Manager) trackPeakAngle(s *core.VehicleSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.openRuns[s.VehicleID]; ok {
		angle := s.DriftAngle
		if angle < 0 {
			angle = -angle
		}
		if angle > o.peakAngle {
			o.peakAngle = angle
		}
	}
}

func (m *Manager) handleDriftStarted(e telemetry.Event) {
	if _, ok := m.deps.VehicleCache.Get(e.VehicleID); !ok {
		m.deps.LogManager.Logger().Warn("Drift start for unknown vehicle", "vehicleID", e.VehicleID)
		return
	}

	run := core.DriftRun{
		VehicleID:  e.VehicleID,
		StartFrame: e.Tick,
		StartTime:  e.Time,
	}

	id, err := m.backend.AddDriftRun(&run)
	if err != nil {
		m.deps.LogManager.Logger().Error("Failed to open drift run", "vehicleID", e.VehicleID, "error", err)
		return
	}
	run.ID = id

	// Cache the assigned ID so the end handler can find this run
	if id != 0 {
		m.deps.DriftRunCache.Set(e.VehicleID, id)
	}

	m.mu.Lock()
	m.openRuns[e.VehicleID] = &openRun{run: run}
	delete(m.spunOut, e.VehicleID)
	m.mu.Unlock()
}

func (m *Manager) handleDriftEnded(e telemetry.Event) {
	m.closeDriftRun(e, false)
	m.recordEvent(e, e.Score, nil)
}

func (m *Manager) handleSpinOut(e telemetry.Event) {
	// A spin-out forfeits the run's score.
	m.closeDriftRun(e, true)
	m.recordEvent(e, 0, nil)
}

// closeDriftRun finalizes the vehicle's open run with the end frame,
// duration, peak angle, and banked score. A spin-out arrives as a
// spin_out event immediately followed by a zero-score drift_ended for
// the same run; the spin-out closes the run and the trailing drift_ended
// is absorbed without a warning.
func (m *Manager) closeDriftRun(e telemetry.Event, spinOut bool) {
	m.mu.Lock()
	o, ok := m.openRuns[e.VehicleID]
	delete(m.openRuns, e.VehicleID)
	if !ok {
		absorbed := !spinOut && m.spunOut[e.VehicleID]
		delete(m.spunOut, e.VehicleID)
		m.mu.Unlock()
		if !absorbed {
			m.deps.LogManager.Logger().Warn("Drift end without open run", "vehicleID", e.VehicleID)
		}
		return
	}
	if spinOut {
		m.spunOut[e.VehicleID] = true
	} else {
		delete(m.spunOut, e.VehicleID)
	}
	m.mu.Unlock()

	run := o.run
	run.EndFrame = e.Tick
	run.PeakAngle = o.peakAngle
	run.SpinOut = spinOut
	if !spinOut {
		run.Score = e.Score
	}

	tickRate := float64(m.deps.SessionContext.GetSession().TickRate)
	if tickRate > 0 && run.EndFrame >= run.StartFrame {
		run.DurationSecs = float64(run.EndFrame-run.StartFrame) / tickRate
	}

	m.backend.EndDriftRun(&run)
	m.deps.DriftRunCache.Delete(e.VehicleID)
}

func (m *Manager) handleGearShifted(e telemetry.Event) {
	m.recordEvent(e, float64(e.Gear), nil)
}

func (m *Manager) handleTireScreech(e telemetry.Event) {
	m.recordEvent(e, e.Intensity, nil)
}

func (m *Manager) handleNitroActivated(e telemetry.Event) {
	m.recordEvent(e, 0, nil)
}

func (m *Manager) handleNitroDepleted(e telemetry.Event) {
	m.recordEvent(e, 0, nil)
}

// recordEvent converts a telemetry event into a race event row.
func (m *Manager) recordEvent(e telemetry.Event, value float64, extra map[string]any) {
	if _, ok := m.deps.VehicleCache.Get(e.VehicleID); !ok {
		m.deps.LogManager.Logger().Warn("Event for unknown vehicle",
			"kind", string(e.Kind), "vehicleID", e.VehicleID)
		return
	}

	ev := core.RaceEvent{
		VehicleID:    e.VehicleID,
		Time:         e.Time,
		CaptureFrame: e.Tick,
		Kind:         string(e.Kind),
		Value:        value,
		ExtraData:    extra,
	}
	m.backend.RecordEvent(&ev)
}

// OpenRunCount reports how many drift runs are currently in flight.
func (m *Manager) OpenRunCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.openRuns)
}
