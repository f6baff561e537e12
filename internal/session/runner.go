package session

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/tommytrillva/midnight-sub001/internal/logging"
	"github.com/tommytrillva/midnight-sub001/internal/model/convert"
	"github.com/tommytrillva/midnight-sub001/internal/scenario"
	"github.com/tommytrillva/midnight-sub001/pkg/core"
	"github.com/tommytrillva/midnight-sub001/pkg/dynamics"
	"github.com/tommytrillva/midnight-sub001/pkg/telemetry"
)

// Store is the slice of the storage backend the runner drives directly.
// Samples and events flow through the Recorder instead.
type Store interface {
	StartSession(session *core.Session, track *core.Track) error
	EndSession() error
}

// Recorder receives vehicles and per-frame snapshots from the loop.
type Recorder interface {
	AddVehicle(v *core.Vehicle)
	RecordSample(snap dynamics.StateSnapshot) error
}

// RunnerDependencies holds all dependencies for the session runner
type RunnerDependencies struct {
	Backend        Store
	Recorder       Recorder
	SessionContext *Context
	LogManager     *logging.SlogManager

	// Publisher is handed to every vehicle's dynamics core. Nil is
	// valid and silences telemetry.
	Publisher telemetry.Publisher
}

// RunnerConfig parameterizes one session run.
type RunnerConfig struct {
	SessionName     string
	ScenarioName    string
	Tag             string
	RecorderVersion string

	TickRate        float64
	CaptureEveryNth uint
	Realtime        bool

	// Tuning is the base vehicle tune; per-vehicle stats are applied
	// on top of it.
	Tuning dynamics.VehicleConfig
}

// weatherState is the shared grip provider for every vehicle. The loop
// goroutine is the only writer; dynamics reads it once per tick on the
// same goroutine.
type weatherState struct {
	grip    float64
	wetness float64
}

func (w *weatherState) Grip() (mult, wetness float64) {
	return w.grip, w.wetness
}

// vehicleSlot pairs a dynamics core with its staged input and damage
// fraction. It doubles as the vehicle's damage provider.
type vehicleSlot struct {
	id     uint16
	dyn    *dynamics.VehicleDynamics
	input  dynamics.InputState
	damage float64
}

func (s *vehicleSlot) Damage() float64 {
	return s.damage
}

// Runner advances a scripted session at a fixed tick rate: it applies
// scenario directives, ticks every vehicle's dynamics, and samples state
// every capture frame.
type Runner struct {
	deps   RunnerDependencies
	cfg    RunnerConfig
	script *scenario.Script

	weather weatherState
	slots   []*vehicleSlot
	byID    map[uint16]*vehicleSlot

	tickNanos atomic.Int64
}

// NewRunner creates a runner for one script.
func NewRunner(deps RunnerDependencies, cfg RunnerConfig, script *scenario.Script) *Runner {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.CaptureEveryNth == 0 {
		cfg.CaptureEveryNth = 1
	}
	return &Runner{
		deps:    deps,
		cfg:     cfg,
		script:  script,
		weather: weatherState{grip: 1},
		byID:    make(map[uint16]*vehicleSlot),
	}
}

// TickDurationMs reports how long the last simulation tick took,
// feeding the performance monitor.
func (r *Runner) TickDurationMs() float32 {
	return float32(r.tickNanos.Load()) / 1e6
}

// Run executes the script from start to end time. Cancelling the context
// stops the loop early; the session is finalized either way.
func (r *Runner) Run(ctx context.Context) error {
	sess, track := r.buildSession()

	gormSess := convert.CoreToSession(*sess)
	gormTrack := convert.CoreToTrack(*track)
	r.deps.SessionContext.SetSession(&gormSess, &gormTrack)

	if err := r.deps.Backend.StartSession(sess, track); err != nil {
		return fmt.Errorf("error starting session: %w", err)
	}

	r.spawnVehicles()

	log := r.deps.LogManager.Logger()
	log.Info("Session started",
		"session", sess.Name,
		"track", track.Name,
		"vehicles", len(r.slots),
		"tickRate", r.cfg.TickRate,
		"endTime", r.script.EndTime)

	dt := 1 / r.cfg.TickRate
	totalTicks := uint(math.Ceil(r.script.EndTime * r.cfg.TickRate))

	var ticker *time.Ticker
	if r.cfg.Realtime {
		ticker = time.NewTicker(time.Duration(float64(time.Second) * dt))
		defer ticker.Stop()
	}

	stepIdx := 0
	var runErr error

loop:
	for tick := uint(0); tick < totalTicks; tick++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		default:
		}

		simTime := float64(tick) * dt
		for stepIdx < len(r.script.Steps) && r.script.Steps[stepIdx].At <= simTime+1e-9 {
			r.applyStep(r.script.Steps[stepIdx])
			stepIdx++
		}

		start := time.Now()
		for _, slot := range r.slots {
			slot.dyn.SetInput(slot.input)
			slot.input.ShiftUp = false
			slot.input.ShiftDown = false
			slot.dyn.Tick(dt)
		}
		r.tickNanos.Store(int64(time.Since(start)))

		r.deps.SessionContext.CaptureFrame.Inc()

		if tick%r.cfg.CaptureEveryNth == 0 {
			for _, slot := range r.slots {
				if err := r.deps.Recorder.RecordSample(slot.dyn.Snapshot()); err != nil {
					log.Warn("Failed to record sample", "vehicleID", slot.id, "error", err)
				}
			}
		}

		if r.cfg.Realtime {
			select {
			case <-ctx.Done():
				runErr = ctx.Err()
				break loop
			case <-ticker.C:
			}
		}
	}

	if err := r.deps.Backend.EndSession(); err != nil {
		if runErr == nil {
			runErr = fmt.Errorf("error ending session: %w", err)
		} else {
			log.Error("Failed to end session", "error", err)
		}
	}

	log.Info("Session ended", "frames", r.deps.SessionContext.CaptureFrame.Value())
	return runErr
}

func (r *Runner) buildSession() (*core.Session, *core.Track) {
	sess := &core.Session{
		Name:            r.cfg.SessionName,
		Scenario:        r.cfg.ScenarioName,
		StartTime:       time.Now(),
		TickRate:        r.cfg.TickRate,
		CaptureInterval: r.cfg.CaptureEveryNth,
		Tag:             r.cfg.Tag,
		RecorderVersion: r.cfg.RecorderVersion,
	}
	track := &core.Track{
		Name:      r.script.Track.Name,
		Author:    r.script.Track.Author,
		Latitude:  r.script.Track.OriginLat,
		Longitude: r.script.Track.OriginLon,
		SizeM:     r.script.Track.SizeM,
	}
	return sess, track
}

// spawnVehicles builds a dynamics core per grid entry and registers the
// vehicle with the recorder.
func (r *Runner) spawnVehicles() {
	for _, vd := range r.script.Vehicles {
		slot := &vehicleSlot{id: vd.ID}
		slot.dyn = dynamics.New(vd.ID, r.cfg.Tuning,
			dynamics.WithEmitter(r.deps.Publisher),
			dynamics.WithGripProvider(&r.weather),
			dynamics.WithDamageProvider(slot),
		)
		stats := vd.Stats
		slot.dyn.SetupFromData(&stats)

		r.slots = append(r.slots, slot)
		r.byID[vd.ID] = slot

		r.deps.Recorder.AddVehicle(&core.Vehicle{
			ID:               vd.ID,
			JoinTime:         time.Now(),
			DisplayName:      vd.DisplayName,
			ClassName:        vd.ClassName,
			StatSpeed:        stats.Speed,
			StatAcceleration: stats.Acceleration,
			StatHandling:     stats.Handling,
			StatBraking:      stats.Braking,
			Horsepower:       stats.Horsepower,
			WeightKg:         stats.WeightKg,
			HasNitro:         stats.HasNitro,
		})
	}
}

// applyStep routes one timed directive. VehicleID zero targets the
// whole grid.
func (r *Runner) applyStep(s scenario.Step) {
	if s.Kind == scenario.StepWeather {
		r.weather.grip = s.Grip
		r.weather.wetness = s.Wetness
		return
	}

	targets := r.slots
	if s.VehicleID != 0 {
		slot, ok := r.byID[s.VehicleID]
		if !ok {
			r.deps.LogManager.Logger().Warn("Directive targets unknown vehicle",
				"vehicleID", s.VehicleID, "at", s.At)
			return
		}
		targets = []*vehicleSlot{slot}
	}

	for _, slot := range targets {
		switch s.Kind {
		case scenario.StepInput:
			applyInput(&slot.input, s.Input)
		case scenario.StepDamage:
			slot.damage = s.Damage
		case scenario.StepDraft:
			slot.dyn.SetDrafting(s.DraftOn)
		}
	}
}

// applyInput merges a partial input change; nil fields keep their
// current value, shift flags are one-tick edges.
func applyInput(in *dynamics.InputState, ch scenario.InputChange) {
	if ch.Throttle != nil {
		in.Throttle = *ch.Throttle
	}
	if ch.Brake != nil {
		in.Brake = *ch.Brake
	}
	if ch.Steer != nil {
		in.Steer = *ch.Steer
	}
	if ch.Handbrake != nil {
		in.Handbrake = *ch.Handbrake
	}
	if ch.Nitro != nil {
		in.Nitro = *ch.Nitro
	}
	if ch.ShiftUp {
		in.ShiftUp = true
	}
	if ch.ShiftDown {
		in.ShiftDown = true
	}
}
