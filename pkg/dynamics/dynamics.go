// Package dynamics implements the arcade vehicle simulation core: a
// per-tick model turning normalized driver input and a vehicle's abstract
// performance stats into longitudinal force, a transmission/RPM model, a
// handbrake-driven drift state machine, a nitro economy, traction control,
// and weather/damage-modulated grip. The resulting state is reported as
// telemetry events for decoupled audio/VFX/recording consumers.
//
// One VehicleDynamics instance exists per active vehicle and is advanced
// by Tick once per fixed physics frame. The owner goroutine is the only
// mutator; collaborator inputs are constructor-bound read-only interfaces
// snapshotted once per tick, with neutral defaults when absent.
package dynamics

import (
	"math"
	"math/rand"
	"time"

	"github.com/tommytrillva/midnight-sub001/internal/physics"
	"github.com/tommytrillva/midnight-sub001/pkg/telemetry"
)

// GripProvider supplies the road-condition grip multiplier and wetness
// from the weather collaborator. Neutral when absent: grip 1.0, wetness 0.
type GripProvider interface {
	Grip() (mult, wetness float64)
}

// SkillProvider supplies the handling and speed multipliers from the
// skill collaborator. Neutral when absent: 1.0 for both.
type SkillProvider interface {
	Multipliers() (handling, speed float64)
}

// DamageProvider supplies the vehicle's damage fraction [0,1] from its
// persistent data record. Neutral when absent: 0.
type DamageProvider interface {
	Damage() float64
}

// Option configures a VehicleDynamics at construction.
type Option func(*VehicleDynamics)

// WithEmitter binds the telemetry publisher. Nil is valid and silent.
func WithEmitter(p telemetry.Publisher) Option {
	return func(v *VehicleDynamics) { v.pub = p }
}

// WithGripProvider binds the weather collaborator.
func WithGripProvider(g GripProvider) Option {
	return func(v *VehicleDynamics) { v.gripProv = g }
}

// WithSkillProvider binds the skill collaborator.
func WithSkillProvider(s SkillProvider) Option {
	return func(v *VehicleDynamics) { v.skillProv = s }
}

// WithDamageProvider binds the damage source.
func WithDamageProvider(d DamageProvider) Option {
	return func(v *VehicleDynamics) { v.damageProv = d }
}

// WithRand injects the randomness source used for hydroplaning rolls,
// making weather effects deterministic under test.
func WithRand(r *rand.Rand) Option {
	return func(v *VehicleDynamics) { v.rng = r }
}

// VehicleDynamics is the composite simulation core for one vehicle.
type VehicleDynamics struct {
	id  uint16
	cfg VehicleConfig

	pub        telemetry.Publisher
	gripProv   GripProvider
	skillProv  SkillProvider
	damageProv DamageProvider
	rng        *rand.Rand

	pending InputState // staged by SetInput
	input   InputState // latched at the top of the tick

	state runtimeState
	emit  emitterState
}

// New creates a vehicle dynamics core. The config is normalized once; a
// zero config gets the full default tune.
func New(id uint16, cfg VehicleConfig, opts ...Option) *VehicleDynamics {
	cfg.normalize()

	v := &VehicleDynamics{
		id:  id,
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.rng == nil {
		v.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	v.reset()
	return v
}

// reset restores baseline runtime state, keeping position and heading.
func (v *VehicleDynamics) reset() {
	pos, hdg := v.state.position, v.state.heading

	v.state = runtimeState{
		position:    pos,
		heading:     hdg,
		gear:        1,
		rpm:         v.cfg.IdleRPM,
		gripFront:   v.cfg.GripFront,
		gripRear:    v.cfg.GripRear,
		effFront:    v.cfg.GripFront,
		effRear:     v.cfg.GripRear,
		nitro:       v.cfg.NitroCapacity,
		gripMult:    1,
		skillHandle: 1,
		skillSpeed:  1,
	}
	v.emit = emitterState{lastGear: 1}
}

// VehicleStats are the abstract performance stats carried by a vehicle's
// persistent record. SetupFromData derives the physical tune from them.
type VehicleStats struct {
	Speed        float64 // 0..200 class rating
	Acceleration float64
	Handling     float64
	Braking      float64
	Horsepower   float64
	WeightKg     float64
	HasNitro     bool
}

// SetupFromData hot-swaps the physical tune from abstract stats:
// top speed, engine and brake force, handling multiplier, mass, and nitro
// capacity are recomputed from the documented formulas and axle friction
// resets to baseline. Deterministic and idempotent; nil stats is a no-op.
func (v *VehicleDynamics) SetupFromData(stats *VehicleStats) {
	if stats == nil {
		return
	}

	v.cfg.TopSpeed = (80 + math.Max(stats.Speed, 0)*1.4) / 3.6
	v.cfg.SpeedAuthTop = v.cfg.TopSpeed * 0.9
	v.cfg.MaxEngineForce = 2000 + math.Max(stats.Acceleration, 0)*90 + math.Max(stats.Horsepower, 0)*8
	v.cfg.MaxBrakeForce = 4000 + math.Max(stats.Braking, 0)*110
	v.cfg.HandbrakeForce = v.cfg.MaxBrakeForce * 1.3
	v.cfg.HandlingStat = physics.Clamp(0.7+stats.Handling/100*0.6, v.cfg.HandlingMin, v.cfg.HandlingMax)
	v.cfg.MassKg = math.Max(stats.WeightKg, 1)
	if stats.HasNitro {
		v.cfg.NitroCapacity = 100
	} else {
		v.cfg.NitroCapacity = 0
	}

	v.state.gripFront = v.cfg.GripFront
	v.state.gripRear = v.cfg.GripRear
	v.state.nitro = physics.Clamp(v.state.nitro, 0, v.cfg.NitroCapacity)
}

// DriftScore returns the score accumulated by the current or last drift.
func (v *VehicleDynamics) DriftScore() float64 {
	return v.state.driftScore
}

// ResetDriftScore zeroes the accumulated drift score.
func (v *VehicleDynamics) ResetDriftScore() {
	v.state.driftScore = 0
}

// SetDrafting marks the vehicle as running in another car's slipstream.
// Set by the race-coordination collaborator; grants a nitro regen bonus.
func (v *VehicleDynamics) SetDrafting(on bool) {
	v.state.drafting = on
}

// Config returns the active (normalized, possibly hot-swapped) tune.
func (v *VehicleDynamics) Config() VehicleConfig {
	return v.cfg
}

// Tick advances the simulation one fixed step. The internal order is
// load-bearing: transmission and drift detection read last frame's body
// state, forces read this frame's drift and nitro state, and modifiers
// apply on top of everything before integration and telemetry.
func (v *VehicleDynamics) Tick(dt float64) {
	if dt <= 0 {
		return
	}

	v.sampleInput()
	v.snapshotModifiers()

	v.updateTransmission(dt)
	v.updateDrift(dt)
	v.updateNitro(dt)
	v.updateSteering(dt)

	force, brake := v.engineForces()

	v.updateTraction(dt)
	v.applyDownforce()
	v.applySurface(dt)

	v.integrate(dt, force, brake)

	v.state.tick++
	v.state.time += dt
	v.emitTelemetry(dt)
}

// snapshotModifiers takes the once-per-tick read of every external
// collaborator, defaulting to neutral when a provider is absent.
func (v *VehicleDynamics) snapshotModifiers() {
	v.state.gripMult, v.state.wetness = 1, 0
	if v.gripProv != nil {
		g, w := v.gripProv.Grip()
		v.state.gripMult = math.Max(g, 0)
		v.state.wetness = physics.Clamp01(w)
	}

	v.state.skillHandle, v.state.skillSpeed = 1, 1
	if v.skillProv != nil {
		h, s := v.skillProv.Multipliers()
		v.state.skillHandle = physics.Clamp(h, 0.1, 5)
		v.state.skillSpeed = physics.Clamp(s, 0.1, 5)
	}

	v.state.damage = 0
	if v.damageProv != nil {
		v.state.damage = physics.Clamp01(v.damageProv.Damage())
	}
}

// integrate advances the 2D arcade body. Longitudinal force acts along
// the heading; lateral grip realigns velocity toward the heading so low
// rear grip keeps a slide alive; yaw follows steering scaled by speed and
// front grip plus the control torques accumulated this tick.
func (v *VehicleDynamics) integrate(dt, force, brake float64) {
	st := &v.state
	hdg := physics.HeadingVec(st.heading)

	accel := force / v.cfg.MassKg
	st.velocity = st.velocity.Add(hdg.Scale(accel * dt))

	// Braking opposes the velocity and never reverses it within a tick.
	if brake > 0 && st.velocity.Length() > 1e-6 {
		dir := st.velocity.Normalized()
		drop := brake / v.cfg.MassKg * dt
		if drop >= st.velocity.Length() {
			st.velocity = physics.Vec2{}
		} else {
			st.velocity = st.velocity.Sub(dir.Scale(drop))
		}
	}

	// Lateral grip: realign velocity toward the heading direction. The
	// rear axle dominates slide behavior; the front keeps some authority.
	grip := st.effRear*0.7 + st.effFront*0.3
	speed := st.velocity.Length()
	if speed > 1e-6 {
		aligned := hdg.Scale(speed * physics.Sign(hdg.Dot(st.velocity)))
		t := physics.Clamp01(1 - math.Exp(-v.cfg.LateralGrip*grip*dt))
		st.velocity = st.velocity.Lerp(aligned, t)
	}

	// Yaw: steering torque scaled by speed and front grip, passive
	// damping, countersteer damping, and the accumulated control torque.
	yawAccel := st.steerAngle * speed / v.cfg.Wheelbase * st.effFront
	yawAccel += st.controlTorque
	st.yawRate += yawAccel * dt

	damp := v.cfg.YawDamping
	if st.counter {
		damp += v.cfg.CountersteerDamp
	}
	st.yawRate = physics.Approach(st.yawRate, 0, damp, dt)

	st.heading = physics.WrapAngle(st.heading + st.yawRate*dt)
	st.position = st.position.Add(st.velocity.Scale(dt))

	st.speed = st.velocity.Length() * physics.Sign(physics.HeadingVec(st.heading).Dot(st.velocity))
	if math.Abs(st.speed) < 1e-4 {
		st.speed = 0
	}

	st.controlTorque = 0
}
