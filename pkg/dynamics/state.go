package dynamics

import "github.com/tommytrillva/midnight-sub001/internal/physics"

// DriftState is the drift detection state machine's position.
type DriftState int

const (
	NotDrifting DriftState = iota
	Drifting
	SpinOut
)

func (s DriftState) String() string {
	switch s {
	case NotDrifting:
		return "not_drifting"
	case Drifting:
		return "drifting"
	case SpinOut:
		return "spin_out"
	default:
		return "unknown"
	}
}

// runtimeState is the per-vehicle mutable simulation state. It is owned
// exclusively by the VehicleDynamics instance; nothing else mutates it.
type runtimeState struct {
	// Body
	position physics.Vec2
	velocity physics.Vec2 // m/s, world space
	heading  float64      // rad
	yawRate  float64      // rad/s
	speed    float64      // m/s, signed along heading

	// Transmission
	gear       int // 0 = neutral, -1 = reverse, 1..N forward
	rpm        float64
	shifting   bool
	shiftTimer float64
	shiftFrom  float64 // RPM when the shift began

	// Drift
	driftState DriftState
	slipAngle  float64 // signed, rad
	driftDir   float64 // -1 or 1 while drifting
	driftScore float64
	counter    bool // countersteer input observed this tick

	// Nitro
	nitro       float64
	nitroActive bool
	burstTimer  float64
	drafting    bool

	// Steering
	steerAngle  float64 // actual wheel angle, rad
	steerTarget float64
	damagePull  float64 // oscillating pull added this tick, rad
	pullPhase   float64

	// Friction. gripFront/gripRear are the smoothed axle baselines; the
	// eff values add this tick's downforce and weather modifiers and are
	// what the integrator actually uses.
	gripFront float64
	gripRear  float64
	effFront  float64
	effRear   float64
	hydro     bool // hydroplaning active

	// Modifier snapshot for this tick
	gripMult      float64
	wetness       float64
	skillHandle   float64
	skillSpeed    float64
	damage        float64
	controlTorque float64 // traction control + weight transfer, applied at integration

	tick uint
	time float64 // simulation seconds since reset
}

// StateSnapshot is a read-only copy of the runtime state, taken once per
// tick for recording and streaming. Plain values only; safe to hand to
// another goroutine.
type StateSnapshot struct {
	VehicleID uint16
	Tick      uint
	SimTime   float64

	Position physics.Vec2
	Heading  float64
	YawRate  float64
	Speed    float64 // m/s
	SpeedKmh float64

	Gear     int
	RPM      float64
	Shifting bool

	Throttle   float64
	Brake      float64
	SteerAngle float64
	Handbrake  bool

	DriftState   DriftState
	DriftAngle   float64
	DriftScore   float64
	GripFront    float64
	GripRear     float64
	Hydroplaning bool

	Nitro       float64
	NitroActive bool
	Drafting    bool
}

// Snapshot returns a copy of the vehicle's current state.
func (v *VehicleDynamics) Snapshot() StateSnapshot {
	return StateSnapshot{
		VehicleID:    v.id,
		Tick:         v.state.tick,
		SimTime:      v.state.time,
		Position:     v.state.position,
		Heading:      v.state.heading,
		YawRate:      v.state.yawRate,
		Speed:        v.state.speed,
		SpeedKmh:     v.state.speed * 3.6,
		Gear:         v.state.gear,
		RPM:          v.state.rpm,
		Shifting:     v.state.shifting,
		Throttle:     v.input.Throttle,
		Brake:        v.input.Brake,
		SteerAngle:   v.state.steerAngle,
		Handbrake:    v.input.Handbrake,
		DriftState:   v.state.driftState,
		DriftAngle:   v.state.slipAngle,
		DriftScore:   v.state.driftScore,
		GripFront:    v.state.effFront,
		GripRear:     v.state.effRear,
		Hydroplaning: v.state.hydro,
		Nitro:        v.state.nitro,
		NitroActive:  v.state.nitroActive,
		Drafting:     v.state.drafting,
	}
}
