package dynamics

import (
	"math"

	"github.com/tommytrillva/midnight-sub001/internal/physics"
)

// engineForces converts the tick's throttle/brake/gear/RPM/nitro state
// into a longitudinal drive force and a brake force, both in newtons.
func (v *VehicleDynamics) engineForces() (drive, brake float64) {
	st := &v.state
	cfg := &v.cfg
	in := v.input

	switch {
	case in.Handbrake:
		brake = cfg.HandbrakeForce
	case in.Brake > 0:
		brake = in.Brake*cfg.MaxBrakeForce + cfg.BrakeSupplement
	case in.Throttle == 0:
		// Coasting: light engine-braking drag, scaled by speed.
		ratio := physics.Clamp01(math.Abs(st.speed) / cfg.TopSpeed)
		brake = cfg.EngineBrakeDrag * ratio
	}

	// Clutch-out dead zone: no drive while shifting, and none in neutral.
	if st.shifting || st.gear == 0 || in.Throttle == 0 {
		return 0, brake
	}

	drive = in.Throttle * cfg.MaxEngineForce *
		v.powerCurve() * v.torqueCurve() * v.gearForceMult() *
		v.nitroMult() * st.skillSpeed

	if st.gear < 0 {
		drive = -drive * cfg.ReverseForce
	}

	return drive, brake
}

// powerCurve falls off quadratically as speed approaches the effective
// top speed; nitro temporarily raises that ceiling.
func (v *VehicleDynamics) powerCurve() float64 {
	top := v.cfg.TopSpeed
	if v.state.nitroActive {
		top *= 1 + v.cfg.NitroSpeedBoost
	}
	ratio := physics.Clamp01(math.Abs(v.state.speed) / math.Max(top, 1))
	return math.Max(1-ratio*ratio, 0)
}

// torqueCurve is a bounded parabola over normalized RPM, peaking at the
// configured fraction and floor-clamped so the car never feels dead off
// the peak.
func (v *VehicleDynamics) torqueCurve() float64 {
	n := v.state.rpm / v.cfg.Redline
	d := (n - v.cfg.TorquePeakFrac) / v.cfg.TorqueWidth
	return math.Max(1-d*d, v.cfg.TorqueFloor)
}
