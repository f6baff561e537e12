package dynamics

import (
	"math"

	"github.com/tommytrillva/midnight-sub001/internal/physics"
)

// applySurface layers the external weather and damage modifiers onto this
// tick's effective grip and steering: the grip multiplier scales both
// axles, wetness loosens the rear when not already sliding, hydroplaning
// slashes grip until speed drops, and accumulated damage adds an
// oscillating steering pull.
func (v *VehicleDynamics) applySurface(dt float64) {
	st := &v.state
	cfg := &v.cfg

	st.effFront = math.Max(st.effFront*st.gripMult, 0)
	st.effRear = math.Max(st.effRear*st.gripMult, 0)

	// Wet oversteer tendency: only outside a drift, where the rear is
	// not already loose.
	if st.wetness > 0 && st.driftState != Drifting {
		st.effRear = math.Max(st.effRear*(1-cfg.WetRearLoss*st.wetness), 0)
	}

	v.updateHydroplaning(dt)
	if st.hydro {
		st.effFront *= cfg.HydroGripCut
		st.effRear *= cfg.HydroGripCut
	}

	// Damage pull: cosmetic destabilization above the damage floor,
	// growing with severity. Never full loss of control.
	if st.damage > cfg.DamageFloor {
		severity := (st.damage - cfg.DamageFloor) / math.Max(1-cfg.DamageFloor, 1e-9)
		st.pullPhase += cfg.DamagePullHz * 2 * math.Pi * dt
		st.damagePull = math.Sin(st.pullPhase) * cfg.DamagePull * severity
	} else {
		st.damagePull = 0
	}
}

// updateHydroplaning rolls for entry above the speed and wetness
// thresholds and clears the state below the recovery speed. The risk is
// a probability per second, scaled by how far past both thresholds the
// car is.
func (v *VehicleDynamics) updateHydroplaning(dt float64) {
	st := &v.state
	cfg := &v.cfg
	speed := math.Abs(st.speed)

	if st.hydro {
		if speed < cfg.HydroRecovery {
			st.hydro = false
		}
		return
	}

	if speed < cfg.HydroSpeed || st.wetness < cfg.HydroWetness {
		return
	}

	excess := physics.Clamp01((st.wetness-cfg.HydroWetness)/math.Max(1-cfg.HydroWetness, 1e-9)) +
		physics.Clamp01(speed/cfg.HydroSpeed-1)
	chance := cfg.HydroRisk * (1 + excess) * dt
	if v.rng.Float64() < chance {
		st.hydro = true
	}
}
