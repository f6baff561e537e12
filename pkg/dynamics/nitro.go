package dynamics

import "github.com/tommytrillva/midnight-sub001/internal/physics"

// updateNitro runs the boost fuel state machine: activation on request
// when fuel is available, burst decay, drain to forced deactivation, and
// regeneration from the passive trickle plus drift and draft bonuses.
// Fuel is clamped to [0, capacity] on every write.
func (v *VehicleDynamics) updateNitro(dt float64) {
	st := &v.state
	cfg := &v.cfg

	if !st.nitroActive && v.input.Nitro && st.nitro > 0 && cfg.NitroCapacity > 0 {
		st.nitroActive = true
		st.burstTimer = cfg.NitroBurstTime
		v.emitNitroActivated()
		v.emitNitroFlame(true)
	}

	if st.nitroActive {
		if !v.input.Nitro {
			st.nitroActive = false
			st.burstTimer = 0
			v.emitNitroFlame(false)
			return
		}
		// The activation tick burns fuel too.
		st.nitro -= cfg.NitroDrainRate * dt
		if st.burstTimer > 0 {
			st.burstTimer -= dt
		}
		if st.nitro <= 0 {
			st.nitro = 0
			st.nitroActive = false
			st.burstTimer = 0
			v.emitNitroDepleted()
			v.emitNitroFlame(false)
		}
		return
	}

	// Regeneration only while not firing.
	regen := cfg.NitroRegenIdle
	if st.driftState == Drifting {
		regen += cfg.NitroRegenDrift
	}
	if st.drafting {
		regen += cfg.NitroRegenDraft
	}
	st.nitro = physics.Clamp(st.nitro+regen*dt, 0, cfg.NitroCapacity)
}

// nitroMult is the engine force multiplier contributed by the boost:
// 1 when inactive, decaying from the burst value to steady state over
// the burst window while active.
func (v *VehicleDynamics) nitroMult() float64 {
	st := &v.state
	cfg := &v.cfg

	if !st.nitroActive {
		return 1
	}
	if st.burstTimer <= 0 {
		return cfg.NitroForceMult
	}
	frac := physics.Clamp01(st.burstTimer / cfg.NitroBurstTime)
	return physics.Lerp(cfg.NitroForceMult, cfg.NitroBurstMult, frac)
}
