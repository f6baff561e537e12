package dynamics

import "github.com/tommytrillva/midnight-sub001/internal/physics"

// InputState is the normalized control snapshot for one tick. ShiftUp and
// ShiftDown are edge-triggered: the first tick that observes them consumes
// them.
type InputState struct {
	Throttle  float64 // [0,1]
	Brake     float64 // [0,1]
	Steer     float64 // [-1,1], positive = left
	Handbrake bool
	Nitro     bool
	ShiftUp   bool
	ShiftDown bool
}

// clamped returns a copy with every scalar forced into its valid range.
func (in InputState) clamped() InputState {
	in.Throttle = physics.Clamp01(in.Throttle)
	in.Brake = physics.Clamp01(in.Brake)
	in.Steer = physics.Clamp(in.Steer, -1, 1)
	return in
}

// SetInput stages the controls the next Tick will observe. Shift edges
// accumulate: a shift requested between ticks is not lost even if another
// SetInput call lands first.
func (v *VehicleDynamics) SetInput(in InputState) {
	up := v.pending.ShiftUp || in.ShiftUp
	down := v.pending.ShiftDown || in.ShiftDown
	v.pending = in.clamped()
	v.pending.ShiftUp = up
	v.pending.ShiftDown = down
}

// sampleInput latches the staged controls for this tick and consumes the
// shift edges.
func (v *VehicleDynamics) sampleInput() {
	v.input = v.pending
	v.pending.ShiftUp = false
	v.pending.ShiftDown = false
}
