package scenario

import "github.com/tommytrillva/midnight-sub001/pkg/dynamics"

// TrackDirective describes the course a script runs on.
type TrackDirective struct {
	Name      string
	Author    string
	OriginLat float64
	OriginLon float64
	SizeM     float64
}

// VehicleDirective describes one car entering the session, with the
// abstract stats its dynamics tune is derived from.
type VehicleDirective struct {
	ID          uint16
	DisplayName string
	ClassName   string
	Stats       dynamics.VehicleStats
}

// StepKind discriminates the timed directive payloads.
type StepKind int

const (
	StepInput StepKind = iota
	StepWeather
	StepDamage
	StepDraft
)

// InputChange holds a partial input update. Nil fields leave the
// current input untouched; shift flags are one-tick edges.
type InputChange struct {
	Throttle  *float64
	Brake     *float64
	Steer     *float64
	Handbrake *bool
	Nitro     *bool
	ShiftUp   bool
	ShiftDown bool
}

// Step is one timed directive. VehicleID zero targets every vehicle.
type Step struct {
	At        float64
	VehicleID uint16
	Kind      StepKind

	Input   InputChange
	Grip    float64
	Wetness float64
	Damage  float64
	DraftOn bool
}

// Script is a parsed scenario: the track, the grid, and the timed
// directives in playback order.
type Script struct {
	Track    TrackDirective
	Vehicles []VehicleDirective
	Steps    []Step
	EndTime  float64
}
