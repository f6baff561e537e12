package core

import "time"

// RaceEvent is a discrete telemetry notification recorded during a
// session: gear shifts, nitro activity, drift lifecycle, spin-outs.
// Value carries the kind's numeric payload (gear, score, intensity);
// ExtraData anything structured beyond that.
type RaceEvent struct {
	ID           uint
	VehicleID    uint16
	Time         time.Time
	CaptureFrame uint
	Kind         string
	Value        float64
	ExtraData    map[string]any
}

// DriftRun aggregates one drift from entry to exit. A spin-out ends the
// run with its score discarded; Score holds what the run banked.
type DriftRun struct {
	ID           uint
	VehicleID    uint16
	StartFrame   uint
	EndFrame     uint
	StartTime    time.Time
	DurationSecs float64
	PeakAngle    float64
	Score        float64
	SpinOut      bool
}
