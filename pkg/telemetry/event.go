// Package telemetry defines the typed event surface the vehicle dynamics
// core publishes and the bus that fans those events out to decoupled
// consumers (recorders, audio, VFX). Publishing is fire-and-forget: the
// simulation never waits on a listener.
package telemetry

import "time"

// Kind identifies a telemetry event type.
type Kind string

const (
	KindSpeedChanged   Kind = "speed_changed"
	KindTireScreech    Kind = "tire_screech"
	KindNitroActivated Kind = "nitro_activated"
	KindNitroDepleted  Kind = "nitro_depleted"
	KindNitroFlame     Kind = "nitro_flame"
	KindGearShifted    Kind = "gear_shifted"
	KindEngineRPM      Kind = "engine_rpm_updated"
	KindDriftStarted   Kind = "drift_started"
	KindDriftEnded     Kind = "drift_ended"
	KindSpinOut        Kind = "spin_out"
)

// Kinds lists every event kind the dynamics core emits, in a stable order.
var Kinds = []Kind{
	KindSpeedChanged,
	KindTireScreech,
	KindNitroActivated,
	KindNitroDepleted,
	KindNitroFlame,
	KindGearShifted,
	KindEngineRPM,
	KindDriftStarted,
	KindDriftEnded,
	KindSpinOut,
}

// Event is a single telemetry notification. It is a flat record: only the
// fields meaningful for the Kind are set, the rest stay zero.
//
//	speed_changed       Speed (km/h)
//	tire_screech        Intensity [0,1]
//	nitro_flame         Active
//	gear_shifted        Gear
//	engine_rpm_updated  RPM, Throttle
//	drift_ended         Score (zero after a spin-out)
type Event struct {
	Kind      Kind
	VehicleID uint16
	Tick      uint
	Time      time.Time

	Speed     float64
	Gear      int
	RPM       float64
	Throttle  float64
	Intensity float64
	Score     float64
	Active    bool
}

// Publisher is the write side of the bus. The dynamics core holds one;
// a nil Publisher is valid and silently discards events.
type Publisher interface {
	Publish(Event)
}
