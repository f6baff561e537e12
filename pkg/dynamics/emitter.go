package dynamics

import (
	"math"

	"github.com/tommytrillva/midnight-sub001/internal/physics"
	"github.com/tommytrillva/midnight-sub001/pkg/telemetry"
)

// emitterState tracks what the telemetry side has already been told, so
// continuous quantities only publish when their bucket changes and the
// screech stream is rate-limited. Listeners get at most one event per
// meaningful change.
type emitterState struct {
	lastSpeedBucket int
	lastRPMBucket   int
	lastGear        int
	flameOn         bool
	lastScreech     float64 // sim time of the last screech event
	screeching      bool
}

func (v *VehicleDynamics) publish(e telemetry.Event) {
	if v.pub == nil {
		return
	}
	e.VehicleID = v.id
	e.Tick = v.state.tick
	v.pub.Publish(e)
}

// emitTelemetry publishes the per-tick continuous signals: bucketed
// speed, bucketed RPM with throttle for audio pitch-mapping, and the
// tire-screech intensity while sliding above the speed floor.
func (v *VehicleDynamics) emitTelemetry(dt float64) {
	st := &v.state
	cfg := &v.cfg

	kmh := math.Abs(st.speed) * 3.6
	bucket := int(kmh / cfg.SpeedBucket)
	if bucket != v.emit.lastSpeedBucket {
		v.emit.lastSpeedBucket = bucket
		v.publish(telemetry.Event{Kind: telemetry.KindSpeedChanged, Speed: kmh})
	}

	rpmBucket := int(st.rpm / cfg.RPMBucket)
	if rpmBucket != v.emit.lastRPMBucket {
		v.emit.lastRPMBucket = rpmBucket
		v.publish(telemetry.Event{
			Kind:     telemetry.KindEngineRPM,
			RPM:      st.rpm,
			Throttle: v.input.Throttle,
		})
	}

	v.emitScreech()
}

// emitScreech publishes tire-screech intensity while drifting or
// handbraking above the speed floor, at most once per configured
// interval. A stopped slide publishes one zero-intensity event so
// listeners can fade out.
func (v *VehicleDynamics) emitScreech() {
	st := &v.state
	cfg := &v.cfg

	sliding := (st.driftState == Drifting || v.input.Handbrake) &&
		math.Abs(st.speed) > cfg.ScreechFloor

	if !sliding {
		if v.emit.screeching {
			v.emit.screeching = false
			v.publish(telemetry.Event{Kind: telemetry.KindTireScreech})
		}
		return
	}

	if st.time-v.emit.lastScreech < cfg.ScreechInterval && v.emit.screeching {
		return
	}
	v.emit.lastScreech = st.time
	v.emit.screeching = true

	intensity := physics.Clamp01(math.Abs(st.slipAngle) / math.Max(cfg.SpinOutAngle, 1e-9))
	if v.input.Handbrake {
		intensity = math.Max(intensity, 0.6)
	}
	v.publish(telemetry.Event{Kind: telemetry.KindTireScreech, Intensity: intensity})
}

func (v *VehicleDynamics) emitGearShift(gear int) {
	if gear == v.emit.lastGear {
		return
	}
	v.emit.lastGear = gear
	v.publish(telemetry.Event{Kind: telemetry.KindGearShifted, Gear: gear})
}

func (v *VehicleDynamics) emitNitroActivated() {
	v.publish(telemetry.Event{Kind: telemetry.KindNitroActivated})
}

func (v *VehicleDynamics) emitNitroDepleted() {
	v.publish(telemetry.Event{Kind: telemetry.KindNitroDepleted})
}

func (v *VehicleDynamics) emitNitroFlame(on bool) {
	if v.emit.flameOn == on {
		return
	}
	v.emit.flameOn = on
	v.publish(telemetry.Event{Kind: telemetry.KindNitroFlame, Active: on})
}

func (v *VehicleDynamics) emitDriftStarted() {
	v.publish(telemetry.Event{Kind: telemetry.KindDriftStarted})
}

func (v *VehicleDynamics) emitDriftEnded(score float64) {
	v.publish(telemetry.Event{Kind: telemetry.KindDriftEnded, Score: score})
}

func (v *VehicleDynamics) emitSpinOut() {
	v.publish(telemetry.Event{Kind: telemetry.KindSpinOut})
	v.publish(telemetry.Event{Kind: telemetry.KindDriftEnded})
}
