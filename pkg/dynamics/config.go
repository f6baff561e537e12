package dynamics

import "github.com/tommytrillva/midnight-sub001/internal/physics"

// VehicleConfig is the flat record of feel tunables for one vehicle.
// Values are SI unless noted (meters, m/s, newtons, radians, seconds).
// A config is normalized once at construction; the simulation assumes
// every invariant below holds and never re-checks them per tick.
type VehicleConfig struct {
	// Engine
	MaxEngineForce  float64 // peak longitudinal force, N
	MaxBrakeForce   float64 // peak service-brake force, N
	HandbrakeForce  float64 // fixed brake force while the handbrake is pulled, N
	BrakeSupplement float64 // extra deceleration force while braking, N
	EngineBrakeDrag float64 // coasting drag at full speed, N
	IdleRPM         float64
	Redline         float64
	RPMBuffer       float64 // allowed overshoot above redline
	ShiftRPM        float64 // RPM the clutch-out dead zone settles toward
	TorquePeakFrac  float64 // normalized RPM where torque peaks, (0,1)
	TorqueWidth     float64 // half-width of the torque parabola
	TorqueFloor     float64 // minimum torque multiplier off the peak

	// Transmission
	GearRatios    []float64 // index 0 = first gear; strictly decreasing
	ReverseRatio  float64
	FinalDrive    float64
	WheelRadius   float64 // m
	ShiftTime     float64 // s, engine force is zero for this window
	ShiftUpFrac   float64 // auto up-shift at Redline*ShiftUpFrac
	ShiftDownFrac float64 // auto down-shift at Redline*ShiftDownFrac
	ReverseFloor  float64 // max speed at which reverse may be engaged, m/s

	// Steering
	MaxSteerAngle    float64 // rad
	HighSpeedSteer   float64 // authority multiplier approached at top speed
	LowSpeedBoost    float64 // extra authority below walking pace
	SteerAttackRate  float64 // smoothing rate toward an active input, 1/s
	SteerReleaseRate float64 // smoothing rate back to center, 1/s
	HandlingMin      float64 // clamp range for the combined handling multiplier
	HandlingMax      float64

	// Drift
	DriftEntryAngle   float64 // rad, slip angle to enter DRIFTING
	DriftExitFactor   float64 // exit at entry*factor; must be < 1 (hysteresis)
	DriftMinSpeed     float64 // m/s
	SpinOutAngle      float64 // rad, terminal slip angle
	DriftScoreRate    float64 // points per rad*m
	CountersteerBoost float64 // steering authority bonus while countersteering
	CountersteerDamp  float64 // extra yaw damping while countersteering, 1/s

	// Friction
	GripFront          float64 // baseline front axle grip
	GripRear           float64 // baseline rear axle grip
	DriftGripRear      float64 // rear target at zero throttle while drifting
	HandbrakeGripRear  float64 // rear minimum under handbrake / full-throttle drift
	DriftGripFrontMult float64 // front boost while drifting, preserves countersteer
	FrictionAttack     float64 // smoothing rate when shedding grip, 1/s
	FrictionRelease    float64 // smoothing rate when recovering grip, 1/s
	HandbrakeFloor     float64 // m/s, handbrake has no drift effect below this
	WeightTransfer     float64 // yaw torque scale from handbrake weight transfer

	// Nitro
	NitroCapacity   float64
	NitroDrainRate  float64 // units/s while firing
	NitroRegenIdle  float64 // passive trickle, units/s
	NitroRegenDrift float64 // bonus while drifting, units/s
	NitroRegenDraft float64 // bonus while drafting, units/s
	NitroForceMult  float64 // steady-state force multiplier while active
	NitroBurstMult  float64 // multiplier at the instant of activation
	NitroBurstTime  float64 // s, decay from burst to steady
	NitroSpeedBoost float64 // fraction added to the effective top speed

	// Physics
	MassKg        float64
	TopSpeed      float64 // m/s
	Wheelbase     float64 // m
	Downforce     float64 // grip gained at top speed
	YawLimit      float64 // rad/s, traction control kicks in above this
	YawControl    float64 // corrective torque strength, 1/s
	YawDamping    float64 // passive yaw decay, 1/s
	LateralGrip   float64 // velocity realignment rate at grip 1.0, 1/s
	HandlingStat  float64 // vehicle handling multiplier from its stats
	ReverseForce  float64 // force fraction available in reverse
	SpeedAuthTop  float64 // m/s at which steering authority bottoms out
	LowSpeedFloor float64 // m/s below which the low-speed boost applies

	// Weather
	WetRearLoss   float64 // rear grip lost at full wetness
	HydroSpeed    float64 // m/s threshold for hydroplaning risk
	HydroWetness  float64 // wetness threshold
	HydroRisk     float64 // probability per second once both thresholds pass
	HydroGripCut  float64 // grip multiplier while hydroplaning
	HydroRecovery float64 // m/s, hydroplaning clears below this
	DamageFloor   float64 // damage fraction below which no pull applies
	DamagePull    float64 // pull amplitude at full damage, rad
	DamagePullHz  float64 // pull oscillation frequency

	// Telemetry
	SpeedBucket     float64 // km/h per speed_changed bucket
	RPMBucket       float64 // RPM per engine_rpm_updated bucket
	ScreechFloor    float64 // m/s, no tire screech below this
	ScreechInterval float64 // s, minimum gap between screech events
}

// DefaultConfig returns the baseline street-car tune. Every value is a
// feel constant; overlays come from config data, not code forks.
func DefaultConfig() VehicleConfig {
	return VehicleConfig{
		MaxEngineForce:  9000,
		MaxBrakeForce:   11000,
		HandbrakeForce:  14000,
		BrakeSupplement: 2200,
		EngineBrakeDrag: 900,
		IdleRPM:         900,
		Redline:         7200,
		RPMBuffer:       300,
		ShiftRPM:        3200,
		TorquePeakFrac:  0.62,
		TorqueWidth:     0.65,
		TorqueFloor:     0.55,

		GearRatios:    []float64{3.6, 2.4, 1.7, 1.3, 1.05, 0.87},
		ReverseRatio:  3.4,
		FinalDrive:    3.9,
		WheelRadius:   0.33,
		ShiftTime:     0.22,
		ShiftUpFrac:   0.93,
		ShiftDownFrac: 0.38,
		ReverseFloor:  1.5,

		MaxSteerAngle:    0.61,
		HighSpeedSteer:   0.28,
		LowSpeedBoost:    1.25,
		SteerAttackRate:  7.0,
		SteerReleaseRate: 11.0,
		HandlingMin:      0.4,
		HandlingMax:      2.2,

		DriftEntryAngle:   0.28,
		DriftExitFactor:   0.6,
		DriftMinSpeed:     8.0,
		SpinOutAngle:      1.35,
		DriftScoreRate:    1.8,
		CountersteerBoost: 0.35,
		CountersteerDamp:  1.6,

		GripFront:          1.0,
		GripRear:           1.0,
		DriftGripRear:      0.62,
		HandbrakeGripRear:  0.35,
		DriftGripFrontMult: 1.18,
		FrictionAttack:     9.0,
		FrictionRelease:    3.0,
		HandbrakeFloor:     5.0,
		WeightTransfer:     0.055,

		NitroCapacity:   100,
		NitroDrainRate:  22,
		NitroRegenIdle:  0.8,
		NitroRegenDrift: 5.5,
		NitroRegenDraft: 7.0,
		NitroForceMult:  1.35,
		NitroBurstMult:  1.75,
		NitroBurstTime:  0.9,
		NitroSpeedBoost: 0.12,

		MassKg:        1320,
		TopSpeed:      58,
		Wheelbase:     2.6,
		Downforce:     0.35,
		YawLimit:      1.9,
		YawControl:    3.2,
		YawDamping:    0.9,
		LateralGrip:   6.5,
		HandlingStat:  1.0,
		ReverseForce:  0.5,
		SpeedAuthTop:  52,
		LowSpeedFloor: 6.0,

		WetRearLoss:   0.25,
		HydroSpeed:    33,
		HydroWetness:  0.55,
		HydroRisk:     0.35,
		HydroGripCut:  0.3,
		HydroRecovery: 22,
		DamageFloor:   0.2,
		DamagePull:    0.06,
		DamagePullHz:  2.3,

		SpeedBucket:     5,
		RPMBucket:       150,
		ScreechFloor:    6.0,
		ScreechInterval: 0.25,
	}
}

// normalize clamps a config into its documented invariants. Out-of-range
// values are silently repaired, never rejected.
func (c *VehicleConfig) normalize() {
	def := DefaultConfig()

	if len(c.GearRatios) == 0 {
		c.GearRatios = def.GearRatios
	}
	// Gear ratios must be positive and strictly decreasing toward top gear.
	prev := 0.0
	for i, r := range c.GearRatios {
		if r <= 0 {
			r = 0.1
		}
		if i > 0 && r >= prev {
			r = prev * 0.99
		}
		c.GearRatios[i] = r
		prev = r
	}

	floorPos := func(v *float64, fallback float64) {
		if *v <= 0 {
			*v = fallback
		}
	}
	floorPos(&c.MaxEngineForce, def.MaxEngineForce)
	floorPos(&c.MaxBrakeForce, def.MaxBrakeForce)
	floorPos(&c.HandbrakeForce, def.HandbrakeForce)
	floorPos(&c.Redline, def.Redline)
	floorPos(&c.ReverseRatio, def.ReverseRatio)
	floorPos(&c.FinalDrive, def.FinalDrive)
	floorPos(&c.WheelRadius, def.WheelRadius)
	floorPos(&c.ShiftTime, def.ShiftTime)
	floorPos(&c.MaxSteerAngle, def.MaxSteerAngle)
	floorPos(&c.DriftEntryAngle, def.DriftEntryAngle)
	floorPos(&c.DriftMinSpeed, def.DriftMinSpeed)
	floorPos(&c.DriftScoreRate, def.DriftScoreRate)
	floorPos(&c.FrictionAttack, def.FrictionAttack)
	floorPos(&c.FrictionRelease, def.FrictionRelease)
	floorPos(&c.MassKg, def.MassKg)
	floorPos(&c.Wheelbase, def.Wheelbase)
	floorPos(&c.LateralGrip, def.LateralGrip)
	floorPos(&c.SteerAttackRate, def.SteerAttackRate)
	floorPos(&c.SteerReleaseRate, def.SteerReleaseRate)
	floorPos(&c.HandlingStat, def.HandlingStat)

	if c.IdleRPM <= 0 {
		c.IdleRPM = def.IdleRPM
	}
	if c.IdleRPM >= c.Redline {
		c.IdleRPM = c.Redline * 0.12
	}
	if c.RPMBuffer < 0 {
		c.RPMBuffer = 0
	}
	c.ShiftRPM = physics.Clamp(c.ShiftRPM, c.IdleRPM, c.Redline)
	if c.ShiftRPM == c.IdleRPM {
		c.ShiftRPM = (c.IdleRPM + c.Redline) / 2
	}

	c.TorquePeakFrac = physics.Clamp(c.TorquePeakFrac, 0.05, 0.95)
	if c.TorqueWidth <= 0 {
		c.TorqueWidth = def.TorqueWidth
	}
	c.TorqueFloor = physics.Clamp(c.TorqueFloor, 0.05, 1)

	c.ShiftUpFrac = physics.Clamp(c.ShiftUpFrac, 0.5, 1)
	c.ShiftDownFrac = physics.Clamp(c.ShiftDownFrac, 0.05, c.ShiftUpFrac*0.9)

	// Hysteresis: exit strictly below entry, or the state flickers.
	c.DriftExitFactor = physics.Clamp(c.DriftExitFactor, 0.05, 0.95)
	if c.SpinOutAngle <= c.DriftEntryAngle {
		c.SpinOutAngle = c.DriftEntryAngle * 3
	}

	c.GripFront = physics.Clamp(c.GripFront, 0.05, 3)
	c.GripRear = physics.Clamp(c.GripRear, 0.05, 3)
	c.HandbrakeGripRear = physics.Clamp(c.HandbrakeGripRear, 0.05, c.GripRear)
	c.DriftGripRear = physics.Clamp(c.DriftGripRear, c.HandbrakeGripRear, c.GripRear)
	if c.DriftGripFrontMult < 1 {
		c.DriftGripFrontMult = 1
	}

	if c.NitroCapacity < 0 {
		c.NitroCapacity = 0
	}
	floorPos(&c.NitroDrainRate, def.NitroDrainRate)
	if c.NitroRegenIdle < 0 {
		c.NitroRegenIdle = 0
	}
	if c.NitroRegenDrift < 0 {
		c.NitroRegenDrift = 0
	}
	if c.NitroRegenDraft < 0 {
		c.NitroRegenDraft = 0
	}
	if c.NitroForceMult < 1 {
		c.NitroForceMult = def.NitroForceMult
	}
	if c.NitroBurstMult < c.NitroForceMult {
		c.NitroBurstMult = c.NitroForceMult
	}
	floorPos(&c.NitroBurstTime, def.NitroBurstTime)
	if c.NitroSpeedBoost < 0 {
		c.NitroSpeedBoost = 0
	}

	if c.TopSpeed < 1 {
		c.TopSpeed = def.TopSpeed
	}
	if c.SpeedAuthTop < 1 {
		c.SpeedAuthTop = c.TopSpeed * 0.9
	}
	if c.HandlingMax < c.HandlingMin {
		c.HandlingMin, c.HandlingMax = def.HandlingMin, def.HandlingMax
	}
	if c.ReverseForce <= 0 || c.ReverseForce > 1 {
		c.ReverseForce = def.ReverseForce
	}
	if c.YawLimit < 1 {
		c.YawLimit = 1
	}
	if c.YawControl < 0 {
		c.YawControl = 0
	}
	if c.YawDamping < 0 {
		c.YawDamping = 0
	}
	if c.Downforce < 0 {
		c.Downforce = 0
	}

	c.WetRearLoss = physics.Clamp(c.WetRearLoss, 0, 1)
	c.HydroWetness = physics.Clamp(c.HydroWetness, 0, 1)
	c.HydroRisk = physics.Clamp(c.HydroRisk, 0, 1)
	c.HydroGripCut = physics.Clamp(c.HydroGripCut, 0.05, 1)
	floorPos(&c.HydroSpeed, def.HydroSpeed)
	if c.HydroRecovery <= 0 || c.HydroRecovery >= c.HydroSpeed {
		c.HydroRecovery = c.HydroSpeed * 0.66
	}
	c.DamageFloor = physics.Clamp(c.DamageFloor, 0, 1)
	if c.DamagePull < 0 {
		c.DamagePull = 0
	}
	floorPos(&c.DamagePullHz, def.DamagePullHz)

	floorPos(&c.SpeedBucket, def.SpeedBucket)
	floorPos(&c.RPMBucket, def.RPMBucket)
	if c.ScreechFloor < 0 {
		c.ScreechFloor = 0
	}
	if c.ScreechInterval < 0 {
		c.ScreechInterval = 0
	}
}

// topGear returns the highest forward gear number.
func (c *VehicleConfig) topGear() int {
	return len(c.GearRatios)
}

// ratioFor returns the drive ratio for a gear (negative = reverse).
// Neutral and out-of-range gears return 0.
func (c *VehicleConfig) ratioFor(gear int) float64 {
	switch {
	case gear < 0:
		return c.ReverseRatio
	case gear >= 1 && gear <= len(c.GearRatios):
		return c.GearRatios[gear-1]
	default:
		return 0
	}
}
