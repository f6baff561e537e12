package core

import "time"

// Vehicle represents a vehicle participating in a session. ID is the
// simulation's identifier for the entity.
type Vehicle struct {
	ID          uint16
	JoinTime    time.Time
	JoinFrame   uint
	DisplayName string
	ClassName   string

	// Abstract performance stats snapshotted at join.
	StatSpeed        float64
	StatAcceleration float64
	StatHandling     float64
	StatBraking      float64
	Horsepower       float64
	WeightKg         float64
	HasNitro         bool
}

// VehicleSample is the per-capture-frame state of one vehicle.
// VehicleID references the Vehicle's ID.
type VehicleSample struct {
	VehicleID    uint16
	Time         time.Time
	CaptureFrame uint

	Position Position2D
	Lat      float64
	Lon      float64
	Heading  float64 // rad
	SpeedKmh float64

	Gear     int
	RPM      float64
	Shifting bool
	Throttle float64
	Brake    float64

	DriftState   string
	DriftAngle   float64
	DriftScore   float64
	GripFront    float64
	GripRear     float64
	Hydroplaning bool

	Nitro       float64
	NitroActive bool
	Drafting    bool
}
