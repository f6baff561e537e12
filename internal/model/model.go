package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&RecorderInfo{},
	&Track{},
	&Session{},
	&Vehicle{},
	&VehicleSample{},
	&RaceEvent{},
	&DriftRun{},
	&SimPerformance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// RecorderInfo contains information about the recorder instance
type RecorderInfo struct {
	gorm.Model
	InstanceName string `json:"instanceName" gorm:"size:127"`
	Description  string `json:"description" gorm:"size:255"`
	Website      string `json:"websiteURL" gorm:"size:255"`
}

func (*RecorderInfo) TableName() string {
	return "recorder_infos"
}

// SimPerformance is the model for recorder performance metrics
type SimPerformance struct {
	Time                time.Time    `json:"time" gorm:"type:timestamptz;index:idx_time"`
	SessionID           uint         `json:"sessionId" gorm:"index:idx_simperformance_session_id"`
	Session             Session      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	QueueLengths        QueueLengths `json:"queueLengths" gorm:"embedded;embeddedPrefix:queue_"`
	LastWriteDurationMs float32      `json:"lastWriteDurationMs"`
	TickDurationMs      float32      `json:"tickDurationMs"`
}

func (*SimPerformance) TableName() string {
	return "sim_performances"
}

// QueueLengths is the model for the storage write queue lengths
type QueueLengths struct {
	Vehicles  uint16 `json:"vehicles"`
	Samples   uint16 `json:"samples"`
	Events    uint16 `json:"events"`
	DriftRuns uint16 `json:"driftRuns"`
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Track is the main model for a course
type Track struct {
	gorm.Model
	Author      string     `json:"author" gorm:"size:64"`
	DisplayName string     `json:"displayName" gorm:"size:127;index:idx_track_name"`
	SizeM       float32    `json:"sizeM"`
	Latitude    float32    `json:"latitude" gorm:"-"`
	Longitude   float32    `json:"longitude" gorm:"-"`
	Location    geom.Point `json:"location"`
	Sessions    []Session
}

func (*Track) TableName() string {
	return "tracks"
}

func (t *Track) GetOrInsert(db *gorm.DB) (
	created bool,
	err error,
) {
	var existing Track
	err = db.Where("display_name = ?", t.DisplayName).First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// insert
			err = db.Create(t).Error
			return true, err
		}
		return false, err
	}
	// overwrite with db record if found
	*t = existing
	return false, nil
}

// Session is the main model for a recorded run
type Session struct {
	gorm.Model
	Name            string    `json:"name" gorm:"size:200"`
	Scenario        string    `json:"scenario" gorm:"size:200"`
	StartTime       time.Time `json:"startTime" gorm:"type:timestamptz;index:idx_session_start"`
	TrackID         uint
	Track           Track   `gorm:"foreignkey:TrackID"`
	TickRate        float32 `json:"tickRate" gorm:"default:60"`
	CaptureInterval uint    `json:"captureInterval" gorm:"default:6"`
	Tag             string  `json:"tag" gorm:"size:127"`
	RecorderVersion string  `json:"recorderVersion" gorm:"size:64"`

	Vehicles   []Vehicle
	RaceEvents []RaceEvent
	DriftRuns  []DriftRun
}

func (*Session) TableName() string {
	return "sessions"
}

// Vehicle is a car participating in a session
// Uses composite primary key (SessionID, ObjectID) - ObjectID is the simulation-assigned sequential ID
type Vehicle struct {
	SessionID   uint           `json:"sessionId" gorm:"primaryKey;autoIncrement:false"`
	ObjectID    uint16         `json:"objectId" gorm:"primaryKey;autoIncrement:false"` // simulation-assigned sequential ID
	Session     Session        `gorm:"foreignkey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt" gorm:"index"`
	JoinTime    time.Time      `json:"joinTime" gorm:"type:timestamptz;NOT NULL;index:idx_vehicle_join_time"` // Server time when vehicle entered simulation
	JoinFrame   uint           `json:"joinFrame"`                                                             // Frame number when vehicle was first seen
	DisplayName string         `json:"displayName" gorm:"size:64"`
	ClassName   string         `json:"className" gorm:"default:NULL;size:64"`

	// Abstract performance stats snapshotted at join
	StatSpeed        float32 `json:"statSpeed"`
	StatAcceleration float32 `json:"statAcceleration"`
	StatHandling     float32 `json:"statHandling"`
	StatBraking      float32 `json:"statBraking"`
	Horsepower       float32 `json:"horsepower"`
	WeightKg         float32 `json:"weightKg"`
	HasNitro         bool    `json:"hasNitro" gorm:"default:false"`
}

func (*Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) Get(db *gorm.DB) (err error) {
	err = db.Where(&v).Order(
		"join_time DESC",
	).First(&v).Error
	return err
}

// VehicleSample tracks vehicle dynamics state at a capture frame
// References Vehicle by (SessionID, VehicleObjectID) composite FK
type VehicleSample struct {
	ID              uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time            time.Time `json:"time" gorm:"type:timestamptz;"`
	SessionID       uint      `json:"sessionId" gorm:"index:idx_vehiclesample_session_id"`
	Session         Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	CaptureFrame    uint      `json:"captureFrame" gorm:"index:idx_vehiclesample_capture_frame"`
	VehicleObjectID uint16    `json:"vehicleObjectId" gorm:"index:idx_vehiclesample_vehicle_object_id"`
	Vehicle         Vehicle   `gorm:"foreignkey:SessionID,VehicleObjectID;references:SessionID,ObjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	Position geom.Point `json:"position"` // Local meter-grid position as 2D point
	Heading  float32    `json:"heading"`  // Heading in radians
	SpeedKmh float32    `json:"speedKmh"`
	Gear     int8       `json:"gear"` // 0 = neutral, -1 = reverse
	RPM      float32    `json:"rpm"`
	Shifting bool       `json:"shifting" gorm:"default:false"`
	Throttle float32    `json:"throttle"`
	Brake    float32    `json:"brake"`

	DriftState   string  `json:"driftState" gorm:"size:16"` // not_drifting, drifting, spin_out
	DriftAngle   float32 `json:"driftAngle"`                // Slip angle in radians
	DriftScore   float32 `json:"driftScore"`
	GripFront    float32 `json:"gripFront"`
	GripRear     float32 `json:"gripRear"`
	Hydroplaning bool    `json:"hydroplaning" gorm:"default:false"`

	Nitro       float32 `json:"nitro"`
	NitroActive bool    `json:"nitroActive" gorm:"default:false"`
	Drafting    bool    `json:"drafting" gorm:"default:false"`
}

func (*VehicleSample) TableName() string {
	return "vehicle_samples"
}

// RaceEvent records a discrete telemetry notification: gear shifts, nitro
// activity, drift lifecycle, spin-outs
type RaceEvent struct {
	ID              uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time            time.Time `json:"time" gorm:"type:timestamptz;"`
	SessionID       uint      `json:"sessionId" gorm:"index:idx_raceevent_session_id"`
	Session         Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	CaptureFrame    uint      `json:"captureFrame" gorm:"index:idx_raceevent_capture_frame;"`
	VehicleObjectID uint16    `json:"vehicleObjectId" gorm:"index:idx_raceevent_vehicle_object_id"`

	Kind      string         `json:"kind" gorm:"size:32;index:idx_raceevent_kind"` // telemetry event kind
	Value     float64        `json:"value"`                                        // numeric payload: gear, score, intensity
	ExtraData datatypes.JSON `json:"extraData" gorm:"type:jsonb;default:'{}'"`
}

func (*RaceEvent) TableName() string {
	return "race_events"
}

// DriftRun aggregates one drift from entry to exit
type DriftRun struct {
	ID              uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID       uint      `json:"sessionId" gorm:"index:idx_driftrun_session_id"`
	Session         Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	VehicleObjectID uint16    `json:"vehicleObjectId" gorm:"index:idx_driftrun_vehicle_object_id"`
	StartTime       time.Time `json:"startTime" gorm:"type:timestamptz;"`
	StartFrame      uint      `json:"startFrame"`
	EndFrame        uint      `json:"endFrame"`
	DurationSecs    float32   `json:"durationSecs"`
	PeakAngle       float32   `json:"peakAngle"` // Largest slip angle held, radians
	Score           float32   `json:"score"`     // Zero when the run ended in a spin-out
	SpinOut         bool      `json:"spinOut" gorm:"default:false"`
}

func (*DriftRun) TableName() string {
	return "drift_runs"
}
