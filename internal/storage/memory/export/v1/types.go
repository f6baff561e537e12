// Package v1 contains the v1 replay export format for recorded sessions.
// This format is what the replay web frontend consumes.
package v1

// Export is the root JSON structure for v1 format
type Export struct {
	RecorderVersion string         `json:"recorderVersion"`
	SessionName     string         `json:"sessionName"`
	Scenario        string         `json:"scenario"`
	TrackName       string         `json:"trackName"`
	TrackAuthor     string         `json:"trackAuthor"`
	TrackSizeM      float64        `json:"trackSizeM"`
	Origin          []float64      `json:"origin"` // [lat, lon] anchoring the meter grid
	EndFrame        uint           `json:"endFrame"`
	CaptureDelay    float32        `json:"captureDelay"` // seconds between recorded samples
	Tags            string         `json:"tags"`
	Entities        []Entity       `json:"entities"`
	Events          [][]any        `json:"events"`
	DriftRuns       []DriftRunJSON `json:"driftRuns"`
}

// Entity represents one vehicle and its recorded trace
type Entity struct {
	ID            uint16       `json:"id"`
	Name          string       `json:"name"`
	Class         string       `json:"class,omitempty"`
	StartFrameNum uint         `json:"startFrameNum"`
	Stats         EntityStats  `json:"stats"`
	Positions     [][]any      `json:"positions"`
	Trail         [][2]float64 `json:"trail"` // simplified path for the map overlay
}

// EntityStats is the abstract performance card shown in the replay UI
type EntityStats struct {
	Speed        float64 `json:"speed"`
	Acceleration float64 `json:"acceleration"`
	Handling     float64 `json:"handling"`
	Braking      float64 `json:"braking"`
	Horsepower   float64 `json:"horsepower"`
	WeightKg     float64 `json:"weightKg"`
	HasNitro     bool    `json:"hasNitro"`
}

// DriftRunJSON is one completed drift run
type DriftRunJSON struct {
	VehicleID    uint16  `json:"vehicleId"`
	StartFrame   uint    `json:"startFrame"`
	EndFrame     uint    `json:"endFrame"`
	DurationSecs float64 `json:"durationSecs"`
	PeakAngle    float64 `json:"peakAngle"`
	Score        float64 `json:"score"`
	SpinOut      bool    `json:"spinOut"`
}
