// Package core holds the plain wire types shared by the recorder
// pipeline: storage backends, exporters, and live-streaming consumers all
// speak these. No gorm tags, no behavior; the database mirror lives in
// internal/model.
package core

// Position2D is a world-space position in meters relative to the track
// origin.
type Position2D struct {
	X float64
	Y float64
}

// Polyline is an ordered trace of positions, usually one vehicle's path.
type Polyline []Position2D

// UploadMetadata describes an exported recording for the upload API.
type UploadMetadata struct {
	SessionName  string
	TrackName    string
	Tag          string
	DurationSecs float64
	Vehicles     int
}
