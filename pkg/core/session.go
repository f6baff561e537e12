package core

import "time"

// Session represents one recorded simulation run.
type Session struct {
	ID              uint
	Name            string
	Scenario        string
	StartTime       time.Time
	TickRate        float64
	CaptureInterval uint // frames between recorded samples
	Tag             string
	RecorderVersion string
}

// Track represents the course a session runs on. Latitude/Longitude
// anchor the local meter grid for live-map overlays.
type Track struct {
	ID        uint
	Name      string
	Author    string
	Latitude  float64
	Longitude float64
	SizeM     float64
}
