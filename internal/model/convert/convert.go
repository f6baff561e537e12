// Package convert provides functions to convert GORM models to core models
package convert

import (
	"encoding/json"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/tommytrillva/midnight-sub001/internal/model"
	"github.com/tommytrillva/midnight-sub001/pkg/core"
)

// pointToPosition2D converts a geom.Point to a core.Position2D
func pointToPosition2D(p geom.Point) core.Position2D {
	coord, ok := p.Coordinates()
	if !ok {
		return core.Position2D{}
	}
	return core.Position2D{X: coord.XY.X, Y: coord.XY.Y}
}

// TrackToCore converts a GORM Track to a core.Track.
func TrackToCore(t model.Track) core.Track {
	lat := float64(t.Latitude)
	lon := float64(t.Longitude)
	if coord, ok := t.Location.Coordinates(); ok {
		lon = coord.XY.X
		lat = coord.XY.Y
	}
	return core.Track{
		ID:        t.ID,
		Name:      t.DisplayName,
		Author:    t.Author,
		Latitude:  lat,
		Longitude: lon,
		SizeM:     float64(t.SizeM),
	}
}

// SessionToCore converts a GORM Session to a core.Session.
func SessionToCore(s model.Session) core.Session {
	return core.Session{
		ID:              s.ID,
		Name:            s.Name,
		Scenario:        s.Scenario,
		StartTime:       s.StartTime,
		TickRate:        float64(s.TickRate),
		CaptureInterval: s.CaptureInterval,
		Tag:             s.Tag,
		RecorderVersion: s.RecorderVersion,
	}
}

// VehicleToCore converts a GORM Vehicle to a core.Vehicle.
// GORM Vehicle.ObjectID maps to core Vehicle.ID.
func VehicleToCore(v model.Vehicle) core.Vehicle {
	return core.Vehicle{
		ID:               v.ObjectID, // Core ID = GORM ObjectID
		JoinTime:         v.JoinTime,
		JoinFrame:        v.JoinFrame,
		DisplayName:      v.DisplayName,
		ClassName:        v.ClassName,
		StatSpeed:        float64(v.StatSpeed),
		StatAcceleration: float64(v.StatAcceleration),
		StatHandling:     float64(v.StatHandling),
		StatBraking:      float64(v.StatBraking),
		Horsepower:       float64(v.Horsepower),
		WeightKg:         float64(v.WeightKg),
		HasNitro:         v.HasNitro,
	}
}

// VehicleSampleToCore converts a GORM VehicleSample to a core.VehicleSample.
// Lat/Lon are left zero; the geo layer derives them from Position and
// the track anchor when a consumer wants map coordinates.
func VehicleSampleToCore(s model.VehicleSample) core.VehicleSample {
	return core.VehicleSample{
		VehicleID:    s.VehicleObjectID,
		Time:         s.Time,
		CaptureFrame: s.CaptureFrame,
		Position:     pointToPosition2D(s.Position),
		Heading:      float64(s.Heading),
		SpeedKmh:     float64(s.SpeedKmh),
		Gear:         int(s.Gear),
		RPM:          float64(s.RPM),
		Shifting:     s.Shifting,
		Throttle:     float64(s.Throttle),
		Brake:        float64(s.Brake),
		DriftState:   s.DriftState,
		DriftAngle:   float64(s.DriftAngle),
		DriftScore:   float64(s.DriftScore),
		GripFront:    float64(s.GripFront),
		GripRear:     float64(s.GripRear),
		Hydroplaning: s.Hydroplaning,
		Nitro:        float64(s.Nitro),
		NitroActive:  s.NitroActive,
		Drafting:     s.Drafting,
	}
}

// RaceEventToCore converts a GORM RaceEvent to a core.RaceEvent.
func RaceEventToCore(e model.RaceEvent) core.RaceEvent {
	var extra map[string]any
	if len(e.ExtraData) > 0 {
		_ = json.Unmarshal(e.ExtraData, &extra)
	}

	return core.RaceEvent{
		ID:           e.ID,
		VehicleID:    e.VehicleObjectID,
		Time:         e.Time,
		CaptureFrame: e.CaptureFrame,
		Kind:         e.Kind,
		Value:        e.Value,
		ExtraData:    extra,
	}
}

// DriftRunToCore converts a GORM DriftRun to a core.DriftRun.
func DriftRunToCore(d model.DriftRun) core.DriftRun {
	return core.DriftRun{
		ID:           d.ID,
		VehicleID:    d.VehicleObjectID,
		StartFrame:   d.StartFrame,
		EndFrame:     d.EndFrame,
		StartTime:    d.StartTime,
		DurationSecs: float64(d.DurationSecs),
		PeakAngle:    float64(d.PeakAngle),
		Score:        float64(d.Score),
		SpinOut:      d.SpinOut,
	}
}
