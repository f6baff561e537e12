// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/tommytrillva/midnight-sub001/internal/model"
	"github.com/tommytrillva/midnight-sub001/pkg/core"
	"gorm.io/datatypes"
)

// position2DToPoint converts a core.Position2D to a geom.Point
func position2DToPoint(p core.Position2D) geom.Point {
	coords := geom.Coordinates{XY: geom.XY{X: p.X, Y: p.Y}}
	return geom.NewPoint(coords)
}

// extraDataToJSON converts an event payload map to datatypes.JSON for DB storage.
func extraDataToJSON(extra map[string]any) datatypes.JSON {
	if len(extra) == 0 {
		return datatypes.JSON("{}")
	}
	data, _ := json.Marshal(extra)
	return datatypes.JSON(data)
}

// CoreToTrack converts a core.Track to a GORM model.Track.
// The lat/lon anchor is kept both as scalar columns and as a point geometry.
func CoreToTrack(t core.Track) model.Track {
	return model.Track{
		DisplayName: t.Name,
		Author:      t.Author,
		SizeM:       float32(t.SizeM),
		Latitude:    float32(t.Latitude),
		Longitude:   float32(t.Longitude),
		Location: geom.NewPoint(geom.Coordinates{
			XY: geom.XY{X: t.Longitude, Y: t.Latitude},
		}),
	}
}

// CoreToSession converts a core.Session to a GORM model.Session.
func CoreToSession(s core.Session) model.Session {
	return model.Session{
		Name:            s.Name,
		Scenario:        s.Scenario,
		StartTime:       s.StartTime,
		TickRate:        float32(s.TickRate),
		CaptureInterval: s.CaptureInterval,
		Tag:             s.Tag,
		RecorderVersion: s.RecorderVersion,
	}
}

// CoreToVehicle converts a core.Vehicle to a GORM model.Vehicle.
// core.Vehicle.ID maps to GORM Vehicle.ObjectID.
func CoreToVehicle(v core.Vehicle) model.Vehicle {
	return model.Vehicle{
		ObjectID:         v.ID,
		JoinTime:         v.JoinTime,
		JoinFrame:        uint(v.JoinFrame),
		DisplayName:      v.DisplayName,
		ClassName:        v.ClassName,
		StatSpeed:        float32(v.StatSpeed),
		StatAcceleration: float32(v.StatAcceleration),
		StatHandling:     float32(v.StatHandling),
		StatBraking:      float32(v.StatBraking),
		Horsepower:       float32(v.Horsepower),
		WeightKg:         float32(v.WeightKg),
		HasNitro:         v.HasNitro,
	}
}

// CoreToVehicleSample converts a core.VehicleSample to a GORM model.VehicleSample.
// Lat/Lon are not persisted; the geo layer rederives them from Position
// and the track anchor.
func CoreToVehicleSample(s core.VehicleSample) model.VehicleSample {
	return model.VehicleSample{
		Time:            s.Time,
		CaptureFrame:    s.CaptureFrame,
		VehicleObjectID: s.VehicleID,
		Position:        position2DToPoint(s.Position),
		Heading:         float32(s.Heading),
		SpeedKmh:        float32(s.SpeedKmh),
		Gear:            int8(s.Gear),
		RPM:             float32(s.RPM),
		Shifting:        s.Shifting,
		Throttle:        float32(s.Throttle),
		Brake:           float32(s.Brake),
		DriftState:      s.DriftState,
		DriftAngle:      float32(s.DriftAngle),
		DriftScore:      float32(s.DriftScore),
		GripFront:       float32(s.GripFront),
		GripRear:        float32(s.GripRear),
		Hydroplaning:    s.Hydroplaning,
		Nitro:           float32(s.Nitro),
		NitroActive:     s.NitroActive,
		Drafting:        s.Drafting,
	}
}

// CoreToRaceEvent converts a core.RaceEvent to a GORM model.RaceEvent.
func CoreToRaceEvent(e core.RaceEvent) model.RaceEvent {
	return model.RaceEvent{
		Time:            e.Time,
		CaptureFrame:    e.CaptureFrame,
		VehicleObjectID: e.VehicleID,
		Kind:            e.Kind,
		Value:           e.Value,
		ExtraData:       extraDataToJSON(e.ExtraData),
	}
}

// CoreToDriftRun converts a core.DriftRun to a GORM model.DriftRun.
func CoreToDriftRun(d core.DriftRun) model.DriftRun {
	return model.DriftRun{
		VehicleObjectID: d.VehicleID,
		StartTime:       d.StartTime,
		StartFrame:      d.StartFrame,
		EndFrame:        d.EndFrame,
		DurationSecs:    float32(d.DurationSecs),
		PeakAngle:       float32(d.PeakAngle),
		Score:           float32(d.Score),
		SpinOut:         d.SpinOut,
	}
}
