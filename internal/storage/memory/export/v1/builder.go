package v1

import (
	"sort"

	"github.com/tommytrillva/midnight-sub001/internal/geo"
	"github.com/tommytrillva/midnight-sub001/pkg/core"
)

// simplifyToleranceM is the Douglas-Peucker tolerance for entity trails.
// Half a meter keeps corner geometry while collapsing straights.
const simplifyToleranceM = 0.5

// SessionData contains all the data needed to build an export
type SessionData struct {
	Session  *core.Session
	Track    *core.Track
	Vehicles map[uint16]*VehicleRecord

	DriftRuns []core.DriftRun
}

// VehicleRecord groups a vehicle with all its time-series data
type VehicleRecord struct {
	Vehicle core.Vehicle
	Samples []core.VehicleSample
	Events  []core.RaceEvent
}

// Build creates an Export from the session data
func Build(data *SessionData) Export {
	export := Export{
		RecorderVersion: data.Session.RecorderVersion,
		SessionName:     data.Session.Name,
		Scenario:        data.Session.Scenario,
		TrackName:       data.Track.Name,
		TrackAuthor:     data.Track.Author,
		TrackSizeM:      data.Track.SizeM,
		Origin:          []float64{data.Track.Latitude, data.Track.Longitude},
		Tags:            data.Session.Tag,
		Entities:        make([]Entity, 0),
		Events:          make([][]any, 0),
		DriftRuns:       make([]DriftRunJSON, 0, len(data.DriftRuns)),
	}

	if data.Session.TickRate > 0 {
		export.CaptureDelay = float32(float64(data.Session.CaptureInterval) / data.Session.TickRate)
	}

	var maxFrame uint = 0

	// Find max entity ID to size the entities array correctly.
	// The JS frontend uses entities[id] to look up entities, so array
	// index must equal entity ID.
	var maxEntityID uint16 = 0
	for _, record := range data.Vehicles {
		if record.Vehicle.ID > maxEntityID {
			maxEntityID = record.Vehicle.ID
		}
	}
	if len(data.Vehicles) > 0 {
		export.Entities = make([]Entity, maxEntityID+1)
	}

	// Convert vehicles - place at index matching their ID
	for _, record := range data.Vehicles {
		entity := Entity{
			ID:            record.Vehicle.ID,
			Name:          record.Vehicle.DisplayName,
			Class:         record.Vehicle.ClassName,
			StartFrameNum: record.Vehicle.JoinFrame,
			Stats: EntityStats{
				Speed:        record.Vehicle.StatSpeed,
				Acceleration: record.Vehicle.StatAcceleration,
				Handling:     record.Vehicle.StatHandling,
				Braking:      record.Vehicle.StatBraking,
				Horsepower:   record.Vehicle.Horsepower,
				WeightKg:     record.Vehicle.WeightKg,
				HasNitro:     record.Vehicle.HasNitro,
			},
			Positions: make([][]any, 0, len(record.Samples)),
			Trail:     make([][2]float64, 0),
		}

		path := make(core.Polyline, 0, len(record.Samples))
		for _, s := range record.Samples {
			pos := []any{
				[]float64{s.Position.X, s.Position.Y},
				s.Heading,
				s.SpeedKmh,
				s.Gear,
				s.DriftState,
				boolToInt(s.NitroActive),
			}
			entity.Positions = append(entity.Positions, pos)
			path = append(path, s.Position)
			if s.CaptureFrame > maxFrame {
				maxFrame = s.CaptureFrame
			}
		}

		entity.Trail = buildTrail(path)

		for _, e := range record.Events {
			evt := []any{e.CaptureFrame, e.Kind, e.VehicleID, e.Value}
			if len(e.ExtraData) > 0 {
				evt = append(evt, e.ExtraData)
			}
			export.Events = append(export.Events, evt)
			if e.CaptureFrame > maxFrame {
				maxFrame = e.CaptureFrame
			}
		}

		export.Entities[record.Vehicle.ID] = entity
	}

	// Events were gathered per vehicle; the frontend wants them frame-ordered.
	sort.SliceStable(export.Events, func(i, j int) bool {
		return export.Events[i][0].(uint) < export.Events[j][0].(uint)
	})

	// Convert drift runs
	for _, run := range data.DriftRuns {
		export.DriftRuns = append(export.DriftRuns, DriftRunJSON{
			VehicleID:    run.VehicleID,
			StartFrame:   run.StartFrame,
			EndFrame:     run.EndFrame,
			DurationSecs: run.DurationSecs,
			PeakAngle:    run.PeakAngle,
			Score:        run.Score,
			SpinOut:      run.SpinOut,
		})
		if run.EndFrame > maxFrame {
			maxFrame = run.EndFrame
		}
	}

	export.EndFrame = maxFrame
	return export
}

// buildTrail simplifies a recorded path for the map overlay. Paths too
// short to form a line export as an empty trail.
func buildTrail(path core.Polyline) [][2]float64 {
	if len(path) < 2 {
		return [][2]float64{}
	}

	ls, err := geo.BuildPath(path)
	if err != nil {
		return [][2]float64{}
	}

	simplified, err := geo.SimplifyPath(ls, simplifyToleranceM)
	if err == nil {
		ls = simplified
	}

	poly := geo.PathToPolyline(ls)
	trail := make([][2]float64, 0, len(poly))
	for _, p := range poly {
		trail = append(trail, [2]float64{p.X, p.Y})
	}
	return trail
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
