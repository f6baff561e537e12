package v1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommytrillva/midnight-sub001/pkg/core"
)

func testData() *SessionData {
	return &SessionData{
		Session: &core.Session{
			Name:            "Dock Sprint",
			Scenario:        "demo",
			StartTime:       time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC),
			TickRate:        60,
			CaptureInterval: 6,
			Tag:             "Night",
			RecorderVersion: "1.0.0",
		},
		Track: &core.Track{
			Name:      "Shutoko Docks",
			Author:    "kaido",
			Latitude:  35.6762,
			Longitude: 139.6503,
			SizeM:     4000,
		},
		Vehicles: make(map[uint16]*VehicleRecord),
	}
}

func TestBuild_Header(t *testing.T) {
	export := Build(testData())

	assert.Equal(t, "1.0.0", export.RecorderVersion)
	assert.Equal(t, "Dock Sprint", export.SessionName)
	assert.Equal(t, "demo", export.Scenario)
	assert.Equal(t, "Shutoko Docks", export.TrackName)
	assert.Equal(t, "kaido", export.TrackAuthor)
	assert.Equal(t, []float64{35.6762, 139.6503}, export.Origin)
	assert.Equal(t, "Night", export.Tags)
	assert.InDelta(t, 0.1, float64(export.CaptureDelay), 1e-6)
}

func TestBuild_EmptySession(t *testing.T) {
	export := Build(testData())

	assert.Empty(t, export.Entities)
	assert.Empty(t, export.Events)
	assert.Empty(t, export.DriftRuns)
	assert.Equal(t, uint(0), export.EndFrame)
}

func TestBuild_EntitiesIndexedByID(t *testing.T) {
	data := testData()
	data.Vehicles[1] = &VehicleRecord{Vehicle: core.Vehicle{ID: 1, DisplayName: "Raven GT"}}
	data.Vehicles[4] = &VehicleRecord{Vehicle: core.Vehicle{ID: 4, DisplayName: "Kaze RS"}}

	export := Build(data)

	// entities[id] lookup: array sized to max ID, gaps left as placeholders.
	require.Len(t, export.Entities, 5)
	assert.Equal(t, "Raven GT", export.Entities[1].Name)
	assert.Equal(t, "Kaze RS", export.Entities[4].Name)
	assert.Empty(t, export.Entities[2].Name)
}

func TestBuild_PositionsAndEndFrame(t *testing.T) {
	data := testData()
	data.Vehicles[1] = &VehicleRecord{
		Vehicle: core.Vehicle{ID: 1, JoinFrame: 6},
		Samples: []core.VehicleSample{
			{VehicleID: 1, CaptureFrame: 6, Position: core.Position2D{X: 1, Y: 2}, Heading: 0.5, SpeedKmh: 80, Gear: 2, DriftState: "gripping"},
			{VehicleID: 1, CaptureFrame: 12, Position: core.Position2D{X: 3, Y: 4}, Heading: 0.6, SpeedKmh: 95, Gear: 3, DriftState: "drifting", NitroActive: true},
		},
	}

	export := Build(data)

	entity := export.Entities[1]
	assert.Equal(t, uint(6), entity.StartFrameNum)
	require.Len(t, entity.Positions, 2)

	pos := entity.Positions[1]
	assert.Equal(t, []float64{3, 4}, pos[0])
	assert.Equal(t, 0.6, pos[1])
	assert.Equal(t, 95.0, pos[2])
	assert.Equal(t, 3, pos[3])
	assert.Equal(t, "drifting", pos[4])
	assert.Equal(t, 1, pos[5])

	assert.Equal(t, uint(12), export.EndFrame)
}

func TestBuild_Stats(t *testing.T) {
	data := testData()
	data.Vehicles[1] = &VehicleRecord{
		Vehicle: core.Vehicle{
			ID:               1,
			StatSpeed:        8.5,
			StatAcceleration: 7,
			StatHandling:     6.5,
			StatBraking:      7.5,
			Horsepower:       420,
			WeightKg:         1350,
			HasNitro:         true,
		},
	}

	export := Build(data)
	stats := export.Entities[1].Stats
	assert.Equal(t, 8.5, stats.Speed)
	assert.Equal(t, 420.0, stats.Horsepower)
	assert.True(t, stats.HasNitro)
}

func TestBuild_EventsSortedByFrame(t *testing.T) {
	data := testData()
	data.Vehicles[1] = &VehicleRecord{
		Vehicle: core.Vehicle{ID: 1},
		Events: []core.RaceEvent{
			{VehicleID: 1, CaptureFrame: 90, Kind: "nitro_off"},
		},
	}
	data.Vehicles[2] = &VehicleRecord{
		Vehicle: core.Vehicle{ID: 2},
		Events: []core.RaceEvent{
			{VehicleID: 2, CaptureFrame: 30, Kind: "gear_shift", Value: 2},
		},
	}

	export := Build(data)
	require.Len(t, export.Events, 2)
	assert.Equal(t, uint(30), export.Events[0][0])
	assert.Equal(t, "gear_shift", export.Events[0][1])
	assert.Equal(t, uint(90), export.Events[1][0])
}

func TestBuild_EventExtraData(t *testing.T) {
	data := testData()
	data.Vehicles[1] = &VehicleRecord{
		Vehicle: core.Vehicle{ID: 1},
		Events: []core.RaceEvent{
			{VehicleID: 1, CaptureFrame: 10, Kind: "spin_out", ExtraData: map[string]any{"discarded": 120.5}},
		},
	}

	export := Build(data)
	require.Len(t, export.Events, 1)
	require.Len(t, export.Events[0], 5)
	assert.Equal(t, map[string]any{"discarded": 120.5}, export.Events[0][4])
}

func TestBuild_DriftRuns(t *testing.T) {
	data := testData()
	data.DriftRuns = []core.DriftRun{
		{VehicleID: 1, StartFrame: 100, EndFrame: 350, DurationSecs: 4.2, PeakAngle: 0.8, Score: 512, SpinOut: false},
		{VehicleID: 2, StartFrame: 200, EndFrame: 260, DurationSecs: 1.0, PeakAngle: 1.4, Score: 0, SpinOut: true},
	}

	export := Build(data)
	require.Len(t, export.DriftRuns, 2)
	assert.Equal(t, 512.0, export.DriftRuns[0].Score)
	assert.True(t, export.DriftRuns[1].SpinOut)
	// Drift run frames extend the end frame.
	assert.Equal(t, uint(350), export.EndFrame)
}

func TestBuildTrail_SimplifiesCollinearPoints(t *testing.T) {
	path := core.Polyline{
		{X: 0, Y: 0},
		{X: 5, Y: 0},
		{X: 10, Y: 0},
		{X: 10, Y: 10},
	}

	trail := buildTrail(path)
	// The midpoint on the straight is within tolerance and drops out.
	assert.Equal(t, [][2]float64{{0, 0}, {10, 0}, {10, 10}}, trail)
}

func TestBuildTrail_TooShort(t *testing.T) {
	assert.Empty(t, buildTrail(core.Polyline{{X: 1, Y: 1}}))
	assert.Empty(t, buildTrail(nil))
}
