// internal/storage/memory/export_test.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommytrillva/midnight-sub001/internal/config"
	v1 "github.com/tommytrillva/midnight-sub001/internal/storage/memory/export/v1"
	"github.com/tommytrillva/midnight-sub001/pkg/core"
)

// recordShortSession records a two-vehicle session with a handful of
// samples, one event, and one finished drift run.
func recordShortSession(t *testing.T, b *Backend) {
	t.Helper()

	sess := &core.Session{
		Name:            "Dock Sprint",
		StartTime:       time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC),
		TickRate:        60,
		CaptureInterval: 6,
		Tag:             "Night",
		RecorderVersion: "1.0.0",
	}
	track := &core.Track{
		Name:      "Shutoko Docks",
		Author:    "kaido",
		Latitude:  35.6762,
		Longitude: 139.6503,
		SizeM:     4000,
	}
	require.NoError(t, b.StartSession(sess, track))

	require.NoError(t, b.AddVehicle(&core.Vehicle{ID: 1, DisplayName: "Raven GT", ClassName: "sports"}))
	require.NoError(t, b.AddVehicle(&core.Vehicle{ID: 2, DisplayName: "Kaze RS", ClassName: "drift"}))

	for i := 0; i < 5; i++ {
		require.NoError(t, b.RecordSample(&core.VehicleSample{
			VehicleID:    1,
			CaptureFrame: uint(i * 6),
			Position:     core.Position2D{X: float64(i * 10), Y: 0},
			SpeedKmh:     float64(40 + i*10),
		}))
	}
	require.NoError(t, b.RecordEvent(&core.RaceEvent{
		VehicleID:    1,
		CaptureFrame: 12,
		Kind:         "gear_shift",
		Value:        3,
	}))

	id, err := b.AddDriftRun(&core.DriftRun{VehicleID: 2, StartFrame: 6})
	require.NoError(t, err)
	require.NoError(t, b.EndDriftRun(&core.DriftRun{ID: id, VehicleID: 2, EndFrame: 24, Score: 310}))
}

func TestEndSession_WritesPlainJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	recordShortSession(t, b)

	require.NoError(t, b.EndSession())

	path := b.GetExportedFilePath()
	require.NotEmpty(t, path)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".json"))
	assert.Contains(t, filepath.Base(path), "Dock_Sprint")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var export v1.Export
	require.NoError(t, json.NewDecoder(f).Decode(&export))
	assert.Equal(t, "Dock Sprint", export.SessionName)
	assert.Equal(t, "Shutoko Docks", export.TrackName)
	require.Len(t, export.Entities, 3) // index 0 placeholder + IDs 1,2
	assert.Equal(t, "Raven GT", export.Entities[1].Name)
	require.Len(t, export.DriftRuns, 1)
	assert.Equal(t, float64(310), export.DriftRuns[0].Score)
}

func TestEndSession_WritesGzipJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	recordShortSession(t, b)

	require.NoError(t, b.EndSession())

	path := b.GetExportedFilePath()
	require.True(t, strings.HasSuffix(path, ".json.gz"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var export v1.Export
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	assert.Equal(t, "Dock Sprint", export.SessionName)
}

func TestGetExportMetadata(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	recordShortSession(t, b)

	meta := b.GetExportMetadata()
	assert.Equal(t, "Dock Sprint", meta.SessionName)
	assert.Equal(t, "Shutoko Docks", meta.TrackName)
	assert.Equal(t, "Night", meta.Tag)
	assert.Equal(t, 2, meta.Vehicles)
	// Latest sample was frame 24 at 60 ticks/sec.
	assert.InDelta(t, 0.4, meta.DurationSecs, 1e-9)
}

func TestGetExportMetadata_NoSession(t *testing.T) {
	b := New(config.MemoryConfig{})
	meta := b.GetExportMetadata()
	assert.Empty(t, meta.SessionName)
	assert.Zero(t, meta.Vehicles)
}
