package scenario

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return NewParser(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseScript_Full(t *testing.T) {
	src := `
# comment
track "Shutoko Docks" origin=35.68,139.65 size=2048 author=studio
vehicle 1 "Raven GT" raven_gt_s2 speed=142 accel=78 handling=66 braking=71 hp=560 weight=1420 nitro
vehicle 2 "Kaze RS" kaze_rs_mk4 speed=128

at 0 throttle=1
at 2.5 vehicle=1 steer=-0.4 handbrake
weather at 10 grip=0.85 wetness=0.6
damage at 12 vehicle=2 0.35
draft at 14 vehicle=1 on
end 30
`
	script, err := newTestParser().ParseScript(src)
	require.NoError(t, err)

	assert.Equal(t, "Shutoko Docks", script.Track.Name)
	assert.Equal(t, "studio", script.Track.Author)
	assert.Equal(t, 35.68, script.Track.OriginLat)
	assert.Equal(t, 139.65, script.Track.OriginLon)
	assert.Equal(t, 2048.0, script.Track.SizeM)

	require.Len(t, script.Vehicles, 2)
	v := script.Vehicles[0]
	assert.Equal(t, uint16(1), v.ID)
	assert.Equal(t, "Raven GT", v.DisplayName)
	assert.Equal(t, "raven_gt_s2", v.ClassName)
	assert.Equal(t, 142.0, v.Stats.Speed)
	assert.Equal(t, 78.0, v.Stats.Acceleration)
	assert.Equal(t, 1420.0, v.Stats.WeightKg)
	assert.True(t, v.Stats.HasNitro)
	assert.False(t, script.Vehicles[1].Stats.HasNitro)

	require.Len(t, script.Steps, 5)
	assert.Equal(t, 30.0, script.EndTime)
}

func TestParseScript_StepsSortedByTime(t *testing.T) {
	src := `
vehicle 1 "Car" car
at 20 throttle=0
at 5 throttle=1
weather at 10 grip=0.9
end 30
`
	script, err := newTestParser().ParseScript(src)
	require.NoError(t, err)

	require.Len(t, script.Steps, 3)
	assert.Equal(t, 5.0, script.Steps[0].At)
	assert.Equal(t, 10.0, script.Steps[1].At)
	assert.Equal(t, 20.0, script.Steps[2].At)
}

func TestParseScript_NoVehicles(t *testing.T) {
	_, err := newTestParser().ParseScript("end 10\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no vehicles")
}

func TestParseScript_NoEndTime(t *testing.T) {
	_, err := newTestParser().ParseScript(`vehicle 1 "Car" car`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no end time")
}

func TestParseScript_UnknownDirective(t *testing.T) {
	_, err := newTestParser().ParseScript("launch now\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
	assert.Contains(t, err.Error(), "unknown directive")
}

func TestParseScript_ErrorCarriesLineNumber(t *testing.T) {
	src := `vehicle 1 "Car" car
at banana throttle=1
end 10
`
	_, err := newTestParser().ParseScript(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.scn")
	require.NoError(t, os.WriteFile(path, []byte("vehicle 1 \"Car\" car\nend 5\n"), 0644))

	script, err := newTestParser().ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, script.EndTime)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := newTestParser().ParseFile("/nonexistent/run.scn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading scenario file")
}

func TestDemoScript_Parses(t *testing.T) {
	script, err := newTestParser().ParseScript(DemoScript)
	require.NoError(t, err)

	assert.Len(t, script.Vehicles, 2)
	assert.NotEmpty(t, script.Steps)
	assert.Equal(t, 40.0, script.EndTime)
}
