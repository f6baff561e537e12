package session

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommytrillva/midnight-sub001/internal/logging"
	"github.com/tommytrillva/midnight-sub001/internal/scenario"
	"github.com/tommytrillva/midnight-sub001/pkg/core"
	"github.com/tommytrillva/midnight-sub001/pkg/dynamics"
)

type fakeStore struct {
	started *core.Session
	track   *core.Track
	ended   bool
}

func (f *fakeStore) StartSession(s *core.Session, t *core.Track) error {
	f.started = s
	f.track = t
	return nil
}

func (f *fakeStore) EndSession() error {
	f.ended = true
	return nil
}

type fakeRecorder struct {
	vehicles []core.Vehicle
	samples  []dynamics.StateSnapshot
}

func (f *fakeRecorder) AddVehicle(v *core.Vehicle) {
	f.vehicles = append(f.vehicles, *v)
}

func (f *fakeRecorder) RecordSample(snap dynamics.StateSnapshot) error {
	f.samples = append(f.samples, snap)
	return nil
}

const launchScript = `
track "Dock Straight" origin=35.6762,139.6503 size=1024
vehicle 1 "Raven GT" raven_gt_s2 speed=142 accel=78 handling=66 braking=71 hp=560 weight=1420 nitro
at 0 throttle=1
end 1
`

func newTestRunner(t *testing.T, src string, cfg RunnerConfig) (*Runner, *fakeStore, *fakeRecorder) {
	t.Helper()

	script, err := scenario.NewParser(slog.Default()).ParseScript(src)
	require.NoError(t, err)

	store := &fakeStore{}
	rec := &fakeRecorder{}
	deps := RunnerDependencies{
		Backend:        store,
		Recorder:       rec,
		SessionContext: NewContext(),
		LogManager:     logging.NewSlogManager(),
	}
	return NewRunner(deps, cfg, script), store, rec
}

func TestRun_LaunchScript(t *testing.T) {
	cfg := RunnerConfig{
		SessionName:     "Midnight Run",
		ScenarioName:    "launch",
		TickRate:        60,
		CaptureEveryNth: 6,
	}
	r, store, rec := newTestRunner(t, launchScript, cfg)

	require.NoError(t, r.Run(context.Background()))

	require.NotNil(t, store.started)
	assert.Equal(t, "Midnight Run", store.started.Name)
	assert.Equal(t, "Dock Straight", store.track.Name)
	assert.True(t, store.ended)

	require.Len(t, rec.vehicles, 1)
	assert.Equal(t, "Raven GT", rec.vehicles[0].DisplayName)
	assert.True(t, rec.vehicles[0].HasNitro)

	// 60 ticks, sampled every 6th: frames 0, 6, ..., 54
	require.Len(t, rec.samples, 10)
	assert.Equal(t, uint(54), rec.samples[9].Tick)

	// full throttle from frame 0 must have moved the car
	assert.Greater(t, rec.samples[9].SpeedKmh, 10.0)

	assert.Equal(t, 60, r.deps.SessionContext.CaptureFrame.Value())
}

func TestRun_CancelledContext(t *testing.T) {
	r, store, rec := newTestRunner(t, launchScript, RunnerConfig{TickRate: 60, CaptureEveryNth: 6})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, store.ended, "session must be finalized on cancel")
	assert.Empty(t, rec.samples)
}

func TestRun_DemoScript(t *testing.T) {
	cfg := RunnerConfig{SessionName: "Demo", TickRate: 60, CaptureEveryNth: 6}
	r, store, rec := newTestRunner(t, scenario.DemoScript, cfg)

	require.NoError(t, r.Run(context.Background()))

	assert.True(t, store.ended)
	require.Len(t, rec.vehicles, 2)

	// 40 s at 60 Hz, two cars sampled every 6th frame
	assert.Len(t, rec.samples, 2*400)
	assert.GreaterOrEqual(t, r.TickDurationMs(), float32(0))
}

func TestApplyStep_WeatherAndDamage(t *testing.T) {
	r, _, _ := newTestRunner(t, launchScript, RunnerConfig{TickRate: 60})
	r.spawnVehicles()

	r.applyStep(scenario.Step{Kind: scenario.StepWeather, Grip: 0.8, Wetness: 0.6})
	grip, wet := r.weather.Grip()
	assert.Equal(t, 0.8, grip)
	assert.Equal(t, 0.6, wet)

	r.applyStep(scenario.Step{Kind: scenario.StepDamage, VehicleID: 1, Damage: 0.35})
	assert.Equal(t, 0.35, r.byID[1].Damage())
}

func TestApplyStep_UnknownVehicleIgnored(t *testing.T) {
	r, _, _ := newTestRunner(t, launchScript, RunnerConfig{TickRate: 60})
	r.spawnVehicles()

	r.applyStep(scenario.Step{Kind: scenario.StepDamage, VehicleID: 9, Damage: 1})
	assert.Equal(t, 0.0, r.byID[1].Damage())
}

func TestApplyInput_PartialMerge(t *testing.T) {
	in := dynamics.InputState{Throttle: 1, Steer: -0.4}

	brake := 0.5
	applyInput(&in, scenario.InputChange{Brake: &brake, ShiftUp: true})

	assert.Equal(t, 1.0, in.Throttle, "unset fields keep their value")
	assert.Equal(t, 0.5, in.Brake)
	assert.Equal(t, -0.4, in.Steer)
	assert.True(t, in.ShiftUp)
}
