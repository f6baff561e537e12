package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/tommytrillva/midnight-sub001/internal/api"
	"github.com/tommytrillva/midnight-sub001/internal/cache"
	"github.com/tommytrillva/midnight-sub001/internal/config"
	"github.com/tommytrillva/midnight-sub001/internal/database"
	"github.com/tommytrillva/midnight-sub001/internal/geo"
	"github.com/tommytrillva/midnight-sub001/internal/influx"
	"github.com/tommytrillva/midnight-sub001/internal/logging"
	"github.com/tommytrillva/midnight-sub001/internal/monitor"
	intOtel "github.com/tommytrillva/midnight-sub001/internal/otel"
	"github.com/tommytrillva/midnight-sub001/internal/recorder"
	"github.com/tommytrillva/midnight-sub001/internal/scenario"
	"github.com/tommytrillva/midnight-sub001/internal/session"
	"github.com/tommytrillva/midnight-sub001/internal/storage"
	"github.com/tommytrillva/midnight-sub001/pkg/telemetry"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// RecorderVersion and BuildDate can be set at build time via ldflags
var (
	RecorderVersion string = "0.0.1"
	BuildDate       string = "unknown"

	RecorderName string = "midnight_recorder"
)

var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()
)

// timeSeriesTables maps each high-volume table to its compression
// segment-by columns for TimescaleDB hypertable setup.
var timeSeriesTables = map[string][]string{
	"vehicle_samples":  {"session_id", "vehicle_object_id"},
	"race_events":      {"session_id", "vehicle_object_id"},
	"sim_performances": {"session_id"},
}

func main() {
	configDir := flag.String("config", ".", "directory containing midnight_recorder.cfg.json")
	scenarioPath := flag.String("scenario", "", "scenario script to run")
	demo := flag.Bool("demo", false, "run the built-in demo scenario")
	exportIDs := flag.String("export", "", "comma-separated session IDs to re-export as replay files")
	sessionName := flag.String("name", "", "session name (defaults to the start timestamp)")
	duration := flag.Float64("duration", 0, "override the script end time, in seconds")
	flag.Parse()

	// Bootstrap logging to stderr until the config names a log file
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(os.Stderr, "info", nil, "")
	Logger = SlogManager.Logger()

	Logger.Info("Starting up...", "version", RecorderVersion, "build", BuildDate)

	if err := config.Load(*configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	logFile := setupLogFile()
	if logFile != nil {
		defer logFile.Close()
	}
	setupOtel(logFile)
	setupLogging(logFile)

	if *exportIDs != "" {
		if err := runExport(strings.Split(*exportIDs, ",")); err != nil {
			Logger.Error("Export failed", "error", err)
			os.Exit(1)
		}
		return
	}

	script, err := loadScript(*scenarioPath, *demo, *duration)
	if err != nil {
		Logger.Error("Failed to load scenario", "error", err)
		flag.Usage()
		os.Exit(2)
	}

	name := *sessionName
	if name == "" {
		name = fmt.Sprintf("Midnight Run %s", SessionStartTime.Format("2006-01-02 15:04"))
	}

	if err := run(script, name, *scenarioPath, *demo); err != nil {
		Logger.Error("Session failed", "error", err)
		os.Exit(1)
	}
}

// setupLogFile creates the logs directory and opens this session's log
// file. Falls back to stderr-only logging on failure.
func setupLogFile() *os.File {
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
		return nil
	}

	path := logging.LogFilePath(logsDir, RecorderName, SessionStartTime)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", path)
		return nil
	}

	Logger.Info("Begin logging in logs directory", "path", path)
	return f
}

func setupOtel(logFile *os.File) {
	otelCfg := config.GetOtelConfig()
	if !otelCfg.Enabled {
		return
	}

	var err error
	OTelProvider, err = intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    logFile,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		Logger.Error("Failed to initialize OTel provider", "error", err)
		return
	}
	if otelCfg.Endpoint != "" {
		Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
	} else {
		Logger.Info("OTel provider initialized")
	}
}

// setupLogging re-runs the slog setup with the file target plus the
// optional OTel and GELF handlers.
func setupLogging(logFile *os.File) {
	var target *os.File = logFile
	if target == nil {
		target = os.Stderr
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}

	gelfAddress := ""
	if viper.GetBool("graylog.enabled") {
		gelfAddress = viper.GetString("graylog.address")
	}

	SlogManager.Setup(target, viper.GetString("logLevel"), otelLogProvider, gelfAddress)
	Logger = SlogManager.Logger()
}

func loadScript(path string, demo bool, duration float64) (*scenario.Script, error) {
	parser := scenario.NewParser(Logger)

	var script *scenario.Script
	var err error
	switch {
	case demo:
		script, err = parser.ParseScript(scenario.DemoScript)
	case path != "":
		script, err = parser.ParseFile(path)
	default:
		return nil, fmt.Errorf("either -scenario or -demo is required")
	}
	if err != nil {
		return nil, err
	}

	if duration > 0 {
		script.EndTime = duration
	}
	return script, nil
}

func run(script *scenario.Script, sessionName, scenarioPath string, demo bool) error {
	vehicleCache := cache.NewVehicleCache()
	driftRunCache := cache.NewDriftRunCache()
	sessionCtx := session.NewContext()

	zlog := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// DB-backed backends share one connection manager with the monitor,
	// so its perf rows land next to the session data.
	storageCfg := config.GetStorageConfig()
	var dbManager *database.Manager
	switch storageCfg.Type {
	case "postgres", "sqlite":
		dbManager = database.NewManager(zlog)
	}

	backend, err := storage.NewBackend(storageCfg, storage.Dependencies{
		VehicleCache:   vehicleCache,
		DriftRunCache:  driftRunCache,
		LogManager:     SlogManager,
		SessionContext: sessionCtx,
		Database:       dbManager,
	})
	if err != nil {
		return fmt.Errorf("error creating storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("error initializing storage backend: %w", err)
	}
	defer backend.Close()

	var influxMgr *influx.Manager
	influxCfg := config.GetInfluxConfig()
	if influxCfg.Enabled {
		backupPath := filepath.Join(viper.GetString("logsDir"), "influx_backup.gz")
		influxMgr = influx.NewManager(zlog, backupPath)
		if err := influxMgr.Connect(); err != nil {
			Logger.Warn("InfluxDB unavailable, metrics go to backup file", "error", err)
		}
		influxMgr.CreateWriters()
	}

	bus, err := telemetry.NewBus(logging.NewBusLogger(zlog))
	if err != nil {
		return fmt.Errorf("error creating telemetry bus: %w", err)
	}
	defer bus.Close()

	geoRef, err := buildGeoRef(script)
	if err != nil {
		Logger.Warn("Geo reference unavailable, samples carry no lat/lon", "error", err)
	}

	recorderManager := recorder.NewManager(recorder.Dependencies{
		VehicleCache:   vehicleCache,
		DriftRunCache:  driftRunCache,
		LogManager:     SlogManager,
		SessionContext: sessionCtx,
		Geo:            geoRef,
		Influx:         influxMgr,
	}, backend)
	recorderManager.RegisterHandlers(bus)

	sessCfg := config.GetSessionConfig()
	runner := session.NewRunner(session.RunnerDependencies{
		Backend:        backend,
		Recorder:       recorderManager,
		SessionContext: sessionCtx,
		LogManager:     SlogManager,
		Publisher:      bus,
	}, session.RunnerConfig{
		SessionName:     sessionName,
		ScenarioName:    scenarioLabel(scenarioPath, demo),
		Tag:             viper.GetString("defaultTag"),
		RecorderVersion: RecorderVersion,
		TickRate:        sessCfg.TickRate,
		CaptureEveryNth: sessCfg.CaptureEveryNth,
		Realtime:        sessCfg.Realtime,
		Tuning:          config.GetTuning(),
	}, script)

	monitorDeps := monitor.Dependencies{
		LogManager:     SlogManager,
		SessionContext: sessionCtx,
		Backend:        backend,
		Influx:         influxMgr,
		StatusDir:      viper.GetString("logsDir"),
		TickDurationMs: runner.TickDurationMs,
	}
	if dbManager != nil {
		monitorDeps.DB = dbManager.DB
		monitorDeps.IsDatabaseValid = func() bool { return dbManager.IsValid }
	}
	monitorService := monitor.NewService(monitorDeps)

	// TimescaleDB only applies to a live postgres connection, not the
	// SQLite fallback.
	if storageCfg.Type == "postgres" && dbManager.IsValid && !dbManager.ShouldSaveLocal {
		if err := monitorService.ValidateHypertables(timeSeriesTables); err != nil {
			Logger.Warn("Hypertable setup failed, continuing with plain tables", "error", err)
		}
	}

	if err := monitorService.Start(); err != nil {
		Logger.Warn("Failed to start monitor", "error", err)
	}
	defer monitorService.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := runner.Run(ctx)
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}

	uploadRecording(backend)
	flushTelemetry()

	return nil
}

// buildGeoRef anchors the meter grid: the script's track origin when it
// names one, the configured default otherwise.
func buildGeoRef(script *scenario.Script) (*geo.Ref, error) {
	lat, lon := script.Track.OriginLat, script.Track.OriginLon
	if lat == 0 && lon == 0 {
		geoCfg := config.GetGeoConfig()
		lat, lon = geoCfg.OriginLat, geoCfg.OriginLon
	}
	return geo.NewRef(lat, lon)
}

func scenarioLabel(path string, demo bool) string {
	if demo {
		return "demo"
	}
	return filepath.Base(path)
}

// uploadRecording pushes the exported replay to the frontend when the
// backend produced a file and auto-upload is on.
func uploadRecording(backend storage.Backend) {
	if !viper.GetBool("api.autoUpload") {
		return
	}
	uploadable, ok := backend.(storage.Uploadable)
	if !ok {
		return
	}

	path := uploadable.GetExportedFilePath()
	if path == "" {
		Logger.Warn("Auto-upload enabled but backend has no exported file")
		return
	}
	meta := uploadable.GetExportMetadata()

	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
	if err := client.Upload(path, meta); err != nil {
		Logger.Error("Failed to upload recording", "error", err, "path", path)
		return
	}
	Logger.Info("Recording uploaded", "path", path, "session", meta.SessionName)
}

func flushTelemetry() {
	if OTelProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := OTelProvider.Flush(ctx); err != nil {
		Logger.Warn("Failed to flush OTel data", "error", err)
	}
}
