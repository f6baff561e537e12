package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/tommytrillva/midnight-sub001/pkg/dynamics"
)

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds the sqlite storage backend settings
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpDir      string        `json:"dumpDir" mapstructure:"dumpDir"`
}

// WebsocketConfig holds the live-streaming storage backend settings
type WebsocketConfig struct {
	ServerURL string `json:"serverUrl" mapstructure:"serverUrl"`
	APIKey    string `json:"apiKey" mapstructure:"apiKey"`
}

// StorageConfig selects and parameterizes the storage backend
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	Websocket WebsocketConfig `json:"websocket" mapstructure:"websocket"`
}

// InfluxConfig holds the InfluxDB metrics sink settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
}

// OtelConfig holds the OpenTelemetry export settings
type OtelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// SessionConfig holds the simulation loop settings
type SessionConfig struct {
	TickRate        float64 `json:"tickRate" mapstructure:"tickRate"`
	CaptureEveryNth uint    `json:"captureEveryNth" mapstructure:"captureEveryNth"`
	Realtime        bool    `json:"realtime" mapstructure:"realtime"`
}

// GeoConfig anchors the local meter grid on a real-world coordinate
type GeoConfig struct {
	OriginLat float64 `json:"originLat" mapstructure:"originLat"`
	OriginLon float64 `json:"originLon" mapstructure:"originLon"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("defaultTag", "Night")
	viper.SetDefault("logsDir", "./midnightlogs")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")
	viper.SetDefault("api.autoUpload", false)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "midnight")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpDir", "./recordings")
	viper.SetDefault("storage.websocket.serverUrl", "")
	viper.SetDefault("storage.websocket.apiKey", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "midnight-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "midnight-recorder")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("session.tickRate", 60.0)
	viper.SetDefault("session.captureEveryNth", 6)
	viper.SetDefault("session.realtime", false)

	viper.SetDefault("geo.originLat", 35.6762)
	viper.SetDefault("geo.originLon", 139.6503)

	viper.SetConfigName("midnight_recorder.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetStorageConfig builds the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpDir:      viper.GetString("storage.sqlite.dumpDir"),
		},
		Websocket: WebsocketConfig{
			ServerURL: viper.GetString("storage.websocket.serverUrl"),
			APIKey:    viper.GetString("storage.websocket.apiKey"),
		},
	}
}

// GetInfluxConfig builds the InfluxDB sink configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Protocol: viper.GetString("influx.protocol"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
	}
}

// GetOtelConfig builds the OpenTelemetry export configuration.
func GetOtelConfig() OtelConfig {
	return OtelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetSessionConfig builds the simulation loop configuration.
func GetSessionConfig() SessionConfig {
	return SessionConfig{
		TickRate:        viper.GetFloat64("session.tickRate"),
		CaptureEveryNth: uint(viper.GetInt("session.captureEveryNth")),
		Realtime:        viper.GetBool("session.realtime"),
	}
}

// GetGeoConfig builds the map anchor configuration.
func GetGeoConfig() GeoConfig {
	return GeoConfig{
		OriginLat: viper.GetFloat64("geo.originLat"),
		OriginLon: viper.GetFloat64("geo.originLon"),
	}
}

// GetTuning builds a vehicle tuning overlay: the stock setup with any
// `tuning.*` keys from the config applied on top. Values the file does
// not mention keep their defaults.
func GetTuning() dynamics.VehicleConfig {
	cfg := dynamics.DefaultConfig()

	overlay := map[string]*float64{
		"tuning.maxEngineForce":    &cfg.MaxEngineForce,
		"tuning.maxBrakeForce":     &cfg.MaxBrakeForce,
		"tuning.handbrakeForce":    &cfg.HandbrakeForce,
		"tuning.idleRPM":           &cfg.IdleRPM,
		"tuning.redline":           &cfg.Redline,
		"tuning.massKg":            &cfg.MassKg,
		"tuning.topSpeed":          &cfg.TopSpeed,
		"tuning.gripFront":         &cfg.GripFront,
		"tuning.gripRear":          &cfg.GripRear,
		"tuning.driftEntryAngle":   &cfg.DriftEntryAngle,
		"tuning.spinOutAngle":      &cfg.SpinOutAngle,
		"tuning.nitroCapacity":     &cfg.NitroCapacity,
		"tuning.nitroDrainRate":    &cfg.NitroDrainRate,
		"tuning.nitroForceMult":    &cfg.NitroForceMult,
		"tuning.downforce":         &cfg.Downforce,
		"tuning.weightTransfer":    &cfg.WeightTransfer,
		"tuning.maxSteerAngle":     &cfg.MaxSteerAngle,
		"tuning.highSpeedSteer":    &cfg.HighSpeedSteer,
		"tuning.countersteerBoost": &cfg.CountersteerBoost,
	}
	for key, field := range overlay {
		if viper.IsSet(key) {
			*field = viper.GetFloat64(key)
		}
	}
	return cfg
}
