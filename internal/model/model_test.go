package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"RecorderInfo", &RecorderInfo{}, "recorder_infos"},
		{"Track", &Track{}, "tracks"},
		{"Session", &Session{}, "sessions"},
		{"Vehicle", &Vehicle{}, "vehicles"},
		{"VehicleSample", &VehicleSample{}, "vehicle_samples"},
		{"RaceEvent", &RaceEvent{}, "race_events"},
		{"DriftRun", &DriftRun{}, "drift_runs"},
		{"SimPerformance", &SimPerformance{}, "sim_performances"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModelsCoversAllTables(t *testing.T) {
	assert.Len(t, DatabaseModels, 8)
	for _, m := range DatabaseModels {
		_, ok := m.(interface{ TableName() string })
		assert.True(t, ok, "model %T must declare a table name", m)
	}
}
