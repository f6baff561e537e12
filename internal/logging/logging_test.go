package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name         string
		logsDir      string
		recorderName string
		want         string
	}{
		{
			name:         "basic path",
			logsDir:      "midnightlogs",
			recorderName: "midnight_recorder",
			want:         filepath.Join("midnightlogs", "midnight_recorder.20260212_213836.log"),
		},
		{
			name:         "relative path with dot",
			logsDir:      "./midnightlogs",
			recorderName: "midnight_recorder",
			want:         filepath.Join(".", "midnightlogs", "midnight_recorder.20260212_213836.log"),
		},
		{
			name:         "absolute path",
			logsDir:      filepath.Join("/var", "log", "midnight"),
			recorderName: "midnight_recorder",
			want:         filepath.Join("/var", "log", "midnight", "midnight_recorder.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.recorderName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}
