// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	v1 "github.com/tommytrillva/midnight-sub001/internal/storage/memory/export/v1"
	"github.com/tommytrillva/midnight-sub001/pkg/core"
)

// exportJSON writes the session data to a replay file.
// Caller must hold b.mu.
func (b *Backend) exportJSON() error {
	if b.session == nil || b.track == nil {
		return fmt.Errorf("no session to export")
	}

	export := v1.Build(b.sessionData())

	// Build filename
	sessionName := strings.ReplaceAll(b.session.Name, " ", "_")
	sessionName = strings.ReplaceAll(sessionName, ":", "_")
	timestamp := b.session.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", sessionName, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", sessionName, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

// sessionData snapshots the recorded state into the builder's input.
// Caller must hold b.mu.
func (b *Backend) sessionData() *v1.SessionData {
	data := &v1.SessionData{
		Session:   b.session,
		Track:     b.track,
		Vehicles:  make(map[uint16]*v1.VehicleRecord, len(b.vehicles)),
		DriftRuns: b.driftRuns,
	}
	for id, record := range b.vehicles {
		data.Vehicles[id] = &v1.VehicleRecord{
			Vehicle: record.Vehicle,
			Samples: record.Samples,
			Events:  record.Events,
		}
	}
	return data
}

// GetExportedFilePath returns the path of the last exported replay file.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the last recorded session for the upload API.
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	meta := core.UploadMetadata{
		Vehicles: len(b.vehicles),
	}
	if b.session != nil {
		meta.SessionName = b.session.Name
		meta.Tag = b.session.Tag

		// Duration from the latest sample frame and the tick rate.
		var maxFrame uint
		for _, record := range b.vehicles {
			for _, s := range record.Samples {
				if s.CaptureFrame > maxFrame {
					maxFrame = s.CaptureFrame
				}
			}
		}
		if b.session.TickRate > 0 {
			meta.DurationSecs = float64(maxFrame) / b.session.TickRate
		}
	}
	if b.track != nil {
		meta.TrackName = b.track.Name
	}
	return meta
}

func writeJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
