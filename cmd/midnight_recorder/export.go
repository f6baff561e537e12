package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tommytrillva/midnight-sub001/internal/database"
	"github.com/tommytrillva/midnight-sub001/internal/model"
	"github.com/tommytrillva/midnight-sub001/internal/model/convert"
	v1 "github.com/tommytrillva/midnight-sub001/internal/storage/memory/export/v1"

	"gorm.io/gorm"
)

// runExport re-reads recorded sessions from the database and writes
// each one as a gzipped replay file in the working directory.
func runExport(sessionIDs []string) error {
	Logger.Info("Connecting to database...")
	db, err := database.GetPostgresDBStandalone()
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	Logger.Info("Database connection established.")

	for _, sessionID := range sessionIDs {
		id, err := strconv.Atoi(strings.TrimSpace(sessionID))
		if err != nil {
			return fmt.Errorf("invalid session ID %q: %w", sessionID, err)
		}
		if err := exportSession(db, uint(id)); err != nil {
			return fmt.Errorf("session %d: %w", id, err)
		}
	}
	return nil
}

func exportSession(db *gorm.DB, sessionID uint) error {
	txStart := time.Now()

	var sess model.Session
	if err := db.First(&sess, sessionID).Error; err != nil {
		return fmt.Errorf("error getting session: %w", err)
	}
	var track model.Track
	if err := db.First(&track, sess.TrackID).Error; err != nil {
		return fmt.Errorf("error getting track: %w", err)
	}

	coreSess := convert.SessionToCore(sess)
	coreTrack := convert.TrackToCore(track)
	data := &v1.SessionData{
		Session:  &coreSess,
		Track:    &coreTrack,
		Vehicles: make(map[uint16]*v1.VehicleRecord),
	}

	var vehicles []model.Vehicle
	if err := db.Where("session_id = ?", sessionID).Find(&vehicles).Error; err != nil {
		return fmt.Errorf("error getting vehicles: %w", err)
	}

	for _, vehicle := range vehicles {
		record := &v1.VehicleRecord{Vehicle: convert.VehicleToCore(vehicle)}

		var samples []model.VehicleSample
		err := db.Where("session_id = ? AND vehicle_object_id = ?", sessionID, vehicle.ObjectID).
			Order("capture_frame ASC").
			Find(&samples).Error
		if err != nil {
			return fmt.Errorf("error getting samples: %w", err)
		}
		for _, s := range samples {
			record.Samples = append(record.Samples, convert.VehicleSampleToCore(s))
		}

		var events []model.RaceEvent
		err = db.Where("session_id = ? AND vehicle_object_id = ?", sessionID, vehicle.ObjectID).
			Order("capture_frame ASC").
			Find(&events).Error
		if err != nil {
			return fmt.Errorf("error getting events: %w", err)
		}
		for _, e := range events {
			record.Events = append(record.Events, convert.RaceEventToCore(e))
		}

		data.Vehicles[vehicle.ObjectID] = record
	}

	var driftRuns []model.DriftRun
	err := db.Where("session_id = ?", sessionID).
		Order("start_frame ASC").
		Find(&driftRuns).Error
	if err != nil {
		return fmt.Errorf("error getting drift runs: %w", err)
	}
	for _, d := range driftRuns {
		data.DriftRuns = append(data.DriftRuns, convert.DriftRunToCore(d))
	}

	Logger.Info("Got session data", "sessionID", sessionID, "duration", time.Since(txStart))

	export := v1.Build(data)
	exportJSON, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("error marshalling session data: %w", err)
	}

	fileName := fmt.Sprintf("%s_%s.json.gz", sess.Name, sess.StartTime.Format("20060102_150405"))
	fileName = strings.ReplaceAll(fileName, " ", "_")
	fileName = strings.ReplaceAll(fileName, ":", "_")

	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()
	if _, err = gzWriter.Write(exportJSON); err != nil {
		return fmt.Errorf("error writing to gzip: %w", err)
	}

	Logger.Info("Wrote replay file", "path", fileName)
	return nil
}
