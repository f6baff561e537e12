// Package gormstorage is the shared queue-backed GORM writer used by the
// sqlite and postgres storage backends. Records are converted to GORM
// models, pushed onto per-type queues, and drained in batches by a
// background writer goroutine. With a nil DB it runs in queue-only mode,
// which is what the unit tests exercise.
package gormstorage

import (
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/tommytrillva/midnight-sub001/internal/cache"
	"github.com/tommytrillva/midnight-sub001/internal/logging"
	"github.com/tommytrillva/midnight-sub001/internal/model"
	"github.com/tommytrillva/midnight-sub001/internal/model/convert"
	"github.com/tommytrillva/midnight-sub001/internal/queue"
	"github.com/tommytrillva/midnight-sub001/internal/session"
	"github.com/tommytrillva/midnight-sub001/pkg/core"
)

const (
	writeInterval  = 2 * time.Second
	writeBatchSize = 2000
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB             *gorm.DB
	VehicleCache   *cache.VehicleCache
	DriftRunCache  *cache.DriftRunCache
	LogManager     *logging.SlogManager
	SessionContext *session.Context
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Vehicles  *queue.Queue[model.Vehicle]
	Samples   *queue.Queue[model.VehicleSample]
	Events    *queue.Queue[model.RaceEvent]
	DriftRuns *queue.Queue[model.DriftRun]
}

func newQueues() *queues {
	return &queues{
		Vehicles:  queue.New[model.Vehicle](),
		Samples:   queue.New[model.VehicleSample](),
		Events:    queue.New[model.RaceEvent](),
		DriftRuns: queue.New[model.DriftRun](),
	}
}

// Backend implements storage.Backend on GORM with queue-based batch writes.
type Backend struct {
	deps          Dependencies
	queues        *queues
	sessionID     atomic.Uint64
	lastWriteNano atomic.Int64
	stopChan      chan struct{}
	dbReady       bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps: deps,
	}
}

// Init creates internal queues, runs schema migration, and starts the DB
// writer goroutine. With a nil DB the backend only queues.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})

	if b.deps.DB != nil {
		if err := b.setupDB(); err != nil {
			return fmt.Errorf("failed to setup DB: %w", err)
		}
		b.dbReady = true
	}

	b.startDBWriter()
	return nil
}

// setupDB migrates tables and creates the recorder info row if missing.
func (b *Backend) setupDB() error {
	db := b.deps.DB
	log := b.deps.LogManager

	if !db.Migrator().HasTable(&model.RecorderInfo{}) {
		if err := db.AutoMigrate(&model.RecorderInfo{}); err != nil {
			log.WriteLog("setupDB", fmt.Sprintf("Failed to create recorder_infos table: %s", err), "ERROR")
			return fmt.Errorf("failed to auto-migrate RecorderInfo: %w", err)
		}
		if err := db.Create(&model.RecorderInfo{
			InstanceName: "Midnight Recorder",
			Description:  "Arcade vehicle telemetry recorder",
		}).Error; err != nil {
			return fmt.Errorf("failed to create recorder_infos entry: %w", err)
		}
	}

	log.WriteLog("setupDB", "Migrating schema", "INFO")
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.WriteLog("setupDB", "Database setup complete", "INFO")
	return nil
}

// Close stops the DB writer goroutine after a final flush.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
	}
	if b.dbReady {
		b.flushAll()
	}
	return nil
}

// StartSession performs track get-or-insert and session create in the DB,
// assigns the generated IDs back to the core types, and publishes the
// session to the shared context.
func (b *Backend) StartSession(coreSession *core.Session, coreTrack *core.Track) error {
	gormSession := convert.CoreToSession(*coreSession)
	gormTrack := convert.CoreToTrack(*coreTrack)

	if b.deps.DB != nil {
		db := b.deps.DB
		log := b.deps.LogManager

		created, err := gormTrack.GetOrInsert(db)
		if err != nil {
			return fmt.Errorf("failed to get or insert track: %w", err)
		}
		if created {
			log.WriteLog("StartSession", fmt.Sprintf("Created track %q", gormTrack.DisplayName), "INFO")
		}

		gormSession.Track = gormTrack
		gormSession.TrackID = gormTrack.ID
		if err := db.Create(&gormSession).Error; err != nil {
			return fmt.Errorf("failed to insert new session: %w", err)
		}

		coreSession.ID = gormSession.ID
		coreTrack.ID = gormTrack.ID
	}

	// Store session ID for the DB writer goroutine
	b.sessionID.Store(uint64(gormSession.ID))

	if b.deps.SessionContext != nil {
		b.deps.SessionContext.SetSession(&gormSession, &gormTrack)
	}
	return nil
}

// EndSession drains whatever is still queued.
func (b *Backend) EndSession() error {
	if b.dbReady {
		b.flushAll()
	}
	return nil
}

// AddVehicle converts a core vehicle to GORM and pushes to the write queue.
func (b *Backend) AddVehicle(v *core.Vehicle) error {
	gormObj := convert.CoreToVehicle(*v)
	b.queues.Vehicles.Push(gormObj)
	return nil
}

// RecordSample converts and queues a vehicle sample.
func (b *Backend) RecordSample(s *core.VehicleSample) error {
	gormObj := convert.CoreToVehicleSample(*s)
	b.queues.Samples.Push(gormObj)
	return nil
}

// RecordEvent converts and queues a race event.
func (b *Backend) RecordEvent(e *core.RaceEvent) error {
	gormObj := convert.CoreToRaceEvent(*e)
	b.queues.Events.Push(gormObj)
	return nil
}

// AddDriftRun inserts a drift run synchronously (not queued) because runs
// are low-volume and need immediate ID assignment so EndDriftRun can
// update the open row. Returns the DB-assigned ID (0 if no DB).
func (b *Backend) AddDriftRun(d *core.DriftRun) (uint, error) {
	gormObj := convert.CoreToDriftRun(*d)
	if b.deps.DB != nil {
		gormObj.SessionID = uint(b.sessionID.Load())
		if err := b.deps.DB.Create(&gormObj).Error; err != nil {
			return 0, fmt.Errorf("failed to insert drift run: %w", err)
		}
		if b.deps.DriftRunCache != nil {
			b.deps.DriftRunCache.Set(d.VehicleID, gormObj.ID)
		}
		return gormObj.ID, nil
	}

	// Queue-only mode: keep the run so a later flush can persist it.
	b.queues.DriftRuns.Push(gormObj)
	return 0, nil
}

// EndDriftRun finalizes the open drift run row identified by d.ID.
func (b *Backend) EndDriftRun(d *core.DriftRun) error {
	if b.deps.DB == nil || d.ID == 0 {
		return nil
	}

	updates := map[string]any{
		"end_frame":     d.EndFrame,
		"duration_secs": float32(d.DurationSecs),
		"peak_angle":    float32(d.PeakAngle),
		"score":         float32(d.Score),
		"spin_out":      d.SpinOut,
	}
	if err := b.deps.DB.Model(&model.DriftRun{}).Where("id = ?", d.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to finalize drift run %d: %w", d.ID, err)
	}
	if b.deps.DriftRunCache != nil {
		b.deps.DriftRunCache.Delete(d.VehicleID)
	}
	return nil
}

// SetSessionID sets the current session ID for the DB writer (used by CLI tools).
func (b *Backend) SetSessionID(id uint) {
	b.sessionID.Store(uint64(id))
}

// GetLastDBWriteDuration reports how long the last full queue flush took.
func (b *Backend) GetLastDBWriteDuration() time.Duration {
	return time.Duration(b.lastWriteNano.Load())
}

// QueueLengths reports the current depth of each write queue.
func (b *Backend) QueueLengths() model.QueueLengths {
	return model.QueueLengths{
		Vehicles:  uint16(b.queues.Vehicles.Len()),
		Samples:   uint16(b.queues.Samples.Len()),
		Events:    uint16(b.queues.Events.Len()),
		DriftRuns: uint16(b.queues.DriftRuns.Len()),
	}
}

// writeQueue writes all items from a queue to the database in a transaction.
// On failure the items are pushed back for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string), prepare func([]T)) {
	if q.Empty() {
		return
	}

	tx := db.Begin()
	items := q.GetAndEmpty()
	if prepare != nil {
		prepare(items)
	}
	if err := tx.CreateInBatches(&items, writeBatchSize).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		q.Push(items...)
		return
	}

	tx.Commit()
}

// flushAll drains every queue into the DB once and records the duration.
func (b *Backend) flushAll() {
	log := b.deps.LogManager.WriteLog
	sessionID := uint(b.sessionID.Load())

	stampVehicles := func(items []model.Vehicle) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	}
	stampSamples := func(items []model.VehicleSample) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	}
	stampEvents := func(items []model.RaceEvent) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	}
	stampDriftRuns := func(items []model.DriftRun) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	}

	start := time.Now()

	// Vehicles first so samples and events never reference a row that
	// lands in a later batch.
	writeQueue(b.deps.DB, b.queues.Vehicles, "vehicles", log, stampVehicles)
	writeQueue(b.deps.DB, b.queues.Samples, "vehicle samples", log, stampSamples)
	writeQueue(b.deps.DB, b.queues.Events, "race events", log, stampEvents)
	writeQueue(b.deps.DB, b.queues.DriftRuns, "drift runs", log, stampDriftRuns)

	b.lastWriteNano.Store(int64(time.Since(start)))
}

// startDBWriter starts the background goroutine that periodically drains
// queues into the DB.
func (b *Backend) startDBWriter() {
	go func() {
		for {
			select {
			case <-b.stopChan:
				return
			default:
			}

			if !b.dbReady {
				time.Sleep(1 * time.Second)
				continue
			}

			b.flushAll()
			time.Sleep(writeInterval)
		}
	}()
}
