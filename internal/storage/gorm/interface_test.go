package gormstorage_test

import (
	"github.com/tommytrillva/midnight-sub001/internal/storage"
	gormstorage "github.com/tommytrillva/midnight-sub001/internal/storage/gorm"
)

// Compile-time interface checks. These live in an external test package
// because the storage factory imports the backends built on this one.
var (
	_ storage.Backend                 = (*gormstorage.Backend)(nil)
	_ storage.DBWriteDurationProvider = (*gormstorage.Backend)(nil)
	_ storage.QueueLengthProvider     = (*gormstorage.Backend)(nil)
)
