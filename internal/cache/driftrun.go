package cache

import "sync"

// DriftRunCache maps vehicle IDs to the database ID of their open drift
// run, so the run can be closed when the drift ends
type DriftRunCache struct {
	mu   sync.RWMutex
	runs map[uint16]uint
}

// NewDriftRunCache creates a new DriftRunCache
func NewDriftRunCache() *DriftRunCache {
	return &DriftRunCache{
		runs: make(map[uint16]uint),
	}
}

// Get retrieves the open drift run ID for a vehicle
func (c *DriftRunCache) Get(vehicleID uint16) (uint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.runs[vehicleID]
	return id, ok
}

// Set stores the open drift run ID for a vehicle
func (c *DriftRunCache) Set(vehicleID uint16, id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs[vehicleID] = id
}

// Delete removes a vehicle's open drift run
func (c *DriftRunCache) Delete(vehicleID uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.runs, vehicleID)
}

// Reset clears all open drift runs from the cache
func (c *DriftRunCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = make(map[uint16]uint)
}
