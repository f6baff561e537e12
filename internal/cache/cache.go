package cache

import (
	"sync"

	"github.com/tommytrillva/midnight-sub001/pkg/core"
)

// VehicleCache caches vehicles when they join the session to avoid subsequent db reads.
// Latency in these calls is critical to quickly process incoming samples.
type VehicleCache struct {
	m        sync.Mutex
	Vehicles map[uint16]core.Vehicle
}

func NewVehicleCache() *VehicleCache {
	return &VehicleCache{
		m:        sync.Mutex{},
		Vehicles: make(map[uint16]core.Vehicle),
	}
}

func (c *VehicleCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Vehicles = make(map[uint16]core.Vehicle)
}

func (c *VehicleCache) Lock() {
	c.m.Lock()
}

func (c *VehicleCache) Unlock() {
	c.m.Unlock()
}

func (c *VehicleCache) Get(id uint16) (core.Vehicle, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if v, ok := c.Vehicles[id]; ok {
		return v, true
	}
	return core.Vehicle{}, false
}

func (c *VehicleCache) Add(v core.Vehicle) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Vehicles[v.ID] = v
}

func (c *VehicleCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.Vehicles)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
