package database

import (
	"context"
	"sync"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// MemoryDriverDirectory is a process-local availability table. With
// allowUnknown set, drivers that were never registered count as eligible.
type MemoryDriverDirectory struct {
	mu           sync.RWMutex
	statuses     map[string]entity.DriverStatus
	allowUnknown bool
}

func NewMemoryDriverDirectory(allowUnknown bool) *MemoryDriverDirectory {
	return &MemoryDriverDirectory{statuses: make(map[string]entity.DriverStatus), allowUnknown: allowUnknown}
}

func (d *MemoryDriverDirectory) Set(driverID string, status entity.DriverStatus) {
	d.mu.Lock()
	d.statuses[driverID] = status
	d.mu.Unlock()
}

func (d *MemoryDriverDirectory) Status(_ context.Context, driverID string) (entity.DriverStatus, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	status, ok := d.statuses[driverID]
	if !ok && d.allowUnknown {
		return entity.DriverStatus{Available: true, Verified: true}, nil
	}
	return status, nil
}
