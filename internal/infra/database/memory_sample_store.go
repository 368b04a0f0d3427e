package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// MemorySampleStore keeps every driver's sample history in process. Each
// driver's history has its own mutex, so writers of different drivers never
// contend beyond the brief map lookup.
type MemorySampleStore struct {
	mu      sync.RWMutex
	drivers map[string]*driverHistory
}

type driverHistory struct {
	mu      sync.Mutex
	samples []*entity.DriverLocationSample
}

func NewMemorySampleStore() *MemorySampleStore {
	return &MemorySampleStore{drivers: make(map[string]*driverHistory)}
}

func (s *MemorySampleStore) history(driverID string, create bool) *driverHistory {
	s.mu.RLock()
	h, ok := s.drivers[driverID]
	s.mu.RUnlock()
	if ok || !create {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok = s.drivers[driverID]; !ok {
		h = &driverHistory{}
		s.drivers[driverID] = h
	}
	return h
}

func copySample(src *entity.DriverLocationSample) *entity.DriverLocationSample {
	cp := *src
	return &cp
}

// deactivateLocked flips active samples by replacing them, so copies already
// handed to readers never change under them.
func (h *driverHistory) deactivateLocked() int64 {
	var flipped int64
	for i, sample := range h.samples {
		if !sample.IsActive() {
			continue
		}
		cp := copySample(sample)
		_ = cp.Deactivate()
		h.samples[i] = cp
		flipped++
	}
	return flipped
}

func (h *driverHistory) insertLocked(sample *entity.DriverLocationSample) {
	for i, existing := range h.samples {
		if existing.ID() == sample.ID() {
			h.samples[i] = copySample(sample)
			return
		}
	}
	h.samples = append(h.samples, copySample(sample))
}

func (h *driverHistory) activeCountLocked() int64 {
	var n int64
	for _, sample := range h.samples {
		if sample.IsActive() {
			n++
		}
	}
	return n
}

func (s *MemorySampleStore) LockDriver(_ context.Context, _ string) error {
	return nil
}

func (s *MemorySampleStore) DeactivateCurrent(_ context.Context, driverID string) (int64, error) {
	h := s.history(driverID, false)
	if h == nil {
		return 0, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deactivateLocked(), nil
}

func (s *MemorySampleStore) Insert(_ context.Context, sample *entity.DriverLocationSample) error {
	h := s.history(sample.DriverID(), true)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.insertLocked(sample)
	return nil
}

func (s *MemorySampleStore) FindActive(_ context.Context, driverID string) (*entity.DriverLocationSample, error) {
	h := s.history(driverID, false)
	if h == nil {
		return nil, outbound.ErrNotFound
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	var current *entity.DriverLocationSample
	for _, sample := range h.samples {
		if sample.IsActive() && (current == nil || sample.CapturedAt().After(current.CapturedAt())) {
			current = sample
		}
	}
	if current == nil {
		return nil, outbound.ErrNotFound
	}
	return copySample(current), nil
}

// History returns every stored sample of the driver ordered by capture time.
func (s *MemorySampleStore) History(driverID string) []*entity.DriverLocationSample {
	h := s.history(driverID, false)
	if h == nil {
		return nil
	}
	h.mu.Lock()
	out := make([]*entity.DriverLocationSample, len(h.samples))
	for i, sample := range h.samples {
		out[i] = copySample(sample)
	}
	h.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CapturedAt().Before(out[j].CapturedAt()) })
	return out
}

// ActiveSamples returns the active samples of all drivers.
func (s *MemorySampleStore) ActiveSamples() []*entity.DriverLocationSample {
	s.mu.RLock()
	histories := make([]*driverHistory, 0, len(s.drivers))
	for _, h := range s.drivers {
		histories = append(histories, h)
	}
	s.mu.RUnlock()

	var out []*entity.DriverLocationSample
	for _, h := range histories {
		h.mu.Lock()
		for _, sample := range h.samples {
			if sample.IsActive() {
				out = append(out, copySample(sample))
			}
		}
		h.mu.Unlock()
	}
	return out
}

func (s *MemorySampleStore) DeleteInactiveBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.drivers))
	for id := range s.drivers {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	var deleted int64
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if limit > 0 && deleted >= int64(limit) {
			break
		}
		h := s.history(id, false)
		h.mu.Lock()
		kept := h.samples[:0]
		for _, sample := range h.samples {
			expired := !sample.IsActive() && sample.CapturedAt().Before(cutoff)
			if expired && (limit <= 0 || deleted < int64(limit)) {
				deleted++
				continue
			}
			kept = append(kept, sample)
		}
		for i := len(kept); i < len(h.samples); i++ {
			h.samples[i] = nil
		}
		h.samples = kept
		h.mu.Unlock()
	}
	return deleted, nil
}

// Do buffers the writes of fn and applies them per driver under that
// driver's mutex once fn succeeds. Readers see the old or the new state of a
// driver, never a driver with the old sample flipped and the new one missing.
func (s *MemorySampleStore) Do(ctx context.Context, fn func(provider outbound.RepositoryProvider) error) error {
	tx := &memorySampleTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memoryOp struct {
	driverID   string
	deactivate bool
	insert     *entity.DriverLocationSample
}

type memorySampleTx struct {
	store *MemorySampleStore
	ops   []memoryOp
}

func (tx *memorySampleTx) Samples() outbound.SampleRepository { return tx }

func (tx *memorySampleTx) LockDriver(_ context.Context, _ string) error { return nil }

func (tx *memorySampleTx) DeactivateCurrent(_ context.Context, driverID string) (int64, error) {
	tx.ops = append(tx.ops, memoryOp{driverID: driverID, deactivate: true})
	h := tx.store.history(driverID, false)
	if h == nil {
		return 0, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.activeCountLocked(), nil
}

func (tx *memorySampleTx) Insert(_ context.Context, sample *entity.DriverLocationSample) error {
	tx.ops = append(tx.ops, memoryOp{driverID: sample.DriverID(), insert: copySample(sample)})
	return nil
}

func (tx *memorySampleTx) FindActive(ctx context.Context, driverID string) (*entity.DriverLocationSample, error) {
	return tx.store.FindActive(ctx, driverID)
}

func (tx *memorySampleTx) DeleteInactiveBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	return tx.store.DeleteInactiveBefore(ctx, cutoff, limit)
}

func (tx *memorySampleTx) commit() {
	byDriver := make(map[string][]memoryOp)
	order := make([]string, 0)
	for _, op := range tx.ops {
		if _, seen := byDriver[op.driverID]; !seen {
			order = append(order, op.driverID)
		}
		byDriver[op.driverID] = append(byDriver[op.driverID], op)
	}

	for _, driverID := range order {
		h := tx.store.history(driverID, true)
		h.mu.Lock()
		for _, op := range byDriver[driverID] {
			if op.deactivate {
				h.deactivateLocked()
			}
			if op.insert != nil {
				h.insertLocked(op.insert)
			}
		}
		h.mu.Unlock()
	}
}
