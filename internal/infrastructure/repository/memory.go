package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nivkatz/tenants_backend/internal/domain"
)

type apartmentKey struct {
	building  int
	apartment int
}

// MemoryStore is an in-memory implementation of domain.Store, used by the
// test suites and for running the server without postgres. Writers serialize
// on a single slot with a bounded wait; readers see the last committed
// snapshot and never block behind an open transaction.
type MemoryStore struct {
	mu          sync.RWMutex
	writerSlot  chan struct{}
	lockTimeout time.Duration

	tenants map[apartmentKey]*domain.TenantRecord
	history map[apartmentKey][]*domain.TenantHistory
}

// NewMemoryStore creates an empty store with the given lock-wait bound
func NewMemoryStore(lockTimeout time.Duration) *MemoryStore {
	return &MemoryStore{
		writerSlot:  make(chan struct{}, 1),
		lockTimeout: lockTimeout,
		tenants:     make(map[apartmentKey]*domain.TenantRecord),
		history:     make(map[apartmentKey][]*domain.TenantHistory),
	}
}

// Tenants returns the current-occupancy repository
func (s *MemoryStore) Tenants() domain.TenantRepository {
	return &memoryTenantRepo{store: s}
}

// History returns the occupancy-ledger repository
func (s *MemoryStore) History() domain.HistoryRepository {
	return &memoryHistoryRepo{store: s}
}

// BeginExclusive acquires the writer slot and snapshots the store. The
// transaction mutates its private snapshot; Commit swaps it in atomically.
func (s *MemoryStore) BeginExclusive() (domain.Tx, error) {
	if err := s.acquireWriter(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	tenants := make(map[apartmentKey]*domain.TenantRecord, len(s.tenants))
	for k, v := range s.tenants {
		tenants[k] = v.Clone()
	}
	history := make(map[apartmentKey][]*domain.TenantHistory, len(s.history))
	for k, v := range s.history {
		records := make([]*domain.TenantHistory, len(v))
		copy(records, v)
		history[k] = records
	}
	s.mu.RUnlock()

	return &memoryTx{store: s, tenants: tenants, history: history}, nil
}

func (s *MemoryStore) acquireWriter() error {
	select {
	case s.writerSlot <- struct{}{}:
		return nil
	case <-time.After(s.lockTimeout):
		return fmt.Errorf("exclusive lock not acquired within %s: %w", s.lockTimeout, domain.ErrUnavailable)
	}
}

func (s *MemoryStore) releaseWriter() {
	<-s.writerSlot
}

// withWriter runs a direct (non-transactional) mutation under the writer slot
func (s *MemoryStore) withWriter(fn func() error) error {
	if err := s.acquireWriter(); err != nil {
		return err
	}
	defer s.releaseWriter()

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type memoryTx struct {
	store    *MemoryStore
	tenants  map[apartmentKey]*domain.TenantRecord
	history  map[apartmentKey][]*domain.TenantHistory
	finished bool
}

func (tx *memoryTx) Tenants() domain.TenantRepository {
	return &txTenantRepo{tx: tx}
}

func (tx *memoryTx) History() domain.HistoryRepository {
	return &txHistoryRepo{tx: tx}
}

func (tx *memoryTx) Commit() error {
	if tx.finished {
		return fmt.Errorf("transaction already finished")
	}
	tx.store.mu.Lock()
	tx.store.tenants = tx.tenants
	tx.store.history = tx.history
	tx.store.mu.Unlock()

	tx.finished = true
	tx.store.releaseWriter()
	return nil
}

func (tx *memoryTx) Rollback() error {
	if tx.finished {
		return nil
	}
	tx.finished = true
	tx.store.releaseWriter()
	return nil
}

// --- shared map operations, used by both the live store and transactions ---

func getCurrent(tenants map[apartmentKey]*domain.TenantRecord, building, apartment int) *domain.TenantRecord {
	if t, ok := tenants[apartmentKey{building, apartment}]; ok {
		return t.Clone()
	}
	return nil
}

func listCurrent(tenants map[apartmentKey]*domain.TenantRecord, building int) []domain.TenantRecord {
	out := make([]domain.TenantRecord, 0, len(tenants))
	for _, t := range tenants {
		if building != 0 && t.BuildingNumber != building {
			continue
		}
		out = append(out, *t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BuildingNumber != out[j].BuildingNumber {
			return out[i].BuildingNumber < out[j].BuildingNumber
		}
		return out[i].ApartmentNumber < out[j].ApartmentNumber
	})
	return out
}

func createCurrent(tenants map[apartmentKey]*domain.TenantRecord, record *domain.TenantRecord) error {
	key := apartmentKey{record.BuildingNumber, record.ApartmentNumber}
	if _, exists := tenants[key]; exists {
		return fmt.Errorf("apartment %d/%d already has a current tenant", record.BuildingNumber, record.ApartmentNumber)
	}
	tenants[key] = record.Clone()
	return nil
}

func updateCurrent(tenants map[apartmentKey]*domain.TenantRecord, record *domain.TenantRecord) error {
	key := apartmentKey{record.BuildingNumber, record.ApartmentNumber}
	if _, exists := tenants[key]; !exists {
		return fmt.Errorf("apartment %d/%d: %w", record.BuildingNumber, record.ApartmentNumber, domain.ErrNotFound)
	}
	tenants[key] = record.Clone()
	return nil
}

func deleteCurrent(tenants map[apartmentKey]*domain.TenantRecord, building, apartment int) error {
	key := apartmentKey{building, apartment}
	if _, exists := tenants[key]; !exists {
		return fmt.Errorf("apartment %d/%d: %w", building, apartment, domain.ErrNotFound)
	}
	delete(tenants, key)
	return nil
}

func appendHistory(history map[apartmentKey][]*domain.TenantHistory, record *domain.TenantHistory) {
	key := apartmentKey{record.BuildingNumber, record.ApartmentNumber}
	c := *record
	history[key] = append(history[key], &c)
}

func listHistoryByApartment(history map[apartmentKey][]*domain.TenantHistory, building, apartment int) []domain.TenantHistory {
	records := history[apartmentKey{building, apartment}]
	out := make([]domain.TenantHistory, 0, len(records))
	for _, r := range records {
		out = append(out, *r)
	}
	sortHistory(out)
	return out
}

func listHistoryByBuilding(history map[apartmentKey][]*domain.TenantHistory, building int) []domain.TenantHistory {
	var out []domain.TenantHistory
	for key, records := range history {
		if key.building != building {
			continue
		}
		for _, r := range records {
			out = append(out, *r)
		}
	}
	sortHistory(out)
	return out
}

// sortHistory orders records by move-out date descending, most recent first
func sortHistory(records []domain.TenantHistory) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].MoveOutDate.After(records[j].MoveOutDate)
	})
}

// --- live repositories (snapshot reads, slot-guarded writes) ---

type memoryTenantRepo struct {
	store *MemoryStore
}

func (r *memoryTenantRepo) GetCurrent(building, apartment int) (*domain.TenantRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return getCurrent(r.store.tenants, building, apartment), nil
}

func (r *memoryTenantRepo) ListCurrent(building int) ([]domain.TenantRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return listCurrent(r.store.tenants, building), nil
}

func (r *memoryTenantRepo) Create(record *domain.TenantRecord) error {
	return r.store.withWriter(func() error {
		return createCurrent(r.store.tenants, record)
	})
}

func (r *memoryTenantRepo) Update(record *domain.TenantRecord) error {
	return r.store.withWriter(func() error {
		return updateCurrent(r.store.tenants, record)
	})
}

func (r *memoryTenantRepo) Delete(building, apartment int) error {
	return r.store.withWriter(func() error {
		return deleteCurrent(r.store.tenants, building, apartment)
	})
}

type memoryHistoryRepo struct {
	store *MemoryStore
}

func (r *memoryHistoryRepo) Append(record *domain.TenantHistory) error {
	return r.store.withWriter(func() error {
		appendHistory(r.store.history, record)
		return nil
	})
}

func (r *memoryHistoryRepo) ListByApartment(building, apartment int) ([]domain.TenantHistory, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return listHistoryByApartment(r.store.history, building, apartment), nil
}

func (r *memoryHistoryRepo) ListByBuilding(building int) ([]domain.TenantHistory, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return listHistoryByBuilding(r.store.history, building), nil
}

// --- transaction repositories (operate on the private snapshot) ---

type txTenantRepo struct {
	tx *memoryTx
}

func (r *txTenantRepo) GetCurrent(building, apartment int) (*domain.TenantRecord, error) {
	return getCurrent(r.tx.tenants, building, apartment), nil
}

func (r *txTenantRepo) ListCurrent(building int) ([]domain.TenantRecord, error) {
	return listCurrent(r.tx.tenants, building), nil
}

func (r *txTenantRepo) Create(record *domain.TenantRecord) error {
	return createCurrent(r.tx.tenants, record)
}

func (r *txTenantRepo) Update(record *domain.TenantRecord) error {
	return updateCurrent(r.tx.tenants, record)
}

func (r *txTenantRepo) Delete(building, apartment int) error {
	return deleteCurrent(r.tx.tenants, building, apartment)
}

type txHistoryRepo struct {
	tx *memoryTx
}

func (r *txHistoryRepo) Append(record *domain.TenantHistory) error {
	appendHistory(r.tx.history, record)
	return nil
}

func (r *txHistoryRepo) ListByApartment(building, apartment int) ([]domain.TenantHistory, error) {
	return listHistoryByApartment(r.tx.history, building, apartment), nil
}

func (r *txHistoryRepo) ListByBuilding(building int) ([]domain.TenantHistory, error) {
	return listHistoryByBuilding(r.tx.history, building), nil
}
