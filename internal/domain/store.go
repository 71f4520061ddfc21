package domain

// TenantRepository defines the operations on current occupancy records
type TenantRepository interface {
	// GetCurrent returns the active tenant of an apartment, nil when vacant
	GetCurrent(building, apartment int) (*TenantRecord, error)
	// ListCurrent returns all active tenants ordered by (building, apartment).
	// A building of 0 means all buildings.
	ListCurrent(building int) ([]TenantRecord, error)
	// Create inserts a new current record
	Create(record *TenantRecord) error
	// Update overwrites the current record of the same apartment
	Update(record *TenantRecord) error
	// Delete removes the current record of an apartment
	Delete(building, apartment int) error
}

// HistoryRepository defines the operations on the append-only occupancy ledger
type HistoryRepository interface {
	// Append adds a history record. Records are never mutated afterwards.
	Append(record *TenantHistory) error
	// ListByApartment returns the apartment's history, most recent move-out first
	ListByApartment(building, apartment int) ([]TenantHistory, error)
	// ListByBuilding returns the building's history, most recent move-out first
	ListByBuilding(building int) ([]TenantHistory, error)
}

// Tx is an exclusive write transaction over the store. All reads and writes
// performed through it are applied atomically on Commit and discarded on
// Rollback.
type Tx interface {
	Tenants() TenantRepository
	History() HistoryRepository
	Commit() error
	Rollback() error
}

// Store is the persistence collaborator of the registry. Reads through
// Tenants/History observe a consistent snapshot without blocking writers.
// Mutating sequences (check-then-act across the occupancy table) must run
// inside a BeginExclusive transaction, which serializes all writers.
type Store interface {
	Tenants() TenantRepository
	History() HistoryRepository
	// BeginExclusive acquires the store-wide write lock. Acquisition is
	// bounded; on contention it fails with ErrUnavailable rather than hang.
	BeginExclusive() (Tx, error)
}
