package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/nivkatz/tenants_backend/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the repositories can
// run inside or outside the exclusive transaction.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

// PostgresStore implements domain.Store on postgres. Mutating sequences lock
// the tenant table so the occupancy check-then-act is serialized across
// connections; plain reads run outside the lock at read-committed isolation.
type PostgresStore struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// NewPostgresStore wraps an open database handle
func NewPostgresStore(db *sql.DB, lockTimeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, lockTimeout: lockTimeout}
}

// Tenants returns the current-occupancy repository
func (s *PostgresStore) Tenants() domain.TenantRepository {
	return &tenantRepository{q: s.db}
}

// History returns the occupancy-ledger repository
func (s *PostgresStore) History() domain.HistoryRepository {
	return &historyRepository{q: s.db}
}

// BeginExclusive opens a transaction holding the store-wide write lock.
// When the lock cannot be taken within the configured timeout the caller
// gets domain.ErrUnavailable and may retry.
func (s *PostgresStore) BeginExclusive() (domain.Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("set lock timeout: %w", err)
	}

	if _, err := tx.Exec("LOCK TABLE tenant IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		tx.Rollback()
		if isLockTimeout(err) {
			return nil, fmt.Errorf("tenant table lock not acquired within %s: %w", s.lockTimeout, domain.ErrUnavailable)
		}
		return nil, fmt.Errorf("lock tenant table: %w", err)
	}

	return &postgresTx{tx: tx}, nil
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) Tenants() domain.TenantRepository {
	return &tenantRepository{q: t.tx}
}

func (t *postgresTx) History() domain.HistoryRepository {
	return &historyRepository{q: t.tx}
}

func (t *postgresTx) Commit() error {
	return t.tx.Commit()
}

func (t *postgresTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// isLockTimeout reports whether err is the postgres lock_not_available error
func isLockTimeout(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "55P03"
	}
	return false
}
