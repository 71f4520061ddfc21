package application

import (
	"time"

	"github.com/nivkatz/tenants_backend/internal/domain"
)

// replacementCoordinator carries out the confirmed half of the probe/confirm
// workflow. It is stateless: nothing is persisted between the probe and the
// confirmed re-submission, the confirmed call re-checks current state instead
// of trusting whatever the client saw earlier.
type replacementCoordinator struct{}

// moveOutFor computes the outgoing tenant's move-out date: one calendar day
// before the incoming move-in, so no single day carries two tenants of record.
func (replacementCoordinator) moveOutFor(existing, incoming *domain.TenantRecord) (time.Time, error) {
	if !incoming.MoveInDate.After(existing.MoveInDate) {
		// The computed move-out would precede the existing move-in. Hard
		// validation error, never silently clamped.
		return time.Time{}, domain.ValidationError{{
			Field:   "move_in_date",
			Message: "must be after the current tenant's move-in date",
		}}
	}
	return incoming.MoveInDate.AddDate(0, 0, -1), nil
}

// replace archives the existing tenant and installs the incoming one. Runs
// inside the caller's exclusive transaction: archive, delete and create are
// committed together or not at all.
func (c replacementCoordinator) replace(tx domain.Tx, existing, incoming *domain.TenantRecord) (*domain.TenantHistory, error) {
	moveOut, err := c.moveOutFor(existing, incoming)
	if err != nil {
		return nil, err
	}

	history := domain.NewTenantHistory(existing, moveOut)
	if err := tx.History().Append(history); err != nil {
		return nil, err
	}
	if err := tx.Tenants().Delete(existing.BuildingNumber, existing.ApartmentNumber); err != nil {
		return nil, err
	}
	if err := tx.Tenants().Create(incoming); err != nil {
		return nil, err
	}
	return history, nil
}
