package application

import (
	"fmt"
	"time"

	"github.com/nivkatz/tenants_backend/internal/domain"
)

// CreateTenantInput is the registration request for an apartment
type CreateTenantInput struct {
	BuildingNumber  int
	ApartmentNumber int
	Occupant        domain.Person
	IsOwner         bool
	OwnerInfo       *domain.Person
	MoveInDate      time.Time
	StorageNumber   *int
	ParkingSlot1    *int
	ParkingSlot2    *int
	FamilyMembers   []domain.FamilyMember
	// ReplaceExisting confirms replacing the current occupant. When false and
	// the apartment is occupied, the call is a side-effect-free probe.
	ReplaceExisting bool
}

// UpdateTenantInput carries a partial update. Nil fields are left unchanged.
// Building, apartment and move-in date can never change through an update.
type UpdateTenantInput struct {
	FirstName     *string
	LastName      *string
	Phone         *string
	IsOwner       *bool
	OwnerInfo     *domain.Person
	StorageNumber *int
	ParkingSlot1  *int
	ParkingSlot2  *int
	FamilyMembers *[]domain.FamilyMember
}

// CreateResult is the outcome of CreateTenant. Exactly one of Tenant or
// Existing is set: Tenant when the record was created, Existing when the
// apartment is occupied and the caller must confirm the replacement.
type CreateResult struct {
	Tenant   *domain.TenantRecord
	Existing *domain.TenantRecord
	// Replaced holds the archived record when a replacement took place
	Replaced *domain.TenantHistory
}

// NeedsConfirmation reports whether the caller must re-submit with
// ReplaceExisting set to actually register the tenant
func (r *CreateResult) NeedsConfirmation() bool {
	return r.Existing != nil
}

// TenantService owns the current-occupancy records and enforces the
// one-current-tenant-per-apartment invariant. All mutations run inside the
// store's exclusive transaction so the check-then-act sequences are atomic.
// The service never logs, every failure is a typed error for the caller.
type TenantService struct {
	store     domain.Store
	validator *Validator
	replacer  replacementCoordinator
}

// NewTenantService creates the registry service
func NewTenantService(store domain.Store, validator *Validator) *TenantService {
	return &TenantService{
		store:     store,
		validator: validator,
	}
}

// CreateTenant registers a tenant into an apartment. When the apartment is
// occupied and the request does not confirm a replacement, it returns the
// existing record without writing anything; repeating the probe is safe.
func (s *TenantService) CreateTenant(input CreateTenantInput) (*CreateResult, error) {
	record := input.toRecord()

	if errs := s.validator.ValidateNewTenant(record); len(errs) > 0 {
		return nil, domain.ValidationError(errs)
	}

	tx, err := s.store.BeginExclusive()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	existing, err := tx.Tenants().GetCurrent(record.BuildingNumber, record.ApartmentNumber)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := tx.Tenants().Create(record); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return &CreateResult{Tenant: record.Clone()}, nil
	}

	if !input.ReplaceExisting {
		// Occupied and not confirmed: report back, the deferred rollback
		// guarantees nothing was written.
		return &CreateResult{Existing: existing.Clone()}, nil
	}

	archived, err := s.replacer.replace(tx, existing, record)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &CreateResult{Tenant: record.Clone(), Replaced: archived}, nil
}

// UpdateTenant applies a partial update to the current occupant of an
// apartment. Only the changed fields are re-validated, plus the family access
// quotas when the member list changes.
func (s *TenantService) UpdateTenant(building, apartment int, input UpdateTenantInput) (*domain.TenantRecord, error) {
	// An unknown building or out-of-range apartment is a validation failure,
	// not a missing record.
	if errs := s.validator.ValidateApartment(building, apartment); len(errs) > 0 {
		return nil, domain.ValidationError(errs)
	}

	if errs := s.validateUpdate(input); len(errs) > 0 {
		return nil, domain.ValidationError(errs)
	}

	tx, err := s.store.BeginExclusive()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := tx.Tenants().GetCurrent(building, apartment)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("apartment %d/%d: %w", building, apartment, domain.ErrNotFound)
	}

	updated := current.Clone()
	input.applyTo(updated)

	// Owner info consistency can only be judged on the merged record
	if errs := s.validator.ValidateOwnerInfo(updated.IsOwner, updated.OwnerInfo); len(errs) > 0 {
		return nil, domain.ValidationError(errs)
	}

	if err := tx.Tenants().Update(updated); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// EndTenancy closes the current occupancy of an apartment, archiving the
// record into history. The move-out date defaults to today.
func (s *TenantService) EndTenancy(building, apartment int, moveOut *time.Time) (*domain.TenantHistory, error) {
	moveOutDate := domain.DateOnly(time.Now())
	if moveOut != nil {
		moveOutDate = domain.DateOnly(*moveOut)
	}

	tx, err := s.store.BeginExclusive()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := tx.Tenants().GetCurrent(building, apartment)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("apartment %d/%d: %w", building, apartment, domain.ErrNotFound)
	}

	if moveOutDate.Before(current.MoveInDate) {
		return nil, fmt.Errorf("move-out %s before move-in %s: %w",
			moveOutDate.Format("2006-01-02"), current.MoveInDate.Format("2006-01-02"), domain.ErrInvalidDate)
	}

	history := domain.NewTenantHistory(current, moveOutDate)
	if err := tx.History().Append(history); err != nil {
		return nil, err
	}
	if err := tx.Tenants().Delete(building, apartment); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return history, nil
}

// GetTenant returns the current occupant of an apartment, nil when vacant
func (s *TenantService) GetTenant(building, apartment int) (*domain.TenantRecord, error) {
	return s.store.Tenants().GetCurrent(building, apartment)
}

// ListTenants returns the current occupants ordered by (building, apartment).
// A building of 0 lists all buildings.
func (s *TenantService) ListTenants(building int) ([]domain.TenantRecord, error) {
	return s.store.Tenants().ListCurrent(building)
}

// GetHistory returns an apartment's past occupancies, most recent first
func (s *TenantService) GetHistory(building, apartment int) ([]domain.TenantHistory, error) {
	return s.store.History().ListByApartment(building, apartment)
}

// validateUpdate checks only the fields the partial update touches
func (s *TenantService) validateUpdate(input UpdateTenantInput) []domain.FieldError {
	var errs []domain.FieldError
	if input.FirstName != nil {
		errs = append(errs, s.validator.ValidateName("occupant.first_name", *input.FirstName)...)
	}
	if input.LastName != nil {
		errs = append(errs, s.validator.ValidateName("occupant.last_name", *input.LastName)...)
	}
	if input.Phone != nil {
		errs = append(errs, s.validator.ValidatePhone("occupant.phone", *input.Phone)...)
	}
	if input.OwnerInfo != nil {
		errs = append(errs, s.validator.ValidatePerson("owner_info", *input.OwnerInfo)...)
	}
	if input.FamilyMembers != nil {
		errs = append(errs, s.validator.ValidateFamilyMembers(*input.FamilyMembers)...)
	}
	return errs
}

// toRecord builds the occupancy record a registration request describes.
// Owner-occupied records never carry an owner of record.
func (input CreateTenantInput) toRecord() *domain.TenantRecord {
	moveIn := input.MoveInDate
	if moveIn.IsZero() {
		moveIn = time.Now()
	}
	owner := input.OwnerInfo
	if input.IsOwner {
		owner = nil
	}
	return &domain.TenantRecord{
		BuildingNumber:  input.BuildingNumber,
		ApartmentNumber: input.ApartmentNumber,
		Occupant:        input.Occupant,
		IsOwner:         input.IsOwner,
		OwnerInfo:       owner,
		MoveInDate:      domain.DateOnly(moveIn),
		StorageNumber:   input.StorageNumber,
		ParkingSlot1:    input.ParkingSlot1,
		ParkingSlot2:    input.ParkingSlot2,
		FamilyMembers:   domain.CloneFamilyMembers(input.FamilyMembers),
	}
}

// applyTo merges the partial update into the record
func (input UpdateTenantInput) applyTo(t *domain.TenantRecord) {
	if input.FirstName != nil {
		t.Occupant.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		t.Occupant.LastName = *input.LastName
	}
	if input.Phone != nil {
		t.Occupant.Phone = *input.Phone
	}
	if input.IsOwner != nil {
		t.IsOwner = *input.IsOwner
	}
	if input.OwnerInfo != nil {
		owner := *input.OwnerInfo
		t.OwnerInfo = &owner
	}
	if input.StorageNumber != nil {
		n := *input.StorageNumber
		t.StorageNumber = &n
	}
	if input.ParkingSlot1 != nil {
		n := *input.ParkingSlot1
		t.ParkingSlot1 = &n
	}
	if input.ParkingSlot2 != nil {
		n := *input.ParkingSlot2
		t.ParkingSlot2 = &n
	}
	if input.FamilyMembers != nil {
		t.FamilyMembers = domain.CloneFamilyMembers(*input.FamilyMembers)
	}
	// Owner-occupied records never carry an owner of record, regardless of
	// what the update submitted.
	if t.IsOwner {
		t.OwnerInfo = nil
	}
}
