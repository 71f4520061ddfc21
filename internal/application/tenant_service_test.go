package application

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nivkatz/tenants_backend/internal/domain"
	"github.com/nivkatz/tenants_backend/internal/infrastructure/repository"
)

type TenantServiceSuite struct {
	suite.Suite
	store   *repository.MemoryStore
	service *TenantService
}

func TestTenantServiceSuite(t *testing.T) {
	suite.Run(t, new(TenantServiceSuite))
}

func (s *TenantServiceSuite) SetupTest() {
	s.store = repository.NewMemoryStore(time.Second)
	s.service = NewTenantService(s.store, newTestValidator())
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *TenantServiceSuite) createInput(building, apartment int) CreateTenantInput {
	return CreateTenantInput{
		BuildingNumber:  building,
		ApartmentNumber: apartment,
		Occupant:        domain.Person{FirstName: "John", LastName: "Smith", Phone: "054-1234567"},
		IsOwner:         true,
		MoveInDate:      date(2024, 1, 15),
	}
}

func (s *TenantServiceSuite) TestCreateIntoVacantApartment() {
	result, err := s.service.CreateTenant(s.createInput(11, 19))
	s.Require().NoError(err)
	s.Require().NotNil(result.Tenant)
	s.False(result.NeedsConfirmation())

	tenant, err := s.service.GetTenant(11, 19)
	s.Require().NoError(err)
	s.Require().NotNil(tenant)
	s.Equal("John", tenant.Occupant.FirstName)
	s.Equal(date(2024, 1, 15), tenant.MoveInDate)
}

func (s *TenantServiceSuite) TestCreateApartmentOutOfRange() {
	// Building 11 has 40 apartments
	_, err := s.service.CreateTenant(s.createInput(11, 41))
	fieldErrors, ok := domain.AsValidationError(err)
	s.Require().True(ok)
	s.Equal("apartment_number", fieldErrors[0].Field)

	tenant, err := s.service.GetTenant(11, 41)
	s.Require().NoError(err)
	s.Nil(tenant)
}

func (s *TenantServiceSuite) TestCreateUnknownBuilding() {
	_, err := s.service.CreateTenant(s.createInput(99, 1))
	fieldErrors, ok := domain.AsValidationError(err)
	s.Require().True(ok)
	s.Equal("building_number", fieldErrors[0].Field)
}

func (s *TenantServiceSuite) TestProbeIsIdempotentAndSideEffectFree() {
	_, err := s.service.CreateTenant(s.createInput(11, 7))
	s.Require().NoError(err)

	incoming := s.createInput(11, 7)
	incoming.Occupant = domain.Person{FirstName: "Dana", LastName: "Levi", Phone: "052-7654321"}
	incoming.MoveInDate = date(2024, 6, 1)

	// Any number of probes reports the conflict and writes nothing
	for i := 0; i < 3; i++ {
		result, err := s.service.CreateTenant(incoming)
		s.Require().NoError(err)
		s.Require().True(result.NeedsConfirmation())
		s.Equal("John", result.Existing.Occupant.FirstName)
	}

	tenant, err := s.service.GetTenant(11, 7)
	s.Require().NoError(err)
	s.Equal("John", tenant.Occupant.FirstName)

	history, err := s.service.GetHistory(11, 7)
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *TenantServiceSuite) TestConfirmedReplacement() {
	_, err := s.service.CreateTenant(s.createInput(11, 7))
	s.Require().NoError(err)

	incoming := s.createInput(11, 7)
	incoming.Occupant = domain.Person{FirstName: "Dana", LastName: "Levi", Phone: "052-7654321"}
	incoming.MoveInDate = date(2024, 6, 1)
	incoming.ReplaceExisting = true

	result, err := s.service.CreateTenant(incoming)
	s.Require().NoError(err)
	s.Require().NotNil(result.Tenant)
	s.Require().NotNil(result.Replaced)

	// The outgoing tenant moved out one day before the incoming move-in
	history, err := s.service.GetHistory(11, 7)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal("John", history[0].Occupant.FirstName)
	s.Equal(date(2024, 5, 31), history[0].MoveOutDate)

	tenant, err := s.service.GetTenant(11, 7)
	s.Require().NoError(err)
	s.Equal("Dana", tenant.Occupant.FirstName)
}

func (s *TenantServiceSuite) TestReplacementMoveInMustFollowExistingMoveIn() {
	_, err := s.service.CreateTenant(s.createInput(11, 7))
	s.Require().NoError(err)

	incoming := s.createInput(11, 7)
	incoming.MoveInDate = date(2024, 1, 15) // same day as the existing move-in
	incoming.ReplaceExisting = true

	_, err = s.service.CreateTenant(incoming)
	fieldErrors, ok := domain.AsValidationError(err)
	s.Require().True(ok)
	s.Equal("move_in_date", fieldErrors[0].Field)

	// Nothing changed
	tenant, err := s.service.GetTenant(11, 7)
	s.Require().NoError(err)
	s.Equal("John", tenant.Occupant.FirstName)
	history, err := s.service.GetHistory(11, 7)
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *TenantServiceSuite) TestConfirmedCallAgainstVacatedApartment() {
	// The occupant leaves between the probe and the confirmation; the
	// confirmed call degrades to a plain create.
	_, err := s.service.CreateTenant(s.createInput(11, 7))
	s.Require().NoError(err)
	_, err = s.service.EndTenancy(11, 7, nil)
	s.Require().NoError(err)

	incoming := s.createInput(11, 7)
	incoming.Occupant = domain.Person{FirstName: "Dana", LastName: "Levi", Phone: "052-7654321"}
	incoming.MoveInDate = date(2024, 6, 1)
	incoming.ReplaceExisting = true

	result, err := s.service.CreateTenant(incoming)
	s.Require().NoError(err)
	s.Nil(result.Replaced)
	s.Require().NotNil(result.Tenant)
}

func (s *TenantServiceSuite) TestThirdWhatsAppMemberRejectedWithoutWrite() {
	input := s.createInput(12, 3)
	member := domain.FamilyMember{
		FirstName: "Noa", LastName: "Cohen", Phone: "053-9876543", WhatsAppEnabled: true,
	}
	input.FamilyMembers = []domain.FamilyMember{member, member, member}

	_, err := s.service.CreateTenant(input)
	_, ok := domain.AsValidationError(err)
	s.Require().True(ok)

	tenant, err := s.service.GetTenant(12, 3)
	s.Require().NoError(err)
	s.Nil(tenant)
}

func (s *TenantServiceSuite) TestUpdateTenant() {
	_, err := s.service.CreateTenant(s.createInput(11, 7))
	s.Require().NoError(err)

	phone := "050-1112223"
	storage := 14
	updated, err := s.service.UpdateTenant(11, 7, UpdateTenantInput{
		Phone:         &phone,
		StorageNumber: &storage,
	})
	s.Require().NoError(err)
	s.Equal(phone, updated.Occupant.Phone)
	s.Require().NotNil(updated.StorageNumber)
	s.Equal(14, *updated.StorageNumber)

	// Move-in date and identity fields are untouched
	s.Equal(date(2024, 1, 15), updated.MoveInDate)
	s.Equal("John", updated.Occupant.FirstName)
}

func (s *TenantServiceSuite) TestUpdateVacantApartmentIsNotFound() {
	phone := "050-1112223"
	_, err := s.service.UpdateTenant(11, 8, UpdateTenantInput{Phone: &phone})
	s.Require().ErrorIs(err, domain.ErrNotFound)
}

func (s *TenantServiceSuite) TestUpdateUnknownBuildingIsValidationFailure() {
	phone := "050-1112223"
	_, err := s.service.UpdateTenant(99, 1, UpdateTenantInput{Phone: &phone})
	fieldErrors, ok := domain.AsValidationError(err)
	s.Require().True(ok, "unknown building must fail validation, not lookup")
	s.Equal("building_number", fieldErrors[0].Field)
}

func (s *TenantServiceSuite) TestUpdateToRenterRequiresOwnerInfo() {
	_, err := s.service.CreateTenant(s.createInput(11, 7))
	s.Require().NoError(err)

	isOwner := false
	_, err = s.service.UpdateTenant(11, 7, UpdateTenantInput{IsOwner: &isOwner})
	fieldErrors, ok := domain.AsValidationError(err)
	s.Require().True(ok)
	s.Equal("owner_info", fieldErrors[0].Field)

	owner := domain.Person{FirstName: "Dana", LastName: "Levi", Phone: "052-7654321"}
	updated, err := s.service.UpdateTenant(11, 7, UpdateTenantInput{IsOwner: &isOwner, OwnerInfo: &owner})
	s.Require().NoError(err)
	s.False(updated.IsOwner)
	s.Require().NotNil(updated.OwnerInfo)
	s.Equal("Dana", updated.OwnerInfo.FirstName)
}

func (s *TenantServiceSuite) TestOwnerOccupiedRecordCarriesNoOwnerInfo() {
	input := s.createInput(11, 7)
	input.IsOwner = true
	input.OwnerInfo = &domain.Person{FirstName: "Dana", LastName: "Levi", Phone: "052-7654321"}

	result, err := s.service.CreateTenant(input)
	s.Require().NoError(err)
	s.Nil(result.Tenant.OwnerInfo)

	tenant, err := s.service.GetTenant(11, 7)
	s.Require().NoError(err)
	s.True(tenant.IsOwner)
	s.Nil(tenant.OwnerInfo)
}

func (s *TenantServiceSuite) TestUpdateToOwnerDropsOwnerInfo() {
	input := s.createInput(11, 7)
	input.IsOwner = false
	input.OwnerInfo = &domain.Person{FirstName: "Dana", LastName: "Levi", Phone: "052-7654321"}
	_, err := s.service.CreateTenant(input)
	s.Require().NoError(err)

	// Becoming the owner clears the stored owner of record, even when the
	// update submits one alongside.
	isOwner := true
	owner := domain.Person{FirstName: "Gal", LastName: "Mor", Phone: "050-9998887"}
	updated, err := s.service.UpdateTenant(11, 7, UpdateTenantInput{IsOwner: &isOwner, OwnerInfo: &owner})
	s.Require().NoError(err)
	s.True(updated.IsOwner)
	s.Nil(updated.OwnerInfo)

	tenant, err := s.service.GetTenant(11, 7)
	s.Require().NoError(err)
	s.Nil(tenant.OwnerInfo)
}

func (s *TenantServiceSuite) TestEndTenancyRoundTrip() {
	input := s.createInput(13, 21)
	input.IsOwner = false
	input.OwnerInfo = &domain.Person{FirstName: "Dana", LastName: "Levi", Phone: "052-7654321"}
	storage := 3
	input.StorageNumber = &storage
	plate := "12-345-67"
	input.FamilyMembers = []domain.FamilyMember{{
		FirstName: "Noa", LastName: "Cohen", Phone: "053-9876543",
		PalGateEnabled: true, VehiclePlate: &plate,
	}}

	_, err := s.service.CreateTenant(input)
	s.Require().NoError(err)

	moveOut := date(2024, 8, 1)
	ended, err := s.service.EndTenancy(13, 21, &moveOut)
	s.Require().NoError(err)

	history, err := s.service.GetHistory(13, 21)
	s.Require().NoError(err)
	s.Require().Len(history, 1)

	// The archived record matches the ended tenancy exactly
	got := history[0]
	s.Equal(*ended, got)
	s.Equal("John", got.Occupant.FirstName)
	s.False(got.WasOwner)
	s.Require().NotNil(got.OwnerInfo)
	s.Equal("Dana", got.OwnerInfo.FirstName)
	s.Equal(date(2024, 1, 15), got.MoveInDate)
	s.Equal(moveOut, got.MoveOutDate)
	s.Require().NotNil(got.StorageNumber)
	s.Equal(3, *got.StorageNumber)
	s.Require().Len(got.FamilyMembers, 1)
	s.Require().NotNil(got.FamilyMembers[0].VehiclePlate)
	s.Equal("12-345-67", *got.FamilyMembers[0].VehiclePlate)

	tenant, err := s.service.GetTenant(13, 21)
	s.Require().NoError(err)
	s.Nil(tenant)
}

func (s *TenantServiceSuite) TestEndTenancyBeforeMoveInRejected() {
	_, err := s.service.CreateTenant(s.createInput(11, 7))
	s.Require().NoError(err)

	moveOut := date(2024, 1, 1)
	_, err = s.service.EndTenancy(11, 7, &moveOut)
	s.Require().ErrorIs(err, domain.ErrInvalidDate)

	tenant, err := s.service.GetTenant(11, 7)
	s.Require().NoError(err)
	s.NotNil(tenant)
}

func (s *TenantServiceSuite) TestEndTenancyVacantApartment() {
	_, err := s.service.EndTenancy(11, 7, nil)
	s.Require().ErrorIs(err, domain.ErrNotFound)
}

func (s *TenantServiceSuite) TestListTenantsOrdering() {
	for _, a := range []struct{ building, apartment int }{
		{12, 9}, {11, 30}, {11, 2}, {15, 1},
	} {
		input := s.createInput(a.building, a.apartment)
		_, err := s.service.CreateTenant(input)
		s.Require().NoError(err)
	}

	all, err := s.service.ListTenants(0)
	s.Require().NoError(err)
	s.Require().Len(all, 4)
	s.Equal([]int{11, 11, 12, 15}, []int{
		all[0].BuildingNumber, all[1].BuildingNumber, all[2].BuildingNumber, all[3].BuildingNumber,
	})
	s.Equal(2, all[0].ApartmentNumber)
	s.Equal(30, all[1].ApartmentNumber)

	onlyEleven, err := s.service.ListTenants(11)
	s.Require().NoError(err)
	s.Len(onlyEleven, 2)
}

func (s *TenantServiceSuite) TestHistoryOrderedByMoveOutDescending() {
	moveIns := []time.Time{date(2020, 1, 1), date(2021, 6, 1), date(2023, 3, 1)}
	for i, moveIn := range moveIns {
		input := s.createInput(11, 7)
		input.MoveInDate = moveIn
		if i > 0 {
			input.ReplaceExisting = true
		}
		_, err := s.service.CreateTenant(input)
		s.Require().NoError(err)
	}
	moveOut := date(2024, 2, 1)
	_, err := s.service.EndTenancy(11, 7, &moveOut)
	s.Require().NoError(err)

	history, err := s.service.GetHistory(11, 7)
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.True(history[0].MoveOutDate.After(history[1].MoveOutDate))
	s.True(history[1].MoveOutDate.After(history[2].MoveOutDate))
}

func (s *TenantServiceSuite) TestConcurrentReplacementsKeepInvariant() {
	_, err := s.service.CreateTenant(s.createInput(11, 7))
	s.Require().NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			incoming := s.createInput(11, 7)
			incoming.Occupant.FirstName = "Racer"
			incoming.MoveInDate = date(2024, 6, 1).AddDate(0, 0, i)
			incoming.ReplaceExisting = true
			// Losers may fail validation against the winner's move-in
			// date; the invariant is what matters here.
			s.service.CreateTenant(incoming) //nolint:errcheck
		}(i)
	}
	wg.Wait()

	// Exactly one current record for the apartment
	tenants, err := s.service.ListTenants(11)
	s.Require().NoError(err)
	s.Require().Len(tenants, 1)
	s.Equal(7, tenants[0].ApartmentNumber)

	// History and current line up: n replacements produce n records
	history, err := s.service.GetHistory(11, 7)
	s.Require().NoError(err)
	s.NotEmpty(history)
}

func (s *TenantServiceSuite) TestBusyStoreSurfacesUnavailable() {
	store := repository.NewMemoryStore(20 * time.Millisecond)
	service := NewTenantService(store, newTestValidator())

	// Hold the writer slot so the mutation times out waiting for it
	tx, err := store.BeginExclusive()
	s.Require().NoError(err)
	defer tx.Rollback()

	_, err = service.CreateTenant(s.createInput(11, 9))
	s.Require().ErrorIs(err, domain.ErrUnavailable)
}
