package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *TenantRecord {
	plate := "12-345-67"
	storage := 3
	return &TenantRecord{
		BuildingNumber:  11,
		ApartmentNumber: 7,
		Occupant:        Person{FirstName: "John", LastName: "Smith", Phone: "0541234567"},
		IsOwner:         false,
		OwnerInfo:       &Person{FirstName: "Dana", LastName: "Levi", Phone: "0527654321"},
		MoveInDate:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		StorageNumber:   &storage,
		FamilyMembers: []FamilyMember{
			{FirstName: "Noa", LastName: "Cohen", Phone: "0539876543", PalGateEnabled: true, VehiclePlate: &plate},
		},
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := sampleRecord()
	clone := original.Clone()

	require.Equal(t, original, clone)

	clone.OwnerInfo.FirstName = "Changed"
	*clone.StorageNumber = 99
	*clone.FamilyMembers[0].VehiclePlate = "00-000-00"
	clone.FamilyMembers[0].FirstName = "Changed"

	assert.Equal(t, "Dana", original.OwnerInfo.FirstName)
	assert.Equal(t, 3, *original.StorageNumber)
	assert.Equal(t, "12-345-67", *original.FamilyMembers[0].VehiclePlate)
	assert.Equal(t, "Noa", original.FamilyMembers[0].FirstName)
}

func TestCloneNilFields(t *testing.T) {
	original := &TenantRecord{
		BuildingNumber:  11,
		ApartmentNumber: 7,
		Occupant:        Person{FirstName: "John", LastName: "Smith", Phone: "0541234567"},
		IsOwner:         true,
	}
	clone := original.Clone()

	assert.Nil(t, clone.OwnerInfo)
	assert.Nil(t, clone.StorageNumber)
	assert.Nil(t, clone.FamilyMembers)
}

func TestNewTenantHistorySnapshots(t *testing.T) {
	record := sampleRecord()
	moveOut := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	history := NewTenantHistory(record, moveOut)

	assert.Equal(t, record.BuildingNumber, history.BuildingNumber)
	assert.Equal(t, record.Occupant, history.Occupant)
	assert.False(t, history.WasOwner)
	assert.Equal(t, record.MoveInDate, history.MoveInDate)
	assert.Equal(t, moveOut, history.MoveOutDate)

	// The snapshot does not share memory with the live record
	record.FamilyMembers[0].FirstName = "Changed"
	assert.Equal(t, "Noa", history.FamilyMembers[0].FirstName)
}

func TestTenancyDurationDays(t *testing.T) {
	history := &TenantHistory{
		MoveInDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MoveOutDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 30, history.TenancyDurationDays())
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("IST", 2*60*60)
	stamp := time.Date(2024, 6, 1, 18, 45, 12, 999, loc)

	got := DateOnly(stamp)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestIsActive(t *testing.T) {
	record := sampleRecord()
	assert.True(t, record.IsActive())

	moveOut := time.Now()
	record.MoveOutDate = &moveOut
	assert.False(t, record.IsActive())
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "John Smith", Person{FirstName: "John", LastName: "Smith"}.FullName())
	assert.Equal(t, "Noa Cohen", FamilyMember{FirstName: "Noa", LastName: "Cohen"}.FullName())
}
