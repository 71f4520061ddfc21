package domain

import (
	"fmt"
	"time"
)

// Person holds the identifying details of an occupant or an owner of record
type Person struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// FullName returns the person's full name
func (p Person) FullName() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

// FamilyMember is a person other than the primary occupant who may be granted
// WhatsApp-group or PalGate gate access for the apartment
type FamilyMember struct {
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Phone           string  `json:"phone"`
	WhatsAppEnabled bool    `json:"whatsappEnabled"`
	PalGateEnabled  bool    `json:"palgateEnabled"`
	VehiclePlate    *string `json:"vehiclePlate,omitempty"`
}

// FullName returns the family member's full name
func (m FamilyMember) FullName() string {
	return fmt.Sprintf("%s %s", m.FirstName, m.LastName)
}

// TenantRecord is the current occupancy record of an apartment. At most one
// record with a nil MoveOutDate exists per (building, apartment).
type TenantRecord struct {
	BuildingNumber  int            `json:"buildingNumber"`
	ApartmentNumber int            `json:"apartmentNumber"`
	Occupant        Person         `json:"occupant"`
	IsOwner         bool           `json:"isOwner"`
	OwnerInfo       *Person        `json:"ownerInfo,omitempty"` // Required when IsOwner is false
	MoveInDate      time.Time      `json:"moveInDate"`
	MoveOutDate     *time.Time     `json:"moveOutDate,omitempty"`
	StorageNumber   *int           `json:"storageNumber,omitempty"`
	ParkingSlot1    *int           `json:"parkingSlot1,omitempty"`
	ParkingSlot2    *int           `json:"parkingSlot2,omitempty"`
	FamilyMembers   []FamilyMember `json:"familyMembers"`
}

// IsActive reports whether the tenant currently occupies the apartment
func (t *TenantRecord) IsActive() bool {
	return t.MoveOutDate == nil
}

// Clone returns a deep copy of the record, safe to hand to callers
func (t *TenantRecord) Clone() *TenantRecord {
	out := *t
	if t.OwnerInfo != nil {
		owner := *t.OwnerInfo
		out.OwnerInfo = &owner
	}
	out.MoveOutDate = copyTime(t.MoveOutDate)
	out.StorageNumber = copyInt(t.StorageNumber)
	out.ParkingSlot1 = copyInt(t.ParkingSlot1)
	out.ParkingSlot2 = copyInt(t.ParkingSlot2)
	out.FamilyMembers = CloneFamilyMembers(t.FamilyMembers)
	return &out
}

// TenantHistory is an immutable snapshot of a past occupancy, created when a
// tenancy ends or the tenant is replaced. Never mutated or deleted.
type TenantHistory struct {
	BuildingNumber  int            `json:"buildingNumber"`
	ApartmentNumber int            `json:"apartmentNumber"`
	Occupant        Person         `json:"occupant"`
	WasOwner        bool           `json:"wasOwner"`
	OwnerInfo       *Person        `json:"ownerInfo,omitempty"`
	MoveInDate      time.Time      `json:"moveInDate"`
	MoveOutDate     time.Time      `json:"moveOutDate"`
	StorageNumber   *int           `json:"storageNumber,omitempty"`
	ParkingSlot1    *int           `json:"parkingSlot1,omitempty"`
	ParkingSlot2    *int           `json:"parkingSlot2,omitempty"`
	FamilyMembers   []FamilyMember `json:"familyMembers"`
}

// TenancyDurationDays returns the length of the tenancy in days
func (h *TenantHistory) TenancyDurationDays() int {
	return int(h.MoveOutDate.Sub(h.MoveInDate).Hours() / 24)
}

// NewTenantHistory snapshots a current record at the moment its occupancy ends
func NewTenantHistory(t *TenantRecord, moveOut time.Time) *TenantHistory {
	c := t.Clone()
	return &TenantHistory{
		BuildingNumber:  c.BuildingNumber,
		ApartmentNumber: c.ApartmentNumber,
		Occupant:        c.Occupant,
		WasOwner:        c.IsOwner,
		OwnerInfo:       c.OwnerInfo,
		MoveInDate:      c.MoveInDate,
		MoveOutDate:     moveOut,
		StorageNumber:   c.StorageNumber,
		ParkingSlot1:    c.ParkingSlot1,
		ParkingSlot2:    c.ParkingSlot2,
		FamilyMembers:   c.FamilyMembers,
	}
}

// CloneFamilyMembers deep-copies a family member list
func CloneFamilyMembers(members []FamilyMember) []FamilyMember {
	if members == nil {
		return nil
	}
	out := make([]FamilyMember, len(members))
	copy(out, members)
	for i := range out {
		if members[i].VehiclePlate != nil {
			plate := *members[i].VehiclePlate
			out[i].VehiclePlate = &plate
		}
	}
	return out
}

// DateOnly normalizes a timestamp to midnight UTC. All tenancy dates are
// calendar dates, comparisons must ignore the time of day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyInt(n *int) *int {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}
