package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nivkatz/tenants_backend/internal/domain"
)

func testCatalog() *domain.Catalog {
	return domain.NewCatalog([]domain.Building{
		{Number: 11, TotalApartments: 40},
		{Number: 12, TotalApartments: 36},
		{Number: 13, TotalApartments: 36},
		{Number: 15, TotalApartments: 40},
	})
}

func testRules() ValidationRules {
	return ValidationRules{
		NameMinLength:      2,
		NameMaxLength:      50,
		PhoneMinLength:     9,
		PhoneMaxLength:     15,
		MaxWhatsAppMembers: 2,
		MaxPalGateMembers:  4,
	}
}

func newTestValidator() *Validator {
	return NewValidator(testRules(), testCatalog())
}

func TestValidateName(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple name", "John", false},
		{"valid hyphenated name", "Ben-David", false},
		{"valid name with apostrophe", "O'Brien", false},
		{"valid hebrew name", "יוסי", false},
		{"empty", "", true},
		{"too short", "A", true},
		{"too long", "Aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
		{"digits rejected", "John3", true},
		{"symbols rejected", "Jo@hn", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateName("first_name", tt.input)
			if tt.wantErr {
				require.NotEmpty(t, errs)
				assert.Equal(t, "first_name", errs[0].Field)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestValidatePhone(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"israeli mobile with hyphen", "054-1234567", false},
		{"plain digits", "0541234567", false},
		{"international prefix", "+972541234567", false},
		{"spaces and parentheses", "(054) 123 4567", false},
		{"empty", "", true},
		{"too short", "05412", true},
		{"too long", "1234567890123456", true},
		{"letters rejected", "054-ABCDEFG", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidatePhone("phone", tt.input)
			if tt.wantErr {
				require.NotEmpty(t, errs)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestValidateApartment(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		building  int
		apartment int
		wantField string
	}{
		{"valid apartment", 11, 1, ""},
		{"last apartment in range", 11, 40, ""},
		{"apartment out of range", 11, 41, "apartment_number"},
		{"apartment zero", 11, 0, "apartment_number"},
		{"unknown building", 99, 1, "building_number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateApartment(tt.building, tt.apartment)
			if tt.wantField == "" {
				assert.Empty(t, errs)
			} else {
				require.NotEmpty(t, errs)
				assert.Equal(t, tt.wantField, errs[0].Field)
			}
		})
	}
}

func TestValidateOwnerInfo(t *testing.T) {
	v := newTestValidator()

	t.Run("owner needs no owner info", func(t *testing.T) {
		assert.Empty(t, v.ValidateOwnerInfo(true, nil))
	})

	t.Run("renter without owner info rejected", func(t *testing.T) {
		errs := v.ValidateOwnerInfo(false, nil)
		require.Len(t, errs, 1)
		assert.Equal(t, "owner_info", errs[0].Field)
	})

	t.Run("renter with valid owner info accepted", func(t *testing.T) {
		owner := &domain.Person{FirstName: "Dana", LastName: "Levi", Phone: "052-7654321"}
		assert.Empty(t, v.ValidateOwnerInfo(false, owner))
	})

	t.Run("renter with invalid owner phone rejected", func(t *testing.T) {
		owner := &domain.Person{FirstName: "Dana", LastName: "Levi", Phone: "123"}
		errs := v.ValidateOwnerInfo(false, owner)
		require.NotEmpty(t, errs)
		assert.Equal(t, "owner_info.phone", errs[0].Field)
	})
}

func TestValidateFamilyMembers(t *testing.T) {
	v := newTestValidator()

	member := func(whatsapp, palgate bool) domain.FamilyMember {
		return domain.FamilyMember{
			FirstName:       "Noa",
			LastName:        "Cohen",
			Phone:           "053-9876543",
			WhatsAppEnabled: whatsapp,
			PalGateEnabled:  palgate,
		}
	}

	t.Run("within quotas", func(t *testing.T) {
		members := []domain.FamilyMember{member(true, true), member(true, true)}
		assert.Empty(t, v.ValidateFamilyMembers(members))
	})

	t.Run("third whatsapp member rejected", func(t *testing.T) {
		members := []domain.FamilyMember{member(true, false), member(true, false), member(true, false)}
		errs := v.ValidateFamilyMembers(members)
		require.Len(t, errs, 1)
		assert.Equal(t, "family_members", errs[0].Field)
		assert.Contains(t, errs[0].Message, "WhatsApp")
	})

	t.Run("fifth palgate member rejected", func(t *testing.T) {
		members := make([]domain.FamilyMember, 5)
		for i := range members {
			members[i] = member(false, true)
		}
		errs := v.ValidateFamilyMembers(members)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "PalGate")
	})

	t.Run("member field errors accumulate with quota errors", func(t *testing.T) {
		bad := member(true, false)
		bad.Phone = "x"
		members := []domain.FamilyMember{bad, member(true, false), member(true, false)}
		errs := v.ValidateFamilyMembers(members)
		assert.GreaterOrEqual(t, len(errs), 2)
	})
}

func TestValidateNewTenant(t *testing.T) {
	v := newTestValidator()

	t.Run("valid registration has no errors", func(t *testing.T) {
		record := &domain.TenantRecord{
			BuildingNumber:  11,
			ApartmentNumber: 5,
			Occupant:        domain.Person{FirstName: "John", LastName: "Smith", Phone: "054-1234567"},
			IsOwner:         true,
			MoveInDate:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		}
		assert.Empty(t, v.ValidateNewTenant(record))
	})

	t.Run("errors from every section accumulate", func(t *testing.T) {
		record := &domain.TenantRecord{
			BuildingNumber:  99,
			ApartmentNumber: 0,
			Occupant:        domain.Person{FirstName: "", LastName: "Smith", Phone: "bad"},
			IsOwner:         false,
			MoveInDate:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		}
		errs := v.ValidateNewTenant(record)
		fields := make(map[string]bool)
		for _, e := range errs {
			fields[e.Field] = true
		}
		assert.True(t, fields["building_number"])
		assert.True(t, fields["occupant.first_name"])
		assert.True(t, fields["occupant.phone"])
		assert.True(t, fields["owner_info"])
	})
}
