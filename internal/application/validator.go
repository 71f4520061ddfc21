package application

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nivkatz/tenants_backend/internal/domain"
)

// Letters (Latin and Hebrew), spaces, hyphens and apostrophes
var nameRegex = regexp.MustCompile(`^[a-zA-Zא-ת\s\-']+$`)

// Digits with an optional leading +, after separators are stripped
var phoneRegex = regexp.MustCompile(`^\+?\d+$`)

// ValidationRules are the configurable bounds the validator enforces
type ValidationRules struct {
	NameMinLength      int
	NameMaxLength      int
	PhoneMinLength     int
	PhoneMaxLength     int
	MaxWhatsAppMembers int
	MaxPalGateMembers  int
}

// Validator performs stateless pre-condition checks on tenant data.
// Every method accumulates field errors and never fails any other way:
// no panics, no I/O, an empty slice means the input is valid.
type Validator struct {
	rules   ValidationRules
	catalog *domain.Catalog
}

// NewValidator creates a validator bound to the building catalog
func NewValidator(rules ValidationRules, catalog *domain.Catalog) *Validator {
	return &Validator{rules: rules, catalog: catalog}
}

// ValidateName checks a single name field
func (v *Validator) ValidateName(field, name string) []domain.FieldError {
	name = strings.TrimSpace(name)
	if name == "" {
		return []domain.FieldError{{Field: field, Message: "is required"}}
	}
	if len([]rune(name)) < v.rules.NameMinLength {
		return []domain.FieldError{{Field: field, Message: fmt.Sprintf("must be at least %d characters", v.rules.NameMinLength)}}
	}
	if len([]rune(name)) > v.rules.NameMaxLength {
		return []domain.FieldError{{Field: field, Message: fmt.Sprintf("cannot exceed %d characters", v.rules.NameMaxLength)}}
	}
	if !nameRegex.MatchString(name) {
		return []domain.FieldError{{Field: field, Message: "contains invalid characters"}}
	}
	return nil
}

// ValidatePhone checks a phone field. Spaces, hyphens and parentheses are
// stripped before matching.
func (v *Validator) ValidatePhone(field, phone string) []domain.FieldError {
	if phone == "" {
		return []domain.FieldError{{Field: field, Message: "is required"}}
	}

	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	if !phoneRegex.MatchString(cleaned) {
		return []domain.FieldError{{Field: field, Message: "must contain only digits"}}
	}

	digits := strings.TrimPrefix(cleaned, "+")
	if len(digits) < v.rules.PhoneMinLength || len(digits) > v.rules.PhoneMaxLength {
		return []domain.FieldError{{
			Field:   field,
			Message: fmt.Sprintf("must have between %d and %d digits", v.rules.PhoneMinLength, v.rules.PhoneMaxLength),
		}}
	}
	return nil
}

// ValidateApartment checks that the building exists and the apartment is in range
func (v *Validator) ValidateApartment(building, apartment int) []domain.FieldError {
	var errs []domain.FieldError
	b, ok := v.catalog.Get(building)
	if !ok {
		return append(errs, domain.FieldError{
			Field:   "building_number",
			Message: fmt.Sprintf("unknown building %d", building),
		})
	}
	if apartment < 1 || apartment > b.TotalApartments {
		errs = append(errs, domain.FieldError{
			Field:   "apartment_number",
			Message: fmt.Sprintf("must be between 1 and %d for building %d", b.TotalApartments, building),
		})
	}
	return errs
}

// ValidatePerson checks a person's name and phone fields, prefixing the field
// names with the given prefix ("occupant", "owner_info", ...).
func (v *Validator) ValidatePerson(prefix string, p domain.Person) []domain.FieldError {
	var errs []domain.FieldError
	errs = append(errs, v.ValidateName(prefix+".first_name", p.FirstName)...)
	errs = append(errs, v.ValidateName(prefix+".last_name", p.LastName)...)
	errs = append(errs, v.ValidatePhone(prefix+".phone", p.Phone)...)
	return errs
}

// ValidateFamilyMembers checks each member individually and then the aggregate
// WhatsApp and PalGate quotas. The primary occupant is implicitly enabled on
// both lists and does not count against the quotas.
func (v *Validator) ValidateFamilyMembers(members []domain.FamilyMember) []domain.FieldError {
	var errs []domain.FieldError
	whatsapp, palgate := 0, 0
	for i, m := range members {
		prefix := fmt.Sprintf("family_members[%d]", i)
		errs = append(errs, v.ValidateName(prefix+".first_name", m.FirstName)...)
		errs = append(errs, v.ValidateName(prefix+".last_name", m.LastName)...)
		errs = append(errs, v.ValidatePhone(prefix+".phone", m.Phone)...)
		if m.WhatsAppEnabled {
			whatsapp++
		}
		if m.PalGateEnabled {
			palgate++
		}
	}
	if whatsapp > v.rules.MaxWhatsAppMembers {
		errs = append(errs, domain.FieldError{
			Field:   "family_members",
			Message: fmt.Sprintf("at most %d members may have WhatsApp access", v.rules.MaxWhatsAppMembers),
		})
	}
	if palgate > v.rules.MaxPalGateMembers {
		errs = append(errs, domain.FieldError{
			Field:   "family_members",
			Message: fmt.Sprintf("at most %d members may have PalGate access", v.rules.MaxPalGateMembers),
		})
	}
	return errs
}

// ValidateOwnerInfo enforces that renters carry a valid owner of record
func (v *Validator) ValidateOwnerInfo(isOwner bool, owner *domain.Person) []domain.FieldError {
	if isOwner {
		return nil
	}
	if owner == nil {
		return []domain.FieldError{{Field: "owner_info", Message: "is required when the occupant is a renter"}}
	}
	return v.ValidatePerson("owner_info", *owner)
}

// ValidateDates checks move-out ordering when a move-out date is present
func (v *Validator) ValidateDates(moveIn time.Time, moveOut *time.Time) []domain.FieldError {
	if moveOut != nil && moveOut.Before(moveIn) {
		return []domain.FieldError{{Field: "move_out_date", Message: "cannot be before move-in date"}}
	}
	return nil
}

// ValidateNewTenant runs the full rule set over a registration request
func (v *Validator) ValidateNewTenant(t *domain.TenantRecord) []domain.FieldError {
	var errs []domain.FieldError
	errs = append(errs, v.ValidateApartment(t.BuildingNumber, t.ApartmentNumber)...)
	errs = append(errs, v.ValidatePerson("occupant", t.Occupant)...)
	errs = append(errs, v.ValidateOwnerInfo(t.IsOwner, t.OwnerInfo)...)
	errs = append(errs, v.ValidateFamilyMembers(t.FamilyMembers)...)
	errs = append(errs, v.ValidateDates(t.MoveInDate, t.MoveOutDate)...)
	return errs
}
