package application

import (
	"fmt"
	"math"
	"strings"

	"github.com/nivkatz/tenants_backend/internal/domain"
)

// Contact is an entry in the WhatsApp contact export
type Contact struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Building  int    `json:"building"`
	Apartment int    `json:"apartment"`
}

// GateAccess is an entry in the PalGate access export
type GateAccess struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Building     int    `json:"building"`
	Apartment    int    `json:"apartment"`
	VehiclePlate string `json:"vehiclePlate,omitempty"`
	ParkingSlots []int  `json:"parkingSlots,omitempty"`
}

// OccupancyService provides read-only reporting over the registry: occupancy
// statistics, tenant search and the committee's access-list exports.
type OccupancyService struct {
	store   domain.Store
	catalog *domain.Catalog
}

// NewOccupancyService creates the reporting service
func NewOccupancyService(store domain.Store, catalog *domain.Catalog) *OccupancyService {
	return &OccupancyService{store: store, catalog: catalog}
}

// BuildingOccupancy returns the occupancy statistics of one building
func (s *OccupancyService) BuildingOccupancy(building int) (*domain.OccupancySummary, error) {
	b, ok := s.catalog.Get(building)
	if !ok {
		return nil, fmt.Errorf("building %d: %w", building, domain.ErrNotFound)
	}

	tenants, err := s.store.Tenants().ListCurrent(building)
	if err != nil {
		return nil, err
	}

	occupied := len(tenants)
	rate := 0.0
	if b.TotalApartments > 0 {
		rate = math.Round(float64(occupied)/float64(b.TotalApartments)*1000) / 10
	}
	return &domain.OccupancySummary{
		Building:        b.Number,
		TotalApartments: b.TotalApartments,
		Occupied:        occupied,
		Vacant:          b.TotalApartments - occupied,
		OccupancyRate:   rate,
	}, nil
}

// AllBuildingsOccupancy returns the statistics of every building in the catalog
func (s *OccupancyService) AllBuildingsOccupancy() ([]domain.OccupancySummary, error) {
	buildings := s.catalog.All()
	summaries := make([]domain.OccupancySummary, 0, len(buildings))
	for _, b := range buildings {
		summary, err := s.BuildingOccupancy(b.Number)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// SearchTenants filters current tenants by name substring, phone substring
// and building. Empty criteria match everything.
func (s *OccupancyService) SearchTenants(name, phone string, building int) ([]domain.TenantRecord, error) {
	tenants, err := s.store.Tenants().ListCurrent(building)
	if err != nil {
		return nil, err
	}

	name = strings.ToLower(strings.TrimSpace(name))
	results := make([]domain.TenantRecord, 0, len(tenants))
	for _, t := range tenants {
		if name != "" && !strings.Contains(strings.ToLower(t.Occupant.FullName()), name) {
			continue
		}
		if phone != "" && !strings.Contains(t.Occupant.Phone, phone) {
			continue
		}
		results = append(results, t)
	}
	return results, nil
}

// WhatsAppContacts returns the phone list for the building WhatsApp groups.
// The primary occupant is always included, family members only when enabled.
func (s *OccupancyService) WhatsAppContacts(building int) ([]Contact, error) {
	tenants, err := s.store.Tenants().ListCurrent(building)
	if err != nil {
		return nil, err
	}

	var contacts []Contact
	for _, t := range tenants {
		contacts = append(contacts, Contact{
			Name:      t.Occupant.FullName(),
			Phone:     t.Occupant.Phone,
			Building:  t.BuildingNumber,
			Apartment: t.ApartmentNumber,
		})
		for _, m := range t.FamilyMembers {
			if !m.WhatsAppEnabled {
				continue
			}
			contacts = append(contacts, Contact{
				Name:      m.FullName(),
				Phone:     m.Phone,
				Building:  t.BuildingNumber,
				Apartment: t.ApartmentNumber,
			})
		}
	}
	return contacts, nil
}

// GateAccessList returns the PalGate authorization list: every primary
// occupant with their parking slots plus the enabled family members with
// their vehicle plates.
func (s *OccupancyService) GateAccessList(building int) ([]GateAccess, error) {
	tenants, err := s.store.Tenants().ListCurrent(building)
	if err != nil {
		return nil, err
	}

	var access []GateAccess
	for _, t := range tenants {
		entry := GateAccess{
			Name:      t.Occupant.FullName(),
			Phone:     t.Occupant.Phone,
			Building:  t.BuildingNumber,
			Apartment: t.ApartmentNumber,
		}
		if t.ParkingSlot1 != nil {
			entry.ParkingSlots = append(entry.ParkingSlots, *t.ParkingSlot1)
		}
		if t.ParkingSlot2 != nil {
			entry.ParkingSlots = append(entry.ParkingSlots, *t.ParkingSlot2)
		}
		access = append(access, entry)

		for _, m := range t.FamilyMembers {
			if !m.PalGateEnabled {
				continue
			}
			member := GateAccess{
				Name:      m.FullName(),
				Phone:     m.Phone,
				Building:  t.BuildingNumber,
				Apartment: t.ApartmentNumber,
			}
			if m.VehiclePlate != nil {
				member.VehiclePlate = *m.VehiclePlate
			}
			access = append(access, member)
		}
	}
	return access, nil
}
