package domain

import "sort"

// Building represents a building in the complex with its apartment capacity
type Building struct {
	Number          int `json:"number"`
	TotalApartments int `json:"totalApartments"`
}

// Catalog holds the fixed set of buildings known at startup. It is built once
// from configuration and never mutated afterwards.
type Catalog struct {
	byNumber map[int]Building
	ordered  []Building
}

// NewCatalog builds a catalog from the configured building list
func NewCatalog(buildings []Building) *Catalog {
	byNumber := make(map[int]Building, len(buildings))
	ordered := make([]Building, 0, len(buildings))
	for _, b := range buildings {
		if _, exists := byNumber[b.Number]; exists {
			continue
		}
		byNumber[b.Number] = b
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Number < ordered[j].Number
	})
	return &Catalog{byNumber: byNumber, ordered: ordered}
}

// Get returns the building with the given number
func (c *Catalog) Get(number int) (Building, bool) {
	b, ok := c.byNumber[number]
	return b, ok
}

// Contains reports whether the building number is known
func (c *Catalog) Contains(number int) bool {
	_, ok := c.byNumber[number]
	return ok
}

// ApartmentCount returns the apartment capacity of a building, 0 if unknown
func (c *Catalog) ApartmentCount(number int) int {
	return c.byNumber[number].TotalApartments
}

// All returns the buildings sorted by number
func (c *Catalog) All() []Building {
	out := make([]Building, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// OccupancySummary describes how full a single building is
type OccupancySummary struct {
	Building        int     `json:"building"`
	TotalApartments int     `json:"totalApartments"`
	Occupied        int     `json:"occupied"`
	Vacant          int     `json:"vacant"`
	OccupancyRate   float64 `json:"occupancyRate"`
}
