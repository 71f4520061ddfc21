package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nivkatz/tenants_backend/internal/domain"
)

type historyRepository struct {
	q querier
}

const historyColumns = `
	building_number,
	apartment_number,
	first_name,
	last_name,
	phone,
	was_owner,
	owner_first_name,
	owner_last_name,
	owner_phone,
	move_in_date,
	move_out_date,
	storage_number,
	parking_slot_1,
	parking_slot_2,
	family_members
`

// Append adds a history record. The ledger is insert-only: no update or
// delete statement exists in this repository.
func (r *historyRepository) Append(record *domain.TenantHistory) error {
	query := `
		INSERT INTO tenant_history (` + historyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	members, err := encodeMembers(record.FamilyMembers)
	if err != nil {
		return err
	}

	_, err = r.q.Exec(
		query,
		record.BuildingNumber,
		record.ApartmentNumber,
		record.Occupant.FirstName,
		record.Occupant.LastName,
		record.Occupant.Phone,
		record.WasOwner,
		ownerField(record.OwnerInfo, func(p domain.Person) string { return p.FirstName }),
		ownerField(record.OwnerInfo, func(p domain.Person) string { return p.LastName }),
		ownerField(record.OwnerInfo, func(p domain.Person) string { return p.Phone }),
		record.MoveInDate,
		record.MoveOutDate,
		nullInt(record.StorageNumber),
		nullInt(record.ParkingSlot1),
		nullInt(record.ParkingSlot2),
		members,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// ListByApartment returns the apartment's history, most recent move-out first
func (r *historyRepository) ListByApartment(building, apartment int) ([]domain.TenantHistory, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM tenant_history
		WHERE building_number = $1 AND apartment_number = $2
		ORDER BY move_out_date DESC
	`
	return r.list(query, building, apartment)
}

// ListByBuilding returns the building's history, most recent move-out first
func (r *historyRepository) ListByBuilding(building int) ([]domain.TenantHistory, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM tenant_history
		WHERE building_number = $1
		ORDER BY move_out_date DESC
	`
	return r.list(query, building)
}

func (r *historyRepository) list(query string, args ...any) ([]domain.TenantHistory, error) {
	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var records []domain.TenantHistory
	for rows.Next() {
		record, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}

func scanHistory(row rowScanner) (*domain.TenantHistory, error) {
	record := &domain.TenantHistory{}
	var ownerFirst, ownerLast, ownerPhone sql.NullString
	var storage, parking1, parking2 sql.NullInt64
	var members []byte

	err := row.Scan(
		&record.BuildingNumber,
		&record.ApartmentNumber,
		&record.Occupant.FirstName,
		&record.Occupant.LastName,
		&record.Occupant.Phone,
		&record.WasOwner,
		&ownerFirst,
		&ownerLast,
		&ownerPhone,
		&record.MoveInDate,
		&record.MoveOutDate,
		&storage,
		&parking1,
		&parking2,
		&members,
	)
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}

	if ownerFirst.Valid {
		record.OwnerInfo = &domain.Person{
			FirstName: ownerFirst.String,
			LastName:  ownerLast.String,
			Phone:     ownerPhone.String,
		}
	}

	record.StorageNumber = intPtr(storage)
	record.ParkingSlot1 = intPtr(parking1)
	record.ParkingSlot2 = intPtr(parking2)

	if err := json.Unmarshal(members, &record.FamilyMembers); err != nil {
		return nil, fmt.Errorf("history %d/%d: malformed family members: %w",
			record.BuildingNumber, record.ApartmentNumber, domain.ErrCorrupted)
	}
	return record, nil
}
