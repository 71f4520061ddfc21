package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nivkatz/tenants_backend/internal/domain"
)

type tenantRepository struct {
	q querier
}

const tenantColumns = `
	building_number,
	apartment_number,
	first_name,
	last_name,
	phone,
	is_owner,
	owner_first_name,
	owner_last_name,
	owner_phone,
	move_in_date,
	storage_number,
	parking_slot_1,
	parking_slot_2,
	family_members
`

// GetCurrent returns the active tenant of an apartment, nil when vacant
func (r *tenantRepository) GetCurrent(building, apartment int) (*domain.TenantRecord, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenant
		WHERE building_number = $1 AND apartment_number = $2
	`

	record, err := scanTenant(r.q.QueryRow(query, building, apartment))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListCurrent returns all active tenants ordered by (building, apartment)
func (r *tenantRepository) ListCurrent(building int) ([]domain.TenantRecord, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenant
		WHERE $1 = 0 OR building_number = $1
		ORDER BY building_number, apartment_number
	`

	rows, err := r.q.Query(query, building)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []domain.TenantRecord
	for rows.Next() {
		record, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

// Create inserts a new current record. The (building, apartment) primary key
// backs up the one-current-tenant invariant at the storage layer.
func (r *tenantRepository) Create(record *domain.TenantRecord) error {
	query := `
		INSERT INTO tenant (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
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
		record.IsOwner,
		ownerField(record.OwnerInfo, func(p domain.Person) string { return p.FirstName }),
		ownerField(record.OwnerInfo, func(p domain.Person) string { return p.LastName }),
		ownerField(record.OwnerInfo, func(p domain.Person) string { return p.Phone }),
		record.MoveInDate,
		nullInt(record.StorageNumber),
		nullInt(record.ParkingSlot1),
		nullInt(record.ParkingSlot2),
		members,
	)
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

// Update overwrites the current record of the same apartment
func (r *tenantRepository) Update(record *domain.TenantRecord) error {
	query := `
		UPDATE tenant
		SET
			first_name = $3,
			last_name = $4,
			phone = $5,
			is_owner = $6,
			owner_first_name = $7,
			owner_last_name = $8,
			owner_phone = $9,
			storage_number = $10,
			parking_slot_1 = $11,
			parking_slot_2 = $12,
			family_members = $13
		WHERE building_number = $1 AND apartment_number = $2
	`

	members, err := encodeMembers(record.FamilyMembers)
	if err != nil {
		return err
	}

	result, err := r.q.Exec(
		query,
		record.BuildingNumber,
		record.ApartmentNumber,
		record.Occupant.FirstName,
		record.Occupant.LastName,
		record.Occupant.Phone,
		record.IsOwner,
		ownerField(record.OwnerInfo, func(p domain.Person) string { return p.FirstName }),
		ownerField(record.OwnerInfo, func(p domain.Person) string { return p.LastName }),
		ownerField(record.OwnerInfo, func(p domain.Person) string { return p.Phone }),
		nullInt(record.StorageNumber),
		nullInt(record.ParkingSlot1),
		nullInt(record.ParkingSlot2),
		members,
	)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("apartment %d/%d: %w", record.BuildingNumber, record.ApartmentNumber, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the current record of an apartment
func (r *tenantRepository) Delete(building, apartment int) error {
	result, err := r.q.Exec(
		`DELETE FROM tenant WHERE building_number = $1 AND apartment_number = $2`,
		building, apartment,
	)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("apartment %d/%d: %w", building, apartment, domain.ErrNotFound)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTenant reads one tenant row. Malformed stored data is surfaced as
// domain.ErrCorrupted so callers refuse to proceed instead of guessing.
func scanTenant(row rowScanner) (*domain.TenantRecord, error) {
	record := &domain.TenantRecord{}
	var ownerFirst, ownerLast, ownerPhone sql.NullString
	var storage, parking1, parking2 sql.NullInt64
	var members []byte

	err := row.Scan(
		&record.BuildingNumber,
		&record.ApartmentNumber,
		&record.Occupant.FirstName,
		&record.Occupant.LastName,
		&record.Occupant.Phone,
		&record.IsOwner,
		&ownerFirst,
		&ownerLast,
		&ownerPhone,
		&record.MoveInDate,
		&storage,
		&parking1,
		&parking2,
		&members,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan tenant: %w", err)
	}

	if ownerFirst.Valid {
		record.OwnerInfo = &domain.Person{
			FirstName: ownerFirst.String,
			LastName:  ownerLast.String,
			Phone:     ownerPhone.String,
		}
	}
	if !record.IsOwner && record.OwnerInfo == nil {
		return nil, fmt.Errorf("tenant %d/%d: renter without owner info: %w",
			record.BuildingNumber, record.ApartmentNumber, domain.ErrCorrupted)
	}

	record.StorageNumber = intPtr(storage)
	record.ParkingSlot1 = intPtr(parking1)
	record.ParkingSlot2 = intPtr(parking2)

	if err := json.Unmarshal(members, &record.FamilyMembers); err != nil {
		return nil, fmt.Errorf("tenant %d/%d: malformed family members: %w",
			record.BuildingNumber, record.ApartmentNumber, domain.ErrCorrupted)
	}
	return record, nil
}

// encodeMembers serializes the family member list for the JSONB column.
// A nil slice is stored as an empty array so the column is always an array.
func encodeMembers(members []domain.FamilyMember) ([]byte, error) {
	if members == nil {
		members = []domain.FamilyMember{}
	}
	out, err := json.Marshal(members)
	if err != nil {
		return nil, fmt.Errorf("encode family members: %w", err)
	}
	return out, nil
}

func ownerField(owner *domain.Person, get func(domain.Person) string) sql.NullString {
	if owner == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: get(*owner), Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
