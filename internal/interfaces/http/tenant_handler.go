package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/nivkatz/tenants_backend/internal/application"
	"github.com/nivkatz/tenants_backend/internal/domain"
	"github.com/nivkatz/tenants_backend/internal/email"
	"github.com/nivkatz/tenants_backend/internal/metrics"
)

type TenantHandler struct {
	service   *application.TenantService
	occupancy *application.OccupancyService
	notifier  *email.Notifier
	logger    *logrus.Logger
}

// NewTenantHandler creates the tenant registry handler
func NewTenantHandler(
	service *application.TenantService,
	occupancy *application.OccupancyService,
	notifier *email.Notifier,
	logger *logrus.Logger,
) *TenantHandler {
	return &TenantHandler{
		service:   service,
		occupancy: occupancy,
		notifier:  notifier,
		logger:    logger,
	}
}

// PersonData carries a person's fields in requests and responses
type PersonData struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// FamilyMemberData carries a family member in requests
type FamilyMemberData struct {
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Phone           string  `json:"phone"`
	WhatsAppEnabled bool    `json:"whatsappEnabled"`
	PalGateEnabled  bool    `json:"palgateEnabled"`
	VehiclePlate    *string `json:"vehiclePlate,omitempty"`
}

// CreateTenantRequest is the registration payload
type CreateTenantRequest struct {
	BuildingNumber  int                `json:"buildingNumber"`
	ApartmentNumber int                `json:"apartmentNumber"`
	FirstName       string             `json:"firstName"`
	LastName        string             `json:"lastName"`
	Phone           string             `json:"phone"`
	IsOwner         bool               `json:"isOwner"`
	OwnerInfo       *PersonData        `json:"ownerInfo,omitempty"`
	MoveInDate      string             `json:"moveInDate,omitempty"` // YYYY-MM-DD, defaults to today
	StorageNumber   *int               `json:"storageNumber,omitempty"`
	ParkingSlot1    *int               `json:"parkingSlot1,omitempty"`
	ParkingSlot2    *int               `json:"parkingSlot2,omitempty"`
	FamilyMembers   []FamilyMemberData `json:"familyMembers,omitempty"`
	ReplaceExisting bool               `json:"replaceExisting"`
}

// UpdateTenantRequest is the partial-update payload, absent fields unchanged
type UpdateTenantRequest struct {
	FirstName     *string             `json:"firstName,omitempty"`
	LastName      *string             `json:"lastName,omitempty"`
	Phone         *string             `json:"phone,omitempty"`
	IsOwner       *bool               `json:"isOwner,omitempty"`
	OwnerInfo     *PersonData         `json:"ownerInfo,omitempty"`
	StorageNumber *int                `json:"storageNumber,omitempty"`
	ParkingSlot1  *int                `json:"parkingSlot1,omitempty"`
	ParkingSlot2  *int                `json:"parkingSlot2,omitempty"`
	FamilyMembers *[]FamilyMemberData `json:"familyMembers,omitempty"`
}

// EndTenancyRequest carries the optional move-out date
type EndTenancyRequest struct {
	MoveOutDate string `json:"moveOutDate,omitempty"` // YYYY-MM-DD, defaults to today
}

// CreateTenant registers a tenant. When the apartment is occupied and the
// request does not set replaceExisting, it answers 409 with the current
// occupant so the UI can show a confirmation dialog.
func (h *TenantHandler) CreateTenant(c *fiber.Ctx) error {
	var req CreateTenantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	input := application.CreateTenantInput{
		BuildingNumber:  req.BuildingNumber,
		ApartmentNumber: req.ApartmentNumber,
		Occupant: domain.Person{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		},
		IsOwner:         req.IsOwner,
		OwnerInfo:       toPerson(req.OwnerInfo),
		StorageNumber:   req.StorageNumber,
		ParkingSlot1:    req.ParkingSlot1,
		ParkingSlot2:    req.ParkingSlot2,
		FamilyMembers:   toFamilyMembers(req.FamilyMembers),
		ReplaceExisting: req.ReplaceExisting,
	}

	if req.MoveInDate != "" {
		moveIn, err := parseDate(req.MoveInDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid moveInDate, use YYYY-MM-DD",
			})
		}
		input.MoveInDate = moveIn
	}

	result, err := h.service.CreateTenant(input)
	if err != nil {
		return respondError(c, err)
	}

	if result.NeedsConfirmation() {
		metrics.ConfirmationsRequested.Inc()
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"needsConfirmation": true,
			"existingTenant":    result.Existing,
		})
	}

	if result.Replaced != nil {
		metrics.TenantsReplaced.Inc()
		h.notify(func() error { return h.notifier.NotifyReplacement(result.Tenant, result.Replaced) })
	} else {
		metrics.TenantsRegistered.Inc()
		h.notify(func() error { return h.notifier.NotifyMoveIn(result.Tenant) })
	}

	return c.Status(fiber.StatusCreated).JSON(result.Tenant)
}

// GetTenant returns the current occupant of an apartment
func (h *TenantHandler) GetTenant(c *fiber.Ctx) error {
	building, apartment, err := apartmentParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tenant, err := h.service.GetTenant(building, apartment)
	if err != nil {
		return respondError(c, err)
	}
	if tenant == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "apartment is vacant",
		})
	}
	return c.JSON(tenant)
}

// ListTenants returns current occupants, optionally filtered by ?building=
func (h *TenantHandler) ListTenants(c *fiber.Ctx) error {
	building := 0
	if raw := c.Query("building"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid building filter"})
		}
		building = n
	}

	tenants, err := h.service.ListTenants(building)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"tenants": tenants})
}

// UpdateTenant applies a partial update to the current occupant
func (h *TenantHandler) UpdateTenant(c *fiber.Ctx) error {
	building, apartment, err := apartmentParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpdateTenantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	input := application.UpdateTenantInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		IsOwner:       req.IsOwner,
		OwnerInfo:     toPerson(req.OwnerInfo),
		StorageNumber: req.StorageNumber,
		ParkingSlot1:  req.ParkingSlot1,
		ParkingSlot2:  req.ParkingSlot2,
	}
	if req.FamilyMembers != nil {
		members := toFamilyMembers(*req.FamilyMembers)
		input.FamilyMembers = &members
	}

	tenant, err := h.service.UpdateTenant(building, apartment, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tenant)
}

// EndTenancy closes the current occupancy and archives it
func (h *TenantHandler) EndTenancy(c *fiber.Ctx) error {
	building, apartment, err := apartmentParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req EndTenancyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	var moveOut *time.Time
	if req.MoveOutDate != "" {
		parsed, err := parseDate(req.MoveOutDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid moveOutDate, use YYYY-MM-DD",
			})
		}
		moveOut = &parsed
	}

	history, err := h.service.EndTenancy(building, apartment, moveOut)
	if err != nil {
		return respondError(c, err)
	}

	metrics.TenanciesEnded.Inc()
	h.notify(func() error { return h.notifier.NotifyMoveOut(history) })

	return c.JSON(history)
}

// GetHistory returns an apartment's past occupancies, most recent first
func (h *TenantHandler) GetHistory(c *fiber.Ctx) error {
	building, apartment, err := apartmentParams(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	records, err := h.service.GetHistory(building, apartment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"history": records})
}

// SearchTenants filters current tenants by ?name=, ?phone= and ?building=
func (h *TenantHandler) SearchTenants(c *fiber.Ctx) error {
	building := 0
	if raw := c.Query("building"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid building filter"})
		}
		building = n
	}

	results, err := h.occupancy.SearchTenants(c.Query("name"), c.Query("phone"), building)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"tenants": results})
}

// notify sends a committee notification without failing the request
func (h *TenantHandler) notify(send func() error) {
	if !h.notifier.Enabled() {
		return
	}
	if err := send(); err != nil {
		h.logger.WithError(err).Warn("Committee notification failed")
	}
}

func toPerson(data *PersonData) *domain.Person {
	if data == nil {
		return nil
	}
	return &domain.Person{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Phone:     data.Phone,
	}
}

func toFamilyMembers(data []FamilyMemberData) []domain.FamilyMember {
	if data == nil {
		return nil
	}
	members := make([]domain.FamilyMember, len(data))
	for i, m := range data {
		members[i] = domain.FamilyMember{
			FirstName:       m.FirstName,
			LastName:        m.LastName,
			Phone:           m.Phone,
			WhatsAppEnabled: m.WhatsAppEnabled,
			PalGateEnabled:  m.PalGateEnabled,
			VehiclePlate:    m.VehiclePlate,
		}
	}
	return members
}
