package email

import (
	"fmt"

	"github.com/nivkatz/tenants_backend/internal/domain"
)

// Notifier emails the building committee about occupancy changes. All
// notifications are best effort: callers log failures and never fail the
// operation that triggered them.
type Notifier struct {
	client    *Client
	committee string
}

// NewNotifier creates a notifier targeting the committee mailbox. A nil
// client disables notifications.
func NewNotifier(client *Client, committee string) *Notifier {
	return &Notifier{client: client, committee: committee}
}

// Enabled reports whether notifications can be sent
func (n *Notifier) Enabled() bool {
	return n != nil && n.client != nil && n.committee != ""
}

// NotifyMoveIn announces a new registration
func (n *Notifier) NotifyMoveIn(t *domain.TenantRecord) error {
	if !n.Enabled() {
		return nil
	}
	subject := fmt.Sprintf("New tenant in apartment %d/%d", t.BuildingNumber, t.ApartmentNumber)
	body := fmt.Sprintf(`
		<h2>New tenant registered</h2>
		<p><b>%s</b> moved into apartment %d in building %d on %s.</p>
		<p>Phone: %s</p>
		%s
	`,
		t.Occupant.FullName(), t.ApartmentNumber, t.BuildingNumber,
		t.MoveInDate.Format("02/01/2006"), t.Occupant.Phone, ownerParagraph(t))
	return n.client.SendEmail(n.committee, subject, body)
}

// NotifyMoveOut announces an ended tenancy
func (n *Notifier) NotifyMoveOut(h *domain.TenantHistory) error {
	if !n.Enabled() {
		return nil
	}
	subject := fmt.Sprintf("Tenancy ended in apartment %d/%d", h.BuildingNumber, h.ApartmentNumber)
	body := fmt.Sprintf(`
		<h2>Tenancy ended</h2>
		<p><b>%s</b> left apartment %d in building %d on %s after %d days.</p>
	`,
		h.Occupant.FullName(), h.ApartmentNumber, h.BuildingNumber,
		h.MoveOutDate.Format("02/01/2006"), h.TenancyDurationDays())
	return n.client.SendEmail(n.committee, subject, body)
}

// NotifyReplacement announces that a tenant was replaced
func (n *Notifier) NotifyReplacement(incoming *domain.TenantRecord, outgoing *domain.TenantHistory) error {
	if !n.Enabled() {
		return nil
	}
	subject := fmt.Sprintf("Tenant replaced in apartment %d/%d", incoming.BuildingNumber, incoming.ApartmentNumber)
	body := fmt.Sprintf(`
		<h2>Tenant replaced</h2>
		<p><b>%s</b> replaced <b>%s</b> in apartment %d, building %d.</p>
		<p>Previous tenancy closed on %s, new tenancy starts %s.</p>
	`,
		incoming.Occupant.FullName(), outgoing.Occupant.FullName(),
		incoming.ApartmentNumber, incoming.BuildingNumber,
		outgoing.MoveOutDate.Format("02/01/2006"), incoming.MoveInDate.Format("02/01/2006"))
	return n.client.SendEmail(n.committee, subject, body)
}

func ownerParagraph(t *domain.TenantRecord) string {
	if t.IsOwner || t.OwnerInfo == nil {
		return "<p>The occupant owns the apartment.</p>"
	}
	return fmt.Sprintf("<p>Renter. Owner of record: %s (%s)</p>", t.OwnerInfo.FullName(), t.OwnerInfo.Phone)
}
