// Package mail renders and delivers the plain text mails sent to users.
package mail

import (
	"fmt"
	"strings"

	"github.com/spec-kit/amelio/internal/domain"
)

const signature = "Viele Grüße,\nDein Amelio-Team"

// StatusDetails describes a status transition of a ticket.
type StatusDetails struct {
	TicketTitle string
	TicketID    int64
	OldStatus   domain.Status
	NewStatus   domain.Status
}

// CommentDetails describes a comment added to a ticket.
type CommentDetails struct {
	TicketTitle string
	TicketID    int64
	Comment     string
	WriterName  string
}

// Renderer creates subject and body for each kind of mail.
type Renderer struct {
	baseURL string
}

// NewRenderer creates a renderer whose links point below baseURL.
func NewRenderer(baseURL string) *Renderer {
	return &Renderer{baseURL: strings.TrimRight(baseURL, "/")}
}

// Invitation asks a new user to activate their account.
func (r *Renderer) Invitation(name, code string) (string, string) {
	body := fmt.Sprintf("Hallo %s,\n\n"+
		"Willkommen bei Amelio!\n\n"+
		"Bitte klicke auf den folgenden Link um Deinen Account zu aktivieren:\n"+
		"%s/activate/%s\n\n%s",
		name, r.baseURL, code, signature)
	return "Amelio Registrierung", body
}

// StatusChange informs a ticket creator about a new status.
func (r *Renderer) StatusChange(name string, d StatusDetails) (string, string) {
	body := fmt.Sprintf("Hallo %s,\n\n"+
		"Der Status Deines Tickets \"%s\" wurde soeben von %s zu %s geändert.\n\n"+
		"Du kannst Dein Ticket jederzeit unter folgendem Link einsehen:\n"+
		"%s\n\n%s",
		name, d.TicketTitle, d.OldStatus.German(), d.NewStatus.German(), r.ticketURL(d.TicketID), signature)
	return "Statusänderung Deines Tickets", body
}

// NewComment informs a ticket creator about a comment someone else wrote.
func (r *Renderer) NewComment(name string, d CommentDetails) (string, string) {
	body := fmt.Sprintf("Hallo %s,\n\n"+
		"Deinem Ticket \"%s\" wurde soeben ein neuer Kommentar von %s hinzugefügt:\n\n"+
		"%s\n\n"+
		"Du kannst Dein Ticket jederzeit unter folgendem Link einsehen:\n"+
		"%s\n\n%s",
		name, d.TicketTitle, d.WriterName, d.Comment, r.ticketURL(d.TicketID), signature)
	return "Neuer Kommentar für Dein Ticket", body
}

func (r *Renderer) ticketURL(id int64) string {
	return fmt.Sprintf("%s/tickets/%d", r.baseURL, id)
}
