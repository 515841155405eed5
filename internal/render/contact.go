package render

import (
	"fmt"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/lotbuilder/internal/vehicle"
)

// Contact composes the pre-filled WhatsApp link used by call-to-action controls.
type Contact struct {
	Phone      string
	DealerName string
	// MessageFormat receives the dealer name and the vehicle label.
	MessageFormat string
}

// Message returns the text sent to the dealer for rec.
func (c Contact) Message(rec *vehicle.Record) string {
	return fmt.Sprintf(c.MessageFormat, c.DealerName, rec.Label())
}

// Link returns the wa.me deep link for rec.
func (c Contact) Link(rec *vehicle.Record) string {
	return WhatsAppLink(c.Phone, c.Message(rec))
}

// WhatsAppLink builds https://wa.me/<phone>?text=<message>. Non-digits are
// removed from phone and spaces in message are encoded as %20.
func WhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text
}
