package mailer

import (
	"fmt"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"gopkg.in/gomail.v2"
)

// Sender is the part of gomail.Dialer the mailer needs.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	from   string
	sender Sender
}

func NewSMTPMailer(host string, port int, from, password string) *SMTPMailer {
	return &SMTPMailer{from: from, sender: gomail.NewDialer(host, port, from, password)}
}

func newSMTPMailer(from string, sender Sender) *SMTPMailer {
	return &SMTPMailer{from: from, sender: sender}
}

func (m *SMTPMailer) SendListingCreatedEmail(toEmail string, listing *domain.Listing) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Your %s %s is now listed", listing.Manufacturer, listing.Model))
	msg.SetBody("text/plain", listingCreatedBody(listing))
	return m.sender.DialAndSend(msg)
}

func listingCreatedBody(l *domain.Listing) string {
	return fmt.Sprintf(
		"Your listing has been posted successfully.\n\nListing ID: %s\nVehicle: %s %s (%s, %s)\nPrice: %.2f\nPhoto: %s\n",
		l.ID, l.Manufacturer, l.Model, l.Type, l.State, l.Price, l.Photo,
	)
}
