// Package notify sends e-mail notifications about listing and interest
// events.
package notify

import (
	"context"
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

// Notification is a single plain-text e-mail.
type Notification struct {
	To      string
	Subject string
	Body    string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Mailer delivers notifications over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	sender string
}

func NewMailer(host string, port int, user, pass, sender string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		sender: sender,
	}
}

func (m *Mailer) Notify(ctx context.Context, n Notification) error {
	if n.To == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("Mailer.Notify: %w", err)
	}
	if err := m.dialer.DialAndSend(m.message(n)); err != nil {
		return fmt.Errorf("Mailer.Notify: send to %s: %w", n.To, err)
	}
	log.Printf("[Mailer.Notify] sent %q to %s", n.Subject, n.To)
	return nil
}

func (m *Mailer) message(n Notification) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", n.To)
	msg.SetHeader("Subject", n.Subject)
	msg.SetBody("text/plain", n.Body)
	return msg
}

// Nop drops every notification. It is used when SMTP is not configured.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }

var (
	_ Notifier = (*Mailer)(nil)
	_ Notifier = Nop{}
)

// ListingReviewed is sent to the owner after a moderation decision.
func ListingReviewed(to, listingName, status string) Notification {
	return Notification{
		To:      to,
		Subject: fmt.Sprintf("Your listing %q was %s", listingName, status),
		Body:    fmt.Sprintf("Hello,\n\nYour listing %q has been %s by the RentEase team.\n", listingName, status),
	}
}

// InterestReceived tells the admin desk about a new interest expression.
func InterestReceived(to, listingName, tenant, amount string) Notification {
	return Notification{
		To:      to,
		Subject: fmt.Sprintf("New interest in %q", listingName),
		Body:    fmt.Sprintf("%s is interested in %q. Consultancy fee: %s.\n", tenant, listingName, amount),
	}
}

// ContactReceived forwards a contact-form message to the admin desk.
func ContactReceived(to, from, subject, body string) Notification {
	return Notification{
		To:      to,
		Subject: "Contact form: " + subject,
		Body:    fmt.Sprintf("From: %s\n\n%s\n", from, body),
	}
}
