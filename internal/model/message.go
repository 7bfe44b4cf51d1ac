package model

import "time"

// MessageTypeContact marks messages sent through the public contact form.
const MessageTypeContact = "contact"

// Message is a contact-form submission.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

func MessageFromDocument(d Document) Message {
	m := Message{
		ID:      d.ID(),
		Name:    d.String("name"),
		Email:   d.String("email"),
		Subject: d.String("subject"),
		Message: d.String("message"),
		Type:    d.String("type"),
	}
	m.CreatedAt, _ = d.Time("createdAt")
	return m
}

func (m Message) Document() Document {
	d := Document{
		"name":    m.Name,
		"email":   m.Email,
		"subject": m.Subject,
		"message": m.Message,
		"type":    m.Type,
	}
	if !m.CreatedAt.IsZero() {
		d["createdAt"] = m.CreatedAt.UTC()
	}
	return d
}
