package model

import (
	"strings"
	"time"
)

// Role is the kind of actor performing an operation.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps identity-service role names onto Role.
func ParseRole(s string) Role {
	if strings.EqualFold(s, string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// Actor is the authenticated caller. The zero Actor is an anonymous visitor.
type Actor struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

func (a Actor) Anonymous() bool { return a.UserID == "" }

// User is the profile record of an identity.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func UserFromDocument(d Document) User {
	u := User{
		ID:    d.ID(),
		Email: d.String("email"),
		Name:  d.String("name"),
		Role:  ParseRole(d.String("role")),
	}
	u.CreatedAt, _ = d.Time("createdAt", "created_at")
	return u
}

func (u User) Document() Document {
	d := Document{
		"schemaVersion": SchemaVersion,
		"email":         u.Email,
		"name":          u.Name,
		"role":          string(u.Role),
	}
	if !u.CreatedAt.IsZero() {
		d["createdAt"] = u.CreatedAt.UTC()
	}
	return d
}
