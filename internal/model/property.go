package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the moderation state of a listing.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the three moderation states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Property is one rental unit.
type Property struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	PropertyType       string          `json:"propertyType"`
	MonthlyRent        decimal.Decimal `json:"monthlyRent"`
	SecurityDeposit    decimal.Decimal `json:"securityDeposit"`
	MaintenanceCharges decimal.Decimal `json:"maintenanceCharges"`
	Bedrooms           int             `json:"bedrooms"`
	Bathrooms          int             `json:"bathrooms"`
	Area               string          `json:"area"`
	TotalBuildingFloor string          `json:"totalBuildingFloor,omitempty"`
	RentFloor          string          `json:"rentFloor,omitempty"`
	Address            string          `json:"address"`
	City               string          `json:"city"`
	State              string          `json:"state"`
	Pincode            string          `json:"pincode,omitempty"`
	RentTo             string          `json:"rentTo,omitempty"`
	FamilySize         string          `json:"familySize,omitempty"`
	PetsAllowed        bool            `json:"petsAllowed"`
	ReligionPreference bool            `json:"religionPreference"`
	SpecificReligion   string          `json:"specificReligion,omitempty"`
	AvailableFrom      *time.Time      `json:"availableFrom,omitempty"`
	Status             Status          `json:"status"`
	OwnerID            string          `json:"ownerId"`
	OwnerEmail         string          `json:"ownerEmail,omitempty"`
	ContactNumber      string          `json:"contactNumber,omitempty"` // admin only
	VideoURL           string          `json:"videoLink,omitempty"`
	CreateVideo        bool            `json:"createVideo"`
	ImageURL           string          `json:"imageUrl,omitempty"`
	Description        string          `json:"description"`
	Amenities          string          `json:"amenities,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// PropertyView is what an actor is allowed to see of a Property.
type PropertyView struct {
	Property
	CanEdit bool `json:"canEdit"`
}

// Location renders "City, State", skipping empty parts.
func (p Property) Location() string {
	parts := make([]string, 0, 2)
	for _, s := range []string{p.City, p.State} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// PropertyFromDocument normalizes a stored property. Both submission forms
// of the legacy schema are accepted: price/monthlyRent, type/propertyType,
// youtubeUrl/videoLink, owner/ownerId and a free-text location.
func PropertyFromDocument(d Document) Property {
	p := Property{
		ID:                 d.ID(),
		Name:               d.String("name"),
		PropertyType:       d.String("propertyType", "type"),
		MonthlyRent:        d.Decimal("monthlyRent", "price"),
		SecurityDeposit:    d.Decimal("securityDeposit"),
		MaintenanceCharges: d.Decimal("maintenanceCharges"),
		Bedrooms:           d.Int("bedrooms"),
		Bathrooms:          d.Int("bathrooms"),
		Area:               d.String("area"),
		TotalBuildingFloor: d.String("totalBuildingFloor"),
		RentFloor:          d.String("rentFloor"),
		Address:            d.String("address"),
		City:               d.String("city"),
		State:              d.String("state"),
		Pincode:            d.String("pincode"),
		RentTo:             d.String("rentTo"),
		FamilySize:         d.String("familySize"),
		PetsAllowed:        d.Bool("petsAllowed"),
		ReligionPreference: d.Bool("religionPreference"),
		SpecificReligion:   d.String("specificReligion"),
		Status:             Status(d.String("status")),
		OwnerID:            d.String("ownerId", "owner"),
		OwnerEmail:         d.String("ownerEmail"),
		ContactNumber:      d.String("contactNumber"),
		VideoURL:           d.String("videoLink", "youtubeUrl"),
		CreateVideo:        d.Bool("createVideo"),
		ImageURL:           d.String("imageUrl"),
		Description:        d.String("description"),
		Amenities:          d.String("amenities"),
	}
	if !p.Status.Valid() {
		p.Status = StatusPending
	}
	if p.City == "" && p.State == "" {
		if loc := d.String("location"); loc != "" {
			city, state, _ := strings.Cut(loc, ",")
			p.City = strings.TrimSpace(city)
			p.State = strings.TrimSpace(state)
		}
	}
	if t, ok := d.Time("availableFrom"); ok {
		p.AvailableFrom = &t
	}
	p.CreatedAt, _ = d.Time("createdAt", "created_at")
	p.UpdatedAt, _ = d.Time("updatedAt", "updated_at")
	return p
}

// Document renders p with the canonical field names. Amounts are written
// as strings so every store keeps them exact.
func (p Property) Document() Document {
	d := Document{
		"schemaVersion":      SchemaVersion,
		"name":               p.Name,
		"propertyType":       p.PropertyType,
		"monthlyRent":        p.MonthlyRent.String(),
		"securityDeposit":    p.SecurityDeposit.String(),
		"maintenanceCharges": p.MaintenanceCharges.String(),
		"bedrooms":           p.Bedrooms,
		"bathrooms":          p.Bathrooms,
		"area":               p.Area,
		"totalBuildingFloor": p.TotalBuildingFloor,
		"rentFloor":          p.RentFloor,
		"address":            p.Address,
		"city":               p.City,
		"state":              p.State,
		"pincode":            p.Pincode,
		"rentTo":             p.RentTo,
		"familySize":         p.FamilySize,
		"petsAllowed":        p.PetsAllowed,
		"religionPreference": p.ReligionPreference,
		"specificReligion":   p.SpecificReligion,
		"status":             string(p.Status),
		"ownerId":            p.OwnerID,
		"ownerEmail":         p.OwnerEmail,
		"contactNumber":      p.ContactNumber,
		"videoLink":          p.VideoURL,
		"createVideo":        p.CreateVideo,
		"imageUrl":           p.ImageURL,
		"description":        p.Description,
		"amenities":          p.Amenities,
	}
	if p.AvailableFrom != nil {
		d["availableFrom"] = p.AvailableFrom.UTC()
	}
	if !p.CreatedAt.IsZero() {
		d["createdAt"] = p.CreatedAt.UTC()
	}
	if !p.UpdatedAt.IsZero() {
		d["updatedAt"] = p.UpdatedAt.UTC()
	}
	if p.ID != "" {
		d["id"] = p.ID
	}
	return d
}
