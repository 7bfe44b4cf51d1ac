package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks the consultancy fee of an interest expression.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentPaid      PaymentStatus = "paid"
)

// Collected reports whether the fee has been received.
func (s PaymentStatus) Collected() bool {
	return s == PaymentCompleted || s == PaymentPaid
}

// MaritalMarried switches the questionnaire to family size and age group.
const MaritalMarried = "married"

// Interest is a tenant's recorded interest in a Property.
type Interest struct {
	ID               string          `json:"id"`
	PropertyID       string          `json:"propertyId"`
	PropertyName     string          `json:"propertyName"`
	PropertyType     string          `json:"propertyType,omitempty"`
	UserID           string          `json:"userId"`
	UserEmail        string          `json:"userEmail,omitempty"`
	UserName         string          `json:"userName,omitempty"`
	ContactNumber    string          `json:"contactNumber"`
	Religion         string          `json:"religion"`
	Occupation       string          `json:"occupation"`
	MaritalStatus    string          `json:"maritalStatus"`
	FamilyMembers    string          `json:"familyMembers,omitempty"`
	AgeGroup         string          `json:"ageGroup,omitempty"`
	StudentOrWorking string          `json:"studentOrWorking,omitempty"`
	VideoTour        bool            `json:"videoTour"`
	AgreeToFee       bool            `json:"agreeToFee"`
	PaymentAmount    decimal.Decimal `json:"paymentAmount"`
	MonthlyRent      decimal.Decimal `json:"monthlyRent"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// InterestFromDocument normalizes a stored interest expression.
func InterestFromDocument(d Document) Interest {
	in := Interest{
		ID:               d.ID(),
		PropertyID:       d.String("propertyId"),
		PropertyName:     d.String("propertyName"),
		PropertyType:     d.String("propertyType"),
		UserID:           d.String("userId"),
		UserEmail:        d.String("userEmail"),
		UserName:         d.String("userName"),
		ContactNumber:    d.String("contactNumber", "userPhone"),
		Religion:         d.String("religion"),
		Occupation:       d.String("occupation"),
		MaritalStatus:    d.String("maritalStatus"),
		FamilyMembers:    d.String("familyMembers"),
		AgeGroup:         d.String("ageGroup"),
		StudentOrWorking: d.String("studentOrWorking"),
		VideoTour:        d.Bool("videoTour"),
		AgreeToFee:       d.Bool("agreeToFee"),
		PaymentAmount:    d.Decimal("paymentAmount"),
		MonthlyRent:      d.Decimal("monthlyRent"),
		PaymentStatus:    PaymentStatus(d.String("paymentStatus")),
		PaymentReference: d.String("paymentReference"),
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = PaymentPending
	}
	in.CreatedAt, _ = d.Time("createdAt")
	return in
}

// Document renders the interest with canonical field names.
func (in Interest) Document() Document {
	d := Document{
		"schemaVersion":    SchemaVersion,
		"propertyId":       in.PropertyID,
		"propertyName":     in.PropertyName,
		"propertyType":     in.PropertyType,
		"userId":           in.UserID,
		"userEmail":        in.UserEmail,
		"userName":         in.UserName,
		"contactNumber":    in.ContactNumber,
		"religion":         in.Religion,
		"occupation":       in.Occupation,
		"maritalStatus":    in.MaritalStatus,
		"familyMembers":    in.FamilyMembers,
		"ageGroup":         in.AgeGroup,
		"studentOrWorking": in.StudentOrWorking,
		"videoTour":        in.VideoTour,
		"agreeToFee":       in.AgreeToFee,
		"paymentAmount":    in.PaymentAmount.String(),
		"monthlyRent":      in.MonthlyRent.String(),
		"paymentStatus":    string(in.PaymentStatus),
		"paymentReference": in.PaymentReference,
	}
	if !in.CreatedAt.IsZero() {
		d["createdAt"] = in.CreatedAt.UTC()
	}
	if in.ID != "" {
		d["id"] = in.ID
	}
	return d
}
