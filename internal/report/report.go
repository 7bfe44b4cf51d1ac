// Package report turns listings and interest expressions into spreadsheet
// rows and renders them as .xlsx workbooks.
package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"rentease-service/internal/model"
)

// Kind names a report.
type Kind string

const (
	KindProperties  Kind = "properties"
	KindInterests   Kind = "interests"
	KindCollections Kind = "collections"
)

const (
	SheetName  = "Data"
	DateLayout = "2006-01-02"

	TotalID = "TOTAL"
)

var (
	ErrUnknownKind  = errors.New("unknown report")
	ErrUnknownField = errors.New("unknown report field")
)

// ParseKind accepts the report names used by the admin screen.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindProperties, KindInterests, KindCollections:
		return Kind(s), nil
	case "today", "today_collections":
		return KindCollections, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Filename is the download name of a report generated on day.
func (k Kind) Filename(day time.Time) string {
	base := string(k) + "_report"
	if k == KindCollections {
		base = "today_collections"
	}
	return base + "_" + day.Format(DateLayout) + ".xlsx"
}

// Row is one spreadsheet line keyed by field name.
type Row map[string]any

// Table is a rendered report: a header line plus formatted cells.
type Table struct {
	Fields []string
	Rows   [][]any
}

// Select lays rows out in field order. Booleans become Yes/No, timestamps a
// calendar date, amounts numbers; missing fields are left blank.
func Select(rows []Row, fields []string) Table {
	t := Table{Fields: fields, Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		line := make([]any, len(fields))
		for i, f := range fields {
			line[i] = cell(r[f])
		}
		t.Rows = append(t.Rows, line)
	}
	return t
}

func cell(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(DateLayout)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Format(DateLayout)
	case decimal.Decimal:
		return x.InexactFloat64()
	case fmt.Stringer:
		return x.String()
	}
	return v
}

// WriteXLSX renders t as a single-sheet workbook.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("report.WriteXLSX: %w", err)
	}
	header := make([]any, len(t.Fields))
	for i, name := range t.Fields {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("report.WriteXLSX: header: %w", err)
	}
	for i, line := range t.Rows {
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("report.WriteXLSX: %w", err)
		}
		if err := f.SetSheetRow(SheetName, ref, &line); err != nil {
			return fmt.Errorf("report.WriteXLSX: row %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("report.WriteXLSX: write: %w", err)
	}
	return nil
}

// DayRange returns the inclusive bounds of the calendar day containing t.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// PropertyRow flattens a listing. "price" and "type" are kept as aliases of
// monthlyRent and propertyType for existing spreadsheets.
func PropertyRow(p model.Property) Row {
	return Row{
		"id":                 p.ID,
		"name":               p.Name,
		"address":            p.Address,
		"city":               p.City,
		"state":              p.State,
		"pincode":            p.Pincode,
		"bedrooms":           p.Bedrooms,
		"bathrooms":          p.Bathrooms,
		"monthlyRent":        p.MonthlyRent,
		"price":              p.MonthlyRent,
		"securityDeposit":    p.SecurityDeposit,
		"maintenanceCharges": p.MaintenanceCharges,
		"status":             string(p.Status),
		"createdAt":          p.CreatedAt,
		"ownerId":            p.OwnerID,
		"ownerEmail":         p.OwnerEmail,
		"contactNumber":      p.ContactNumber,
		"propertyType":       p.PropertyType,
		"type":               p.PropertyType,
		"area":               p.Area,
		"availableFrom":      p.AvailableFrom,
		"rentTo":             p.RentTo,
		"familySize":         p.FamilySize,
		"petsAllowed":        p.PetsAllowed,
		"religionPreference": p.ReligionPreference,
		"specificReligion":   p.SpecificReligion,
		"createVideo":        p.CreateVideo,
		"videoLink":          p.VideoURL,
		"description":        p.Description,
		"amenities":          p.Amenities,
	}
}

// InterestRow flattens an interest expression, enriched with its listing
// and the submitting user when they are known.
func InterestRow(in model.Interest, p *model.Property, u *model.User) Row {
	r := Row{
		"id":               in.ID,
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
		"createdAt":        in.CreatedAt,
		"paymentStatus":    string(in.PaymentStatus),
		"paymentAmount":    in.PaymentAmount,
		"paymentReference": in.PaymentReference,
		"videoTour":        in.VideoTour,
	}
	if p != nil {
		r["propertyAddress"] = p.Address
		r["propertyCity"] = p.City
		r["propertyState"] = p.State
		r["propertyBedrooms"] = p.Bedrooms
		r["propertyPrice"] = p.MonthlyRent
		if in.PropertyName == "" {
			r["propertyName"] = p.Name
		}
	}
	if u != nil {
		if u.Name != "" {
			r["userName"] = u.Name
		}
		if u.Email != "" {
			r["userEmail"] = u.Email
		}
	}
	return r
}

// CollectionRows keeps the interests whose fee was collected and appends a
// TOTAL row carrying the sum of their amounts.
func CollectionRows(interests []model.Interest) ([]Row, decimal.Decimal) {
	rows := make([]Row, 0, len(interests)+1)
	total := decimal.Zero
	for _, in := range interests {
		if !in.PaymentStatus.Collected() {
			continue
		}
		total = total.Add(in.PaymentAmount)
		rows = append(rows, InterestRow(in, nil, nil))
	}
	rows = append(rows, Row{
		"id":            TotalID,
		"propertyName":  "TOTAL COLLECTIONS",
		"paymentAmount": total,
		"paymentStatus": "SUMMARY",
	})
	return rows, total
}

// ParseRange reads the start and end dates of a report. Both are calendar
// dates and inclusive; a missing start means 30 days before now and a
// missing end means today.
func ParseRange(start, end string, now time.Time) (time.Time, time.Time, error) {
	from := now.AddDate(0, 0, -30)
	to := now
	if start != "" {
		t, err := time.ParseInLocation(DateLayout, start, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("report: start date: %w", err)
		}
		from = t
	}
	if end != "" {
		t, err := time.ParseInLocation(DateLayout, end, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("report: end date: %w", err)
		}
		to = t
	}
	from, _ = DayRange(from)
	_, to = DayRange(to)
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("report: end date %s is before start date %s", to.Format(DateLayout), from.Format(DateLayout))
	}
	return from, to, nil
}
