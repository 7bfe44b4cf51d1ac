package report

import (
	"fmt"
	"strings"
)

// field is a selectable column and whether it is part of the default set.
type field struct {
	name string
	on   bool
}

var propertyFields = []field{
	{"id", true},
	{"name", true},
	{"address", true},
	{"city", true},
	{"state", true},
	{"bedrooms", true},
	{"bathrooms", true},
	{"monthlyRent", true},
	{"status", true},
	{"createdAt", true},
	{"ownerEmail", true},
	{"contactNumber", true},
	{"propertyType", true},
	{"area", true},
	{"availableFrom", true},
	{"rentTo", true},
	{"petsAllowed", true},
	{"religionPreference", true},
	{"specificReligion", false},
	{"description", false},
	{"amenities", false},
	{"pincode", false},
	{"securityDeposit", false},
	{"maintenanceCharges", false},
	{"familySize", false},
	{"createVideo", false},
	{"videoLink", false},
	{"ownerId", false},
	{"price", false},
	{"type", false},
}

var interestFields = []field{
	{"id", true},
	{"propertyId", true},
	{"propertyName", true},
	{"userId", true},
	{"userEmail", true},
	{"contactNumber", true},
	{"religion", true},
	{"occupation", true},
	{"maritalStatus", true},
	{"createdAt", true},
	{"paymentStatus", true},
	{"paymentAmount", true},
	{"videoTour", true},
	{"familyMembers", false},
	{"ageGroup", false},
	{"studentOrWorking", false},
	{"propertyType", false},
	{"paymentReference", false},
}

// enrichment columns always follow the selected interest fields.
var interestEnrichment = []string{
	"propertyAddress",
	"propertyCity",
	"propertyState",
	"propertyBedrooms",
	"propertyPrice",
	"userName",
}

var collectionFields = []string{
	"id",
	"propertyId",
	"propertyName",
	"userEmail",
	"paymentAmount",
	"paymentStatus",
	"createdAt",
}

// Fields resolves the columns of a report. An empty selection yields the
// defaults. The collections report has a fixed layout.
func Fields(kind Kind, selected []string) ([]string, error) {
	switch kind {
	case KindProperties:
		return pick(propertyFields, selected)
	case KindInterests:
		cols, err := pick(interestFields, selected)
		if err != nil {
			return nil, err
		}
		for _, extra := range interestEnrichment {
			if !contains(cols, extra) {
				cols = append(cols, extra)
			}
		}
		return cols, nil
	case KindCollections:
		return append([]string(nil), collectionFields...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Available lists every selectable column of kind with its default state.
func Available(kind Kind) map[string]bool {
	var set []field
	switch kind {
	case KindProperties:
		set = propertyFields
	case KindInterests:
		set = interestFields
	}
	out := make(map[string]bool, len(set))
	for _, f := range set {
		out[f.name] = f.on
	}
	return out
}

// ParseFieldList splits a comma separated selection.
func ParseFieldList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// pick keeps the canonical column order regardless of selection order.
func pick(set []field, selected []string) ([]string, error) {
	want := map[string]bool{}
	for _, s := range selected {
		want[s] = true
	}
	known := map[string]bool{}
	for _, f := range set {
		known[f.name] = true
	}
	for s := range want {
		if !known[s] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, s)
		}
	}

	var out []string
	for _, f := range set {
		if (len(want) == 0 && f.on) || want[f.name] {
			out = append(out, f.name)
		}
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
