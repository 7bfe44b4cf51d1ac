// Package fee computes the consultancy fee a tenant pays to express interest
// in a listing. Fees are tiered by monthly rent and configured by admins.
package fee

import (
	"github.com/shopspring/decimal"

	"rentease-service/internal/model"
)

// DefaultFee applies when neither a tier override nor a flat fee is set.
var DefaultFee = decimal.NewFromInt(100)

// Bracket is one rent range. UpTo is the inclusive upper bound; the last
// bracket is open ended.
type Bracket struct {
	Index int             `json:"index"`
	UpTo  decimal.Decimal `json:"upTo"`
	Open  bool            `json:"open"`
	Label string          `json:"label"`
}

var brackets = []Bracket{
	{Index: 0, UpTo: decimal.NewFromInt(10000), Label: "Up to 10,000"},
	{Index: 1, UpTo: decimal.NewFromInt(20000), Label: "10,001 - 20,000"},
	{Index: 2, UpTo: decimal.NewFromInt(35000), Label: "20,001 - 35,000"},
	{Index: 3, UpTo: decimal.NewFromInt(50000), Label: "35,001 - 50,000"},
	{Index: 4, UpTo: decimal.NewFromInt(100000), Label: "50,001 - 1,00,000"},
	{Index: 5, Open: true, Label: "Above 1,00,000"},
}

// Brackets returns a copy of the rent brackets in ascending order.
func Brackets() []Bracket {
	out := make([]Bracket, len(brackets))
	copy(out, brackets)
	return out
}

// BracketIndex classifies rent into a bracket index 0-5. Fractions are
// dropped before classifying, so 10000.99 is still bracket 0.
func BracketIndex(rent decimal.Decimal) int {
	rent = rent.Truncate(0)
	for _, b := range brackets {
		if b.Open || rent.LessThanOrEqual(b.UpTo) {
			return b.Index
		}
	}
	return brackets[len(brackets)-1].Index
}

// Resolve returns the fee for rent under settings. It never fails:
// tier override, then flat fee, then DefaultFee.
func Resolve(rent decimal.Decimal, settings model.AdminSettings) decimal.Decimal {
	if rent.IsNegative() {
		rent = decimal.Zero
	}
	return forBracket(BracketIndex(rent), settings)
}

func forBracket(index int, settings model.AdminSettings) decimal.Decimal {
	if fee, ok := settings.RentWiseFees[index]; ok {
		return fee
	}
	if settings.InterestFee.Valid {
		return settings.InterestFee.Decimal
	}
	return DefaultFee
}

// ResolveAmount is Resolve for rent values straight out of a document or
// form: numbers or numeric strings. Anything unparsable counts as zero.
func ResolveAmount(rent any, settings model.AdminSettings) decimal.Decimal {
	return Resolve(model.ParseAmount(rent), settings)
}

// Tier is a bracket together with the fee currently in effect for it.
type Tier struct {
	Bracket
	Fee        decimal.Decimal `json:"fee"`
	Overridden bool            `json:"overridden"`
}

// Table lists every bracket with its effective fee under settings.
func Table(settings model.AdminSettings) []Tier {
	tiers := make([]Tier, 0, len(brackets))
	for _, b := range brackets {
		_, overridden := settings.RentWiseFees[b.Index]
		tiers = append(tiers, Tier{
			Bracket:    b,
			Fee:        forBracket(b.Index, settings),
			Overridden: overridden,
		})
	}
	return tiers
}
