package fee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentease-service/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tieredSettings() model.AdminSettings {
	return model.AdminSettings{
		InterestFee: decimal.NewNullDecimal(dec("100")),
		RentWiseFees: map[int]decimal.Decimal{
			0: dec("25"), 1: dec("49"), 2: dec("75"),
			3: dec("99"), 4: dec("149"), 5: dec("199"),
		},
	}
}

func TestBracketIndex_Boundaries(t *testing.T) {
	cases := []struct {
		rent string
		want int
	}{
		{"0", 0},
		{"10000", 0},
		{"10000.5", 0},
		{"10000.99", 0},
		{"10001", 1},
		{"20000", 1},
		{"20000.75", 1},
		{"20001", 2},
		{"35000", 2},
		{"35001", 3},
		{"50000", 3},
		{"50001", 4},
		{"100000", 4},
		{"100001", 5},
		{"99999999999", 5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BracketIndex(dec(tc.rent)), "rent %s", tc.rent)
	}
}

func TestResolve_TierOverride(t *testing.T) {
	s := tieredSettings()
	assert.Equal(t, "25", Resolve(dec("10000"), s).String())
	assert.Equal(t, "49", Resolve(dec("10001"), s).String())
	assert.Equal(t, "199", Resolve(dec("250000"), s).String())
}

func TestResolve_FallsBackToFlatFee(t *testing.T) {
	s := model.AdminSettings{
		InterestFee:  decimal.NewNullDecimal(dec("100")),
		RentWiseFees: map[int]decimal.Decimal{},
	}
	assert.Equal(t, "100", Resolve(dec("15000"), s).String())

	s.RentWiseFees[1] = dec("49")
	assert.Equal(t, "49", Resolve(dec("15000"), s).String())
	assert.Equal(t, "100", Resolve(dec("5000"), s).String())
}

func TestResolve_DefaultFee(t *testing.T) {
	assert.True(t, DefaultFee.Equal(Resolve(dec("50000"), model.AdminSettings{})))
	assert.Equal(t, "100", Resolve(dec("1"), model.AdminSettings{}).String())
}

func TestResolve_LowBracketProperty(t *testing.T) {
	settings := []model.AdminSettings{
		tieredSettings(),
		{InterestFee: decimal.NewNullDecimal(dec("60"))},
		{},
	}
	for _, s := range settings {
		want := forBracket(0, s)
		for r := int64(0); r <= 10000; r += 250 {
			assert.True(t, want.Equal(Resolve(decimal.NewFromInt(r), s)), "rent %d", r)
		}
		high := forBracket(5, s)
		for _, r := range []int64{100001, 150000, 1 << 40} {
			assert.True(t, high.Equal(Resolve(decimal.NewFromInt(r), s)), "rent %d", r)
		}
	}
}

func TestResolve_Deterministic(t *testing.T) {
	s := tieredSettings()
	first := Resolve(dec("42000"), s)
	second := Resolve(dec("42000"), s)
	assert.True(t, first.Equal(second))
	assert.Equal(t, "99", first.String())
}

func TestResolveAmount_ParsesInput(t *testing.T) {
	s := tieredSettings()
	assert.Equal(t, "49", ResolveAmount("15000", s).String())
	assert.Equal(t, "49", ResolveAmount(15000.0, s).String())
	assert.Equal(t, "25", ResolveAmount("", s).String(), "missing rent is zero")
	assert.Equal(t, "25", ResolveAmount("n/a", s).String(), "unparsable rent is zero")
	assert.Equal(t, "25", ResolveAmount(nil, s).String())
	assert.Equal(t, "25", ResolveAmount("-500", s).String(), "negative rent is zero")
}

func TestTable(t *testing.T) {
	s := model.AdminSettings{
		InterestFee:  decimal.NewNullDecimal(dec("80")),
		RentWiseFees: map[int]decimal.Decimal{5: dec("300")},
	}
	tiers := Table(s)
	require.Len(t, tiers, 6)
	assert.Equal(t, "80", tiers[0].Fee.String())
	assert.False(t, tiers[0].Overridden)
	assert.Equal(t, "300", tiers[5].Fee.String())
	assert.True(t, tiers[5].Overridden)
	assert.True(t, tiers[5].Open)
}

func TestBrackets_ReturnsCopy(t *testing.T) {
	b := Brackets()
	b[0].Label = "changed"
	assert.NotEqual(t, "changed", Brackets()[0].Label)
}
