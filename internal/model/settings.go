package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// AdminSettings is the admin fee configuration, stored as a single document.
type AdminSettings struct {
	UPIAddress   string                  `json:"upiAddress"`
	InterestFee  decimal.NullDecimal     `json:"interestFee"`
	RentWiseFees map[int]decimal.Decimal `json:"rentWiseFees"`
}

// SettingsFromDocument reads the settings document. Empty or unparsable fee
// values are treated as not configured.
func SettingsFromDocument(d Document) AdminSettings {
	s := AdminSettings{
		UPIAddress:   d.String("upiAddress", "upiId"),
		RentWiseFees: map[int]decimal.Decimal{},
	}
	if fee, ok := parseDecimal(d["interestFee"]); ok {
		s.InterestFee = decimal.NewNullDecimal(fee)
	}
	for k, v := range d.Map("rentWiseFees") {
		idx, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		if fee, ok := parseDecimal(v); ok {
			s.RentWiseFees[idx] = fee
		}
	}
	return s
}

// Document renders the settings for a wholesale overwrite.
func (s AdminSettings) Document() Document {
	fees := map[string]any{}
	for idx, fee := range s.RentWiseFees {
		fees[strconv.Itoa(idx)] = fee.String()
	}
	d := Document{
		"schemaVersion": SchemaVersion,
		"upiAddress":    s.UPIAddress,
		"rentWiseFees":  fees,
	}
	if s.InterestFee.Valid {
		d["interestFee"] = s.InterestFee.Decimal.String()
	}
	return d
}
