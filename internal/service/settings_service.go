package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"rentease-service/internal/fee"
	"rentease-service/internal/model"
	"rentease-service/internal/repository"
)

type SettingsService struct {
	settings *repository.SettingsRepository
}

func NewSettingsService(settings *repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the stored settings, or empty ones when none were saved.
func (s *SettingsService) Get(ctx context.Context, actor model.Actor) (model.AdminSettings, error) {
	if !actor.IsAdmin() {
		return model.AdminSettings{}, ErrForbidden
	}
	settings, _, err := s.settings.Load(ctx)
	if err != nil {
		return model.AdminSettings{}, fmt.Errorf("SettingsService.Get: %w", err)
	}
	return settings, nil
}

// Put overwrites the settings document.
func (s *SettingsService) Put(ctx context.Context, actor model.Actor, settings model.AdminSettings) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if settings.InterestFee.Valid && settings.InterestFee.Decimal.IsNegative() {
		return invalid("interest fee must not be negative")
	}
	last := len(fee.Brackets()) - 1
	for idx, f := range settings.RentWiseFees {
		if idx < 0 || idx > last {
			return invalid("rent tier %d does not exist", idx)
		}
		if f.IsNegative() {
			return invalid("fee for rent tier %d must not be negative", idx)
		}
	}
	if err := s.settings.Save(ctx, settings); err != nil {
		return fmt.Errorf("SettingsService.Put: %w", err)
	}
	log.Printf("[SettingsService.Put] settings updated by %s", actor.UserID)
	return nil
}

// PutDocument overwrites the settings from a raw request document. Tier keys
// must be integers and fees must be numbers; an empty fee means not set.
func (s *SettingsService) PutDocument(ctx context.Context, actor model.Actor, doc model.Document) (model.AdminSettings, error) {
	if !actor.IsAdmin() {
		return model.AdminSettings{}, ErrForbidden
	}
	if err := checkSettingsDocument(doc); err != nil {
		return model.AdminSettings{}, err
	}
	settings := model.SettingsFromDocument(doc)
	if err := s.Put(ctx, actor, settings); err != nil {
		return model.AdminSettings{}, err
	}
	return settings, nil
}

func checkSettingsDocument(doc model.Document) error {
	if !feeValueOK(doc["interestFee"]) {
		return invalid("interest fee %v is not a number", doc["interestFee"])
	}
	raw, ok := doc["rentWiseFees"]
	if !ok || raw == nil {
		return nil
	}
	fees := doc.Map("rentWiseFees")
	if fees == nil {
		return invalid("rentWiseFees must be an object keyed by tier")
	}
	for k, v := range fees {
		if _, err := strconv.Atoi(k); err != nil {
			return invalid("rent tier %q is not a number", k)
		}
		if !feeValueOK(v) {
			return invalid("fee %v for rent tier %s is not a number", v, k)
		}
	}
	return nil
}

func feeValueOK(v any) bool {
	if v == nil {
		return true
	}
	if str, ok := v.(string); ok && strings.TrimSpace(str) == "" {
		return true
	}
	_, ok := model.AmountOf(v)
	return ok
}

// Tiers lists the rent brackets with the fee in effect for each.
func (s *SettingsService) Tiers(ctx context.Context) ([]fee.Tier, error) {
	settings, _, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("SettingsService.Tiers: %w", err)
	}
	return fee.Table(settings), nil
}
