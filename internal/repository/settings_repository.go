package repository

import (
	"context"
	"errors"
	"fmt"

	"rentease-service/internal/model"
)

// adminSettingsID is the well-known id of the settings document.
const adminSettingsID = "admin"

type SettingsRepository struct {
	Store DocumentStore
}

func NewSettingsRepository(store DocumentStore) *SettingsRepository {
	return &SettingsRepository{Store: store}
}

// Load returns the stored settings; found is false when none were saved yet.
func (r *SettingsRepository) Load(ctx context.Context) (settings model.AdminSettings, found bool, err error) {
	doc, err := r.Store.Get(ctx, Settings, adminSettingsID)
	if errors.Is(err, ErrNotFound) {
		return model.AdminSettings{}, false, nil
	}
	if err != nil {
		return model.AdminSettings{}, false, fmt.Errorf("SettingsRepository.Load: %w", err)
	}
	return model.SettingsFromDocument(doc), true, nil
}

// Save overwrites the settings document wholesale.
func (r *SettingsRepository) Save(ctx context.Context, s model.AdminSettings) error {
	if err := r.Store.Set(ctx, Settings, adminSettingsID, s.Document()); err != nil {
		return fmt.Errorf("SettingsRepository.Save: %w", err)
	}
	return nil
}
