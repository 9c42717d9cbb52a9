package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/baguri-ro/baguri-api/internal/constants"
	"github.com/baguri-ro/baguri-api/internal/models"
	"github.com/baguri-ro/baguri-api/internal/repository"

	"github.com/shopspring/decimal"
)

// SettingService reads and writes runtime settings.
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService builds a setting service.
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetByKey fetches a setting value; nil means unset.
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update replaces a setting value.
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("setting key is required")
	}
	if err := validateSettingValue(key, value); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	setting, err := s.repo.Upsert(key, models.JSON(raw))
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// Bad values here would silently break the withdrawal minimum, so the write
// path rejects them instead of the read path papering over them.
func validateSettingValue(key string, value map[string]interface{}) error {
	if key != constants.SettingKeyWithdrawalConfig {
		return nil
	}
	raw, ok := value[constants.SettingFieldWithdrawalMinAmount]
	if !ok {
		return nil
	}
	text, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%s must be a decimal string", constants.SettingFieldWithdrawalMinAmount)
	}
	parsed, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil || parsed.IsNegative() {
		return fmt.Errorf("%s must be a non-negative decimal", constants.SettingFieldWithdrawalMinAmount)
	}
	return nil
}
