package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartmeter/backend/services/billing-service/internal/models"
)

// ErrInvalidTariff marks a schedule that failed validation.
var ErrInvalidTariff = errors.New("tariff: invalid schedule")

// TariffStore is the persistence surface for tariff schedules.
type TariffStore interface {
	GetByName(ctx context.Context, name string) (*models.Tariff, error)
	Replace(ctx context.Context, tariff *models.Tariff) error
}

// TariffService resolves and replaces the authoritative tariff.
type TariffService struct {
	repo TariffStore
}

// NewTariffService returns service instance.
func NewTariffService(repo TariffStore) *TariffService {
	return &TariffService{repo: repo}
}

// Get returns the default tariff, mapping an absent row to ErrNoTariff.
func (s *TariffService) Get(ctx context.Context) (*models.Tariff, error) {
	tariff, err := s.repo.GetByName(ctx, models.DefaultTariffName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoTariff
		}
		return nil, fmt.Errorf("tariff: load: %w", err)
	}
	return tariff, nil
}

// Replace validates the schedule and swaps the default tariff wholesale.
func (s *TariffService) Replace(ctx context.Context, tariff *models.Tariff) error {
	if err := ValidateSlabs(tariff.Slabs); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTariff, err)
	}
	if tariff.FixedCharge < 0 {
		return fmt.Errorf("%w: negative fixed charge", ErrInvalidTariff)
	}
	if tariff.TaxRate < 0 || tariff.TaxRate >= 1 {
		return fmt.Errorf("%w: tax rate must be in [0, 1)", ErrInvalidTariff)
	}
	if tariff.MinimumBill != nil && *tariff.MinimumBill < 0 {
		return fmt.Errorf("%w: negative minimum bill", ErrInvalidTariff)
	}

	tariff.Name = models.DefaultTariffName
	if tariff.Currency == "" {
		tariff.Currency = "INR"
	}
	return s.repo.Replace(ctx, tariff)
}
