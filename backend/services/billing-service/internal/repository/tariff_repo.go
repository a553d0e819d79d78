package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"smartmeter/backend/services/billing-service/internal/models"
)

// TariffRepository handles tariff lookups and wholesale replacement.
type TariffRepository struct {
	db *sql.DB
}

// NewTariffRepository returns repository.
func NewTariffRepository(db *sql.DB) *TariffRepository {
	return &TariffRepository{db: db}
}

// GetByName returns the named tariff or sql.ErrNoRows.
func (r *TariffRepository) GetByName(ctx context.Context, name string) (*models.Tariff, error) {
	const query = `
		SELECT id, name, slabs, fixed_charge, tax_rate, currency, minimum_bill, created_at, updated_at
		FROM tariffs
		WHERE name = $1
	`
	var (
		t           models.Tariff
		slabsJSON   []byte
		minimumBill sql.NullFloat64
	)
	if err := r.db.QueryRowContext(ctx, query, name).Scan(
		&t.ID,
		&t.Name,
		&slabsJSON,
		&t.FixedCharge,
		&t.TaxRate,
		&t.Currency,
		&minimumBill,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(slabsJSON, &t.Slabs); err != nil {
		return nil, fmt.Errorf("tariff %q: decode slabs: %w", name, err)
	}
	if minimumBill.Valid {
		t.MinimumBill = &minimumBill.Float64
	}
	return &t, nil
}

// Replace upserts the tariff by name, overwriting the whole schedule.
func (r *TariffRepository) Replace(ctx context.Context, tariff *models.Tariff) error {
	slabsJSON, err := json.Marshal(tariff.Slabs)
	if err != nil {
		return err
	}

	var minimumBill sql.NullFloat64
	if tariff.MinimumBill != nil {
		minimumBill = sql.NullFloat64{Float64: *tariff.MinimumBill, Valid: true}
	}

	const query = `
		INSERT INTO tariffs (name, slabs, fixed_charge, tax_rate, currency, minimum_bill, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET
			slabs = EXCLUDED.slabs,
			fixed_charge = EXCLUDED.fixed_charge,
			tax_rate = EXCLUDED.tax_rate,
			currency = EXCLUDED.currency,
			minimum_bill = EXCLUDED.minimum_bill,
			updated_at = NOW()
	`
	_, err = r.db.ExecContext(ctx, query,
		tariff.Name,
		slabsJSON,
		tariff.FixedCharge,
		tariff.TaxRate,
		tariff.Currency,
		minimumBill,
	)
	return err
}
