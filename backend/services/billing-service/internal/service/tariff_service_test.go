package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartmeter/backend/services/billing-service/internal/models"
)

type fakeTariffStore struct {
	tariff   *models.Tariff
	getErr   error
	replaced *models.Tariff
}

func (f *fakeTariffStore) GetByName(_ context.Context, name string) (*models.Tariff, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.tariff == nil || f.tariff.Name != name {
		return nil, sql.ErrNoRows
	}
	return f.tariff, nil
}

func (f *fakeTariffStore) Replace(_ context.Context, tariff *models.Tariff) error {
	f.replaced = tariff
	return nil
}

func TestTariffServiceGetMapsMissingRow(t *testing.T) {
	svc := NewTariffService(&fakeTariffStore{})
	_, err := svc.Get(context.Background())
	require.ErrorIs(t, err, ErrNoTariff)
}

func TestTariffServiceGet(t *testing.T) {
	store := &fakeTariffStore{tariff: defaultTariff()}
	svc := NewTariffService(store)

	tariff, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTariffName, tariff.Name)
}

func TestTariffServiceReplaceValidatesAndDefaults(t *testing.T) {
	store := &fakeTariffStore{}
	svc := NewTariffService(store)

	err := svc.Replace(context.Background(), &models.Tariff{
		Slabs:       []models.Slab{{Range: "0-100", Rate: 2}, {Range: "101+", Rate: 4}},
		FixedCharge: 30,
		TaxRate:     0.05,
	})
	require.NoError(t, err)
	require.NotNil(t, store.replaced)
	assert.Equal(t, models.DefaultTariffName, store.replaced.Name)
	assert.Equal(t, "INR", store.replaced.Currency)
}

func TestTariffServiceReplaceRejectsInvalid(t *testing.T) {
	svc := NewTariffService(&fakeTariffStore{})

	cases := []*models.Tariff{
		{Slabs: nil, FixedCharge: 10, TaxRate: 0.1},
		{Slabs: []models.Slab{{Range: "0-100", Rate: 2}}, FixedCharge: -1, TaxRate: 0.1},
		{Slabs: []models.Slab{{Range: "0-100", Rate: 2}}, FixedCharge: 10, TaxRate: 1.5},
	}
	for i, tariff := range cases {
		err := svc.Replace(context.Background(), tariff)
		require.ErrorIs(t, err, ErrInvalidTariff, "case %d", i)
	}
}
