package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartmeter/backend/services/billing-service/internal/models"
)

type fakeDevices struct {
	devices []models.Device
	err     error
}

func (f *fakeDevices) ListBillable(_ context.Context) ([]models.Device, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.devices, nil
}

func newTestJob(devices *fakeDevices, billing *BillingService) *BillingJob {
	job := NewBillingJob(devices, billing, zap.NewNop())
	job.now = func() time.Time { return time.Date(2026, time.September, 3, 2, 0, 0, 0, time.UTC) }
	return job
}

func TestBillingJobSweep(t *testing.T) {
	readings := &fakeReadings{
		readings: map[string][]models.MeterReading{
			"meter-ok":    countersFor("meter-ok", "2026-08", 100, 250),
			"meter-other": countersFor("meter-other", "2026-08", 0, 480),
		},
		errFor: map[string]error{"meter-broken": errors.New("query timeout")},
	}
	invoices := &fakeInvoices{}
	billing := newTestService(readings, &fakeTariffs{tariff: defaultTariff()}, invoices)

	devices := &fakeDevices{devices: []models.Device{
		{DeviceID: "meter-ok", Status: models.DeviceStatusOnline},
		{DeviceID: "meter-other", Status: models.DeviceStatusOffline},
		{DeviceID: "meter-quiet", Status: models.DeviceStatusError},
		{DeviceID: "meter-broken", Status: models.DeviceStatusOnline},
	}}
	job := newTestJob(devices, billing)

	summary, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2026-08", summary.Month)
	assert.Equal(t, 4, summary.Devices)
	assert.Equal(t, 2, summary.Generated)
	assert.Equal(t, 1, summary.Skipped) // meter-quiet has no readings
	assert.Equal(t, 1, summary.Errors)  // meter-broken storage failure
	require.Len(t, invoices.invoices, 2)
}

func TestBillingJobRerunSkipsInvoicedPeriods(t *testing.T) {
	readings := &fakeReadings{readings: map[string][]models.MeterReading{
		"meter-ok": countersFor("meter-ok", "2026-08", 100, 250),
	}}
	invoices := &fakeInvoices{}
	billing := newTestService(readings, &fakeTariffs{tariff: defaultTariff()}, invoices)
	devices := &fakeDevices{devices: []models.Device{{DeviceID: "meter-ok", Status: models.DeviceStatusOnline}}}
	job := newTestJob(devices, billing)

	first, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Generated)

	second, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Generated)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 0, second.Errors)
	require.Len(t, invoices.invoices, 1)
}

func TestBillingJobFatalWhenEnumerationFails(t *testing.T) {
	billing := newTestService(&fakeReadings{}, &fakeTariffs{tariff: defaultTariff()}, &fakeInvoices{})
	job := newTestJob(&fakeDevices{err: errors.New("db down")}, billing)

	_, err := job.Run(context.Background())
	require.Error(t, err)
}

func TestPreviousMonth(t *testing.T) {
	cases := map[time.Time]string{
		time.Date(2026, time.September, 3, 2, 0, 0, 0, time.UTC): "2026-08",
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC):   "2025-12",
		time.Date(2026, time.March, 31, 23, 0, 0, 0, time.UTC):   "2026-02",
	}
	for now, want := range cases {
		assert.Equal(t, want, previousMonth(now), now.String())
	}
}
