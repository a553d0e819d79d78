package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"smartmeter/backend/services/billing-service/internal/models"
)

// DeviceLister enumerates devices for the batch sweep.
type DeviceLister interface {
	ListBillable(ctx context.Context) ([]models.Device, error)
}

// JobSummary reports one batch run.
type JobSummary struct {
	Month     string `json:"month"`
	Devices   int    `json:"devices"`
	Generated int    `json:"generated"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
}

// BillingJob invoices every known device for the previous calendar month.
// Per-device failures are absorbed and counted; only a failure to enumerate
// devices aborts the run.
type BillingJob struct {
	devices DeviceLister
	billing *BillingService
	logger  *zap.Logger
	now     func() time.Time
}

// NewBillingJob builds job.
func NewBillingJob(devices DeviceLister, billing *BillingService, logger *zap.Logger) *BillingJob {
	return &BillingJob{
		devices: devices,
		billing: billing,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one sweep.
func (j *BillingJob) Run(ctx context.Context) (*JobSummary, error) {
	devices, err := j.devices.ListBillable(ctx)
	if err != nil {
		return nil, err
	}

	month := previousMonth(j.now())
	summary := &JobSummary{Month: month, Devices: len(devices)}
	j.logger.Info("starting monthly billing job",
		zap.String("month", month),
		zap.Int("devices", len(devices)),
	)

	for _, device := range devices {
		_, err := j.billing.InvoiceForPeriod(ctx, device.DeviceID, month)
		switch {
		case err == nil:
			summary.Generated++
		case errors.Is(err, ErrNoData), errors.Is(err, ErrAlreadyInvoiced):
			summary.Skipped++
			j.logger.Warn("no invoice generated",
				zap.String("device_id", device.DeviceID),
				zap.String("month", month),
				zap.Error(err),
			)
		default:
			summary.Errors++
			j.logger.Error("failed to invoice device",
				zap.String("device_id", device.DeviceID),
				zap.String("month", month),
				zap.Error(err),
			)
		}
	}

	j.logger.Info("billing job completed",
		zap.String("month", month),
		zap.Int("generated", summary.Generated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
	)
	return summary, nil
}

// previousMonth returns the YYYY-MM key of the calendar month before now.
func previousMonth(now time.Time) string {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, -1, 0).Format("2006-01")
}
