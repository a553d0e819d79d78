package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartmeter/backend/services/billing-service/internal/models"
)

// Billing errors. All are "no bill produced" outcomes for the caller to map;
// none aborts sibling work in a batch run.
var (
	ErrInvalidPeriod   = errors.New("billing: invalid period")
	ErrNoData          = errors.New("billing: no readings for period")
	ErrNoTariff        = errors.New("billing: default tariff not found")
	ErrAlreadyInvoiced = errors.New("billing: period already invoiced")
)

const invoiceDueDays = 15

// ReadingSource returns a device's readings for a half-open period,
// ascending by timestamp.
type ReadingSource interface {
	ListForPeriod(ctx context.Context, deviceID string, start, end time.Time) ([]models.MeterReading, error)
}

// TariffSource resolves the authoritative tariff.
type TariffSource interface {
	Get(ctx context.Context) (*models.Tariff, error)
}

// InvoiceStore persists and lists invoices.
type InvoiceStore interface {
	Create(ctx context.Context, invoice *models.Invoice) (created bool, err error)
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]models.Invoice, error)
}

// BillingService computes tiered monthly bills from the reading timeline.
type BillingService struct {
	readings ReadingSource
	tariffs  TariffSource
	invoices InvoiceStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewBillingService builds service.
func NewBillingService(readings ReadingSource, tariffs TariffSource, invoices InvoiceStore, logger *zap.Logger) *BillingService {
	return &BillingService{
		readings: readings,
		tariffs:  tariffs,
		invoices: invoices,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ComputeBill derives the bill for one device and one YYYY-MM period. It is a
// pure function of stored readings and the tariff: calling it twice against
// unchanged state yields an identical bill.
func (s *BillingService) ComputeBill(ctx context.Context, deviceID, month string) (*models.Bill, error) {
	start, end, err := periodRange(month)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, month)
	}

	readings, err := s.readings.ListForPeriod(ctx, deviceID, start, end)
	if err != nil {
		return nil, fmt.Errorf("billing: query readings: %w", err)
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("%w: device %s month %s", ErrNoData, deviceID, month)
	}

	// Net energy from the cumulative counter: last minus first in
	// chronological order, clamped so a counter reset never bills negative.
	net := readings[len(readings)-1].EnergyKWh - readings[0].EnergyKWh
	if net < 0 {
		net = 0
	}

	tariff, err := s.tariffs.Get(ctx)
	if err != nil {
		return nil, err
	}
	bounds, err := parseSlabs(tariff.Slabs)
	if err != nil {
		return nil, fmt.Errorf("billing: invalid tariff %q: %w", tariff.Name, err)
	}

	energy := decimal.NewFromFloat(net)
	remaining := energy
	subtotal := decimal.Zero
	prevUpper := decimal.Zero
	var breakdown []models.SlabCharge

	for _, bound := range bounds {
		if remaining.IsZero() {
			break
		}
		width := remaining
		if !bound.open {
			width = bound.upper.Sub(prevUpper)
			prevUpper = bound.upper
		}
		units := decimal.Min(remaining, width)
		if units.IsZero() {
			continue
		}
		charge := units.Mul(bound.rate)
		subtotal = subtotal.Add(charge)
		remaining = remaining.Sub(units)

		// Breakdown figures are rounded copies for display; accumulation
		// stays at full precision.
		breakdown = append(breakdown, models.SlabCharge{
			Slab:   bound.label,
			Units:  round2(units),
			Rate:   bound.rate.InexactFloat64(),
			Charge: round2(charge),
		})
	}

	fixedCharge := decimal.NewFromFloat(tariff.FixedCharge)
	totalBeforeTax := subtotal.Add(fixedCharge)
	tax := totalBeforeTax.Mul(decimal.NewFromFloat(tariff.TaxRate))
	total := totalBeforeTax.Add(tax)

	minimumBill := fixedCharge
	if tariff.MinimumBill != nil {
		minimumBill = decimal.NewFromFloat(*tariff.MinimumBill)
	}
	if total.LessThan(minimumBill) {
		total = minimumBill
	}

	currency := tariff.Currency
	if currency == "" {
		currency = "INR"
	}

	return &models.Bill{
		DeviceID:    deviceID,
		Month:       month,
		EnergyKWh:   round2(energy),
		Slabs:       breakdown,
		Subtotal:    round2(subtotal),
		FixedCharge: round2(fixedCharge),
		Tax:         round2(tax),
		Total:       round2(total),
		Currency:    currency,
		Status:      models.BillStatusIssued,
	}, nil
}

// GenerateInvoice persists a computed bill as an invoice due in 15 days.
// A period that is already invoiced yields ErrAlreadyInvoiced.
func (s *BillingService) GenerateInvoice(ctx context.Context, bill *models.Bill) (*models.Invoice, error) {
	now := s.now()
	invoice := &models.Invoice{
		ID:          uuid.NewString(),
		DeviceID:    bill.DeviceID,
		Month:       bill.Month,
		EnergyKWh:   bill.EnergyKWh,
		Slabs:       bill.Slabs,
		Subtotal:    bill.Subtotal,
		FixedCharge: bill.FixedCharge,
		Tax:         bill.Tax,
		Total:       bill.Total,
		Currency:    bill.Currency,
		Status:      bill.Status,
		CreatedAt:   now,
		DueDate:     now.AddDate(0, 0, invoiceDueDays),
	}

	created, err := s.invoices.Create(ctx, invoice)
	if err != nil {
		return nil, fmt.Errorf("billing: store invoice: %w", err)
	}
	if !created {
		return nil, fmt.Errorf("%w: device %s month %s", ErrAlreadyInvoiced, bill.DeviceID, bill.Month)
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID),
		zap.String("device_id", invoice.DeviceID),
		zap.String("month", invoice.Month),
		zap.Float64("total", invoice.Total),
	)
	return invoice, nil
}

// InvoiceForPeriod computes and persists in one step.
func (s *BillingService) InvoiceForPeriod(ctx context.Context, deviceID, month string) (*models.Invoice, error) {
	bill, err := s.ComputeBill(ctx, deviceID, month)
	if err != nil {
		return nil, err
	}
	return s.GenerateInvoice(ctx, bill)
}

// Invoices returns invoice history for a device, newest period first.
func (s *BillingService) Invoices(ctx context.Context, deviceID string, limit int) ([]models.Invoice, error) {
	return s.invoices.ListByDevice(ctx, deviceID, limit)
}

// periodRange converts a YYYY-MM key to the UTC half-open month range.
func periodRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
