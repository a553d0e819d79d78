package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"smartmeter/backend/services/billing-service/internal/models"
)

const defaultInvoiceLimit = 12

// InvoiceRepository persists generated invoices.
type InvoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository returns repository.
func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create inserts a new invoice. The (device_id, month) unique index makes
// re-billing a period idempotent: the second insert affects no rows and
// Create reports created=false.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) (bool, error) {
	slabsJSON, err := json.Marshal(invoice.Slabs)
	if err != nil {
		return false, err
	}

	const query = `
		INSERT INTO invoices (id, device_id, month, energy_kwh, slabs, subtotal, fixed_charge, tax, total, currency, status, email_sent, pdf_url, created_at, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (device_id, month) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.DeviceID,
		invoice.Month,
		invoice.EnergyKWh,
		slabsJSON,
		invoice.Subtotal,
		invoice.FixedCharge,
		invoice.Tax,
		invoice.Total,
		invoice.Currency,
		invoice.Status,
		invoice.EmailSent,
		invoice.PDFURL,
		invoice.CreatedAt,
		invoice.DueDate,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListByDevice returns latest invoices for device, descending by period.
func (r *InvoiceRepository) ListByDevice(ctx context.Context, deviceID string, limit int) ([]models.Invoice, error) {
	if limit <= 0 {
		limit = defaultInvoiceLimit
	}
	const query = `
		SELECT id, device_id, month, energy_kwh, slabs, subtotal, fixed_charge, tax, total, currency, status, email_sent, pdf_url, created_at, due_date, paid_date
		FROM invoices
		WHERE device_id = $1
		ORDER BY month DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var (
			invoice   models.Invoice
			slabsJSON []byte
			paidDate  sql.NullTime
		)
		if err := rows.Scan(
			&invoice.ID,
			&invoice.DeviceID,
			&invoice.Month,
			&invoice.EnergyKWh,
			&slabsJSON,
			&invoice.Subtotal,
			&invoice.FixedCharge,
			&invoice.Tax,
			&invoice.Total,
			&invoice.Currency,
			&invoice.Status,
			&invoice.EmailSent,
			&invoice.PDFURL,
			&invoice.CreatedAt,
			&invoice.DueDate,
			&paidDate,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(slabsJSON, &invoice.Slabs); err != nil {
			return nil, fmt.Errorf("invoice %s: decode slabs: %w", invoice.ID, err)
		}
		if paidDate.Valid {
			invoice.PaidDate = &paidDate.Time
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invoices, nil
}
