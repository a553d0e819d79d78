package models

import "time"

// Invoice is a persisted Bill plus billing metadata. Payment and delivery
// fields are mutated by downstream processes, not by this service.
type Invoice struct {
	ID          string       `db:"id" json:"id"`
	DeviceID    string       `db:"device_id" json:"device_id"`
	Month       string       `db:"month" json:"month"`
	EnergyKWh   float64      `db:"energy_kwh" json:"energy_kwh"`
	Slabs       []SlabCharge `db:"slabs" json:"slabs"`
	Subtotal    float64      `db:"subtotal" json:"subtotal"`
	FixedCharge float64      `db:"fixed_charge" json:"fixed_charge"`
	Tax         float64      `db:"tax" json:"tax"`
	Total       float64      `db:"total" json:"total"`
	Currency    string       `db:"currency" json:"currency"`
	Status      string       `db:"status" json:"status"`
	EmailSent   bool         `db:"email_sent" json:"email_sent"`
	PDFURL      string       `db:"pdf_url" json:"pdf_url,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	DueDate     time.Time    `db:"due_date" json:"due_date"`
	PaidDate    *time.Time   `db:"paid_date" json:"paid_date,omitempty"`
}
