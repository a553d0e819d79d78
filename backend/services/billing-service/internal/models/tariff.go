package models

import "time"

// Slab is one contiguous unit range billed at a single rate. Range is the
// persisted label: "0-100", "101-300" or "301+" for the open-ended final slab.
type Slab struct {
	Range string  `json:"range"`
	Rate  float64 `json:"rate"`
}

// Tariff is the slab schedule used to price consumption. Exactly one tariff
// named "default" is authoritative; updates replace it wholesale.
type Tariff struct {
	ID          int64     `db:"id" json:"-"`
	Name        string    `db:"name" json:"name"`
	Slabs       []Slab    `db:"slabs" json:"slabs"`
	FixedCharge float64   `db:"fixed_charge" json:"fixed_charge"`
	TaxRate     float64   `db:"tax_rate" json:"tax_rate"`
	Currency    string    `db:"currency" json:"currency"`
	MinimumBill *float64  `db:"minimum_bill" json:"minimum_bill,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultTariffName identifies the authoritative tariff.
const DefaultTariffName = "default"
