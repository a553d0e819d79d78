package models

// SlabCharge is one line of a bill's slab breakdown.
type SlabCharge struct {
	Slab   string  `json:"slab"`
	Units  float64 `json:"units"`
	Rate   float64 `json:"rate"`
	Charge float64 `json:"charge"`
}

// Bill is a computed monthly charge. It is derived fresh from stored readings
// and the tariff on every computation and carries no timestamps, so identical
// inputs always produce an identical bill.
type Bill struct {
	DeviceID    string       `json:"device_id"`
	Month       string       `json:"month"`
	EnergyKWh   float64      `json:"energy_kwh"`
	Slabs       []SlabCharge `json:"slabs"`
	Subtotal    float64      `json:"subtotal"`
	FixedCharge float64      `json:"fixed_charge"`
	Tax         float64      `json:"tax"`
	Total       float64      `json:"total"`
	Currency    string       `json:"currency"`
	Status      string       `json:"status"`
}

// Bill statuses shared with invoices.
const (
	BillStatusIssued  = "issued"
	BillStatusPaid    = "paid"
	BillStatusOverdue = "overdue"
)
