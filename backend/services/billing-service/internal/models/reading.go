package models

import "time"

// MeterReading is the billing view of a telemetry sample: only the timestamp
// and the cumulative energy counter matter for computing a bill.
type MeterReading struct {
	DeviceID  string    `db:"device_id" json:"device_id"`
	Timestamp time.Time `db:"ts" json:"timestamp"`
	EnergyKWh float64   `db:"energy_kwh" json:"energy_kwh"`
}
