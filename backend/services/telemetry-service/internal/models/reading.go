package models

import "time"

// Reading is a single telemetry sample reported by a meter device.
// Readings are append-only: once stored they are never updated or deleted.
type Reading struct {
	ID          int64     `db:"id" json:"id"`
	DeviceID    string    `db:"device_id" json:"device_id"`
	Timestamp   time.Time `db:"ts" json:"timestamp"`
	Voltage     float64   `db:"voltage" json:"voltage"`
	Current     float64   `db:"current" json:"current"`
	PowerW      float64   `db:"power_w" json:"power_w"`
	PowerFactor float64   `db:"power_factor" json:"power_factor"`
	EnergyKWh   float64   `db:"energy_kwh" json:"energy_kwh"`
	RSSI        *int      `db:"rssi" json:"rssi,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
