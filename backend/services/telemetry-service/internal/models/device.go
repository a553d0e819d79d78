package models

import "time"

// Device lifecycle statuses.
const (
	DeviceStatusOnline  = "online"
	DeviceStatusOffline = "offline"
	DeviceStatusError   = "error"
)

// Device is a meter registry entry. It may be created implicitly by the
// first telemetry message from an unknown device.
type Device struct {
	ID              int64     `db:"id" json:"-"`
	DeviceID        string    `db:"device_id" json:"device_id"`
	Name            string    `db:"name" json:"name"`
	Location        string    `db:"location" json:"location"`
	Status          string    `db:"status" json:"status"`
	LastSeen        time.Time `db:"last_seen" json:"last_seen"`
	FirmwareVersion string    `db:"firmware_version" json:"firmware_version"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
