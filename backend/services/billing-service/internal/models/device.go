package models

import "time"

const (
	DeviceStatusOnline  = "online"
	DeviceStatusOffline = "offline"
	DeviceStatusError   = "error"
)

// Device is the registry view the batch job sweeps over.
type Device struct {
	DeviceID string    `db:"device_id" json:"device_id"`
	Status   string    `db:"status" json:"status"`
	LastSeen time.Time `db:"last_seen" json:"last_seen"`
}
