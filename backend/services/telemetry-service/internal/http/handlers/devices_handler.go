package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"smartmeter/backend/services/telemetry-service/internal/repository"
)

// NewDevicesHandler returns GET /api/devices handler.
func NewDevicesHandler(repo *repository.DeviceRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		devices, err := repo.List(r.Context())
		if err != nil {
			logger.Error("failed to list devices", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list devices")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"devices": devices,
			"count":   len(devices),
		})
	}
}

// NewDeviceHandler returns GET /api/devices/{device_id} handler.
func NewDeviceHandler(repo *repository.DeviceRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.PathValue("device_id")
		if deviceID == "" {
			writeError(w, http.StatusBadRequest, "device_id required")
			return
		}

		device, err := repo.GetByID(r.Context(), deviceID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeError(w, http.StatusNotFound, "device not found")
				return
			}
			logger.Error("failed to load device", zap.String("device_id", deviceID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load device")
			return
		}
		writeJSON(w, http.StatusOK, device)
	}
}
