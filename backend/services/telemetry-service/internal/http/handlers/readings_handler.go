package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"smartmeter/backend/services/telemetry-service/internal/repository"
)

const defaultReadingsWindow = 24 * time.Hour

// NewReadingsHandler returns GET /api/devices/{device_id}/readings handler.
// Optional from/to query params are RFC3339; the default window is the last 24 hours.
func NewReadingsHandler(repo *repository.ReadingRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.PathValue("device_id")
		if deviceID == "" {
			writeError(w, http.StatusBadRequest, "device_id required")
			return
		}

		to := time.Now().UTC()
		if raw := r.URL.Query().Get("to"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid to timestamp")
				return
			}
			to = parsed.UTC()
		}

		from := to.Add(-defaultReadingsWindow)
		if raw := r.URL.Query().Get("from"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid from timestamp")
				return
			}
			from = parsed.UTC()
		}

		readings, err := repo.ListByDeviceRange(r.Context(), deviceID, from, to)
		if err != nil {
			logger.Error("failed to query readings", zap.String("device_id", deviceID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to query readings")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"device_id": deviceID,
			"from":      from,
			"to":        to,
			"count":     len(readings),
			"readings":  readings,
		})
	}
}
