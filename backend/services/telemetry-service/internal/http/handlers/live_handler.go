package handlers

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	redisstore "smartmeter/backend/services/telemetry-service/internal/redis"
)

// NewLiveHandler returns GET /api/devices/{device_id}/live handler backed by
// the latest-sample cache. A missing key means the device has been quiet
// longer than the cache TTL.
func NewLiveHandler(store *redisstore.LiveStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.PathValue("device_id")
		if deviceID == "" {
			writeError(w, http.StatusBadRequest, "device_id required")
			return
		}

		reading, err := store.Get(r.Context(), deviceID)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				writeError(w, http.StatusNotFound, "no recent telemetry")
				return
			}
			logger.Error("failed to read live cache", zap.String("device_id", deviceID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to read live sample")
			return
		}
		writeJSON(w, http.StatusOK, reading)
	}
}
