package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"smartmeter/backend/services/billing-service/internal/service"
)

// NewInvoicesHandler returns GET /api/invoices/{device_id} handler.
func NewInvoicesHandler(svc *service.BillingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.PathValue("device_id")
		if deviceID == "" {
			writeError(w, http.StatusBadRequest, "device_id required")
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = parsed
		}

		invoices, err := svc.Invoices(r.Context(), deviceID, limit)
		if err != nil {
			logger.Error("failed to list invoices", zap.String("device_id", deviceID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list invoices")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"invoices": invoices,
		})
	}
}
