package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"smartmeter/backend/services/billing-service/internal/service"
)

// NewBillHandler returns GET /api/billing/{device_id} handler. The month
// query param defaults to the current calendar month.
func NewBillHandler(svc *service.BillingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.PathValue("device_id")
		if deviceID == "" {
			writeError(w, http.StatusBadRequest, "device_id required")
			return
		}
		month := r.URL.Query().Get("month")
		if month == "" {
			month = time.Now().UTC().Format("2006-01")
		}

		bill, err := svc.ComputeBill(r.Context(), deviceID, month)
		if err != nil {
			writeBillingError(w, logger, deviceID, err)
			return
		}
		writeJSON(w, http.StatusOK, bill)
	}
}

// NewCreateInvoiceHandler returns POST /api/billing/{device_id}/invoice handler.
func NewCreateInvoiceHandler(svc *service.BillingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.PathValue("device_id")
		if deviceID == "" {
			writeError(w, http.StatusBadRequest, "device_id required")
			return
		}
		month := r.URL.Query().Get("month")
		if month == "" {
			month = time.Now().UTC().Format("2006-01")
		}

		invoice, err := svc.InvoiceForPeriod(r.Context(), deviceID, month)
		if err != nil {
			writeBillingError(w, logger, deviceID, err)
			return
		}
		writeJSON(w, http.StatusCreated, invoice)
	}
}

func writeBillingError(w http.ResponseWriter, logger *zap.Logger, deviceID string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
	case errors.Is(err, service.ErrNoData):
		writeError(w, http.StatusNotFound, "no readings for period")
	case errors.Is(err, service.ErrNoTariff):
		writeError(w, http.StatusNotFound, "default tariff not configured")
	case errors.Is(err, service.ErrAlreadyInvoiced):
		writeError(w, http.StatusConflict, "invoice already exists for period")
	default:
		logger.Error("billing computation failed", zap.String("device_id", deviceID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "billing computation failed")
	}
}
