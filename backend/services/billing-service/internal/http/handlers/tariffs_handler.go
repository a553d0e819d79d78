package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"smartmeter/backend/services/billing-service/internal/models"
	"smartmeter/backend/services/billing-service/internal/service"
)

// NewGetTariffHandler returns GET /api/tariffs handler.
func NewGetTariffHandler(svc *service.TariffService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tariff, err := svc.Get(r.Context())
		if err != nil {
			if errors.Is(err, service.ErrNoTariff) {
				writeError(w, http.StatusNotFound, "default tariff not configured")
				return
			}
			logger.Error("failed to load tariff", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load tariff")
			return
		}
		writeJSON(w, http.StatusOK, tariff)
	}
}

type updateTariffRequest struct {
	Slabs       []models.Slab `json:"slabs"`
	FixedCharge float64       `json:"fixed_charge"`
	TaxRate     float64       `json:"tax_rate"`
	Currency    string        `json:"currency"`
	MinimumBill *float64      `json:"minimum_bill"`
}

// NewUpdateTariffHandler returns PUT /api/tariffs handler. The schedule is
// validated and replaced wholesale.
func NewUpdateTariffHandler(svc *service.TariffService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateTariffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		tariff := &models.Tariff{
			Slabs:       req.Slabs,
			FixedCharge: req.FixedCharge,
			TaxRate:     req.TaxRate,
			Currency:    req.Currency,
			MinimumBill: req.MinimumBill,
		}
		if err := svc.Replace(r.Context(), tariff); err != nil {
			if errors.Is(err, service.ErrInvalidTariff) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error("failed to update tariff", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to update tariff")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "tariff updated",
			"tariff":  tariff,
		})
	}
}
