// README: Tariff handlers: merged company view and override upsert.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viax/internal/modules/tariff"
	"viax/internal/types"
)

type TariffHandler struct {
	tariffs *tariff.Service
}

func NewTariffHandler(svc *tariff.Service) *TariffHandler {
	return &TariffHandler{tariffs: svc}
}

type tariffResponse struct {
	ID                      int64    `json:"id"`
	CompanyID               *string  `json:"company_id,omitempty"`
	VehicleType             string   `json:"vehicle_type"`
	BaseFare                float64  `json:"base_fare"`
	CostPerKm               float64  `json:"cost_per_km"`
	CostPerMin              float64  `json:"cost_per_min"`
	MinFare                 float64  `json:"min_fare"`
	MaxFare                 *float64 `json:"max_fare,omitempty"`
	PlatformCommissionPct   float64  `json:"platform_commission_pct"`
	PeakSurchargePct        float64  `json:"peak_surcharge_pct"`
	MorningPeakStart        string   `json:"morning_peak_start"`
	MorningPeakEnd          string   `json:"morning_peak_end"`
	EveningPeakStart        string   `json:"evening_peak_start"`
	EveningPeakEnd          string   `json:"evening_peak_end"`
	NightSurchargePct       float64  `json:"night_surcharge_pct"`
	NightStart              string   `json:"night_start"`
	NightEnd                string   `json:"night_end"`
	LongDistanceThresholdKm float64  `json:"long_distance_threshold_km"`
	LongDistanceDiscountPct float64  `json:"long_distance_discount_pct"`
	Active                  bool     `json:"active"`
	Global                  bool     `json:"global"`
}

func tariffToResponse(cfg tariff.Config) tariffResponse {
	resp := tariffResponse{
		ID:                      cfg.ID,
		VehicleType:             cfg.VehicleType,
		BaseFare:                cfg.BaseFare,
		CostPerKm:               cfg.CostPerKm,
		CostPerMin:              cfg.CostPerMin,
		MinFare:                 cfg.MinFare,
		MaxFare:                 cfg.MaxFare,
		PlatformCommissionPct:   cfg.PlatformCommissionPct,
		PeakSurchargePct:        cfg.PeakSurchargePct,
		MorningPeakStart:        cfg.MorningPeakStart,
		MorningPeakEnd:          cfg.MorningPeakEnd,
		EveningPeakStart:        cfg.EveningPeakStart,
		EveningPeakEnd:          cfg.EveningPeakEnd,
		NightSurchargePct:       cfg.NightSurchargePct,
		NightStart:              cfg.NightStart,
		NightEnd:                cfg.NightEnd,
		LongDistanceThresholdKm: cfg.LongDistanceThresholdKm,
		LongDistanceDiscountPct: cfg.LongDistanceDiscountPct,
		Active:                  cfg.Active,
		Global:                  cfg.Global(),
	}
	if cfg.CompanyID != nil {
		v := string(*cfg.CompanyID)
		resp.CompanyID = &v
	}
	return resp
}

// List returns the merged tariff view for a company: its overrides where
// present, the global defaults elsewhere.
func (h *TariffHandler) List(c *gin.Context) {
	companyID := c.Query("company_id")
	if companyID == "" {
		writeError(c, http.StatusBadRequest, "missing company_id")
		return
	}
	configs, err := h.tariffs.ListForCompany(c.Request.Context(), types.ID(companyID))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]tariffResponse, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, tariffToResponse(cfg))
	}
	writeJSON(c, http.StatusOK, map[string]any{"tariffs": out})
}

type upsertTariffReq struct {
	CompanyID               string   `json:"company_id"`
	VehicleType             string   `json:"vehicle_type"`
	BaseFare                float64  `json:"base_fare"`
	CostPerKm               float64  `json:"cost_per_km"`
	CostPerMin              float64  `json:"cost_per_min"`
	MinFare                 float64  `json:"min_fare"`
	MaxFare                 *float64 `json:"max_fare"`
	PlatformCommissionPct   float64  `json:"platform_commission_pct"`
	PeakSurchargePct        float64  `json:"peak_surcharge_pct"`
	MorningPeakStart        string   `json:"morning_peak_start"`
	MorningPeakEnd          string   `json:"morning_peak_end"`
	EveningPeakStart        string   `json:"evening_peak_start"`
	EveningPeakEnd          string   `json:"evening_peak_end"`
	NightSurchargePct       float64  `json:"night_surcharge_pct"`
	NightStart              string   `json:"night_start"`
	NightEnd                string   `json:"night_end"`
	LongDistanceThresholdKm float64  `json:"long_distance_threshold_km"`
	LongDistanceDiscountPct float64  `json:"long_distance_discount_pct"`
	Active                  *bool    `json:"active"`
}

func (h *TariffHandler) Upsert(c *gin.Context) {
	var req upsertTariffReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.VehicleType == "" {
		writeError(c, http.StatusBadRequest, "missing vehicle_type")
		return
	}
	cfg := tariff.Config{
		VehicleType:             req.VehicleType,
		BaseFare:                req.BaseFare,
		CostPerKm:               req.CostPerKm,
		CostPerMin:              req.CostPerMin,
		MinFare:                 req.MinFare,
		MaxFare:                 req.MaxFare,
		PlatformCommissionPct:   req.PlatformCommissionPct,
		PeakSurchargePct:        req.PeakSurchargePct,
		MorningPeakStart:        req.MorningPeakStart,
		MorningPeakEnd:          req.MorningPeakEnd,
		EveningPeakStart:        req.EveningPeakStart,
		EveningPeakEnd:          req.EveningPeakEnd,
		NightSurchargePct:       req.NightSurchargePct,
		NightStart:              req.NightStart,
		NightEnd:                req.NightEnd,
		LongDistanceThresholdKm: req.LongDistanceThresholdKm,
		LongDistanceDiscountPct: req.LongDistanceDiscountPct,
		Active:                  true,
	}
	if req.Active != nil {
		cfg.Active = *req.Active
	}
	if req.CompanyID != "" {
		id := types.ID(req.CompanyID)
		cfg.CompanyID = &id
	}
	if err := h.tariffs.Upsert(c.Request.Context(), &cfg); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, tariffToResponse(cfg))
}
