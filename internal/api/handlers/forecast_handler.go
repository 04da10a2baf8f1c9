package handlers

import (
	"net/http"

	"github.com/andresuchdata/demandcast/internal/service"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

func (h *ForecastHandler) parseDemandRequest(q *queryParams) service.DemandRequest {
	return service.DemandRequest{
		SKU:             q.Str("sku"),
		Marketplace:     q.Str("marketplace"),
		Mode:            q.Str("mode"),
		IncludeUnmapped: q.Bool("include_unmapped"),
		Start:           q.Date("start_date"),
		End:             q.Date("end_date"),
	}
}

func (h *ForecastHandler) GetForecast(c *gin.Context) {
	q := newQueryParams(c)
	req := service.ForecastRequest{
		SKU:             q.Str("sku"),
		Marketplace:     q.Str("marketplace"),
		HorizonDays:     q.Int("horizon_days"),
		Mode:            q.Str("mode"),
		IncludeUnmapped: q.Bool("include_unmapped"),
		EndDate:         q.Date("end_date"),
		LeadTimeDays:    q.Int("lead_time_days"),
		CurrentStock:    q.Float("current_stock"),
	}
	if q.err != nil {
		respondError(c, "invalid forecast request", q.err)
		return
	}

	report, err := h.service.Forecast(c.Request.Context(), req)
	if err != nil {
		respondError(c, "failed to compute forecast", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ForecastHandler) GetDemand(c *gin.Context) {
	q := newQueryParams(c)
	req := h.parseDemandRequest(q)
	if q.err != nil {
		respondError(c, "invalid demand request", q.err)
		return
	}

	report, err := h.service.Demand(c.Request.Context(), req)
	if err != nil {
		respondError(c, "failed to fetch demand", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ForecastHandler) GetBacktest(c *gin.Context) {
	q := newQueryParams(c)
	req := h.parseDemandRequest(q)
	if q.err != nil {
		respondError(c, "invalid backtest request", q.err)
		return
	}

	report, err := h.service.Backtest(c.Request.Context(), req)
	if err != nil {
		respondError(c, "failed to run backtest", err)
		return
	}

	c.JSON(http.StatusOK, report)
}
