package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/andresuchdata/demandcast/internal/restock"
	"github.com/andresuchdata/demandcast/internal/service"
	"github.com/gin-gonic/gin"
)

type RestockHandler struct {
	service *service.RestockService
}

func NewRestockHandler(service *service.RestockService) *RestockHandler {
	return &RestockHandler{service: service}
}

func (h *RestockHandler) parseRestockRequest(q *queryParams) service.RestockRequest {
	return service.RestockRequest{
		SKU:             q.Str("sku"),
		Marketplace:     q.Str("marketplace"),
		HorizonDays:     q.Int("horizon_days"),
		Mode:            q.Str("mode"),
		IncludeUnmapped: q.Bool("include_unmapped"),
		LeadTimeDays:    q.Int("lead_time_days"),
		CurrentStock:    q.Float("current_stock"),
		DailyDemand:     q.Float("daily_demand"),
	}
}

func (h *RestockHandler) GetPlan(c *gin.Context) {
	q := newQueryParams(c)
	req := h.parseRestockRequest(q)
	if q.err != nil {
		respondError(c, "invalid restock request", q.err)
		return
	}

	plan, err := h.service.Plan(c.Request.Context(), req)
	if err != nil {
		respondError(c, "failed to compute restock plan", err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *RestockHandler) GetActions(c *gin.Context) {
	q := newQueryParams(c)
	req := service.ActionsRequest{
		Marketplace:     q.Str("marketplace"),
		HorizonDays:     q.Int("horizon_days"),
		Mode:            q.Str("mode"),
		IncludeUnmapped: q.Bool("include_unmapped"),
		LeadTimeDays:    q.Int("lead_time_days"),
	}
	if q.err != nil {
		respondError(c, "invalid restock request", q.err)
		return
	}

	actions, err := h.service.Actions(c.Request.Context(), req)
	if err != nil {
		respondError(c, "failed to compute restock actions", err)
		return
	}

	if status := strings.ToLower(q.Str("status")); status != "" {
		filtered := actions[:0]
		for _, a := range actions {
			if string(a.Status) == status {
				filtered = append(filtered, a)
			}
		}
		actions = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"items": actions,
		"total": len(actions),
	})
}

func (h *RestockHandler) GetAdvanced(c *gin.Context) {
	q := newQueryParams(c)
	req := h.parseRestockRequest(q)
	if q.err != nil {
		respondError(c, "invalid restock request", q.err)
		return
	}

	rec, err := h.service.Advanced(c.Request.Context(), req)
	if err != nil {
		respondError(c, "failed to compute restock recommendation", err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

type whatIfRequest struct {
	SKU             string                  `json:"sku" binding:"required"`
	Marketplace     string                  `json:"marketplace" binding:"required"`
	HorizonDays     int                     `json:"horizon_days"`
	Mode            string                  `json:"mode"`
	IncludeUnmapped *bool                   `json:"include_unmapped"`
	Overrides       restock.WhatIfOverrides `json:"overrides"`
}

func (h *RestockHandler) PostWhatIf(c *gin.Context) {
	var body whatIfRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, "invalid what-if request", fmt.Errorf("%w: %v", errBadParam, err))
		return
	}

	result, err := h.service.WhatIf(c.Request.Context(), service.RestockRequest{
		SKU:             body.SKU,
		Marketplace:     body.Marketplace,
		HorizonDays:     body.HorizonDays,
		Mode:            body.Mode,
		IncludeUnmapped: body.IncludeUnmapped,
	}, body.Overrides)
	if err != nil {
		respondError(c, "failed to compute what-if scenario", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
