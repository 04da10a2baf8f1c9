package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/repository/memory"
	"github.com/andresuchdata/demandcast/internal/service"
	"github.com/gin-gonic/gin"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	store := &memory.Store{
		Mappings: []domain.SKUMapping{
			{SKU: "A", Marketplace: "amazon", Status: domain.MappingStatusConfirmed},
			{SKU: "S", Marketplace: "amazon", Status: domain.MappingStatusConfirmed},
		},
		Inventory: []domain.InventoryLevel{
			{SKU: "A", Marketplace: "amazon", OnHandUnits: 40},
			{SKU: "S", Marketplace: "amazon", OnHandUnits: 2},
		},
	}
	for i := 0; i < 45; i++ {
		store.Sales = append(store.Sales, domain.SalesRow{Date: end.AddDate(0, 0, -i), SKU: "A", Marketplace: "amazon", Units: 6})
	}
	for i := 0; i < 3; i++ {
		store.Sales = append(store.Sales, domain.SalesRow{Date: end.AddDate(0, 0, -i), SKU: "S", Marketplace: "amazon", Units: 1})
	}

	forecasts := service.NewForecastService(store, store, store, nil, service.DefaultSettings())
	restocks := service.NewRestockService(forecasts, store, store)
	return NewRouter(&Services{ForecastService: forecasts, RestockService: restocks}, []string{"*"})
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(testRouter(t), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestForecastEndpoint(t *testing.T) {
	rec := doRequest(testRouter(t), http.MethodGet, "/api/v1/forecast?sku=A&marketplace=amazon&horizon_days=7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report domain.ForecastReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Forecast) != 7 {
		t.Fatalf("expected 7 forecast points, got %d", len(report.Forecast))
	}
	if report.Scope.SKU != "A" || report.Scope.Marketplace != "amazon" {
		t.Fatalf("unexpected scope %+v", report.Scope)
	}
}

func TestErrorStatusCodes(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   []byte
		want   int
	}{
		{name: "unknown marketplace", method: http.MethodGet, path: "/api/v1/forecast?sku=A&marketplace=etsy", want: http.StatusBadRequest},
		{name: "horizon not a number", method: http.MethodGet, path: "/api/v1/forecast?sku=A&horizon_days=abc", want: http.StatusBadRequest},
		{name: "horizon too long", method: http.MethodGet, path: "/api/v1/forecast?sku=A&horizon_days=90", want: http.StatusBadRequest},
		{name: "bad end date", method: http.MethodGet, path: "/api/v1/forecast/demand?end_date=31-03-2024", want: http.StatusBadRequest},
		{name: "plan without sku", method: http.MethodGet, path: "/api/v1/restock/plan?marketplace=amazon", want: http.StatusBadRequest},
		{name: "plan with short history", method: http.MethodGet, path: "/api/v1/restock/plan?sku=S&marketplace=amazon", want: http.StatusUnprocessableEntity},
		{name: "what-if missing sku", method: http.MethodPost, path: "/api/v1/restock/what-if", body: []byte(`{"marketplace":"amazon"}`), want: http.StatusBadRequest},
		{name: "plan with NaN stock", method: http.MethodGet, path: "/api/v1/restock/plan?sku=A&marketplace=amazon&current_stock=NaN", want: http.StatusBadRequest},
		{name: "advanced with huge demand", method: http.MethodGet, path: "/api/v1/restock/advanced?sku=A&marketplace=amazon&daily_demand=1e300", want: http.StatusBadRequest},
		{name: "what-if bad service level", method: http.MethodPost, path: "/api/v1/restock/what-if", body: []byte(`{"sku":"A","marketplace":"amazon","overrides":{"service_level":2}}`), want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}

			var payload map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if payload["error"] == "" || payload["details"] == "" {
				t.Fatalf("expected error and details, got %v", payload)
			}
		})
	}
}

func TestRestockEndpoints(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(router, http.MethodGet, "/api/v1/restock/plan?sku=A&marketplace=amazon&lead_time_days=14", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("plan: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var plan domain.RestockPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if plan.Status != domain.RestockUrgent {
		t.Fatalf("expected urgent with 40 units at 6/day, got %s", plan.Status)
	}

	rec = doRequest(router, http.MethodGet, "/api/v1/restock/actions?marketplace=amazon", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("actions: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var actions struct {
		Items []domain.RestockAction `json:"items"`
		Total int                    `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &actions); err != nil {
		t.Fatalf("decode actions: %v", err)
	}
	if actions.Total != 2 || actions.Items[0].SKU != "A" || actions.Items[1].Color != "grey" {
		t.Fatalf("unexpected actions: %+v", actions)
	}

	rec = doRequest(router, http.MethodGet, "/api/v1/restock/actions?marketplace=amazon&status=urgent", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &actions); err != nil {
		t.Fatalf("decode filtered actions: %v", err)
	}
	if actions.Total != 1 {
		t.Fatalf("expected one urgent action, got %d", actions.Total)
	}

	rec = doRequest(router, http.MethodPost, "/api/v1/restock/what-if", []byte(`{"sku":"A","marketplace":"amazon","overrides":{"on_hand_units":1000}}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("what-if: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result domain.WhatIfResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode what-if: %v", err)
	}
	if result.Scenario.RecommendedOrderUnitsRounded != 0 {
		t.Fatalf("expected no order with 1000 units on hand, got %d", result.Scenario.RecommendedOrderUnitsRounded)
	}
}
