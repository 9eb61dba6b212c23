package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetTrainingFeaturesRejectsUnknownOrient(t *testing.T) {
	h := NewHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/features?season=2020&orient=chronological", nil)
	rec := httptest.NewRecorder()
	h.GetTrainingFeatures(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "orient") {
		t.Errorf("error body does not name the parameter: %s", rec.Body.String())
	}
}

func TestGetTrainingFeaturesRequiresSeason(t *testing.T) {
	h := NewHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/features", nil)
	rec := httptest.NewRecorder()
	h.GetTrainingFeatures(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", rec.Code)
	}
}
