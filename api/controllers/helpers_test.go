package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/brandprices-backend/internal/brands"
	"github.com/angelmondragon/brandprices-backend/internal/memstore"
	"github.com/angelmondragon/brandprices-backend/internal/prices"
	"github.com/angelmondragon/brandprices-backend/internal/seed"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newSeededServices(t *testing.T) (prices.Service, brands.Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	if _, err := seed.Apply(context.Background(), store, seed.DefaultCatalog(), nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	resolver, err := prices.NewResolver(store, nil)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	priceSvc, err := prices.NewService(store, resolver)
	if err != nil {
		t.Fatalf("price service: %v", err)
	}
	brandSvc, err := brands.NewService(store)
	if err != nil {
		t.Fatalf("brand service: %v", err)
	}
	return priceSvc, brandSvc, store
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}
