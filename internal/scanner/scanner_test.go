package scanner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path

		var req parseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Image == "" || req.MediaType != "image/jpeg" {
			t.Errorf("request = %+v, want base64 image and media type", req)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"merchant": "Corner Market",
			"items": []map[string]any{
				{
					"text":         "WHL MILK",
					"total_price":  "2.49",
					"quantity":     1,
					"product_name": "Milk",
					"brand_name":   "Hilltop",
				},
				{
					"text":        "EGGS LG 12CT",
					"total_price": "7.98",
					"quantity":    2,
					"unit_price":  "3.99",
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	result, err := c.Parse(context.Background(), []byte("fake-image"), "image/jpeg")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q, want bearer key", gotAuth)
	}
	if gotPath != "/v1/receipts/parse" {
		t.Errorf("path = %q, want /v1/receipts/parse", gotPath)
	}
	if result.Merchant != "Corner Market" {
		t.Errorf("merchant = %q, want Corner Market", result.Merchant)
	}
	if len(result.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(result.Items))
	}

	first := result.Items[0]
	if first.ProductName != "Milk" || first.BrandName != "Hilltop" {
		t.Errorf("hints = %q/%q, want Milk/Hilltop", first.ProductName, first.BrandName)
	}
	if !first.TotalPrice.Equal(decimal.RequireFromString("2.49")) {
		t.Errorf("total = %s, want 2.49", first.TotalPrice)
	}
	if first.UnitPrice != nil {
		t.Errorf("unit price = %v, want nil", first.UnitPrice)
	}

	second := result.Items[1]
	if second.UnitPrice == nil || !second.UnitPrice.Equal(decimal.RequireFromString("3.99")) {
		t.Errorf("unit price = %v, want 3.99", second.UnitPrice)
	}
	if second.Quantity != 2 {
		t.Errorf("quantity = %v, want 2", second.Quantity)
	}
}

func TestParseErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	if _, err := c.Parse(context.Background(), []byte("img"), "image/png"); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestParseUnconfigured(t *testing.T) {
	c := NewClient(Config{})
	if c.Configured() {
		t.Error("empty config should not be configured")
	}
	if _, err := c.Parse(context.Background(), nil, "image/png"); err == nil {
		t.Fatal("expected an error when unconfigured")
	}
}
