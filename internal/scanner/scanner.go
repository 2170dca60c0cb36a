// Package scanner is the HTTP client for the external receipt-parsing
// service: it ships a receipt image to a vision endpoint and gets back the
// merchant name plus a flat list of parsed lines. Everything downstream
// treats that list as opaque input; no image processing happens here.
package scanner

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/model"
)

// Config holds scanner client configuration from environment variables.
type Config struct {
	BaseURL string
	APIKey  string
}

// Result is a fully parsed receipt.
type Result struct {
	Merchant string
	Items    []model.ParsedReceiptItem
}

// Client calls the receipt-parsing service.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a scanner client. Configured reports false until both a
// base URL and an API key are present.
func NewClient(cfg Config) *Client {
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether the client can make requests.
func (c *Client) Configured() bool {
	return c.config.BaseURL != "" && c.config.APIKey != ""
}

type parseRequest struct {
	Image     string `json:"image"`
	MediaType string `json:"media_type"`
}

type parseResponse struct {
	Merchant string `json:"merchant"`
	Items    []struct {
		Text        string   `json:"text"`
		TotalPrice  string   `json:"total_price"`
		Quantity    float64  `json:"quantity"`
		UnitPrice   *string  `json:"unit_price"`
		ProductName string   `json:"product_name"`
		BrandName   string   `json:"brand_name"`
	} `json:"items"`
}

// Parse sends the receipt image and returns the parsed lines. The service's
// decimal strings are parsed here so the rest of the system never touches
// stringly-typed prices.
func (c *Client) Parse(ctx context.Context, image []byte, mediaType string) (*Result, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("scanner not configured")
	}

	body, err := json.Marshal(parseRequest{
		Image:     base64.StdEncoding.EncodeToString(image),
		MediaType: mediaType,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal parse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/receipts/parse", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scanner request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scanner returned status %d", resp.StatusCode)
	}

	var parsed parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode scanner response: %w", err)
	}

	result := &Result{Merchant: parsed.Merchant}
	for _, item := range parsed.Items {
		total, err := decimal.NewFromString(item.TotalPrice)
		if err != nil {
			return nil, fmt.Errorf("parse line total %q: %w", item.TotalPrice, err)
		}
		line := model.ParsedReceiptItem{
			Text:        item.Text,
			TotalPrice:  total,
			Quantity:    item.Quantity,
			ProductName: item.ProductName,
			BrandName:   item.BrandName,
		}
		if item.UnitPrice != nil {
			up, err := decimal.NewFromString(*item.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("parse unit price %q: %w", *item.UnitPrice, err)
			}
			line.UnitPrice = &up
		}
		result.Items = append(result.Items, line)
	}
	return result, nil
}
