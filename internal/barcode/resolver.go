// Package barcode looks up product metadata for a scanned code against an
// external Open Food Facts-compatible service. The state engine never calls
// this directly; controllers resolve first and feed results into the
// barcode cache.
package barcode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/harborfood/pantry-backend/pkg/config"
)

// Product is the advisory metadata a lookup may return.
type Product struct {
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	WeightPerUnitLbs float64  `json:"weightPerUnitLbs"`
	Allergens        []string `json:"allergens"`
}

// Resolver resolves a barcode to optional product metadata. A miss is
// (nil, nil); only transport-level problems surface as errors.
type Resolver interface {
	Lookup(ctx context.Context, code string) (*Product, error)
}

// HTTPResolver implements Resolver over the Open Food Facts v2 API shape.
type HTTPResolver struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewHTTPResolver wires a resolver from config.
func NewHTTPResolver(cfg config.BarcodeConfig) *HTTPResolver {
	return &HTTPResolver{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

const gramsPerPound = 453.592

type lookupResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName     string   `json:"product_name"`
		Categories      string   `json:"categories"`
		ProductQuantity float64  `json:"product_quantity,string"`
		AllergensTags   []string `json:"allergens_tags"`
	} `json:"product"`
}

// Lookup fetches metadata for the code. Unknown products and non-OK
// statuses are treated as "no data available".
func (r *HTTPResolver) Lookup(ctx context.Context, code string) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s/api/v2/product/%s.json", r.baseURL, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building barcode request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("barcode lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("barcode lookup: unexpected status %d", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding barcode response: %w", err)
	}
	if payload.Status != 1 {
		return nil, nil
	}

	product := &Product{
		Name:      strings.TrimSpace(payload.Product.ProductName),
		Category:  firstCategory(payload.Product.Categories),
		Allergens: cleanAllergens(payload.Product.AllergensTags),
	}
	if payload.Product.ProductQuantity > 0 {
		product.WeightPerUnitLbs = payload.Product.ProductQuantity / gramsPerPound
	}
	if product.Name == "" {
		return nil, nil
	}
	return product, nil
}

func firstCategory(categories string) string {
	for _, part := range strings.Split(categories, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// cleanAllergens strips the language prefix from tags like "en:gluten".
func cleanAllergens(tags []string) []string {
	out := []string{}
	for _, tag := range tags {
		if idx := strings.IndexByte(tag, ':'); idx >= 0 {
			tag = tag[idx+1:]
		}
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
