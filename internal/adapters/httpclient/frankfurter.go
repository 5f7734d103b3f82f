package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tariffsvc/internal/adapters"

	"github.com/shopspring/decimal"
)

// FrankfurterClient talks to the Frankfurter FX API
// (https://frankfurter.dev): /v1/currencies and /v1/latest.
type FrankfurterClient struct {
	http    *http.Client
	baseURL string
}

type latestResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

func (c *FrankfurterClient) GetCurrencies(ctx context.Context) (map[string]string, error) {
	var currencies map[string]string
	if err := c.getJSON(ctx, "/v1/currencies", nil, &currencies); err != nil {
		return nil, fmt.Errorf("failed to fetch currencies: %w", err)
	}
	return currencies, nil
}

func (c *FrankfurterClient) GetLatestRates(ctx context.Context, base string) (*adapters.LatestRates, error) {
	var body latestResponse
	if err := c.getJSON(ctx, "/v1/latest", url.Values{"base": {base}}, &body); err != nil {
		return nil, fmt.Errorf("failed to fetch latest rates for base %q: %w", base, err)
	}
	return &adapters.LatestRates{Base: body.Base, Date: body.Date, Rates: body.Rates}, nil
}

func (c *FrankfurterClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request for %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code %d for %s: %s", resp.StatusCode, path, resp.Status)
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}

func NewFrankfurterClient(httpClient *http.Client, baseURL string) *FrankfurterClient {
	return &FrankfurterClient{http: httpClient, baseURL: strings.TrimSuffix(baseURL, "/")}
}
