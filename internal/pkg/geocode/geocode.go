package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client resolves coordinates to a formatted address via a Nominatim-style
// reverse geocoding endpoint. Lookups are best-effort: callers fall back to
// storing raw coordinates when a lookup fails.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseLookup returns a formatted address for the given coordinates.
func (c *Client) ReverseLookup(ctx context.Context, latitude, longitude float64) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("geocoding is not configured")
	}

	endpoint := fmt.Sprintf("%s/reverse?%s", c.baseURL, url.Values{
		"lat":    []string{fmt.Sprintf("%f", latitude)},
		"lon":    []string{fmt.Sprintf("%f", longitude)},
		"format": []string{"jsonv2"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build reverse geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode returned status %d", resp.StatusCode)
	}

	var parsed reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}

	if parsed.DisplayName == "" {
		return "", fmt.Errorf("reverse geocode returned no address")
	}

	return parsed.DisplayName, nil
}
