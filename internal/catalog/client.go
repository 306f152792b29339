package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Food is a priced catalog entry served by the tasty service.
type Food struct {
	Ref         string  `json:"ref"`
	Description string  `json:"description"`
	Chef        string  `json:"chef"`
	Price       float64 `json:"price"`
}

// Client looks up catalog entries on the tasty service. Timeouts are the
// responsibility of the injected http.Client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// FoodByRef returns the catalog entry for ref, or (nil, nil) when the catalog
// has no matching entry. A transport fault or an unexpected status is an
// error, distinct from absence.
func (c *Client) FoodByRef(ctx context.Context, ref string) (*Food, error) {
	url := fmt.Sprintf("%s/foods/%s", c.baseURL, ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create food lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup food %s: %w", ref, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tasty service returned status %d for food %s", resp.StatusCode, ref)
	}

	var food Food
	if err := json.NewDecoder(resp.Body).Decode(&food); err != nil {
		return nil, fmt.Errorf("decode food %s: %w", ref, err)
	}

	return &food, nil
}
