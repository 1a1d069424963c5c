// Package karma talks to the external reputation service that gates
// registration and login.
package karma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Checker reports whether an identity is flagged on the karma blacklist.
type Checker interface {
	// Check returns true when the identity is listed and must be denied.
	Check(ctx context.Context, identity string) (bool, error)
}

// Client is the HTTP implementation of Checker.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a karma Client against the given API base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type karmaResponse struct {
	Data struct {
		KarmaIdentity string `json:"karma_identity"`
	} `json:"data"`
}

// Check looks the identity up. A 404 means the identity is clean; a body with
// a non-empty karma_identity means it is listed.
func (c *Client) Check(ctx context.Context, identity string) (bool, error) {
	endpoint := fmt.Sprintf("%s/verification/karma/%s", c.baseURL, url.PathEscape(identity))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build karma request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("karma lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("karma lookup returned status %d", resp.StatusCode)
	}

	var body karmaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode karma response: %w", err)
	}
	return body.Data.KarmaIdentity != "", nil
}
