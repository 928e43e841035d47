package userdir

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPClient talks to the remote profile service. Every call carries a
// bounded timeout so a slow directory degrades a render instead of hanging it.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a directory client for the given base URL. A
// non-positive timeout falls back to 2s.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type profileListResponse struct {
	Profiles []*Profile `json:"profiles"`
}

// Resolve implements Directory. A 404 maps to (nil, nil); only transport or
// server faults surface as errors.
func (c *HTTPClient) Resolve(ctx context.Context, id string) (*Profile, error) {
	if id == "" {
		return nil, nil
	}

	endpoint := c.baseURL + "/v1/profiles/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var p Profile
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			return nil, fmt.Errorf("userdir: decode profile %s: %w", id, err)
		}
		return &p, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("userdir: resolve %s: unexpected status %d", id, resp.StatusCode)
	}
}

// BatchResolve implements Directory. Duplicates collapse before the request
// goes out; ids the service does not know stay absent from the result map.
func (c *HTTPClient) BatchResolve(ctx context.Context, ids []string) (map[string]*Profile, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return map[string]*Profile{}, nil
	}

	endpoint := c.baseURL + "/v1/profiles?ids=" + url.QueryEscape(strings.Join(ids, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userdir: batch resolve: unexpected status %d", resp.StatusCode)
	}

	var body profileListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("userdir: decode batch response: %w", err)
	}

	out := make(map[string]*Profile, len(body.Profiles))
	for _, p := range body.Profiles {
		if p != nil && p.ID != "" {
			out[p.ID] = p
		}
	}
	return out, nil
}
