package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "ReviewScout/1.0"

// jsonAPI performs GET requests against JSON APIs.
type jsonAPI struct {
	base string
	http *http.Client
}

func newJSONAPI(base string, client *http.Client) jsonAPI {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return jsonAPI{base: strings.TrimSuffix(base, "/"), http: client}
}

// get decodes base+path?query into v.
func (c jsonAPI) get(ctx context.Context, path string, query url.Values, v any) error {
	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		// The url.Error wrapper would repeat the query string, API key included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
