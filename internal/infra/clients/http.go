package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"rental-engine/internal/pkg/errs"
)

// maxResponseBytes caps how much of a collaborator's response is read.
const maxResponseBytes = 1 << 20

type jsonClient struct {
	name    string
	baseURL string
	apiKey  string
	http    *http.Client
}

// postJSON sends body to path and decodes a 2xx response into out. Transport
// failures and non-2xx answers are marked ErrDependencyUnavailable.
func (c *jsonClient) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errs.Wrapf(err, "%s: failed to encode request", c.name)
	}

	url := strings.TrimRight(c.baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrapf(err, "%s: failed to build request", c.name)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.unavailable(errs.Wrap(err, "request failed"))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.unavailable(errs.Wrap(err, "failed to read response"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.unavailable(errs.Newf("unexpected status %d", resp.StatusCode))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.unavailable(errs.Wrap(err, "failed to decode response"))
	}
	return nil
}

func (c *jsonClient) unavailable(err error) error {
	slog.Error("External service error",
		slog.String("service", c.name),
		slog.String("error", err.Error()))
	return errs.Mark(errs.Wrap(err, c.name), errs.ErrDependencyUnavailable)
}
