package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/themis/internal/league"
)

// Client talks to the event store's REST API. A bearer token supplied at
// process start is attached to every request; the client never embeds
// credentials of its own.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ListOpenEvents returns a league's betting events that still accept
// transitions.
func (c *Client) ListOpenEvents(ctx context.Context, lg league.League) ([]Event, error) {
	url := fmt.Sprintf("%s/api/betting-events?league=%d&open=true", c.baseURL, lg.ID)

	var events []Event
	if err := c.getJSON(ctx, url, &events); err != nil {
		return nil, errors.Wrapf(err, "listing open events for %s", lg.Slug)
	}
	return events, nil
}

// GetEvent fetches a single betting event by id.
func (c *Client) GetEvent(ctx context.Context, id int) (Event, error) {
	url := fmt.Sprintf("%s/api/betting-events/%d", c.baseURL, id)

	var event Event
	if err := c.getJSON(ctx, url, &event); err != nil {
		return Event{}, errors.Wrapf(err, "fetching event %d", id)
	}
	return event, nil
}

// SubmitBatch posts a pass's mutations as one bulk update. Failures are
// returned to the caller, which drops the batch; the next pass re-derives
// everything from fresh data.
func (c *Client) SubmitBatch(ctx context.Context, mutations []Mutation) error {
	if len(mutations) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string]interface{}{"mutations": mutations})
	if err != nil {
		return errors.Wrap(err, "encoding mutation batch")
	}

	url := c.baseURL + "/api/betting-events/bulk-update"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building bulk update request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "bulk update request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Newf("bulk update returned status %d: %s", resp.StatusCode, payload)
	}

	c.logger.Info("submitted mutation batch", zap.Int("count", len(mutations)))
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return errors.Newf("event store returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
