package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fortuna/themis/internal/league"
)

const (
	DefaultScoreboardBase = "https://site.api.espn.com/apis/site/v2/sports"
	DefaultBoxscoreBase   = "https://cdn.espn.com/core"

	// The provider rejects bare requests; a browser-ish UA keeps it happy.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	scoreboardDateFormat = "20060102"
)

// Config carries the provider client's tunables.
type Config struct {
	ScoreboardBase string
	BoxscoreBase   string
	Timeout        time.Duration
	RequestsPerSec float64
}

func (c *Config) applyDefaults() {
	if c.ScoreboardBase == "" {
		c.ScoreboardBase = DefaultScoreboardBase
	}
	if c.BoxscoreBase == "" {
		c.BoxscoreBase = DefaultBoxscoreBase
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.RequestsPerSec <= 0 {
		c.RequestsPerSec = 4
	}
}

// Client fetches raw scoreboard and box-score documents. Requests are
// rate limited so a pass over a full slate of games stays polite.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	cfg.applyDefaults()
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		logger:     logger,
	}
}

// FetchScoreboard retrieves a league's scoreboard for a date.
func (c *Client) FetchScoreboard(ctx context.Context, lg league.League, date time.Time) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/%s/scoreboard?dates=%s",
		c.cfg.ScoreboardBase, lg.ScoreboardPath, date.Format(scoreboardDateFormat))
	return c.fetch(ctx, url)
}

// FetchBoxscore retrieves the raw box-score document for one game.
func (c *Client) FetchBoxscore(ctx context.Context, lg league.League, gameID string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/%s/boxscore?xhr=1&gameId=%s",
		c.cfg.BoxscoreBase, lg.BoxscorePath, gameID)
	return c.fetch(ctx, url)
}

func (c *Client) fetch(ctx context.Context, url string) (map[string]interface{}, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building provider request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("provider fetch", zap.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "provider request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, errors.Newf("provider returned status %d for %s", resp.StatusCode, url)
	}

	var doc map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding provider response")
	}
	return doc, nil
}
