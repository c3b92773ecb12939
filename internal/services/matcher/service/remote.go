package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"retention/internal/core/ruleset"
	"retention/internal/core/scoring"
	perr "retention/internal/platform/errors"
	"retention/internal/platform/logger"
	"retention/internal/services/matcher/domain"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultMaxRetry  = 3
	defaultRetryBase = 250 * time.Millisecond
)

// RemoteOptions configure the remote matcher client
type RemoteOptions struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration
}

// Remote calls the external matcher endpoint
// whatever the remote returns still goes through the guard post-filter
type Remote struct {
	http  *http.Client
	opts  RemoteOptions
	guard domain.Guard
	log   logger.Logger
	sleep func(time.Duration)
}

// NewRemote creates a Remote client with sane defaults
func NewRemote(o RemoteOptions, guard domain.Guard) *Remote {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Remote{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		guard: guard,
		log:   *logger.Named("matcher"),
		sleep: time.Sleep,
	}
}

type matchRequest struct {
	Note    string                 `json:"note"`
	Catalog []ruleset.CatalogEntry `json:"catalog"`
}

type matchResponse struct {
	Hits []scoring.RuleHit `json:"rule_hits"`
}

// Match implements domain.MatchPort
func (c *Remote) Match(ctx context.Context, note string, catalog []ruleset.CatalogEntry) ([]scoring.RuleHit, error) {
	if c.opts.URL == "" {
		return nil, perr.Configf("matcher url not configured")
	}

	body, err := json.Marshal(matchRequest{Note: note, Catalog: catalog})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "encode match request")
	}

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, bytes.NewReader(body))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "matcher new request failed")
		}
		req.Header.Set("Content-Type", "application/json")

		start := time.Now()
		resp, err := c.http.Do(req)
		lat := time.Since(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "matcher do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("matcher transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("matcher http response")

		if resp.StatusCode >= 500 {
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, perr.Unavailablef("matcher server error %d", resp.StatusCode)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("matcher server error retrying")
			c.sleep(back)
			attempts++
			continue
		}
		if resp.StatusCode != http.StatusOK {
			_ = drainAndClose(resp.Body)
			return nil, perr.Activityf("matcher rejected request with status %d", resp.StatusCode)
		}

		var out matchResponse
		err = json.NewDecoder(resp.Body).Decode(&out)
		_ = drainAndClose(resp.Body)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeActivity, "decode match response")
		}
		return c.guard.Apply(out.Hits, catalog), nil
	}
}

func (c *Remote) shouldRetry(attempts int) bool { return attempts < c.opts.MaxRetries }

func (c *Remote) backoff(attempts int) time.Duration {
	back := c.opts.RetryBase << attempts
	if back > 5*time.Second {
		back = 5 * time.Second
	}
	return back
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	return rc.Close()
}
