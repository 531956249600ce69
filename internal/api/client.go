// Package api is a client for the product's JSON endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"
)

// ErrUnavailable marks a call whose feature could not be reached, either
// because the transport failed or because the server answered non-2xx.
var ErrUnavailable = errors.New("feature unavailable")

const (
	PathUserStats           = "/api/user-stats"
	PathRecentInterviews    = "/api/interviews/recent"
	PathRecentAnalyses      = "/api/analyze-resume/recent"
	PathSubscriptionStatus  = "/api/subscription-status"
	PathQuestionnaireStatus = "/api/user/questionnaire-status"
	PathQuestionnaire       = "/api/user/questionnaire"

	maxBodyBytes = 4 << 20
)

// Doer sends one request. network.Client implements it.
type Doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

type Client struct {
	doer    Doer
	baseURL string
	timeout time.Duration
	logger  zerolog.Logger
}

func New(doer Doer, baseURL string, timeout time.Duration, logger zerolog.Logger) (*Client, error) {
	if doer == nil {
		return nil, fmt.Errorf("http client is required")
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid api base url: %q", baseURL)
	}
	return &Client{doer: doer, baseURL: base, timeout: timeout, logger: logger}, nil
}

func (c *Client) UserStats(ctx context.Context) (UserStats, error) {
	var out UserStats
	err := c.get(ctx, PathUserStats, &out)
	return out, err
}

func (c *Client) RecentInterviews(ctx context.Context) ([]RecentSession, error) {
	var out recentSessionsPayload
	if err := c.get(ctx, PathRecentInterviews, &out); err != nil {
		return nil, err
	}
	return out.RecentSessions, nil
}

func (c *Client) RecentAnalyses(ctx context.Context) ([]RecentAnalysis, error) {
	var out recentAnalysesPayload
	if err := c.get(ctx, PathRecentAnalyses, &out); err != nil {
		return nil, err
	}
	return out.Analyses, nil
}

func (c *Client) SubscriptionStatus(ctx context.Context) (SubscriptionStatus, error) {
	var out SubscriptionStatus
	err := c.get(ctx, PathSubscriptionStatus, &out)
	return out, err
}

func (c *Client) QuestionnaireStatus(ctx context.Context) (QuestionnaireStatus, error) {
	var out QuestionnaireStatus
	err := c.get(ctx, PathQuestionnaireStatus, &out)
	return out, err
}

func (c *Client) SubmitQuestionnaire(ctx context.Context, sub QuestionnaireSubmission) (SubmitResult, error) {
	var out SubmitResult
	err := c.do(ctx, fhttp.MethodPost, PathQuestionnaire, sub, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, fhttp.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method string, path string, in any, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := fhttp.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api call")

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %s %s: read body: %w", ErrUnavailable, method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s returned status %d%s", ErrUnavailable, method, path, resp.StatusCode, errorDetail(data))
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func errorDetail(data []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || strings.TrimSpace(payload.Error) == "" {
		return ""
	}
	return ": " + strings.TrimSpace(payload.Error)
}
