package email

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/resilience"
)

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	FromAddress    string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client posts season summary emails to the transactional email API. A
// circuit breaker keeps a flapping provider from stalling cron passes.
type Client struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	fromAddress string
	breaker     *resilience.CircuitBreaker
	logger      *logging.Logger
}

func NewClient(cfg ClientConfig, logger *logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		fromAddress: strings.TrimSpace(cfg.FromAddress),
		breaker:     resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		logger:      logger,
	}
}

type seasonSummaryPayload struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (c *Client) SendSeasonSummary(ctx context.Context, seasonID int64, winners int) error {
	baseURL, err := validateHTTPBaseURL(c.baseURL)
	if err != nil {
		return errors.Wrap(err, "invalid email base url")
	}
	if err := c.breaker.Allow(); err != nil {
		return errors.Wrap(err, "email provider circuit open")
	}

	payload := seasonSummaryPayload{
		From:    c.fromAddress,
		Subject: fmt.Sprintf("Season %d is complete", seasonID),
		Body:    fmt.Sprintf("The season has finished and %d winner(s) were crowned. Final standings are live.", winners),
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	body, err := sonic.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal season summary payload")
	}
	if _, err := buf.Write(body); err != nil {
		return errors.Wrap(err, "buffer season summary payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/emails", strings.NewReader(buf.String()))
	if err != nil {
		return errors.Wrap(err, "create email request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return errors.Wrapf(err, "send season summary season=%d", seasonID)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		c.breaker.RecordFailure()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Newf("send season summary status=%d season=%d body=%s",
			resp.StatusCode, seasonID, strings.TrimSpace(string(raw)))
	}

	c.breaker.RecordSuccess()
	c.logger.InfoContext(ctx, "season summary email sent", "season_id", seasonID, "winners", winners)
	return nil
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", errors.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", errors.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", errors.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}
