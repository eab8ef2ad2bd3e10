// Package lookup resolves the base URL of the frame's target domain.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/framerelay/internal/infrastructure/logging"
	"github.com/GriffinCanCode/framerelay/internal/infrastructure/resilience"
)

var (
	ErrEmptyURL    = errors.New("lookup returned an empty URL")
	ErrNoLookupURL = errors.New("no lookup service configured")
)

// Resolver yields the target base URL
type Resolver interface {
	ResolveTargetURL(ctx context.Context) (string, error)
}

// StaticResolver always returns the same URL
type StaticResolver string

// ResolveTargetURL implements Resolver
func (s StaticResolver) ResolveTargetURL(context.Context) (string, error) {
	if s == "" {
		return "", ErrEmptyURL
	}
	return strings.TrimRight(string(s), "/"), nil
}

// HTTPConfig configures an HTTPResolver
type HTTPConfig struct {
	URL          string
	Timeout      time.Duration
	Retries      int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Breaker      *resilience.Breaker
}

// HTTPResolver asks a lookup service for the target URL. The service answers
// either {"url": "..."} or the URL as plain text.
type HTTPResolver struct {
	url     string
	client  *resty.Client
	breaker *resilience.Breaker
	logger  *logging.Logger
}

type lookupResponse struct {
	URL string `json:"url"`
}

// NewHTTPResolver creates a resolver backed by a retrying HTTP client
func NewHTTPResolver(cfg HTTPConfig, logger *logging.Logger) *HTTPResolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = 100 * time.Millisecond
	}
	if cfg.RetryWaitMax <= 0 {
		cfg.RetryWaitMax = 2 * time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "framerelay/1.0").
		SetHeader("Accept", "application/json, text/plain")

	return &HTTPResolver{
		url:     cfg.URL,
		client:  client,
		breaker: cfg.Breaker,
		logger:  logger.Named("lookup"),
	}
}

// ResolveTargetURL implements Resolver
func (r *HTTPResolver) ResolveTargetURL(ctx context.Context) (string, error) {
	if r.url == "" {
		return "", ErrNoLookupURL
	}
	if r.breaker == nil {
		return r.fetch(ctx)
	}
	return resilience.Execute(r.breaker, func() (string, error) {
		return r.fetch(ctx)
	})
}

func (r *HTTPResolver) fetch(ctx context.Context) (string, error) {
	resp, err := r.client.R().SetContext(ctx).Get(r.url)
	if err != nil {
		return "", fmt.Errorf("lookup request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("lookup service returned %s", resp.Status())
	}

	target, err := parseBody(resp.Body())
	if err != nil {
		return "", err
	}
	r.logger.Debug("Resolved target URL", zap.String("target_url", target))
	return target, nil
}

func parseBody(body []byte) (string, error) {
	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "{") {
		var payload lookupResponse
		if err := sonic.UnmarshalString(text, &payload); err != nil {
			return "", fmt.Errorf("invalid lookup response: %w", err)
		}
		text = strings.TrimSpace(payload.URL)
	} else if strings.HasPrefix(text, `"`) {
		if err := sonic.UnmarshalString(text, &text); err != nil {
			return "", fmt.Errorf("invalid lookup response: %w", err)
		}
	}
	if text == "" {
		return "", ErrEmptyURL
	}
	return strings.TrimRight(text, "/"), nil
}
