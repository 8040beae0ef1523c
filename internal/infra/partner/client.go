// Package partner implements the client for the secondary partner listing
// API, used by the on-demand read path when a property is missing from the
// cached feed snapshot.
package partner

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"property-feed-service/internal/domain"
)

// Endpoint is the API path for single-property lookup.
const Endpoint = "/api/v2/properties/{id}"

// ClientConfig holds configuration for the partner client.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Retry   RetryConfig
	CB      CBConfig
}

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
}

// CBConfig holds circuit breaker configuration.
type CBConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

// Client implements domain.PartnerAPI.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new partner API client.
func New(cfg ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client: newRestyClient(cfg),
		cb:     newCircuitBreaker("partner", cfg.CB),
		logger: logger,
	}
}

// newRestyClient creates a Resty HTTP client with retry configuration.
func newRestyClient(cfg ClientConfig) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.Token).
		SetRetryCount(cfg.Retry.MaxAttempts).
		SetRetryWaitTime(cfg.Retry.WaitTime).
		SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Retry on network errors or 5xx status codes
			if err != nil {
				return true
			}

			return r.StatusCode() >= 500
		})

	return client
}

// newCircuitBreaker creates the circuit breaker guarding the partner API.
func newCircuitBreaker(name string, cfg CBConfig) *gobreaker.CircuitBreaker[*resty.Response] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= 3 && failureRatio >= cfg.FailureRatio
		},
	}

	return gobreaker.NewCircuitBreaker[*resty.Response](settings)
}

// GetProperty fetches a single property by its source identifier.
// Returns domain.ErrNotFound when the partner has no such listing.
func (c *Client) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		var result propertyResponse
		r, err := c.client.R().
			SetContext(ctx).
			SetPathParam("id", id).
			SetResult(&result).
			Get(Endpoint)
		if err != nil {
			return nil, err
		}
		if r.StatusCode() == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		if r.IsError() {
			return nil, fmt.Errorf("partner returned status %d", r.StatusCode())
		}

		return r, nil
	})

	if err != nil {
		if err == domain.ErrNotFound {
			return nil, err
		}
		c.logger.Warn("partner fetch failed",
			zap.String("id", id),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return nil, fmt.Errorf("fetching property %s from partner: %w", id, err)
	}

	result := resp.Result().(*propertyResponse)
	prop := result.ToDomain()

	c.logger.Debug("partner fetch completed", zap.String("id", prop.ID))

	return prop, nil
}

// HealthCheck verifies the partner API is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}
