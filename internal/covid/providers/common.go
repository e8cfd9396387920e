package providers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/covid-stats/internal/covid"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// newCircuitBreaker returns nil when retries are disabled, so every call goes
// straight to the upstream. The open period never outlasts one backoff step.
func newCircuitBreaker(name string, backoff BackoffConfig) *gobreaker.CircuitBreaker {
	if backoff.MaxRetries <= 0 {
		return nil
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     backoff.InitialInterval,
	})
}

// doRequestWithResilience executes the HTTP request with retries, exponential
// backoff and an optional circuit breaker. Only transport errors, 429 and 5xx
// count as breaker failures and are retried. Any other non-2xx response is
// returned as an error tagged covid.ErrTagStatus without retrying. An open
// breaker costs one backoff step, never the whole request.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	var lastErr error
	var lastStatus int

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		send := func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				lastStatus = resp.StatusCode
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				resp.Body.Close()
				lastStatus = resp.StatusCode
				return nil, errServerError
			}

			return resp, nil
		}

		var result interface{}
		if cb != nil {
			result, err = cb.Execute(send)
		} else {
			result, err = send()
		}

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, goerr.New("unexpected result type from circuit breaker")
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, goerr.New("unexpected status code",
					goerr.V("status", resp.StatusCode),
					goerr.V("url", req.URL.String()),
					goerr.T(covid.ErrTagStatus))
			}
			return resp, nil
		}

		breakerOpen := errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
		if !breakerOpen {
			lastErr = err
		}
		if attempt >= cfg.Backoff.MaxRetries {
			if lastErr == nil {
				return nil, goerr.Wrap(err, "circuit breaker open",
					goerr.V("breaker", cb.Name()),
					goerr.T(covid.ErrTagStatus))
			}
			return nil, classify(lastErr, lastStatus, req)
		}

		// Backoff with exponential delay.
		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}

func classify(err error, status int, req *http.Request) error {
	if errors.Is(err, errRateLimited) || errors.Is(err, errServerError) {
		return goerr.Wrap(err, "unexpected status code",
			goerr.V("status", status),
			goerr.V("url", req.URL.String()),
			goerr.T(covid.ErrTagStatus))
	}
	return goerr.Wrap(err, "request failed",
		goerr.V("url", req.URL.String()),
		goerr.T(covid.ErrTagTransport))
}
