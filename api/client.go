package api

import (
	"context"
	"corp-bot/utils"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// StatusError is returned for any non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status code was %d, not 200 (%s)", e.StatusCode, e.URL)
}

// Client performs REST calls with a per-attempt timeout and bounded
// exponential backoff. 4xx responses are not retried.
type Client struct {
	HTTP          *http.Client
	Timeout       time.Duration
	Retries       uint64
	RetryInterval time.Duration
}

// NewClient returns a Client using the shared HTTP client.
func NewClient(timeout time.Duration, retries uint64) *Client {
	return &Client{
		HTTP:          utils.GlobalHTTPClient,
		Timeout:       timeout,
		Retries:       retries,
		RetryInterval: 500 * time.Millisecond,
	}
}

type requestFunc func(ctx context.Context) (*http.Request, error)

// Do runs the request built by build until it returns 200, a permanent error
// occurs, or the retry budget is spent, and returns the response body.
func (c *Client) Do(ctx context.Context, build requestFunc) ([]byte, error) {
	var body []byte
	operation := func() error {
		attemptCtx := ctx
		if c.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, c.Timeout)
			defer cancel()
		}

		req, err := build(attemptCtx)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			statusErr := &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		body = data
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.RetryInterval
	policy.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(policy, c.Retries), ctx)

	err := backoff.RetryNotify(operation, b, func(err error, wait time.Duration) {
		log.Printf("Request failed, retrying in %s: %v", wait, err)
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Get issues a GET with the given headers.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	return c.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
}
