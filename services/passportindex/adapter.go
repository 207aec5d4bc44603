package passportindex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// HenleyBaseURL is the default API root; tests point it at an httptest server
var HenleyBaseURL = "https://api.henleypassportindex.com/api/v3"

// ErrMalformedPayload is wrapped by every error caused by a body of unexpected shape
var ErrMalformedPayload = errors.New("malformed payload")

// Provider is the source of country rankings and visa requirement snapshots
type Provider interface {
	// ListCountries returns every country with its yearly ranking observations
	ListCountries(ctx context.Context) ([]CountryPayload, error)

	// FetchRequirements returns the destinations of code grouped by requirement category
	FetchRequirements(ctx context.Context, code string) (Requirements, error)
}

// FetchError is returned when the remote source is unreachable, answers with a
// non-200 status or returns a body that cannot be decoded.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func malformed(reqURL string, err error) error {
	return &FetchError{URL: reqURL, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
}

// Options tune the HTTP behaviour of a BaseService
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	Retries      int
	RetryBackoff time.Duration
}

// BaseService provides the HTTP client and retry policy shared by providers
type BaseService struct {
	client       *http.Client
	baseURL      string
	retries      int
	retryBackoff time.Duration
}

// NewBaseService creates a configured base service
func NewBaseService(opts Options) BaseService {
	if opts.BaseURL == "" {
		opts.BaseURL = HenleyBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	return BaseService{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:      opts.BaseURL,
		retries:      opts.Retries,
		retryBackoff: opts.RetryBackoff,
	}
}

func (s *BaseService) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.retryBackoff
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(s.retries)), ctx)
}

// get fetches reqURL and returns the raw body. Transport errors and 5xx/429
// answers are retried; other statuses fail immediately.
func (s *BaseService) get(ctx context.Context, reqURL string) ([]byte, error) {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(&FetchError{URL: reqURL, Err: err})
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return &FetchError{URL: reqURL, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			fetchErr := &FetchError{URL: reqURL, StatusCode: resp.StatusCode}
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(fetchErr)
			}
			return fetchErr
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return &FetchError{URL: reqURL, Err: err}
		}
		return nil
	}

	if err := backoff.Retry(operation, s.policy(ctx)); err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			return nil, err
		}
		return nil, &FetchError{URL: reqURL, Err: err}
	}
	return body, nil
}
