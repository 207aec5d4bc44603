package passportindex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(serverURL string) *HenleyService {
	return NewHenleyService(Options{
		BaseURL:      serverURL,
		Timeout:      2 * time.Second,
		Retries:      2,
		RetryBackoff: time.Millisecond,
	})
}

func TestNewBaseServiceDefaults(t *testing.T) {
	svc := NewBaseService(Options{})
	assert.NotNil(t, svc.client)
	assert.Equal(t, 30*time.Second, svc.client.Timeout)
	assert.Equal(t, HenleyBaseURL, svc.baseURL)
	assert.Equal(t, 0, svc.retries)
}

func TestListCountries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/countries", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"countries": [
				{"code": "SG", "country": "Singapore", "region": "ASIA", "data": {"2024": {"rank": 1, "visa_free_count": 195}}},
				{"code": "XK", "country": "Kosovo", "data": []},
				{"code": "", "country": "Broken"},
				{"code": "AQ", "country": "Antarctica"}
			]
		}`)
	}))
	defer server.Close()

	countries, err := newTestService(server.URL).ListCountries(context.Background())

	require.NoError(t, err)
	require.Len(t, countries, 3)
	assert.Equal(t, "SG", countries[0].Code)
	assert.Equal(t, 1, *countries[0].Data[2024].Rank)
	assert.Empty(t, countries[1].Data)
	assert.NotNil(t, countries[2].Data)
	assert.Nil(t, countries[2].Region)
}

func TestListCountriesKeepsListingWithBadRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"countries": [
			{"code": "SG", "country": "Singapore", "region": "ASIA"},
			{"code": "XX", "region": 7},
			{"code": null, "country": "No Code"}
		]}`)
	}))
	defer server.Close()

	countries, err := newTestService(server.URL).ListCountries(context.Background())

	require.NoError(t, err)
	require.Len(t, countries, 2)
	assert.Equal(t, "SG", countries[0].Code)
	assert.Equal(t, "XX", countries[1].Code)
	assert.Nil(t, countries[1].Region)
}

func TestListCountriesMissingField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message": "maintenance"}`)
	}))
	defer server.Close()

	_, err := newTestService(server.URL).ListCountries(context.Background())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedPayload))
	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestFetchRequirements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/visa-single/SG", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		fmt.Fprint(w, `{
			"code": "SG",
			"country": "Singapore",
			"visa_free_access": [{"code": "JP", "name": "Japan"}],
			"electronic_travel_authorisation": [{"code": "AU", "name": "Australia"}]
		}`)
	}))
	defer server.Close()

	reqs, err := newTestService(server.URL).FetchRequirements(context.Background(), "SG")

	require.NoError(t, err)
	assert.Equal(t, []string{"electronic_travel_authorisation", "visa_free_access"}, reqs.Categories())
	assert.Equal(t, "JP", reqs["visa_free_access"][0].Code)
}

func TestFetchRequirementsEmptyObjectIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": "AQ", "country": "Antarctica"}`)
	}))
	defer server.Close()

	reqs, err := newTestService(server.URL).FetchRequirements(context.Background(), "AQ")

	assert.NoError(t, err)
	assert.NotNil(t, reqs)
	assert.Equal(t, 0, reqs.DestinationCount())
}

func TestFetchRequirementsNullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `null`)
	}))
	defer server.Close()

	_, err := newTestService(server.URL).FetchRequirements(context.Background(), "SG")

	assert.True(t, errors.Is(err, ErrMalformedPayload))
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"code": "SG", "visa_required": [{"code": "AF"}]}`)
	}))
	defer server.Close()

	reqs, err := newTestService(server.URL).FetchRequirements(context.Background(), "SG")

	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Len(t, reqs["visa_required"], 1)
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestService(server.URL).FetchRequirements(context.Background(), "SG")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "HTTP 503")
	// one attempt plus two retries
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestService(server.URL).FetchRequirements(context.Background(), "ZZ")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	_, err := newTestService(serverURL).ListCountries(context.Background())

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 0, fetchErr.StatusCode)
	assert.False(t, errors.Is(err, ErrMalformedPayload))
}
