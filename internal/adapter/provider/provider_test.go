package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-rate-proxy/internal/domain/model"
	"fx-rate-proxy/pkg/logger"
)

func testOptions(baseURL string) Options {
	return Options{
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		MaxRetries: 1,
	}
}

func TestFrankfurter_FetchRate(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		wantRate float64
		wantErr  bool
	}{
		{
			name:     "rate present",
			status:   http.StatusOK,
			body:     `{"amount":1.0,"base":"USD","date":"2024-05-01","rates":{"EUR":0.92}}`,
			wantRate: 0.92,
		},
		{
			name:    "target missing",
			status:  http.StatusOK,
			body:    `{"amount":1.0,"base":"USD","date":"2024-05-01","rates":{"GBP":0.8}}`,
			wantErr: true,
		},
		{
			name:    "rate null",
			status:  http.StatusOK,
			body:    `{"rates":{"EUR":null}}`,
			wantErr: true,
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    `{"message":"not found"}`,
			wantErr: true,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `not json`,
			wantErr: true,
		},
		{
			name:     "negative rate passes through",
			status:   http.StatusOK,
			body:     `{"rates":{"EUR":-1.5}}`,
			wantRate: -1.5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/latest", r.URL.Path)
				assert.Equal(t, "USD", r.URL.Query().Get("from"))
				assert.Equal(t, "EUR", r.URL.Query().Get("to"))
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			p := NewFrankfurter(testOptions(server.URL), logger.NewNop())
			result := p.FetchRate(context.Background(), model.NewCurrencyPair("USD", "EUR"), 10)

			assert.Equal(t, FrankfurterName, result.Provider)
			if tc.wantErr {
				require.Error(t, result.Err)
				assert.False(t, result.OK())
				assert.True(t, errors.Is(result.Err, model.ErrProviderUnavailable))
				return
			}
			require.NoError(t, result.Err)
			assert.Equal(t, tc.wantRate, result.Rate)
		})
	}
}

func TestExchangeRateHost_FetchRate(t *testing.T) {
	testCases := []struct {
		name     string
		amount   float64
		body     string
		wantRate float64
		wantErr  bool
	}{
		{
			name:     "rate derived from result",
			amount:   10,
			body:     `{"success":true,"result":25}`,
			wantRate: 2.5,
		},
		{
			name:     "zero amount gives zero rate",
			amount:   0,
			body:     `{"success":true,"result":0}`,
			wantRate: 0,
		},
		{
			name:     "negative amount",
			amount:   -4,
			body:     `{"result":-8}`,
			wantRate: 2,
		},
		{
			name:    "result null",
			amount:  1,
			body:    `{"success":true,"result":null}`,
			wantErr: true,
		},
		{
			name:    "result missing",
			amount:  1,
			body:    `{"success":true}`,
			wantErr: true,
		},
		{
			name:    "failure flag overrides result",
			amount:  10,
			body:    `{"success":false,"result":25}`,
			wantErr: true,
		},
		{
			name:    "api failure",
			amount:  1,
			body:    `{"success":false,"error":{"code":101,"type":"missing_access_key","info":"You have not supplied an API Access Key."}}`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/convert", r.URL.Path)
				assert.Equal(t, "USD", r.URL.Query().Get("from"))
				assert.Equal(t, "EUR", r.URL.Query().Get("to"))
				assert.NotEmpty(t, r.URL.Query().Get("amount"))
				assert.False(t, r.URL.Query().Has("access_key"))
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			p := NewExchangeRateHost(testOptions(server.URL), logger.NewNop())
			result := p.FetchRate(context.Background(), model.NewCurrencyPair("usd", "eur"), tc.amount)

			assert.Equal(t, ExchangeRateHostName, result.Provider)
			if tc.wantErr {
				assert.ErrorIs(t, result.Err, model.ErrProviderUnavailable)
				return
			}
			require.NoError(t, result.Err)
			assert.InDelta(t, tc.wantRate, result.Rate, 1e-12)
		})
	}
}

func TestExchangeRateHost_SendsAccessKey(t *testing.T) {
	var gotKey, gotAmount string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("access_key")
		gotAmount = r.URL.Query().Get("amount")
		_, _ = w.Write([]byte(`{"success":true,"result":5}`))
	}))
	defer server.Close()

	opts := testOptions(server.URL)
	opts.APIKey = "secret"
	p := NewExchangeRateHost(opts, logger.NewNop())

	result := p.FetchRate(context.Background(), model.NewCurrencyPair("USD", "EUR"), 2.5)
	require.NoError(t, result.Err)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "2.5", gotAmount)
	assert.Equal(t, 2.0, result.Rate)
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"rates":{"EUR":0.9}}`))
	}))
	defer server.Close()

	p := NewFrankfurter(testOptions(server.URL), logger.NewNop())
	result := p.FetchRate(context.Background(), model.NewCurrencyPair("USD", "EUR"), 1)

	require.NoError(t, result.Err)
	assert.Equal(t, 0.9, result.Rate)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	p := NewFrankfurter(testOptions(server.URL), logger.NewNop())
	result := p.FetchRate(context.Background(), model.NewCurrencyPair("USD", "XXX"), 1)

	require.Error(t, result.Err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	opts := testOptions(server.URL)
	opts.MaxRetries = 2
	c := newAPIClient(opts, logger.NewNop())

	var out map[string]interface{}
	err := c.getJSON(context.Background(), "/latest", nil, &out)

	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadGateway))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_TimeoutIsAFailure(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	opts := testOptions(server.URL)
	opts.Timeout = 50 * time.Millisecond
	p := NewFrankfurter(opts, logger.NewNop())

	start := time.Now()
	result := p.FetchRate(context.Background(), model.NewCurrencyPair("USD", "EUR"), 1)

	assert.ErrorIs(t, result.Err, model.ErrProviderUnavailable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_RateLimitWaitRespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":{"EUR":0.9}}`))
	}))
	defer server.Close()

	opts := testOptions(server.URL)
	opts.RateLimit = 0.001
	opts.RateBurst = 1
	p := NewFrankfurter(opts, logger.NewNop())
	pair := model.NewCurrencyPair("USD", "EUR")

	first := p.FetchRate(context.Background(), pair, 1)
	require.NoError(t, first.Err)

	// The single token is spent; the next wait would outlast the timeout.
	second := p.FetchRate(context.Background(), pair, 1)
	assert.ErrorIs(t, second.Err, model.ErrProviderUnavailable)
}

func TestRedact(t *testing.T) {
	assert.Equal(t,
		"http://host/convert?access_key=REDACTED&from=USD",
		redact("http://host/convert?access_key=secret&from=USD"))
	assert.Equal(t, "http://host/latest?from=USD", redact("http://host/latest?from=USD"))
}
