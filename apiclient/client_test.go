package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/godoof/metrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	client, err := New(server.URL+"/", "secret", opts...)
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		token   string
		wantErr error
	}{
		{name: "valid config", host: "https://eu1-api.doofinder.com", token: "secret"},
		{name: "missing host", host: "", token: "secret", wantErr: ErrMissingHost},
		{name: "missing token", host: "https://eu1-api.doofinder.com", token: "", wantErr: ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.host, tt.token)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, client.Host())
		})
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	client, err := New("https://us1-api.doofinder.com///", "secret")
	require.NoError(t, err)
	assert.Equal(t, "https://us1-api.doofinder.com", client.Host())
}

func TestClient_Get(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/stats/banners", r.URL.Path)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "godoof-test", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		assert.Equal(t, []string{"abc", "def"}, r.URL.Query()["hashid[]"])
		assert.Equal(t, "20240101", r.URL.Query().Get("from"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": 3}`))
	}, WithUserAgent("godoof-test"))

	params := url.Values{}
	params.Set("from", "20240101")
	params.Add("hashid[]", "abc")
	params.Add("hashid[]", "def")

	var result map[string]int
	err := client.Get(context.Background(), "/api/v2/stats/banners", params, &result)
	require.NoError(t, err)
	assert.Equal(t, 3, result["total"])
}

func TestClient_RequestWithBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "My Store", body["name"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"hashid": "abc123"}`))
	})

	var result struct {
		HashID string `json:"hashid"`
	}
	err := client.Request(context.Background(), http.MethodPost, "/api/v2/search_engines", nil,
		map[string]string{"name": "My Store"}, &result)
	require.NoError(t, err)
	assert.Equal(t, "abc123", result.HashID)
}

func TestClient_EmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	var result map[string]any
	err := client.Request(context.Background(), http.MethodDelete, "/api/v2/search_engines/abc", nil, nil, &result)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestClient_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	var result map[string]any
	err := client.Get(context.Background(), "/api/v2/search_engines", nil, &result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestClient_HTTPErrorWithoutHandler(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"code": "not_found"}}`))
	})

	err := client.Get(context.Background(), "/api/v2/search_engines/missing", nil, nil)
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, http.MethodGet, httpErr.Method)
	assert.Equal(t, "/api/v2/search_engines/missing", httpErr.Path)
	assert.Contains(t, httpErr.Body, "not_found")
	assert.NotEmpty(t, httpErr.RequestID)
}

func TestClient_ErrorHandler(t *testing.T) {
	errLocked := errors.New("locked")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error": {"code": "searchengine_locked"}}`))
	}, WithErrorHandler(func(r *Response) error {
		assert.Equal(t, http.StatusConflict, r.StatusCode)
		assert.Contains(t, string(r.Body), "searchengine_locked")
		return errLocked
	}))

	err := client.Get(context.Background(), "/api/v2/search_engines/abc/_process", nil, nil)
	assert.ErrorIs(t, err, errLocked)
}

func TestClient_Retries(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		failures   int32
		status     int
		wantCalls  int32
		wantErr    bool
	}{
		{name: "no retries by default", maxRetries: 0, failures: 2, status: http.StatusServiceUnavailable, wantCalls: 1, wantErr: true},
		{name: "recovers after transient failures", maxRetries: 3, failures: 2, status: http.StatusServiceUnavailable, wantCalls: 3},
		{name: "gives up after max retries", maxRetries: 1, failures: 5, status: http.StatusTooManyRequests, wantCalls: 2, wantErr: true},
		{name: "does not retry client errors", maxRetries: 3, failures: 5, status: http.StatusBadRequest, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) <= tt.failures {
					w.WriteHeader(tt.status)
					return
				}
				w.Write([]byte(`{"ok": true}`))
			}, WithMaxRetries(tt.maxRetries), WithRetryDelay(time.Millisecond, 5*time.Millisecond))

			err := client.Get(context.Background(), "/api/v2/stats/usage", nil, nil)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_RetryHonorsContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithMaxRetries(3))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.Get(ctx, "/api/v2/stats/usage", nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := New(server.URL, "secret")
	require.NoError(t, err)

	err = client.Get(context.Background(), "/api/v2/search_engines", nil, nil)
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, 1, netErr.Attempt)
	assert.Equal(t, "/api/v2/search_engines", netErr.Path)
}

// flakyTransport fails the first failures round trips before reaching the server.
type flakyTransport struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, errors.New("connection reset by peer")
	}
	return http.DefaultTransport.RoundTrip(r)
}

func TestClient_RetriesNetworkErrors(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		maxRetries  int
		failures    int32
		wantCalls   int32
		wantAttempt int
	}{
		{name: "recovers after dropped connection", method: http.MethodGet, maxRetries: 2, failures: 1, wantCalls: 2},
		{name: "gives up after max retries", method: http.MethodGet, maxRetries: 1, failures: 5, wantCalls: 2, wantAttempt: 2},
		{name: "no retries by default", method: http.MethodDelete, maxRetries: 0, failures: 1, wantCalls: 1, wantAttempt: 1},
		{name: "does not resend writes", method: http.MethodPost, maxRetries: 3, failures: 1, wantCalls: 1, wantAttempt: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"ok": true}`))
			}))
			t.Cleanup(server.Close)

			transport := &flakyTransport{failures: tt.failures}
			client, err := New(server.URL, "secret",
				WithHTTPClient(&http.Client{Transport: transport}),
				WithMaxRetries(tt.maxRetries),
				WithRetryDelay(time.Millisecond, 5*time.Millisecond),
			)
			require.NoError(t, err)

			err = client.Request(context.Background(), tt.method, "/api/v2/search_engines/abc", nil, nil, nil)
			assert.Equal(t, tt.wantCalls, transport.calls.Load())
			if tt.wantAttempt == 0 {
				require.NoError(t, err)
				return
			}
			var netErr *NetworkError
			require.ErrorAs(t, err, &netErr)
			assert.Equal(t, tt.wantAttempt, netErr.Attempt)
		})
	}
}

func TestClient_Stream(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/stats/query_log", r.URL.Path)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		w.Write([]byte("query,total\nshoes,10\n"))
	})

	ctx := WithOperation(context.Background(), "test.stream")
	before := counterValue(t, metrics.StreamedBytes.WithLabelValues("test.stream"))

	body, err := client.Stream(ctx, http.MethodGet, "/api/v2/stats/query_log", nil)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "query,total\nshoes,10\n", string(data))
	assert.Equal(t, before+float64(len(data)), counterValue(t, metrics.StreamedBytes.WithLabelValues("test.stream")))
}

func TestClient_StreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": "forbidden"}}`))
	}, WithErrorHandler(func(r *Response) error {
		return r.HTTPError()
	}))

	body, err := client.Stream(context.Background(), http.MethodGet, "/api/v2/stats/query_log", nil)
	require.Error(t, err)
	assert.Nil(t, body)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "forbidden")
}

func TestClient_RecordsOperationMetrics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}, WithRateLimit(1000, 5))

	counter := metrics.APIRequestsTotal.WithLabelValues("test.metrics", "200")
	before := counterValue(t, counter)

	ctx := WithOperation(context.Background(), "test.metrics")
	require.NoError(t, client.Get(ctx, "/api/v2/search_engines", nil, nil))
	require.NoError(t, client.Get(ctx, "/api/v2/search_engines", nil, nil))

	assert.Equal(t, before+2, counterValue(t, counter))
}

func TestRetryAfterFromHeader(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "empty", value: "", want: 0},
		{name: "seconds", value: "3", want: 3 * time.Second},
		{name: "negative", value: "-1", want: 0},
		{name: "garbage", value: "soon", want: 0},
		{name: "past date", value: "Mon, 01 Jan 2001 00:00:00 GMT", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.value != "" {
				h.Set("Retry-After", tt.value)
			}
			assert.Equal(t, tt.want, retryAfterFromHeader(h))
		})
	}
}
