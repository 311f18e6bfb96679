package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/s0up4200/godoof/config"
	"github.com/s0up4200/godoof/management/stats"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: time.Time{}},
		{in: "2024-03-05", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{in: "20240305", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{in: "05/03/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestGetFilterExpression(t *testing.T) {
	cfg = &config.Config{QueryLog: config.QueryLogConfig{
		DefaultFilter: "results == 0",
		Presets:       map[string]string{"mobile": `device == "mobile"`},
	}}
	t.Cleanup(func() {
		cfg = nil
		filterExpr, preset = "", ""
	})

	filterExpr, preset = "", ""
	expr, err := getFilterExpression()
	require.NoError(t, err)
	assert.Equal(t, "results == 0", expr)

	preset = "mobile"
	expr, err = getFilterExpression()
	require.NoError(t, err)
	assert.Equal(t, `device == "mobile"`, expr)

	filterExpr = "results > 1"
	expr, err = getFilterExpression()
	require.NoError(t, err)
	assert.Equal(t, "results > 1", expr)

	filterExpr, preset = "", "missing"
	_, err = getFilterExpression()
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, &stats.Report{Format: stats.FormatJSON, Data: []byte(`{"total":1}`)}))
	assert.Equal(t, "{\n  \"total\": 1\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, writeReport(&buf, &stats.Report{Format: stats.FormatCSV, Data: []byte("a,b\n1,2\n")}))
	assert.Equal(t, "a,b\n1,2\n", buf.String())
}

type recordedRequest struct {
	path  string
	query string
}

type fakeDoofinder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeDoofinder) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{path: r.URL.Path, query: r.URL.RawQuery})
		f.mu.Unlock()

		switch {
		case r.URL.Path == "/api/v2/search_engines":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `[{"hashid":"abc","name":"Shop","language":"en","indices":[{"name":"product"}]}]`)
		case r.URL.Path == "/api/v2/stats/query_log":
			w.Header().Set("Content-Type", "text/csv")
			io.WriteString(w, "query,results\nshoes,3\nboots,0\n")
		case strings.HasPrefix(r.URL.Path, "/api/v2/stats/"):
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"total":5}`)
		default:
			http.NotFound(w, r)
		}
	})
}

func (f *fakeDoofinder) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.path
	}
	return out
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n  format: json\nhttp:\n  max_retries: 0\n"), 0o600))

	sf = statsFlags{format: "json"}
	filterExpr, preset, limit = "", "", 0
	pageSize, batchSize = 100, 100

	var out bytes.Buffer
	rootCmd.SetArgs(append([]string{"--config", path, "--token", "secret"}, args...))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "godoof "+version)
}

func TestTestCommand(t *testing.T) {
	fake := &fakeDoofinder{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	out, err := run(t, "--host", server.URL, "test")
	require.NoError(t, err)
	assert.Contains(t, out, "Connection successful")
	assert.Contains(t, out, "Shop (abc, 1 indices)")
}

func TestEnginesListCommand(t *testing.T) {
	fake := &fakeDoofinder{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	out, err := run(t, "--host", server.URL, "engines", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "HASHID")
	assert.Contains(t, out, "abc")
	assert.Contains(t, out, "active")
}

func TestStatsSearchesCommand(t *testing.T) {
	fake := &fakeDoofinder{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	out, err := run(t, "--host", server.URL, "stats", "searches",
		"--hashid", "abc", "--from", "2024-01-01", "--to", "2024-01-31", "--total-hits", "3")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":5}`, out)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, "/api/v2/stats/searches", req.path)
	assert.Contains(t, req.query, "from=20240101")
	assert.Contains(t, req.query, "to=20240131")
	assert.Contains(t, req.query, "total_hits=3")
	assert.Contains(t, req.query, "hashid%5B%5D=abc")
}

func TestStatsInvalidDevice(t *testing.T) {
	_, err := run(t, "--host", "http://127.0.0.1:1", "stats", "clicks", "--device", "tablet")
	assert.ErrorIs(t, err, stats.ErrInvalidValue)
}

func TestQueryLogCommand(t *testing.T) {
	fake := &fakeDoofinder{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	out, err := run(t, "--host", server.URL, "querylog", "--filter", "results == 0")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "boots", rec["query"])
}

func TestQueryLogInvalidFilter(t *testing.T) {
	_, err := run(t, "--host", "http://127.0.0.1:1", "querylog", "--filter", "results ==")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter expression")
}

func TestReportCommand(t *testing.T) {
	fake := &fakeDoofinder{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	out, err := run(t, "--host", server.URL, "report", "--hashid", "a", "--hashid", "b", "--concurrency", "2")
	require.NoError(t, err)

	var overviews []stats.Overview
	require.NoError(t, json.Unmarshal([]byte(out), &overviews))
	require.Len(t, overviews, 2)
	assert.Equal(t, "a", overviews[0].HashID)
	assert.Len(t, overviews[1].Reports, len(stats.OverviewReports))
	assert.Len(t, fake.paths(), 2*len(stats.OverviewReports))
}

func TestAuthCommands(t *testing.T) {
	keyring.MockInit()

	out, err := run(t, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No token stored")

	out, err = run(t, "auth", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Token saved")

	out, err = run(t, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "**cret")

	_, err = run(t, "auth", "logout")
	require.NoError(t, err)
	assert.Empty(t, storedToken())
}

func TestNewClientUsesStoredToken(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(keyringService, keyringUser, "from-keychain"))
	t.Setenv("DOOFINDER_TOKEN", "")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token from-keychain", r.Header.Get("Authorization"))
		io.WriteString(w, `[]`)
	}))
	defer server.Close()

	prevToken, prevHost, prevCfg := tokenFlag, hostFlag, cfg
	t.Cleanup(func() { tokenFlag, hostFlag, cfg = prevToken, prevHost, prevCfg })
	tokenFlag, hostFlag = "", server.URL
	cfg = &config.Config{Report: config.ReportConfig{Concurrency: 1}}

	client, err := newClient()
	require.NoError(t, err)
	require.NoError(t, client.TestConnection(context.Background()))
}

func TestLoadEnvFile(t *testing.T) {
	const key = "GODOOF_DOTENV_CHECK"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=loaded\n"), 0o600))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv(key))

	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "***", maskToken("abc"))
	assert.Equal(t, "****5678", maskToken("12345678"))
}
