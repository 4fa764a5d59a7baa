package dbrx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

// newTestCluster starts a test server with the given handler and returns a
// client pointed at it. The poll interval is short so poll loops finish
// quickly, and R interop is off so context creation does not probe.
func newTestCluster(t *testing.T, handler http.Handler, opts ...Option) *Cluster {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := []Option{
		WithBaseURL(srv.URL),
		WithToken("test-token"),
		WithClusterID("test-cluster"),
		WithPollInterval(time.Millisecond),
		WithRInterop(RInteropOff),
	}
	cluster, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return cluster
}

func TestNew(t *testing.T) {
	t.Setenv("DBRX_API_TOKEN", "")
	t.Setenv("DBRX_HOST", "")
	t.Setenv("DBRX_CLUSTER_ID", "")

	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{
			name:    "without token",
			opts:    []Option{WithHost("https://dbc-test.cloud.databricks.com"), WithClusterID("c-1")},
			wantErr: true,
		},
		{
			name:    "without cluster id",
			opts:    []Option{WithToken("t"), WithHost("https://dbc-test.cloud.databricks.com")},
			wantErr: true,
		},
		{
			name:    "without host",
			opts:    []Option{WithToken("t"), WithClusterID("c-1")},
			wantErr: true,
		},
		{
			name: "with host",
			opts: []Option{
				WithToken("t"),
				WithClusterID("c-1"),
				WithHost("https://dbc-test.cloud.databricks.com"),
			},
			wantErr: false,
		},
		{
			name: "with base URL only",
			opts: []Option{
				WithToken("t"),
				WithClusterID("c-1"),
				WithBaseURL("http://127.0.0.1:8080/api/1.2"),
			},
			wantErr: false,
		},
		{
			name: "with non-positive poll interval",
			opts: []Option{
				WithToken("t"),
				WithClusterID("c-1"),
				WithHost("https://dbc-test.cloud.databricks.com"),
				WithPollInterval(0),
			},
			wantErr: true,
		},
		{
			name: "with invalid R interop mode",
			opts: []Option{
				WithToken("t"),
				WithClusterID("c-1"),
				WithHost("https://dbc-test.cloud.databricks.com"),
				WithRInterop(RInteropMode("maybe")),
			},
			wantErr: true,
		},
		{
			name: "with pre-context API version",
			opts: []Option{
				WithToken("t"),
				WithClusterID("c-1"),
				WithHost("https://dbc-test.cloud.databricks.com"),
				WithAPIVersion("1.0"),
			},
			wantErr: true,
		},
		{
			name: "with newer API version",
			opts: []Option{
				WithToken("t"),
				WithClusterID("c-1"),
				WithHost("https://dbc-test.cloud.databricks.com"),
				WithAPIVersion("2.0"),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("New() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("DBRX_API_TOKEN", "env-token")
	t.Setenv("DBRX_HOST", "https://dbc-env.cloud.databricks.com")
	t.Setenv("DBRX_CLUSTER_ID", "env-cluster")

	cluster, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if cluster.ClusterID() != "env-cluster" {
		t.Errorf("ClusterID() = %v, want env-cluster", cluster.ClusterID())
	}
}

func TestBaseURLFromHost(t *testing.T) {
	var mu sync.Mutex
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		mu.Unlock()
		fmt.Fprint(w, `{"id":"ctx-1","status":"Running"}`)
	}))
	defer srv.Close()

	// Trailing slash on the host must not produce a double slash.
	cluster, err := New(
		WithHost(srv.URL+"/"),
		WithToken("test-token"),
		WithClusterID("test-cluster"),
		WithRInterop(RInteropOff),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := cluster.AttachContext(context.Background(), "ctx-1"); err != nil {
		t.Fatalf("AttachContext() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/api/1.2/contexts/status" {
		t.Errorf("request path = %v, want /api/1.2/contexts/status", gotPath)
	}
}

func TestAPIClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("Content-Type header not set")
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Authorization header = %v, want Bearer test-token", r.Header.Get("Authorization"))
		}
		if r.Header.Get("User-Agent") != "dbrx-go/"+Version {
			t.Errorf("User-Agent header = %v, want dbrx-go/%s", r.Header.Get("User-Agent"), Version)
		}
		if r.URL.Query().Get("clusterId") != "c-1" {
			t.Errorf("clusterId query = %v, want c-1", r.URL.Query().Get("clusterId"))
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	client := newAPIClient(nil, srv.URL, "test-token")

	query := url.Values{}
	query.Set("clusterId", "c-1")

	body, statusCode, err := client.doRequest(context.Background(), http.MethodGet, "/test", query, nil)
	if err != nil {
		t.Fatalf("doRequest() error = %v", err)
	}
	if statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200", statusCode)
	}

	var resp map[string]string
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("response status = %v, want ok", resp["status"])
	}
}

func TestSetToken(t *testing.T) {
	var mu sync.Mutex
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()
		fmt.Fprint(w, `{"id":"ok"}`)
	}))
	defer srv.Close()

	client := newAPIClient(nil, srv.URL, "first")

	if _, _, err := client.doRequest(context.Background(), http.MethodGet, "/test", nil, nil); err != nil {
		t.Fatalf("doRequest() error = %v", err)
	}
	client.setToken("second")
	if _, _, err := client.doRequest(context.Background(), http.MethodGet, "/test", nil, nil); err != nil {
		t.Fatalf("doRequest() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"Bearer first", "Bearer second"}
	for i := range want {
		if auths[i] != want[i] {
			t.Errorf("request %d Authorization = %v, want %v", i, auths[i], want[i])
		}
	}
}

func TestClusterAccessors(t *testing.T) {
	cluster := newTestCluster(t, http.NewServeMux())

	cluster.SetClusterID("other-cluster")
	if cluster.ClusterID() != "other-cluster" {
		t.Errorf("ClusterID() = %v, want other-cluster", cluster.ClusterID())
	}

	cluster.SetPollInterval(5 * time.Second)
	if cluster.PollInterval() != 5*time.Second {
		t.Errorf("PollInterval() = %v, want 5s", cluster.PollInterval())
	}

	// Non-positive intervals are ignored.
	cluster.SetPollInterval(0)
	if cluster.PollInterval() != 5*time.Second {
		t.Errorf("PollInterval() after SetPollInterval(0) = %v, want 5s", cluster.PollInterval())
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name   string
		v1, v2 string
		want   int
	}{
		{"equal", "1.2", "1.2", 0},
		{"less", "1.0", "1.2", -1},
		{"greater", "2.0", "1.2", 1},
		{"v prefix", "v1.2", "1.2", 0},
		{"empty", "", "1.2", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compareVersions(tt.v1, tt.v2); got != tt.want {
				t.Errorf("compareVersions(%q, %q) = %d, want %d", tt.v1, tt.v2, got, tt.want)
			}
		})
	}
}

func TestSupportsExecutionContexts(t *testing.T) {
	if !supportsExecutionContexts("1.2") {
		t.Error("supportsExecutionContexts(1.2) = false, want true")
	}
	if supportsExecutionContexts("1.0") {
		t.Error("supportsExecutionContexts(1.0) = true, want false")
	}
	if !supportsExecutionContexts("2.0") {
		t.Error("supportsExecutionContexts(2.0) = false, want true")
	}
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		target     error
		wantIs     bool
		wantString string
	}{
		{
			name: "not found",
			err: &APIError{
				StatusCode: 404,
				Endpoint:   "/contexts/status",
				Message:    "no such context",
			},
			target:     ErrNotFound,
			wantIs:     true,
			wantString: "api error status 404 on /contexts/status, no such context",
		},
		{
			name: "authentication",
			err: &APIError{
				StatusCode: 403,
				Endpoint:   "/contexts/create",
				Message:    "invalid token",
			},
			target:     ErrAuthentication,
			wantIs:     true,
			wantString: "api error status 403 on /contexts/create, invalid token",
		},
		{
			name: "generic",
			err: &APIError{
				StatusCode: 500,
				Endpoint:   "/commands/execute",
				Message:    "internal error",
			},
			target:     ErrNotFound,
			wantIs:     false,
			wantString: "api error status 500 on /commands/execute, internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Is(tt.target); got != tt.wantIs {
				t.Errorf("Is() = %v, want %v", got, tt.wantIs)
			}
			if got := tt.err.Error(); got != tt.wantString {
				t.Errorf("Error() = %v, want %v", got, tt.wantString)
			}
		})
	}
}

func TestFormatHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		target     error
		wantIs     bool
	}{
		{"unauthorized", 401, ErrAuthentication, true},
		{"forbidden", 403, ErrAuthentication, true},
		{"not found", 404, ErrNotFound, true},
		{"server error", 500, ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := formatHTTPError(tt.statusCode, "/test", "body")
			if got := errors.Is(err, tt.target); got != tt.wantIs {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantIs)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not an *APIError", err)
			}
			if apiErr.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.statusCode)
			}
		})
	}
}

func TestTimeoutError(t *testing.T) {
	execErr := NewExecutionTimeoutError(10 * time.Minute)
	if !errors.Is(execErr, ErrTimeout) {
		t.Error("execution timeout should match ErrTimeout")
	}
	if errors.Is(execErr, ErrRequestTimeout) {
		t.Error("execution timeout should not match ErrRequestTimeout")
	}
	if execErr.Error() != "execution timeout exceeded after 10m0s" {
		t.Errorf("Error() = %v, want execution timeout exceeded after 10m0s", execErr.Error())
	}

	reqErr := NewRequestTimeoutError(60 * time.Second)
	if !errors.Is(reqErr, ErrRequestTimeout) {
		t.Error("request timeout should match ErrRequestTimeout")
	}
	if errors.Is(reqErr, ErrTimeout) {
		t.Error("request timeout should not match ErrTimeout")
	}
}

func TestConstants(t *testing.T) {
	if DefaultAPIVersion != "1.2" {
		t.Errorf("DefaultAPIVersion = %v, want 1.2", DefaultAPIVersion)
	}
	if MinAPIVersion != "1.2" {
		t.Errorf("MinAPIVersion = %v, want 1.2", MinAPIVersion)
	}
	if DefaultPollInterval != 1*time.Second {
		t.Errorf("DefaultPollInterval = %v, want 1s", DefaultPollInterval)
	}
	if DefaultRequestTimeout != 60*time.Second {
		t.Errorf("DefaultRequestTimeout = %v, want 60s", DefaultRequestTimeout)
	}
	if DefaultExecTimeout != 10*time.Minute {
		t.Errorf("DefaultExecTimeout = %v, want 10m", DefaultExecTimeout)
	}
}

func TestLanguageConstants(t *testing.T) {
	languages := []string{
		LanguagePython,
		LanguageScala,
		LanguageSQL,
	}

	expected := []string{"python", "scala", "sql"}

	for i, lang := range languages {
		if lang != expected[i] {
			t.Errorf("Language constant = %v, want %v", lang, expected[i])
		}
	}
}
