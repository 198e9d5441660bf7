package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecil-the-coder/ai-contingency/internal/testutil"
	"github.com/cecil-the-coder/ai-contingency/pkg/attemptlog"
	"github.com/cecil-the-coder/ai-contingency/pkg/backend/middleware"
	"github.com/cecil-the-coder/ai-contingency/pkg/backendtypes"
	"github.com/cecil-the-coder/ai-contingency/pkg/contingency"
	"github.com/cecil-the-coder/ai-contingency/pkg/monitor"
	"github.com/cecil-the-coder/ai-contingency/pkg/registry"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success   bool                   `json:"success"`
	Data      json.RawMessage        `json:"data"`
	Error     *backendtypes.APIError `json:"error"`
	RequestID string                 `json:"request_id"`
}

type fixture struct {
	server *Server
	sink   *attemptlog.MemoryLog
	reg    *registry.Registry
	d      *contingency.Dispatcher
}

func testConfig() contingency.Config {
	cfg := contingency.DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	cfg.ProviderTimeout = time.Second
	return cfg
}

func newFixture(t *testing.T, backend backendtypes.BackendConfig, providers ...types.ProviderDescriptor) *fixture {
	t.Helper()

	logger, _ := logtest.NewNullLogger()
	sink := attemptlog.NewMemoryLog()
	reg := registry.New(testConfig(), providers)
	d := contingency.NewDispatcher(reg.Config(), sink, contingency.WithLogger(logger))

	return &fixture{
		server: NewServer(backend, d, reg, WithLogger(logger)),
		sink:   sink,
		reg:    reg,
		d:      d,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t, backendtypes.BackendConfig{Server: backendtypes.ServerConfig{Version: "1.2.3"}},
		testutil.Provider("primary", 1, testutil.AlwaysOK("ok")))

	w, env := f.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), env.RequestID)

	var health backendtypes.HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)
	assert.Equal(t, 1, health.Providers)
}

func TestServer_ListProviders(t *testing.T) {
	unavailable := testutil.Provider("no-creds", 3, nil)
	f := newFixture(t, backendtypes.BackendConfig{},
		testutil.Provider("primary", 1, testutil.AlwaysOK("ok")),
		testutil.Disabled(testutil.Provider("off", 2, testutil.AlwaysOK("ok"))),
		unavailable,
	)

	w, env := f.do(t, http.MethodGet, "/api/providers", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []backendtypes.ProviderInfo
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 3)
	assert.Equal(t, "primary", list[0].Key)
	assert.True(t, list[0].Available)
	assert.False(t, list[1].Enabled)
	assert.False(t, list[2].Available)
}

func TestServer_DispatchSuccess(t *testing.T) {
	f := newFixture(t, backendtypes.BackendConfig{},
		testutil.Provider("primary", 1, testutil.AlwaysOK("hello")))

	w, env := f.do(t, http.MethodPost, "/api/dispatch", types.Request{Prompt: "hi"})

	require.Equal(t, http.StatusOK, w.Code)
	var result types.DispatchResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Success)
	assert.Equal(t, "primary", result.ProviderKey)
	assert.Equal(t, "hello", result.Content)
	assert.False(t, result.FallbackUsed)
	assert.Len(t, result.Attempts, 1)
}

func TestServer_DispatchFallback(t *testing.T) {
	f := newFixture(t, backendtypes.BackendConfig{},
		testutil.Provider("a", 1, testutil.AlwaysFail(testutil.ErrBoom)),
		testutil.Provider("b", 2, testutil.AlwaysOK("from b")))

	w, env := f.do(t, http.MethodPost, "/api/dispatch", types.Request{Prompt: "hi"})

	require.Equal(t, http.StatusOK, w.Code)
	var result types.DispatchResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "b", result.ProviderKey)
	assert.True(t, result.FallbackUsed)
	assert.Len(t, result.Attempts, 4)
}

func TestServer_DispatchPreferredProvider(t *testing.T) {
	f := newFixture(t, backendtypes.BackendConfig{},
		testutil.Provider("a", 1, testutil.AlwaysOK("from a")),
		testutil.Provider("b", 2, testutil.AlwaysOK("from b")))

	_, env := f.do(t, http.MethodPost, "/api/dispatch", map[string]string{
		"prompt":                 "hi",
		"preferred_provider_key": "b",
	})

	var result types.DispatchResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "b", result.ProviderKey)
}

func TestServer_DispatchExhausted(t *testing.T) {
	f := newFixture(t, backendtypes.BackendConfig{},
		testutil.Provider("a", 1, testutil.AlwaysFail(testutil.ErrBoom)))

	w, env := f.do(t, http.MethodPost, "/api/dispatch", types.Request{Prompt: "hi"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, backendtypes.CodeProvidersExhausted, env.Error.Code)
	assert.Contains(t, env.Error.Message, "all providers exhausted")

	var result types.DispatchResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Len(t, result.Attempts, 3)
}

func TestServer_DispatchErrors(t *testing.T) {
	tests := []struct {
		name      string
		providers []types.ProviderDescriptor
		body      interface{}
		status    int
		code      string
	}{
		{
			name:      "empty prompt",
			providers: []types.ProviderDescriptor{testutil.Provider("a", 1, testutil.AlwaysOK("x"))},
			body:      types.Request{Prompt: "   "},
			status:    http.StatusBadRequest,
			code:      backendtypes.CodeInvalidRequest,
		},
		{
			name:      "malformed body",
			providers: []types.ProviderDescriptor{testutil.Provider("a", 1, testutil.AlwaysOK("x"))},
			body:      "{not json",
			status:    http.StatusBadRequest,
			code:      backendtypes.CodeInvalidRequest,
		},
		{
			name:      "no enabled providers",
			providers: []types.ProviderDescriptor{testutil.Disabled(testutil.Provider("a", 1, testutil.AlwaysOK("x")))},
			body:      types.Request{Prompt: "hi"},
			status:    http.StatusServiceUnavailable,
			code:      backendtypes.CodeNoProviders,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, backendtypes.BackendConfig{}, tt.providers...)

			w, env := f.do(t, http.MethodPost, "/api/dispatch", tt.body)

			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Zero(t, f.sink.Len(), "no attempts recorded")
		})
	}
}

func TestServer_TestProvider(t *testing.T) {
	inv := testutil.AlwaysOK("OK")
	f := newFixture(t, backendtypes.BackendConfig{}, testutil.Provider("primary", 1, inv))

	w, env := f.do(t, http.MethodPost, "/api/providers/primary/test", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var result types.TestResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Success)
	assert.Equal(t, "primary", result.ProviderKey)
	assert.Equal(t, 1, inv.Calls())
	assert.Zero(t, f.sink.Len(), "health checks stay out of the attempt log")
}

func TestServer_TestProviderFailureIsStillOK(t *testing.T) {
	f := newFixture(t, backendtypes.BackendConfig{},
		testutil.Provider("primary", 1, testutil.AlwaysFail(testutil.ErrBoom)))

	w, env := f.do(t, http.MethodPost, "/api/providers/primary/test", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var result types.TestResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.Success)
	assert.Equal(t, types.ErrCodeServerError, result.ErrorType)
}

func TestServer_TestProviderUnknownKey(t *testing.T) {
	f := newFixture(t, backendtypes.BackendConfig{}, testutil.Provider("primary", 1, testutil.AlwaysOK("OK")))

	w, env := f.do(t, http.MethodPost, "/api/providers/ghost/test", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, backendtypes.CodeProviderNotFound, env.Error.Code)
}

func TestServer_Stats(t *testing.T) {
	f := newFixture(t, backendtypes.BackendConfig{},
		testutil.Provider("a", 1, testutil.AlwaysFail(testutil.ErrBoom)),
		testutil.Provider("b", 2, testutil.AlwaysOK("b")))

	f.do(t, http.MethodPost, "/api/dispatch", types.Request{Prompt: "hi"})

	w, env := f.do(t, http.MethodGet, "/api/stats?days=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats types.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.WindowDays)
	assert.Equal(t, 1, stats.TotalRequests)
	assert.Equal(t, 1, stats.SuccessfulRequests)
	assert.Equal(t, 1, stats.ContingencyActivations)
	assert.Equal(t, map[string]int{"a": 3}, stats.ProviderFailures)
	assert.Equal(t, "b", stats.MostUsedFallback)

	_, env = f.do(t, http.MethodGet, "/api/stats", nil)
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, types.DefaultStatsWindowDays, stats.WindowDays)
}

func TestServer_StatsRejectsBadWindow(t *testing.T) {
	f := newFixture(t, backendtypes.BackendConfig{})

	for _, q := range []string{"abc", "0", "-3"} {
		w, env := f.do(t, http.MethodGet, "/api/stats?days="+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, backendtypes.CodeInvalidRequest, env.Error.Code)
	}
}

func TestServer_StatsWithoutAttemptLog(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	reg := registry.New(testConfig(), nil)
	d := contingency.NewDispatcher(reg.Config(), nil)
	f := &fixture{server: NewServer(backendtypes.BackendConfig{}, d, reg, WithLogger(logger))}

	w, env := f.do(t, http.MethodGet, "/api/stats", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, backendtypes.CodeStatsUnavailable, env.Error.Code)
}

func TestServer_ProviderHealthSnapshot(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	sink := attemptlog.NewMemoryLog()
	reg := registry.New(testConfig(), []types.ProviderDescriptor{
		testutil.Provider("a", 1, testutil.AlwaysOK("OK")),
		testutil.Provider("b", 2, testutil.AlwaysFail(testutil.ErrBoom)),
	})
	d := contingency.NewDispatcher(reg.Config(), sink, contingency.WithLogger(logger))
	mon := monitor.New(d, reg.Providers, monitor.WithLogger(logger))
	mon.Sweep(context.Background())

	f := &fixture{server: NewServer(backendtypes.BackendConfig{}, d, reg, WithMonitor(mon), WithLogger(logger))}
	w, env := f.do(t, http.MethodGet, "/api/providers/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot []monitor.ProviderHealth
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	require.Len(t, snapshot, 2)
	assert.Equal(t, "a", snapshot[0].ProviderKey)
	assert.True(t, snapshot[0].Healthy)
	assert.False(t, snapshot[1].Healthy)
	assert.Zero(t, sink.Len())
}

func TestServer_ProviderHealthWithoutMonitor(t *testing.T) {
	f := newFixture(t, backendtypes.BackendConfig{}, testutil.Provider("a", 1, testutil.AlwaysOK("OK")))

	_, env := f.do(t, http.MethodGet, "/api/providers/health", nil)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestServer_AuthProtectsAPI(t *testing.T) {
	f := newFixture(t, backendtypes.BackendConfig{
		Auth: backendtypes.AuthConfig{Enabled: true, APIPassword: "secret", PublicPaths: []string{"/health"}},
	}, testutil.Provider("a", 1, testutil.AlwaysOK("OK")))

	w, _ := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := f.do(t, http.MethodGet, "/api/providers", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, backendtypes.CodeUnauthorized, env.Error.Code)
	assert.NotEmpty(t, env.RequestID)
}

func TestServer_GracefulShutdown(t *testing.T) {
	f := newFixture(t, backendtypes.BackendConfig{
		Server: backendtypes.ServerConfig{Host: "127.0.0.1", Port: freePort(t), ShutdownTimeout: time.Second},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.ListenAndServeWithGracefulShutdown(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
