package frontend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/morphit/core"
	"github.com/poiesic/morphit/exchange"
	"github.com/poiesic/morphit/launcher"
	"github.com/poiesic/morphit/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRequester struct {
	mu        sync.Mutex
	response  *core.Response
	submitErr error
	pingErr   error
	resetErr  error
	prompts   []string
	pings     int
	resets    int
}

func (f *fakeRequester) Submit(ctx context.Context, prompt string, timeout time.Duration) (*core.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.response, nil
}

func (f *fakeRequester) Ping(ctx context.Context, timeout time.Duration) (*core.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	if f.pingErr != nil {
		return nil, f.pingErr
	}
	return &core.Response{Prompt: core.StatusCheckPrompt, Status: core.StatusCompleted}, nil
}

func (f *fakeRequester) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return f.resetErr
}

type fakeHost struct {
	launched  bool
	launchErr error
	launches  int
}

func (h *fakeHost) Launch(ctx context.Context) (*launcher.Result, error) {
	h.launches++
	if h.launchErr != nil {
		return nil, h.launchErr
	}
	h.launched = true
	return &launcher.Result{PID: 4242, Message: "Host started with base.blend"}, nil
}

func (h *fakeHost) Launched() bool     { return h.launched }
func (h *fakeHost) Reset()             { h.launched = false }
func (h *fakeHost) Executable() string { return "/bin/sh" }
func (h *fakeHost) Model() string      { return "/nonexistent/base.blend" }

func newTestServer(t *testing.T, req *fakeRequester, host *fakeHost, opts ...Option) *Server {
	t.Helper()
	s, err := New(req, host, opts...)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, r)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(nil, &fakeHost{})
	assert.ErrorIs(t, err, ErrRequesterRequired)
	_, err = New(&fakeRequester{}, nil)
	assert.ErrorIs(t, err, ErrHostRequired)
	_, err = New(&fakeRequester{}, &fakeHost{}, WithTimeouts(0, time.Second))
	assert.Error(t, err)
}

func TestIndexAndHealthcheck(t *testing.T) {
	s := newTestServer(t, &fakeRequester{}, &fakeHost{})

	rec, _ := do(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Character generator")

	rec, _ = do(t, s, http.MethodGet, "/healthcheck", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestGenerate(t *testing.T) {
	completed := &core.Response{ID: "r1", Prompt: "a tall elf", Status: core.StatusCompleted, Message: "Character generated successfully!"}

	tests := []struct {
		name      string
		body      string
		launched  bool
		response  *core.Response
		submitErr error
		wantCode  int
		wantKey   string
		wantValue any
	}{
		{"empty prompt", `{"prompt": ""}`, true, nil, nil, http.StatusBadRequest, "error", "No prompt provided"},
		{"invalid json", `{prompt`, true, nil, nil, http.StatusBadRequest, "error", "No prompt provided"},
		{"host not started", `{"prompt": "a tall elf"}`, false, nil, nil, http.StatusBadRequest, "error", "Please start the host first using the 'Start Host' button."},
		{"timeout", `{"prompt": "a tall elf"}`, true, nil, fmt.Errorf("%w after 30s", exchange.ErrTimeout), http.StatusRequestTimeout, "error", "Timeout waiting for host response. The host might be busy or closed."},
		{"corrupt", `{"prompt": "a tall elf"}`, true, nil, fmt.Errorf("%w: bad json", exchange.ErrCorruptResponse), http.StatusInternalServerError, "success", false},
		{"other failure", `{"prompt": "a tall elf"}`, true, nil, errors.New("disk full"), http.StatusInternalServerError, "error", "disk full"},
		{"completed", `{"prompt": "a tall elf"}`, true, completed, nil, http.StatusOK, "success", true},
		{"bridge error", `{"prompt": "a tall elf"}`, true, &core.Response{Status: core.StatusError, Message: "Could not find character object for male in scene."}, nil, http.StatusOK, "success", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &fakeRequester{response: tt.response, submitErr: tt.submitErr}
			s := newTestServer(t, req, &fakeHost{launched: tt.launched})

			rec, body := do(t, s, http.MethodPost, "/generate", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantValue, body[tt.wantKey])
		})
	}
}

func TestGenerate_RecordsLastSuccess(t *testing.T) {
	req := &fakeRequester{response: &core.Response{Status: core.StatusCompleted, Message: "ok"}}
	s := newTestServer(t, req, &fakeHost{launched: true})

	_, body := do(t, s, http.MethodGet, "/status", "")
	assert.Nil(t, body["last_success"])

	rec, body := do(t, s, http.MethodPost, "/generate", `{"prompt": "a woman with full lips"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "completed", details["status"])
	assert.Equal(t, []string{"a woman with full lips"}, req.prompts)

	_, body = do(t, s, http.MethodGet, "/status", "")
	assert.NotNil(t, body["last_success"])
}

func TestStart(t *testing.T) {
	t.Run("already responsive", func(t *testing.T) {
		host := &fakeHost{launched: true}
		req := &fakeRequester{}
		s := newTestServer(t, req, host)

		rec, body := do(t, s, http.MethodPost, "/start", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Host is already running and responsive!", body["message"])
		assert.Zero(t, host.launches)
		assert.Equal(t, 1, req.pings)
	})

	t.Run("launches when not started", func(t *testing.T) {
		host := &fakeHost{}
		req := &fakeRequester{}
		s := newTestServer(t, req, host)

		rec, body := do(t, s, http.MethodPost, "/start", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(4242), body["process_id"])
		assert.Equal(t, 1, host.launches)
		assert.Zero(t, req.pings, "no status check before the first launch")
	})

	t.Run("relaunches when unresponsive", func(t *testing.T) {
		host := &fakeHost{launched: true}
		req := &fakeRequester{pingErr: exchange.ErrTimeout}
		s := newTestServer(t, req, host)

		rec, _ := do(t, s, http.MethodPost, "/start-blender", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, host.launches)
	})

	t.Run("launch failure", func(t *testing.T) {
		host := &fakeHost{launchErr: fmt.Errorf("%w: exit status 1: scripts disabled", launcher.ErrExitedEarly)}
		s := newTestServer(t, &fakeRequester{}, host)

		rec, body := do(t, s, http.MethodPost, "/start", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "scripts disabled")
	})
}

func TestStatus(t *testing.T) {
	s := newTestServer(t, &fakeRequester{pingErr: exchange.ErrTimeout}, &fakeHost{launched: true})

	rec, body := do(t, s, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["host_running"])
	assert.Equal(t, true, body["host_started_once"])
	assert.Equal(t, "/nonexistent/base.blend", body["model_file"])
	assert.Equal(t, false, body["model_exists"])
	assert.Equal(t, "/bin/sh", body["host_executable"])
	assert.Equal(t, true, body["host_exists"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestResetStatus(t *testing.T) {
	host := &fakeHost{launched: true}
	req := &fakeRequester{}
	s := newTestServer(t, req, host)

	rec, body := do(t, s, http.MethodPost, "/reset-status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.False(t, host.launched)
	assert.Equal(t, 1, req.resets)

	req.resetErr = errors.New("permission denied")
	rec, _ = do(t, s, http.MethodPost, "/reset-status", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestConfig(t *testing.T) {
	s := newTestServer(t, &fakeRequester{}, &fakeHost{}, WithExchangeLocation("/srv/exchange"))

	_, body := do(t, s, http.MethodGet, "/config", "")
	assert.Equal(t, "/nonexistent/base.blend", body["model_file"])
	assert.Equal(t, "/bin/sh", body["host_executable"])
	assert.Equal(t, "/srv/exchange", body["exchange"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeRequester{}, &fakeHost{}, WithMetrics(metrics.New()))

	do(t, s, http.MethodGet, "/healthcheck", "")
	rec, _ := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `morphit_http_requests_total{code="200",route="/healthcheck"} 1`)

	plain := newTestServer(t, &fakeRequester{}, &fakeHost{})
	rec, _ = do(t, plain, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, &fakeRequester{}, &fakeHost{}, WithAllowOrigins("http://localhost:3000"))

	r := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, r)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, &fakeRequester{}, &fakeHost{})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
