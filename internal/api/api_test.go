package api_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/matchmaker/internal/api"
	"github.com/mcoot/matchmaker/internal/api/apierr"
	"github.com/mcoot/matchmaker/internal/api/response"
	"github.com/mcoot/matchmaker/internal/factory"
	"github.com/mcoot/matchmaker/internal/model"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	return &testServer{
		handler: api.NewRouter(api.RouterConfigFromApp(app, logger)),
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func enqueue(t *testing.T, ts *testServer, mode string, participants ...string) {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/queues/"+mode, map[string][]string{"participants": participants})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	health := decode[response.Health](t, rr)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 0, health.Clients)
}

func TestEnqueueAndLength(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/queues/registered", map[string][]string{"participants": {"5", "7"}})
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, int64(2), decode[response.Queue](t, rr).Length)

	rr = ts.request(http.MethodGet, "/api/v1/queues/registered", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	q := decode[response.Queue](t, rr)
	assert.Equal(t, "registered", q.Mode)
	assert.Equal(t, int64(2), q.Length)

	rr = ts.request(http.MethodGet, "/api/v1/queues/guest", nil)
	assert.Equal(t, int64(0), decode[response.Queue](t, rr).Length)
}

func TestEnqueueErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown mode",
			path:       "/api/v1/queues/ranked",
			body:       map[string][]string{"participants": {"5"}},
			wantStatus: http.StatusNotFound,
			wantCode:   apierr.CodeUnknownMode,
		},
		{
			name:       "non-numeric registered id",
			path:       "/api/v1/queues/registered",
			body:       map[string][]string{"participants": {"5", "abc"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   apierr.CodeInvalidParticipant,
		},
		{
			name:       "empty guest id",
			path:       "/api/v1/queues/guest",
			body:       map[string][]string{"participants": {""}},
			wantStatus: http.StatusBadRequest,
			wantCode:   apierr.CodeInvalidParticipant,
		},
		{
			name:       "no participants",
			path:       "/api/v1/queues/guest",
			body:       map[string][]string{"participants": {}},
			wantStatus: http.StatusBadRequest,
			wantCode:   apierr.CodeInvalidRequest,
		},
		{
			name:       "malformed body",
			path:       "/api/v1/queues/guest",
			body:       "not an object",
			wantStatus: http.StatusBadRequest,
			wantCode:   apierr.CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCode, decode[apierr.ErrorResponse](t, rr).Error.Code)
		})
	}

	// Nothing was partially enqueued
	rr := ts.request(http.MethodGet, "/api/v1/queues/registered", nil)
	assert.Equal(t, int64(0), decode[response.Queue](t, rr).Length)
}

func TestAttemptUnderflow(t *testing.T) {
	ts := newTestServer(t)
	enqueue(t, ts, "guest", "uuid-a")

	rr := ts.request(http.MethodPost, "/api/v1/queues/guest/attempt", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "underflow", decode[response.Attempt](t, rr).Outcome)
}

func TestAttemptCreatesRegisteredSession(t *testing.T) {
	ts := newTestServer(t)
	enqueue(t, ts, "registered", "5", "7")

	rr := ts.request(http.MethodPost, "/api/v1/queues/registered/attempt", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "paired", decode[response.Attempt](t, rr).Outcome)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var session map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &session))
	assert.Equal(t, model.StartingPosition, session["board"])
	assert.Equal(t, "w", session["turn"])
	assert.ElementsMatch(t, []any{float64(5), float64(7)}, []any{session["first_participant"], session["second_participant"]})
	assert.Equal(t, float64(300000), session["first_time_ms"])

	record, ok := session["record"].(map[string]any)
	require.True(t, ok, "registered sessions carry their record")
	assert.Equal(t, "in_progress", record["status"])
}

func TestGuestSessionHasStringParticipants(t *testing.T) {
	ts := newTestServer(t)
	enqueue(t, ts, "guest", "uuid-a", "uuid-b")

	rr := ts.request(http.MethodPost, "/api/v1/queues/guest/attempt", nil)
	require.Equal(t, "paired", decode[response.Attempt](t, rr).Outcome)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var session map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &session))
	assert.IsType(t, "", session["first_participant"])
	assert.IsType(t, "", session["second_participant"])
	assert.NotContains(t, session, "record")
}

func TestGetSessionErrors(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/sessions/42", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeSessionNotFound, decode[apierr.ErrorResponse](t, rr).Error.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/0", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsExposeAttempts(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodPost, "/api/v1/queues/guest/attempt", nil)

	rr := ts.request(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `matchmaker_attempts_total{mode="guest",outcome="underflow"}`)
}

func TestSessionStartReachesConnectedParticipants(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	t.Cleanup(srv.Close)

	streams := map[string]*bufio.Reader{}
	for _, id := range []string{"uuid-a", "uuid-b"} {
		resp, err := http.Get(srv.URL + "/api/v1/events?mode=guest&participant=" + id)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		require.Equal(t, http.StatusOK, resp.StatusCode)

		reader := bufio.NewReader(resp.Body)
		require.Equal(t, "connected", readEventName(t, reader))
		streams[id] = reader
	}
	require.Eventually(t, func() bool { return ts.app.Hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	enqueue(t, ts, "guest", "uuid-a", "uuid-b")
	rr := ts.request(http.MethodPost, "/api/v1/queues/guest/attempt", nil)
	require.Equal(t, "paired", decode[response.Attempt](t, rr).Outcome)

	roles := map[model.Role]bool{}
	for _, id := range []string{"uuid-a", "uuid-b"} {
		reader := streams[id]
		require.Equal(t, "notification", readEventName(t, reader))
		data := readData(t, reader)

		var msg model.SessionStartMessage
		require.NoError(t, json.Unmarshal([]byte(data), &msg))
		assert.Equal(t, model.MessageSessionStart, msg.Type)
		assert.Equal(t, model.SessionID(1), msg.SessionID)
		roles[msg.Role] = true
	}
	assert.Len(t, roles, 2, "participants receive opposite roles")
}

func readEventName(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if name, ok := strings.CutPrefix(strings.TrimRight(line, "\n"), "event: "); ok {
			return name
		}
	}
}

func readData(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var lines []string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			return strings.Join(lines, "\n")
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			lines = append(lines, data)
		}
	}
}
