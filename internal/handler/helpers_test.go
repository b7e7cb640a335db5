package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/poker-club/internal/logging"
)

var now = time.Date(2026, 10, 17, 20, 30, 0, 0, time.UTC)

func clock() time.Time { return now }

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.JSONSerializer = SonicSerializer{}
	return e
}

func nopLog() *logging.Logger { return logging.NewNop() }

func request(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, sonicAPI.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type change struct {
	Entity, Action string
	ID             uint64
}

// recordingNotifier remembers every Changed call.
type recordingNotifier struct {
	mu      sync.Mutex
	changes []change
}

func (n *recordingNotifier) Changed(_ context.Context, entity, action string, id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change{entity, action, id})
}

func (n *recordingNotifier) all() []change {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]change(nil), n.changes...)
}

func okStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, rec.Body.String())
}
