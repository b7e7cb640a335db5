// Package handler contains the HTTP handlers of the club API: public
// read endpoints, admin CRUD and authentication.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/poker-club/internal/fieldmap"
	"github.com/iliyamo/poker-club/internal/logging"
	"github.com/iliyamo/poker-club/internal/repository"
)

const dbTimeout = 5 * time.Second

// Notifier is told about every successful admin write.
type Notifier interface {
	Changed(ctx context.Context, entity, action string, id uint64)
}

type nopNotifier struct{}

func (nopNotifier) Changed(context.Context, string, string, uint64) {}

func notifierOr(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func loggerOr(l *logging.Logger) *logging.Logger {
	if l == nil {
		return logging.Default()
	}
	return l
}

// dbCtx bounds repository calls of one request.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// errBadRequest carries a client-facing message.
type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string { return e.msg }

func badRequest(msg string) error { return errBadRequest{msg: msg} }

func parseID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	return id, err == nil && id > 0
}

// resolveID finds the target id in the path, then ?id=, then the body.
func resolveID(c echo.Context, bodyID uint64) (uint64, error) {
	for _, raw := range []string{c.Param("id"), c.QueryParam("id")} {
		if raw == "" {
			continue
		}
		id, ok := parseID(raw)
		if !ok {
			return 0, badRequest("invalid id")
		}
		return id, nil
	}
	if bodyID > 0 {
		return bodyID, nil
	}
	return 0, badRequest("id is required")
}

// bind decodes and validates a JSON body.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return badRequest("invalid body")
	}
	return c.Validate(dst)
}

// bindPatch decodes a PATCH body and maps it to columns.  An "id" member
// only addresses the row.
func bindPatch(c echo.Context, m fieldmap.Mapping) (uint64, map[string]any, error) {
	body := map[string]any{}
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return 0, nil, badRequest("invalid body")
	}
	var bodyID uint64
	if raw, ok := body["id"]; ok {
		if f, ok := raw.(float64); ok && f > 0 {
			bodyID = uint64(f)
		}
		delete(body, "id")
	}
	id, err := resolveID(c, bodyID)
	if err != nil {
		return 0, nil, err
	}
	if len(body) == 0 {
		return 0, nil, repository.ErrNoFields
	}
	cols, err := m.Columns(body)
	if err != nil {
		return 0, nil, err
	}
	return id, cols, nil
}

// fail maps an error onto the JSON error envelope.  Unexpected errors are
// logged and hidden behind a generic message.
func fail(c echo.Context, log *logging.Logger, what string, err error) error {
	var br errBadRequest
	switch {
	case errors.As(err, &br):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": br.msg})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": what + " already exists"})
	case errors.Is(err, repository.ErrNoFields):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, fieldmap.ErrUnknownField), errors.Is(err, fieldmap.ErrInvalidValue):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		log.Error(what+" request timed out", "path", c.Path(), "error", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "database timeout"})
	}
	log.Error(what+" request failed", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// publicList writes items, or an empty array when loading failed.  Public
// pages render an empty section rather than an error; the masked answer is
// marked no-store so the response cache does not keep it.
func publicList[T any](c echo.Context, log *logging.Logger, what string, items []T, err error) error {
	if err != nil {
		log.Error("public "+what+" list failed", "error", err)
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return c.JSON(http.StatusOK, []T{})
	}
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, items)
}

func queryBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, badRequest(name + " must be a boolean")
	}
	return &b, nil
}

func queryLimit(c echo.Context, max int) int {
	n, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || n <= 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}

// flexTime accepts RFC 3339 and datetime-local values.
type flexTime struct{ time.Time }

func (t *flexTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := fieldmap.ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}

// ptr returns nil for the zero time.
func (t *flexTime) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

func optString(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
