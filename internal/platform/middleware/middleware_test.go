package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func runRequest(t *testing.T, mw echo.MiddlewareFunc, handler echo.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(handler)(c)
	return rec, err
}

func TestRequestID_Generated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec, err := runRequest(t, RequestID(), func(c echo.Context) error {
		rid, _ := c.Get("request_id").(string)
		if rid == "" {
			t.Error("expected request_id to be set on context")
		}
		return c.NoContent(http.StatusOK)
	}, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRequestID_HonorsInbound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-123")
	rec, err := runRequest(t, RequestID(), func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "upstream-123" {
		t.Errorf("expected inbound request id to be kept, got %q", got)
	}
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := runRequest(t, Recovery(zerolog.Nop()), func(c echo.Context) error {
		panic("boom")
	}, req)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", httpErr.Code)
	}
}

func TestLogger_PassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	rec, err := runRequest(t, Logger(zerolog.Nop()), func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAudit_RecordsAPIAccess(t *testing.T) {
	var got *AuditEntry
	recorder := AuditRecorderFunc(func(e AuditEntry) error {
		got = &e
		return nil
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/abc/charts/periodontogram", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := Audit(zerolog.Nop(), recorder)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got == nil {
		t.Fatal("expected audit entry to be recorded")
	}
	if got.Action != "read" {
		t.Errorf("expected action 'read', got %q", got.Action)
	}
	if got.PatientID != "abc" {
		t.Errorf("expected patient id 'abc', got %q", got.PatientID)
	}
}

func TestAudit_SkipsNonAPIPaths(t *testing.T) {
	called := false
	recorder := AuditRecorderFunc(func(e AuditEntry) error {
		called = true
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	_, err := runRequest(t, Audit(zerolog.Nop(), recorder), func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("expected health endpoint to be excluded from audit")
	}
}
