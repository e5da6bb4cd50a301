package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestClinicFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), ClinicIDKey, "norte")
	if got := ClinicFromContext(ctx); got != "norte" {
		t.Errorf("expected clinic 'norte', got %q", got)
	}
}

func TestClinicFromContext_Missing(t *testing.T) {
	if got := ClinicFromContext(context.Background()); got != "" {
		t.Errorf("expected empty clinic, got %q", got)
	}
}

func TestConnFromContext_Nil(t *testing.T) {
	if conn := ConnFromContext(context.Background()); conn != nil {
		t.Error("expected nil connection for empty context")
	}
}

func TestTxFromContext_Nil(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Error("expected nil transaction for empty context")
	}
}

func TestTxFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBTxKey, "not-a-tx")
	if tx := TxFromContext(ctx); tx != nil {
		t.Error("expected nil transaction for mismatched value type")
	}
}

func newEchoContext(t *testing.T, headers map[string]string, query string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestExtractClinicID_Header(t *testing.T) {
	c := newEchoContext(t, map[string]string{"X-Clinic-ID": "sur"}, "")
	if got := extractClinicID(c, "default"); got != "sur" {
		t.Errorf("expected 'sur', got %q", got)
	}
}

func TestExtractClinicID_QueryParam(t *testing.T) {
	c := newEchoContext(t, nil, "clinic_id=este")
	if got := extractClinicID(c, "default"); got != "este" {
		t.Errorf("expected 'este', got %q", got)
	}
}

func TestExtractClinicID_JWTClaimWins(t *testing.T) {
	c := newEchoContext(t, map[string]string{"X-Clinic-ID": "header"}, "")
	c.Set("jwt_clinic_id", "claim")
	if got := extractClinicID(c, "default"); got != "claim" {
		t.Errorf("expected JWT claim to take precedence, got %q", got)
	}
}

func TestExtractClinicID_Default(t *testing.T) {
	c := newEchoContext(t, nil, "")
	if got := extractClinicID(c, "default"); got != "default" {
		t.Errorf("expected 'default', got %q", got)
	}
}

func TestClinicIDPattern(t *testing.T) {
	valid := []string{"default", "clinic_1", "Norte99"}
	for _, id := range valid {
		if !clinicIDPattern.MatchString(id) {
			t.Errorf("expected %q to be valid", id)
		}
	}

	invalid := []string{"", "a-b", "x;DROP TABLE patient", "clinic 1"}
	for _, id := range invalid {
		if clinicIDPattern.MatchString(id) {
			t.Errorf("expected %q to be rejected", id)
		}
	}
}
