package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bbms/bbms/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	return h, e
}

func TestHandler_CreateUser(t *testing.T) {
	h, e := newTestHandler()
	body := `{"email":"dr.okoro@hospital.org","full_name":"Dr. Okoro","role":"medical_officer","medical_officer_profile":{"license_number":"MO-4412"}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.CreateUser(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil { t.Fatalf("invalid JSON: %v", err) }
	profile, ok := resp["profile"].(map[string]interface{})
	if !ok || profile["license_number"] != "MO-4412" {
		t.Errorf("expected profile in response, got %v", resp["profile"])
	}
}

func TestHandler_CreateUser_MissingProfile(t *testing.T) {
	h, e := newTestHandler()
	body := `{"email":"tech@hospital.org","full_name":"Tess Tech","role":"technician"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.CreateUser(c); err == nil { t.Error("expected error") }
}

func TestHandler_CreateUser_DuplicateEmail(t *testing.T) {
	h, e := newTestHandler()
	h.svc.CreateUser(nil, CreateUserInput{Email: "root@hospital.org", FullName: "Root", Role: auth.RoleAdmin})
	body := `{"email":"root@hospital.org","full_name":"Other","role":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h.CreateUser(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest { t.Fatalf("expected 400, got %v", err) }
}

func TestHandler_GetUser(t *testing.T) {
	h, e := newTestHandler()
	u, _ := h.svc.CreateUser(nil, CreateUserInput{Email: "root@hospital.org", FullName: "Root", Role: auth.RoleAdmin})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(u.ID.String())
	if err := h.GetUser(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusOK { t.Errorf("expected 200, got %d", rec.Code) }
}

func TestHandler_GetUser_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(uuid.New().String())
	if err := h.GetUser(c); err == nil { t.Error("expected error") }
}

func TestHandler_SetActive(t *testing.T) {
	h, e := newTestHandler()
	u, _ := h.svc.CreateUser(nil, CreateUserInput{Email: "root@hospital.org", FullName: "Root", Role: auth.RoleAdmin})
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"active":false}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(u.ID.String())
	if err := h.SetActive(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	got, _ := h.svc.GetUser(nil, u.ID)
	if got.Active { t.Error("expected deactivated") }
}

func TestHandler_ListUsers(t *testing.T) {
	h, e := newTestHandler()
	h.svc.CreateUser(nil, CreateUserInput{Email: "root@hospital.org", FullName: "Root", Role: auth.RoleAdmin})
	req := httptest.NewRequest(http.MethodGet, "/?role=admin", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.ListUsers(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusOK { t.Errorf("expected 200, got %d", rec.Code) }
}
