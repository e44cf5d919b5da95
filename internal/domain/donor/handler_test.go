package donor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	return h, e
}

func TestHandler_CreateDonor(t *testing.T) {
	h, e := newTestHandler()
	body := `{"first_name":"Ada","last_name":"Okafor","blood_type":"O-"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.CreateDonor(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }
}

func TestHandler_CreateDonor_InvalidBloodType(t *testing.T) {
	h, e := newTestHandler()
	body := `{"first_name":"Ada","last_name":"Okafor","blood_type":"X+"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.CreateDonor(c); err == nil { t.Error("expected error") }
}

func TestHandler_GetDonor(t *testing.T) {
	h, e := newTestHandler()
	d := &Donor{FirstName: "Ada", LastName: "Okafor", BloodType: "O-"}
	h.svc.CreateDonor(nil, d)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(d.ID.String())
	if err := h.GetDonor(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusOK { t.Errorf("expected 200, got %d", rec.Code) }
}

func TestHandler_GetDonor_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(uuid.New().String())
	if err := h.GetDonor(c); err == nil { t.Error("expected error") }
}

func TestHandler_GetDonor_BadID(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues("not-a-uuid")
	if err := h.GetDonor(c); err == nil { t.Error("expected error") }
}

func TestHandler_ListDonors(t *testing.T) {
	h, e := newTestHandler()
	h.svc.CreateDonor(nil, &Donor{FirstName: "Ada", LastName: "Okafor", BloodType: "O-"})
	req := httptest.NewRequest(http.MethodGet, "/?blood_type=O-", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.ListDonors(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusOK { t.Errorf("expected 200, got %d", rec.Code) }
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil { t.Fatalf("invalid JSON: %v", err) }
	if resp["total"].(float64) != 1 { t.Errorf("expected total 1, got %v", resp["total"]) }
}

func TestHandler_UpdateDonor(t *testing.T) {
	h, e := newTestHandler()
	d := &Donor{FirstName: "Ada", LastName: "Okafor", BloodType: "O-"}
	h.svc.CreateDonor(nil, d)
	body := `{"first_name":"Adaeze","last_name":"Okafor","blood_type":"O-"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(d.ID.String())
	if err := h.UpdateDonor(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusOK { t.Errorf("expected 200, got %d", rec.Code) }
}

func TestHandler_DeleteDonor(t *testing.T) {
	h, e := newTestHandler()
	d := &Donor{FirstName: "Ada", LastName: "Okafor", BloodType: "O-"}
	h.svc.CreateDonor(nil, d)
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(d.ID.String())
	if err := h.DeleteDonor(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusNoContent { t.Errorf("expected 204, got %d", rec.Code) }
}

func TestHandler_GetEligibility(t *testing.T) {
	h, e := newTestHandler()
	d := &Donor{FirstName: "Ada", LastName: "Okafor", BloodType: "O-"}
	h.svc.CreateDonor(nil, d)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id"); c.SetParamValues(d.ID.String())
	if err := h.GetEligibility(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil { t.Fatalf("invalid JSON: %v", err) }
	if resp["eligible"] != true { t.Errorf("expected eligible true, got %v", resp["eligible"]) }
}
