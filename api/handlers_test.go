/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Time-away submission (confirmation gate, validation mapping)
- Encashment gating
- Workflow transition endpoints
- Manager queue filtering
- Import normalization
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/absence-engine/entity"
	"github.com/warp/absence-engine/envelope"
	"github.com/warp/absence-engine/store"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	h := NewHandler(store.NewMemory(), envelope.Header{Tenant: "acme", WorkflowName: "leaveApproval"})
	if err := h.SeedDemo(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return h
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
	return v
}

// =============================================================================
// TIME-AWAY SUBMISSION
// =============================================================================

func TestSubmitLeaveApplication_Success(t *testing.T) {
	router := NewRouter(newTestHandler(t))

	rec := doJSON(t, router, "POST", "/api/applications", SubmitLeaveRequest{
		EmployeeID: "E1001",
		Dates:      []string{"2026-03-02", "2026-03-03"},
		LeaveCode:  "AL",
		Confirmed:  true,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[SubmissionResponse](t, rec)
	if resp.Envelope == nil || resp.Envelope.CollectionName != envelope.CollectionLeaveApplication {
		t.Errorf("envelope = %+v", resp.Envelope)
	}
}

func TestSubmitLeaveApplication_ConfirmationGate(t *testing.T) {
	router := NewRouter(newTestHandler(t))

	rec := doJSON(t, router, "POST", "/api/applications", SubmitLeaveRequest{
		EmployeeID: "E1001",
		Dates:      []string{"2026-03-02", "2026-03-03", "2026-03-04"},
		LeaveCode:  "AL",
		Confirmed:  false,
	})

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[ErrorResponse](t, rec)
	if resp.Code != "CONFIRMATION_REQUIRED" {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestSubmitLeaveApplication_ValidationErrorsAsFieldMap(t *testing.T) {
	router := NewRouter(newTestHandler(t))

	rec := doJSON(t, router, "POST", "/api/applications", SubmitLeaveRequest{
		EmployeeID: "E1001",
		Dates:      []string{"2026-03-02"},
		// no leave code
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "VALIDATION_FAILED" || resp.Details["leaves.2026-03-02"] == "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSubmitLeaveApplication_RejectsBadDocument(t *testing.T) {
	router := NewRouter(newTestHandler(t))

	rec := doJSON(t, router, "POST", "/api/applications", SubmitLeaveRequest{
		EmployeeID: "E1001",
		Dates:      []string{"2026-03-02"},
		LeaveCode:  "AL",
		Confirmed:  true,
		Documents: []DocumentRequest{
			{FileName: "virus.exe", FileType: "application/x-msdownload", Base64Data: "QUJD"},
		},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

// =============================================================================
// ENCASHMENT
// =============================================================================

func TestSubmitEncashment_GateFailure(t *testing.T) {
	// Seeded AL policy: min retained 10, max per application 4; balance 18.
	router := NewRouter(newTestHandler(t))

	rec := doJSON(t, router, "POST", "/api/encashments", SubmitEncashmentRequest{
		EmployeeID:    "E1001",
		LeaveCode:     "AL",
		RequestedDays: 5, // over the per-application limit
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[ErrorResponse](t, rec)
	if resp.Code != "ExceedsPerApplicationLimit" {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestSubmitEncashment_Success(t *testing.T) {
	router := NewRouter(newTestHandler(t))

	rec := doJSON(t, router, "POST", "/api/encashments", SubmitEncashmentRequest{
		EmployeeID:    "E1001",
		LeaveCode:     "AL",
		RequestedDays: 4,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitEncashment_DisallowedPolicy(t *testing.T) {
	router := NewRouter(newTestHandler(t))

	rec := doJSON(t, router, "POST", "/api/encashments", SubmitEncashmentRequest{
		EmployeeID:    "E1001",
		LeaveCode:     "SL",
		RequestedDays: 1,
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[ErrorResponse](t, rec)
	if resp.Code != "NotEligible" {
		t.Errorf("code = %s", resp.Code)
	}
}

// =============================================================================
// WORKFLOW TRANSITIONS
// =============================================================================

func submitLeave(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/applications", SubmitLeaveRequest{
		EmployeeID: "E1001",
		Dates:      []string{"2026-03-02"},
		LeaveCode:  "AL",
		Confirmed:  true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Application LeaveApplicationDTO `json:"application"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Application.ID
}

func TestTransition_ApproveThenTerminal(t *testing.T) {
	h := newTestHandler(t)
	router := NewRouter(h)
	id := submitLeave(t, router)

	rec := doJSON(t, router, "POST", "/api/applications/"+id+"/approve", TransitionRequest{
		Actor: "manager", ActorID: "M1", Comment: "ok",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: %d %s", rec.Code, rec.Body.String())
	}
	resp := decode[TransitionResponse](t, rec)
	if resp.NewState != string(entity.StateApproved) || resp.StateEvent != string(entity.EventNext) {
		t.Errorf("resp = %+v", resp)
	}

	// A second approve hits the terminal state.
	rec = doJSON(t, router, "POST", "/api/applications/"+id+"/approve", TransitionRequest{
		Actor: "manager", ActorID: "M1", Comment: "again",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second approve: %d", rec.Code)
	}
}

func TestTransition_EmployeeCannotApprove(t *testing.T) {
	router := NewRouter(newTestHandler(t))
	id := submitLeave(t, router)

	rec := doJSON(t, router, "POST", "/api/applications/"+id+"/approve", TransitionRequest{
		Actor: "employee", ActorID: "E1001", Comment: "self serve",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTransition_UnknownApplication(t *testing.T) {
	router := NewRouter(newTestHandler(t))

	rec := doJSON(t, router, "POST", "/api/applications/nope/approve", TransitionRequest{
		Actor: "manager", ActorID: "M1", Comment: "ok",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

// =============================================================================
// MANAGER QUEUE
// =============================================================================

func TestManagerQueue_ExcludesSelfCancelled(t *testing.T) {
	router := NewRouter(newTestHandler(t))
	kept := submitLeave(t, router)
	cancelled := submitLeave(t, router)

	rec := doJSON(t, router, "POST", "/api/applications/"+cancelled+"/cancel", TransitionRequest{
		Actor: "employee", ActorID: "E1001", Comment: "changed plans",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "GET", "/api/manager/queue", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("queue: %d", rec.Code)
	}
	queue := decode[[]LeaveApplicationDTO](t, rec)
	if len(queue) != 1 || queue[0].ID != kept {
		t.Errorf("queue = %+v", queue)
	}
}

// =============================================================================
// BALANCES
// =============================================================================

func TestGetBalances_DerivedFigures(t *testing.T) {
	// Seeded AL row: beginning 20 + carryover 5 + accrued 2 = 27; balance 18.
	router := NewRouter(newTestHandler(t))

	rec := doJSON(t, router, "GET", "/api/employees/E1001/balances", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	balances := decode[[]BalanceDTO](t, rec)
	if len(balances) != 2 {
		t.Fatalf("rows = %d", len(balances))
	}

	al := balances[0]
	if al.LeaveCode != "AL" {
		t.Fatalf("first row = %s", al.LeaveCode)
	}
	if al.Total != 27 || al.Balance != 18 {
		t.Errorf("total/balance = %v/%v", al.Total, al.Balance)
	}
	want := 18.0 / 27.0 * 100
	if diff := al.UsedPercent - want; diff > 0.0001 || diff < -0.0001 {
		t.Errorf("usedPercent = %v, want %v", al.UsedPercent, want)
	}
	if al.LeaveTitle != "Annual Leave" {
		t.Errorf("title = %s", al.LeaveTitle)
	}
}

// =============================================================================
// IMPORT
// =============================================================================

func TestImport_NormalizesVariantPayload(t *testing.T) {
	h := newTestHandler(t)
	router := NewRouter(h)

	payload := `{"data":[{"appId":"imp-1","empId":"E2002","status":"pending",
		"leaveDetails":[{"leaveDate":"02-03-2026","typeOfLeave":"AL"}]}]}`

	req := httptest.NewRequest("POST", "/api/import/leaveApplication", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[ImportResponse](t, rec)
	if resp.Imported != 1 {
		t.Errorf("imported = %d", resp.Imported)
	}

	app, err := h.Store.GetLeaveApplication(context.Background(), "imp-1")
	if err != nil {
		t.Fatal(err)
	}
	if app.EmployeeID != "E2002" || app.WorkflowState != entity.StatePending {
		t.Errorf("app = %+v", app)
	}
}

func TestImport_BadShapeIs400(t *testing.T) {
	router := NewRouter(newTestHandler(t))

	req := httptest.NewRequest("POST", "/api/import/leaveApplication", bytes.NewBufferString(`{"results":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[ErrorResponse](t, rec)
	if resp.Code != "NO_COLLECTION" {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestImport_UnknownCollection(t *testing.T) {
	router := NewRouter(newTestHandler(t))

	req := httptest.NewRequest("POST", "/api/import/payroll", bytes.NewBufferString(`[]`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestImport_BalanceRecords(t *testing.T) {
	h := newTestHandler(t)
	router := NewRouter(h)

	payload := `[{"employee":"E3003","code":"AL","currentBalance":"11.5","beginYearBalance":15}]`
	req := httptest.NewRequest("POST", "/api/import/leaveBalance", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	recs, err := h.Store.ListBalanceRecords(context.Background(), "E3003")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || !recs[0].Balance.Equal(decimal.NewFromFloat(11.5)) {
		t.Errorf("recs = %+v", recs)
	}
}
