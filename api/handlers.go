/*
handlers.go - HTTP request handlers

PURPOSE:
  Implements all API endpoints. Handlers parse requests into domain calls,
  persist the results, and map domain errors onto HTTP status codes.

ERROR MAPPING:
  draft.ValidationErrors        -> 400 with a field->message map
  draft.ErrConfirmationDeclined -> 409 with the new draft state
  workflow.TransitionError      -> 409
  ledger.EligibilityError       -> 422 with the gate code
  catalog.ErrPolicyNotFound     -> 404
  store.ErrNotFound             -> 404
  normalize.NormalizationError  -> 400

DESIGN PRINCIPLES:
  1. Handlers are thin - domain packages do validation and gating
  2. The workflow state is adopted locally only after the transition passes
  3. Envelopes are returned to the caller so the backend round trip is visible

SEE ALSO:
  - dto.go: Request/response types
  - server.go: Route definitions
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/absence-engine/catalog"
	"github.com/warp/absence-engine/draft"
	"github.com/warp/absence-engine/entity"
	"github.com/warp/absence-engine/envelope"
	"github.com/warp/absence-engine/ledger"
	"github.com/warp/absence-engine/normalize"
	"github.com/warp/absence-engine/store"
	"github.com/warp/absence-engine/workflow"
)

// maxImportBody caps raw import payloads (documents inline push envelopes
// past the usual JSON sizes).
const maxImportBody = 32 << 20

// Handler holds the dependencies every endpoint shares.
type Handler struct {
	Store   store.Store
	Catalog *catalog.Catalog
	Header  envelope.Header
}

// NewHandler creates a handler backed by the given store.
func NewHandler(s store.Store, header envelope.Header) *Handler {
	return &Handler{
		Store:   s,
		Catalog: catalog.New(),
		Header:  header,
	}
}

// LoadPolicies fills the catalog from the store. Call once at startup.
func (h *Handler) LoadPolicies(ctx context.Context) error {
	policies, err := h.Store.ListPolicies(ctx)
	if err != nil {
		return err
	}
	for _, p := range policies {
		if err := h.Catalog.Register(p); err != nil {
			return err
		}
	}
	log.Printf("Loaded %d leave policies", len(policies))
	return nil
}

// =============================================================================
// POLICY ENDPOINTS
// =============================================================================

// ListPolicies returns all registered leave policies.
// GET /api/policies?category=time_away
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	var policies []catalog.LeavePolicy
	if cat := r.URL.Query().Get("category"); cat != "" {
		policies = h.Catalog.ByCategory(catalog.Category(cat))
	} else {
		policies = h.Catalog.All()
	}

	dtos := make([]PolicyDTO, len(policies))
	for i, p := range policies {
		dtos[i] = PolicyDTO{Config: catalog.ToJSON(p)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePolicy registers a new policy and persists it.
// POST /api/policies
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var pj catalog.PolicyJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	policy, err := catalog.FromJSON(pj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy definition", err)
		return
	}
	if err := h.Catalog.Register(policy); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy definition", err)
		return
	}
	if err := h.Store.SavePolicy(ctx, policy); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save policy", err)
		return
	}

	writeJSON(w, http.StatusCreated, PolicyDTO{Config: catalog.ToJSON(policy)})
}

// =============================================================================
// BALANCE ENDPOINTS
// =============================================================================

// GetBalances returns the derived balance figures for an employee.
// GET /api/employees/{id}/balances
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := chi.URLParam(r, "id")

	recs, err := h.Store.ListBalanceRecords(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list balances", err)
		return
	}

	figures := ledger.DeriveAll(recs)
	dtos := make([]BalanceDTO, len(figures))
	for i, f := range figures {
		title := ""
		if p, err := h.Catalog.Lookup(f.Record.LeaveCode); err == nil {
			title = p.LeaveTitle
		}
		dtos[i] = toBalanceDTO(f, title)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TIME-AWAY APPLICATION ENDPOINTS
// =============================================================================

// SubmitLeaveApplication builds, gates and persists a time-away application.
// POST /api/applications
func (h *Handler) SubmitLeaveApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	dates := make([]entity.CalendarDate, 0, len(req.Dates))
	for _, s := range req.Dates {
		d, err := entity.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		dates = append(dates, d)
	}

	b := draft.New(h.Catalog, h.Header, req.EmployeeID, dates...)
	b.SetUniform(req.LeaveCode, entity.Duration(req.Duration))
	b.SetRemarks(req.Remarks)

	if len(req.Individual) > 0 {
		b.Individualize()
		for _, day := range req.Individual {
			d, err := entity.ParseDate(day.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid date in individual assignment", err)
				return
			}
			if err := b.SetDay(d, day.LeaveCode, entity.Duration(day.Duration)); err != nil {
				writeError(w, http.StatusConflict, "Per-date assignment not available", err)
				return
			}
		}
	}

	for _, doc := range req.Documents {
		att, err := envelope.AttachmentFromDataURL(doc.FileName, doc.FileType, doc.Base64Data)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Rejected document "+doc.FileName, err)
			return
		}
		b.Attach(att)
	}

	app, env, err := b.Submit(req.Confirmed, time.Now())
	if err != nil {
		if errors.Is(err, draft.ErrConfirmationDeclined) {
			writeJSON(w, http.StatusConflict, ErrorResponse{
				Error:   "Confirm that the chosen leave applies to every selected date, or assign each date individually",
				Code:    "CONFIRMATION_REQUIRED",
				Details: map[string]string{"draft_state": string(b.State())},
			})
			return
		}
		var verrs draft.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "Application failed validation",
				Code:    "VALIDATION_FAILED",
				Details: verrs,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to submit application", err)
		return
	}

	if err := h.Store.SaveLeaveApplication(ctx, app); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save application", err)
		return
	}

	writeJSON(w, http.StatusCreated, SubmissionResponse{
		Application: toLeaveApplicationDTO(app),
		Envelope:    env,
	})
}

// ListLeaveApplications returns an employee's time-away applications.
// GET /api/employees/{id}/applications
func (h *Handler) ListLeaveApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := chi.URLParam(r, "id")

	apps, err := h.Store.ListLeaveApplications(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list applications", err)
		return
	}

	dtos := make([]LeaveApplicationDTO, len(apps))
	for i, app := range apps {
		dtos[i] = toLeaveApplicationDTO(app)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLeaveApplication returns one time-away application.
// GET /api/applications/{id}
func (h *Handler) GetLeaveApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	app, err := h.Store.GetLeaveApplication(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Application not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get application", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveApplicationDTO(app))
}

// TransitionLeaveApplication applies a workflow action to an application.
// POST /api/applications/{id}/{action}
func (h *Handler) TransitionLeaveApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	action := workflow.Action(chi.URLParam(r, "action"))

	req, ok := decodeTransition(w, r)
	if !ok {
		return
	}

	app, err := h.Store.GetLeaveApplication(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Application not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get application", err)
		return
	}

	now := time.Now()
	outcome, err := workflow.Apply(h.Header, workflow.Update{
		ID:         app.ID,
		Collection: envelope.CollectionLeaveApplication,
		State:      app.WorkflowState,
		Data:       envelope.NewLeaveApplication(h.Header, app, now).Data,
	}, action, workflow.Actor(req.Actor), req.ActorID, req.Comment, now)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	app.WorkflowState = outcome.NewState
	app.StateEvent = outcome.StateEvent
	if err := h.Store.SaveLeaveApplication(ctx, app); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save application", err)
		return
	}

	writeJSON(w, http.StatusOK, TransitionResponse{
		NewState:   string(outcome.NewState),
		StateEvent: string(outcome.StateEvent),
		Envelope:   outcome.Envelope,
	})
}

// =============================================================================
// LEAVE-OF-ABSENCE ENDPOINTS
// =============================================================================

// SubmitAbsenceApplication builds and persists a leave-of-absence application.
// POST /api/absences
func (h *Handler) SubmitAbsenceApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SubmitAbsenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	d := draft.AbsenceDraft{
		EmployeeID:    req.EmployeeID,
		TypeOfAbsence: req.TypeOfAbsence,
		Reason:        req.Reason,
	}
	var parseErr error
	d.LastDayOfWork, parseErr = parseOptionalDate(req.LastDayOfWork, parseErr)
	d.FirstDayOfAbsence, parseErr = parseOptionalDate(req.FirstDayOfAbsence, parseErr)
	d.EstimatedLastDayOfAbsence, parseErr = parseOptionalDate(req.EstimatedLastDayOfAbsence, parseErr)
	if parseErr != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", parseErr)
		return
	}
	if req.ChildsBirthDate != "" {
		bd, err := entity.ParseDate(req.ChildsBirthDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid childs_birth_date", err)
			return
		}
		d.ChildsBirthDate = &bd
	}
	if req.AdoptionPlacementDate != "" {
		ad, err := entity.ParseDate(req.AdoptionPlacementDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid adoption_placement_date", err)
			return
		}
		d.AdoptionPlacementDate = &ad
	}

	app, env, err := d.Submit(h.Header, time.Now())
	if err != nil {
		var verrs draft.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "Application failed validation",
				Code:    "VALIDATION_FAILED",
				Details: verrs,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to submit application", err)
		return
	}

	if err := h.Store.SaveAbsenceApplication(ctx, app); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save application", err)
		return
	}

	writeJSON(w, http.StatusCreated, SubmissionResponse{
		Application: toAbsenceApplicationDTO(app),
		Envelope:    env,
	})
}

// ListAbsenceApplications returns an employee's leave-of-absence applications.
// GET /api/employees/{id}/absences
func (h *Handler) ListAbsenceApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := chi.URLParam(r, "id")

	apps, err := h.Store.ListAbsenceApplications(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list applications", err)
		return
	}

	dtos := make([]AbsenceApplicationDTO, len(apps))
	for i, app := range apps {
		dtos[i] = toAbsenceApplicationDTO(app)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// TransitionAbsenceApplication applies a workflow action to a
// leave-of-absence application.
// POST /api/absences/{id}/{action}
func (h *Handler) TransitionAbsenceApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	action := workflow.Action(chi.URLParam(r, "action"))

	req, ok := decodeTransition(w, r)
	if !ok {
		return
	}

	app, err := h.Store.GetAbsenceApplication(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Application not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get application", err)
		return
	}

	now := time.Now()
	outcome, err := workflow.Apply(h.Header, workflow.Update{
		ID:         app.ID,
		Collection: envelope.CollectionAbsenceApplication,
		State:      app.WorkflowState,
		Data:       envelope.NewAbsenceApplication(h.Header, app, now).Data,
	}, action, workflow.Actor(req.Actor), req.ActorID, req.Comment, now)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	app.WorkflowState = outcome.NewState
	app.StateEvent = outcome.StateEvent
	if err := h.Store.SaveAbsenceApplication(ctx, app); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save application", err)
		return
	}

	writeJSON(w, http.StatusOK, TransitionResponse{
		NewState:   string(outcome.NewState),
		StateEvent: string(outcome.StateEvent),
		Envelope:   outcome.Envelope,
	})
}

// =============================================================================
// ENCASHMENT ENDPOINTS
// =============================================================================

// SubmitEncashment gates and persists an encashment claim.
// POST /api/encashments
func (h *Handler) SubmitEncashment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SubmitEncashmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" || req.LeaveCode == "" {
		writeError(w, http.StatusBadRequest, "employee_id and leave_code are required", nil)
		return
	}

	policy, err := h.Catalog.Lookup(req.LeaveCode)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown leave code", err)
		return
	}

	rec, ok := h.findBalanceRecord(ctx, w, req.EmployeeID, req.LeaveCode)
	if !ok {
		return
	}

	app, env, err := ledger.BuildEncashment(
		h.Header, policy, rec,
		decimal.NewFromFloat(req.RequestedDays),
		req.Remarks, time.Now(),
	)
	if err != nil {
		var elig *ledger.EligibilityError
		if errors.As(err, &elig) {
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
				Error: elig.Message,
				Code:  string(elig.Code),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to submit encashment", err)
		return
	}

	if err := h.Store.SaveEncashmentApplication(ctx, app); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save encashment", err)
		return
	}

	writeJSON(w, http.StatusCreated, SubmissionResponse{
		Application: toEncashmentApplicationDTO(app),
		Envelope:    env,
	})
}

// findBalanceRecord resolves the ledger row behind an encashment claim,
// writing the error response itself on failure.
func (h *Handler) findBalanceRecord(ctx context.Context, w http.ResponseWriter, employeeID, leaveCode string) (entity.LeaveBalanceRecord, bool) {
	recs, err := h.Store.ListBalanceRecords(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read balance", err)
		return entity.LeaveBalanceRecord{}, false
	}
	for _, rec := range recs {
		if rec.LeaveCode == leaveCode {
			return rec, true
		}
	}
	writeError(w, http.StatusNotFound, "No balance record for "+leaveCode, nil)
	return entity.LeaveBalanceRecord{}, false
}

// ListEncashments returns an employee's encashment applications.
// GET /api/employees/{id}/encashments
func (h *Handler) ListEncashments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := chi.URLParam(r, "id")

	apps, err := h.Store.ListEncashmentApplications(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list encashments", err)
		return
	}

	dtos := make([]EncashmentApplicationDTO, len(apps))
	for i, app := range apps {
		dtos[i] = toEncashmentApplicationDTO(app)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// TransitionEncashment applies a workflow action to an encashment claim.
// POST /api/encashments/{id}/{action}
func (h *Handler) TransitionEncashment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	action := workflow.Action(chi.URLParam(r, "action"))

	req, ok := decodeTransition(w, r)
	if !ok {
		return
	}

	app, err := h.Store.GetEncashmentApplication(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Application not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get application", err)
		return
	}

	now := time.Now()
	outcome, err := workflow.Apply(h.Header, workflow.Update{
		ID:         app.ID,
		Collection: envelope.CollectionEncashmentApplication,
		State:      app.WorkflowState,
		Data:       envelope.NewEncashmentApplication(h.Header, app, now).Data,
	}, action, workflow.Actor(req.Actor), req.ActorID, req.Comment, now)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	app.WorkflowState = outcome.NewState
	app.StateEvent = outcome.StateEvent
	if err := h.Store.SaveEncashmentApplication(ctx, app); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save application", err)
		return
	}

	writeJSON(w, http.StatusOK, TransitionResponse{
		NewState:   string(outcome.NewState),
		StateEvent: string(outcome.StateEvent),
		Envelope:   outcome.Envelope,
	})
}

// =============================================================================
// MANAGER QUEUE
// =============================================================================

// ManagerQueue returns the applications awaiting manager review. Employee
// self-cancellations are excluded.
// GET /api/manager/queue
func (h *Handler) ManagerQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	apps, err := h.Store.ListAllLeaveApplications(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list applications", err)
		return
	}

	queue := workflow.FilterManagerQueue(apps)
	dtos := make([]LeaveApplicationDTO, len(queue))
	for i, app := range queue {
		dtos[i] = toLeaveApplicationDTO(app)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// IMPORT (normalized upstream payloads)
// =============================================================================

// Import normalizes a raw upstream payload and persists the records.
// POST /api/import/{collection}
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	collection := chi.URLParam(r, "collection")

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	var count int
	switch collection {
	case string(envelope.CollectionLeaveApplication):
		apps, nerr := normalize.LeaveApplications(raw)
		if nerr != nil {
			writeNormalizationError(w, nerr)
			return
		}
		for _, app := range apps {
			if err := h.Store.SaveLeaveApplication(ctx, app); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to save imported record", err)
				return
			}
		}
		count = len(apps)

	case string(envelope.CollectionAbsenceApplication):
		apps, nerr := normalize.AbsenceApplications(raw)
		if nerr != nil {
			writeNormalizationError(w, nerr)
			return
		}
		for _, app := range apps {
			if err := h.Store.SaveAbsenceApplication(ctx, app); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to save imported record", err)
				return
			}
		}
		count = len(apps)

	case string(envelope.CollectionEncashmentApplication):
		apps, nerr := normalize.EncashmentApplications(raw)
		if nerr != nil {
			writeNormalizationError(w, nerr)
			return
		}
		for _, app := range apps {
			if err := h.Store.SaveEncashmentApplication(ctx, app); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to save imported record", err)
				return
			}
		}
		count = len(apps)

	case "leaveBalance":
		recs, nerr := normalize.BalanceRecords(raw)
		if nerr != nil {
			writeNormalizationError(w, nerr)
			return
		}
		for _, rec := range recs {
			if err := h.Store.SaveBalanceRecord(ctx, rec); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to save imported record", err)
				return
			}
		}
		count = len(recs)

	default:
		writeError(w, http.StatusNotFound, "Unknown collection "+collection, nil)
		return
	}

	writeJSON(w, http.StatusOK, ImportResponse{Collection: collection, Imported: count})
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeTransition(w http.ResponseWriter, r *http.Request) (TransitionRequest, bool) {
	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return TransitionRequest{}, false
	}
	if req.Actor != string(workflow.ActorManager) && req.Actor != string(workflow.ActorEmployee) {
		writeError(w, http.StatusBadRequest, "actor must be manager or employee", nil)
		return TransitionRequest{}, false
	}
	return req, true
}

func writeTransitionError(w http.ResponseWriter, err error) {
	var terr *workflow.TransitionError
	if errors.As(err, &terr) {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: terr.Error(),
			Code:  "ILLEGAL_TRANSITION",
		})
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to apply transition", err)
}

func writeNormalizationError(w http.ResponseWriter, err error) {
	var nerr *normalize.NormalizationError
	if errors.As(err, &nerr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: nerr.Error(),
			Code:  "NO_COLLECTION",
		})
		return
	}
	writeError(w, http.StatusBadRequest, "Failed to normalize payload", err)
}

func parseOptionalDate(s string, prev error) (entity.CalendarDate, error) {
	if prev != nil {
		return entity.CalendarDate{}, prev
	}
	if s == "" {
		return entity.CalendarDate{}, nil
	}
	return entity.ParseDate(s)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
