/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal entity model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in the domain packages (draft, ledger, workflow), not
  in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/absence-engine/catalog"
	"github.com/warp/absence-engine/entity"
	"github.com/warp/absence-engine/envelope"
	"github.com/warp/absence-engine/ledger"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// DayAssignmentRequest is one per-date override in an individualized draft.
type DayAssignmentRequest struct {
	Date      string `json:"date"` // ISO yyyy-mm-dd
	LeaveCode string `json:"leave_code"`
	Duration  string `json:"duration,omitempty"`
}

// DocumentRequest is an uploaded attachment, already base64-encoded by the
// client (bare payload or data URL).
type DocumentRequest struct {
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	Base64Data string `json:"base64_data"`
}

// SubmitLeaveRequest submits a time-away draft.
type SubmitLeaveRequest struct {
	EmployeeID string   `json:"employee_id"`
	Dates      []string `json:"dates"` // ISO yyyy-mm-dd

	// Uniform assignment (SINGLE / MULTI_UNASSIGNED)
	LeaveCode string `json:"leave_code,omitempty"`
	Duration  string `json:"duration,omitempty"`

	// Per-date overrides; non-empty moves the draft to MULTI_INDIVIDUAL
	Individual []DayAssignmentRequest `json:"individual,omitempty"`

	// Confirmation gate answer for MULTI_UNASSIGNED submissions
	Confirmed bool `json:"confirmed"`

	Remarks   string            `json:"remarks,omitempty"`
	Documents []DocumentRequest `json:"documents,omitempty"`
}

// SubmitAbsenceRequest submits a leave-of-absence draft.
type SubmitAbsenceRequest struct {
	EmployeeID                string `json:"employee_id"`
	TypeOfAbsence             string `json:"type_of_absence"`
	LastDayOfWork             string `json:"last_day_of_work"`
	FirstDayOfAbsence         string `json:"first_day_of_absence"`
	EstimatedLastDayOfAbsence string `json:"estimated_last_day_of_absence"`
	Reason                    string `json:"reason"`
	ChildsBirthDate           string `json:"childs_birth_date,omitempty"`
	AdoptionPlacementDate     string `json:"adoption_placement_date,omitempty"`
}

// SubmitEncashmentRequest submits an encashment claim.
type SubmitEncashmentRequest struct {
	EmployeeID    string  `json:"employee_id"`
	LeaveCode     string  `json:"leave_code"`
	RequestedDays float64 `json:"requested_days"`
	Remarks       string  `json:"remarks,omitempty"`
}

// TransitionRequest asks for a workflow action on an application.
type TransitionRequest struct {
	Actor   string `json:"actor"` // "manager" or "employee"
	ActorID string `json:"actor_id"`
	Comment string `json:"comment"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// DayAssignmentDTO is one day of a leave application.
type DayAssignmentDTO struct {
	Date      string `json:"date"`
	LeaveCode string `json:"leave_code"`
	Duration  string `json:"duration"`
}

// LeaveApplicationDTO represents a time-away application.
type LeaveApplicationDTO struct {
	ID            string             `json:"id"`
	EmployeeID    string             `json:"employee_id"`
	FromDate      string             `json:"from_date"`
	ToDate        string             `json:"to_date"`
	Leaves        []DayAssignmentDTO `json:"leaves"`
	TotalDays     float64            `json:"total_days"`
	Remarks       string             `json:"remarks,omitempty"`
	DocumentCount int                `json:"document_count,omitempty"`
	WorkflowState string             `json:"workflow_state"`
	StateEvent    string             `json:"state_event,omitempty"`
	AppliedDate   string             `json:"applied_date,omitempty"`
}

// AbsenceApplicationDTO represents a leave-of-absence application.
type AbsenceApplicationDTO struct {
	ID                        string `json:"id"`
	EmployeeID                string `json:"employee_id"`
	TypeOfAbsence             string `json:"type_of_absence"`
	LastDayOfWork             string `json:"last_day_of_work"`
	FirstDayOfAbsence         string `json:"first_day_of_absence"`
	EstimatedLastDayOfAbsence string `json:"estimated_last_day_of_absence"`
	ActualReturnDate          string `json:"actual_return_date,omitempty"`
	TotalDays                 int    `json:"total_days"`
	Reason                    string `json:"reason"`
	WorkflowState             string `json:"workflow_state"`
	StateEvent                string `json:"state_event,omitempty"`
}

// EncashmentApplicationDTO represents an encashment claim.
type EncashmentApplicationDTO struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	LeaveCode     string  `json:"leave_code"`
	RequestedDays float64 `json:"requested_days"`
	Remarks       string  `json:"remarks,omitempty"`
	WorkflowState string  `json:"workflow_state"`
	StateEvent    string  `json:"state_event,omitempty"`
}

// BalanceDTO is one derived balance row for an employee.
type BalanceDTO struct {
	LeaveCode   string  `json:"leave_code"`
	LeaveTitle  string  `json:"leave_title,omitempty"`
	UnitOfTime  string  `json:"unit_of_time,omitempty"`
	Balance     float64 `json:"balance"`
	Total       float64 `json:"total"`
	UsedPercent float64 `json:"used_percent"`
	Encashed    float64 `json:"encashed"`
	AsOfPeriod  string  `json:"as_of_period,omitempty"`
}

// PolicyDTO represents a leave policy.
type PolicyDTO struct {
	Config catalog.PolicyJSON `json:"config"`
}

// SubmissionResponse wraps a created application with the envelope that
// would travel to the backend workflow engine.
type SubmissionResponse struct {
	Application any                  `json:"application"`
	Envelope    *envelope.Submission `json:"envelope"`
}

// TransitionResponse reports a successful workflow transition.
type TransitionResponse struct {
	NewState   string               `json:"new_state"`
	StateEvent string               `json:"state_event"`
	Envelope   *envelope.Submission `json:"envelope"`
}

// ImportResponse reports how many records an import normalized.
type ImportResponse struct {
	Collection string `json:"collection"`
	Imported   int    `json:"imported"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toLeaveApplicationDTO(app entity.LeaveApplication) LeaveApplicationDTO {
	leaves := make([]DayAssignmentDTO, len(app.Leaves))
	for i, l := range app.Leaves {
		leaves[i] = DayAssignmentDTO{
			Date:      l.Date.String(),
			LeaveCode: l.LeaveCode,
			Duration:  string(l.Duration),
		}
	}
	total, _ := app.TotalDays().Float64()

	dto := LeaveApplicationDTO{
		ID:            app.ID,
		EmployeeID:    app.EmployeeID,
		FromDate:      app.FromDate.String(),
		ToDate:        app.ToDate.String(),
		Leaves:        leaves,
		TotalDays:     total,
		Remarks:       app.Remarks,
		DocumentCount: len(app.Documents),
		WorkflowState: string(app.WorkflowState),
		StateEvent:    string(app.StateEvent),
	}
	if !app.AppliedDate.IsZero() {
		dto.AppliedDate = app.AppliedDate.String()
	}
	return dto
}

func toAbsenceApplicationDTO(app entity.LeaveOfAbsenceApplication) AbsenceApplicationDTO {
	dto := AbsenceApplicationDTO{
		ID:                        app.ID,
		EmployeeID:                app.EmployeeID,
		TypeOfAbsence:             app.TypeOfAbsence,
		LastDayOfWork:             app.LastDayOfWork.String(),
		FirstDayOfAbsence:         app.FirstDayOfAbsence.String(),
		EstimatedLastDayOfAbsence: app.EstimatedLastDayOfAbsence.String(),
		TotalDays:                 app.TotalDays,
		Reason:                    app.Reason,
		WorkflowState:             string(app.WorkflowState),
		StateEvent:                string(app.StateEvent),
	}
	if app.ActualReturnDate != nil {
		dto.ActualReturnDate = app.ActualReturnDate.String()
	}
	return dto
}

func toEncashmentApplicationDTO(app entity.EncashmentApplication) EncashmentApplicationDTO {
	days, _ := app.RequestedDays.Float64()
	return EncashmentApplicationDTO{
		ID:            app.ID,
		EmployeeID:    app.EmployeeID,
		LeaveCode:     app.LeaveCode,
		RequestedDays: days,
		Remarks:       app.Remarks,
		WorkflowState: string(app.WorkflowState),
		StateEvent:    string(app.StateEvent),
	}
}

func toBalanceDTO(f ledger.Figures, title string) BalanceDTO {
	balance, _ := f.Record.Balance.Float64()
	total, _ := f.Total.Float64()
	used, _ := f.UsedPercent.Float64()
	encashed, _ := f.Record.Encashed.Float64()
	return BalanceDTO{
		LeaveCode:   f.Record.LeaveCode,
		LeaveTitle:  title,
		UnitOfTime:  f.Record.UnitOfTime,
		Balance:     balance,
		Total:       total,
		UsedPercent: used,
		Encashed:    encashed,
		AsOfPeriod:  f.Record.AsOfPeriod,
	}
}
