/*
Package envelope builds the outbound submission payloads.

PURPOSE:
  Every write to the backend of record - a new application, an approval, a
  cancellation - travels as one submission envelope. This package owns that
  wire shape so the draft builder, ledger and workflow machine all emit
  byte-identical structure.

WIRE SHAPE:
  {
    "tenant": "...", "action": "insert"|"update",
    "collectionName": "leaveApplication"|"specialLeaveApplication"|
                      "leaveEncashmentApplication",
    "id": "...", "event": "application"|"applicationFinal",
    "data": { tenantCode, workflowName, stateEvent, uploadedBy, createdOn,
              employeeID, ...entity fields..., workflowState, remarks,
              documents?, documentCount? }
  }

  Dates serialize as dd-mm-yyyy; timestamps as yyyy-mm-ddThh:mm:ss.

SEE ALSO:
  - document.go: attachment encoding and limits
  - draft, ledger, workflow: envelope producers
*/
package envelope

import (
	"time"

	"github.com/warp/absence-engine/entity"
)

// =============================================================================
// ENVELOPE TYPES
// =============================================================================

// Action distinguishes a first submission from a workflow update.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
)

// Collection names the backend collection an envelope targets.
type Collection string

const (
	CollectionLeaveApplication      Collection = "leaveApplication"
	CollectionAbsenceApplication    Collection = "specialLeaveApplication"
	CollectionEncashmentApplication Collection = "leaveEncashmentApplication"
)

// Event tells the backend workflow engine whether this submission opens the
// workflow or finalizes a step.
type Event string

const (
	EventApplication      Event = "application"
	EventApplicationFinal Event = "applicationFinal"
)

// Submission is the complete outbound envelope.
type Submission struct {
	Tenant         string         `json:"tenant"`
	Action         Action         `json:"action"`
	CollectionName Collection     `json:"collectionName"`
	ID             string         `json:"id"`
	Event          Event          `json:"event"`
	Data           map[string]any `json:"data"`
}

// =============================================================================
// DATA BUILDERS
// =============================================================================

// Header carries the context every envelope's data block repeats.
type Header struct {
	Tenant       string
	WorkflowName string
	UploadedBy   string
}

func (h Header) base(employeeID string, stateEvent entity.StateEvent, now time.Time) map[string]any {
	return map[string]any{
		"tenantCode":   h.Tenant,
		"workflowName": h.WorkflowName,
		"stateEvent":   string(stateEvent),
		"uploadedBy":   h.UploadedBy,
		"createdOn":    entity.Timestamp(now),
		"employeeID":   employeeID,
	}
}

// NewLeaveApplication builds the insert envelope for a time-away draft.
func NewLeaveApplication(h Header, app entity.LeaveApplication, now time.Time) *Submission {
	data := h.base(app.EmployeeID, app.StateEvent, now)
	data["fromDate"] = app.FromDate.DMY()
	data["toDate"] = app.ToDate.DMY()
	data["remarks"] = app.Remarks
	data["workflowState"] = string(app.WorkflowState)

	leaves := make([]map[string]any, len(app.Leaves))
	for i, l := range app.Leaves {
		leaves[i] = map[string]any{
			"date":      l.Date.DMY(),
			"leaveCode": l.LeaveCode,
			"duration":  string(l.Duration),
		}
	}
	data["leaves"] = leaves
	attachDocuments(data, app.Documents)

	return &Submission{
		Tenant:         h.Tenant,
		Action:         ActionInsert,
		CollectionName: CollectionLeaveApplication,
		ID:             app.ID,
		Event:          EventApplication,
		Data:           data,
	}
}

// NewAbsenceApplication builds the insert envelope for a leave-of-absence
// draft.
func NewAbsenceApplication(h Header, app entity.LeaveOfAbsenceApplication, now time.Time) *Submission {
	data := h.base(app.EmployeeID, app.StateEvent, now)
	data["typeOfAbsence"] = app.TypeOfAbsence
	data["lastDayOfWork"] = app.LastDayOfWork.DMY()
	data["firstDayOfAbsence"] = app.FirstDayOfAbsence.DMY()
	data["estimatedLastDayOfAbsence"] = app.EstimatedLastDayOfAbsence.DMY()
	data["totalDays"] = app.TotalDays
	data["reason"] = app.Reason
	data["workflowState"] = string(app.WorkflowState)
	if app.ActualReturnDate != nil {
		data["actualReturnDate"] = app.ActualReturnDate.DMY()
	}
	if app.ChildsBirthDate != nil {
		data["childsBirthDate"] = app.ChildsBirthDate.DMY()
	}
	if app.AdoptionPlacementDate != nil {
		data["adoptionPlacementDate"] = app.AdoptionPlacementDate.DMY()
	}

	return &Submission{
		Tenant:         h.Tenant,
		Action:         ActionInsert,
		CollectionName: CollectionAbsenceApplication,
		ID:             app.ID,
		Event:          EventApplication,
		Data:           data,
	}
}

// NewEncashmentApplication builds the insert envelope for an encashment
// claim that already passed the ledger's eligibility gate.
func NewEncashmentApplication(h Header, app entity.EncashmentApplication, now time.Time) *Submission {
	data := h.base(app.EmployeeID, app.StateEvent, now)
	data["leaveCode"] = app.LeaveCode
	data["requestedDays"] = app.RequestedDays.InexactFloat64()
	data["remarks"] = app.Remarks
	data["workflowState"] = string(app.WorkflowState)

	return &Submission{
		Tenant:         h.Tenant,
		Action:         ActionInsert,
		CollectionName: CollectionEncashmentApplication,
		ID:             app.ID,
		Event:          EventApplication,
		Data:           data,
	}
}

// Update builds the workflow-update envelope for an existing application.
// existing is the entity's current data block; the merge never touches
// workflowState - the backend is its sole writer.
func Update(h Header, collection Collection, id string, existing map[string]any, stateEvent entity.StateEvent, comment string, now time.Time) *Submission {
	data := make(map[string]any, len(existing)+6)
	for k, v := range existing {
		data[k] = v
	}
	for k, v := range h.base(asString(existing["employeeID"]), stateEvent, now) {
		data[k] = v
	}
	data["remarks"] = comment

	return &Submission{
		Tenant:         h.Tenant,
		Action:         ActionUpdate,
		CollectionName: collection,
		ID:             id,
		Event:          EventApplicationFinal,
		Data:           data,
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func attachDocuments(data map[string]any, docs []entity.Attachment) {
	if len(docs) == 0 {
		return
	}
	out := make([]map[string]any, len(docs))
	for i, d := range docs {
		out[i] = map[string]any{
			"fileName":   d.FileName,
			"fileSize":   d.FileSize,
			"fileType":   d.FileType,
			"base64Data": d.Base64Data,
		}
	}
	data["documents"] = out
	data["documentCount"] = len(docs)
}
