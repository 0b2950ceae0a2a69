/*
absence.go - Leave-of-absence drafts

PURPOSE:
  A leave of absence is a date range, not a day set: last day of work,
  first day of absence, estimated return. Validation enforces the ordering
  invariant and the required reason; the total day count is the inclusive
  calendar span, weekends included.
*/
package draft

import (
	"time"

	"github.com/google/uuid"

	"github.com/warp/absence-engine/entity"
	"github.com/warp/absence-engine/envelope"
)

// AbsenceDraft assembles a leave-of-absence application.
type AbsenceDraft struct {
	EmployeeID                string
	TypeOfAbsence             string
	LastDayOfWork             entity.CalendarDate
	FirstDayOfAbsence         entity.CalendarDate
	EstimatedLastDayOfAbsence entity.CalendarDate
	Reason                    string
	ChildsBirthDate           *entity.CalendarDate
	AdoptionPlacementDate     *entity.CalendarDate
}

// Validate enforces the leave-of-absence rules:
//
//	lastDayOfWork < firstDayOfAbsence <= estimatedLastDayOfAbsence
//	reason is required
//
// A nil return means the draft is submittable.
func (d *AbsenceDraft) Validate() ValidationErrors {
	errs := make(ValidationErrors)

	if d.LastDayOfWork.IsZero() {
		errs["lastDayOfWork"] = "last day of work is required"
	}
	if d.FirstDayOfAbsence.IsZero() {
		errs["firstDayOfAbsence"] = "first day of absence is required"
	}
	if d.EstimatedLastDayOfAbsence.IsZero() {
		errs["estimatedLastDayOfAbsence"] = "estimated last day of absence is required"
	}
	if d.Reason == "" {
		errs["reason"] = "reason is required"
	}

	if !d.LastDayOfWork.IsZero() && !d.FirstDayOfAbsence.IsZero() &&
		!d.LastDayOfWork.Before(d.FirstDayOfAbsence) {
		errs["lastDayOfWork"] = "last day of work must be before the first day of absence"
	}
	if !d.FirstDayOfAbsence.IsZero() && !d.EstimatedLastDayOfAbsence.IsZero() &&
		d.EstimatedLastDayOfAbsence.Before(d.FirstDayOfAbsence) {
		errs["estimatedLastDayOfAbsence"] = "estimated last day cannot be before the first day of absence"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// TotalDays is the inclusive calendar-day count of the absence. Weekends
// are counted: a leave of absence suspends employment, it does not book
// working days.
func (d *AbsenceDraft) TotalDays() int {
	return entity.InclusiveDays(d.FirstDayOfAbsence, d.EstimatedLastDayOfAbsence)
}

// Submit validates the draft and produces the application with its insert
// envelope.
func (d *AbsenceDraft) Submit(header envelope.Header, now time.Time) (entity.LeaveOfAbsenceApplication, *envelope.Submission, error) {
	if errs := d.Validate(); errs != nil {
		return entity.LeaveOfAbsenceApplication{}, nil, errs
	}

	app := entity.LeaveOfAbsenceApplication{
		ID:                        uuid.NewString(),
		EmployeeID:                d.EmployeeID,
		TypeOfAbsence:             d.TypeOfAbsence,
		LastDayOfWork:             d.LastDayOfWork,
		FirstDayOfAbsence:         d.FirstDayOfAbsence,
		EstimatedLastDayOfAbsence: d.EstimatedLastDayOfAbsence,
		TotalDays:                 d.TotalDays(),
		Reason:                    d.Reason,
		ChildsBirthDate:           d.ChildsBirthDate,
		AdoptionPlacementDate:     d.AdoptionPlacementDate,
		WorkflowState:             entity.StateInitiated,
	}

	return app, envelope.NewAbsenceApplication(header, app, now), nil
}
