/*
Package draft turns calendar date selections into submittable applications.

PURPOSE:
  Assembles and validates the client-held candidate application before
  anything is sent to the backend. Two families: time-away drafts built from
  a set of selected days (this file) and leave-of-absence drafts built from
  a date range (absence.go).

DRAFT STATE MACHINE (draft-local, never persisted):

  ┌──────────────────┐  submit, not confirmed   ┌──────────────────┐
  │ MULTI_UNASSIGNED │ ───────────────────────▶ │ MULTI_INDIVIDUAL │
  └──────────────────┘                          └──────────────────┘
       ≥2 dates, one code/duration                per-date overrides
       applies to all dates                       allowed

  ┌────────┐
  │ SINGLE │  exactly one date; individualization is not offered
  └────────┘

  Submitting from MULTI_UNASSIGNED passes a confirmation gate: the operator
  must confirm that the single chosen code/duration applies uniformly to
  every date. Declining moves the draft to MULTI_INDIVIDUAL WITHOUT
  submitting. Only SINGLE, MULTI_INDIVIDUAL, or a confirmed
  MULTI_UNASSIGNED may submit.

VALIDATION:
  Every selected date needs a leave code resolvable in the policy catalog
  under the time-away category; duration defaults to a full day. Failures
  come back as a field-scoped ValidationErrors map and block submission
  until the map is empty.

SEE ALSO:
  - absence.go: leave-of-absence drafts
  - catalog: leave code resolution
  - envelope: the submission payload produced here
*/
package draft

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warp/absence-engine/catalog"
	"github.com/warp/absence-engine/entity"
	"github.com/warp/absence-engine/envelope"
)

// =============================================================================
// DRAFT STATE
// =============================================================================

// State is the draft-local assembly state.
type State string

const (
	StateSingle          State = "SINGLE"
	StateMultiUnassigned State = "MULTI_UNASSIGNED"
	StateMultiIndividual State = "MULTI_INDIVIDUAL"
)

// ErrConfirmationDeclined is returned when a MULTI_UNASSIGNED draft is
// submitted without confirmation. The draft has moved to MULTI_INDIVIDUAL
// and nothing was submitted.
var ErrConfirmationDeclined = errors.New("uniform assignment not confirmed")

// ErrIndividualizationUnavailable is returned when per-date overrides are
// attempted outside the MULTI_INDIVIDUAL state.
var ErrIndividualizationUnavailable = errors.New("per-date assignment requires an individualized draft")

// ValidationErrors maps field names to human-readable problems. Submission
// is blocked until the map is empty.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// =============================================================================
// TIME-AWAY DRAFT BUILDER
// =============================================================================

type dayChoice struct {
	LeaveCode string
	Duration  entity.Duration
}

// Builder assembles a time-away application from selected calendar dates.
type Builder struct {
	catalog    *catalog.Catalog
	header     envelope.Header
	employeeID string
	dates      []entity.CalendarDate
	state      State

	uniform   dayChoice
	overrides map[string]dayChoice // keyed by ISO date

	remarks   string
	documents []entity.Attachment
}

// New starts a draft for the given employee and selected dates. Duplicate
// dates collapse; one date starts in SINGLE, more start in MULTI_UNASSIGNED.
func New(cat *catalog.Catalog, header envelope.Header, employeeID string, dates ...entity.CalendarDate) *Builder {
	seen := make(map[string]bool, len(dates))
	var unique []entity.CalendarDate
	for _, d := range dates {
		if !seen[d.String()] {
			seen[d.String()] = true
			unique = append(unique, d)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].Before(unique[j]) })

	state := StateMultiUnassigned
	if len(unique) <= 1 {
		state = StateSingle
	}

	return &Builder{
		catalog:    cat,
		header:     header,
		employeeID: employeeID,
		dates:      unique,
		state:      state,
		overrides:  make(map[string]dayChoice),
	}
}

// State reports the current draft state.
func (b *Builder) State() State { return b.state }

// Dates returns the selected dates in ascending order.
func (b *Builder) Dates() []entity.CalendarDate { return b.dates }

// SetUniform chooses the leave code and duration that applies to every
// selected date (the only choice offered in SINGLE and MULTI_UNASSIGNED).
func (b *Builder) SetUniform(leaveCode string, duration entity.Duration) *Builder {
	b.uniform = dayChoice{LeaveCode: leaveCode, Duration: duration}
	return b
}

// Individualize moves the draft to per-date assignment mode.
func (b *Builder) Individualize() *Builder {
	if b.state == StateMultiUnassigned {
		b.state = StateMultiIndividual
	}
	return b
}

// SetDay overrides the leave code and duration for one selected date.
// Only available in MULTI_INDIVIDUAL.
func (b *Builder) SetDay(date entity.CalendarDate, leaveCode string, duration entity.Duration) error {
	if b.state != StateMultiIndividual {
		return ErrIndividualizationUnavailable
	}
	b.overrides[date.String()] = dayChoice{LeaveCode: leaveCode, Duration: duration}
	return nil
}

// SetRemarks attaches free-text remarks to the draft.
func (b *Builder) SetRemarks(remarks string) *Builder {
	b.remarks = remarks
	return b
}

// Attach adds a validated document to the draft.
func (b *Builder) Attach(doc entity.Attachment) *Builder {
	b.documents = append(b.documents, doc)
	return b
}

// choiceFor resolves the effective code/duration for one date.
func (b *Builder) choiceFor(date entity.CalendarDate) dayChoice {
	c := b.uniform
	if b.state == StateMultiIndividual {
		if o, ok := b.overrides[date.String()]; ok {
			c = o
		}
	}
	if c.Duration == "" {
		c.Duration = entity.FullDay
	}
	return c
}

// Validate checks every selected date against the policy catalog. A nil
// return means the draft is submittable.
func (b *Builder) Validate() ValidationErrors {
	errs := make(ValidationErrors)

	if len(b.dates) == 0 {
		errs["dates"] = "select at least one date"
		return errs
	}

	for _, d := range b.dates {
		c := b.choiceFor(d)
		field := "leaves." + d.String()
		if c.LeaveCode == "" {
			errs[field] = "no leave code assigned"
			continue
		}
		if _, err := b.catalog.Resolve(c.LeaveCode, catalog.TimeAway); err != nil {
			errs[field] = fmt.Sprintf("%s is not a time-away leave code", c.LeaveCode)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Submit validates the draft and produces the application with its insert
// envelope.
//
// The confirmation gate: submitting from MULTI_UNASSIGNED with
// confirmed=false moves the draft to MULTI_INDIVIDUAL and returns
// ErrConfirmationDeclined - no envelope is produced.
func (b *Builder) Submit(confirmed bool, now time.Time) (entity.LeaveApplication, *envelope.Submission, error) {
	if b.state == StateMultiUnassigned && !confirmed {
		b.state = StateMultiIndividual
		return entity.LeaveApplication{}, nil, ErrConfirmationDeclined
	}

	if errs := b.Validate(); errs != nil {
		return entity.LeaveApplication{}, nil, errs
	}

	leaves := make([]entity.DayAssignment, len(b.dates))
	for i, d := range b.dates {
		c := b.choiceFor(d)
		leaves[i] = entity.DayAssignment{Date: d, LeaveCode: c.LeaveCode, Duration: c.Duration}
	}

	from, to := entity.MinMaxDates(b.dates)
	app := entity.LeaveApplication{
		ID:            uuid.NewString(),
		EmployeeID:    b.employeeID,
		FromDate:      from,
		ToDate:        to,
		Leaves:        leaves,
		Remarks:       b.remarks,
		Documents:     b.documents,
		WorkflowState: entity.StateInitiated,
		AppliedDate:   entity.DateOf(now),
	}

	return app, envelope.NewLeaveApplication(b.header, app, now), nil
}
