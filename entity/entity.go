/*
Package entity defines the canonical absence entity model.

PURPOSE:
  This package is the stable vocabulary every other package speaks. Upstream
  payloads arrive in inconsistent shapes; the normalize package canonicalizes
  them into these types exactly once, and everything downstream (ledger,
  draft builder, workflow machine, API) consumes only this model.

KEY CONCEPTS:
  - LeaveApplication: a dated set of per-day leave assignments
  - LeaveOfAbsenceApplication: an extended absence with a return estimate
  - EncashmentApplication: conversion of unused balance into a claim
  - LeaveBalanceRecord: the backend-owned balance ledger row
  - WorkflowState / StateEvent: lifecycle status and action tokens

DESIGN PRINCIPLES:
  1. The backend is the source of truth for `Balance` and `WorkflowState`.
     Nothing in this module recomputes or overwrites them locally.
  2. Quantities use decimal.Decimal; half-day granularity makes binary
     floats unacceptable.
  3. Applications are never deleted, only moved to a terminal state.

SEE ALSO:
  - normalize: produces these entities from raw payloads
  - workflow: legal state transitions
  - ledger: derived balance figures and encashment gating
*/
package entity

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// WORKFLOW STATES AND EVENTS
// =============================================================================

// WorkflowState is the backend-owned lifecycle status of an application.
type WorkflowState string

const (
	StateInitiated WorkflowState = "INITIATED"
	StateValidated WorkflowState = "VALIDATED"
	StatePending   WorkflowState = "PENDING"
	StateApproved  WorkflowState = "APPROVED"
	StateRejected  WorkflowState = "REJECTED"
	StateCancelled WorkflowState = "CANCELLED"
)

// Terminal reports whether no further transition is possible from s.
func (s WorkflowState) Terminal() bool {
	return s == StateApproved || s == StateRejected || s == StateCancelled
}

// StateEvent is the action token sent alongside a state change and
// interpreted by the backend workflow engine.
type StateEvent string

const (
	EventNext       StateEvent = "NEXT"
	EventReject     StateEvent = "REJECT"
	EventCancel     StateEvent = "CANCEL"
	EventUserCancel StateEvent = "USERCANCEL"
)

// =============================================================================
// DAY ASSIGNMENT - One day of one application
// =============================================================================

// Duration is how much of a day an assignment covers.
type Duration string

const (
	FullDay    Duration = "FULL_DAY"
	FirstHalf  Duration = "FIRST_HALF"
	SecondHalf Duration = "SECOND_HALF"
)

// Days returns the day fraction the duration represents.
func (d Duration) Days() decimal.Decimal {
	if d == FirstHalf || d == SecondHalf {
		return decimal.NewFromFloat(0.5)
	}
	return decimal.NewFromInt(1)
}

// DayAssignment binds one calendar day to a leave code and duration.
// It belongs to exactly one LeaveApplication.
type DayAssignment struct {
	Date      CalendarDate
	LeaveCode string
	Duration  Duration
}

// =============================================================================
// APPLICATIONS
// =============================================================================

// Attachment is a file submitted alongside an application. Base64Data
// carries the encoded bytes with any data-URL prefix already stripped.
type Attachment struct {
	FileName   string
	FileSize   int64
	FileType   string
	Base64Data string
}

// LeaveApplication is a time-away request spanning one or more days.
//
// Invariant: FromDate <= every assignment date <= ToDate, and Leaves is
// non-empty for any application that has been submitted.
type LeaveApplication struct {
	ID            string
	EmployeeID    string
	FromDate      CalendarDate
	ToDate        CalendarDate
	Leaves        []DayAssignment
	Remarks       string
	Documents     []Attachment
	WorkflowState WorkflowState
	StateEvent    StateEvent
	AppliedDate   CalendarDate
}

// TotalDays sums the day fractions of all assignments.
func (a LeaveApplication) TotalDays() decimal.Decimal {
	total := decimal.Zero
	for _, l := range a.Leaves {
		total = total.Add(l.Duration.Days())
	}
	return total
}

// LeaveOfAbsenceApplication is an extended absence (parental, medical,
// sabbatical and similar).
//
// Invariant: LastDayOfWork < FirstDayOfAbsence <= EstimatedLastDayOfAbsence.
type LeaveOfAbsenceApplication struct {
	ID                        string
	EmployeeID                string
	TypeOfAbsence             string
	LastDayOfWork             CalendarDate
	FirstDayOfAbsence         CalendarDate
	EstimatedLastDayOfAbsence CalendarDate
	ActualReturnDate          *CalendarDate
	TotalDays                 int
	Reason                    string
	ChildsBirthDate           *CalendarDate
	AdoptionPlacementDate     *CalendarDate
	WorkflowState             WorkflowState
	StateEvent                StateEvent
}

// EncashmentApplication converts unused leave balance into a monetary claim.
// RequestedDays moves in half-day steps.
type EncashmentApplication struct {
	ID            string
	EmployeeID    string
	LeaveCode     string
	RequestedDays decimal.Decimal
	Remarks       string
	WorkflowState WorkflowState
	StateEvent    StateEvent
}

// =============================================================================
// BALANCE LEDGER RECORD
// =============================================================================

// LeaveBalanceRecord is one row of the backend-owned balance ledger for an
// employee and leave code.
//
// Balance is authoritative and supplied by the backend of record; it is
// never recomputed on this side. Derived display figures live in the ledger
// package and are never written back.
type LeaveBalanceRecord struct {
	EmployeeID                    string
	LeaveCode                     string
	UnitOfTime                    string
	BeginningYearBalance          decimal.Decimal
	CarryoverBalance              decimal.Decimal
	AbsencePaidYearToDate         decimal.Decimal
	AbsencePaidInPeriod           decimal.Decimal
	BeginningPeriodBalance        decimal.Decimal
	AccruedInPeriod               decimal.Decimal
	CarryoverForfeitedInPeriod    decimal.Decimal
	Balance                       decimal.Decimal
	Encashed                      decimal.Decimal
	IncludeEventsAwaitingApproval bool
	AsOfPeriod                    string
}
