/*
aliases.go - Per-entity alias tables and entity builders

PURPOSE:
  The ordered alias chains for every canonical field, plus the functions
  that assemble typed entities from raw records. The first name in every
  chain is the canonical one, which makes normalization idempotent.

  Adding support for a new upstream variant means adding one alias here
  and nowhere else.
*/
package normalize

import (
	"strings"

	"github.com/warp/absence-engine/entity"
)

// =============================================================================
// ALIAS CHAINS - canonical name first, then known upstream variants
// =============================================================================

var (
	aliasID         = []string{"id", "applicationID", "applicationId", "appId"}
	aliasEmployeeID = []string{"employeeID", "employeeId", "empId", "employee"}
	aliasRemarks    = []string{"remarks", "remark", "comments", "comment"}
	aliasState      = []string{"workflowState", "state", "status"}
	aliasStateEvent = []string{"stateEvent", "event", "workflowEvent"}
	aliasLeaveCode  = []string{"leaveCode", "code", "leaveType", "typeOfLeave"}

	aliasFromDate    = []string{"fromDate", "from", "startDate"}
	aliasToDate      = []string{"toDate", "to", "endDate"}
	aliasAppliedDate = []string{"appliedDate", "appliedOn", "createdOn", "createdDate"}
	aliasLeaves      = []string{"leaves", "leaveDetails", "days", "dates"}
	aliasDate        = []string{"date", "leaveDate", "day"}
	aliasDuration    = []string{"duration", "dayPart", "period"}
	aliasDocuments   = []string{"documents", "attachments", "files"}

	aliasAbsenceType    = []string{"typeOfAbsence", "absenceType", "type"}
	aliasLastDayOfWork  = []string{"lastDayOfWork", "lastWorkingDay", "lastDayWorked"}
	aliasFirstDay       = []string{"firstDayOfAbsence", "absenceStartDate", "startOfAbsence"}
	aliasEstimatedLast  = []string{"estimatedLastDayOfAbsence", "estimatedReturnDate", "expectedLastDay"}
	aliasActualReturn   = []string{"actualReturnDate", "returnDate", "actualReturn"}
	aliasTotalDays      = []string{"totalDays", "numberOfDays", "daysCount"}
	aliasReason         = []string{"reason", "absenceReason", "remarks"}
	aliasChildBirth     = []string{"childsBirthDate", "childBirthDate", "dateOfBirth"}
	aliasAdoptionDate   = []string{"adoptionPlacementDate", "placementDate", "adoptionDate"}
	aliasRequestedDays  = []string{"requestedDays", "encashDays", "noOfDays"}

	aliasUnitOfTime       = []string{"unitOfTime", "unit", "timeUnit"}
	aliasBeginYearBalance = []string{"beginningYearBalance", "beginningYearBal", "beginYearBalance"}
	aliasCarryover        = []string{"carryoverBalance", "carryOverBalance", "carryover"}
	aliasPaidYTD          = []string{"absencePaidYearToDate", "paidYearToDate", "absencePaidYTD"}
	aliasPaidInPeriod     = []string{"absencePaidInPeriod", "paidInPeriod"}
	aliasBeginPeriodBal   = []string{"beginningPeriodBalance", "beginningPeriodBal", "beginPeriodBalance"}
	aliasAccruedInPeriod  = []string{"accruedInPeriod", "accrued", "periodAccrual"}
	aliasForfeited        = []string{"carryoverForfeitedInPeriod", "carryOverForfeited", "forfeitedInPeriod"}
	aliasBalance          = []string{"balance", "currentBalance", "remainingBalance"}
	aliasEncashed         = []string{"encashed", "encashedDays", "totalEncashed"}
	aliasAwaiting         = []string{"includeEventsAwaitingApproval", "includePending", "awaitingApproval"}
	aliasAsOfPeriod       = []string{"asOfPeriod", "asOf", "period"}

	aliasFileName = []string{"fileName", "name", "filename"}
	aliasFileSize = []string{"fileSize", "size"}
	aliasFileType = []string{"fileType", "contentType", "mimeType"}
	aliasFileData = []string{"base64Data", "data", "content"}
)

// =============================================================================
// ENTITY BUILDERS
// =============================================================================

// LeaveApplications normalizes a raw payload into leave applications.
func LeaveApplications(raw []byte) ([]entity.LeaveApplication, error) {
	records, err := Parse(raw, "leaveApplication")
	if err != nil {
		return nil, err
	}
	apps := make([]entity.LeaveApplication, len(records))
	for i, r := range records {
		apps[i] = leaveApplication(r)
	}
	return apps, nil
}

func leaveApplication(r Record) entity.LeaveApplication {
	app := entity.LeaveApplication{
		ID:            r.Str(aliasID...),
		EmployeeID:    r.Str(aliasEmployeeID...),
		FromDate:      r.Date(aliasFromDate...),
		ToDate:        r.Date(aliasToDate...),
		Remarks:       r.Str(aliasRemarks...),
		WorkflowState: workflowState(r),
		StateEvent:    entity.StateEvent(strings.ToUpper(r.Str(aliasStateEvent...))),
		AppliedDate:   r.Date(aliasAppliedDate...),
	}
	for _, lr := range r.List(aliasLeaves...) {
		app.Leaves = append(app.Leaves, entity.DayAssignment{
			Date:      lr.Date(aliasDate...),
			LeaveCode: lr.Str(aliasLeaveCode...),
			Duration:  duration(lr.Str(aliasDuration...)),
		})
	}
	for _, dr := range r.List(aliasDocuments...) {
		app.Documents = append(app.Documents, entity.Attachment{
			FileName:   dr.Str(aliasFileName...),
			FileSize:   int64(dr.Int(aliasFileSize...)),
			FileType:   dr.Str(aliasFileType...),
			Base64Data: dr.Str(aliasFileData...),
		})
	}
	return app
}

// AbsenceApplications normalizes a raw payload into leave-of-absence
// applications.
func AbsenceApplications(raw []byte) ([]entity.LeaveOfAbsenceApplication, error) {
	records, err := Parse(raw, "specialLeaveApplication")
	if err != nil {
		return nil, err
	}
	apps := make([]entity.LeaveOfAbsenceApplication, len(records))
	for i, r := range records {
		apps[i] = entity.LeaveOfAbsenceApplication{
			ID:                        r.Str(aliasID...),
			EmployeeID:                r.Str(aliasEmployeeID...),
			TypeOfAbsence:             r.Str(aliasAbsenceType...),
			LastDayOfWork:             r.Date(aliasLastDayOfWork...),
			FirstDayOfAbsence:         r.Date(aliasFirstDay...),
			EstimatedLastDayOfAbsence: r.Date(aliasEstimatedLast...),
			ActualReturnDate:          r.OptDate(aliasActualReturn...),
			TotalDays:                 r.Int(aliasTotalDays...),
			Reason:                    r.Str(aliasReason...),
			ChildsBirthDate:           r.OptDate(aliasChildBirth...),
			AdoptionPlacementDate:     r.OptDate(aliasAdoptionDate...),
			WorkflowState:             workflowState(r),
			StateEvent:                entity.StateEvent(strings.ToUpper(r.Str(aliasStateEvent...))),
		}
	}
	return apps, nil
}

// EncashmentApplications normalizes a raw payload into encashment
// applications.
func EncashmentApplications(raw []byte) ([]entity.EncashmentApplication, error) {
	records, err := Parse(raw, "leaveEncashmentApplication")
	if err != nil {
		return nil, err
	}
	apps := make([]entity.EncashmentApplication, len(records))
	for i, r := range records {
		apps[i] = entity.EncashmentApplication{
			ID:            r.Str(aliasID...),
			EmployeeID:    r.Str(aliasEmployeeID...),
			LeaveCode:     r.Str(aliasLeaveCode...),
			RequestedDays: r.Num(aliasRequestedDays...),
			Remarks:       r.Str(aliasRemarks...),
			WorkflowState: workflowState(r),
			StateEvent:    entity.StateEvent(strings.ToUpper(r.Str(aliasStateEvent...))),
		}
	}
	return apps, nil
}

// BalanceRecords normalizes a raw payload into balance ledger records.
func BalanceRecords(raw []byte) ([]entity.LeaveBalanceRecord, error) {
	records, err := Parse(raw, "leaveBalance")
	if err != nil {
		return nil, err
	}
	out := make([]entity.LeaveBalanceRecord, len(records))
	for i, r := range records {
		out[i] = entity.LeaveBalanceRecord{
			EmployeeID:                    r.Str(aliasEmployeeID...),
			LeaveCode:                     r.Str(aliasLeaveCode...),
			UnitOfTime:                    r.Str(aliasUnitOfTime...),
			BeginningYearBalance:          r.Num(aliasBeginYearBalance...),
			CarryoverBalance:              r.Num(aliasCarryover...),
			AbsencePaidYearToDate:         r.Num(aliasPaidYTD...),
			AbsencePaidInPeriod:           r.Num(aliasPaidInPeriod...),
			BeginningPeriodBalance:        r.Num(aliasBeginPeriodBal...),
			AccruedInPeriod:               r.Num(aliasAccruedInPeriod...),
			CarryoverForfeitedInPeriod:    r.Num(aliasForfeited...),
			Balance:                       r.Num(aliasBalance...),
			Encashed:                      r.Num(aliasEncashed...),
			IncludeEventsAwaitingApproval: r.Bool(aliasAwaiting...),
			AsOfPeriod:                    r.Str(aliasAsOfPeriod...),
		}
	}
	return out, nil
}

// =============================================================================
// VALUE NORMALIZATION
// =============================================================================

func workflowState(r Record) entity.WorkflowState {
	return entity.WorkflowState(strings.ToUpper(strings.TrimSpace(r.Str(aliasState...))))
}

// duration maps upstream duration variants onto the canonical enum.
// Anything unrecognized defaults to a full day.
func duration(s string) entity.Duration {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case string(entity.FirstHalf), "FIRSTHALF", "AM", "MORNING":
		return entity.FirstHalf
	case string(entity.SecondHalf), "SECONDHALF", "PM", "AFTERNOON":
		return entity.SecondHalf
	default:
		return entity.FullDay
	}
}
