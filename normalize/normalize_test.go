package normalize

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/absence-engine/entity"
)

// =============================================================================
// CONTAINER DETECTION
// =============================================================================

func TestParse_ContainerShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"root array", `[{"id":"a"},{"id":"b"}]`, 2},
		{"data array", `{"data":[{"id":"a"}]}`, 1},
		{"data object", `{"data":{"id":"a"}}`, 1},
		{"applications key", `{"applications":[{"id":"a"},{"id":"b"},{"id":"c"}]}`, 3},
		{"collection-named key", `{"leaveApplication":[{"id":"a"}]}`, 1},
		{"empty root array", `[]`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := Parse([]byte(tc.raw), "leaveApplication")
			if err != nil {
				t.Fatal(err)
			}
			if len(records) != tc.want {
				t.Errorf("records = %d, want %d", len(records), tc.want)
			}
		})
	}
}

func TestParse_UnrecognizedContainerFails(t *testing.T) {
	for _, raw := range []string{
		`{"results":[{"id":"a"}]}`,
		`{"id":"a"}`,
		`"just a string"`,
		`42`,
	} {
		_, err := Parse([]byte(raw), "leaveApplication")
		if !errors.Is(err, ErrNoCollection) {
			t.Errorf("%s: err = %v, want ErrNoCollection", raw, err)
		}
		var nerr *NormalizationError
		if !errors.As(err, &nerr) {
			t.Errorf("%s: error is not a NormalizationError", raw)
		}
	}
}

func TestParse_InvalidJSONFails(t *testing.T) {
	_, err := Parse([]byte(`{not json`), "leaveApplication")
	if !errors.Is(err, ErrNoCollection) {
		t.Fatalf("err = %v", err)
	}
}

func TestParse_MalformedRowDegradesToDefaults(t *testing.T) {
	// One junk row must not discard the batch.
	records, err := Parse([]byte(`[{"id":"a"}, "junk", {"id":"c"}]`), "leaveApplication")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d", len(records))
	}
	if records[1].Str("id") != "" {
		t.Errorf("junk row id = %q", records[1].Str("id"))
	}
}

// =============================================================================
// ALIAS RESOLUTION
// =============================================================================

func TestStr_AliasChainOrder(t *testing.T) {
	r := Record{"employeeId": "variant", "employeeID": "canonical"}
	if got := r.Str(aliasEmployeeID...); got != "canonical" {
		t.Errorf("got %q, canonical alias must win", got)
	}
}

func TestStr_FallbackCompleteness(t *testing.T) {
	for _, key := range aliasEmployeeID {
		r := Record{key: "E1"}
		if r.Str(aliasEmployeeID...) != "E1" {
			t.Errorf("alias %s not resolved", key)
		}
	}
}

func TestStr_MissingDefaultsEmpty(t *testing.T) {
	if got := (Record{}).Str(aliasRemarks...); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestNum_PermissiveParsing(t *testing.T) {
	cases := []struct {
		value any
		want  float64
	}{
		{12.5, 12.5},
		{"7", 7},
		{" 3.5 ", 3.5},
		{"12 days", 12},
		{"-2", -2},
		{"not a number", 0},
		{true, 0},
	}
	for _, tc := range cases {
		r := Record{"balance": tc.value}
		got := r.Num("balance")
		if !got.Equal(decimal.NewFromFloat(tc.want)) {
			t.Errorf("Num(%v) = %s, want %v", tc.value, got, tc.want)
		}
	}
}

func TestBool_Variants(t *testing.T) {
	for _, v := range []any{true, "true", "Y", "yes", "1", 1.0} {
		r := Record{"flag": v}
		if !r.Bool("flag") {
			t.Errorf("Bool(%v) = false", v)
		}
	}
	for _, v := range []any{false, "no", "0", 0.0, nil} {
		r := Record{"flag": v}
		if r.Bool("flag") {
			t.Errorf("Bool(%v) = true", v)
		}
	}
}

func TestDate_AcceptedLayouts(t *testing.T) {
	want := entity.NewDate(2026, 3, 2)
	for _, s := range []string{"2026-03-02", "02-03-2026", "2026-03-02T00:00:00Z"} {
		r := Record{"fromDate": s}
		if got := r.Date(aliasFromDate...); !got.Equal(want) {
			t.Errorf("Date(%q) = %s", s, got)
		}
	}
}

func TestDate_GarbageDefaultsToZero(t *testing.T) {
	r := Record{"fromDate": "yesterday"}
	if !r.Date(aliasFromDate...).IsZero() {
		t.Error("garbage date did not default")
	}
}

// =============================================================================
// ENTITY BUILDERS
// =============================================================================

func TestLeaveApplications_VariantFieldNames(t *testing.T) {
	raw := []byte(`{"data":[{
		"appId": "app-1",
		"empId": "E1001",
		"startDate": "02-03-2026",
		"endDate": "04-03-2026",
		"status": "pending",
		"leaveDetails": [
			{"leaveDate": "02-03-2026", "typeOfLeave": "AL", "dayPart": "AM"},
			{"leaveDate": "03-03-2026", "typeOfLeave": "AL"}
		]
	}]}`)

	apps, err := LeaveApplications(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(apps) != 1 {
		t.Fatalf("apps = %d", len(apps))
	}

	app := apps[0]
	if app.ID != "app-1" || app.EmployeeID != "E1001" {
		t.Errorf("ids = %s/%s", app.ID, app.EmployeeID)
	}
	if app.WorkflowState != entity.StatePending {
		t.Errorf("state = %s, states normalize to upper case", app.WorkflowState)
	}
	if len(app.Leaves) != 2 {
		t.Fatalf("leaves = %d", len(app.Leaves))
	}
	if app.Leaves[0].Duration != entity.FirstHalf {
		t.Errorf("AM did not map to FIRST_HALF: %s", app.Leaves[0].Duration)
	}
	if app.Leaves[1].Duration != entity.FullDay {
		t.Errorf("missing duration did not default to FULL_DAY: %s", app.Leaves[1].Duration)
	}
}

func TestLeaveApplications_Idempotent(t *testing.T) {
	// A payload already in canonical form normalizes to itself.
	raw := []byte(`[{
		"id": "app-1",
		"employeeID": "E1001",
		"fromDate": "2026-03-02",
		"toDate": "2026-03-02",
		"workflowState": "INITIATED",
		"leaves": [{"date": "2026-03-02", "leaveCode": "AL", "duration": "FULL_DAY"}]
	}]`)

	first, err := LeaveApplications(raw)
	if err != nil {
		t.Fatal(err)
	}

	app := first[0]
	if app.ID != "app-1" || app.EmployeeID != "E1001" ||
		app.WorkflowState != entity.StateInitiated ||
		app.Leaves[0].LeaveCode != "AL" || app.Leaves[0].Duration != entity.FullDay {
		t.Errorf("canonical payload changed under normalization: %+v", app)
	}
}

func TestBalanceRecords_Fields(t *testing.T) {
	raw := []byte(`{"data":[{
		"employee": "E1001",
		"code": "AL",
		"beginYearBalance": 20,
		"carryover": "5",
		"accrued": 2,
		"currentBalance": 18,
		"includePending": "Y",
		"asOf": "2026-08"
	}]}`)

	recs, err := BalanceRecords(raw)
	if err != nil {
		t.Fatal(err)
	}
	rec := recs[0]

	if rec.EmployeeID != "E1001" || rec.LeaveCode != "AL" {
		t.Errorf("keys = %s/%s", rec.EmployeeID, rec.LeaveCode)
	}
	if !rec.Balance.Equal(decimal.NewFromInt(18)) {
		t.Errorf("balance = %s", rec.Balance)
	}
	if !rec.CarryoverBalance.Equal(decimal.NewFromInt(5)) {
		t.Errorf("carryover = %s", rec.CarryoverBalance)
	}
	if !rec.IncludeEventsAwaitingApproval {
		t.Error("includePending flag lost")
	}
	if rec.AsOfPeriod != "2026-08" {
		t.Errorf("asOf = %s", rec.AsOfPeriod)
	}
}

func TestAbsenceApplications_OptionalDates(t *testing.T) {
	raw := []byte(`[{
		"id": "loa-1",
		"employeeID": "E1001",
		"absenceType": "ML",
		"lastWorkingDay": "09-01-2026",
		"absenceStartDate": "10-01-2026",
		"estimatedReturnDate": "14-01-2026",
		"numberOfDays": 5,
		"reason": "maternity"
	}]`)

	apps, err := AbsenceApplications(raw)
	if err != nil {
		t.Fatal(err)
	}
	app := apps[0]

	if app.TypeOfAbsence != "ML" || app.TotalDays != 5 {
		t.Errorf("type/days = %s/%d", app.TypeOfAbsence, app.TotalDays)
	}
	if app.ActualReturnDate != nil {
		t.Error("unset actual return date must be nil")
	}
	if app.LastDayOfWork.String() != "2026-01-09" {
		t.Errorf("lastDayOfWork = %s", app.LastDayOfWork)
	}
}

func TestEncashmentApplications_RequestedDays(t *testing.T) {
	raw := []byte(`{"data":[{"id":"enc-1","employeeID":"E1001","leaveCode":"AL","noOfDays":"2.5"}]}`)

	apps, err := EncashmentApplications(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !apps[0].RequestedDays.Equal(decimal.NewFromFloat(2.5)) {
		t.Errorf("requestedDays = %s", apps[0].RequestedDays)
	}
}
