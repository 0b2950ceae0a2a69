package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/absence-engine/catalog"
	"github.com/warp/absence-engine/entity"
)

func TestMemory_LeaveApplicationRoundtrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	app := entity.LeaveApplication{
		ID:            "app-1",
		EmployeeID:    "E1001",
		WorkflowState: entity.StateInitiated,
		AppliedDate:   entity.NewDate(2026, 3, 1),
	}
	if err := m.SaveLeaveApplication(ctx, app); err != nil {
		t.Fatal(err)
	}

	got, err := m.GetLeaveApplication(ctx, "app-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.EmployeeID != "E1001" {
		t.Errorf("employee = %s", got.EmployeeID)
	}

	if _, err := m.GetLeaveApplication(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestMemory_SaveIsUpsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	app := entity.LeaveApplication{ID: "app-1", EmployeeID: "E1001", WorkflowState: entity.StatePending}
	if err := m.SaveLeaveApplication(ctx, app); err != nil {
		t.Fatal(err)
	}
	app.WorkflowState = entity.StateApproved
	app.StateEvent = entity.EventNext
	if err := m.SaveLeaveApplication(ctx, app); err != nil {
		t.Fatal(err)
	}

	got, _ := m.GetLeaveApplication(ctx, "app-1")
	if got.WorkflowState != entity.StateApproved {
		t.Errorf("state = %s", got.WorkflowState)
	}
	all, _ := m.ListAllLeaveApplications(ctx)
	if len(all) != 1 {
		t.Errorf("upsert duplicated the row: %d", len(all))
	}
}

func TestMemory_ListFiltersByEmployee(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, app := range []entity.LeaveApplication{
		{ID: "a", EmployeeID: "E1", AppliedDate: entity.NewDate(2026, 3, 2)},
		{ID: "b", EmployeeID: "E2", AppliedDate: entity.NewDate(2026, 3, 1)},
		{ID: "c", EmployeeID: "E1", AppliedDate: entity.NewDate(2026, 3, 1)},
	} {
		if err := m.SaveLeaveApplication(ctx, app); err != nil {
			t.Fatal(err)
		}
	}

	got, err := m.ListLeaveApplications(ctx, "E1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d", len(got))
	}
	// Sorted by applied date, then id.
	if got[0].ID != "c" || got[1].ID != "a" {
		t.Errorf("order = %s, %s", got[0].ID, got[1].ID)
	}
}

func TestMemory_BalanceKeyedByEmployeeAndCode(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	rec := entity.LeaveBalanceRecord{EmployeeID: "E1", LeaveCode: "AL", Balance: decimal.NewFromInt(10)}
	if err := m.SaveBalanceRecord(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.Balance = decimal.NewFromInt(8)
	if err := m.SaveBalanceRecord(ctx, rec); err != nil {
		t.Fatal(err)
	}
	other := entity.LeaveBalanceRecord{EmployeeID: "E1", LeaveCode: "SL", Balance: decimal.NewFromInt(5)}
	if err := m.SaveBalanceRecord(ctx, other); err != nil {
		t.Fatal(err)
	}

	recs, err := m.ListBalanceRecords(ctx, "E1")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("rows = %d", len(recs))
	}
	if !recs[0].Balance.Equal(decimal.NewFromInt(8)) {
		t.Errorf("AL balance = %s, upsert lost", recs[0].Balance)
	}
}

func TestMemory_Policies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.SavePolicy(ctx, catalog.LeavePolicy{LeaveCode: "AL", LeaveCategory: catalog.TimeAway}); err != nil {
		t.Fatal(err)
	}
	got, err := m.ListPolicies(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].LeaveCode != "AL" {
		t.Errorf("policies = %+v", got)
	}
}
