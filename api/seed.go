/*
seed.go - Demo data for local development

PURPOSE:
  Seeds a handful of leave policies and balance rows so the API is usable
  immediately after a fresh start. Only invoked when the server runs with
  -seed; production data arrives through /api/import.
*/
package api

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/warp/absence-engine/catalog"
	"github.com/warp/absence-engine/entity"
)

// demoPolicies are the policy definitions loaded by -seed.
var demoPolicies = []string{
	`{
		"leave_code": "AL",
		"leave_title": "Annual Leave",
		"leave_category": "time_away",
		"encashment": {
			"allowed": true,
			"minimum_balance_required": 10,
			"maximum_allowed_encashment": 30,
			"maximum_encashment_per_application": 4,
			"maximum_application_allowed_yearly": 2
		}
	}`,
	`{
		"leave_code": "SL",
		"leave_title": "Sick Leave",
		"leave_category": "time_away",
		"encashment": {"allowed": false}
	}`,
	`{
		"leave_code": "CL",
		"leave_title": "Casual Leave",
		"leave_category": "time_away",
		"encashment": {"allowed": false}
	}`,
	`{
		"leave_code": "ML",
		"leave_title": "Maternity Leave",
		"leave_category": "leave_of_absence"
	}`,
	`{
		"leave_code": "PL",
		"leave_title": "Parental Leave",
		"leave_category": "leave_of_absence"
	}`,
}

// SeedDemo loads the demo policies and one employee's balance rows.
func (h *Handler) SeedDemo(ctx context.Context) error {
	cat := catalog.New()
	for _, js := range demoPolicies {
		if err := cat.RegisterJSON(js); err != nil {
			return err
		}
	}
	for _, p := range cat.All() {
		if err := h.Catalog.Register(p); err != nil {
			return err
		}
		if err := h.Store.SavePolicy(ctx, p); err != nil {
			return err
		}
	}

	balances := []entity.LeaveBalanceRecord{
		{
			EmployeeID:            "E1001",
			LeaveCode:             "AL",
			UnitOfTime:            "days",
			BeginningYearBalance:  decimal.NewFromInt(20),
			CarryoverBalance:      decimal.NewFromInt(5),
			AccruedInPeriod:       decimal.NewFromInt(2),
			AbsencePaidYearToDate: decimal.NewFromInt(9),
			Balance:               decimal.NewFromInt(18),
			AsOfPeriod:            "2026-08",
		},
		{
			EmployeeID:           "E1001",
			LeaveCode:            "SL",
			UnitOfTime:           "days",
			BeginningYearBalance: decimal.NewFromInt(10),
			Balance:              decimal.NewFromInt(7),
			AsOfPeriod:           "2026-08",
		},
	}
	for _, rec := range balances {
		if err := h.Store.SaveBalanceRecord(ctx, rec); err != nil {
			return err
		}
	}

	return nil
}
