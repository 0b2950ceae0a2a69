/*
Package store defines the persistence interfaces for the absence engine.

PURPOSE:
  The engine is the backend of record for three application collections,
  the balance ledger rows, and the policy catalog definitions. This package
  defines the storage contract; memory.go implements it for tests and dev,
  store/sqlite for durable persistence.

  Applications are never deleted. Workflow transitions overwrite the row in
  place (save is an upsert); terminal states simply stop further writes.
*/
package store

import (
	"context"
	"errors"

	"github.com/warp/absence-engine/catalog"
	"github.com/warp/absence-engine/entity"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the full persistence contract.
type Store interface {
	// Time-away applications
	SaveLeaveApplication(ctx context.Context, app entity.LeaveApplication) error
	GetLeaveApplication(ctx context.Context, id string) (entity.LeaveApplication, error)
	ListLeaveApplications(ctx context.Context, employeeID string) ([]entity.LeaveApplication, error)
	ListAllLeaveApplications(ctx context.Context) ([]entity.LeaveApplication, error)

	// Leave-of-absence applications
	SaveAbsenceApplication(ctx context.Context, app entity.LeaveOfAbsenceApplication) error
	GetAbsenceApplication(ctx context.Context, id string) (entity.LeaveOfAbsenceApplication, error)
	ListAbsenceApplications(ctx context.Context, employeeID string) ([]entity.LeaveOfAbsenceApplication, error)

	// Encashment applications
	SaveEncashmentApplication(ctx context.Context, app entity.EncashmentApplication) error
	GetEncashmentApplication(ctx context.Context, id string) (entity.EncashmentApplication, error)
	ListEncashmentApplications(ctx context.Context, employeeID string) ([]entity.EncashmentApplication, error)

	// Balance ledger rows (backend-authoritative)
	SaveBalanceRecord(ctx context.Context, rec entity.LeaveBalanceRecord) error
	ListBalanceRecords(ctx context.Context, employeeID string) ([]entity.LeaveBalanceRecord, error)

	// Policy definitions
	SavePolicy(ctx context.Context, p catalog.LeavePolicy) error
	ListPolicies(ctx context.Context) ([]catalog.LeavePolicy, error)
}
