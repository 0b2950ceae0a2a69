/*
Package ledger derives employee-facing balance figures and gates encashment.

PURPOSE:
  The backend of record owns the balance ledger; the Balance field of every
  record is ground truth and is NEVER recomputed here. What this package
  adds is display arithmetic (totals and usage percentages) and the
  eligibility gate that stands between an employee and an encashment claim.

KEY INSIGHT:
  Derived figures are display-only. They are computed on the fly from the
  raw accrual/usage fields and never persisted back - if they disagree with
  the backend's Balance, the backend wins.

DERIVED FIGURES:
  Total       = beginningYearBalance + carryoverBalance + accruedInPeriod
  UsedPercent = min(balance/total, 1) * 100   (0 when total is 0)

ENCASHMENT GATE (checked in order, first failure wins):
  1. policy allows encashment                    -> NotEligible
  2. 0.5 <= days <= 15 in half-day steps         -> InvalidAmount
  3. days <= per-application limit               -> ExceedsPerApplicationLimit
  4. balance - days >= minimum retained balance  -> BelowMinimumRetained

  Only after all four checks pass is the submission envelope constructed.

SEE ALSO:
  - catalog: the encashment limits consulted here
  - envelope: the claim payload produced on success
*/
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/absence-engine/catalog"
	"github.com/warp/absence-engine/entity"
	"github.com/warp/absence-engine/envelope"
)

// =============================================================================
// DERIVED BALANCE FIGURES
// =============================================================================

// Figures are the display-only numbers derived from one balance record.
type Figures struct {
	Record entity.LeaveBalanceRecord

	// Total entitlement for the year: beginning balance + carryover +
	// period accrual.
	Total decimal.Decimal

	// UsedPercent is how much of the total the authoritative balance
	// represents, clamped to [0, 100].
	UsedPercent decimal.Decimal
}

// Derive computes the display figures for a balance record.
func Derive(rec entity.LeaveBalanceRecord) Figures {
	total := rec.BeginningYearBalance.Add(rec.CarryoverBalance).Add(rec.AccruedInPeriod)

	percent := decimal.Zero
	if !total.IsZero() {
		ratio := rec.Balance.Div(total)
		if ratio.GreaterThan(decimal.NewFromInt(1)) {
			ratio = decimal.NewFromInt(1)
		}
		if ratio.IsNegative() {
			ratio = decimal.Zero
		}
		percent = ratio.Mul(decimal.NewFromInt(100))
	}

	return Figures{Record: rec, Total: total, UsedPercent: percent}
}

// DeriveAll computes figures for a batch of records.
func DeriveAll(recs []entity.LeaveBalanceRecord) []Figures {
	out := make([]Figures, len(recs))
	for i, rec := range recs {
		out[i] = Derive(rec)
	}
	return out
}

// =============================================================================
// ENCASHMENT ELIGIBILITY
// =============================================================================

// Encashment request bounds. Claims move in half-day steps.
var (
	minEncashDays = decimal.NewFromFloat(0.5)
	maxEncashDays = decimal.NewFromInt(15)
	halfDay       = decimal.NewFromFloat(0.5)
)

// EligibilityCode identifies which gate an encashment request failed.
type EligibilityCode string

const (
	NotEligible                EligibilityCode = "NotEligible"
	InvalidAmount              EligibilityCode = "InvalidAmount"
	ExceedsPerApplicationLimit EligibilityCode = "ExceedsPerApplicationLimit"
	BelowMinimumRetained       EligibilityCode = "BelowMinimumRetained"
)

// ErrNotEligible is the sentinel behind every EligibilityError.
var ErrNotEligible = errors.New("encashment not eligible")

// EligibilityError reports a failed encashment gate. Recoverable and
// user-facing: the employee can adjust the amount and retry.
type EligibilityError struct {
	Code    EligibilityCode
	Message string
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *EligibilityError) Unwrap() error { return ErrNotEligible }

// CheckEncashment runs the four-step eligibility gate for a requested day
// count against a policy and the authoritative current balance.
func CheckEncashment(policy catalog.LeavePolicy, currentBalance, requestedDays decimal.Decimal) error {
	rule := policy.Encashment

	if !rule.Allowed {
		return &EligibilityError{
			Code:    NotEligible,
			Message: fmt.Sprintf("%s does not allow encashment", policy.LeaveCode),
		}
	}

	if requestedDays.LessThan(minEncashDays) || requestedDays.GreaterThan(maxEncashDays) ||
		!requestedDays.Mod(halfDay).IsZero() {
		return &EligibilityError{
			Code:    InvalidAmount,
			Message: "requested days must be between 0.5 and 15 in half-day steps",
		}
	}

	if requestedDays.GreaterThan(rule.MaximumEncashmentPerApplication) {
		return &EligibilityError{
			Code: ExceedsPerApplicationLimit,
			Message: fmt.Sprintf("at most %s days per application",
				rule.MaximumEncashmentPerApplication),
		}
	}

	if currentBalance.Sub(requestedDays).LessThan(rule.MinimumBalanceRequired) {
		return &EligibilityError{
			Code: BelowMinimumRetained,
			Message: fmt.Sprintf("balance after encashment must stay at or above %s days",
				rule.MinimumBalanceRequired),
		}
	}

	return nil
}

// BuildEncashment gates a claim and, only on success, constructs the
// application and its submission envelope.
func BuildEncashment(
	header envelope.Header,
	policy catalog.LeavePolicy,
	rec entity.LeaveBalanceRecord,
	requestedDays decimal.Decimal,
	remarks string,
	now time.Time,
) (entity.EncashmentApplication, *envelope.Submission, error) {
	if err := CheckEncashment(policy, rec.Balance, requestedDays); err != nil {
		return entity.EncashmentApplication{}, nil, err
	}

	app := entity.EncashmentApplication{
		ID:            uuid.NewString(),
		EmployeeID:    rec.EmployeeID,
		LeaveCode:     policy.LeaveCode,
		RequestedDays: requestedDays,
		Remarks:       remarks,
		WorkflowState: entity.StateInitiated,
	}

	return app, envelope.NewEncashmentApplication(header, app, now), nil
}
