package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/absence-engine/catalog"
	"github.com/warp/absence-engine/entity"
	"github.com/warp/absence-engine/envelope"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func encashablePolicy() catalog.LeavePolicy {
	return catalog.LeavePolicy{
		LeaveCode:     "AL",
		LeaveTitle:    "Annual Leave",
		LeaveCategory: catalog.TimeAway,
		Encashment: catalog.EncashmentRule{
			Allowed:                         true,
			MinimumBalanceRequired:          d(10),
			MaximumAllowedEncashment:        d(30),
			MaximumEncashmentPerApplication: d(4),
			MaximumApplicationAllowedYearly: 2,
		},
	}
}

// =============================================================================
// DERIVED FIGURES
// =============================================================================

func TestDerive_Total(t *testing.T) {
	rec := entity.LeaveBalanceRecord{
		BeginningYearBalance: d(20),
		CarryoverBalance:     d(5),
		AccruedInPeriod:      d(2),
		Balance:              d(18),
	}

	f := Derive(rec)

	assert.True(t, f.Total.Equal(d(27)), "total = %s", f.Total)
}

func TestDerive_UsedPercent(t *testing.T) {
	rec := entity.LeaveBalanceRecord{
		BeginningYearBalance: d(20),
		Balance:              d(5),
	}

	f := Derive(rec)

	assert.True(t, f.UsedPercent.Equal(d(25)), "percent = %s", f.UsedPercent)
}

func TestDerive_PercentClampedAtHundred(t *testing.T) {
	// Balance above total (backend adjustments can do this) clamps, never
	// exceeds 100.
	rec := entity.LeaveBalanceRecord{
		BeginningYearBalance: d(10),
		Balance:              d(12),
	}

	f := Derive(rec)

	assert.True(t, f.UsedPercent.Equal(d(100)), "percent = %s", f.UsedPercent)
}

func TestDerive_NegativeBalanceClampsToZero(t *testing.T) {
	rec := entity.LeaveBalanceRecord{
		BeginningYearBalance: d(10),
		Balance:              d(-2),
	}

	f := Derive(rec)

	assert.True(t, f.UsedPercent.IsZero(), "percent = %s", f.UsedPercent)
}

func TestDerive_ZeroTotal(t *testing.T) {
	f := Derive(entity.LeaveBalanceRecord{Balance: d(3)})

	assert.True(t, f.Total.IsZero())
	assert.True(t, f.UsedPercent.IsZero())
}

func TestDerive_NeverRewritesBalance(t *testing.T) {
	// The authoritative Balance is carried through untouched even when the
	// raw accrual fields disagree with it.
	rec := entity.LeaveBalanceRecord{
		BeginningYearBalance:  d(20),
		AbsencePaidYearToDate: d(3),
		Balance:               d(99),
	}

	f := Derive(rec)

	assert.True(t, f.Record.Balance.Equal(d(99)))
}

// =============================================================================
// ENCASHMENT GATE
// =============================================================================

func TestCheckEncashment_PolicyDisallows(t *testing.T) {
	policy := encashablePolicy()
	policy.Encashment.Allowed = false

	err := CheckEncashment(policy, d(20), d(2))

	var elig *EligibilityError
	require.ErrorAs(t, err, &elig)
	assert.Equal(t, NotEligible, elig.Code)
}

func TestCheckEncashment_AmountBounds(t *testing.T) {
	policy := encashablePolicy()
	policy.Encashment.MaximumEncashmentPerApplication = d(15)
	policy.Encashment.MinimumBalanceRequired = d(0)

	cases := []struct {
		days float64
		ok   bool
	}{
		{0, false},
		{0.25, false},
		{0.5, true},
		{1.5, true},
		{2.3, false}, // not a half-day step
		{15, true},
		{15.5, false},
	}
	for _, tc := range cases {
		err := CheckEncashment(policy, d(100), d(tc.days))
		if tc.ok {
			assert.NoError(t, err, "days=%v", tc.days)
			continue
		}
		var elig *EligibilityError
		require.ErrorAs(t, err, &elig, "days=%v", tc.days)
		assert.Equal(t, InvalidAmount, elig.Code, "days=%v", tc.days)
	}
}

func TestCheckEncashment_PerApplicationLimit(t *testing.T) {
	// GIVEN: encashment allowed, min retained 10, max per application 4
	// WHEN: balance 12, request 5
	// THEN: the per-application limit fails first

	err := CheckEncashment(encashablePolicy(), d(12), d(5))

	var elig *EligibilityError
	require.ErrorAs(t, err, &elig)
	assert.Equal(t, ExceedsPerApplicationLimit, elig.Code)
}

func TestCheckEncashment_MinimumRetained(t *testing.T) {
	// GIVEN: the same policy
	// WHEN: balance 12, request 3 (within the per-application limit)
	// THEN: 12 - 3 = 9 < 10 retained minimum

	err := CheckEncashment(encashablePolicy(), d(12), d(3))

	var elig *EligibilityError
	require.ErrorAs(t, err, &elig)
	assert.Equal(t, BelowMinimumRetained, elig.Code)
}

func TestCheckEncashment_Passes(t *testing.T) {
	err := CheckEncashment(encashablePolicy(), d(14), d(4))
	assert.NoError(t, err)
}

func TestCheckEncashment_UnwrapsToSentinel(t *testing.T) {
	err := CheckEncashment(encashablePolicy(), d(12), d(5))
	assert.True(t, errors.Is(err, ErrNotEligible))
}

// =============================================================================
// BUILDING CLAIMS
// =============================================================================

func TestBuildEncashment_GateFailureProducesNothing(t *testing.T) {
	rec := entity.LeaveBalanceRecord{EmployeeID: "E1001", LeaveCode: "AL", Balance: d(12)}

	app, env, err := BuildEncashment(envelope.Header{Tenant: "acme"}, encashablePolicy(), rec, d(5), "", time.Now())

	require.Error(t, err)
	assert.Empty(t, app.ID)
	assert.Nil(t, env)
}

func TestBuildEncashment_Success(t *testing.T) {
	rec := entity.LeaveBalanceRecord{EmployeeID: "E1001", LeaveCode: "AL", Balance: d(14)}
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	app, env, err := BuildEncashment(envelope.Header{Tenant: "acme", WorkflowName: "leaveApproval"}, encashablePolicy(), rec, d(4), "year end", now)

	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, "E1001", app.EmployeeID)
	assert.Equal(t, entity.StateInitiated, app.WorkflowState)
	require.NotNil(t, env)
	assert.Equal(t, envelope.CollectionEncashmentApplication, env.CollectionName)
	assert.Equal(t, envelope.ActionInsert, env.Action)
	assert.Equal(t, 4.0, env.Data["requestedDays"])
}
