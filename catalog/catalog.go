/*
Package catalog holds per-leave-code policy configuration.

PURPOSE:
  A LeavePolicy is the contract between the organization and an employee for
  one leave code: which category it belongs to (time-away vs leave of
  absence) and what its encashment limits are. Policies are immutable within
  a session and are the lookup table behind draft validation and encashment
  gating.

WHY JSON?
  - Non-developers can modify policies
  - Version control for policy definitions
  - Database storage of policy configs

JSON SCHEMA:
  {
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
  }

USAGE:
  cat := catalog.New()
  if err := cat.RegisterJSON(jsonStr); err != nil { ... }
  policy, err := cat.Lookup("AL")

SEE ALSO:
  - draft: resolves leave codes against the catalog
  - ledger: reads encashment limits
*/
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrPolicyNotFound is returned when a leave code has no registered policy.
var ErrPolicyNotFound = errors.New("leave policy not found")

// =============================================================================
// POLICY TYPES
// =============================================================================

// Category splits leave codes into the two application families.
type Category string

const (
	TimeAway       Category = "time_away"
	LeaveOfAbsence Category = "leave_of_absence"
)

// EncashmentRule bounds how much balance a policy lets an employee encash.
type EncashmentRule struct {
	Allowed                         bool
	MinimumBalanceRequired          decimal.Decimal
	MaximumAllowedEncashment        decimal.Decimal
	MaximumEncashmentPerApplication decimal.Decimal
	MaximumApplicationAllowedYearly int
}

// LeavePolicy is the complete ruleset for one leave code.
type LeavePolicy struct {
	LeaveCode     string
	LeaveTitle    string
	LeaveCategory Category
	Encashment    EncashmentRule
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog indexes policies by leave code. It is built once at startup and
// read-only afterwards, so no locking is needed.
type Catalog struct {
	policies map[string]LeavePolicy
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{policies: make(map[string]LeavePolicy)}
}

// Register adds or replaces a policy. The leave code is the unique key.
func (c *Catalog) Register(p LeavePolicy) error {
	if p.LeaveCode == "" {
		return errors.New("policy missing leave code")
	}
	if p.LeaveCategory != TimeAway && p.LeaveCategory != LeaveOfAbsence {
		return fmt.Errorf("policy %s: unknown category %q", p.LeaveCode, p.LeaveCategory)
	}
	c.policies[p.LeaveCode] = p
	return nil
}

// Lookup returns the policy for a leave code.
func (c *Catalog) Lookup(leaveCode string) (LeavePolicy, error) {
	p, ok := c.policies[leaveCode]
	if !ok {
		return LeavePolicy{}, fmt.Errorf("%w: %s", ErrPolicyNotFound, leaveCode)
	}
	return p, nil
}

// Resolve returns the policy for a leave code only if it belongs to the
// given category. Draft validation uses this to keep leave-of-absence codes
// out of time-away applications.
func (c *Catalog) Resolve(leaveCode string, category Category) (LeavePolicy, error) {
	p, err := c.Lookup(leaveCode)
	if err != nil {
		return LeavePolicy{}, err
	}
	if p.LeaveCategory != category {
		return LeavePolicy{}, fmt.Errorf("%w: %s is not %s", ErrPolicyNotFound, leaveCode, category)
	}
	return p, nil
}

// ByCategory lists the policies in one category, sorted by leave code.
func (c *Catalog) ByCategory(category Category) []LeavePolicy {
	var out []LeavePolicy
	for _, p := range c.policies {
		if p.LeaveCategory == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveCode < out[j].LeaveCode })
	return out
}

// All lists every policy, sorted by leave code.
func (c *Catalog) All() []LeavePolicy {
	var out []LeavePolicy
	for _, p := range c.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveCode < out[j].LeaveCode })
	return out
}

// =============================================================================
// JSON DEFINITIONS
// =============================================================================

// PolicyJSON is the JSON representation of a leave policy.
type PolicyJSON struct {
	LeaveCode     string          `json:"leave_code"`
	LeaveTitle    string          `json:"leave_title"`
	LeaveCategory string          `json:"leave_category"`
	Encashment    *EncashmentJSON `json:"encashment,omitempty"`
}

// EncashmentJSON represents encashment limits in policy JSON.
type EncashmentJSON struct {
	Allowed                         bool    `json:"allowed"`
	MinimumBalanceRequired          float64 `json:"minimum_balance_required,omitempty"`
	MaximumAllowedEncashment        float64 `json:"maximum_allowed_encashment,omitempty"`
	MaximumEncashmentPerApplication float64 `json:"maximum_encashment_per_application,omitempty"`
	MaximumApplicationAllowedYearly int     `json:"maximum_application_allowed_yearly,omitempty"`
}

// FromJSON converts a PolicyJSON into a LeavePolicy with defaults applied.
func FromJSON(pj PolicyJSON) (LeavePolicy, error) {
	p := LeavePolicy{
		LeaveCode:  pj.LeaveCode,
		LeaveTitle: pj.LeaveTitle,
	}

	switch pj.LeaveCategory {
	case string(TimeAway), "":
		p.LeaveCategory = TimeAway // default
	case string(LeaveOfAbsence):
		p.LeaveCategory = LeaveOfAbsence
	default:
		return LeavePolicy{}, fmt.Errorf("policy %s: unknown category %q", pj.LeaveCode, pj.LeaveCategory)
	}

	if pj.Encashment != nil {
		p.Encashment = EncashmentRule{
			Allowed:                         pj.Encashment.Allowed,
			MinimumBalanceRequired:          decimal.NewFromFloat(pj.Encashment.MinimumBalanceRequired),
			MaximumAllowedEncashment:        decimal.NewFromFloat(pj.Encashment.MaximumAllowedEncashment),
			MaximumEncashmentPerApplication: decimal.NewFromFloat(pj.Encashment.MaximumEncashmentPerApplication),
			MaximumApplicationAllowedYearly: pj.Encashment.MaximumApplicationAllowedYearly,
		}
	}

	return p, nil
}

// RegisterJSON parses a single JSON policy definition and registers it.
func (c *Catalog) RegisterJSON(jsonStr string) error {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	p, err := FromJSON(pj)
	if err != nil {
		return err
	}
	return c.Register(p)
}

// ToJSON converts a policy back to its JSON representation, for storage.
func ToJSON(p LeavePolicy) PolicyJSON {
	pj := PolicyJSON{
		LeaveCode:     p.LeaveCode,
		LeaveTitle:    p.LeaveTitle,
		LeaveCategory: string(p.LeaveCategory),
	}
	if p.Encashment != (EncashmentRule{}) {
		minBal, _ := p.Encashment.MinimumBalanceRequired.Float64()
		maxEnc, _ := p.Encashment.MaximumAllowedEncashment.Float64()
		maxPerApp, _ := p.Encashment.MaximumEncashmentPerApplication.Float64()
		pj.Encashment = &EncashmentJSON{
			Allowed:                         p.Encashment.Allowed,
			MinimumBalanceRequired:          minBal,
			MaximumAllowedEncashment:        maxEnc,
			MaximumEncashmentPerApplication: maxPerApp,
			MaximumApplicationAllowedYearly: p.Encashment.MaximumApplicationAllowedYearly,
		}
	}
	return pj
}
