package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/absence-engine/catalog"
	"github.com/warp/absence-engine/entity"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements Store with plain maps. Safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	leaves      map[string]entity.LeaveApplication
	absences    map[string]entity.LeaveOfAbsenceApplication
	encashments map[string]entity.EncashmentApplication
	balances    map[balanceKey]entity.LeaveBalanceRecord
	policies    map[string]catalog.LeavePolicy
}

type balanceKey struct {
	EmployeeID string
	LeaveCode  string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		leaves:      make(map[string]entity.LeaveApplication),
		absences:    make(map[string]entity.LeaveOfAbsenceApplication),
		encashments: make(map[string]entity.EncashmentApplication),
		balances:    make(map[balanceKey]entity.LeaveBalanceRecord),
		policies:    make(map[string]catalog.LeavePolicy),
	}
}

var _ Store = (*Memory)(nil)

// --- Time-away applications ---

func (m *Memory) SaveLeaveApplication(_ context.Context, app entity.LeaveApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves[app.ID] = app
	return nil
}

func (m *Memory) GetLeaveApplication(_ context.Context, id string) (entity.LeaveApplication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	app, ok := m.leaves[id]
	if !ok {
		return entity.LeaveApplication{}, ErrNotFound
	}
	return app, nil
}

func (m *Memory) ListLeaveApplications(_ context.Context, employeeID string) ([]entity.LeaveApplication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []entity.LeaveApplication
	for _, app := range m.leaves {
		if app.EmployeeID == employeeID {
			out = append(out, app)
		}
	}
	sortLeaves(out)
	return out, nil
}

func (m *Memory) ListAllLeaveApplications(_ context.Context) ([]entity.LeaveApplication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entity.LeaveApplication, 0, len(m.leaves))
	for _, app := range m.leaves {
		out = append(out, app)
	}
	sortLeaves(out)
	return out, nil
}

func sortLeaves(apps []entity.LeaveApplication) {
	sort.Slice(apps, func(i, j int) bool {
		if !apps[i].AppliedDate.Equal(apps[j].AppliedDate) {
			return apps[i].AppliedDate.Before(apps[j].AppliedDate)
		}
		return apps[i].ID < apps[j].ID
	})
}

// --- Leave-of-absence applications ---

func (m *Memory) SaveAbsenceApplication(_ context.Context, app entity.LeaveOfAbsenceApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.absences[app.ID] = app
	return nil
}

func (m *Memory) GetAbsenceApplication(_ context.Context, id string) (entity.LeaveOfAbsenceApplication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	app, ok := m.absences[id]
	if !ok {
		return entity.LeaveOfAbsenceApplication{}, ErrNotFound
	}
	return app, nil
}

func (m *Memory) ListAbsenceApplications(_ context.Context, employeeID string) ([]entity.LeaveOfAbsenceApplication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []entity.LeaveOfAbsenceApplication
	for _, app := range m.absences {
		if app.EmployeeID == employeeID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- Encashment applications ---

func (m *Memory) SaveEncashmentApplication(_ context.Context, app entity.EncashmentApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.encashments[app.ID] = app
	return nil
}

func (m *Memory) GetEncashmentApplication(_ context.Context, id string) (entity.EncashmentApplication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	app, ok := m.encashments[id]
	if !ok {
		return entity.EncashmentApplication{}, ErrNotFound
	}
	return app, nil
}

func (m *Memory) ListEncashmentApplications(_ context.Context, employeeID string) ([]entity.EncashmentApplication, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []entity.EncashmentApplication
	for _, app := range m.encashments {
		if app.EmployeeID == employeeID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- Balance ledger rows ---

func (m *Memory) SaveBalanceRecord(_ context.Context, rec entity.LeaveBalanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[balanceKey{rec.EmployeeID, rec.LeaveCode}] = rec
	return nil
}

func (m *Memory) ListBalanceRecords(_ context.Context, employeeID string) ([]entity.LeaveBalanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []entity.LeaveBalanceRecord
	for k, rec := range m.balances {
		if k.EmployeeID == employeeID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveCode < out[j].LeaveCode })
	return out, nil
}

// --- Policies ---

func (m *Memory) SavePolicy(_ context.Context, p catalog.LeavePolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[p.LeaveCode] = p
	return nil
}

func (m *Memory) ListPolicies(_ context.Context) ([]catalog.LeavePolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]catalog.LeavePolicy, 0, len(m.policies))
	for _, p := range m.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveCode < out[j].LeaveCode })
	return out, nil
}
