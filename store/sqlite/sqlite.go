/*
Package sqlite provides the SQLite-backed implementation of store.Store.

PURPOSE:
  Durable persistence for the three application collections, the balance
  ledger rows, and the policy catalog. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  leave_applications:      time-away applications, day assignments as JSON
  absence_applications:    leave-of-absence applications
  encashment_applications: encashment claims
  balance_records:         backend-authoritative ledger rows
  policies:                policy definitions as JSON configs

NUMERIC STORAGE:
  Balance quantities are stored as TEXT and parsed with decimal - half-day
  arithmetic must survive a round trip exactly.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  st, err := sqlite.New("./data/absence.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: interface definition
  - store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/absence-engine/catalog"
	"github.com/warp/absence-engine/entity"
	"github.com/warp/absence-engine/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leave_applications (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		leaves_json TEXT NOT NULL,
		remarks TEXT,
		documents_json TEXT,
		workflow_state TEXT NOT NULL,
		state_event TEXT,
		applied_date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_leave_applications_employee
		ON leave_applications(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leave_applications_state
		ON leave_applications(workflow_state);

	CREATE TABLE IF NOT EXISTS absence_applications (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		type_of_absence TEXT,
		last_day_of_work TEXT,
		first_day_of_absence TEXT,
		estimated_last_day TEXT,
		actual_return_date TEXT,
		total_days INTEGER NOT NULL,
		reason TEXT,
		childs_birth_date TEXT,
		adoption_placement_date TEXT,
		workflow_state TEXT NOT NULL,
		state_event TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_absence_applications_employee
		ON absence_applications(employee_id);

	CREATE TABLE IF NOT EXISTS encashment_applications (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_code TEXT NOT NULL,
		requested_days TEXT NOT NULL,
		remarks TEXT,
		workflow_state TEXT NOT NULL,
		state_event TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_encashment_applications_employee
		ON encashment_applications(employee_id);

	CREATE TABLE IF NOT EXISTS balance_records (
		employee_id TEXT NOT NULL,
		leave_code TEXT NOT NULL,
		unit_of_time TEXT,
		beginning_year_balance TEXT NOT NULL,
		carryover_balance TEXT NOT NULL,
		absence_paid_ytd TEXT NOT NULL,
		absence_paid_in_period TEXT NOT NULL,
		beginning_period_balance TEXT NOT NULL,
		accrued_in_period TEXT NOT NULL,
		carryover_forfeited TEXT NOT NULL,
		balance TEXT NOT NULL,
		encashed TEXT NOT NULL,
		include_awaiting_approval INTEGER NOT NULL DEFAULT 0,
		as_of_period TEXT,
		PRIMARY KEY (employee_id, leave_code)
	);

	CREATE TABLE IF NOT EXISTS policies (
		leave_code TEXT PRIMARY KEY,
		config_json TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TIME-AWAY APPLICATIONS
// =============================================================================

type leaveRow struct {
	Date      string `json:"date"`
	LeaveCode string `json:"leaveCode"`
	Duration  string `json:"duration"`
}

type documentRow struct {
	FileName   string `json:"fileName"`
	FileSize   int64  `json:"fileSize"`
	FileType   string `json:"fileType"`
	Base64Data string `json:"base64Data"`
}

func (s *Store) SaveLeaveApplication(ctx context.Context, app entity.LeaveApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	leaves := make([]leaveRow, len(app.Leaves))
	for i, l := range app.Leaves {
		leaves[i] = leaveRow{Date: l.Date.String(), LeaveCode: l.LeaveCode, Duration: string(l.Duration)}
	}
	leavesJSON, err := json.Marshal(leaves)
	if err != nil {
		return fmt.Errorf("failed to encode leaves: %w", err)
	}

	docs := make([]documentRow, len(app.Documents))
	for i, d := range app.Documents {
		docs[i] = documentRow(d)
	}
	docsJSON, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to encode documents: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO leave_applications
			(id, employee_id, from_date, to_date, leaves_json, remarks,
			 documents_json, workflow_state, state_event, applied_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			from_date = excluded.from_date,
			to_date = excluded.to_date,
			leaves_json = excluded.leaves_json,
			remarks = excluded.remarks,
			documents_json = excluded.documents_json,
			workflow_state = excluded.workflow_state,
			state_event = excluded.state_event,
			applied_date = excluded.applied_date`,
		app.ID, app.EmployeeID, app.FromDate.String(), app.ToDate.String(),
		string(leavesJSON), app.Remarks, string(docsJSON),
		string(app.WorkflowState), string(app.StateEvent), app.AppliedDate.String(),
	)
	return err
}

func (s *Store) GetLeaveApplication(ctx context.Context, id string) (entity.LeaveApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, from_date, to_date, leaves_json, remarks,
		       documents_json, workflow_state, state_event, applied_date
		FROM leave_applications WHERE id = ?`, id)

	app, err := scanLeaveApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.LeaveApplication{}, store.ErrNotFound
	}
	return app, err
}

func (s *Store) ListLeaveApplications(ctx context.Context, employeeID string) ([]entity.LeaveApplication, error) {
	return s.queryLeaveApplications(ctx, `
		SELECT id, employee_id, from_date, to_date, leaves_json, remarks,
		       documents_json, workflow_state, state_event, applied_date
		FROM leave_applications WHERE employee_id = ?
		ORDER BY applied_date, id`, employeeID)
}

func (s *Store) ListAllLeaveApplications(ctx context.Context) ([]entity.LeaveApplication, error) {
	return s.queryLeaveApplications(ctx, `
		SELECT id, employee_id, from_date, to_date, leaves_json, remarks,
		       documents_json, workflow_state, state_event, applied_date
		FROM leave_applications ORDER BY applied_date, id`)
}

func (s *Store) queryLeaveApplications(ctx context.Context, query string, args ...any) ([]entity.LeaveApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []entity.LeaveApplication
	for rows.Next() {
		app, err := scanLeaveApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLeaveApplication(sc scanner) (entity.LeaveApplication, error) {
	var (
		app                       entity.LeaveApplication
		fromDate, toDate, applied string
		leavesJSON, docsJSON      string
		state, event              string
	)
	err := sc.Scan(&app.ID, &app.EmployeeID, &fromDate, &toDate, &leavesJSON,
		&app.Remarks, &docsJSON, &state, &event, &applied)
	if err != nil {
		return entity.LeaveApplication{}, err
	}

	app.FromDate = parseDate(fromDate)
	app.ToDate = parseDate(toDate)
	app.AppliedDate = parseDate(applied)
	app.WorkflowState = entity.WorkflowState(state)
	app.StateEvent = entity.StateEvent(event)

	var leaves []leaveRow
	if err := json.Unmarshal([]byte(leavesJSON), &leaves); err != nil {
		return entity.LeaveApplication{}, fmt.Errorf("corrupt leaves for %s: %w", app.ID, err)
	}
	for _, l := range leaves {
		app.Leaves = append(app.Leaves, entity.DayAssignment{
			Date:      parseDate(l.Date),
			LeaveCode: l.LeaveCode,
			Duration:  entity.Duration(l.Duration),
		})
	}

	var docs []documentRow
	if docsJSON != "" {
		if err := json.Unmarshal([]byte(docsJSON), &docs); err != nil {
			return entity.LeaveApplication{}, fmt.Errorf("corrupt documents for %s: %w", app.ID, err)
		}
	}
	for _, d := range docs {
		app.Documents = append(app.Documents, entity.Attachment(d))
	}

	return app, nil
}

// =============================================================================
// LEAVE-OF-ABSENCE APPLICATIONS
// =============================================================================

func (s *Store) SaveAbsenceApplication(ctx context.Context, app entity.LeaveOfAbsenceApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO absence_applications
			(id, employee_id, type_of_absence, last_day_of_work,
			 first_day_of_absence, estimated_last_day, actual_return_date,
			 total_days, reason, childs_birth_date, adoption_placement_date,
			 workflow_state, state_event)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type_of_absence = excluded.type_of_absence,
			last_day_of_work = excluded.last_day_of_work,
			first_day_of_absence = excluded.first_day_of_absence,
			estimated_last_day = excluded.estimated_last_day,
			actual_return_date = excluded.actual_return_date,
			total_days = excluded.total_days,
			reason = excluded.reason,
			childs_birth_date = excluded.childs_birth_date,
			adoption_placement_date = excluded.adoption_placement_date,
			workflow_state = excluded.workflow_state,
			state_event = excluded.state_event`,
		app.ID, app.EmployeeID, app.TypeOfAbsence, app.LastDayOfWork.String(),
		app.FirstDayOfAbsence.String(), app.EstimatedLastDayOfAbsence.String(),
		optDate(app.ActualReturnDate), app.TotalDays, app.Reason,
		optDate(app.ChildsBirthDate), optDate(app.AdoptionPlacementDate),
		string(app.WorkflowState), string(app.StateEvent),
	)
	return err
}

func (s *Store) GetAbsenceApplication(ctx context.Context, id string) (entity.LeaveOfAbsenceApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, type_of_absence, last_day_of_work,
		       first_day_of_absence, estimated_last_day, actual_return_date,
		       total_days, reason, childs_birth_date, adoption_placement_date,
		       workflow_state, state_event
		FROM absence_applications WHERE id = ?`, id)

	app, err := scanAbsenceApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.LeaveOfAbsenceApplication{}, store.ErrNotFound
	}
	return app, err
}

func (s *Store) ListAbsenceApplications(ctx context.Context, employeeID string) ([]entity.LeaveOfAbsenceApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, type_of_absence, last_day_of_work,
		       first_day_of_absence, estimated_last_day, actual_return_date,
		       total_days, reason, childs_birth_date, adoption_placement_date,
		       workflow_state, state_event
		FROM absence_applications WHERE employee_id = ? ORDER BY id`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []entity.LeaveOfAbsenceApplication
	for rows.Next() {
		app, err := scanAbsenceApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func scanAbsenceApplication(sc scanner) (entity.LeaveOfAbsenceApplication, error) {
	var (
		app                                entity.LeaveOfAbsenceApplication
		lastDay, firstDay, estimated       string
		actualReturn, childBirth, adoption sql.NullString
		state, event                       string
	)
	err := sc.Scan(&app.ID, &app.EmployeeID, &app.TypeOfAbsence, &lastDay,
		&firstDay, &estimated, &actualReturn, &app.TotalDays, &app.Reason,
		&childBirth, &adoption, &state, &event)
	if err != nil {
		return entity.LeaveOfAbsenceApplication{}, err
	}

	app.LastDayOfWork = parseDate(lastDay)
	app.FirstDayOfAbsence = parseDate(firstDay)
	app.EstimatedLastDayOfAbsence = parseDate(estimated)
	app.ActualReturnDate = optDateFromNull(actualReturn)
	app.ChildsBirthDate = optDateFromNull(childBirth)
	app.AdoptionPlacementDate = optDateFromNull(adoption)
	app.WorkflowState = entity.WorkflowState(state)
	app.StateEvent = entity.StateEvent(event)
	return app, nil
}

// =============================================================================
// ENCASHMENT APPLICATIONS
// =============================================================================

func (s *Store) SaveEncashmentApplication(ctx context.Context, app entity.EncashmentApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO encashment_applications
			(id, employee_id, leave_code, requested_days, remarks,
			 workflow_state, state_event)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			leave_code = excluded.leave_code,
			requested_days = excluded.requested_days,
			remarks = excluded.remarks,
			workflow_state = excluded.workflow_state,
			state_event = excluded.state_event`,
		app.ID, app.EmployeeID, app.LeaveCode, app.RequestedDays.String(),
		app.Remarks, string(app.WorkflowState), string(app.StateEvent),
	)
	return err
}

func (s *Store) GetEncashmentApplication(ctx context.Context, id string) (entity.EncashmentApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, leave_code, requested_days, remarks,
		       workflow_state, state_event
		FROM encashment_applications WHERE id = ?`, id)

	app, err := scanEncashmentApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.EncashmentApplication{}, store.ErrNotFound
	}
	return app, err
}

func (s *Store) ListEncashmentApplications(ctx context.Context, employeeID string) ([]entity.EncashmentApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, leave_code, requested_days, remarks,
		       workflow_state, state_event
		FROM encashment_applications WHERE employee_id = ? ORDER BY id`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []entity.EncashmentApplication
	for rows.Next() {
		app, err := scanEncashmentApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func scanEncashmentApplication(sc scanner) (entity.EncashmentApplication, error) {
	var (
		app          entity.EncashmentApplication
		days         string
		state, event string
	)
	err := sc.Scan(&app.ID, &app.EmployeeID, &app.LeaveCode, &days,
		&app.Remarks, &state, &event)
	if err != nil {
		return entity.EncashmentApplication{}, err
	}
	app.RequestedDays = parseDecimal(days)
	app.WorkflowState = entity.WorkflowState(state)
	app.StateEvent = entity.StateEvent(event)
	return app, nil
}

// =============================================================================
// BALANCE RECORDS
// =============================================================================

func (s *Store) SaveBalanceRecord(ctx context.Context, rec entity.LeaveBalanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	awaiting := 0
	if rec.IncludeEventsAwaitingApproval {
		awaiting = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO balance_records
			(employee_id, leave_code, unit_of_time, beginning_year_balance,
			 carryover_balance, absence_paid_ytd, absence_paid_in_period,
			 beginning_period_balance, accrued_in_period, carryover_forfeited,
			 balance, encashed, include_awaiting_approval, as_of_period)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, leave_code) DO UPDATE SET
			unit_of_time = excluded.unit_of_time,
			beginning_year_balance = excluded.beginning_year_balance,
			carryover_balance = excluded.carryover_balance,
			absence_paid_ytd = excluded.absence_paid_ytd,
			absence_paid_in_period = excluded.absence_paid_in_period,
			beginning_period_balance = excluded.beginning_period_balance,
			accrued_in_period = excluded.accrued_in_period,
			carryover_forfeited = excluded.carryover_forfeited,
			balance = excluded.balance,
			encashed = excluded.encashed,
			include_awaiting_approval = excluded.include_awaiting_approval,
			as_of_period = excluded.as_of_period`,
		rec.EmployeeID, rec.LeaveCode, rec.UnitOfTime,
		rec.BeginningYearBalance.String(), rec.CarryoverBalance.String(),
		rec.AbsencePaidYearToDate.String(), rec.AbsencePaidInPeriod.String(),
		rec.BeginningPeriodBalance.String(), rec.AccruedInPeriod.String(),
		rec.CarryoverForfeitedInPeriod.String(), rec.Balance.String(),
		rec.Encashed.String(), awaiting, rec.AsOfPeriod,
	)
	return err
}

func (s *Store) ListBalanceRecords(ctx context.Context, employeeID string) ([]entity.LeaveBalanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, leave_code, unit_of_time, beginning_year_balance,
		       carryover_balance, absence_paid_ytd, absence_paid_in_period,
		       beginning_period_balance, accrued_in_period, carryover_forfeited,
		       balance, encashed, include_awaiting_approval, as_of_period
		FROM balance_records WHERE employee_id = ? ORDER BY leave_code`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []entity.LeaveBalanceRecord
	for rows.Next() {
		var (
			rec                                         entity.LeaveBalanceRecord
			beginYear, carryover, paidYTD, paidInPeriod string
			beginPeriod, accrued, forfeited             string
			balance, encashed                           string
			awaiting                                    int
		)
		err := rows.Scan(&rec.EmployeeID, &rec.LeaveCode, &rec.UnitOfTime,
			&beginYear, &carryover, &paidYTD, &paidInPeriod, &beginPeriod,
			&accrued, &forfeited, &balance, &encashed, &awaiting, &rec.AsOfPeriod)
		if err != nil {
			return nil, err
		}
		rec.BeginningYearBalance = parseDecimal(beginYear)
		rec.CarryoverBalance = parseDecimal(carryover)
		rec.AbsencePaidYearToDate = parseDecimal(paidYTD)
		rec.AbsencePaidInPeriod = parseDecimal(paidInPeriod)
		rec.BeginningPeriodBalance = parseDecimal(beginPeriod)
		rec.AccruedInPeriod = parseDecimal(accrued)
		rec.CarryoverForfeitedInPeriod = parseDecimal(forfeited)
		rec.Balance = parseDecimal(balance)
		rec.Encashed = parseDecimal(encashed)
		rec.IncludeEventsAwaitingApproval = awaiting != 0
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// =============================================================================
// POLICIES
// =============================================================================

func (s *Store) SavePolicy(ctx context.Context, p catalog.LeavePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configJSON, err := json.Marshal(catalog.ToJSON(p))
	if err != nil {
		return fmt.Errorf("failed to encode policy: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO policies (leave_code, config_json) VALUES (?, ?)
		ON CONFLICT(leave_code) DO UPDATE SET config_json = excluded.config_json`,
		p.LeaveCode, string(configJSON),
	)
	return err
}

func (s *Store) ListPolicies(ctx context.Context) ([]catalog.LeavePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT config_json FROM policies ORDER BY leave_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []catalog.LeavePolicy
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, err
		}
		var pj catalog.PolicyJSON
		if err := json.Unmarshal([]byte(configJSON), &pj); err != nil {
			continue // skip corrupt configs rather than failing startup
		}
		p, err := catalog.FromJSON(pj)
		if err != nil {
			continue
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDate(s string) entity.CalendarDate {
	d, err := entity.ParseDate(s)
	if err != nil {
		return entity.CalendarDate{}
	}
	return d
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func optDate(d *entity.CalendarDate) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func optDateFromNull(ns sql.NullString) *entity.CalendarDate {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d := parseDate(ns.String)
	if d.IsZero() {
		return nil
	}
	return &d
}
