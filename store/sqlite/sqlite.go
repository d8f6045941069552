/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

APPEND-ONLY ENFORCEMENT:
  balance_history carries the audit trail. Only INSERT statements exist for
  it, no UPDATE and no DELETE. Reversals append "restored" rows.

CONDITIONAL TRANSITIONS:
  ApplyLeaveTransition / ApplyCCLTransition write the new status with
  "... WHERE id = ? AND status = ?". Zero rows affected means another
  approver got there first; the caller observes
  ledger.ErrConcurrentModification and no balance effect is applied. Status
  update, balance movement, and history insert share one database
  transaction, so a lost race leaves no partial debit.

BALANCES:
  Balance columns move by the history entry's signed delta, read-modify-
  write inside the transaction. The caller's computed balance is never
  written directly; concurrent approvals of two different requests for the
  same account both land.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and crash recovery is cleaner. Use
  ":memory:" for tests.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/cclwork"
	"github.com/warp/leave-engine/directory"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/store"
)

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New opens (and migrates) a database at dbPath. Use ":memory:" for tests.
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

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL,
		designation TEXT NOT NULL,
		department TEXT NOT NULL,
		campus_kind TEXT NOT NULL,
		campus_value TEXT,
		campus_type TEXT,
		campus_name TEXT,
		campus_location TEXT,
		password_hash TEXT,
		leave_balance TEXT NOT NULL,
		ccl_balance TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		leave_type TEXT NOT NULL,
		is_half_day INTEGER NOT NULL DEFAULT 0,
		session TEXT,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		number_of_days TEXT NOT NULL,
		reason TEXT NOT NULL,
		alternate_schedule_json TEXT,
		status TEXT NOT NULL,
		remarks TEXT,
		hod_remarks TEXT,
		principal_remarks TEXT,
		approved_by_hod INTEGER NOT NULL DEFAULT 0,
		approved_by_principal INTEGER NOT NULL DEFAULT 0,
		applied_on TEXT NOT NULL,
		principal_action_date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_account
		ON leave_requests(account_id);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status);

	CREATE TABLE IF NOT EXISTS ccl_work (
		id TEXT PRIMARY KEY,
		submitted_by TEXT NOT NULL REFERENCES accounts(id),
		work_date TEXT NOT NULL,
		periods_json TEXT NOT NULL,
		reason TEXT NOT NULL,
		status TEXT NOT NULL,
		hod_remarks TEXT,
		principal_remarks TEXT,
		hod_action_date TEXT,
		principal_action_date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_ccl_work_submitter
		ON ccl_work(submitted_by);
	CREATE INDEX IF NOT EXISTS idx_ccl_work_status
		ON ccl_work(status);

	CREATE TABLE IF NOT EXISTS balance_history (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		balance_kind TEXT NOT NULL,
		entry_type TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		days TEXT NOT NULL,
		reference_id TEXT,
		reference_kind TEXT,
		remarks TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_account
		ON balance_history(account_id, balance_kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s *Store) SaveAccount(ctx context.Context, acct *directory.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO accounts
		(id, name, email, role, designation, department,
		 campus_kind, campus_value, campus_type, campus_name, campus_location,
		 password_hash, leave_balance, ccl_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			designation = excluded.designation,
			department = excluded.department,
			campus_kind = excluded.campus_kind,
			campus_value = excluded.campus_value,
			campus_type = excluded.campus_type,
			campus_name = excluded.campus_name,
			campus_location = excluded.campus_location,
			password_hash = excluded.password_hash
	`

	createdAt := acct.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		acct.ID, acct.Name, acct.Email, string(acct.Role), string(acct.Designation), acct.Department,
		string(acct.Campus.Kind), acct.Campus.Value, acct.Campus.Type, acct.Campus.Name, acct.Campus.Location,
		acct.PasswordHash, acct.LeaveBalance.String(), acct.CCLBalance.String(),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (*directory.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getAccount(ctx, "id = ?", id)
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*directory.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getAccount(ctx, "email = ? COLLATE NOCASE", email)
}

func (s *Store) getAccount(ctx context.Context, where string, arg any) (*directory.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, designation, department,
		       campus_kind, campus_value, campus_type, campus_name, campus_location,
		       password_hash, leave_balance, ccl_balance, created_at
		FROM accounts WHERE `+where, arg)

	acct, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	acct.LeaveHistory, err = s.loadHistory(ctx, acct.ID, ledger.BalanceLeave)
	if err != nil {
		return nil, err
	}
	acct.CCLHistory, err = s.loadHistory(ctx, acct.ID, ledger.BalanceCCL)
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]*directory.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, role, designation, department,
		       campus_kind, campus_value, campus_type, campus_name, campus_location,
		       password_hash, leave_balance, ccl_balance, created_at
		FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*directory.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*directory.Account, error) {
	var (
		acct                     directory.Account
		role, designation, kind  string
		campusValue, campusType  sql.NullString
		campusName, campusLoc    sql.NullString
		passwordHash             sql.NullString
		leaveBalance, cclBalance string
		createdAt                string
	)

	err := row.Scan(&acct.ID, &acct.Name, &acct.Email, &role, &designation, &acct.Department,
		&kind, &campusValue, &campusType, &campusName, &campusLoc,
		&passwordHash, &leaveBalance, &cclBalance, &createdAt)
	if err != nil {
		return nil, err
	}

	acct.Role = directory.Role(role)
	acct.Designation = directory.Designation(designation)
	acct.Campus = directory.Campus{
		Kind:     directory.CampusKind(kind),
		Value:    campusValue.String,
		Type:     campusType.String,
		Name:     campusName.String,
		Location: campusLoc.String,
	}
	acct.PasswordHash = passwordHash.String
	acct.LeaveBalance = mustDecimal(leaveBalance)
	acct.CCLBalance = mustDecimal(cclBalance)
	acct.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &acct, nil
}

// =============================================================================
// BALANCE HISTORY (append-only)
// =============================================================================

func (s *Store) loadHistory(ctx context.Context, accountID string, kind ledger.BalanceKind) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entry_type, entry_date, days, reference_id, reference_kind, remarks
		FROM balance_history
		WHERE account_id = ? AND balance_kind = ?
		ORDER BY rowid`, accountID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query balance history: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var (
			e               ledger.Entry
			entryType, date string
			days            string
			refID, refKind  sql.NullString
			remarks         sql.NullString
		)
		if err := rows.Scan(&e.ID, &entryType, &date, &days, &refID, &refKind, &remarks); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Type = ledger.EntryType(entryType)
		e.Date, _ = ledger.ParseDate(date)
		e.Days = mustDecimal(days)
		e.RefID = refID.String
		e.RefKind = ledger.ReferenceKind(refKind.String)
		e.Remarks = remarks.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// applyBalanceTx moves the balance column by the entry's signed delta and
// inserts the history row, inside the caller's transaction.
func applyBalanceTx(ctx context.Context, tx *sql.Tx, update *ledger.BalanceUpdate) error {
	if update == nil {
		return nil
	}

	column := "leave_balance"
	if update.Kind == ledger.BalanceCCL {
		column = "ccl_balance"
	}

	var current string
	err := tx.QueryRowContext(ctx,
		"SELECT "+column+" FROM accounts WHERE id = ?", update.AccountID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return ledger.ErrNotFound
	}
	if err != nil {
		return err
	}

	next := mustDecimal(current).Add(update.Entry.Signed())
	if _, err := tx.ExecContext(ctx,
		"UPDATE accounts SET "+column+" = ? WHERE id = ?",
		next.String(), update.AccountID,
	); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO balance_history
		(id, account_id, balance_kind, entry_type, entry_date, days,
		 reference_id, reference_kind, remarks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		update.Entry.ID, update.AccountID, string(update.Kind), string(update.Entry.Type),
		update.Entry.Date.String(), update.Entry.Days.String(),
		update.Entry.RefID, string(update.Entry.RefKind), update.Entry.Remarks,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func (s *Store) CreateLeaveRequest(ctx context.Context, req *leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scheduleJSON, err := marshalSchedule(req.AlternateSchedule)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO leave_requests
		(id, account_id, leave_type, is_half_day, session, start_date, end_date,
		 number_of_days, reason, alternate_schedule_json, status,
		 remarks, hod_remarks, principal_remarks,
		 approved_by_hod, approved_by_principal, applied_on, principal_action_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.AccountID, string(req.LeaveType), boolToInt(req.IsHalfDay), string(req.Session),
		req.StartDate.String(), req.EndDate.String(), req.NumberOfDays.String(), req.Reason,
		scheduleJSON, string(req.Status),
		req.Remarks, req.HODRemarks, req.PrincipalRemarks,
		boolToInt(req.ApprovedBy.HOD), boolToInt(req.ApprovedBy.Principal),
		req.AppliedOn.String(), dateOrNull(req.PrincipalActionDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create leave request: %w", err)
	}
	return nil
}

func (s *Store) GetLeaveRequest(ctx context.Context, id string) (*leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reqs, err := s.queryLeaveRequests(ctx, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, ledger.ErrNotFound
	}
	return reqs[0], nil
}

func (s *Store) ListLeaveRequests(ctx context.Context, filter leave.Filter) ([]*leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := "WHERE 1=1"
	var args []any
	if filter.AccountID != "" {
		where += " AND account_id = ?"
		args = append(args, filter.AccountID)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	return s.queryLeaveRequests(ctx, where+" ORDER BY applied_on DESC, rowid DESC", args...)
}

func (s *Store) queryLeaveRequests(ctx context.Context, clause string, args ...any) ([]*leave.Request, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, leave_type, is_half_day, session, start_date, end_date,
		       number_of_days, reason, alternate_schedule_json, status,
		       remarks, hod_remarks, principal_remarks,
		       approved_by_hod, approved_by_principal, applied_on, principal_action_date
		FROM leave_requests `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var reqs []*leave.Request
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func scanLeaveRequest(rows *sql.Rows) (*leave.Request, error) {
	var (
		req                             leave.Request
		leaveType, status               string
		isHalfDay, byHOD, byPrincipal   int
		session                         sql.NullString
		startDate, endDate, appliedOn   string
		numberOfDays                    string
		scheduleJSON                    sql.NullString
		remarks, hodRemarks, priRemarks sql.NullString
		principalActionDate             sql.NullString
	)

	err := rows.Scan(&req.ID, &req.AccountID, &leaveType, &isHalfDay, &session,
		&startDate, &endDate, &numberOfDays, &req.Reason, &scheduleJSON, &status,
		&remarks, &hodRemarks, &priRemarks, &byHOD, &byPrincipal,
		&appliedOn, &principalActionDate)
	if err != nil {
		return nil, fmt.Errorf("failed to scan leave request: %w", err)
	}

	req.LeaveType = leave.LeaveType(leaveType)
	req.IsHalfDay = isHalfDay != 0
	req.Session = leave.Session(session.String)
	req.StartDate, _ = ledger.ParseDate(startDate)
	req.EndDate, _ = ledger.ParseDate(endDate)
	req.NumberOfDays = mustDecimal(numberOfDays)
	req.Status = leave.Status(status)
	req.Remarks = remarks.String
	req.HODRemarks = hodRemarks.String
	req.PrincipalRemarks = priRemarks.String
	req.ApprovedBy = leave.ApprovalMarks{HOD: byHOD != 0, Principal: byPrincipal != 0}
	req.AppliedOn, _ = ledger.ParseDate(appliedOn)
	if principalActionDate.Valid && principalActionDate.String != "" {
		req.PrincipalActionDate, _ = ledger.ParseDate(principalActionDate.String)
	}
	if scheduleJSON.Valid && scheduleJSON.String != "" {
		if err := unmarshalSchedule(scheduleJSON.String, &req.AlternateSchedule); err != nil {
			return nil, err
		}
	}
	return &req, nil
}

// ApplyLeaveTransition performs the conditional status write plus the
// balance side effect in one database transaction.
func (s *Store) ApplyLeaveTransition(ctx context.Context, req *leave.Request, expected leave.Status, update *ledger.BalanceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE leave_requests SET
			status = ?,
			hod_remarks = ?,
			principal_remarks = ?,
			approved_by_hod = ?,
			approved_by_principal = ?,
			principal_action_date = ?
		WHERE id = ? AND status = ?`,
		string(req.Status), req.HODRemarks, req.PrincipalRemarks,
		boolToInt(req.ApprovedBy.HOD), boolToInt(req.ApprovedBy.Principal),
		dateOrNull(req.PrincipalActionDate),
		req.ID, string(expected),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM leave_requests WHERE id = ?", req.ID,
		).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ledger.ErrNotFound
		}
		return ledger.ErrConcurrentModification
	}

	if err := applyBalanceTx(ctx, tx, update); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// CCL WORK
// =============================================================================

func (s *Store) CreateCCLWork(ctx context.Context, work *cclwork.Work) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	periodsJSON, err := json.Marshal(work.Periods)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ccl_work
		(id, submitted_by, work_date, periods_json, reason, status,
		 hod_remarks, principal_remarks, hod_action_date, principal_action_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		work.ID, work.SubmittedBy, work.Date.String(), string(periodsJSON), work.Reason,
		string(work.Status), work.HODRemarks, work.PrincipalRemarks,
		dateOrNull(work.HODActionDate), dateOrNull(work.PrincipalActionDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create ccl work: %w", err)
	}
	return nil
}

func (s *Store) GetCCLWork(ctx context.Context, id string) (*cclwork.Work, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	works, err := s.queryCCLWork(ctx, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(works) == 0 {
		return nil, ledger.ErrNotFound
	}
	return works[0], nil
}

func (s *Store) ListCCLWork(ctx context.Context, filter cclwork.Filter) ([]*cclwork.Work, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := "WHERE 1=1"
	var args []any
	if filter.SubmittedBy != "" {
		where += " AND submitted_by = ?"
		args = append(args, filter.SubmittedBy)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	return s.queryCCLWork(ctx, where+" ORDER BY work_date DESC, rowid DESC", args...)
}

func (s *Store) queryCCLWork(ctx context.Context, clause string, args ...any) ([]*cclwork.Work, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, submitted_by, work_date, periods_json, reason, status,
		       hod_remarks, principal_remarks, hod_action_date, principal_action_date
		FROM ccl_work `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ccl work: %w", err)
	}
	defer rows.Close()

	var works []*cclwork.Work
	for rows.Next() {
		var (
			work                          cclwork.Work
			workDate, status, periodsJSON string
			hodRemarks, priRemarks        sql.NullString
			hodDate, priDate              sql.NullString
		)
		if err := rows.Scan(&work.ID, &work.SubmittedBy, &workDate, &periodsJSON, &work.Reason,
			&status, &hodRemarks, &priRemarks, &hodDate, &priDate); err != nil {
			return nil, fmt.Errorf("failed to scan ccl work: %w", err)
		}
		work.Date, _ = ledger.ParseDate(workDate)
		work.Status = cclwork.Status(status)
		work.HODRemarks = hodRemarks.String
		work.PrincipalRemarks = priRemarks.String
		if hodDate.Valid && hodDate.String != "" {
			work.HODActionDate, _ = ledger.ParseDate(hodDate.String)
		}
		if priDate.Valid && priDate.String != "" {
			work.PrincipalActionDate, _ = ledger.ParseDate(priDate.String)
		}
		if err := json.Unmarshal([]byte(periodsJSON), &work.Periods); err != nil {
			return nil, err
		}
		works = append(works, &work)
	}
	return works, rows.Err()
}

func (s *Store) ApplyCCLTransition(ctx context.Context, work *cclwork.Work, expected cclwork.Status, update *ledger.BalanceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE ccl_work SET
			status = ?,
			hod_remarks = ?,
			principal_remarks = ?,
			hod_action_date = ?,
			principal_action_date = ?
		WHERE id = ? AND status = ?`,
		string(work.Status), work.HODRemarks, work.PrincipalRemarks,
		dateOrNull(work.HODActionDate), dateOrNull(work.PrincipalActionDate),
		work.ID, string(expected),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM ccl_work WHERE id = ?", work.ID,
		).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ledger.ErrNotFound
		}
		return ledger.ErrConcurrentModification
	}

	if err := applyBalanceTx(ctx, tx, update); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func dateOrNull(d ledger.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// scheduleDay is the persisted JSON shape of one alternate-schedule day.
type scheduleDay struct {
	Date    string         `json:"date"`
	Periods []leave.Period `json:"periods"`
}

func marshalSchedule(schedule []leave.DaySchedule) (string, error) {
	if len(schedule) == 0 {
		return "", nil
	}
	days := make([]scheduleDay, len(schedule))
	for i, d := range schedule {
		days[i] = scheduleDay{Date: d.Date.String(), Periods: d.Periods}
	}
	b, err := json.Marshal(days)
	return string(b), err
}

func unmarshalSchedule(raw string, out *[]leave.DaySchedule) error {
	var days []scheduleDay
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return err
	}
	schedule := make([]leave.DaySchedule, len(days))
	for i, d := range days {
		date, err := ledger.ParseDate(d.Date)
		if err != nil {
			return err
		}
		schedule[i] = leave.DaySchedule{Date: date, Periods: d.Periods}
	}
	*out = schedule
	return nil
}
