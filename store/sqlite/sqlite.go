/*
Package sqlite provides SQLite-backed persistence for the dashboard.

PURPOSE:
  CRUD for contracts, point balances, reservations, and app settings. The
  engine never sees this package: handlers load rows here, convert them to
  engine snapshot types, and pass those in.

KEY TABLES:
  contracts:       points contracts
  point_balances:  one row per (contract, use_year, allocation_type)
  reservations:    stays, including cancelled ones
  app_settings:    key/value configuration (borrowing limit)

INVARIANTS ENFORCED HERE:
  - UNIQUE(contract_id, use_year, allocation_type) on point_balances
  - Cascading delete of balances and reservations with their contract
    (foreign_keys=on + ON DELETE CASCADE)

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/dvc.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - engine: the pure calculation core these rows feed
  - api: the handlers that own the row-to-snapshot conversion
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/dvc-dashboard/engine"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateBalance is returned when a balance already exists for the
	// same (contract, use_year, allocation_type).
	ErrDuplicateBalance = errors.New("duplicate point balance")
)

// =============================================================================
// RECORDS
// =============================================================================

// ContractRecord is a persisted contract row.
type ContractRecord struct {
	ID           string
	Name         string
	HomeResort   string
	UseYearMonth int
	AnnualPoints int
	PurchaseType string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Snapshot converts the row to an engine value.
func (r ContractRecord) Snapshot() engine.Contract {
	return engine.Contract{
		ID:           r.ID,
		Name:         r.Name,
		HomeResort:   r.HomeResort,
		UseYearMonth: time.Month(r.UseYearMonth),
		AnnualPoints: r.AnnualPoints,
		PurchaseType: engine.PurchaseType(r.PurchaseType),
	}
}

// PointBalanceRecord is a persisted point balance row.
type PointBalanceRecord struct {
	ID             string
	ContractID     string
	UseYear        int
	AllocationType string
	Points         int
	UpdatedAt      time.Time
}

// Snapshot converts the row to an engine value.
func (r PointBalanceRecord) Snapshot() engine.PointBalance {
	return engine.PointBalance{
		ContractID: r.ContractID,
		UseYear:    r.UseYear,
		Allocation: engine.AllocationType(r.AllocationType),
		Points:     r.Points,
	}
}

// ReservationRecord is a persisted reservation row.
type ReservationRecord struct {
	ID                 string
	ContractID         string
	Resort             string
	RoomKey            string
	CheckIn            engine.Date
	CheckOut           engine.Date
	PointsCost         int
	Status             string
	ConfirmationNumber string
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Snapshot converts the row to an engine value.
func (r ReservationRecord) Snapshot() engine.Reservation {
	return engine.Reservation{
		ContractID: r.ContractID,
		Resort:     r.Resort,
		RoomKey:    r.RoomKey,
		CheckIn:    r.CheckIn,
		CheckOut:   r.CheckOut,
		PointsCost: r.PointsCost,
		Status:     engine.ReservationStatus(r.Status),
	}
}

// ReservationFilter narrows ListReservations.
type ReservationFilter struct {
	ContractID string
	Status     string
	From       *engine.Date // check-in on or after
}

// AppSetting is a persisted key/value setting.
type AppSetting struct {
	Key   string
	Value string
}

// =============================================================================
// STORE
// =============================================================================

// Store implements persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store at the given database path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time, and a :memory: database exists per
	// connection. A single pooled connection keeps both correct.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		home_resort TEXT NOT NULL,
		use_year_month INTEGER NOT NULL,
		annual_points INTEGER NOT NULL,
		purchase_type TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS point_balances (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		use_year INTEGER NOT NULL,
		allocation_type TEXT NOT NULL,
		points INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		UNIQUE(contract_id, use_year, allocation_type)
	);

	CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		resort TEXT NOT NULL,
		room_key TEXT NOT NULL,
		check_in TEXT NOT NULL,
		check_out TEXT NOT NULL,
		points_cost INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'confirmed',
		confirmation_number TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS app_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_balances_contract ON point_balances(contract_id, use_year);
	CREATE INDEX IF NOT EXISTS idx_reservations_contract ON reservations(contract_id, check_in);
	CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

const timeFormat = time.RFC3339

// =============================================================================
// CONTRACTS
// =============================================================================

// CreateContract inserts a new contract.
func (s *Store) CreateContract(ctx context.Context, c ContractRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (id, name, home_resort, use_year_month, annual_points, purchase_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.HomeResort, c.UseYearMonth, c.AnnualPoints, c.PurchaseType,
		c.CreatedAt.Format(timeFormat), c.UpdatedAt.Format(timeFormat))
	return err
}

// UpdateContract rewrites the mutable fields of a contract.
func (s *Store) UpdateContract(ctx context.Context, c ContractRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE contracts
		SET name = ?, home_resort = ?, use_year_month = ?, annual_points = ?, purchase_type = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.HomeResort, c.UseYearMonth, c.AnnualPoints, c.PurchaseType,
		time.Now().UTC().Format(timeFormat), c.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetContract returns a contract by ID.
func (s *Store) GetContract(ctx context.Context, id string) (*ContractRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, home_resort, use_year_month, annual_points, purchase_type, created_at, updated_at
		FROM contracts WHERE id = ?`, id)
	return scanContract(row)
}

// ListContracts returns all contracts ordered by creation time.
func (s *Store) ListContracts(ctx context.Context) ([]ContractRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, home_resort, use_year_month, annual_points, purchase_type, created_at, updated_at
		FROM contracts ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ContractRecord
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// DeleteContract removes a contract; balances and reservations cascade.
func (s *Store) DeleteContract(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*ContractRecord, error) {
	var c ContractRecord
	var createdAt, updatedAt string
	err := row.Scan(&c.ID, &c.Name, &c.HomeResort, &c.UseYearMonth, &c.AnnualPoints, &c.PurchaseType, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	c.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return &c, nil
}

// =============================================================================
// POINT BALANCES
// =============================================================================

// CreateBalance inserts a balance row. Returns ErrDuplicateBalance when one
// already exists for the same (contract, use_year, allocation_type).
func (s *Store) CreateBalance(ctx context.Context, b PointBalanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM point_balances
		WHERE contract_id = ? AND use_year = ? AND allocation_type = ?`,
		b.ContractID, b.UseYear, b.AllocationType).Scan(&existing)
	if err == nil {
		return ErrDuplicateBalance
	}
	if err != sql.ErrNoRows {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO point_balances (id, contract_id, use_year, allocation_type, points, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.ContractID, b.UseYear, b.AllocationType, b.Points,
		b.UpdatedAt.Format(timeFormat))
	return err
}

// UpdateBalancePoints sets the point count on an existing balance row.
func (s *Store) UpdateBalancePoints(ctx context.Context, id string, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE point_balances SET points = ?, updated_at = ? WHERE id = ?`,
		points, time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetBalance returns a balance row by ID.
func (s *Store) GetBalance(ctx context.Context, id string) (*PointBalanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, contract_id, use_year, allocation_type, points, updated_at
		FROM point_balances WHERE id = ?`, id)
	return scanBalance(row)
}

// ListBalances returns balances, optionally filtered by contract.
// An empty contractID means all contracts.
func (s *Store) ListBalances(ctx context.Context, contractID string) ([]PointBalanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, contract_id, use_year, allocation_type, points, updated_at
		FROM point_balances`
	var args []any
	if contractID != "" {
		query += ` WHERE contract_id = ?`
		args = append(args, contractID)
	}
	query += ` ORDER BY use_year, allocation_type`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PointBalanceRecord
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// DeleteBalance removes a balance row.
func (s *Store) DeleteBalance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM point_balances WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanBalance(row rowScanner) (*PointBalanceRecord, error) {
	var b PointBalanceRecord
	var updatedAt string
	err := row.Scan(&b.ID, &b.ContractID, &b.UseYear, &b.AllocationType, &b.Points, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return &b, nil
}

// =============================================================================
// RESERVATIONS
// =============================================================================

// CreateReservation inserts a reservation row.
func (s *Store) CreateReservation(ctx context.Context, r ReservationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reservations (id, contract_id, resort, room_key, check_in, check_out, points_cost, status, confirmation_number, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ContractID, r.Resort, r.RoomKey, r.CheckIn.String(), r.CheckOut.String(),
		r.PointsCost, r.Status, r.ConfirmationNumber, r.Notes,
		r.CreatedAt.Format(timeFormat), r.UpdatedAt.Format(timeFormat))
	return err
}

// UpdateReservation rewrites the mutable fields of a reservation.
func (s *Store) UpdateReservation(ctx context.Context, r ReservationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE reservations
		SET resort = ?, room_key = ?, check_in = ?, check_out = ?, points_cost = ?, status = ?, confirmation_number = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		r.Resort, r.RoomKey, r.CheckIn.String(), r.CheckOut.String(), r.PointsCost, r.Status,
		r.ConfirmationNumber, r.Notes, time.Now().UTC().Format(timeFormat), r.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetReservation returns a reservation by ID.
func (s *Store) GetReservation(ctx context.Context, id string) (*ReservationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, contract_id, resort, room_key, check_in, check_out, points_cost, status, confirmation_number, notes, created_at, updated_at
		FROM reservations WHERE id = ?`, id)
	return scanReservation(row)
}

// ListReservations returns reservations matching the filter, ordered by
// check-in ascending.
func (s *Store) ListReservations(ctx context.Context, f ReservationFilter) ([]ReservationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, contract_id, resort, room_key, check_in, check_out, points_cost, status, confirmation_number, notes, created_at, updated_at
		FROM reservations WHERE 1=1`
	var args []any
	if f.ContractID != "" {
		query += ` AND contract_id = ?`
		args = append(args, f.ContractID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.From != nil {
		query += ` AND check_in >= ?`
		args = append(args, f.From.String())
	}
	query += ` ORDER BY check_in ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReservationRecord
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// ListActiveReservations returns all non-cancelled reservations.
func (s *Store) ListActiveReservations(ctx context.Context) ([]ReservationRecord, error) {
	all, err := s.ListReservations(ctx, ReservationFilter{})
	if err != nil {
		return nil, err
	}
	active := make([]ReservationRecord, 0, len(all))
	for _, r := range all {
		if r.Status != string(engine.StatusCancelled) {
			active = append(active, r)
		}
	}
	return active, nil
}

// DeleteReservation removes a reservation.
func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanReservation(row rowScanner) (*ReservationRecord, error) {
	var r ReservationRecord
	var checkIn, checkOut, createdAt, updatedAt string
	var confirmation, notes sql.NullString
	err := row.Scan(&r.ID, &r.ContractID, &r.Resort, &r.RoomKey, &checkIn, &checkOut,
		&r.PointsCost, &r.Status, &confirmation, &notes, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.CheckIn, err = engine.ParseDate(checkIn); err != nil {
		return nil, fmt.Errorf("reservation %s: bad check_in: %w", r.ID, err)
	}
	if r.CheckOut, err = engine.ParseDate(checkOut); err != nil {
		return nil, fmt.Errorf("reservation %s: bad check_out: %w", r.ID, err)
	}
	r.ConfirmationNumber = confirmation.String
	r.Notes = notes.String
	r.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	r.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return &r, nil
}

// =============================================================================
// APP SETTINGS
// =============================================================================

// GetSetting returns a setting value, or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting upserts a setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// ListSettings returns all settings.
func (s *Store) ListSettings(ctx context.Context) ([]AppSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AppSetting
	for rows.Next() {
		var a AppSetting
		if err := rows.Scan(&a.Key, &a.Value); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset clears all data. Dev/test only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"reservations", "point_balances", "contracts", "app_settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
