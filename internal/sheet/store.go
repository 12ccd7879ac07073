package sheet

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"seoflow/internal/config"
	"seoflow/internal/services"
)

// Store manages record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the record database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the record database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "sheet", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrStoreUnavailable, "sheet", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrStoreUnavailable, "sheet", "migrate", "apply migrations", err)
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Append inserts a record into a tab at the tab's initial status.
func (s *Store) Append(ctx context.Context, tab Tab, fields map[string]string) (*Record, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	fieldsJSON, err := marshalFields(fields)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO records (tab, status, fields_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		string(tab),
		string(InitialStatus(tab)),
		fieldsJSON,
		now,
		now,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "sheet", "append", "insert record", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "sheet", "append", "last insert id", err)
	}
	return s.Get(ctx, id)
}

// Get fetches a record by identifier. Missing records return nil without error.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "sheet", "get", "get record", err)
	}
	return record, nil
}

// RecordsByStatus returns records in a tab at a status, oldest first. A
// non-positive limit returns every match.
func (s *Store) RecordsByStatus(ctx context.Context, tab Tab, status Status, limit int) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE tab = ? AND status = ? ORDER BY id`
	args := []any{string(tab), string(status)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "sheet", "records-by-status", "query records", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// List returns a tab's records filtered by status set (or every record in the
// tab when no status is provided), oldest first.
func (s *Store) List(ctx context.Context, tab Tab, statuses ...Status) ([]*Record, error) {
	baseQuery := `SELECT ` + recordColumns + ` FROM records WHERE tab = ?`
	orderClause := ` ORDER BY id`
	args := []any{string(tab)}

	query := baseQuery + orderClause
	if len(statuses) > 0 {
		placeholders := makePlaceholders(len(statuses))
		for _, status := range statuses {
			args = append(args, string(status))
		}
		query = baseQuery + ` AND status IN (` + placeholders + `)` + orderClause
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "sheet", "list", "list records", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Has reports whether any record in a tab carries the given field value.
// Used for dedup before appending.
func (s *Store) Has(ctx context.Context, tab Tab, field, value string) (bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM records WHERE tab = ? AND json_extract(fields_json, '$.' || ?) = ?`,
		string(tab),
		field,
		value,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, services.Wrap(services.ErrStoreUnavailable, "sheet", "has", "count matching records", err)
	}
	return count > 0, nil
}

// UpdateFields merges field values into a record without touching its status.
func (s *Store) UpdateFields(ctx context.Context, id int64, fields map[string]string) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return services.Wrap(services.ErrValidation, "sheet", "update-fields", fmt.Sprintf("record %d not found", id), nil)
	}
	for key, value := range fields {
		record.SetField(key, value)
	}
	return s.persist(ctx, record, record.Status)
}

// Advance moves a record one legal step forward and persists any changed
// fields. The record's last error is cleared on success.
func (s *Store) Advance(ctx context.Context, record *Record, next Status) error {
	if record == nil {
		return services.Wrap(services.ErrValidation, "sheet", "advance", "record is nil", nil)
	}
	if !CanAdvance(record.Tab, record.Status, next) {
		return services.Wrap(
			services.ErrValidation,
			"sheet",
			"advance",
			fmt.Sprintf("illegal transition %s: %s -> %s", record.Tab, record.Status, next),
			nil,
		)
	}
	record.LastError = ""
	if err := s.persist(ctx, record, next); err != nil {
		return err
	}
	record.Status = next
	return nil
}

// SetLastError records a processing failure without moving the record.
func (s *Store) SetLastError(ctx context.Context, id int64, message string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE records SET last_error = ?, updated_at = ? WHERE id = ?`,
		nullableString(message),
		now,
		id,
	)
	if err != nil {
		return services.Wrap(services.ErrStoreUnavailable, "sheet", "set-last-error", "update record", err)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, record *Record, status Status) error {
	fieldsJSON, err := marshalFields(record.Fields)
	if err != nil {
		return err
	}
	record.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`UPDATE records SET status = ?, fields_json = ?, last_error = ?, updated_at = ? WHERE id = ?`,
		string(status),
		fieldsJSON,
		nullableString(record.LastError),
		record.UpdatedAt.Format(time.RFC3339Nano),
		record.ID,
	)
	if err != nil {
		return services.Wrap(services.ErrStoreUnavailable, "sheet", "persist", "update record", err)
	}
	return nil
}

// Stats returns record counts grouped by tab and status.
func (s *Store) Stats(ctx context.Context) (map[Tab]map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tab, status, COUNT(1) FROM records GROUP BY tab, status`)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "sheet", "stats", "query stats", err)
	}
	defer rows.Close()

	stats := make(map[Tab]map[Status]int)
	for rows.Next() {
		var (
			tab    string
			status string
			count  int
		)
		if err := rows.Scan(&tab, &status, &count); err != nil {
			return nil, services.Wrap(services.ErrStoreUnavailable, "sheet", "stats", "scan stats", err)
		}
		if stats[Tab(tab)] == nil {
			stats[Tab(tab)] = make(map[Status]int)
		}
		stats[Tab(tab)][Status(status)] = count
	}
	return stats, rows.Err()
}

// Health returns diagnostic information about the record database.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	health := HealthSummary{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("record database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat record database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("record database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("record database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping record database: %w", err)
	}
	health.DatabaseReadable = true

	row := s.db.QueryRowContext(connCtx, `SELECT COUNT(*) FROM records`)
	if err := row.Scan(&health.TotalRecords); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("count records: %w", err)
	}

	row = s.db.QueryRowContext(connCtx, `PRAGMA integrity_check`)
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

const recordColumns = "id, tab, status, fields_json, last_error, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id         int64
		tab        string
		status     string
		fieldsJSON sql.NullString
		lastError  sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)

	if err := scanner.Scan(&id, &tab, &status, &fieldsJSON, &lastError, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	record := &Record{
		ID:        id,
		Tab:       Tab(tab),
		Status:    Status(status),
		LastError: lastError.String,
	}
	if fieldsJSON.Valid && fieldsJSON.String != "" {
		if err := json.Unmarshal([]byte(fieldsJSON.String), &record.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal record fields: %w", err)
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func collectRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func marshalFields(fields map[string]string) (string, error) {
	if len(fields) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal record fields: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
