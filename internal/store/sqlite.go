// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/meshintel/component-manager/pkg/types"
)

const timeFmt = time.RFC3339Nano

// SQLite is the durable Store implementation.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and ensures the
// schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS components (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			file_path TEXT NOT NULL UNIQUE,
			component_type TEXT NOT NULL,
			description TEXT,
			reusability_score INTEGER NOT NULL,
			cypher_compatibility INTEGER NOT NULL,
			cypher_pattern TEXT,
			dependencies TEXT,
			api_surface TEXT,
			tags TEXT,
			security_status TEXT NOT NULL DEFAULT 'pending',
			vulnerabilities TEXT,
			export_status TEXT NOT NULL DEFAULT 'identified',
			flagged_by TEXT,
			last_scanned TEXT,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_components_export_status ON components(export_status)`,
		`CREATE TABLE IF NOT EXISTS scan_reports (
			id TEXT PRIMARY KEY,
			scan_type TEXT NOT NULL,
			status TEXT NOT NULL,
			components_found INTEGER DEFAULT 0,
			components_updated INTEGER DEFAULT 0,
			cypher_candidates INTEGER DEFAULT 0,
			security_issues INTEGER DEFAULT 0,
			scan_duration_ms INTEGER DEFAULT 0,
			results TEXT,
			errors TEXT,
			created_at TEXT,
			completed_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS component_exports (
			id TEXT PRIMARY KEY,
			component_id TEXT NOT NULL REFERENCES components(id),
			export_path TEXT NOT NULL,
			export_format TEXT NOT NULL,
			status TEXT NOT NULL,
			adaptations TEXT,
			file_count INTEGER DEFAULT 0,
			total_size INTEGER DEFAULT 0,
			exported_at TEXT,
			created_at TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// InsertComponent persists a new component record.
func (s *SQLite) InsertComponent(ctx context.Context, rec *types.ComponentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	if rec.SecurityStatus == "" {
		rec.SecurityStatus = types.SecurityPending
	}
	if rec.ExportStatus == "" {
		rec.ExportStatus = types.ExportIdentified
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO components (id, name, file_path, component_type, description,
			reusability_score, cypher_compatibility, cypher_pattern,
			dependencies, api_surface, tags, security_status, vulnerabilities,
			export_status, flagged_by, last_scanned, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.FilePath, string(rec.ComponentType), rec.Description,
		rec.ReusabilityScore, rec.CypherCompatibility, rec.CypherPattern,
		asJSON(rec.Dependencies), asJSON(rec.APISurface), asJSON(rec.Tags),
		string(rec.SecurityStatus), asJSON(rec.Vulnerabilities),
		string(rec.ExportStatus), rec.FlaggedBy,
		rec.LastScanned.UTC().Format(timeFmt),
		rec.CreatedAt.UTC().Format(timeFmt),
		rec.UpdatedAt.UTC().Format(timeFmt),
	)
	if err != nil {
		return fmt.Errorf("inserting component %s: %w", rec.FilePath, err)
	}
	return nil
}

const componentColumns = `id, name, file_path, component_type, description,
	reusability_score, cypher_compatibility, cypher_pattern,
	dependencies, api_surface, tags, security_status, vulnerabilities,
	export_status, flagged_by, last_scanned, created_at, updated_at`

// ComponentByID returns one component or ErrNotFound.
func (s *SQLite) ComponentByID(ctx context.Context, id string) (*types.ComponentRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+componentColumns+` FROM components WHERE id = ?`, id)
	return scanComponent(row)
}

// ComponentByPath looks a component up by its file-path key.
func (s *SQLite) ComponentByPath(ctx context.Context, filePath string) (*types.ComponentRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+componentColumns+` FROM components WHERE file_path = ?`, filePath)
	return scanComponent(row)
}

// ListComponents returns all component records.
func (s *SQLite) ListComponents(ctx context.Context) ([]types.ComponentRecord, error) {
	return s.queryComponents(ctx,
		`SELECT `+componentColumns+` FROM components ORDER BY file_path`)
}

// ListComponentsByExportStatus returns components in the given state.
func (s *SQLite) ListComponentsByExportStatus(ctx context.Context, status types.ExportStatus) ([]types.ComponentRecord, error) {
	return s.queryComponents(ctx,
		`SELECT `+componentColumns+` FROM components WHERE export_status = ? ORDER BY file_path`,
		string(status))
}

func (s *SQLite) queryComponents(ctx context.Context, query string, args ...any) ([]types.ComponentRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying components: %w", err)
	}
	defer rows.Close()

	var recs []types.ComponentRecord
	for rows.Next() {
		rec, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// UpdateComponentAnalysis overwrites the analyzable fields in place.
func (s *SQLite) UpdateComponentAnalysis(ctx context.Context, id string, a types.ComponentAnalysis, scannedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE components SET name = ?, component_type = ?, description = ?,
			reusability_score = ?, cypher_compatibility = ?, cypher_pattern = ?,
			dependencies = ?, api_surface = ?, tags = ?,
			last_scanned = ?, updated_at = ?
		 WHERE id = ?`,
		a.Name, string(a.ComponentType), a.Description,
		a.ReusabilityScore, a.CypherCompatibility, a.CypherPattern,
		asJSON(a.Dependencies), asJSON(a.APISurface), asJSON(a.Tags),
		scannedAt.UTC().Format(timeFmt), time.Now().UTC().Format(timeFmt),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating component %s: %w", id, err)
	}
	return requireRow(res, id)
}

// UpdateComponentSecurity persists security scan findings.
func (s *SQLite) UpdateComponentSecurity(ctx context.Context, id string, status types.SecurityStatus, vulns []types.Vulnerability) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE components SET security_status = ?, vulnerabilities = ?, updated_at = ?
		 WHERE id = ?`,
		string(status), asJSON(vulns), time.Now().UTC().Format(timeFmt), id)
	if err != nil {
		return fmt.Errorf("updating security status for %s: %w", id, err)
	}
	return requireRow(res, id)
}

// SetSecurityStatus sets the security status directly (manual review).
func (s *SQLite) SetSecurityStatus(ctx context.Context, id string, status types.SecurityStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE components SET security_status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(timeFmt), id)
	if err != nil {
		return fmt.Errorf("setting security status for %s: %w", id, err)
	}
	return requireRow(res, id)
}

// AdvanceExportStatus moves a component forward in the export pipeline.
// Backward transitions are ignored.
func (s *SQLite) AdvanceExportStatus(ctx context.Context, id string, status types.ExportStatus) error {
	rec, err := s.ComponentByID(ctx, id)
	if err != nil {
		return err
	}
	if status.Rank() <= rec.ExportStatus.Rank() {
		return nil
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE components SET export_status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(timeFmt), id)
	if err != nil {
		return fmt.Errorf("advancing export status for %s: %w", id, err)
	}
	return nil
}

// CreateScanReport inserts a running report and returns its id.
func (s *SQLite) CreateScanReport(ctx context.Context, scanType types.ScanType) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scan_reports (id, scan_type, status, created_at) VALUES (?, ?, ?, ?)`,
		id, string(scanType), string(types.ReportRunning),
		time.Now().UTC().Format(timeFmt))
	if err != nil {
		return "", fmt.Errorf("creating scan report: %w", err)
	}
	return id, nil
}

// CompleteScanReport finalizes a running report with its counts.
func (s *SQLite) CompleteScanReport(ctx context.Context, id string, summary ScanSummary) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scan_reports SET status = ?, components_found = ?, components_updated = ?,
			cypher_candidates = ?, security_issues = ?, scan_duration_ms = ?,
			results = ?, completed_at = ?
		 WHERE id = ? AND status = ?`,
		string(types.ReportCompleted),
		summary.ComponentsFound, summary.ComponentsUpdated,
		summary.CypherCandidates, summary.SecurityIssues,
		summary.Duration.Milliseconds(), summary.Results,
		time.Now().UTC().Format(timeFmt),
		id, string(types.ReportRunning))
	if err != nil {
		return fmt.Errorf("completing scan report %s: %w", id, err)
	}
	return requireRow(res, id)
}

// FailScanReport finalizes a running report with an error message.
func (s *SQLite) FailScanReport(ctx context.Context, id string, msg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scan_reports SET status = ?, errors = ?, completed_at = ?
		 WHERE id = ? AND status = ?`,
		string(types.ReportFailed), asJSON([]string{msg}),
		time.Now().UTC().Format(timeFmt),
		id, string(types.ReportRunning))
	if err != nil {
		return fmt.Errorf("failing scan report %s: %w", id, err)
	}
	return requireRow(res, id)
}

// ScanReportByID returns one scan report or ErrNotFound.
func (s *SQLite) ScanReportByID(ctx context.Context, id string) (*types.ScanReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, scan_type, status, components_found, components_updated,
			cypher_candidates, security_issues, scan_duration_ms, results,
			errors, created_at, completed_at
		 FROM scan_reports WHERE id = ?`, id)
	return scanReport(row)
}

// ListScanReports returns all scan reports, newest first.
func (s *SQLite) ListScanReports(ctx context.Context) ([]types.ScanReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scan_type, status, components_found, components_updated,
			cypher_candidates, security_issues, scan_duration_ms, results,
			errors, created_at, completed_at
		 FROM scan_reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying scan reports: %w", err)
	}
	defer rows.Close()

	var reports []types.ScanReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

// CreateExportRecord inserts a pending export record and returns its id.
func (s *SQLite) CreateExportRecord(ctx context.Context, componentID, exportPath string, format types.ExportFormat) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO component_exports (id, component_id, export_path, export_format, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, componentID, exportPath, string(format),
		string(types.ExportPending), time.Now().UTC().Format(timeFmt))
	if err != nil {
		return "", fmt.Errorf("creating export record: %w", err)
	}
	return id, nil
}

// CompleteExportRecord finalizes a pending export.
func (s *SQLite) CompleteExportRecord(ctx context.Context, id string, adaptations []types.Adaptation, meta types.ExportMetadata) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE component_exports SET status = ?, adaptations = ?,
			file_count = ?, total_size = ?, exported_at = ?
		 WHERE id = ? AND status = ?`,
		string(types.ExportCompleted), asJSON(adaptations),
		meta.FileCount, meta.TotalSize, meta.ExportedAt.UTC().Format(timeFmt),
		id, string(types.ExportPending))
	if err != nil {
		return fmt.Errorf("completing export record %s: %w", id, err)
	}
	return requireRow(res, id)
}

// FailExportRecord finalizes a pending export as failed.
func (s *SQLite) FailExportRecord(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE component_exports SET status = ? WHERE id = ? AND status = ?`,
		string(types.ExportFailed), id, string(types.ExportPending))
	if err != nil {
		return fmt.Errorf("failing export record %s: %w", id, err)
	}
	return requireRow(res, id)
}

// ListExportRecords returns all export records, newest first.
func (s *SQLite) ListExportRecords(ctx context.Context) ([]types.ExportRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, component_id, export_path, export_format, status,
			adaptations, file_count, total_size, exported_at, created_at
		 FROM component_exports ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying export records: %w", err)
	}
	defer rows.Close()

	var recs []types.ExportRecord
	for rows.Next() {
		var (
			rec             types.ExportRecord
			format, status  string
			adaptJSON       sql.NullString
			exportedAt      sql.NullString
			createdAt       sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.ComponentID, &rec.ExportPath,
			&format, &status, &adaptJSON,
			&rec.Metadata.FileCount, &rec.Metadata.TotalSize,
			&exportedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning export record: %w", err)
		}
		rec.ExportFormat = types.ExportFormat(format)
		rec.Status = types.ExportRecordStatus(status)
		if adaptJSON.Valid {
			json.Unmarshal([]byte(adaptJSON.String), &rec.Adaptations)
		}
		rec.Metadata.ExportedAt = parseTime(exportedAt)
		rec.CreatedAt = parseTime(createdAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanComponent(row rowScanner) (*types.ComponentRecord, error) {
	var (
		rec                        types.ComponentRecord
		compType, secStatus        string
		expStatus                  string
		depsJSON, apiJSON          sql.NullString
		tagsJSON, vulnsJSON        sql.NullString
		lastScanned, createdAt     sql.NullString
		updatedAt                  sql.NullString
	)

	err := row.Scan(&rec.ID, &rec.Name, &rec.FilePath, &compType, &rec.Description,
		&rec.ReusabilityScore, &rec.CypherCompatibility, &rec.CypherPattern,
		&depsJSON, &apiJSON, &tagsJSON, &secStatus, &vulnsJSON,
		&expStatus, &rec.FlaggedBy, &lastScanned, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning component row: %w", err)
	}

	rec.ComponentType = types.ComponentType(compType)
	rec.SecurityStatus = types.SecurityStatus(secStatus)
	rec.ExportStatus = types.ExportStatus(expStatus)
	if depsJSON.Valid {
		json.Unmarshal([]byte(depsJSON.String), &rec.Dependencies)
	}
	if apiJSON.Valid {
		json.Unmarshal([]byte(apiJSON.String), &rec.APISurface)
	}
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &rec.Tags)
	}
	if vulnsJSON.Valid {
		json.Unmarshal([]byte(vulnsJSON.String), &rec.Vulnerabilities)
	}
	rec.LastScanned = parseTime(lastScanned)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

func scanReport(row rowScanner) (*types.ScanReport, error) {
	var (
		r                      types.ScanReport
		scanType, status       string
		results, errsJSON      sql.NullString
		createdAt, completedAt sql.NullString
	)

	err := row.Scan(&r.ID, &scanType, &status,
		&r.ComponentsFound, &r.ComponentsUpdated,
		&r.CypherCandidates, &r.SecurityIssues, &r.ScanDuration,
		&results, &errsJSON, &createdAt, &completedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning report row: %w", err)
	}

	r.ScanType = types.ScanType(scanType)
	r.Status = types.ReportStatus(status)
	if results.Valid {
		r.Results = results.String
	}
	if errsJSON.Valid {
		json.Unmarshal([]byte(errsJSON.String), &r.Errors)
	}
	r.CreatedAt = parseTime(createdAt)
	r.CompletedAt = parseTime(completedAt)
	return &r, nil
}

// requireRow converts a zero-rows-affected update into ErrNotFound.
func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	return nil
}

func asJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timeFmt, s.String)
	return t
}
