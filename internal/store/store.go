// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists component records, scan reports, and export
// records. The Store interface is injected into the pipeline stages so
// tests can substitute the in-memory implementation.
// See docs/ARCHITECTURE § Record Store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/meshintel/component-manager/pkg/types"
)

// ErrNotFound is returned when a referenced record does not exist.
// Callers map it to their own not-found signal.
var ErrNotFound = errors.New("record not found")

// ScanSummary carries the aggregate counts used to finalize a scan
// report to the completed state.
type ScanSummary struct {
	ComponentsFound   int
	ComponentsUpdated int
	CypherCandidates  int
	SecurityIssues    int
	Duration          time.Duration

	// Results is a free-form JSON summary blob.
	Results string
}

// Store is the keyed record store for the pipeline. Implementations are
// durable and synchronously consistent per single caller; no guard
// exists against concurrent writers to the same record.
type Store interface {
	// InsertComponent persists a new component record. A missing ID is
	// assigned; CreatedAt/UpdatedAt are set when zero.
	InsertComponent(ctx context.Context, rec *types.ComponentRecord) error

	// ComponentByID returns one component or ErrNotFound.
	ComponentByID(ctx context.Context, id string) (*types.ComponentRecord, error)

	// ComponentByPath looks a component up by its file-path key.
	ComponentByPath(ctx context.Context, filePath string) (*types.ComponentRecord, error)

	// ListComponents returns all component records.
	ListComponents(ctx context.Context) ([]types.ComponentRecord, error)

	// ListComponentsByExportStatus returns components in the given
	// export pipeline state.
	ListComponentsByExportStatus(ctx context.Context, status types.ExportStatus) ([]types.ComponentRecord, error)

	// UpdateComponentAnalysis overwrites the analyzable fields of an
	// existing record and bumps LastScanned/UpdatedAt. Security and
	// export status fields are left untouched.
	UpdateComponentAnalysis(ctx context.Context, id string, a types.ComponentAnalysis, scannedAt time.Time) error

	// UpdateComponentSecurity persists security scan findings and the
	// derived status, bumping UpdatedAt.
	UpdateComponentSecurity(ctx context.Context, id string, status types.SecurityStatus, vulns []types.Vulnerability) error

	// SetSecurityStatus sets the security status directly. This is the
	// manual review path; it is the only way "rejected" is reached.
	SetSecurityStatus(ctx context.Context, id string, status types.SecurityStatus) error

	// AdvanceExportStatus moves a component forward in the export
	// pipeline. A transition to the current or an earlier state is a
	// no-op; the status never regresses.
	AdvanceExportStatus(ctx context.Context, id string, status types.ExportStatus) error

	// CreateScanReport inserts a report in the "running" state and
	// returns its id.
	CreateScanReport(ctx context.Context, scanType types.ScanType) (string, error)

	// CompleteScanReport finalizes a running report with its counts.
	CompleteScanReport(ctx context.Context, id string, summary ScanSummary) error

	// FailScanReport finalizes a running report with an error message.
	FailScanReport(ctx context.Context, id string, msg string) error

	// ScanReportByID returns one scan report or ErrNotFound.
	ScanReportByID(ctx context.Context, id string) (*types.ScanReport, error)

	// ListScanReports returns all scan reports, newest first.
	ListScanReports(ctx context.Context) ([]types.ScanReport, error)

	// CreateExportRecord inserts an export record in the "pending"
	// state and returns its id.
	CreateExportRecord(ctx context.Context, componentID, exportPath string, format types.ExportFormat) (string, error)

	// CompleteExportRecord finalizes a pending export with its
	// adaptations and metadata.
	CompleteExportRecord(ctx context.Context, id string, adaptations []types.Adaptation, meta types.ExportMetadata) error

	// FailExportRecord finalizes a pending export as failed. No
	// adaptations are persisted.
	FailExportRecord(ctx context.Context, id string) error

	// ListExportRecords returns all export records, newest first.
	ListExportRecords(ctx context.Context) ([]types.ExportRecord, error)

	// Close releases underlying resources.
	Close() error
}

// Open returns a Store backed by the configured engine: the in-memory
// store for ":memory:" or empty, SQLite otherwise.
func Open(cfg types.StoreConfig) (Store, error) {
	if cfg.Path == "" || cfg.Path == ":memory:" {
		return NewMemory(), nil
	}
	return OpenSQLite(cfg.Path)
}
