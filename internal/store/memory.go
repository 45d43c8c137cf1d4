// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meshintel/component-manager/pkg/types"
)

// Memory is an in-process Store used by tests and ephemeral runs.
type Memory struct {
	mu         sync.Mutex
	components map[string]*types.ComponentRecord
	byPath     map[string]string
	reports    map[string]*types.ScanReport
	exports    map[string]*types.ExportRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		components: make(map[string]*types.ComponentRecord),
		byPath:     make(map[string]string),
		reports:    make(map[string]*types.ScanReport),
		exports:    make(map[string]*types.ExportRecord),
	}
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }

// InsertComponent persists a new component record.
func (m *Memory) InsertComponent(ctx context.Context, rec *types.ComponentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byPath[rec.FilePath]; exists {
		return fmt.Errorf("inserting component %s: duplicate file path", rec.FilePath)
	}
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

	clone := *rec
	m.components[rec.ID] = &clone
	m.byPath[rec.FilePath] = rec.ID
	return nil
}

// ComponentByID returns one component or ErrNotFound.
func (m *Memory) ComponentByID(ctx context.Context, id string) (*types.ComponentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.components[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

// ComponentByPath looks a component up by its file-path key.
func (m *Memory) ComponentByPath(ctx context.Context, filePath string) (*types.ComponentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byPath[filePath]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *m.components[id]
	return &clone, nil
}

// ListComponents returns all component records sorted by file path.
func (m *Memory) ListComponents(ctx context.Context) ([]types.ComponentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var recs []types.ComponentRecord
	for _, rec := range m.components {
		recs = append(recs, *rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].FilePath < recs[j].FilePath })
	return recs, nil
}

// ListComponentsByExportStatus returns components in the given state.
func (m *Memory) ListComponentsByExportStatus(ctx context.Context, status types.ExportStatus) ([]types.ComponentRecord, error) {
	all, _ := m.ListComponents(ctx)
	var recs []types.ComponentRecord
	for _, rec := range all {
		if rec.ExportStatus == status {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// UpdateComponentAnalysis overwrites the analyzable fields in place.
func (m *Memory) UpdateComponentAnalysis(ctx context.Context, id string, a types.ComponentAnalysis, scannedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.components[id]
	if !ok {
		return fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	rec.Name = a.Name
	rec.ComponentType = a.ComponentType
	rec.Description = a.Description
	rec.ReusabilityScore = a.ReusabilityScore
	rec.CypherCompatibility = a.CypherCompatibility
	rec.CypherPattern = a.CypherPattern
	rec.Dependencies = append([]string(nil), a.Dependencies...)
	rec.APISurface = a.APISurface
	rec.Tags = append([]string(nil), a.Tags...)
	rec.LastScanned = scannedAt
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateComponentSecurity persists security scan findings.
func (m *Memory) UpdateComponentSecurity(ctx context.Context, id string, status types.SecurityStatus, vulns []types.Vulnerability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.components[id]
	if !ok {
		return fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	rec.SecurityStatus = status
	rec.Vulnerabilities = append([]types.Vulnerability(nil), vulns...)
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// SetSecurityStatus sets the security status directly (manual review).
func (m *Memory) SetSecurityStatus(ctx context.Context, id string, status types.SecurityStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.components[id]
	if !ok {
		return fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	rec.SecurityStatus = status
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// AdvanceExportStatus moves a component forward in the export pipeline.
func (m *Memory) AdvanceExportStatus(ctx context.Context, id string, status types.ExportStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.components[id]
	if !ok {
		return fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	if status.Rank() <= rec.ExportStatus.Rank() {
		return nil
	}
	rec.ExportStatus = status
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// CreateScanReport inserts a running report and returns its id.
func (m *Memory) CreateScanReport(ctx context.Context, scanType types.ScanType) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.reports[id] = &types.ScanReport{
		ID:        id,
		ScanType:  scanType,
		Status:    types.ReportRunning,
		CreatedAt: time.Now().UTC(),
	}
	return id, nil
}

// CompleteScanReport finalizes a running report with its counts.
func (m *Memory) CompleteScanReport(ctx context.Context, id string, summary ScanSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok || r.Status != types.ReportRunning {
		return fmt.Errorf("running report %s: %w", id, ErrNotFound)
	}
	r.Status = types.ReportCompleted
	r.ComponentsFound = summary.ComponentsFound
	r.ComponentsUpdated = summary.ComponentsUpdated
	r.CypherCandidates = summary.CypherCandidates
	r.SecurityIssues = summary.SecurityIssues
	r.ScanDuration = summary.Duration.Milliseconds()
	r.Results = summary.Results
	r.CompletedAt = time.Now().UTC()
	return nil
}

// FailScanReport finalizes a running report with an error message.
func (m *Memory) FailScanReport(ctx context.Context, id string, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok || r.Status != types.ReportRunning {
		return fmt.Errorf("running report %s: %w", id, ErrNotFound)
	}
	r.Status = types.ReportFailed
	r.Errors = []string{msg}
	r.CompletedAt = time.Now().UTC()
	return nil
}

// ScanReportByID returns one scan report or ErrNotFound.
func (m *Memory) ScanReportByID(ctx context.Context, id string) (*types.ScanReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *r
	return &clone, nil
}

// ListScanReports returns all scan reports, newest first.
func (m *Memory) ListScanReports(ctx context.Context) ([]types.ScanReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var reports []types.ScanReport
	for _, r := range m.reports {
		reports = append(reports, *r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

// CreateExportRecord inserts a pending export record and returns its id.
func (m *Memory) CreateExportRecord(ctx context.Context, componentID, exportPath string, format types.ExportFormat) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.exports[id] = &types.ExportRecord{
		ID:           id,
		ComponentID:  componentID,
		ExportPath:   exportPath,
		ExportFormat: format,
		Status:       types.ExportPending,
		CreatedAt:    time.Now().UTC(),
	}
	return id, nil
}

// CompleteExportRecord finalizes a pending export.
func (m *Memory) CompleteExportRecord(ctx context.Context, id string, adaptations []types.Adaptation, meta types.ExportMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.exports[id]
	if !ok || rec.Status != types.ExportPending {
		return fmt.Errorf("pending export %s: %w", id, ErrNotFound)
	}
	rec.Status = types.ExportCompleted
	rec.Adaptations = append([]types.Adaptation(nil), adaptations...)
	rec.Metadata = meta
	return nil
}

// FailExportRecord finalizes a pending export as failed.
func (m *Memory) FailExportRecord(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.exports[id]
	if !ok || rec.Status != types.ExportPending {
		return fmt.Errorf("pending export %s: %w", id, ErrNotFound)
	}
	rec.Status = types.ExportFailed
	return nil
}

// ListExportRecords returns all export records, newest first.
func (m *Memory) ListExportRecords(ctx context.Context) ([]types.ExportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var recs []types.ExportRecord
	for _, rec := range m.exports {
		recs = append(recs, *rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	return recs, nil
}
