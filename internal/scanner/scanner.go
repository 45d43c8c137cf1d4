// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meshintel/component-manager/internal/store"
	"github.com/meshintel/component-manager/pkg/types"
)

// flaggedByScanner marks records discovered by the automated scan, as
// opposed to manually registered components.
const flaggedByScanner = "auto_scanner"

// cypherCandidateThreshold is the minimum compatibility score for a
// component to count as an adaptation candidate in scan reports.
const cypherCandidateThreshold = 70

// excludePatterns are substrings of the project-relative path that
// exclude a file or directory from scanning.
var excludePatterns = []string{
	"node_modules", ".git", "dist", "build", "coverage",
	".next", ".vscode", ".DS_Store", "tmp", "temp",
}

// Scanner walks the configured targets and keeps the component store in
// sync with what it finds.
type Scanner struct {
	store store.Store
	cfg   types.ScannerConfig
	out   io.Writer
}

// New creates a Scanner over the given store. Progress output goes to
// out; pass io.Discard to silence it.
func New(st store.Store, cfg types.ScannerConfig, out io.Writer) *Scanner {
	if out == nil {
		out = io.Discard
	}
	if cfg.MinFileSize == 0 {
		cfg.MinFileSize = 200
	}
	if cfg.MinReusabilityScore == 0 {
		cfg.MinReusabilityScore = 30
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = types.DefaultScanTargets()
	}
	return &Scanner{store: st, cfg: cfg, out: out}
}

// Start creates a scan report in the running state and performs the
// scan in a background goroutine, returning the report id immediately.
// Callers poll the report for completion. Failures finalize the report;
// they are not returned here.
func (s *Scanner) Start(ctx context.Context, scanType types.ScanType) (string, error) {
	reportID, err := s.store.CreateScanReport(ctx, scanType)
	if err != nil {
		return "", fmt.Errorf("creating scan report: %w", err)
	}
	go func() {
		if err := s.run(ctx, reportID); err != nil {
			fmt.Fprintf(s.out, "scan %s failed: %v\n", reportID, err)
		}
	}()
	return reportID, nil
}

// Run performs a scan synchronously and returns the finalized report.
func (s *Scanner) Run(ctx context.Context, scanType types.ScanType) (*types.ScanReport, error) {
	reportID, err := s.store.CreateScanReport(ctx, scanType)
	if err != nil {
		return nil, fmt.Errorf("creating scan report: %w", err)
	}
	if err := s.run(ctx, reportID); err != nil {
		return nil, err
	}
	return s.store.ScanReportByID(ctx, reportID)
}

// run walks every target, upserts the analyses, and finalizes the
// report. Any error past the walk finalizes the report as failed and is
// returned.
func (s *Scanner) run(ctx context.Context, reportID string) error {
	started := time.Now()
	fmt.Fprintf(s.out, "starting component scan (report %s)\n", reportID)

	var analyses []types.ComponentAnalysis
	for _, target := range s.cfg.Targets {
		select {
		case <-ctx.Done():
			return s.fail(ctx, reportID, ctx.Err())
		default:
		}
		dir := filepath.Join(s.cfg.ProjectRoot, filepath.FromSlash(target.Path))
		found := s.scanDirectory(dir, target.Type)
		fmt.Fprintf(s.out, "scanned %s: %d components\n", target.Path, len(found))
		analyses = append(analyses, found...)
	}

	summary, err := s.upsertAll(ctx, analyses)
	if err != nil {
		return s.fail(ctx, reportID, err)
	}
	summary.Duration = time.Since(started)

	results, err := json.Marshal(map[string]any{
		"total_components": len(analyses),
		"scan_targets":     s.cfg.Targets,
	})
	if err != nil {
		return s.fail(ctx, reportID, fmt.Errorf("encoding scan results: %w", err))
	}
	summary.Results = string(results)

	if err := s.store.CompleteScanReport(ctx, reportID, summary); err != nil {
		return fmt.Errorf("completing scan report: %w", err)
	}
	fmt.Fprintf(s.out, "scan complete: %d new, %d updated, %d candidates in %s\n",
		summary.ComponentsFound, summary.ComponentsUpdated,
		summary.CypherCandidates, summary.Duration.Round(time.Millisecond))
	return nil
}

func (s *Scanner) fail(ctx context.Context, reportID string, cause error) error {
	if err := s.store.FailScanReport(ctx, reportID, cause.Error()); err != nil {
		fmt.Fprintf(s.out, "recording scan failure: %v\n", err)
	}
	return cause
}

// scanDirectory recursively collects analyses under dir. A directory
// that cannot be read yields no results rather than an error, so
// targets absent from the project are simply empty.
func (s *Scanner) scanDirectory(dir string, defaultType types.ComponentType) []types.ComponentAnalysis {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var analyses []types.ComponentAnalysis
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		rel := s.relPath(full)
		if isExcluded(rel) {
			continue
		}
		if entry.IsDir() {
			analyses = append(analyses, s.scanDirectory(full, defaultType)...)
			continue
		}
		if !IsSourceFile(entry.Name()) {
			continue
		}
		if a, ok := s.analyzeFile(full, rel, defaultType); ok {
			analyses = append(analyses, a)
		}
	}
	return analyses
}

// analyzeFile reads and analyzes one source file. Files below the size
// floor or the reusability floor are skipped; read errors are logged
// and skipped.
func (s *Scanner) analyzeFile(fullPath, relPath string, defaultType types.ComponentType) (types.ComponentAnalysis, bool) {
	content, err := os.ReadFile(fullPath)
	if err != nil {
		fmt.Fprintf(s.out, "skipping %s: %v\n", relPath, err)
		return types.ComponentAnalysis{}, false
	}
	if len(content) < s.cfg.MinFileSize {
		return types.ComponentAnalysis{}, false
	}
	a := Analyze(relPath, string(content), defaultType)
	if a.ReusabilityScore < s.cfg.MinReusabilityScore {
		return types.ComponentAnalysis{}, false
	}
	return a, true
}

// upsertAll writes the analyses into the store, inserting new records
// and refreshing existing ones by file path. Security and export state
// on existing records is preserved.
func (s *Scanner) upsertAll(ctx context.Context, analyses []types.ComponentAnalysis) (store.ScanSummary, error) {
	var summary store.ScanSummary
	now := time.Now().UTC()
	for _, a := range analyses {
		existing, err := s.store.ComponentByPath(ctx, a.FilePath)
		switch {
		case err == nil:
			if err := s.store.UpdateComponentAnalysis(ctx, existing.ID, a, now); err != nil {
				return summary, fmt.Errorf("updating component %s: %w", a.FilePath, err)
			}
			summary.ComponentsUpdated++
		case errors.Is(err, store.ErrNotFound):
			rec := recordFromAnalysis(a, now)
			if err := s.store.InsertComponent(ctx, rec); err != nil {
				return summary, fmt.Errorf("inserting component %s: %w", a.FilePath, err)
			}
			summary.ComponentsFound++
		default:
			return summary, fmt.Errorf("looking up component %s: %w", a.FilePath, err)
		}
		if a.CypherCompatibility >= cypherCandidateThreshold {
			summary.CypherCandidates++
		}
	}
	return summary, nil
}

// recordFromAnalysis builds a fresh component record in the initial
// pipeline state.
func recordFromAnalysis(a types.ComponentAnalysis, scannedAt time.Time) *types.ComponentRecord {
	return &types.ComponentRecord{
		Name:                a.Name,
		FilePath:            a.FilePath,
		ComponentType:       a.ComponentType,
		Description:         a.Description,
		ReusabilityScore:    a.ReusabilityScore,
		Dependencies:        a.Dependencies,
		APISurface:          a.APISurface,
		CypherPattern:       a.CypherPattern,
		CypherCompatibility: a.CypherCompatibility,
		Tags:                a.Tags,
		SecurityStatus:      types.SecurityPending,
		ExportStatus:        types.ExportIdentified,
		FlaggedBy:           flaggedByScanner,
		LastScanned:         scannedAt,
	}
}

// relPath returns the slash-separated path of full relative to the
// project root. Exclusion checks run against this relative form so that
// the root's own location (say, under a temp directory) never triggers
// them.
func (s *Scanner) relPath(full string) string {
	rel, err := filepath.Rel(s.cfg.ProjectRoot, full)
	if err != nil {
		rel = full
	}
	return filepath.ToSlash(rel)
}

func isExcluded(relPath string) bool {
	for _, pattern := range excludePatterns {
		if strings.Contains(relPath, pattern) {
			return true
		}
	}
	return false
}
