// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scanner

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/component-manager/internal/store"
	"github.com/meshintel/component-manager/pkg/types"
)

// writeProjectFile creates a source file under root, making parent
// directories as needed.
func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

// padSource appends a line comment so content reaches exactly n bytes.
func padSource(t *testing.T, content string, n int) string {
	t.Helper()
	pad := n - len(content) - 3
	require.GreaterOrEqual(t, pad, 0)
	return content + "// " + strings.Repeat("x", pad)
}

func newTestScanner(t *testing.T, root string) (*Scanner, store.Store) {
	t.Helper()
	st := store.NewMemory()
	return New(st, types.DefaultScannerConfig(root), io.Discard), st
}

func TestRunDiscoversComponents(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "server/services/widget-service.ts", widgetServiceSource)
	writeProjectFile(t, root, "shared/low-value.ts", padSource(t, "const internal = 1;\n", 250))

	s, st := newTestScanner(t, root)
	report, err := s.Run(context.Background(), types.ScanFull)
	require.NoError(t, err)

	assert.Equal(t, types.ReportCompleted, report.Status)

	// The broad "server" target revisits server/services, so the same
	// file is inserted once and refreshed once within a single run.
	assert.Equal(t, 1, report.ComponentsFound)
	assert.Equal(t, 1, report.ComponentsUpdated)
	assert.Contains(t, report.Results, `"total_components":2`)

	rec, err := st.ComponentByPath(context.Background(), "server/services/widget-service.ts")
	require.NoError(t, err)
	assert.Equal(t, "widget-service", rec.Name)
	assert.Equal(t, types.TypeService, rec.ComponentType)
	assert.Equal(t, 85, rec.ReusabilityScore)
	assert.Equal(t, "auto_scanner", rec.FlaggedBy)
	assert.Equal(t, types.SecurityPending, rec.SecurityStatus)
	assert.Equal(t, types.ExportIdentified, rec.ExportStatus)
	assert.False(t, rec.LastScanned.IsZero())

	// The low-scoring file is never persisted.
	_, err = st.ComponentByPath(context.Background(), "shared/low-value.ts")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunMinFileSizeBoundary(t *testing.T) {
	root := t.TempDir()
	// Identical analyzable content; only total length differs.
	writeProjectFile(t, root, "shared/at-floor.ts", padSource(t, "export const limits = { max: 10 };\n", 200))
	writeProjectFile(t, root, "shared/below-floor.ts", padSource(t, "export const limits = { max: 10 };\n", 199))

	s, st := newTestScanner(t, root)
	_, err := s.Run(context.Background(), types.ScanFull)
	require.NoError(t, err)

	_, err = st.ComponentByPath(context.Background(), "shared/at-floor.ts")
	assert.NoError(t, err)
	_, err = st.ComponentByPath(context.Background(), "shared/below-floor.ts")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunRescanUpdatesInPlace(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "shared/widget-data.ts", widgetServiceSource)

	s, st := newTestScanner(t, root)
	ctx := context.Background()

	first, err := s.Run(ctx, types.ScanFull)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ComponentsFound)
	assert.Equal(t, 0, first.ComponentsUpdated)

	before, err := st.ComponentByPath(ctx, "shared/widget-data.ts")
	require.NoError(t, err)

	second, err := s.Run(ctx, types.ScanFull)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ComponentsFound)
	assert.Equal(t, 1, second.ComponentsUpdated)

	after, err := st.ComponentByPath(ctx, "shared/widget-data.ts")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.ReusabilityScore, after.ReusabilityScore)

	all, err := st.ListComponents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRunSkipsExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "shared/node_modules/pkg/index.ts", widgetServiceSource)
	writeProjectFile(t, root, "shared/dist/bundle.ts", widgetServiceSource)
	writeProjectFile(t, root, "shared/kept-helper.ts", padSource(t, "export const keep = () => 1;\n", 220))

	s, st := newTestScanner(t, root)
	_, err := s.Run(context.Background(), types.ScanFull)
	require.NoError(t, err)

	all, err := st.ListComponents(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "shared/kept-helper.ts", all[0].FilePath)
}

func TestRunMissingTargetDirectories(t *testing.T) {
	// An empty project has none of the standard targets; the scan still
	// completes with zero results.
	s, _ := newTestScanner(t, t.TempDir())
	report, err := s.Run(context.Background(), types.ScanFull)
	require.NoError(t, err)
	assert.Equal(t, types.ReportCompleted, report.Status)
	assert.Equal(t, 0, report.ComponentsFound)
	assert.Equal(t, 0, report.ComponentsUpdated)
}

func TestRunCountsCypherCandidates(t *testing.T) {
	root := t.TempDir()
	// Parser path plus all six content patterns scores over the
	// candidate threshold.
	writeProjectFile(t, root, "shared/feed-parser.ts", padSource(t, `export class Feed {
  async function handler() { return fetch('/x').then(r => r.json()); }
}
interface Entry {}
export async function run(): Promise<void> {}
`, 300))
	writeProjectFile(t, root, "shared/plain-helper.ts", padSource(t, "export const helper = 1;\n", 220))

	s, _ := newTestScanner(t, root)
	report, err := s.Run(context.Background(), types.ScanFull)
	require.NoError(t, err)
	assert.Equal(t, 2, report.ComponentsFound)
	assert.Equal(t, 1, report.CypherCandidates)
}

func TestStartReportsAsynchronously(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "shared/async-helper.ts", padSource(t, "export const helper = () => 1;\n", 220))

	s, st := newTestScanner(t, root)
	ctx := context.Background()

	reportID, err := s.Start(ctx, types.ScanFull)
	require.NoError(t, err)
	require.NotEmpty(t, reportID)

	deadline := time.After(5 * time.Second)
	for {
		report, err := st.ScanReportByID(ctx, reportID)
		require.NoError(t, err)
		if report.Status != types.ReportRunning {
			assert.Equal(t, types.ReportCompleted, report.Status)
			assert.Equal(t, 1, report.ComponentsFound)
			return
		}
		select {
		case <-deadline:
			t.Fatal("scan did not complete in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPerformSecurityScan(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "server/services/risky-service.ts", padSource(t,
		"export class RiskyService {\n  run(input: string) { return eval(input); }\n}\n", 250))
	writeProjectFile(t, root, "server/services/clean-service.ts", padSource(t,
		"export class CleanService {\n  run(a: number) { return a * 2; }\n}\n", 250))

	s, st := newTestScanner(t, root)
	ctx := context.Background()
	_, err := s.Run(ctx, types.ScanFull)
	require.NoError(t, err)

	risky, err := st.ComponentByPath(ctx, "server/services/risky-service.ts")
	require.NoError(t, err)
	updated, err := s.PerformSecurityScan(ctx, risky.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SecurityNeedsReview, updated.SecurityStatus)
	require.Len(t, updated.Vulnerabilities, 1)
	assert.Equal(t, "code_injection", updated.Vulnerabilities[0].Type)
	assert.Equal(t, 2, updated.Vulnerabilities[0].Line)

	clean, err := st.ComponentByPath(ctx, "server/services/clean-service.ts")
	require.NoError(t, err)
	updated, err = s.PerformSecurityScan(ctx, clean.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SecurityApproved, updated.SecurityStatus)
	assert.Empty(t, updated.Vulnerabilities)
}

func TestSecuritySweep(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "server/services/risky-service.ts", padSource(t,
		"export class RiskyService {\n  run(input: string) { return eval(input); }\n}\n", 250))
	writeProjectFile(t, root, "server/services/clean-service.ts", padSource(t,
		"export class CleanService {\n  run(a: number) { return a * 2; }\n}\n", 250))

	s, _ := newTestScanner(t, root)
	ctx := context.Background()
	_, err := s.Run(ctx, types.ScanFull)
	require.NoError(t, err)

	flagged, err := s.SecuritySweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, flagged)
}

func TestReadTargetsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.yaml")

	want := []types.ScanTarget{
		{Path: "server/services", Type: types.TypeService},
		{Path: "pkg/helpers", Type: types.TypeUtility},
	}
	require.NoError(t, WriteTargetsFile(path, want))

	got, err := ReadTargetsFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	t.Run("unknown type rejected", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("targets:\n  - path: x\n    type: widget\n"), 0o644))
		_, err := ReadTargetsFile(bad)
		assert.ErrorContains(t, err, "unknown type")
	})

	t.Run("empty file rejected", func(t *testing.T) {
		empty := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(empty, []byte("targets: []\n"), 0o644))
		_, err := ReadTargetsFile(empty)
		assert.ErrorContains(t, err, "no targets")
	})
}
