// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/component-manager/pkg/types"
)

// openStores returns both implementations so every subtest runs against
// SQLite and the in-memory fake with identical expectations.
func openStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "components.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemory(),
	}
}

func sampleRecord(path string) *types.ComponentRecord {
	return &types.ComponentRecord{
		Name:                "widget-service",
		FilePath:            path,
		ComponentType:       types.TypeService,
		Description:         "Widget lifecycle service",
		ReusabilityScore:    65,
		Dependencies:        []string{"express", "zod"},
		APISurface:          types.APISurface{Exports: []string{"WidgetService"}, Classes: []string{"WidgetService"}},
		CypherPattern:       "mcp-server-module",
		CypherCompatibility: 45,
		Tags:                []string{"service"},
		SecurityStatus:      types.SecurityPending,
		ExportStatus:        types.ExportIdentified,
		FlaggedBy:           "auto_scanner",
		LastScanned:         time.Now().UTC(),
	}
}

func TestComponentRoundTrip(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sampleRecord("server/services/widget-service.ts")
			require.NoError(t, st.InsertComponent(ctx, rec))
			require.NotEmpty(t, rec.ID)

			byID, err := st.ComponentByID(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, rec.FilePath, byID.FilePath)
			assert.Equal(t, rec.Dependencies, byID.Dependencies)
			assert.Equal(t, rec.APISurface, byID.APISurface)
			assert.Equal(t, types.SecurityPending, byID.SecurityStatus)
			assert.Equal(t, types.ExportIdentified, byID.ExportStatus)

			byPath, err := st.ComponentByPath(ctx, rec.FilePath)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, byPath.ID)

			_, err = st.ComponentByID(ctx, "no-such-id")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestInsertComponentDuplicatePath(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.InsertComponent(ctx, sampleRecord("shared/widgets.ts")))
			err := st.InsertComponent(ctx, sampleRecord("shared/widgets.ts"))
			assert.Error(t, err)
		})
	}
}

func TestUpdateComponentAnalysisPreservesStatus(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sampleRecord("server/services/widget-service.ts")
			require.NoError(t, st.InsertComponent(ctx, rec))

			vulns := []types.Vulnerability{{Type: "xss", Severity: types.SeverityMedium, Description: "finding", Line: 3}}
			require.NoError(t, st.UpdateComponentSecurity(ctx, rec.ID, types.SecurityNeedsReview, vulns))
			require.NoError(t, st.AdvanceExportStatus(ctx, rec.ID, types.ExportDocumented))

			rescanned := time.Now().UTC()
			a := types.ComponentAnalysis{
				Name:                "widget-service",
				FilePath:            rec.FilePath,
				ComponentType:       types.TypeService,
				Description:         "rewritten description",
				ReusabilityScore:    80,
				Dependencies:        []string{"express"},
				CypherPattern:       "mcp-server-module",
				CypherCompatibility: 60,
				Tags:                []string{"service"},
			}
			require.NoError(t, st.UpdateComponentAnalysis(ctx, rec.ID, a, rescanned))

			got, err := st.ComponentByID(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, 80, got.ReusabilityScore)
			assert.Equal(t, "rewritten description", got.Description)

			// Re-scans must not disturb review or pipeline state.
			assert.Equal(t, types.SecurityNeedsReview, got.SecurityStatus)
			assert.Len(t, got.Vulnerabilities, 1)
			assert.Equal(t, types.ExportDocumented, got.ExportStatus)
		})
	}
}

func TestAdvanceExportStatusNeverRegresses(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sampleRecord("client/src/lib/format.ts")
			require.NoError(t, st.InsertComponent(ctx, rec))

			require.NoError(t, st.AdvanceExportStatus(ctx, rec.ID, types.ExportExported))
			require.NoError(t, st.AdvanceExportStatus(ctx, rec.ID, types.ExportDocumented))
			require.NoError(t, st.AdvanceExportStatus(ctx, rec.ID, types.ExportIdentified))

			got, err := st.ComponentByID(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, types.ExportExported, got.ExportStatus)

			require.NoError(t, st.AdvanceExportStatus(ctx, rec.ID, types.ExportIntegrated))
			got, err = st.ComponentByID(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, types.ExportIntegrated, got.ExportStatus)
		})
	}
}

func TestListComponentsByExportStatus(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := sampleRecord("shared/a.ts")
			second := sampleRecord("shared/b.ts")
			require.NoError(t, st.InsertComponent(ctx, first))
			require.NoError(t, st.InsertComponent(ctx, second))
			require.NoError(t, st.AdvanceExportStatus(ctx, second.ID, types.ExportDocumented))

			identified, err := st.ListComponentsByExportStatus(ctx, types.ExportIdentified)
			require.NoError(t, err)
			require.Len(t, identified, 1)
			assert.Equal(t, first.ID, identified[0].ID)

			documented, err := st.ListComponentsByExportStatus(ctx, types.ExportDocumented)
			require.NoError(t, err)
			require.Len(t, documented, 1)
			assert.Equal(t, second.ID, documented[0].ID)
		})
	}
}

func TestScanReportLifecycle(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := st.CreateScanReport(ctx, types.ScanFull)
			require.NoError(t, err)

			running, err := st.ScanReportByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, types.ReportRunning, running.Status)

			summary := ScanSummary{
				ComponentsFound:   3,
				ComponentsUpdated: 2,
				CypherCandidates:  1,
				Duration:          1500 * time.Millisecond,
				Results:           `{"total_components":5}`,
			}
			require.NoError(t, st.CompleteScanReport(ctx, id, summary))

			done, err := st.ScanReportByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, types.ReportCompleted, done.Status)
			assert.Equal(t, 3, done.ComponentsFound)
			assert.Equal(t, 2, done.ComponentsUpdated)
			assert.Equal(t, int64(1500), done.ScanDuration)
			assert.False(t, done.CompletedAt.IsZero())

			// Finalizing twice is an error.
			assert.Error(t, st.CompleteScanReport(ctx, id, summary))
			assert.Error(t, st.FailScanReport(ctx, id, "late failure"))
		})
	}
}

func TestFailScanReport(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := st.CreateScanReport(ctx, types.ScanSecurity)
			require.NoError(t, err)
			require.NoError(t, st.FailScanReport(ctx, id, "target unreadable"))

			failed, err := st.ScanReportByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, types.ReportFailed, failed.Status)
			assert.Equal(t, []string{"target unreadable"}, failed.Errors)
		})
	}
}

func TestExportRecordLifecycle(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sampleRecord("server/services/widget-service.ts")
			require.NoError(t, st.InsertComponent(ctx, rec))

			id, err := st.CreateExportRecord(ctx, rec.ID, "exports/widget-service", types.FormatMCPModule)
			require.NoError(t, err)

			adaptations := []types.Adaptation{{Type: "import_replacement", Description: "swapped imports", File: "index.ts"}}
			meta := types.ExportMetadata{FileCount: 2, TotalSize: 2048, ExportedAt: time.Now().UTC()}
			require.NoError(t, st.CompleteExportRecord(ctx, id, adaptations, meta))

			records, err := st.ListExportRecords(ctx)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, types.ExportCompleted, records[0].Status)
			assert.Equal(t, adaptations, records[0].Adaptations)
			assert.Equal(t, 2, records[0].Metadata.FileCount)

			// Completed exports cannot be failed after the fact.
			assert.Error(t, st.FailExportRecord(ctx, id))
		})
	}
}

func TestSetSecurityStatusManualRejection(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sampleRecord("server/auth.ts")
			require.NoError(t, st.InsertComponent(ctx, rec))
			require.NoError(t, st.SetSecurityStatus(ctx, rec.ID, types.SecurityRejected))

			got, err := st.ComponentByID(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, types.SecurityRejected, got.SecurityStatus)
		})
	}
}

func TestOpenSelectsEngine(t *testing.T) {
	memStore, err := Open(types.StoreConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer memStore.Close()
	_, ok := memStore.(*Memory)
	assert.True(t, ok)

	fileStore, err := Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	defer fileStore.Close()
	_, ok = fileStore.(*SQLite)
	assert.True(t, ok)
}
