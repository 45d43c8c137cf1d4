// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/component-manager/internal/store"
	"github.com/meshintel/component-manager/pkg/types"
)

const widgetServiceSource = `import React from 'react';
import { helper } from './widget-helpers';

export class WidgetService {
  list(): string[] { return []; }
}

export function formatWidget(id: string): string {
  return 'widget-' + id;
}
`

func seedService(t *testing.T, st store.Store, root string) *types.ComponentRecord {
	t.Helper()
	rel := "server/services/widget-service.ts"
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(widgetServiceSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "server", "services", "widget-helpers"), []byte("export const helper = 1;\n"), 0o644))

	rec := &types.ComponentRecord{
		Name:                "widget-service",
		FilePath:            rel,
		ComponentType:       types.TypeService,
		Description:         "Widget lifecycle service",
		ReusabilityScore:    85,
		Dependencies:        []string{"react", "./server/services/widget-helpers"},
		APISurface:          types.APISurface{Functions: []string{"formatWidget"}, Classes: []string{"WidgetService"}},
		CypherPattern:       "mcp-server-module",
		CypherCompatibility: 75,
		SecurityStatus:      types.SecurityApproved,
		ExportStatus:        types.ExportDocumented,
		FlaggedBy:           "auto_scanner",
		LastScanned:         time.Now().UTC(),
	}
	require.NoError(t, st.InsertComponent(context.Background(), rec))
	return rec
}

func TestExportMCPModule(t *testing.T) {
	root := t.TempDir()
	st := store.NewMemory()
	rec := seedService(t, st, root)
	ctx := context.Background()

	e := New(st, root, types.ExportConfig{}, io.Discard)
	result, err := e.Export(ctx, rec.ID, DefaultOptions())
	require.NoError(t, err)

	main, err := os.ReadFile(filepath.Join(result.OutputPath, "widget-service.ts"))
	require.NoError(t, err)
	code := string(main)

	// React import stripped, SDK imports prepended, factory appended.
	assert.NotContains(t, code, "from 'react'")
	assert.Contains(t, code, "import { Server } from '@modelcontextprotocol/sdk/server/index.js';")
	assert.Contains(t, code, "export function createMCPService(): WidgetService {")
	assert.Contains(t, code, "export const mcpServiceInstance = createMCPService();")

	var adaptationTypes []string
	for _, a := range result.Adaptations {
		adaptationTypes = append(adaptationTypes, a.Type)
	}
	assert.Equal(t, []string{
		"remove_react_imports",
		"add_mcp_imports",
		"add_mcp_wrapper",
		"mcp_server_wrapper",
	}, adaptationTypes)

	manifest, err := os.ReadFile(filepath.Join(result.OutputPath, "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"name": "@cyrano-mcp/widget-service"`)
	assert.Contains(t, string(manifest), `"originalPath": "server/services/widget-service.ts"`)

	server, err := os.ReadFile(filepath.Join(result.OutputPath, "server.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(server), "class widget-serviceMCPServer")
	assert.Contains(t, string(server), "name: 'formatWidget'")

	readme, err := os.ReadFile(filepath.Join(result.OutputPath, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "## MCP Module Usage")
	assert.Contains(t, string(readme), "### add_mcp_wrapper")

	// Relative dependency copied alongside; bare package names are not.
	_, err = os.Stat(filepath.Join(result.OutputPath, "dependencies", "widget-helpers"))
	assert.NoError(t, err)

	// 4 files: main, package.json, server.ts, README.md.
	assert.Equal(t, 4, result.Metadata.FileCount)
	assert.Positive(t, result.Metadata.TotalSize)

	got, err := st.ComponentByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ExportExported, got.ExportStatus)

	records, err := st.ListExportRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, types.ExportCompleted, records[0].Status)
	assert.Equal(t, types.FormatMCPModule, records[0].ExportFormat)
}

func TestExportStandaloneAndLibrary(t *testing.T) {
	tests := []struct {
		format     types.ExportFormat
		wantBanner string
		wantType   string
	}{
		{types.FormatStandalone, "// Standalone Module", "standalone_wrapper"},
		{types.FormatLibrary, "// Library Module", "library_wrapper"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			root := t.TempDir()
			st := store.NewMemory()
			rec := seedService(t, st, root)

			opts := DefaultOptions()
			opts.Format = tt.format
			opts.IncludeDocs = false

			e := New(st, root, types.ExportConfig{}, io.Discard)
			result, err := e.Export(context.Background(), rec.ID, opts)
			require.NoError(t, err)

			main, err := os.ReadFile(filepath.Join(result.OutputPath, "widget-service.ts"))
			require.NoError(t, err)
			code := string(main)
			assert.Contains(t, code, tt.wantBanner)

			// No MCP artifacts for non-MCP formats: the source keeps
			// its imports and gains no factory.
			assert.Contains(t, code, "from 'react'")
			assert.NotContains(t, code, "createMCPService")
			_, err = os.Stat(filepath.Join(result.OutputPath, "package.json"))
			assert.True(t, os.IsNotExist(err))
			_, err = os.Stat(filepath.Join(result.OutputPath, "server.ts"))
			assert.True(t, os.IsNotExist(err))

			require.Len(t, result.Adaptations, 1)
			assert.Equal(t, tt.wantType, result.Adaptations[0].Type)
			assert.Equal(t, 1, result.Metadata.FileCount)
		})
	}
}

func TestExportServiceWithoutClassSkipsWrapper(t *testing.T) {
	root := t.TempDir()
	st := store.NewMemory()
	rel := "server/services/plain-service.ts"
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("export function run() { return 1; }\n"), 0o644))

	rec := &types.ComponentRecord{
		Name:          "plain-service",
		FilePath:      rel,
		ComponentType: types.TypeService,
		ExportStatus:  types.ExportIdentified,
	}
	require.NoError(t, st.InsertComponent(context.Background(), rec))

	opts := DefaultOptions()
	opts.IncludeDocs = false
	e := New(st, root, types.ExportConfig{}, io.Discard)
	result, err := e.Export(context.Background(), rec.ID, opts)
	require.NoError(t, err)

	// No class declaration means no factory, and that is not an error.
	var adaptationTypes []string
	for _, a := range result.Adaptations {
		adaptationTypes = append(adaptationTypes, a.Type)
	}
	assert.NotContains(t, adaptationTypes, "add_mcp_wrapper")
	assert.Contains(t, adaptationTypes, "add_mcp_imports")
}

func TestExportMissingSourceFails(t *testing.T) {
	st := store.NewMemory()
	rec := &types.ComponentRecord{
		Name:         "ghost",
		FilePath:     "shared/ghost.ts",
		ExportStatus: types.ExportIdentified,
	}
	ctx := context.Background()
	require.NoError(t, st.InsertComponent(ctx, rec))

	e := New(st, t.TempDir(), types.ExportConfig{}, io.Discard)
	_, err := e.Export(ctx, rec.ID, DefaultOptions())
	require.Error(t, err)

	// The export record is finalized as failed and the component never
	// advances.
	records, err := st.ListExportRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, types.ExportFailed, records[0].Status)

	got, err := st.ComponentByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ExportIdentified, got.ExportStatus)
}

func TestExportBatchSkipsFailures(t *testing.T) {
	root := t.TempDir()
	st := store.NewMemory()
	rec := seedService(t, st, root)
	ctx := context.Background()

	e := New(st, root, types.ExportConfig{}, io.Discard)
	results := e.ExportBatch(ctx, []string{rec.ID, "no-such-id"}, DefaultOptions())

	require.Len(t, results, 1)
	assert.Equal(t, rec.ID, results[0].Component.ID)

	got, err := st.ComponentByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ExportExported, got.ExportStatus)
}

func TestExportUnknownFormat(t *testing.T) {
	root := t.TempDir()
	st := store.NewMemory()
	rec := seedService(t, st, root)

	opts := DefaultOptions()
	opts.Format = types.ExportFormat("tarball")
	e := New(st, root, types.ExportConfig{}, io.Discard)
	_, err := e.Export(context.Background(), rec.ID, opts)
	assert.ErrorContains(t, err, "unknown format")

	// Rejected before any export record is created.
	records, err := st.ListExportRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}
