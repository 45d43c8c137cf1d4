// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docs renders per-component markdown documents and the master
// component index. Rendering is pure string assembly over component
// records plus the source text; no markdown library is involved.
// See docs/ARCHITECTURE § Documentation.
package docs

import (
	"context"
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
	examplePattern       = regexp.MustCompile(`(?is)/\*\s*Example:?\s*(.*?)\*/`)
	exportedFuncPattern  = regexp.MustCompile(`export\s+(?:async\s+)?function\s+(\w+)\s*\([^)]*\)`)
	conflictingDeps      = []string{"react", "react-dom", "next", "express"}
	optionalDeps         = []string{"zod", "typescript", "lodash", "date-fns"}
	candidateCompatScore = 70
)

// dependencyAnalysis buckets a component's dependencies by how they
// interact with the downstream MCP runtime.
type dependencyAnalysis struct {
	required    []string
	optional    []string
	conflicting []string
}

// Generator renders component documentation from the record store and
// the project source tree.
type Generator struct {
	store       store.Store
	projectRoot string
	cfg         types.DocsConfig
	out         io.Writer
}

// New creates a documentation Generator. Progress output goes to out;
// pass io.Discard to silence it.
func New(st store.Store, projectRoot string, cfg types.DocsConfig, out io.Writer) *Generator {
	if out == nil {
		out = io.Discard
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(projectRoot, "docs", "reusable-components")
	}
	return &Generator{store: st, projectRoot: projectRoot, cfg: cfg, out: out}
}

// GenerateComponent renders the document for one component and returns
// the written path. The component's pipeline state is not changed; only
// GenerateAll advances it.
func (g *Generator) GenerateComponent(ctx context.Context, componentID string) (string, error) {
	rec, err := g.store.ComponentByID(ctx, componentID)
	if err != nil {
		return "", fmt.Errorf("loading component %s: %w", componentID, err)
	}

	source, err := os.ReadFile(filepath.Join(g.projectRoot, filepath.FromSlash(rec.FilePath)))
	if err != nil {
		return "", fmt.Errorf("reading source for %s: %w", rec.Name, err)
	}

	doc := renderComponentDoc(rec, string(source))
	outputPath := filepath.Join(g.cfg.OutputDir, rec.Name+".md")
	if err := writeDoc(outputPath, doc); err != nil {
		return "", fmt.Errorf("writing documentation for %s: %w", rec.Name, err)
	}
	return outputPath, nil
}

// GenerateAll documents every component still in the identified state,
// advances each documented component forward, and rewrites the master
// index. Per-component failures are logged and skipped.
func (g *Generator) GenerateAll(ctx context.Context) ([]string, error) {
	components, err := g.store.ListComponentsByExportStatus(ctx, types.ExportIdentified)
	if err != nil {
		return nil, fmt.Errorf("listing components: %w", err)
	}

	var paths []string
	for _, rec := range components {
		path, err := g.GenerateComponent(ctx, rec.ID)
		if err != nil {
			fmt.Fprintf(g.out, "documentation failed for %s: %v\n", rec.Name, err)
			continue
		}
		paths = append(paths, path)
		if err := g.store.AdvanceExportStatus(ctx, rec.ID, types.ExportDocumented); err != nil {
			return nil, fmt.Errorf("advancing %s: %w", rec.Name, err)
		}
		fmt.Fprintf(g.out, "documented %s\n", rec.Name)
	}

	// The index reflects the batch as selected, before the status
	// updates above.
	if err := g.writeMasterIndex(components); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeDoc(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func renderComponentDoc(rec *types.ComponentRecord, source string) string {
	examples := extractExamples(source)
	deps := analyzeDependencies(rec.Dependencies)

	var md []string
	md = append(md,
		"# "+rec.Name,
		"**Type**: "+string(rec.ComponentType),
		"**File**: "+rec.FilePath,
		fmt.Sprintf("**Reusability Score**: %d/100", rec.ReusabilityScore),
		"**Generated**: "+time.Now().UTC().Format(time.RFC3339)+"\n",
		"## Description",
		descriptionOr(rec.Description),
		"",
	)

	md = append(md, renderAPISurface(rec.APISurface)...)

	if len(examples) > 0 {
		md = append(md, "## Usage Examples")
		for i, example := range examples {
			md = append(md,
				fmt.Sprintf("### Example %d", i+1),
				"```typescript",
				example,
				"```\n",
			)
		}
	}

	md = append(md, "## Dependencies", "### Required Dependencies")
	md = append(md, depList(deps.required)...)
	md = append(md, "", "### Optional Dependencies")
	md = append(md, depList(deps.optional)...)
	md = append(md, "")
	if len(deps.conflicting) > 0 {
		md = append(md, "### Conflicting Dependencies (MCP)")
		for _, dep := range deps.conflicting {
			md = append(md, "- ⚠️ "+dep)
		}
		md = append(md, "")
	}

	md = append(md, adaptationGuide(rec))

	if rec.SecurityStatus != types.SecurityPending {
		md = append(md, "## Security Analysis", "**Status**: "+string(rec.SecurityStatus))
		if len(rec.Vulnerabilities) > 0 {
			md = append(md, "### Identified Issues")
			for _, v := range rec.Vulnerabilities {
				md = append(md, fmt.Sprintf("- **%s**: %s", strings.ToUpper(string(v.Severity)), v.Description))
				if v.Line > 0 {
					md = append(md, fmt.Sprintf("  - Line: %d", v.Line))
				}
			}
		} else {
			md = append(md, "No security issues identified.")
		}
		md = append(md, "")
	}

	if len(rec.Tags) > 0 {
		md = append(md, "## Tags")
		for _, tag := range rec.Tags {
			md = append(md, "- "+tag)
		}
		md = append(md, "")
	}

	md = append(md,
		"## Metadata",
		"- **Component ID**: "+rec.ID,
		"- **Last Scanned**: "+rec.LastScanned.Format(time.RFC3339),
		"- **Flagged By**: "+rec.FlaggedBy,
		"- **Export Status**: "+string(rec.ExportStatus),
	)

	return strings.Join(md, "\n")
}

func renderAPISurface(api types.APISurface) []string {
	var md []string
	md = append(md, "## API Surface")
	appendGroup := func(heading string, names []string, call bool) {
		if len(names) == 0 {
			return
		}
		md = append(md, heading)
		for _, name := range names {
			if call {
				md = append(md, "- `"+name+"()`")
			} else {
				md = append(md, "- `"+name+"`")
			}
		}
		md = append(md, "")
	}
	appendGroup("### Exports", api.Exports, false)
	appendGroup("### Functions", api.Functions, true)
	appendGroup("### Classes", api.Classes, false)
	appendGroup("### Interfaces", api.Interfaces, false)
	return md
}

// extractExamples collects explicit "/* Example: ... */" snippets and
// synthesizes a usage stub for every exported function.
func extractExamples(source string) []string {
	var examples []string
	for _, m := range examplePattern.FindAllStringSubmatch(source, -1) {
		examples = append(examples, strings.TrimSpace(m[1]))
	}
	for _, m := range exportedFuncPattern.FindAllStringSubmatch(source, -1) {
		examples = append(examples, fmt.Sprintf(
			"// Usage example for %s\nconst result = await %s(/* parameters */);", m[1], m[1]))
	}
	return examples
}

func analyzeDependencies(dependencies []string) dependencyAnalysis {
	var deps dependencyAnalysis
	for _, dep := range dependencies {
		switch {
		case containsAny(dep, conflictingDeps):
			deps.conflicting = append(deps.conflicting, dep)
		case containsAny(dep, optionalDeps):
			deps.optional = append(deps.optional, dep)
		default:
			deps.required = append(deps.required, dep)
		}
	}
	return deps
}

func containsAny(dep string, names []string) bool {
	for _, name := range names {
		if strings.Contains(dep, name) {
			return true
		}
	}
	return false
}

// adaptationGuide renders the type-specific MCP adaptation section.
func adaptationGuide(rec *types.ComponentRecord) string {
	guide := []string{"## MCP Module Adaptation Guide\n"}

	switch rec.ComponentType {
	case types.TypeService:
		guide = append(guide,
			"### Service Adaptation",
			"This service can be adapted as an MCP server module:",
			"1. Wrap the service class in an MCP server handler",
			"2. Define tool schemas for each public method",
			"3. Handle async operations with proper error handling",
			"4. Add input validation using the existing interfaces\n",
		)
	case types.TypeUtility:
		guide = append(guide,
			"### Utility Function Adaptation",
			"This utility can be integrated as MCP tools:",
			"1. Export each function as a separate MCP tool",
			"2. Add parameter validation schemas",
			"3. Ensure functions are pure or handle side effects properly",
			"4. Add comprehensive error handling\n",
		)
	case types.TypeParser:
		guide = append(guide,
			"### Parser Adaptation",
			"This parser is highly suitable for MCP integration:",
			"1. Create MCP tools for different parsing operations",
			"2. Support streaming for large data processing",
			"3. Add format validation and error reporting",
			"4. Consider memory optimization for large files\n",
		)
	case types.TypeValidator:
		guide = append(guide,
			"### Validator Adaptation",
			"This validator can enhance MCP input validation:",
			"1. Integrate with MCP parameter validation",
			"2. Provide detailed error messages",
			"3. Support schema evolution and versioning",
			"4. Add performance optimizations for bulk validation\n",
		)
	default:
		guide = append(guide,
			"### General Adaptation",
			"This component can be adapted for MCP:",
			"1. Identify the core functionality to expose",
			"2. Define clear input/output schemas",
			"3. Add proper error handling and logging",
			"4. Ensure compatibility with MCP standards\n",
		)
	}

	guide = append(guide,
		"### Technical Considerations",
		fmt.Sprintf("- **Cypher Compatibility Score**: %d/100", rec.CypherCompatibility),
		fmt.Sprintf("- **Reusability Score**: %d/100", rec.ReusabilityScore),
		"- **Security Status**: "+string(rec.SecurityStatus),
		fmt.Sprintf("- **Dependencies**: %d external dependencies", len(rec.Dependencies)),
		"\n### Recommended MCP Pattern",
		"**Pattern**: "+rec.CypherPattern,
	)
	return strings.Join(guide, "\n")
}

// writeMasterIndex renders the grouped component index to README.md in
// the output directory.
func (g *Generator) writeMasterIndex(components []types.ComponentRecord) error {
	var md []string
	md = append(md,
		"# Reusable Components Index",
		"Generated: "+time.Now().UTC().Format(time.RFC3339)+"\n",
		"## Summary",
		fmt.Sprintf("Total Components: %d", len(components)),
		"\n### By Type",
	)

	order, byType := groupByType(components)
	for _, t := range order {
		md = append(md, fmt.Sprintf("- **%s**: %d", t, len(byType[t])))
	}

	candidates := 0
	for _, rec := range components {
		if rec.CypherCompatibility >= candidateCompatScore {
			candidates++
		}
	}
	md = append(md, fmt.Sprintf("\n### Cyrano MCP Candidates: %d", candidates))

	md = append(md, "\n## Components\n")
	for _, t := range order {
		md = append(md, "### "+titleCase(string(t))+" Components\n")
		for _, rec := range byType[t] {
			md = append(md,
				fmt.Sprintf("#### [%s](./%s.md)", rec.Name, rec.Name),
				"**Path**: "+rec.FilePath,
				fmt.Sprintf("**Reusability**: %d/100", rec.ReusabilityScore),
				fmt.Sprintf("**Cypher Compatibility**: %d/100", rec.CypherCompatibility),
				"**Status**: "+string(rec.ExportStatus),
			)
			if rec.Description != "" {
				md = append(md, "**Description**: "+truncate(rec.Description, 100)+"...")
			}
			md = append(md, "")
		}
	}

	indexPath := filepath.Join(g.cfg.OutputDir, "README.md")
	if err := writeDoc(indexPath, strings.Join(md, "\n")); err != nil {
		return fmt.Errorf("writing master index: %w", err)
	}
	return nil
}

// groupByType buckets components by type, preserving first-seen order.
func groupByType(components []types.ComponentRecord) ([]types.ComponentType, map[types.ComponentType][]types.ComponentRecord) {
	var order []types.ComponentType
	byType := make(map[types.ComponentType][]types.ComponentRecord)
	for _, rec := range components {
		if _, seen := byType[rec.ComponentType]; !seen {
			order = append(order, rec.ComponentType)
		}
		byType[rec.ComponentType] = append(byType[rec.ComponentType], rec)
	}
	return order, byType
}

func descriptionOr(description string) string {
	if description == "" {
		return "No description available"
	}
	return description
}

func depList(deps []string) []string {
	if len(deps) == 0 {
		return []string{"- None"}
	}
	var md []string
	for _, dep := range deps {
		md = append(md, "- "+dep)
	}
	return md
}

func truncate(s string, n int) string {
	if runes := []rune(s); len(runes) > n {
		return string(runes[:n])
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
