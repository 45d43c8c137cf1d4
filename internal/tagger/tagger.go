// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tagger suggests reusability marker tags for source files and
// can insert them as comment blocks. It works on file text alone and
// never touches the record store, so it can run before any scan.
// See docs/ARCHITECTURE § Tagging.
package tagger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// minConfidence is the floor below which a suggestion is dropped.
const minConfidence = 70

// reusabilityMarker flags a file as already tagged; such files are
// skipped entirely.
const reusabilityMarker = "@CYRANO_REUSABLE"

// tagDescription pairs a marker tag with its meaning. Order here is
// the order used in reports.
type tagDescription struct {
	Tag         string
	Description string
}

var tagDescriptions = []tagDescription{
	{"@CYRANO_REUSABLE_SERVICE", "Marks a service class or module as potentially reusable for MCP integration"},
	{"@CYRANO_REUSABLE_UTILITY", "Marks utility functions or helpers as reusable components"},
	{"@CYRANO_REUSABLE_PARSER", "Marks data parsing or transformation logic as reusable"},
	{"@CYRANO_REUSABLE_VALIDATOR", "Marks validation logic as reusable component"},
	{"@CYRANO_REUSABLE_WORKFLOW", "Marks workflow or process logic as reusable"},
	{"@CYRANO_REUSABLE_COMPONENT", "Marks React/UI components that could be adapted"},
	{"@CYRANO_HIGH_REUSABILITY", "High reusability score component (80+)"},
	{"@CYRANO_MCP_CANDIDATE", "Strong candidate for MCP module conversion (70+ compatibility)"},
	{"@CYRANO_SECURITY_REVIEWED", "Component has passed security review"},
	{"@CYRANO_EXPORTED", "Component has been exported for Cyrano use"},
	{"@CYRANO_STANDALONE", "Component with minimal dependencies"},
	{"@CYRANO_COMPLEX_DEPS", "Component with complex dependency requirements"},
	{"@CYRANO_DOCUMENTED", "Component has comprehensive documentation"},
	{"@CYRANO_NEEDS_DOCS", "Component needs documentation before export"},
}

func describeTag(tag string) (string, bool) {
	for _, td := range tagDescriptions {
		if td.Tag == tag {
			return td.Description, true
		}
	}
	return "", false
}

var (
	serviceClassPattern = regexp.MustCompile(`class \w+Service`)
	functionPattern     = regexp.MustCompile(`function|const.*=.*=>`)
	classPattern        = regexp.MustCompile(`class \w+`)
	interfacePattern    = regexp.MustCompile(`interface \w+`)
	asyncPattern        = regexp.MustCompile(`async.*function|async.*=>`)
	importPattern       = regexp.MustCompile(`import.*from`)
)

// Suggestion is one proposed tag with its rationale.
type Suggestion struct {
	Tag        string `yaml:"tag"`
	Reason     string `yaml:"reason"`
	Confidence int    `yaml:"confidence"`
}

// FileTagging groups the suggested tags for one file.
type FileTagging struct {
	FilePath    string       `yaml:"file_path"`
	Suggestions []Suggestion `yaml:"suggestions"`
}

// Tagger analyzes and tags source files under a project root.
type Tagger struct {
	projectRoot string
	out         io.Writer
}

// New creates a Tagger. Progress output goes to out; pass io.Discard to
// silence it.
func New(projectRoot string, out io.Writer) *Tagger {
	if out == nil {
		out = io.Discard
	}
	return &Tagger{projectRoot: projectRoot, out: out}
}

// AnalyzeFiles produces tag suggestions for the given project-relative
// files. Unreadable files are logged and skipped; files already
// carrying the reusability marker yield no suggestions.
func (t *Tagger) AnalyzeFiles(files []string) []FileTagging {
	var results []FileTagging
	for _, rel := range files {
		content, err := os.ReadFile(filepath.Join(t.projectRoot, filepath.FromSlash(rel)))
		if err != nil {
			fmt.Fprintf(t.out, "could not analyze %s: %v\n", rel, err)
			continue
		}
		suggestions := SuggestTags(rel, string(content))
		if len(suggestions) > 0 {
			results = append(results, FileTagging{FilePath: rel, Suggestions: suggestions})
		}
	}
	return results
}

// SuggestTags evaluates the tag heuristics against one file's content.
// Only suggestions at or above the confidence floor are returned.
func SuggestTags(filePath, content string) []Suggestion {
	if strings.Contains(content, reusabilityMarker) {
		return nil
	}

	var suggestions []Suggestion
	add := func(tag, reason string, confidence int) {
		suggestions = append(suggestions, Suggestion{Tag: tag, Reason: reason, Confidence: confidence})
	}

	fileName := strings.ToLower(filePath)

	if strings.Contains(fileName, "service") || serviceClassPattern.MatchString(content) {
		add("@CYRANO_REUSABLE_SERVICE", "Contains service class or is in services directory", 90)
	}
	if strings.Contains(fileName, "util") || strings.Contains(fileName, "lib") || strings.Contains(fileName, "helper") {
		add("@CYRANO_REUSABLE_UTILITY", "File appears to contain utility functions", 85)
	}
	if strings.Contains(fileName, "parser") || strings.Contains(fileName, "transform") ||
		strings.Contains(content, "parse") || strings.Contains(content, "transform") {
		add("@CYRANO_REUSABLE_PARSER", "Contains parsing or transformation logic", 80)
	}
	if strings.Contains(fileName, "valid") || strings.Contains(content, "validate") ||
		strings.Contains(content, "schema") || strings.Contains(content, "zod") {
		add("@CYRANO_REUSABLE_VALIDATOR", "Contains validation logic", 85)
	}
	if strings.Contains(fileName, "component") ||
		(strings.Contains(content, "export function") && strings.Contains(content, "tsx")) {
		add("@CYRANO_REUSABLE_COMPONENT", "React component that could be adapted", 70)
	}
	if strings.Contains(fileName, "workflow") || strings.Contains(fileName, "pipeline") ||
		strings.Contains(content, "workflow") || strings.Contains(content, "process") {
		add("@CYRANO_REUSABLE_WORKFLOW", "Contains workflow or process logic", 75)
	}

	exportCount := strings.Count(content, "export")
	functionCount := len(functionPattern.FindAllString(content, -1))
	classCount := len(classPattern.FindAllString(content, -1))
	interfaceCount := len(interfacePattern.FindAllString(content, -1))

	if exportCount >= 3 || functionCount >= 5 || (classCount >= 1 && interfaceCount >= 2) {
		confidence := 80
		if exportCount >= 5 {
			confidence = 95
		}
		add("@CYRANO_HIGH_REUSABILITY",
			fmt.Sprintf("Rich API surface: %d exports, %d functions, %d classes", exportCount, functionCount, classCount),
			confidence)
	}

	asyncCount := len(asyncPattern.FindAllString(content, -1))
	mcpScore := 0
	if asyncCount >= 2 {
		mcpScore += 25
	}
	if interfaceCount > 0 {
		mcpScore += 20
	}
	if strings.Contains(content, "JSON") || strings.Contains(content, "json") {
		mcpScore += 15
	}
	if strings.Contains(content, "fetch") || strings.Contains(content, "http") {
		mcpScore += 20
	}
	if exportCount >= 3 {
		mcpScore += 20
	}
	if mcpScore >= 70 {
		add("@CYRANO_MCP_CANDIDATE",
			"High MCP compatibility score: async functions, interfaces, JSON handling", mcpScore)
	}

	importCount := len(importPattern.FindAllString(content, -1))
	if importCount <= 3 {
		confidence := 90 - importCount*10
		if importCount == 0 {
			confidence = 100
		}
		add("@CYRANO_STANDALONE", fmt.Sprintf("Minimal dependencies (%d imports)", importCount), confidence)
	} else if importCount > 10 {
		add("@CYRANO_COMPLEX_DEPS", fmt.Sprintf("Complex dependency tree (%d imports)", importCount), 85)
	}

	hasComments := strings.Contains(content, "/**") || strings.Contains(content, "//")
	hasTypes := strings.Contains(content, ": ") &&
		(strings.Contains(content, "string") || strings.Contains(content, "number"))
	if hasComments && hasTypes {
		add("@CYRANO_DOCUMENTED", "Has JSDoc comments and type annotations", 80)
	} else if !hasComments {
		add("@CYRANO_NEEDS_DOCS", "Lacks comprehensive documentation", 70)
	}

	kept := suggestions[:0]
	for _, s := range suggestions {
		if s.Confidence >= minConfidence {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// Apply inserts the suggested tag blocks into their files. With dryRun
// the planned changes are printed instead of written. Per-file failures
// are logged and skipped.
func (t *Tagger) Apply(taggings []FileTagging, dryRun bool) error {
	mode := "applying"
	if dryRun {
		mode = "dry run"
	}
	fmt.Fprintf(t.out, "%s: tagging %d files\n", mode, len(taggings))

	for _, ft := range taggings {
		full := filepath.Join(t.projectRoot, filepath.FromSlash(ft.FilePath))
		content, err := os.ReadFile(full)
		if err != nil {
			fmt.Fprintf(t.out, "failed to tag %s: %v\n", ft.FilePath, err)
			continue
		}

		if dryRun {
			fmt.Fprintf(t.out, "%s\n", ft.FilePath)
			for _, s := range ft.Suggestions {
				fmt.Fprintf(t.out, "  %s (%d%%) - %s\n", s.Tag, s.Confidence, s.Reason)
			}
			continue
		}

		tagged := insertTagBlock(string(content), ft.Suggestions)
		if err := os.WriteFile(full, []byte(tagged), 0o644); err != nil {
			fmt.Fprintf(t.out, "failed to tag %s: %v\n", ft.FilePath, err)
			continue
		}
		fmt.Fprintf(t.out, "tagged %s with %d tags\n", ft.FilePath, len(ft.Suggestions))
	}
	return nil
}

// insertTagBlock splices the tag comment block in after the leading
// prologue of imports, comments, and blank lines.
func insertTagBlock(content string, suggestions []Suggestion) string {
	block := []string{"// " + reusabilityMarker + ": Component reusability tags"}
	for _, s := range suggestions {
		desc, ok := describeTag(s.Tag)
		if !ok {
			desc = s.Reason
		}
		block = append(block, "// "+s.Tag+": "+desc)
	}
	block = append(block, "")

	lines := strings.Split(content, "\n")
	insertAt := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import") || strings.HasPrefix(trimmed, "//") ||
			strings.HasPrefix(trimmed, "/*") || trimmed == "" {
			insertAt = i + 1
			continue
		}
		break
	}

	var out []string
	out = append(out, lines[:insertAt]...)
	out = append(out, block...)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n")
}

// Report renders the tagging report: distribution, per-file
// suggestions, and the tag glossary.
func Report(taggings []FileTagging) string {
	var md []string
	md = append(md,
		"# Component Tagging Report",
		"Generated: "+time.Now().UTC().Format(time.RFC3339)+"\n",
		"## Tag Distribution",
	)

	counts := make(map[string]int)
	for _, ft := range taggings {
		for _, s := range ft.Suggestions {
			counts[s.Tag]++
		}
	}
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	for _, tag := range tags {
		md = append(md, fmt.Sprintf("- **%s**: %d files", tag, counts[tag]))
	}
	md = append(md, "", "## Files to Tag")

	for _, ft := range taggings {
		md = append(md, "### "+ft.FilePath)
		for _, s := range ft.Suggestions {
			md = append(md, fmt.Sprintf("- %s (%d%%): %s", s.Tag, s.Confidence, s.Reason))
		}
		md = append(md, "")
	}

	md = append(md, "## Tag Descriptions")
	for _, td := range tagDescriptions {
		md = append(md, fmt.Sprintf("- **%s**: %s", td.Tag, td.Description))
	}
	return strings.Join(md, "\n")
}

// WriteSuggestions dumps the taggings as YAML, for feeding a reviewed
// subset back into Apply.
func WriteSuggestions(path string, taggings []FileTagging) error {
	data, err := yaml.Marshal(taggings)
	if err != nil {
		return fmt.Errorf("encoding tag suggestions: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing tag suggestions: %w", err)
	}
	return nil
}

// ReadSuggestions loads a YAML suggestions file written by
// WriteSuggestions.
func ReadSuggestions(path string) ([]FileTagging, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tag suggestions: %w", err)
	}
	var taggings []FileTagging
	if err := yaml.Unmarshal(data, &taggings); err != nil {
		return nil, fmt.Errorf("parsing tag suggestions %s: %w", path, err)
	}
	return taggings, nil
}
