// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scanner walks source trees, analyzes files for reusability,
// and maintains the component record store. The analysis is a
// best-effort lexical scan over raw text, not a parser: unusual
// formatting can produce false positives or negatives, and that is
// accepted behavior. See docs/ARCHITECTURE § Scanner.
package scanner

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/meshintel/component-manager/pkg/types"
)

// Lexical patterns for dependency and API-surface extraction. These
// mirror common TypeScript/JavaScript declaration shapes; a declaration
// matching several patterns lands in several lists.
var (
	importPattern    = regexp.MustCompile(`import.*from\s+['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`)
	exportPattern    = regexp.MustCompile(`export\s+(?:const|let|var|function|class|interface|type|default)\s+([a-zA-Z_$][a-zA-Z0-9_$]*)`)
	functionPattern  = regexp.MustCompile(`(?:export\s+)?(?:async\s+)?function\s+([a-zA-Z_$][a-zA-Z0-9_$]*)`)
	classPattern     = regexp.MustCompile(`(?:export\s+)?class\s+([a-zA-Z_$][a-zA-Z0-9_$]*)`)
	interfacePattern = regexp.MustCompile(`(?:export\s+)?interface\s+([a-zA-Z_$][a-zA-Z0-9_$]*)`)

	blockCommentPattern = regexp.MustCompile(`(?s)/\*\*?\s*(.*?)\s*\*/`)
	sourceExtPattern    = regexp.MustCompile(`\.(ts|tsx|js|jsx)$`)
)

// compatibilityPatterns are checked independently; each hit adds 15 to
// the compatibility score, so overlapping matches compound.
var compatibilityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`async.*function.*\(`), // async function syntax
	regexp.MustCompile(`interface.*\{`),       // well-defined interfaces
	regexp.MustCompile(`export.*class`),       // exportable classes
	regexp.MustCompile(`\.json\(`),            // JSON handling
	regexp.MustCompile(`fetch\(`),             // HTTP requests
	regexp.MustCompile(`Promise<`),            // Promise handling
}

// reusabilityKeywords are checked against the lowercased file path;
// only the first match scores and tags.
var reusabilityKeywords = []string{
	"util", "helper", "service", "parser", "validator", "transformer",
	"processor", "handler", "manager", "factory", "builder",
}

const (
	maxScore       = 100
	descriptionMax = 200
)

// Analyze computes the reusability analysis for one file's content.
// filePath is the path relative to the project root and doubles as the
// record key. The caller is responsible for file reads and for the
// minimum-size gate; Analyze never fails on well-formed text.
func Analyze(filePath, content string, defaultType types.ComponentType) types.ComponentAnalysis {
	var (
		reusability   int
		compatibility int
		tags          []string
	)

	dependencies := captureAll(importPattern, content)

	api := types.APISurface{
		Exports:    captureAll(exportPattern, content),
		Functions:  captureAll(functionPattern, content),
		Classes:    captureAll(classPattern, content),
		Interfaces: captureAll(interfacePattern, content),
	}

	if len(api.Exports) > 0 {
		reusability += 20
	}
	if len(api.Functions) > 0 {
		reusability += 15
	}
	if len(api.Classes) > 0 {
		reusability += 15
	}
	if len(api.Interfaces) > 0 {
		reusability += 10
	}

	if len(dependencies) < 5 {
		reusability += 10
	} else if len(dependencies) > 10 {
		reusability -= 10
	}

	lowerPath := strings.ToLower(filePath)
	for _, keyword := range reusabilityKeywords {
		if strings.Contains(lowerPath, keyword) {
			reusability += 15
			tags = append(tags, keyword)
			break
		}
	}

	for _, p := range compatibilityPatterns {
		if p.MatchString(content) {
			compatibility += 15
		}
	}

	componentType := classifyType(filePath, defaultType)
	pattern, bonus := cypherPattern(componentType)
	compatibility += bonus

	description := extractDescription(content)
	if description == "" {
		description = string(componentType) + " module containing " +
			strconv.Itoa(len(api.Exports)) + " exports"
	}

	return types.ComponentAnalysis{
		Name:                componentName(filePath),
		FilePath:            filePath,
		ComponentType:       componentType,
		Description:         description,
		ReusabilityScore:    clampScore(reusability),
		Dependencies:        dependencies,
		APISurface:          api,
		CypherPattern:       pattern,
		CypherCompatibility: clampScore(compatibility),
		Tags:                tags,
	}
}

// classifyType overrides the default type by path substrings, in fixed
// priority order. The first match wins.
func classifyType(filePath string, defaultType types.ComponentType) types.ComponentType {
	switch {
	case strings.Contains(filePath, "service"):
		return types.TypeService
	case strings.Contains(filePath, "util"), strings.Contains(filePath, "lib"):
		return types.TypeUtility
	case strings.Contains(filePath, "component"):
		return types.TypeComponent
	case strings.Contains(filePath, "parser"):
		return types.TypeParser
	case strings.Contains(filePath, "validat"):
		return types.TypeValidator
	case strings.Contains(filePath, "workflow"):
		return types.TypeWorkflow
	}
	return defaultType
}

// cypherPattern maps a component type to its recommended adaptation
// pattern. Parser and validator types carry a compatibility bonus on
// top of the independent pattern checks.
func cypherPattern(t types.ComponentType) (pattern string, bonus int) {
	switch t {
	case types.TypeService:
		return "mcp-server-module", 0
	case types.TypeUtility:
		return "mcp-utility-function", 0
	case types.TypeParser:
		return "mcp-data-processor", 20
	case types.TypeValidator:
		return "mcp-input-validator", 15
	}
	return "mcp-generic-module", 0
}

// extractDescription returns the first block comment collapsed to one
// line and truncated to 200 characters, or "" when none exists.
func extractDescription(content string) string {
	m := blockCommentPattern.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	text := strings.ReplaceAll(m[1], "*", "")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > descriptionMax {
		text = string(runes[:descriptionMax])
	}
	return text
}

// componentName derives a component name from the base filename with
// its source extension stripped.
func componentName(filePath string) string {
	base := filepath.Base(filepath.ToSlash(filePath))
	name := sourceExtPattern.ReplaceAllString(base, "")
	if name == "" {
		return "unknown"
	}
	return name
}

// IsSourceFile reports whether a filename carries a scannable source
// extension.
func IsSourceFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ts", ".tsx", ".js", ".jsx":
		return true
	}
	return false
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > maxScore {
		return maxScore
	}
	return n
}

func captureAll(re *regexp.Regexp, content string) []string {
	matches := re.FindAllStringSubmatch(content, -1)
	var captured []string
	for _, m := range matches {
		captured = append(captured, m[1])
	}
	return captured
}
