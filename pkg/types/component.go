// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared record and configuration types for the
// component-manager pipeline. See docs/ARCHITECTURE § Data Model.
package types

import "time"

// ComponentType classifies an analyzed source file.
type ComponentType string

const (
	TypeService   ComponentType = "service"
	TypeComponent ComponentType = "component"
	TypeUtility   ComponentType = "utility"
	TypeWorkflow  ComponentType = "workflow"
	TypeParser    ComponentType = "parser"
	TypeValidator ComponentType = "validator"
)

// Valid reports whether t is one of the defined component types.
func (t ComponentType) Valid() bool {
	switch t {
	case TypeService, TypeComponent, TypeUtility, TypeWorkflow, TypeParser, TypeValidator:
		return true
	}
	return false
}

// SecurityStatus is the review state of a component.
type SecurityStatus string

const (
	SecurityPending     SecurityStatus = "pending"
	SecurityApproved    SecurityStatus = "approved"
	SecurityRejected    SecurityStatus = "rejected"
	SecurityNeedsReview SecurityStatus = "needs_review"
)

// Valid reports whether s is one of the defined security statuses.
func (s SecurityStatus) Valid() bool {
	switch s {
	case SecurityPending, SecurityApproved, SecurityRejected, SecurityNeedsReview:
		return true
	}
	return false
}

// ExportStatus tracks a component through the documentation and export
// pipeline. Transitions only advance: identified → documented → exported
// → integrated.
type ExportStatus string

const (
	ExportIdentified ExportStatus = "identified"
	ExportDocumented ExportStatus = "documented"
	ExportExported   ExportStatus = "exported"
	ExportIntegrated ExportStatus = "integrated"
)

// Rank returns the position of s in the export pipeline, or -1 for an
// unknown value. Used to enforce forward-only transitions.
func (s ExportStatus) Rank() int {
	switch s {
	case ExportIdentified:
		return 0
	case ExportDocumented:
		return 1
	case ExportExported:
		return 2
	case ExportIntegrated:
		return 3
	}
	return -1
}

// Severity grades a security finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Vulnerability is one security finding within a component's source.
type Vulnerability struct {
	// Type names the risk category (e.g. "code_injection", "xss").
	Type string `json:"type" yaml:"type"`

	// Severity grades the finding: low, medium, high, or critical.
	Severity Severity `json:"severity" yaml:"severity"`

	// Description is a human-readable explanation of the risk.
	Description string `json:"description" yaml:"description"`

	// Line is the 1-based source line of the finding. Zero when unknown.
	Line int `json:"line,omitempty" yaml:"line,omitempty"`
}

// APISurface summarizes the exported symbols found by the lexical scan.
// A declaration matching more than one pattern (e.g. an exported class)
// appears in every list it matches.
type APISurface struct {
	Exports    []string `json:"exports" yaml:"exports"`
	Functions  []string `json:"functions" yaml:"functions"`
	Classes    []string `json:"classes" yaml:"classes"`
	Interfaces []string `json:"interfaces" yaml:"interfaces"`
}

// ComponentAnalysis is the value produced by analyzing one source file.
// Scores are clamped to [0,100].
type ComponentAnalysis struct {
	// Name is the base filename without its source extension.
	Name string `json:"name" yaml:"name"`

	// FilePath is the path relative to the project root. It is the
	// unique key for the component record.
	FilePath string `json:"file_path" yaml:"file_path"`

	// ComponentType is the classified type after path-based overrides.
	ComponentType ComponentType `json:"component_type" yaml:"component_type"`

	// Description is the first block comment found in the source,
	// collapsed to one line and truncated to 200 characters, or a
	// synthesized summary when no comment exists.
	Description string `json:"description" yaml:"description"`

	// ReusabilityScore is the 0-100 heuristic reusability measure.
	ReusabilityScore int `json:"reusability_score" yaml:"reusability_score"`

	// Dependencies lists import specifiers in source order. Duplicates
	// are preserved.
	Dependencies []string `json:"dependencies" yaml:"dependencies"`

	// APISurface lists the exported names found by the lexical scan.
	APISurface APISurface `json:"api_surface" yaml:"api_surface"`

	// CypherPattern is the recommended adaptation pattern label for the
	// downstream Cyrano MCP target, derived from the component type.
	CypherPattern string `json:"cypher_pattern" yaml:"cypher_pattern"`

	// CypherCompatibility is the 0-100 heuristic fitness score for
	// adaptation into a Cyrano MCP module.
	CypherCompatibility int `json:"cypher_compatibility" yaml:"cypher_compatibility"`

	// Tags holds free-text labels (the first matching reusability
	// keyword from the file path, when present).
	Tags []string `json:"tags" yaml:"tags"`
}

// ComponentRecord is one persisted static-analysis result. The file path
// is the unique key; the record is updated in place on re-scans and is
// never deleted, even when the source file disappears.
type ComponentRecord struct {
	ID                  string          `json:"id" yaml:"id"`
	Name                string          `json:"name" yaml:"name"`
	FilePath            string          `json:"file_path" yaml:"file_path"`
	ComponentType       ComponentType   `json:"component_type" yaml:"component_type"`
	Description         string          `json:"description" yaml:"description"`
	ReusabilityScore    int             `json:"reusability_score" yaml:"reusability_score"`
	Dependencies        []string        `json:"dependencies" yaml:"dependencies"`
	APISurface          APISurface      `json:"api_surface" yaml:"api_surface"`
	CypherPattern       string          `json:"cypher_pattern" yaml:"cypher_pattern"`
	CypherCompatibility int             `json:"cypher_compatibility" yaml:"cypher_compatibility"`
	Tags                []string        `json:"tags" yaml:"tags"`
	SecurityStatus      SecurityStatus  `json:"security_status" yaml:"security_status"`
	Vulnerabilities     []Vulnerability `json:"vulnerabilities,omitempty" yaml:"vulnerabilities,omitempty"`
	ExportStatus        ExportStatus    `json:"export_status" yaml:"export_status"`

	// FlaggedBy records provenance: "auto_scanner" for scan-discovered
	// components, or an operator identifier for manual entries.
	FlaggedBy string `json:"flagged_by" yaml:"flagged_by"`

	LastScanned time.Time `json:"last_scanned" yaml:"last_scanned"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}
