// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ExportFormat selects the output shape of an exported component.
type ExportFormat string

const (
	FormatMCPModule  ExportFormat = "mcp_module"
	FormatStandalone ExportFormat = "standalone"
	FormatLibrary    ExportFormat = "library"
)

// Valid reports whether f is one of the defined export formats.
func (f ExportFormat) Valid() bool {
	switch f {
	case FormatMCPModule, FormatStandalone, FormatLibrary:
		return true
	}
	return false
}

// ExportRecordStatus is the lifecycle state of an export record. A
// record is created "pending" before any file I/O and advances exactly
// once to "completed" or "failed".
type ExportRecordStatus string

const (
	ExportPending   ExportRecordStatus = "pending"
	ExportCompleted ExportRecordStatus = "completed"
	ExportFailed    ExportRecordStatus = "failed"
)

// Adaptation records one text transformation applied during an export.
type Adaptation struct {
	// Type names the transformation (e.g. "add_mcp_imports").
	Type string `json:"type" yaml:"type"`

	// Description explains the transformation in human terms.
	Description string `json:"description" yaml:"description"`

	// File is the output filename the transformation affected.
	File string `json:"file" yaml:"file"`
}

// ExportMetadata summarizes the written result set of an export.
type ExportMetadata struct {
	FileCount  int       `json:"file_count" yaml:"file_count"`
	TotalSize  int64     `json:"total_size" yaml:"total_size"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
}

// ExportRecord records one export operation on a component.
type ExportRecord struct {
	ID           string             `json:"id" yaml:"id"`
	ComponentID  string             `json:"component_id" yaml:"component_id"`
	ExportPath   string             `json:"export_path" yaml:"export_path"`
	ExportFormat ExportFormat       `json:"export_format" yaml:"export_format"`
	Status       ExportRecordStatus `json:"status" yaml:"status"`

	// Adaptations lists the transformations applied. Empty for failed
	// exports.
	Adaptations []Adaptation `json:"adaptations,omitempty" yaml:"adaptations,omitempty"`

	Metadata  ExportMetadata `json:"metadata" yaml:"metadata"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}
