// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ScanType identifies the kind of scan that produced a report.
type ScanType string

const (
	ScanFull        ScanType = "full_scan"
	ScanIncremental ScanType = "incremental"
	ScanSecurity    ScanType = "security_scan"
)

// ReportStatus is the lifecycle state of a scan report. A report is
// created "running" and transitions exactly once to "completed" or
// "failed", after which it is immutable.
type ReportStatus string

const (
	ReportRunning   ReportStatus = "running"
	ReportCompleted ReportStatus = "completed"
	ReportFailed    ReportStatus = "failed"
)

// ScanReport records one invocation of the scan operation.
type ScanReport struct {
	ID       string       `json:"id" yaml:"id"`
	ScanType ScanType     `json:"scan_type" yaml:"scan_type"`
	Status   ReportStatus `json:"status" yaml:"status"`

	// ComponentsFound counts newly inserted component records.
	ComponentsFound int `json:"components_found" yaml:"components_found"`

	// ComponentsUpdated counts existing records refreshed in place.
	ComponentsUpdated int `json:"components_updated" yaml:"components_updated"`

	// CypherCandidates counts components analyzed in this scan with a
	// compatibility score of 70 or higher.
	CypherCandidates int `json:"cypher_candidates" yaml:"cypher_candidates"`

	// SecurityIssues counts findings recorded by security scans.
	SecurityIssues int `json:"security_issues" yaml:"security_issues"`

	// ScanDuration is the elapsed wall-clock time in milliseconds.
	ScanDuration int64 `json:"scan_duration_ms" yaml:"scan_duration_ms"`

	// Results is a free-form JSON summary blob set on completion.
	Results string `json:"results,omitempty" yaml:"results,omitempty"`

	// Errors holds failure messages. Populated only on failure.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}
