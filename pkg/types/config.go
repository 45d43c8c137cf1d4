package types

// ScanTarget pairs a directory (relative to the project root) with the
// default component type assigned to files found under it.
type ScanTarget struct {
	// Path is the directory to walk, relative to the project root.
	Path string `json:"path" yaml:"path"`

	// Type is the default component type for files under Path. Path
	// substring checks may override it per file.
	Type ComponentType `json:"type" yaml:"type"`
}

// ScannerConfig holds settings for the scan stage.
type ScannerConfig struct {
	// ProjectRoot is the repository root all scans are relative to.
	ProjectRoot string `json:"project_root" yaml:"project_root"`

	// Targets lists the directories to scan, processed in order.
	Targets []ScanTarget `json:"targets" yaml:"targets"`

	// MinFileSize is the minimum content length (bytes) for a file to
	// be analyzed (default 200). Shorter files are skipped.
	MinFileSize int `json:"min_file_size" yaml:"min_file_size"`

	// MinReusabilityScore is the minimum score for a component to be
	// persisted (default 30). Lower-scoring files are never recorded.
	MinReusabilityScore int `json:"min_reusability_score" yaml:"min_reusability_score"`
}

// DocsConfig holds settings for the documentation stage.
type DocsConfig struct {
	// OutputDir is where per-component documents and the master index
	// are written (default "docs/reusable-components").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	// OutputDir is the export root; each component is written under
	// OutputDir/<name> (default "exports/cyrano-components").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// StoreConfig holds settings for the record store.
type StoreConfig struct {
	// Path is the SQLite database file (default "components.db").
	// The value ":memory:" selects the in-memory store.
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Scanner ScannerConfig `json:"scanner" yaml:"scanner"`
	Docs    DocsConfig    `json:"docs" yaml:"docs"`
	Export  ExportConfig  `json:"export" yaml:"export"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}

// DefaultScanTargets returns the standard target list: service code,
// UI components, client libraries, shared modules, and server workflow
// code, in that order.
func DefaultScanTargets() []ScanTarget {
	return []ScanTarget{
		{Path: "server/services", Type: TypeService},
		{Path: "client/src/components", Type: TypeComponent},
		{Path: "client/src/lib", Type: TypeUtility},
		{Path: "shared", Type: TypeUtility},
		{Path: "server", Type: TypeWorkflow},
	}
}

// DefaultScannerConfig returns a ScannerConfig with standard targets
// and thresholds rooted at projectRoot.
func DefaultScannerConfig(projectRoot string) ScannerConfig {
	return ScannerConfig{
		ProjectRoot:         projectRoot,
		Targets:             DefaultScanTargets(),
		MinFileSize:         200,
		MinReusabilityScore: 30,
	}
}
