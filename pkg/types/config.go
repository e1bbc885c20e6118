package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that touch the network.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "canvass-etl/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CanvassConfig holds settings for the election-canvass pipeline.
type CanvassConfig struct {
	// InputPath is the canvass PDF to process.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputDir is the directory the Arrow frame files are written to.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// CorrectionsPath optionally points at a YAML correction table that
	// replaces the built-in one.
	CorrectionsPath string `json:"corrections_path,omitempty" yaml:"corrections_path,omitempty"`

	// DBPath optionally names a SQLite archive to persist results into.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ApplicationsConfig holds settings for the grant-applications pipeline.
type ApplicationsConfig struct {
	// InputPath is the applications PDF to process.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputPath is the JSON document to write.
	OutputPath string `json:"output_path" yaml:"output_path"`
}

// FetchConfig holds settings for downloading source PDFs.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxRetries is the number of retry attempts on throttled or
	// temporarily unavailable responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for the SQLite results archive.
type StoreConfig struct {
	// DBPath is the SQLite database file.
	DBPath string `json:"db_path" yaml:"db_path"`

	// MaxResults is the default maximum number of query rows (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
