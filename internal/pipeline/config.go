package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the static run configuration, loaded once from YAML. There is
// deliberately no rich CLI surface; each cmd takes a -config path and the
// rest lives here.
type Config struct {
	// Workbook is the input workbook path (a csvdir workbook: one CSV per
	// sheet).
	Workbook string `yaml:"workbook"`
	// Sheets lists the sheet names to process, in merge order.
	Sheets []string `yaml:"sheets"`
	// IdentifierColumns is the allow-list of columns that together identify
	// a patient. The first entry becomes the PatientID output column.
	IdentifierColumns []string `yaml:"identifier_columns"`
	// OutputDir receives all stage boundary CSVs.
	OutputDir string `yaml:"output_dir"`
	// SourceLabel tags every final value row. When empty it is derived from
	// the workbook file name.
	SourceLabel string `yaml:"source_label"`

	Archive ArchiveConfig `yaml:"archive"`
	Load    LoadConfig    `yaml:"load"`

	// MetricsAddr optionally exposes Prometheus metrics over HTTP while a
	// run is in flight (empty disables exposition).
	MetricsAddr string `yaml:"metrics_addr"`
}

// ArchiveConfig controls archiving of stage outputs to the blob store. The
// store driver itself is selected via SRTINGEST_BLOB_* environment variables.
type ArchiveConfig struct {
	Enabled bool `yaml:"enabled"`
	// Prefix namespaces archived runs inside the store (default "runs").
	Prefix string `yaml:"prefix"`
}

// LoadConfig controls the optional database load of the final tables.
type LoadConfig struct {
	// Driver is sqlite or postgres (default sqlite).
	Driver string `yaml:"driver"`
	// SQLitePath is the database file when driver=sqlite.
	SQLitePath string `yaml:"sqlite_path"`
	// PostgresDSN is the connection string when driver=postgres.
	PostgresDSN string `yaml:"postgres_dsn"`
	// BatchSize bounds rows per insert batch (default 5000).
	BatchSize int `yaml:"batch_size"`
}

// LoadConfigFile reads and validates a Config from a YAML file.
func LoadConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Workbook) == "" {
		return fmt.Errorf("workbook path required")
	}
	if len(c.Sheets) == 0 {
		return fmt.Errorf("at least one sheet required")
	}
	if len(c.IdentifierColumns) == 0 {
		return fmt.Errorf("at least one identifier column required")
	}
	switch c.Load.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown load driver %q", c.Load.Driver)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.SourceLabel == "" {
		c.SourceLabel = strings.TrimSuffix(filepath.Base(c.Workbook), filepath.Ext(c.Workbook))
	}
	if c.Archive.Prefix == "" {
		c.Archive.Prefix = "runs"
	}
	if c.Load.Driver == "" {
		c.Load.Driver = "sqlite"
	}
	if c.Load.BatchSize <= 0 {
		c.Load.BatchSize = 5000
	}
}

// OutputPath resolves a stage boundary file name inside the output directory.
func (c Config) OutputPath(name string) string {
	return filepath.Join(c.OutputDir, name)
}
