package config

import (
	"slices"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Log        LogConfig         `yaml:"log"`
	Database   DatabaseConfig    `yaml:"database"`
	Assembly   AssemblyConfig    `yaml:"assembly"`
	Sources    []SourceConfig    `yaml:"sources"`
	Transducer TransducerConfig  `yaml:"transducer"`
	Paradigms  map[string]string `yaml:"paradigms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// DatabaseConfig holds PostgreSQL connection settings. Publishing is disabled
// when DSN is empty.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"4"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	CopyBatchSize   int           `yaml:"copy_batch_size"    env:"DATABASE_COPY_BATCH_SIZE"    env-default:"5000"`
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.DSN != ""
}

// Descriptor modes for homograph disambiguation.
const (
	DescriptorParadigm = "paradigm"
	DescriptorPOS      = "pos"
)

// AssemblyConfig holds dictionary assembly settings.
type AssemblyConfig struct {
	LexicalTags     []string `yaml:"lexical_tags"      env:"ASSEMBLY_LEXICAL_TAGS"      env-separator:","`
	OutputPath      string   `yaml:"output_path"       env:"ASSEMBLY_OUTPUT_PATH"       env-default:"./dictionary.json"`
	PreviousPath    string   `yaml:"previous_path"     env:"ASSEMBLY_PREVIOUS_PATH"`
	TieBreakersPath string   `yaml:"tie_breakers_path" env:"ASSEMBLY_TIE_BREAKERS_PATH"`
	Descriptor      string   `yaml:"descriptor"        env:"ASSEMBLY_DESCRIPTOR"        env-default:"paradigm"`
	ExcludedSources []string `yaml:"excluded_sources"  env:"ASSEMBLY_EXCLUDED_SOURCES"  env-separator:","`
	MetricsPath     string   `yaml:"metrics_path"      env:"ASSEMBLY_METRICS_PATH"`
}

// IsExcluded reports whether source abbrev must not appear in the output.
func (c AssemblyConfig) IsExcluded(abbrev string) bool {
	return slices.Contains(c.ExcludedSources, abbrev)
}

// Source formats understood by the importer.
const (
	FormatJSONL = "jsonl"
	FormatTSV   = "tsv"
)

// SourceConfig describes one dictionary source file.
type SourceConfig struct {
	Abbrev string `yaml:"abbrev"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// TransducerConfig points to the analysis table exported from the FST.
type TransducerConfig struct {
	TablePath string `yaml:"table_path" env:"TRANSDUCER_TABLE_PATH"`
}

// SourceAbbrevs returns the configured source abbreviations in order.
func (c *Config) SourceAbbrevs() []string {
	out := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		out[i] = s.Abbrev
	}
	return out
}
