// Package config loads the extraction configuration of the command line tool.
package config

import (
	fc "github.com/gofhir/fhircodes"
	"github.com/gofhir/fhircodes/stream"
)

// Config is the complete tool configuration. It can be loaded from a YAML file
// with FHIRCODES_* environment and flag overrides.
type Config struct {
	Input   InputConfig   `yaml:"input" mapstructure:"input"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Seed    SeedConfig    `yaml:"seed" mapstructure:"seed"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// InputConfig selects the bundle files.
type InputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Pattern string `yaml:"pattern" mapstructure:"pattern"` // glob relative to Dir, '/' separated
}

// OutputConfig places the results.
type OutputConfig struct {
	TableDir    string `yaml:"table_dir" mapstructure:"table_dir"`
	DataDir     string `yaml:"data_dir" mapstructure:"data_dir"`
	CodeSystems bool   `yaml:"code_systems" mapstructure:"code_systems"` // also write R4 CodeSystem files
}

// ExtractConfig mirrors fhircodes.Options.
type ExtractConfig struct {
	AdditionalCodes     bool   `yaml:"additional_codes" mapstructure:"additional_codes"`
	NegationField       string `yaml:"negation_field" mapstructure:"negation_field"`
	NegationExpression  string `yaml:"negation_expression" mapstructure:"negation_expression"`
	SectionPattern      string `yaml:"section_pattern" mapstructure:"section_pattern"`
	FallbackSection     string `yaml:"fallback_section" mapstructure:"fallback_section"`
	Workers             int    `yaml:"workers" mapstructure:"workers"`
	ExpressionCacheSize int    `yaml:"expression_cache_size" mapstructure:"expression_cache_size"`
}

// SeedConfig names dictionaries from a previous run to start from.
type SeedConfig struct {
	SNOMED string `yaml:"snomed" mapstructure:"snomed"`
	RxNorm string `yaml:"rxnorm" mapstructure:"rxnorm"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "console" or "json"
}

// Default returns the default configuration.
func Default() *Config {
	opts := fc.DefaultOptions()
	return &Config{
		Input: InputConfig{
			Dir:     "input",
			Pattern: stream.DefaultPattern,
		},
		Output: OutputConfig{
			TableDir: "output",
			DataDir:  "data",
		},
		Extract: ExtractConfig{
			AdditionalCodes:     opts.IncludeAdditionalCodes,
			NegationField:       opts.NegationField,
			SectionPattern:      opts.SectionPattern,
			FallbackSection:     opts.FallbackSection,
			Workers:             opts.WorkerCount,
			ExpressionCacheSize: opts.ExpressionCacheSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Options converts the extract settings to extractor options.
func (c *Config) Options() []fc.Option {
	e := c.Extract
	return []fc.Option{
		fc.WithAdditionalCodes(e.AdditionalCodes),
		fc.WithNegationField(e.NegationField),
		fc.WithNegationExpression(e.NegationExpression),
		fc.WithSectionPattern(e.SectionPattern),
		fc.WithFallbackSection(e.FallbackSection),
		fc.WithWorkerCount(e.Workers),
		fc.WithExpressionCacheSize(e.ExpressionCacheSize),
	}
}
