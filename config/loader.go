package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FHIRCODES_EXTRACT_WORKERS.
const EnvPrefix = "FHIRCODES"

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"input":               "input.dir",
	"pattern":             "input.pattern",
	"output":              "output.table_dir",
	"data":                "output.data_dir",
	"codesystems":         "output.code_systems",
	"additional-codes":    "extract.additional_codes",
	"negation-field":      "extract.negation_field",
	"negation-expression": "extract.negation_expression",
	"section-pattern":     "extract.section_pattern",
	"fallback-section":    "extract.fallback_section",
	"workers":             "extract.workers",
	"seed-snomed":         "seed.snomed",
	"seed-rxnorm":         "seed.rxnorm",
	"log-level":           "log.level",
	"log-format":          "log.format",
}

// Load reads configuration with the following priority (highest to lowest):
//  1. Flags set on the command line
//  2. Environment variables (FHIRCODES_*)
//  3. Config file (file, or fhircodes.yaml in the working directory)
//  4. Default values
//
// flags may be nil.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("fhircodes")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("input.dir", d.Input.Dir)
	v.SetDefault("input.pattern", d.Input.Pattern)

	v.SetDefault("output.table_dir", d.Output.TableDir)
	v.SetDefault("output.data_dir", d.Output.DataDir)
	v.SetDefault("output.code_systems", d.Output.CodeSystems)

	v.SetDefault("extract.additional_codes", d.Extract.AdditionalCodes)
	v.SetDefault("extract.negation_field", d.Extract.NegationField)
	v.SetDefault("extract.negation_expression", d.Extract.NegationExpression)
	v.SetDefault("extract.section_pattern", d.Extract.SectionPattern)
	v.SetDefault("extract.fallback_section", d.Extract.FallbackSection)
	v.SetDefault("extract.workers", d.Extract.Workers)
	v.SetDefault("extract.expression_cache_size", d.Extract.ExpressionCacheSize)

	v.SetDefault("seed.snomed", d.Seed.SNOMED)
	v.SetDefault("seed.rxnorm", d.Seed.RxNorm)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// bindFlags binds the flags of flagKeys present in fs. Unset flags do not
// override lower-priority sources.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// RegisterFlags adds the configuration flags to fs with their defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.StringP("input", "i", d.Input.Dir, "directory holding bundle files")
	fs.String("pattern", d.Input.Pattern, "glob selecting bundle files under the input directory")
	fs.StringP("output", "o", d.Output.TableDir, "directory for per-document code tables")
	fs.String("data", d.Output.DataDir, "directory for the section summary and code dictionaries")
	fs.Bool("codesystems", d.Output.CodeSystems, "also write dictionaries as FHIR R4 CodeSystem resources")

	fs.Bool("additional-codes", d.Extract.AdditionalCodes, "count codes nested in resources besides the main code")
	fs.String("negation-field", d.Extract.NegationField, "resource field whose presence marks an entry negated")
	fs.String("negation-expression", d.Extract.NegationExpression, "FHIRPath expression marking an entry negated")
	fs.String("section-pattern", d.Extract.SectionPattern, "regular expression section codes must fully match")
	fs.String("fallback-section", d.Extract.FallbackSection, "section code for unmatched and unreferenced entries")
	fs.IntP("workers", "w", d.Extract.Workers, "documents processed concurrently")

	fs.String("seed-snomed", d.Seed.SNOMED, "SNOMED dictionary from a previous run to start from")
	fs.String("seed-rxnorm", d.Seed.RxNorm, "RxNorm dictionary from a previous run to start from")

	fs.String("log-level", d.Log.Level, "log level: debug, info, warn, error, none")
	fs.String("log-format", d.Log.Format, "log format: console or json")
}
