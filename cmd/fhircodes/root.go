package main

import (
	"io"

	"github.com/spf13/cobra"

	fc "github.com/gofhir/fhircodes"
	"github.com/gofhir/fhircodes/config"
	"github.com/gofhir/fhircodes/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fhircodes",
		Short: "Extract SNOMED-CT and RxNorm codes from FHIR document bundles",
		Long: `fhircodes reads FHIR document bundles, assigns every coded condition,
medication and procedure to the LOINC section that references it and writes
per-document code tables, a section summary and code dictionaries.`,
		Version:       fc.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fc.UserAgent() + "\n")
	root.PersistentFlags().String("config", "", "config file (default ./fhircodes.yaml)")

	root.AddCommand(newExtractCmd())
	root.AddCommand(newCodeSystemCmd())
	return root
}

// newLogger builds the logger described by cfg.
func newLogger(cfg config.LogConfig, out io.Writer) (*logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Format == "json" {
		return logger.New(out, level), nil
	}
	return logger.NewConsole(out, level), nil
}
