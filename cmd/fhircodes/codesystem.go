package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gofhir/fhircodes/report"
	"github.com/gofhir/fhircodes/terminology"
)

func newCodeSystemCmd() *cobra.Command {
	var (
		system string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "codesystem <dictionary.json>",
		Short: "Convert a code dictionary into a FHIR R4 CodeSystem resource",
		Example: `  fhircodes codesystem data/snomed_found.json --system snomed
  fhircodes codesystem data/rxcui_found.json --system rxnorm -o rxnorm.codesystem.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := parseSystem(system)
			if err != nil {
				return err
			}
			d, err := terminology.LoadDictionaryFile(args[0], sys)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return report.WriteCodeSystem(cmd.OutOrStdout(), d)
			}
			return report.WriteFile(out, func(w io.Writer) error {
				return report.WriteCodeSystem(w, d)
			})
		},
	}

	cmd.Flags().StringVarP(&system, "system", "s", "snomed", "code system of the dictionary: snomed or rxnorm")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func parseSystem(s string) (terminology.System, error) {
	switch strings.ToLower(s) {
	case "snomed", "sct", terminology.SNOMEDURI:
		return terminology.SystemSNOMED, nil
	case "rxnorm", "rxn", terminology.RxNormURI:
		return terminology.SystemRxNorm, nil
	default:
		return terminology.SystemOther, fmt.Errorf("unknown code system %q (want snomed or rxnorm)", s)
	}
}
