package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	fc "github.com/gofhir/fhircodes"
	"github.com/gofhir/fhircodes/config"
	"github.com/gofhir/fhircodes/engine"
	"github.com/gofhir/fhircodes/report"
	"github.com/gofhir/fhircodes/stream"
	"github.com/gofhir/fhircodes/terminology"
)

func newExtractCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract codes from every bundle in the input directory",
		Example: `  fhircodes extract -i bundles -o output --data data
  fhircodes extract --workers 8 --negation-expression "verificationStatus.coding.code = 'refuted'"
  FHIRCODES_EXTRACT_ADDITIONAL_CODES=false fhircodes extract`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(file, cmd.Flags())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var bar io.Writer = cmd.ErrOrStderr()
			if quiet {
				bar = nil
			}
			return runExtract(ctx, cfg, cmd.ErrOrStderr(), bar)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not show a progress bar")
	return cmd
}

// runExtract processes the configured corpus. bar receives the progress bar;
// nil disables it.
func runExtract(ctx context.Context, cfg *config.Config, logOut, bar io.Writer) error {
	log, err := newLogger(cfg.Log, logOut)
	if err != nil {
		return err
	}

	ex, err := engine.New(append(cfg.Options(), fc.WithLogger(log))...)
	if err != nil {
		return err
	}

	for _, seed := range []struct {
		path   string
		system terminology.System
	}{
		{cfg.Seed.SNOMED, terminology.SystemSNOMED},
		{cfg.Seed.RxNorm, terminology.SystemRxNorm},
	} {
		if seed.path == "" {
			continue
		}
		d, err := terminology.LoadDictionaryFile(seed.path, seed.system)
		if err != nil {
			return fmt.Errorf("seed %s dictionary: %w", seed.system, err)
		}
		ex.Corpus().Seed(d)
		log.Info("seeded %d %s descriptions from %s", d.Len(), seed.system, seed.path)
	}

	docs, err := stream.Discover(cfg.Input.Dir, cfg.Input.Pattern)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no files match %q under %s", cfg.Input.Pattern, cfg.Input.Dir)
	}
	log.Info("%s: processing %d documents from %s", fc.UserAgent(), len(docs), cfg.Input.Dir)

	sources := make([]engine.Source, len(docs))
	for i, d := range docs {
		sources[i] = d
	}

	var progress func(engine.Result)
	if bar != nil {
		pb := progressbar.NewOptions(len(docs),
			progressbar.OptionSetWriter(bar),
			progressbar.OptionSetDescription("Extracting codes"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("docs/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(bar)
			}),
		)
		progress = func(engine.Result) {
			_ = pb.Add(1)
		}
	}

	results, runErr := ex.Run(ctx, sources, progress)

	w := &report.Writer{
		TableDir:    cfg.Output.TableDir,
		DataDir:     cfg.Output.DataDir,
		CodeSystems: cfg.Output.CodeSystems,
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		if err := w.Table(r.Document); err != nil {
			return err
		}
	}
	written, err := w.Corpus(ex.Corpus())
	if err != nil {
		return err
	}

	s := ex.Metrics().Snapshot()
	log.Info("documents: %d processed, %d failed; entries: %d classified, %d skipped; rows: %d; avg %s per document",
		s.DocumentsTotal, s.DocumentsFailed, s.EntriesClassified, s.EntriesSkipped, s.RowsEmitted, s.AvgDocumentTime)
	for _, kind := range s.IssueKinds() {
		log.Info("issues %s: %d", kind, s.Issues[kind])
	}
	for _, path := range written {
		log.Info("wrote %s", path)
	}

	if runErr != nil {
		return runErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(docs))
	}
	return nil
}
