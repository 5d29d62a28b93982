package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	pg "siterisk/internal/adapters/postgres"
	"siterisk/internal/config"
	"siterisk/internal/content"
	"siterisk/internal/engine"
	"siterisk/internal/logger"
	"siterisk/internal/ports"
	"siterisk/internal/services/assessment"
	"siterisk/internal/workers/batchrunner"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	cataloguePath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "siterisk",
		Short:         "Planning constraint risk assessment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(config.Load(), cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.cataloguePath, "catalogue", "", "designation catalogue YAML (defaults to the embedded catalogue)")

	rootCmd.AddCommand(
		newAssessCmd(opts),
		newBatchCmd(opts),
		newDesignationsCmd(opts),
	)
	return rootCmd
}

func loadCatalogue(path string) (*content.Catalogue, error) {
	if path == "" {
		return content.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalogue: %w", err)
	}
	return content.Parse(data)
}

func newAssessCmd(opts *options) *cobra.Command {
	var site bool
	cmd := &cobra.Command{
		Use:   "assess [file]",
		Short: "Assess a features file, or a GeoJSON site boundary with --site",
		Long: "Reads a JSON features payload ({\"features\": [...]} or a bare array) and prints the combined report.\n" +
			"With --site the file is a GeoJSON boundary queried against DATABASE_URL.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := loadCatalogue(opts.cataloguePath)
			if err != nil {
				return err
			}

			var report any
			if site {
				svc, closeDB, err := newSiteService(ctx, c)
				if err != nil {
					return err
				}
				defer closeDB()
				report, err = svc.AssessSite(ctx, data)
				if err != nil {
					return err
				}
			} else {
				features, err := decodeFeatures(data)
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				report, err = assessment.New(engine.New(c), nil).Assess(ctx, features)
				if err != nil {
					return err
				}
			}
			return writeIndented(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&site, "site", false, "treat the file as a GeoJSON site boundary")
	return cmd
}

func newSiteService(ctx context.Context, c *content.Catalogue) (*assessment.Service, func(), error) {
	cfg := config.Load()
	if !cfg.DB.Enabled() {
		return nil, nil, assessment.ErrNoSpatialSource
	}
	db, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	src := pg.NewSpatialSource(db, c, cfg.Spatial.Concurrency)
	return assessment.New(engine.New(c), src), db.Close, nil
}

func newBatchCmd(opts *options) *cobra.Command {
	var (
		workers int
		outDir  string
	)
	cmd := &cobra.Command{
		Use:   "batch [files...]",
		Short: "Assess many features files concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalogue(opts.cataloguePath)
			if err != nil {
				return err
			}
			if workers < 1 {
				workers = config.Load().BatchWorkers
			}
			sink := newFileSink(cmd.OutOrStdout(), outDir)
			err = batchrunner.Run(cmd.Context(), newFileSource(args), assessment.New(engine.New(c), nil), sink, workers)
			if err != nil {
				return err
			}
			if n := sink.failures(); n > 0 {
				return fmt.Errorf("%d of %d assessments failed", n, len(args))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent assessments (defaults to BATCH_WORKERS)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory for <name>.report.json files")
	return cmd
}

func newDesignationsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "designations",
		Short: "List the designation types the engine classifies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalogue(opts.cataloguePath)
			if err != nil {
				return err
			}
			return printDesignations(cmd.OutOrStdout(), c)
		},
	}
}

func printDesignations(w io.Writer, c *content.Catalogue) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "DISCIPLINE\tTYPE\tCLASSIFIER\tTITLE\n")
	for _, d := range c.Disciplines {
		for _, des := range c.DesignationsFor(d.Name) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, des.Key, des.Classifier, des.Title)
		}
	}
	fmt.Fprintf(tw, "\ncatalogue version %s\n", c.Version)
	return tw.Flush()
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var _ ports.Assessor = (*assessment.Service)(nil)
