package main

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/media-import/internal/fetcher"
	"github.com/sells-group/media-import/internal/importer"
	"github.com/sells-group/media-import/internal/store"
)

var (
	importFiles       []string
	importOutput      string
	importCommit      bool
	importConcurrency int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Parse, validate, and score company and contact files",
	Long: `Runs each file through the import pipeline and writes one JSON report per file.

Examples:
  # Validate two files and print the reports
  media-import import --file leads.csv --file agencies.xlsx

  # Fetch a hosted export
  media-import import --file https://exports.example.com/leads.csv

  # Save the valid companies and write the report to disk
  media-import import --file leads.json --commit --output report.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "import")
		if err != nil {
			return err
		}
		defer env.Close()

		limit := importConcurrency
		if limit <= 0 {
			limit = cfg.Import.Concurrency
		}

		results, err := runImports(ctx, env, importFiles, limit, importCommit)
		if err != nil {
			return err
		}
		return writeJSON(importOutput, results)
	},
}

// runImports processes files concurrently. Results keep the order of files.
// A file that cannot be read or parsed fails the whole command.
func runImports(ctx context.Context, env *pipelineEnv, files []string, limit int, commit bool) ([]*importer.Result, error) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]*importer.Result, len(files))
	var saved atomic.Int64

	for i, path := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			data, name, err := readSource(gCtx, env, path)
			if err != nil {
				return err
			}

			res, err := env.Pipeline.Run(data, name)
			if err != nil {
				return eris.Wrapf(err, "import: %s", path)
			}
			results[i] = res

			if env.Store == nil {
				return nil
			}
			if commit {
				n, err := env.Store.SaveCompanies(gCtx, res.ValidCompanies())
				if err != nil {
					return eris.Wrapf(err, "import: save companies from %s", path)
				}
				saved.Add(n)
			}
			return recordRun(gCtx, env.Store, res)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("import: batch complete",
		zap.Int("files", len(files)),
		zap.Int64("companies_saved", saved.Load()),
		zap.Bool("commit", commit),
	)
	return results, nil
}

// readSource loads a local path or downloads an http(s) URL.
func readSource(ctx context.Context, env *pipelineEnv, src string) ([]byte, string, error) {
	if fetcher.IsRemote(src) {
		data, err := env.Remote.Fetch(ctx, src)
		if err != nil {
			return nil, "", eris.Wrapf(err, "import: download %s", src)
		}
		return data, fetcher.FileName(src), nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, "", eris.Wrapf(err, "import: read %s", src)
	}
	return data, filepath.Base(src), nil
}

func recordRun(ctx context.Context, st store.Store, res *importer.Result) error {
	run := res.Run()
	if err := st.RecordImport(ctx, &run); err != nil {
		return eris.Wrapf(err, "import: record run for %s", res.FileName)
	}
	zap.L().Debug("import: recorded run", zap.String("id", run.ID), zap.String("file", res.FileName))
	return nil
}

func init() {
	importCmd.Flags().StringArrayVar(&importFiles, "file", nil, "path or http(s) URL of a CSV, XLSX, XLS, or JSON file (repeatable, required)")
	importCmd.Flags().StringVar(&importOutput, "output", "", "write the JSON report here instead of stdout")
	importCmd.Flags().BoolVar(&importCommit, "commit", false, "save valid companies to the store")
	importCmd.Flags().IntVar(&importConcurrency, "concurrency", 0, "files processed in parallel (default from config)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
