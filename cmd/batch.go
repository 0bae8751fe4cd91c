package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clearpath-health/screening-cli/internal/intake"
)

var batchDir string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Intake a directory of extracted report files",
	Long: `Processes every *.json report in a directory through the intake
pipeline with bounded concurrency. Reports that fail to match confidently are
counted as unmatched and left for manual selection.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		entries, err := os.ReadDir(batchDir)
		if err != nil {
			return eris.Wrapf(err, "batch: read dir %s", batchDir)
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		panel, err := loadPanel()
		if err != nil {
			return err
		}
		pipeline := intake.New(st, panel, cfg.Match)

		var accepted, pending, unmatched atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Intake.MaxConcurrentReports)

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			path := filepath.Join(batchDir, entry.Name())

			g.Go(func() error {
				report, err := loadReport(path)
				if err != nil {
					return err
				}
				result, err := pipeline.Process(gctx, *report, "")
				if err != nil {
					return eris.Wrapf(err, "batch: process %s", path)
				}
				switch {
				case result.Review == nil:
					unmatched.Add(1)
				case result.Review.AutoAccepted:
					accepted.Add(1)
				default:
					pending.Add(1)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("batch: complete",
			zap.Int64("auto_accepted", accepted.Load()),
			zap.Int64("pending_review", pending.Load()),
			zap.Int64("unmatched", unmatched.Load()),
		)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory of report JSON files (required)")
	_ = batchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(batchCmd)
}
