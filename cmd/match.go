package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clearpath-health/screening-cli/internal/match"
	"github.com/clearpath-health/screening-cli/internal/store"
)

var (
	matchReportPath string
	matchFormat     string
	matchNoScreen   bool
	matchLimit      int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank pending collection records against an extracted report",
	Long: `Ranks pending collection records against the donor name and collection
date extracted from a lab report. Name similarity contributes up to 60 points,
date proximity up to 40; candidates already screened or complete are excluded
unless --no-screen is set.

Examples:
  # Rank against a report file
  match --report report.json

  # Include already-resulted tests and emit YAML
  match --report report.json --no-screen --format yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		report, err := loadReport(matchReportPath)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		candidates, err := st.ListCandidates(ctx, store.CandidateFilter{})
		if err != nil {
			return eris.Wrap(err, "match: list candidates")
		}

		results := match.Rank(candidates, report.DonorName, report.CollectionDate, report.TestType, !matchNoScreen)
		if matchLimit > 0 && len(results) > matchLimit {
			results = results[:matchLimit]
		}

		zap.L().Info("match: ranking complete",
			zap.String("donor", report.DonorName),
			zap.Int("candidates", len(candidates)),
			zap.Int("ranked", len(results)),
		)

		return printOutput(os.Stdout, results, matchFormat)
	},
}

func init() {
	f := matchCmd.Flags()
	f.StringVar(&matchReportPath, "report", "", "path to extracted report JSON (required)")
	f.StringVar(&matchFormat, "format", "json", "output format (json|yaml)")
	f.BoolVar(&matchNoScreen, "no-screen", false, "include already-resulted tests")
	f.IntVar(&matchLimit, "limit", 0, "max results to print (0 = all)")
	_ = matchCmd.MarkFlagRequired("report")
	rootCmd.AddCommand(matchCmd)
}
