package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/clearpath-health/screening-cli/internal/intake"
)

var (
	intakeReportPath  string
	intakeCandidateID string
	intakeFormat      string
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Run end-to-end intake for one extracted report",
	Long: `Runs the full intake flow for a single report: rank candidates,
auto-suggest the top match when it clears the threshold, classify the
detected substances against the matched client's medications, and record
the review. Use --candidate to override the suggestion.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		report, err := loadReport(intakeReportPath)
		if err != nil {
			return err
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
		result, err := pipeline.Process(ctx, *report, intakeCandidateID)
		if err != nil {
			return err
		}

		return printOutput(os.Stdout, result, intakeFormat)
	},
}

func init() {
	f := intakeCmd.Flags()
	f.StringVar(&intakeReportPath, "report", "", "path to extracted report JSON (required)")
	f.StringVar(&intakeCandidateID, "candidate", "", "candidate ID to select, bypassing auto-suggestion")
	f.StringVar(&intakeFormat, "format", "json", "output format (json|yaml)")
	_ = intakeCmd.MarkFlagRequired("report")
	rootCmd.AddCommand(intakeCmd)
}
