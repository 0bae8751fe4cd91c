package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/clearpath-health/screening-cli/internal/classify"
	"github.com/clearpath-health/screening-cli/internal/intake"
)

var (
	decideReviewID   string
	decideKind       string
	decideSubstances []string
	decideFormat     string
)

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Record a reviewer decision on a pending review",
	Long: `Records a reviewer decision for a review that was not auto-accepted.
request-confirmation sends specific unexpected-positive substances out for
confirmation (LC-MS/MS) testing and requires --substances.

Examples:
  decide --review 7f3a... --decision accept
  decide --review 7f3a... --decision request-confirmation --substances cocaine,thc`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		pipeline := intake.New(st, nil, cfg.Match)
		review, err := pipeline.Decide(ctx, decideReviewID, classify.Decision{
			Kind:       classify.DecisionKind(decideKind),
			Substances: decideSubstances,
		})
		if err != nil {
			return err
		}

		return printOutput(os.Stdout, review, decideFormat)
	},
}

func init() {
	f := decideCmd.Flags()
	f.StringVar(&decideReviewID, "review", "", "review ID (required)")
	f.StringVar(&decideKind, "decision", "", "accept | request-confirmation | pending-decision (required)")
	f.StringSliceVar(&decideSubstances, "substances", nil, "substances to confirm (request-confirmation only)")
	f.StringVar(&decideFormat, "format", "json", "output format (json|yaml)")
	_ = decideCmd.MarkFlagRequired("review")
	_ = decideCmd.MarkFlagRequired("decision")
	rootCmd.AddCommand(decideCmd)
}
