package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clearpath-health/screening-cli/internal/classify"
	"github.com/clearpath-health/screening-cli/internal/model"
)

var (
	classifyReportPath string
	classifyClientID   string
	classifyFormat     string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify detected substances against a client's medications",
	Long: `Classifies a report's detected substances against the client's active
prescribed medications. Substances explained by a medication are expected
positives; the rest are unexpected. A medication marked required-for-confirmation
whose expected code is missing makes the result critical and blocks auto-accept.

Examples:
  classify --report report.json --client c-1042
  classify --report report.json --client c-1042 --format yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		report, err := loadReport(classifyReportPath)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		meds, err := st.MedicationsForClient(ctx, classifyClientID)
		if err != nil {
			return eris.Wrap(err, "classify: load medications")
		}
		active := model.ActiveMedications(meds, time.Now())

		panel, err := loadPanel()
		if err != nil {
			return err
		}

		detected := panel.Canonicalize(report.DetectedSubstances)
		verdict := classify.Classify(detected, active, report.Breathalyzer)

		zap.L().Info("classify: verdict",
			zap.String("client_id", classifyClientID),
			zap.String("outcome", string(verdict.Outcome)),
			zap.Bool("auto_accept", verdict.AutoAccept),
		)

		return printOutput(os.Stdout, verdict, classifyFormat)
	},
}

func init() {
	f := classifyCmd.Flags()
	f.StringVar(&classifyReportPath, "report", "", "path to extracted report JSON (required)")
	f.StringVar(&classifyClientID, "client", "", "client ID whose medications to classify against (required)")
	f.StringVar(&classifyFormat, "format", "json", "output format (json|yaml)")
	_ = classifyCmd.MarkFlagRequired("report")
	_ = classifyCmd.MarkFlagRequired("client")
	rootCmd.AddCommand(classifyCmd)
}
