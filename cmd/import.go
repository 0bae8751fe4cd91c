package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clearpath-health/screening-cli/internal/roster"
)

var (
	importCandidatesPath  string
	importMedicationsPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import collection rosters and medication lists",
	Long: `Imports pending-collection rosters and client medication lists from
CSV or XLSX exports. Rows are upserted, so re-importing an updated export is
safe.

Examples:
  import --candidates roster.xlsx
  import --candidates roster.csv --medications meds.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importCandidatesPath == "" && importMedicationsPath == "" {
			return eris.New("import: at least one of --candidates or --medications is required")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if importCandidatesPath != "" {
			rows, err := roster.ReadRows(importCandidatesPath)
			if err != nil {
				return err
			}
			candidates, err := roster.ParseCandidates(rows)
			if err != nil {
				return err
			}
			for i := range candidates {
				if err := st.UpsertCandidate(ctx, &candidates[i]); err != nil {
					return err
				}
			}
			zap.L().Info("import: candidates loaded",
				zap.Int("count", len(candidates)),
				zap.String("file", importCandidatesPath),
			)
		}

		if importMedicationsPath != "" {
			rows, err := roster.ReadRows(importMedicationsPath)
			if err != nil {
				return err
			}
			meds, err := roster.ParseMedications(rows)
			if err != nil {
				return err
			}
			for i := range meds {
				if err := st.UpsertMedication(ctx, meds[i].ClientID, &meds[i].Medication); err != nil {
					return err
				}
			}
			zap.L().Info("import: medications loaded",
				zap.Int("count", len(meds)),
				zap.String("file", importMedicationsPath),
			)
		}

		return nil
	},
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&importCandidatesPath, "candidates", "", "path to candidate roster (csv|xlsx)")
	f.StringVar(&importMedicationsPath, "medications", "", "path to medication list (csv|xlsx)")
	rootCmd.AddCommand(importCmd)
}
