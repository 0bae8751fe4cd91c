package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/clearpath-health/screening-cli/internal/classify"
	"github.com/clearpath-health/screening-cli/internal/model"
	"github.com/clearpath-health/screening-cli/internal/store"
)

// openStore opens the configured store backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// loadReport reads an extracted report JSON file.
func loadReport(path string) (*model.ExtractedReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read report %s", path)
	}
	var report model.ExtractedReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, eris.Wrapf(err, "parse report %s", path)
	}
	return &report, nil
}

// loadPanel loads the configured panel alias rules, falling back to defaults.
func loadPanel() (*classify.Panel, error) {
	if cfg.Intake.PanelRulesPath == "" {
		return classify.DefaultPanel(), nil
	}
	return classify.LoadPanel(cfg.Intake.PanelRulesPath)
}

// printOutput renders v as json or yaml.
func printOutput(w io.Writer, v any, format string) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return eris.Wrap(enc.Encode(v), "encode yaml")
	default:
		return eris.Errorf("unknown output format %q", format)
	}
}
