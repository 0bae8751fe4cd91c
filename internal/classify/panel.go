package classify

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Panel maps lab-specific panel abbreviations to the canonical substance
// codes medications are stored with. Labs abbreviate inconsistently
// ("AMP", "mAMP", "BZO"); medication profiles use full canonical codes.
type Panel struct {
	Aliases map[string]string `yaml:"aliases"`
}

// DefaultPanel covers the common 10-panel immunoassay abbreviations.
func DefaultPanel() *Panel {
	return &Panel{Aliases: map[string]string{
		"amp":  "amphetamines",
		"mamp": "methamphetamines",
		"bar":  "barbiturates",
		"bzo":  "benzodiazepines",
		"coc":  "cocaine",
		"mtd":  "methadone",
		"opi":  "opiates",
		"oxy":  "oxycodone",
		"pcp":  "phencyclidine",
		"thc":  "thc",
		"etg":  "alcohol",
		"alc":  "alcohol",
	}}
}

// LoadPanel reads panel alias rules from a YAML file and merges them over
// the defaults, so a site file only needs to list its own lab's quirks.
func LoadPanel(path string) (*Panel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "classify: read panel rules %s", path)
	}

	var wrapper struct {
		Panel Panel `yaml:"panel"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "classify: parse panel rules")
	}

	merged := DefaultPanel()
	for alias, code := range wrapper.Panel.Aliases {
		merged.Aliases[strings.ToLower(strings.TrimSpace(alias))] = normalizeCode(code)
	}
	return merged, nil
}

// Canonicalize maps each detected code through the alias table, passing
// unknown codes through unchanged (they simply never match a medication).
func (p *Panel) Canonicalize(codes []string) []string {
	if p == nil || len(p.Aliases) == 0 {
		return codes
	}
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		code := normalizeCode(c)
		if code == "" {
			continue
		}
		if canonical, ok := p.Aliases[code]; ok {
			code = canonical
		}
		out = append(out, code)
	}
	return out
}
