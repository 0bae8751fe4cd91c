package classify

import (
	"strings"

	"github.com/rotisserie/eris"
)

// DecisionKind is a reviewer's disposition for a verdict that could not be
// auto-accepted.
type DecisionKind string

const (
	DecisionAccept              DecisionKind = "accept"
	DecisionRequestConfirmation DecisionKind = "request-confirmation"
	DecisionPending             DecisionKind = "pending-decision"
)

// Decision is the reviewer's choice. RequestConfirmation sends the named
// substances out for confirmation (LC-MS/MS) testing.
type Decision struct {
	Kind       DecisionKind `json:"kind"`
	Substances []string     `json:"substances,omitempty"`
}

// RequiresDecision reports whether a verdict needs an explicit reviewer
// decision before the record can be finalized.
func RequiresDecision(v Verdict) bool {
	return !v.AutoAccept
}

// ValidateDecision checks a reviewer decision against the verdict it
// resolves. Confirmation testing can only be requested for a non-empty
// subset of the verdict's unexpected positives.
func ValidateDecision(v Verdict, d Decision) error {
	switch d.Kind {
	case DecisionAccept, DecisionPending:
		return nil
	case DecisionRequestConfirmation:
		if len(d.Substances) == 0 {
			return eris.New("classify: confirmation request needs at least one substance")
		}
		for _, s := range d.Substances {
			if !containsCode(v.UnexpectedPositives, s) {
				return eris.Errorf("classify: %q is not an unexpected positive on this result", s)
			}
		}
		return nil
	default:
		return eris.Errorf("classify: unknown decision kind %q", d.Kind)
	}
}

func containsCode(codes []string, code string) bool {
	want := normalizeCode(code)
	for _, c := range codes {
		if strings.EqualFold(c, want) {
			return true
		}
	}
	return false
}
