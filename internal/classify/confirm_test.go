package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiresDecision(t *testing.T) {
	assert.False(t, RequiresDecision(Verdict{AutoAccept: true}))
	assert.True(t, RequiresDecision(Verdict{AutoAccept: false}))
}

func TestValidateDecisionAcceptAndPending(t *testing.T) {
	v := Verdict{Outcome: OutcomeUnexpectedPositive, UnexpectedPositives: []string{"cocaine"}}

	assert.NoError(t, ValidateDecision(v, Decision{Kind: DecisionAccept}))
	assert.NoError(t, ValidateDecision(v, Decision{Kind: DecisionPending}))

	// Accept carries no substance list; a stray one is ignored.
	assert.NoError(t, ValidateDecision(v, Decision{Kind: DecisionAccept, Substances: []string{"cocaine"}}))
}

func TestValidateDecisionRequestConfirmation(t *testing.T) {
	v := Verdict{
		Outcome:             OutcomeMixedUnexpected,
		UnexpectedPositives: []string{"cocaine", "thc"},
		UnexpectedNegatives: []string{"opiates"},
	}

	assert.NoError(t, ValidateDecision(v, Decision{
		Kind:       DecisionRequestConfirmation,
		Substances: []string{"cocaine"},
	}))
	assert.NoError(t, ValidateDecision(v, Decision{
		Kind:       DecisionRequestConfirmation,
		Substances: []string{"THC", "cocaine"},
	}))

	err := ValidateDecision(v, Decision{Kind: DecisionRequestConfirmation})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one substance")

	// An unexpected negative is not confirmable.
	err = ValidateDecision(v, Decision{
		Kind:       DecisionRequestConfirmation,
		Substances: []string{"opiates"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opiates")
}

func TestValidateDecisionUnknownKind(t *testing.T) {
	err := ValidateDecision(Verdict{}, Decision{Kind: "escalate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escalate")
}
