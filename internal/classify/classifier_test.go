package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-health/screening-cli/internal/model"
)

func med(name string, required bool, codes ...string) model.Medication {
	return model.Medication{Name: name, DetectedAs: codes, RequiredForConfirmation: required}
}

func TestClassifyNegative(t *testing.T) {
	v := Classify(nil, nil, nil)
	assert.Equal(t, OutcomeNegative, v.Outcome)
	assert.True(t, v.AutoAccept)
	assert.Empty(t, v.ExpectedPositives)
	assert.Empty(t, v.UnexpectedPositives)
	assert.Empty(t, v.UnexpectedNegatives)

	// Breathalyzer taken but clean stays negative.
	v = Classify(nil, nil, &model.Breathalyzer{Taken: true, ResultBAC: 0})
	assert.Equal(t, OutcomeNegative, v.Outcome)
	assert.True(t, v.AutoAccept)
}

func TestClassifyExpectedPositive(t *testing.T) {
	v := Classify(
		[]string{"thc"},
		[]model.Medication{med("Marinol", false, "thc")},
		nil,
	)
	assert.Equal(t, OutcomeExpectedPositive, v.Outcome)
	assert.Equal(t, []string{"thc"}, v.ExpectedPositives)
	assert.Empty(t, v.UnexpectedPositives)
	assert.True(t, v.AutoAccept)
}

func TestClassifyUnexpectedPositive(t *testing.T) {
	v := Classify([]string{"cocaine"}, nil, nil)
	assert.Equal(t, OutcomeUnexpectedPositive, v.Outcome)
	assert.Equal(t, []string{"cocaine"}, v.UnexpectedPositives)
	assert.False(t, v.AutoAccept)
}

func TestClassifyUnexpectedNegativeCritical(t *testing.T) {
	v := Classify(
		nil,
		[]model.Medication{med("Methadone", true, "opiates")},
		nil,
	)
	assert.Equal(t, OutcomeUnexpectedNegativeCritical, v.Outcome)
	assert.Equal(t, []string{"opiates"}, v.UnexpectedNegatives)
	assert.Equal(t, []string{"opiates"}, v.CriticalNegatives)
	assert.False(t, v.AutoAccept)
}

func TestClassifyUnexpectedNegativeWarning(t *testing.T) {
	v := Classify(
		nil,
		[]model.Medication{med("Marinol", false, "thc")},
		nil,
	)
	assert.Equal(t, OutcomeUnexpectedNegativeWarning, v.Outcome)
	assert.Equal(t, []string{"thc"}, v.UnexpectedNegatives)
	assert.Empty(t, v.CriticalNegatives)
	assert.True(t, v.AutoAccept)
}

func TestClassifyMixedUnexpected(t *testing.T) {
	v := Classify(
		[]string{"cocaine"},
		[]model.Medication{med("Marinol", false, "thc")},
		nil,
	)
	assert.Equal(t, OutcomeMixedUnexpected, v.Outcome)
	assert.Equal(t, []string{"cocaine"}, v.UnexpectedPositives)
	assert.Equal(t, []string{"thc"}, v.UnexpectedNegatives)
	assert.False(t, v.AutoAccept)
}

func TestClassifyBreathalyzerPositive(t *testing.T) {
	// Any detectable alcohol counts as a detected substance.
	v := Classify(nil, nil, &model.Breathalyzer{Taken: true, ResultBAC: 0.04})
	assert.Equal(t, OutcomeUnexpectedPositive, v.Outcome)
	assert.Equal(t, []string{CodeAlcohol}, v.UnexpectedPositives)
	assert.False(t, v.AutoAccept)

	// Not taken: reading is ignored.
	v = Classify(nil, nil, &model.Breathalyzer{Taken: false, ResultBAC: 0.04})
	assert.Equal(t, OutcomeNegative, v.Outcome)
}

func TestClassifyCaseInsensitiveCodes(t *testing.T) {
	v := Classify(
		[]string{"THC", " Thc "},
		[]model.Medication{med("Marinol", false, "thc")},
		nil,
	)
	assert.Equal(t, OutcomeExpectedPositive, v.Outcome)
	assert.Equal(t, []string{"thc"}, v.ExpectedPositives)
}

func TestClassifySharedCodeCriticalProvenance(t *testing.T) {
	// A code expected by several medications is critical if any of them
	// requires confirmation.
	v := Classify(
		nil,
		[]model.Medication{
			med("Codeine", false, "opiates"),
			med("Methadone", true, "opiates"),
		},
		nil,
	)
	assert.Equal(t, OutcomeUnexpectedNegativeCritical, v.Outcome)
	assert.Equal(t, []string{"opiates"}, v.CriticalNegatives)
	assert.False(t, v.AutoAccept)
}

func TestClassifyCriticalNeverAutoAccepts(t *testing.T) {
	// The safety clamp holds in every branch that can carry a critical
	// missing medication.
	inputs := [][]string{
		nil,
		{"cocaine"},
		{"cocaine", "thc"},
	}
	meds := []model.Medication{
		med("Methadone", true, "methadone"),
		med("Marinol", false, "thc"),
	}
	for _, detected := range inputs {
		v := Classify(detected, meds, nil)
		require.Contains(t, v.CriticalNegatives, "methadone")
		assert.False(t, v.AutoAccept, "detected=%v outcome=%s", detected, v.Outcome)
	}
}

func TestClassifyPartitionProperty(t *testing.T) {
	cases := []struct {
		detected []string
		meds     []model.Medication
	}{
		{nil, nil},
		{[]string{"thc"}, nil},
		{[]string{"thc", "cocaine"}, []model.Medication{med("Marinol", false, "thc")}},
		{[]string{"opiates"}, []model.Medication{med("Methadone", true, "opiates", "methadone")}},
		{[]string{"a", "b", "c"}, []model.Medication{med("X", false, "b"), med("Y", true, "d")}},
	}
	for _, tc := range cases {
		v := Classify(tc.detected, tc.meds, nil)

		// No overlap between the two positive sets.
		for _, p := range v.ExpectedPositives {
			assert.NotContains(t, v.UnexpectedPositives, p)
		}

		// Union of the positives equals the normalized detected set.
		union := append(append([]string{}, v.ExpectedPositives...), v.UnexpectedPositives...)
		assert.Len(t, union, len(tc.detected))
		for _, d := range tc.detected {
			assert.Contains(t, union, d)
		}

		// Negatives never overlap detections.
		for _, n := range v.UnexpectedNegatives {
			assert.NotContains(t, union, n)
		}
	}
}

func TestClassifyIdempotent(t *testing.T) {
	detected := []string{"thc", "cocaine"}
	meds := []model.Medication{
		med("Marinol", false, "thc"),
		med("Methadone", true, "methadone"),
	}
	breath := &model.Breathalyzer{Taken: true, ResultBAC: 0.02}

	first := Classify(detected, meds, breath)
	second := Classify(detected, meds, breath)
	assert.Equal(t, first, second)
}

func TestClassifyIgnoresDiscontinuedViaActiveFilter(t *testing.T) {
	// Callers pass only active medications; ActiveMedications drops
	// discontinued entries so their codes never count as expected.
	past := time.Now().Add(-24 * time.Hour)
	meds := []model.Medication{
		{Name: "Marinol", DetectedAs: []string{"thc"}, DiscontinuedAt: &past},
	}
	active := model.ActiveMedications(meds, time.Now())
	require.Empty(t, active)

	v := Classify([]string{"thc"}, active, nil)
	assert.Equal(t, OutcomeUnexpectedPositive, v.Outcome)
	assert.False(t, v.AutoAccept)
}
