// Package intake orchestrates report ingestion: rank candidates, classify
// detected substances against the matched client's medications, and persist
// the review outcome.
package intake

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/clearpath-health/screening-cli/internal/classify"
	"github.com/clearpath-health/screening-cli/internal/config"
	"github.com/clearpath-health/screening-cli/internal/match"
	"github.com/clearpath-health/screening-cli/internal/model"
	"github.com/clearpath-health/screening-cli/internal/store"
)

// Pipeline wires the match and classify engines to the store.
type Pipeline struct {
	store store.Store
	panel *classify.Panel
	cfg   config.MatchConfig
}

// New creates a Pipeline. A nil panel falls back to the default alias table.
func New(st store.Store, panel *classify.Panel, cfg config.MatchConfig) *Pipeline {
	if panel == nil {
		panel = classify.DefaultPanel()
	}
	return &Pipeline{store: st, panel: panel, cfg: cfg}
}

// Result is the outcome of processing one extracted report.
type Result struct {
	Matches   []model.MatchResult    `json:"matches"`
	Selected  *model.CandidateRecord `json:"selected,omitempty"`
	Suggested bool                   `json:"suggested"`
	Verdict   *classify.Verdict      `json:"verdict,omitempty"`
	Review    *model.ReviewRecord    `json:"review,omitempty"`
}

// Process matches an extracted report to a pending collection record,
// classifies its detected substances, and records the review.
//
// overrideCandidateID skips auto-suggestion and selects that candidate
// directly (the wizard's manual-override path). When empty, the top ranked
// candidate is selected only if its score clears the auto-suggest threshold;
// otherwise the ranked list is returned with no verdict and the caller must
// pick a candidate.
func (p *Pipeline) Process(ctx context.Context, report model.ExtractedReport, overrideCandidateID string) (*Result, error) {
	candidates, err := p.store.ListCandidates(ctx, store.CandidateFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "intake: list candidates")
	}

	matches := match.Rank(candidates, report.DonorName, report.CollectionDate, report.TestType, p.cfg.ScreenWorkflow)

	result := &Result{Matches: matches}

	var selected *model.MatchResult
	if overrideCandidateID != "" {
		for i := range matches {
			if matches[i].Candidate.ID == overrideCandidateID {
				selected = &matches[i]
				break
			}
		}
		if selected == nil {
			return nil, eris.Errorf("intake: candidate %s not in ranked set", overrideCandidateID)
		}
	} else if len(matches) > 0 && matches[0].Score >= p.cfg.AutoSuggestThreshold {
		selected = &matches[0]
		result.Suggested = true
	}

	if selected == nil {
		zap.L().Info("intake: no confident match, awaiting selection",
			zap.String("donor", report.DonorName),
			zap.Int("candidates", len(matches)),
		)
		return result, nil
	}
	result.Selected = &selected.Candidate

	meds, err := p.store.MedicationsForClient(ctx, selected.Candidate.ClientID)
	if err != nil {
		return nil, eris.Wrap(err, "intake: load medications")
	}
	active := model.ActiveMedications(meds, time.Now())

	detected := p.panel.Canonicalize(report.DetectedSubstances)
	verdict := classify.Classify(detected, active, report.Breathalyzer)
	result.Verdict = &verdict

	status := model.ReviewPending
	if verdict.AutoAccept {
		status = model.ReviewAutoAccepted
	}
	review := &model.ReviewRecord{
		ID:                  uuid.New().String(),
		CandidateID:         selected.Candidate.ID,
		ClientID:            selected.Candidate.ClientID,
		DonorName:           report.DonorName,
		TestType:            selected.Candidate.TestType,
		MatchScore:          selected.Score,
		Outcome:             string(verdict.Outcome),
		AutoAccepted:        verdict.AutoAccept,
		ExpectedPositives:   verdict.ExpectedPositives,
		UnexpectedPositives: verdict.UnexpectedPositives,
		UnexpectedNegatives: verdict.UnexpectedNegatives,
		Status:              status,
	}
	if err := p.store.SaveReview(ctx, review); err != nil {
		return nil, eris.Wrap(err, "intake: save review")
	}
	result.Review = review

	zap.L().Info("intake: report processed",
		zap.String("review_id", review.ID),
		zap.String("candidate_id", review.CandidateID),
		zap.Int("match_score", review.MatchScore),
		zap.String("outcome", review.Outcome),
		zap.Bool("auto_accepted", review.AutoAccepted),
	)

	return result, nil
}

// Decide applies a reviewer decision to a pending review. Auto-accepted
// reviews need no decision; for the rest, confirmation requests are
// validated against the stored unexpected positives.
func (p *Pipeline) Decide(ctx context.Context, reviewID string, decision classify.Decision) (*model.ReviewRecord, error) {
	review, err := p.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.AutoAccepted {
		return nil, eris.Errorf("intake: review %s was auto-accepted, no decision needed", reviewID)
	}

	verdict := classify.Verdict{
		Outcome:             classify.Outcome(review.Outcome),
		ExpectedPositives:   review.ExpectedPositives,
		UnexpectedPositives: review.UnexpectedPositives,
		UnexpectedNegatives: review.UnexpectedNegatives,
	}
	if err := classify.ValidateDecision(verdict, decision); err != nil {
		return nil, err
	}

	switch decision.Kind {
	case classify.DecisionAccept:
		review.Status = model.ReviewFinalized
	case classify.DecisionRequestConfirmation:
		review.Status = model.ReviewConfirmation
		review.DecisionSubstances = decision.Substances
	case classify.DecisionPending:
		review.Status = model.ReviewPending
	}
	review.Decision = string(decision.Kind)

	if err := p.store.SaveReview(ctx, review); err != nil {
		return nil, eris.Wrap(err, "intake: update review")
	}

	zap.L().Info("intake: decision recorded",
		zap.String("review_id", review.ID),
		zap.String("decision", review.Decision),
		zap.Strings("substances", review.DecisionSubstances),
	)

	return review, nil
}
