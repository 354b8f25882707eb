package service

import (
	"context"

	"guarantee-desk/internal/logger"
	"guarantee-desk/internal/normalize"
)

// MatchStatus is the automatic decision for one spreadsheet row
type MatchStatus string

const (
	StatusReady       MatchStatus = "ready"
	StatusNeedsReview MatchStatus = "needs_review"
)

// MatchDecision is the engine's verdict for one raw name. Computed, never
// persisted here; storing the operator's final choice belongs to the row
// pipeline.
type MatchDecision struct {
	Status         MatchStatus `json:"status"`
	ChosenEntityID *int64      `json:"chosen_entity_id,omitempty"`
	TopCandidates  []Candidate `json:"top_candidates"`
	Conflicted     bool        `json:"is_conflicted"`
}

// adjustedScale converts adjusted scores back onto the 0-1 scale the
// conflict delta is configured on.
const adjustedScale = 100.0

// MatchService turns ranked candidates into an auto-accept / review /
// no-match decision.
type MatchService struct {
	candidates *CandidateService
	settings   thresholdSource
}

// NewMatchService creates a new match service
func NewMatchService(candidates *CandidateService, settings thresholdSource) *MatchService {
	return &MatchService{
		candidates: candidates,
		settings:   settings,
	}
}

// Match produces the decision for one raw name. A conflicted flag marks
// the top two candidates as too close to trust automatically; callers
// must not propagate a conflicted decision to other rows sharing the
// same raw string.
func (s *MatchService) Match(ctx context.Context, rawName string, domain normalize.Domain) (*MatchDecision, error) {
	candidates, err := s.candidates.Candidates(ctx, rawName, domain)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return &MatchDecision{
			Status:        StatusNeedsReview,
			TopCandidates: []Candidate{},
		}, nil
	}

	t := s.settings.Thresholds(ctx)
	top := candidates[0]

	decision := &MatchDecision{
		Status:        StatusNeedsReview,
		TopCandidates: candidates,
	}

	switch {
	case top.RawScore >= t.AutoAccept && !top.Blocked:
		decision.Status = StatusReady
		id := top.EntityID
		decision.ChosenEntityID = &id
	case top.RawScore >= t.Review:
		// surfaced for manual pick, nothing auto-chosen
	default:
		// too weak to suggest anything: operator adds a dictionary entry
		decision.TopCandidates = []Candidate{}
	}

	if len(candidates) >= 2 {
		delta := (candidates[0].AdjustedScore - candidates[1].AdjustedScore) / adjustedScale
		if delta < t.ConflictDelta {
			decision.Conflicted = true
			logger.Debug().
				Str("domain", string(domain)).
				Int64("top", candidates[0].EntityID).
				Int64("runner_up", candidates[1].EntityID).
				Float64("delta", delta).
				Msg("ambiguous top candidates")
		}
	}

	return decision, nil
}
