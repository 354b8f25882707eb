// Package scoring holds the pure policy knobs that turn raw similarity
// signals and learning counters into ranked, starred candidates. No I/O.
package scoring

// Source tags where a candidate came from. Decided once during candidate
// generation; consumers must not re-derive it.
type Source string

const (
	SourceOfficial       Source = "official"
	SourceConfirmedAlias Source = "confirmed_alias"
	SourceLearnedAlias   Source = "learned_alias"
	SourceFuzzy          Source = "fuzzy"
)

// Priority orders sources for tie-breaking when adjusted scores are
// equal: official/confirmed beat learned, learned beats fuzzy.
func (s Source) Priority() int {
	switch s {
	case SourceOfficial:
		return 0
	case SourceConfirmedAlias:
		return 1
	case SourceLearnedAlias:
		return 2
	case SourceFuzzy:
		return 3
	}
	return 4
}

const (
	// usageBonusStep is added per confirmed past use of a learned alias.
	usageBonusStep = 15
	// usageBonusCap keeps consistent confirmations dominant without
	// making a wrong match unbeatable forever.
	usageBonusCap = 75

	// BlockPenalty is subtracted per rejection of a specific entity for
	// a specific key. Applied per (key, entity) pair, never globally.
	BlockPenalty = 50

	threeStarFloor = 200
	twoStarFloor   = 120
)

// Base weights per source on the expanded adjusted-score scale. Exact
// dictionary hits start at 200, learned aliases at 150, fuzzy matches
// scale their similarity into 0-100.
const (
	BaseOfficial     = 200
	BaseConfirmed    = 200
	BaseLearned      = 150
	BaseFuzzy        = 100
	rawScoreOutScale = 100
)

// BaseWeight returns the adjusted-score contribution of the raw
// similarity for a source before usage bonuses and block penalties.
func BaseWeight(src Source, rawScore float64) float64 {
	switch src {
	case SourceOfficial:
		return BaseOfficial
	case SourceConfirmedAlias:
		return BaseConfirmed
	case SourceLearnedAlias:
		return BaseLearned
	default:
		return BaseFuzzy * rawScore
	}
}

// UsageBonus converts a usage counter into bonus points:
// min(count*15, 75).
func UsageBonus(usageCount int) float64 {
	bonus := usageCount * usageBonusStep
	if bonus > usageBonusCap {
		bonus = usageBonusCap
	}
	if bonus < 0 {
		return 0
	}
	return float64(bonus)
}

// AdjustedScore combines the weighted base with learning counters,
// floored at zero.
func AdjustedScore(src Source, rawScore float64, usageCount, blockCount int) float64 {
	score := BaseWeight(src, rawScore) + UsageBonus(usageCount) - float64(blockCount)*BlockPenalty
	if score < 0 {
		return 0
	}
	return score
}

// StarRating maps an adjusted score to the 1-3 star badge shown to
// operators.
func StarRating(adjusted float64) int {
	switch {
	case adjusted >= threeStarFloor:
		return 3
	case adjusted >= twoStarFloor:
		return 2
	default:
		return 1
	}
}

// DisplayScore is the 0-100 integer surfaced to the decision UI,
// rounded from the raw similarity.
func DisplayScore(rawScore float64) int {
	return int(rawScore*rawScoreOutScale + 0.5)
}

// Thresholds are the runtime-tunable decision knobs. They are loaded per
// request batch from the settings store; Defaults() provides the values
// used until an operator changes them.
type Thresholds struct {
	AutoAccept    float64 `json:"auto_accept"`
	Review        float64 `json:"review"`
	WeakFloor     float64 `json:"weak_floor"`
	ConflictDelta float64 `json:"conflict_delta"`
	MaxCandidates int     `json:"max_candidates"`
}

// Defaults returns the stock thresholds.
func Defaults() Thresholds {
	return Thresholds{
		AutoAccept:    0.90,
		Review:        0.70,
		WeakFloor:     0.70,
		ConflictDelta: 0.10,
		MaxCandidates: 20,
	}
}

// Validate checks threshold sanity: all ratios in [0,1], auto-accept at
// or above review, positive candidate cap.
func (t Thresholds) Validate() bool {
	for _, v := range []float64{t.AutoAccept, t.Review, t.WeakFloor, t.ConflictDelta} {
		if v < 0 || v > 1 {
			return false
		}
	}
	if t.AutoAccept < t.Review {
		return false
	}
	return t.MaxCandidates > 0
}
