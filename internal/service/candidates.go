package service

import (
	"context"
	"fmt"
	"sort"

	"guarantee-desk/internal/logger"
	"guarantee-desk/internal/normalize"
	"guarantee-desk/internal/repository"
	"guarantee-desk/internal/scoring"
	"guarantee-desk/internal/similarity"
)

// Candidate is a scored, ranked guess at which dictionary entity a raw
// name refers to. Transient: recomputed on every lookup, never persisted.
type Candidate struct {
	EntityID      int64          `json:"entity_id"`
	DisplayName   string         `json:"display_name"`
	RawScore      float64        `json:"-"`
	AdjustedScore float64        `json:"-"`
	Score         int            `json:"score"`
	Source        scoring.Source `json:"source"`
	StarRating    int            `json:"star_rating"`
	UsageCount    int            `json:"usage_count"`
	Blocked       bool           `json:"blocked"`
}

type catalogReader interface {
	ListEntities(ctx context.Context, domain normalize.Domain) ([]repository.CatalogEntity, error)
	ListAliases(ctx context.Context, domain normalize.Domain) ([]repository.EntityAlias, error)
}

type learningReader interface {
	ListByKey(ctx context.Context, domain normalize.Domain, canonicalKey string) ([]repository.LearningRecord, error)
}

type thresholdSource interface {
	Thresholds(ctx context.Context) scoring.Thresholds
}

// CandidateService produces the ranked candidate list for one raw name.
// It is a stateless computation layer: all mutable state lives behind the
// injected stores.
type CandidateService struct {
	catalog  catalogReader
	learning learningReader
	settings thresholdSource
}

// NewCandidateService creates a new candidate service
func NewCandidateService(catalog catalogReader, learning learningReader, settings thresholdSource) *CandidateService {
	return &CandidateService{
		catalog:  catalog,
		learning: learning,
		settings: settings,
	}
}

// rawCandidate is one (entity, source) signal before deduplication
type rawCandidate struct {
	entityID int64
	source   scoring.Source
	rawScore float64
}

// Candidates returns the ranked candidate list for a raw name. An input
// that normalizes to nothing yields an empty list and no error; a failed
// catalog read returns ErrCatalogUnavailable; a failed learning read
// degrades to catalog-only signals.
func (s *CandidateService) Candidates(ctx context.Context, rawName string, domain normalize.Domain) ([]Candidate, error) {
	if !domain.Valid() {
		return nil, ErrUnknownDomain
	}

	key := normalize.Key(rawName, domain)
	if key == "" {
		return nil, nil
	}

	entities, err := s.catalog.ListEntities(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("%w: list entities: %v", ErrCatalogUnavailable, err)
	}
	aliases, err := s.catalog.ListAliases(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("%w: list aliases: %v", ErrCatalogUnavailable, err)
	}

	// Stale rankings beat an empty decision screen: a failed learning
	// read only costs the usage bonuses.
	usage := make(map[int64]int)
	blocks := make(map[int64]int)
	records, err := s.learning.ListByKey(ctx, domain, key)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("domain", string(domain)).
			Str("key", key).
			Msg("learning store read failed, ranking without usage signals")
		records = nil
	}
	for _, rec := range records {
		usage[rec.EntityID] = rec.UsageCount
		blocks[rec.EntityID] = rec.BlockCount
	}

	names := make(map[int64]string, len(entities))
	exact := make(map[int64]bool)
	var raws []rawCandidate

	for _, e := range entities {
		names[e.ID] = e.OfficialName
		if e.CanonicalKey == key {
			exact[e.ID] = true
			raws = append(raws, rawCandidate{entityID: e.ID, source: scoring.SourceOfficial, rawScore: 1.0})
		}
	}

	for _, a := range aliases {
		if a.CanonicalKey != key {
			continue
		}
		if _, known := names[a.EntityID]; !known {
			continue
		}
		exact[a.EntityID] = true
		raws = append(raws, rawCandidate{entityID: a.EntityID, source: scoring.SourceConfirmedAlias, rawScore: 1.0})
	}

	for _, rec := range records {
		if rec.UsageCount == 0 {
			continue // block-only record, no positive signal
		}
		if _, known := names[rec.EntityID]; !known {
			continue // entity removed from the dictionary since learning
		}
		raws = append(raws, rawCandidate{entityID: rec.EntityID, source: scoring.SourceLearnedAlias, rawScore: 1.0})
	}

	t := s.settings.Thresholds(ctx)

	for _, e := range entities {
		if exact[e.ID] {
			continue
		}
		score := similarity.Combined(key, e.CanonicalKey)
		if score >= t.WeakFloor {
			raws = append(raws, rawCandidate{entityID: e.ID, source: scoring.SourceFuzzy, rawScore: score})
		}
	}

	candidates := s.dedupe(raws, names, usage, blocks)

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.AdjustedScore != b.AdjustedScore {
			return a.AdjustedScore > b.AdjustedScore
		}
		if a.Source.Priority() != b.Source.Priority() {
			return a.Source.Priority() < b.Source.Priority()
		}
		return a.EntityID < b.EntityID
	})

	if len(candidates) > t.MaxCandidates {
		candidates = candidates[:t.MaxCandidates]
	}
	return candidates, nil
}

// dedupe keeps one candidate per entity: the source with the highest
// adjusted score, source priority breaking ties
func (s *CandidateService) dedupe(raws []rawCandidate, names map[int64]string, usage, blocks map[int64]int) []Candidate {
	best := make(map[int64]Candidate)
	for _, rc := range raws {
		c := Candidate{
			EntityID:      rc.entityID,
			DisplayName:   names[rc.entityID],
			RawScore:      rc.rawScore,
			AdjustedScore: scoring.AdjustedScore(rc.source, rc.rawScore, usage[rc.entityID], blocks[rc.entityID]),
			Score:         scoring.DisplayScore(rc.rawScore),
			Source:        rc.source,
			UsageCount:    usage[rc.entityID],
			Blocked:       blocks[rc.entityID] > 0,
		}
		prev, seen := best[rc.entityID]
		if !seen ||
			c.AdjustedScore > prev.AdjustedScore ||
			(c.AdjustedScore == prev.AdjustedScore && c.Source.Priority() < prev.Source.Priority()) {
			best[rc.entityID] = c
		}
	}

	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		c.StarRating = scoring.StarRating(c.AdjustedScore)
		out = append(out, c)
	}
	return out
}

// CandidatesForAll resolves a batch of raw names, computing each distinct
// canonical key once. Candidate generation is deterministic for a fixed
// dictionary and learning snapshot, so sharing results across rows with
// the same key is safe.
func (s *CandidateService) CandidatesForAll(ctx context.Context, rawNames []string, domain normalize.Domain) (map[string][]Candidate, error) {
	byKey := make(map[string][]Candidate)
	out := make(map[string][]Candidate, len(rawNames))

	for _, raw := range rawNames {
		key := normalize.Key(raw, domain)
		if key == "" {
			out[raw] = nil
			continue
		}
		if cached, ok := byKey[key]; ok {
			out[raw] = cached
			continue
		}
		candidates, err := s.Candidates(ctx, raw, domain)
		if err != nil {
			return nil, err
		}
		byKey[key] = candidates
		out[raw] = candidates
	}
	return out, nil
}
