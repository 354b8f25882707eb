package service

import (
	"context"
	"fmt"

	"guarantee-desk/internal/logger"
	"guarantee-desk/internal/normalize"
	"guarantee-desk/internal/repository"
)

type learningWriter interface {
	RecordUsage(ctx context.Context, domain normalize.Domain, canonicalKey string, entityID int64) error
	RecordBlock(ctx context.Context, domain normalize.Domain, canonicalKey string, entityID int64) error
	ListForEntity(ctx context.Context, domain normalize.Domain, entityID int64) ([]repository.LearningRecord, error)
}

// FeedbackService is the only mutation path from the engine into
// persistent state: operator confirmations and rejections become usage
// and block counters that shift future rankings.
type FeedbackService struct {
	learning learningWriter
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(learning learningWriter) *FeedbackService {
	return &FeedbackService{learning: learning}
}

// RecordDecision stores operator feedback for one raw name: one usage
// increment for the chosen entity (0 means nothing chosen) and one block
// increment per rejected entity. Failures surface as ErrLearningDegraded
// so the caller knows the confirmation was not learned, but the business
// decision itself is already recorded elsewhere and is not rolled back.
func (s *FeedbackService) RecordDecision(ctx context.Context, rawName string, domain normalize.Domain, chosenEntityID int64, rejectedEntityIDs []int64) error {
	if !domain.Valid() {
		return ErrUnknownDomain
	}

	key := normalize.Key(rawName, domain)
	if key == "" {
		return ErrEmptyName
	}

	if chosenEntityID > 0 {
		if err := s.learning.RecordUsage(ctx, domain, key, chosenEntityID); err != nil {
			return fmt.Errorf("%w: record usage for entity %d: %v", ErrLearningDegraded, chosenEntityID, err)
		}
		logger.Debug().
			Str("domain", string(domain)).
			Str("key", key).
			Int64("entity_id", chosenEntityID).
			Msg("recorded confirmation")
	}

	for _, id := range rejectedEntityIDs {
		if id == chosenEntityID {
			continue
		}
		if err := s.learning.RecordBlock(ctx, domain, key, id); err != nil {
			return fmt.Errorf("%w: record block for entity %d: %v", ErrLearningDegraded, id, err)
		}
	}

	return nil
}

// LearnedAliases lists the learning records pointing at an entity, most
// used first (operator audit view).
func (s *FeedbackService) LearnedAliases(ctx context.Context, domain normalize.Domain, entityID int64) ([]repository.LearningRecord, error) {
	if !domain.Valid() {
		return nil, ErrUnknownDomain
	}
	return s.learning.ListForEntity(ctx, domain, entityID)
}
