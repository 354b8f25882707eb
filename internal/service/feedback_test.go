package service

import (
	"context"
	"errors"
	"testing"

	"guarantee-desk/internal/normalize"
	"guarantee-desk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedWrite struct {
	key      string
	entityID int64
}

type fakeLearningWriter struct {
	usageErr error
	blockErr error

	usages []recordedWrite
	blocks []recordedWrite
	byID   map[int64][]repository.LearningRecord
}

func (f *fakeLearningWriter) RecordUsage(ctx context.Context, domain normalize.Domain, key string, entityID int64) error {
	if f.usageErr != nil {
		return f.usageErr
	}
	f.usages = append(f.usages, recordedWrite{key: key, entityID: entityID})
	return nil
}

func (f *fakeLearningWriter) RecordBlock(ctx context.Context, domain normalize.Domain, key string, entityID int64) error {
	if f.blockErr != nil {
		return f.blockErr
	}
	f.blocks = append(f.blocks, recordedWrite{key: key, entityID: entityID})
	return nil
}

func (f *fakeLearningWriter) ListForEntity(ctx context.Context, domain normalize.Domain, entityID int64) ([]repository.LearningRecord, error) {
	return f.byID[entityID], nil
}

func TestRecordDecisionConfirmAndReject(t *testing.T) {
	writer := &fakeLearningWriter{}
	svc := NewFeedbackService(writer)

	err := svc.RecordDecision(context.Background(), "ABC Trading Co.", normalize.DomainSupplier, 7, []int64{12, 30})
	require.NoError(t, err)

	key := normalize.Key("ABC Trading Co.", normalize.DomainSupplier)
	require.Len(t, writer.usages, 1)
	assert.Equal(t, recordedWrite{key: key, entityID: 7}, writer.usages[0])

	require.Len(t, writer.blocks, 2)
	assert.Equal(t, recordedWrite{key: key, entityID: 12}, writer.blocks[0])
	assert.Equal(t, recordedWrite{key: key, entityID: 30}, writer.blocks[1])
}

func TestRecordDecisionRejectionsOnly(t *testing.T) {
	writer := &fakeLearningWriter{}
	svc := NewFeedbackService(writer)

	err := svc.RecordDecision(context.Background(), "ABC", normalize.DomainSupplier, 0, []int64{5})
	require.NoError(t, err)

	assert.Empty(t, writer.usages)
	assert.Len(t, writer.blocks, 1)
}

func TestRecordDecisionSkipsChosenInRejections(t *testing.T) {
	writer := &fakeLearningWriter{}
	svc := NewFeedbackService(writer)

	err := svc.RecordDecision(context.Background(), "ABC", normalize.DomainSupplier, 7, []int64{7, 9})
	require.NoError(t, err)

	assert.Len(t, writer.usages, 1)
	require.Len(t, writer.blocks, 1)
	assert.Equal(t, int64(9), writer.blocks[0].entityID)
}

func TestRecordDecisionEmptyName(t *testing.T) {
	svc := NewFeedbackService(&fakeLearningWriter{})

	for _, input := range []string{"", "  ", "Co. Ltd."} {
		err := svc.RecordDecision(context.Background(), input, normalize.DomainSupplier, 7, nil)
		assert.ErrorIs(t, err, ErrEmptyName, "input %q", input)
	}
}

func TestRecordDecisionUnknownDomain(t *testing.T) {
	svc := NewFeedbackService(&fakeLearningWriter{})
	err := svc.RecordDecision(context.Background(), "ABC", normalize.Domain("row"), 7, nil)
	assert.ErrorIs(t, err, ErrUnknownDomain)
}

func TestRecordDecisionWriteFailureSurfaces(t *testing.T) {
	writer := &fakeLearningWriter{usageErr: errors.New("connection reset")}
	svc := NewFeedbackService(writer)

	err := svc.RecordDecision(context.Background(), "ABC", normalize.DomainSupplier, 7, nil)
	assert.ErrorIs(t, err, ErrLearningDegraded)
}

func TestLearnedAliases(t *testing.T) {
	writer := &fakeLearningWriter{byID: map[int64][]repository.LearningRecord{
		7: {{CanonicalKey: "abc", EntityID: 7, UsageCount: 4}},
	}}
	svc := NewFeedbackService(writer)

	records, err := svc.LearnedAliases(context.Background(), normalize.DomainSupplier, 7)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].UsageCount)
}
