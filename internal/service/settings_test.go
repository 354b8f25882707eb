package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"guarantee-desk/internal/db"
	"guarantee-desk/internal/repository"
	"guarantee-desk/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettingsStore struct {
	stored  *repository.MatchSettings
	getErr  error
	gets    int
	upserts int
}

func (f *fakeSettingsStore) Get(ctx context.Context) (*repository.MatchSettings, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.stored == nil {
		return nil, db.ErrNotFound
	}
	return f.stored, nil
}

func (f *fakeSettingsStore) Upsert(ctx context.Context, t scoring.Thresholds) (*repository.MatchSettings, error) {
	f.upserts++
	f.stored = &repository.MatchSettings{Thresholds: t, UpdatedAt: time.Now()}
	return f.stored, nil
}

func TestThresholdsFallsBackToDefaults(t *testing.T) {
	store := &fakeSettingsStore{}
	svc := NewSettingsService(store, scoring.Defaults())

	got := svc.Thresholds(context.Background())
	assert.Equal(t, scoring.Defaults(), got)
}

func TestThresholdsCachesStoredValues(t *testing.T) {
	custom := scoring.Defaults()
	custom.AutoAccept = 0.95
	store := &fakeSettingsStore{stored: &repository.MatchSettings{Thresholds: custom}}
	svc := NewSettingsService(store, scoring.Defaults())

	first := svc.Thresholds(context.Background())
	second := svc.Thresholds(context.Background())

	assert.Equal(t, custom, first)
	assert.Equal(t, custom, second)
	assert.Equal(t, 1, store.gets, "second read should hit the cache")
}

func TestThresholdsStoreErrorUsesDefaults(t *testing.T) {
	store := &fakeSettingsStore{getErr: errors.New("connection refused")}
	svc := NewSettingsService(store, scoring.Defaults())

	got := svc.Thresholds(context.Background())
	assert.Equal(t, scoring.Defaults(), got)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	initial := scoring.Defaults()
	store := &fakeSettingsStore{stored: &repository.MatchSettings{Thresholds: initial}}
	svc := NewSettingsService(store, scoring.Defaults())

	// Prime the cache.
	_ = svc.Thresholds(context.Background())

	updated := initial
	updated.WeakFloor = 0.60
	_, err := svc.Update(context.Background(), updated)
	require.NoError(t, err)

	got := svc.Thresholds(context.Background())
	assert.Equal(t, 0.60, got.WeakFloor)
}

func TestUpdateRejectsInvalidThresholds(t *testing.T) {
	store := &fakeSettingsStore{}
	svc := NewSettingsService(store, scoring.Defaults())

	bad := scoring.Defaults()
	bad.AutoAccept = 1.5
	_, err := svc.Update(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidThresholds)
	assert.Equal(t, 0, store.upserts)
}

func TestCurrentWithoutStoredRow(t *testing.T) {
	store := &fakeSettingsStore{}
	svc := NewSettingsService(store, scoring.Defaults())

	settings, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, scoring.Defaults(), settings.Thresholds)
}
