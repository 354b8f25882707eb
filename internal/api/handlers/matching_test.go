package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"guarantee-desk/internal/normalize"
	"guarantee-desk/internal/repository"
	"guarantee-desk/internal/scoring"
	"guarantee-desk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	entities []repository.CatalogEntity
	err      error
}

func (s *stubCatalog) ListEntities(ctx context.Context, domain normalize.Domain) ([]repository.CatalogEntity, error) {
	return s.entities, s.err
}

func (s *stubCatalog) ListAliases(ctx context.Context, domain normalize.Domain) ([]repository.EntityAlias, error) {
	return nil, s.err
}

type stubLearning struct {
	usages int
	blocks int
}

func (s *stubLearning) ListByKey(ctx context.Context, domain normalize.Domain, key string) ([]repository.LearningRecord, error) {
	return nil, nil
}

func (s *stubLearning) RecordUsage(ctx context.Context, domain normalize.Domain, key string, entityID int64) error {
	s.usages++
	return nil
}

func (s *stubLearning) RecordBlock(ctx context.Context, domain normalize.Domain, key string, entityID int64) error {
	s.blocks++
	return nil
}

func (s *stubLearning) ListForEntity(ctx context.Context, domain normalize.Domain, entityID int64) ([]repository.LearningRecord, error) {
	return nil, nil
}

type stubThresholds struct{}

func (stubThresholds) Thresholds(ctx context.Context) scoring.Thresholds {
	return scoring.Defaults()
}

func newTestRouter(catalog *stubCatalog, learning *stubLearning) *gin.Engine {
	gin.SetMode(gin.TestMode)

	candidateSvc := service.NewCandidateService(catalog, learning, stubThresholds{})
	matchSvc := service.NewMatchService(candidateSvc, stubThresholds{})
	feedbackSvc := service.NewFeedbackService(learning)
	h := NewMatchingHandler(candidateSvc, matchSvc, feedbackSvc)

	r := gin.New()
	r.GET("/matching/candidates", h.GetCandidates)
	r.POST("/matching/candidates/batch", h.GetBatchCandidates)
	r.GET("/matching/decision", h.GetMatchDecision)
	r.POST("/matching/decisions", h.SubmitDecision)
	return r
}

func TestGetCandidatesHandler(t *testing.T) {
	catalog := &stubCatalog{entities: []repository.CatalogEntity{{
		ID:           1,
		Domain:       normalize.DomainSupplier,
		OfficialName: "ABC",
		CanonicalKey: "abc",
	}}}
	router := newTestRouter(catalog, &stubLearning{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/matching/candidates?name=ABC+Trading+Co.&domain=supplier", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                `json:"success"`
		Data    []service.Candidate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(1), resp.Data[0].EntityID)
	assert.Equal(t, 100, resp.Data[0].Score)
	assert.Equal(t, scoring.SourceOfficial, resp.Data[0].Source)
}

func TestGetCandidatesHandlerMissingName(t *testing.T) {
	router := newTestRouter(&stubCatalog{}, &stubLearning{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/matching/candidates?domain=supplier", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCandidatesHandlerBadDomain(t *testing.T) {
	router := newTestRouter(&stubCatalog{}, &stubLearning{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/matching/candidates?name=ABC&domain=customer", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCandidatesHandlerCatalogDown(t *testing.T) {
	router := newTestRouter(&stubCatalog{err: assert.AnError}, &stubLearning{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/matching/candidates?name=ABC&domain=supplier", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetBatchCandidatesHandler(t *testing.T) {
	catalog := &stubCatalog{entities: []repository.CatalogEntity{{
		ID:           1,
		Domain:       normalize.DomainSupplier,
		OfficialName: "ABC",
		CanonicalKey: "abc",
	}}}
	router := newTestRouter(catalog, &stubLearning{})

	body, _ := json.Marshal(BatchCandidatesRequest{
		Names:  []string{"ABC", "ABC Trading Co.", "Unrelated"},
		Domain: "supplier",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/matching/candidates/batch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data map[string][]service.Candidate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Len(t, resp.Data["ABC"], 1)
	assert.Len(t, resp.Data["ABC Trading Co."], 1)
	assert.Empty(t, resp.Data["Unrelated"])
}

func TestGetMatchDecisionHandler(t *testing.T) {
	catalog := &stubCatalog{entities: []repository.CatalogEntity{{
		ID:           1,
		Domain:       normalize.DomainSupplier,
		OfficialName: "ABC",
		CanonicalKey: "abc",
	}}}
	router := newTestRouter(catalog, &stubLearning{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/matching/decision?name=ABC&domain=supplier", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data service.MatchDecision `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, service.StatusReady, resp.Data.Status)
	require.NotNil(t, resp.Data.ChosenEntityID)
	assert.Equal(t, int64(1), *resp.Data.ChosenEntityID)
}

func TestSubmitDecisionHandler(t *testing.T) {
	learning := &stubLearning{}
	router := newTestRouter(&stubCatalog{}, learning)

	body, _ := json.Marshal(SubmitDecisionRequest{
		RawName:           "ABC Trading Co.",
		Domain:            "supplier",
		ChosenEntityID:    7,
		RejectedEntityIDs: []int64{12},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/matching/decisions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, learning.usages)
	assert.Equal(t, 1, learning.blocks)
}

func TestSubmitDecisionHandlerNothingToRecord(t *testing.T) {
	router := newTestRouter(&stubCatalog{}, &stubLearning{})

	body, _ := json.Marshal(SubmitDecisionRequest{
		RawName: "ABC",
		Domain:  "supplier",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/matching/decisions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
