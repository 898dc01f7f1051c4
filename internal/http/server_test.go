package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/medrag/internal/pipeline"
	"github.com/fyrsmithlabs/medrag/internal/retriever"
	"github.com/fyrsmithlabs/medrag/internal/safety"
)

type stubPipeline struct {
	verdict safety.Verdict
	answer  *pipeline.Answer
	err     error
}

func (s *stubPipeline) CheckSafety(query string) safety.Verdict {
	return s.verdict
}

func (s *stubPipeline) Answer(_ context.Context, _ string, _ int) (*pipeline.Answer, error) {
	return s.answer, s.err
}

func newTestServer(t *testing.T, p Pipeline) *Server {
	t.Helper()
	s, err := NewServer(p, zap.NewNop(), nil)
	require.NoError(t, err)
	return s
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(nil, zap.NewNop(), nil)
	assert.Error(t, err)

	_, err = NewServer(&stubPipeline{}, nil, nil)
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &stubPipeline{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &stubPipeline{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSafetyEndpoint(t *testing.T) {
	s := newTestServer(t, &stubPipeline{
		verdict: safety.Verdict{Category: safety.CategoryPIIRequest, Subcategory: "contact"},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/safety",
		strings.NewReader(`{"query":"What is the patient's phone number?"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var verdict safety.Verdict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verdict))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, safety.CategoryPIIRequest, verdict.Category)
	assert.Equal(t, "contact", verdict.Subcategory)
}

func TestAnswerEndpoint(t *testing.T) {
	want := &pipeline.Answer{
		ID:    "answer-1",
		Query: "What treats migraines?",
		Mode:  pipeline.ModeGrounded,
		Text:  "Triptans are commonly documented.",
		Sources: []retriever.Candidate{
			{Rank: 1, DocumentID: 2, Text: "Migraine history.", Similarity: 0.62},
		},
		ShowSources: true,
	}
	s := newTestServer(t, &stubPipeline{answer: want})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/answer",
		strings.NewReader(`{"query":"What treats migraines?","top_k":3}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got pipeline.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Mode, got.Mode)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, 1, got.Sources[0].Rank)
}

func TestAnswerEndpointBlocked(t *testing.T) {
	s := newTestServer(t, &stubPipeline{
		err: &pipeline.BlockedError{Verdict: safety.Verdict{
			Category:    safety.CategoryPIIRequest,
			Subcategory: "identity",
		}},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/answer",
		strings.NewReader(`{"query":"Full names of all patients"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp BlockedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, safety.CategoryPIIRequest, resp.Category)
	assert.Equal(t, "identity", resp.Subcategory)
}

func TestAnswerEndpointFailure(t *testing.T) {
	s := newTestServer(t, &stubPipeline{err: errors.New("generation failed")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/answer",
		strings.NewReader(`{"query":"safe query"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	// Collaborator failures are distinguishable from blocked queries.
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnswerEndpointEmptyQuery(t *testing.T) {
	s := newTestServer(t, &stubPipeline{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/answer", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
