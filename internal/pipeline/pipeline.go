package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/medrag/internal/retriever"
	"github.com/fyrsmithlabs/medrag/internal/safety"
)

const instrumentationName = "github.com/fyrsmithlabs/medrag/internal/pipeline"

// ErrBlocked marks a query rejected by the safety classifier. It is a
// terminal classification outcome, not a failure; callers must not
// retry or proceed to retrieval.
var ErrBlocked = errors.New("query blocked by safety classifier")

// BlockedError carries the verdict for a blocked query so the caller
// can tell the user which category triggered.
type BlockedError struct {
	Verdict safety.Verdict
}

func (e *BlockedError) Error() string {
	if e.Verdict.Subcategory != "" {
		return fmt.Sprintf("query blocked: %s (%s)", e.Verdict.Category, e.Verdict.Subcategory)
	}
	return fmt.Sprintf("query blocked: %s", e.Verdict.Category)
}

func (e *BlockedError) Unwrap() error { return ErrBlocked }

// Retriever is the retrieval stage consumed by the pipeline.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]retriever.Candidate, error)
}

// Generator is the generation stage consumed by the pipeline.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Answer is the full result of one query.
type Answer struct {
	ID    string `json:"id"`
	Query string `json:"query"`
	Mode  Mode   `json:"mode"`
	Text  string `json:"answer"`

	// Sources are the retrieved candidates in rank order. ShowSources is
	// false when none cleared the display threshold, so callers can hide
	// marginal matches.
	Sources     []retriever.Candidate `json:"sources"`
	ShowSources bool                  `json:"show_sources"`
}

// Service runs queries through the full pipeline. Stages within one
// request are strictly ordered; independent requests may run
// concurrently since the service holds no per-request state.
type Service struct {
	classifier safety.Classifier
	retriever  Retriever
	generator  Generator
	gate       *Gate
	logger     *zap.Logger
	tracer     trace.Tracer
}

// NewService creates a pipeline service.
func NewService(classifier safety.Classifier, ret Retriever, gen Generator, gate *Gate, logger *zap.Logger) (*Service, error) {
	if classifier == nil {
		return nil, fmt.Errorf("safety classifier is required")
	}
	if ret == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("relevance gate is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		classifier: classifier,
		retriever:  ret,
		generator:  gen,
		gate:       gate,
		logger:     logger,
		tracer:     otel.Tracer(instrumentationName),
	}, nil
}

// CheckSafety classifies a query without running the pipeline.
func (s *Service) CheckSafety(query string) safety.Verdict {
	return s.classifier.Check(query)
}

// Answer runs the query through safety check, retrieval, the relevance
// gate, prompt composition and generation. A blocked query returns a
// *BlockedError before any retrieval happens. Collaborator failures are
// propagated with the stage wrapped in, never converted to an empty
// result.
func (s *Service) Answer(ctx context.Context, query string, topK int) (*Answer, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.answer")
	defer span.End()

	start := time.Now()
	verdict := s.classifier.Check(query)
	stageDuration.WithLabelValues("safety").Observe(time.Since(start).Seconds())

	if !verdict.Allowed {
		blockedTotal.WithLabelValues(verdict.Category).Inc()
		span.SetAttributes(attribute.String("safety.category", verdict.Category))
		s.logger.Info("query blocked",
			zap.String("category", verdict.Category),
			zap.String("subcategory", verdict.Subcategory))
		return nil, &BlockedError{Verdict: verdict}
	}

	start = time.Now()
	candidates, err := s.retriever.Retrieve(ctx, query, topK)
	stageDuration.WithLabelValues("retrieval").Observe(time.Since(start).Seconds())
	if err != nil {
		failuresTotal.WithLabelValues("retrieval").Inc()
		return nil, fmt.Errorf("retrieval: %w", err)
	}
	candidatesRetrieved.Observe(float64(len(candidates)))

	mode := s.gate.Classify(candidates)
	span.SetAttributes(
		attribute.String("pipeline.mode", string(mode)),
		attribute.Int("pipeline.candidates", len(candidates)),
	)

	prompt := Compose(query, mode, candidates)

	start = time.Now()
	text, err := s.generator.Generate(ctx, prompt)
	stageDuration.WithLabelValues("generation").Observe(time.Since(start).Seconds())
	if err != nil {
		failuresTotal.WithLabelValues("generation").Inc()
		return nil, fmt.Errorf("generation: %w", err)
	}

	queriesTotal.WithLabelValues(string(mode)).Inc()
	s.logger.Debug("query answered",
		zap.String("mode", string(mode)),
		zap.Int("candidates", len(candidates)))

	return &Answer{
		ID:          uuid.NewString(),
		Query:       query,
		Mode:        mode,
		Text:        text,
		Sources:     candidates,
		ShowSources: s.gate.ShowSources(candidates),
	}, nil
}
