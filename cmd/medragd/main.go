// Medragd answers natural-language medical questions over a fixed
// corpus of patient records.
//
// The daemon loads an offline-built corpus bundle at startup, builds
// the in-memory search indexes, and serves the answer pipeline over
// HTTP.
//
// Usage:
//
//	# Start with the default config path (~/.config/medrag/config.yaml)
//	medragd
//
//	# Explicit config file and environment overrides
//	MEDRAG_LLM_API_KEY=... medragd -config /etc/medrag/config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/medrag/internal/config"
	"github.com/fyrsmithlabs/medrag/internal/corpus"
	"github.com/fyrsmithlabs/medrag/internal/embeddings"
	httpapi "github.com/fyrsmithlabs/medrag/internal/http"
	"github.com/fyrsmithlabs/medrag/internal/index"
	"github.com/fyrsmithlabs/medrag/internal/llm"
	"github.com/fyrsmithlabs/medrag/internal/logging"
	"github.com/fyrsmithlabs/medrag/internal/pipeline"
	"github.com/fyrsmithlabs/medrag/internal/retriever"
	"github.com/fyrsmithlabs/medrag/internal/safety"
	"github.com/fyrsmithlabs/medrag/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/medrag/config.yaml)")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  medragd           Start the medrag daemon\n")
			fmt.Fprintf(os.Stderr, "  medragd version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("medragd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the medrag daemon and blocks until the context is
// cancelled. Startup is fail-fast: a missing or inconsistent corpus
// bundle aborts before the server accepts a single request.
func run(ctx context.Context, configPath string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	logger.Info("Starting medragd",
		zap.Int("port", cfg.Server.Port),
		zap.String("strategy", string(cfg.Retrieval.Strategy)),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

	tel, err := telemetry.New(ctx, &cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()
	if tel.Degraded() {
		logger.Warn("telemetry degraded, tracing disabled",
			zap.String("endpoint", cfg.Telemetry.Endpoint))
	}

	deps, err := initDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	logger.Info("Corpus loaded",
		zap.Int("documents", deps.bundle.Len()),
		zap.Int("dimension", deps.bundle.Dimension))

	gate, err := pipeline.NewGate(cfg.Gate)
	if err != nil {
		return fmt.Errorf("failed to create relevance gate: %w", err)
	}

	svc, err := pipeline.NewService(deps.classifier, deps.retriever, deps.model, gate, logger)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	srv, err := httpapi.NewServer(svc, logger, &httpapi.Config{
		Host: "0.0.0.0",
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	logger.Info("Server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port)),
		zap.String("metrics_endpoint", "/metrics"),
		zap.String("answer_endpoint", "/api/v1/answer"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// dependencies holds the loaded corpus and the pipeline collaborators.
type dependencies struct {
	bundle     *corpus.Bundle
	embedder   embeddings.Provider
	lexical    *index.Lexical
	retriever  *retriever.Retriever
	classifier safety.Classifier
	model      llm.Model
}

// Close releases infrastructure resources.
func (d *dependencies) Close() {
	if d.embedder != nil {
		_ = d.embedder.Close()
	}
	if d.lexical != nil {
		_ = d.lexical.Close()
	}
}

// initDependencies loads the corpus bundle, builds the indexes, and
// constructs the retrieval and generation collaborators.
func initDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*dependencies, error) {
	bundle, err := corpus.Load(cfg.Corpus)
	if err != nil {
		return nil, err
	}

	deps := &dependencies{bundle: bundle}

	var vector *index.Flat
	if cfg.Retrieval.Strategy != retriever.StrategyLexical {
		vector, err = index.NewFlat(bundle.Embeddings)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("building vector index: %w", err)
		}

		// The Gemini provider needs the bundle dimension to request
		// matching output dimensionality.
		if cfg.Embeddings.Provider == "gemini" && cfg.Embeddings.Gemini.Dimension == 0 {
			cfg.Embeddings.Gemini.Dimension = bundle.Dimension
		}

		deps.embedder, err = embeddings.NewProvider(ctx, cfg.Embeddings)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("creating embedding provider: %w", err)
		}

		if dim := deps.embedder.Dimension(); dim != bundle.Dimension {
			deps.Close()
			return nil, fmt.Errorf("embedding dimension mismatch: provider produces %d, bundle has %d", dim, bundle.Dimension)
		}

		logger.Info("Embedding provider initialized",
			zap.String("provider", cfg.Embeddings.Provider),
			zap.Int("dimension", deps.embedder.Dimension()))
	}

	if cfg.Retrieval.Strategy == retriever.StrategyLexical || cfg.Retrieval.Strategy == retriever.StrategyHybrid {
		deps.lexical, err = index.NewLexical(bundle.Documents)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("building lexical index: %w", err)
		}
		logger.Info("Lexical index built", zap.Int("documents", bundle.Len()))
	}

	var embedder embeddings.Embedder
	if deps.embedder != nil {
		embedder = deps.embedder
	}
	var vectorSearcher retriever.VectorSearcher
	if vector != nil {
		vectorSearcher = vector
	}
	var lexicalSearcher retriever.LexicalSearcher
	if deps.lexical != nil {
		lexicalSearcher = deps.lexical
	}

	deps.retriever, err = retriever.New(cfg.Retrieval, embedder, vectorSearcher, lexicalSearcher, bundle.Documents)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("creating retriever: %w", err)
	}

	deps.classifier, err = safety.New(nil)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("creating safety classifier: %w", err)
	}

	deps.model, err = llm.NewGemini(ctx, cfg.LLM, logger)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("creating generative model: %w", err)
	}

	return deps, nil
}
