package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/josinaldojr/assistant-rag/internal/config"
	"github.com/josinaldojr/assistant-rag/internal/db"
	apphttp "github.com/josinaldojr/assistant-rag/internal/http"
	"github.com/josinaldojr/assistant-rag/internal/llm"
	"github.com/josinaldojr/assistant-rag/internal/logging"
	"github.com/josinaldojr/assistant-rag/internal/rag"
)

// provider is what both LLM backends offer: generation and embeddings.
type provider interface {
	rag.LLMClient
	rag.EmbeddingsClient
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("llm provider ready",
		zap.String("provider", client.Provider()),
		zap.String("model", client.Model()))

	store, closeStore, err := openStore(ctx, cfg, client)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("vector store ready", zap.String("kind", cfg.VectorStore))

	svc := rag.NewService(store, client, logger)
	router := apphttp.NewRouter(apphttp.NewHandler(svc, logger), cfg.AllowedOrigins)

	addr := ":" + cfg.Port
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	logger.Info("api listening", zap.String("addr", addr))
	return serve(ctx, newServer(router), ln, logger)
}

const shutdownTimeout = 5 * time.Second

// newServer keeps request contexts independent of the process signal
// context, so Shutdown can drain in-flight requests.
func newServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serve runs srv on ln until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newProvider(ctx context.Context, cfg *config.Config) (provider, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		c, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		c, err := llm.NewMistralClient(llm.MistralConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// openStore returns the configured store and a func releasing it.
func openStore(ctx context.Context, cfg *config.Config, emb rag.EmbeddingsClient) (rag.VectorStore, func(), error) {
	switch cfg.VectorStore {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := rag.NewPgStore(pool, emb)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	case config.StoreMemory:
		return rag.NewMemoryStore(emb), func() {}, nil
	default:
		store, err := rag.OpenSQLiteStore(ctx, cfg.PersistDir, emb)
		if err != nil {
			return nil, nil, err
		}
		return store, closer(store), nil
	}
}

func closer(c io.Closer) func() {
	return func() { _ = c.Close() }
}
