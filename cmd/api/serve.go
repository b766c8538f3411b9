package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/finsight/internal/application"
	appai "github.com/bryanwahyu/finsight/internal/application/ai"
	appauth "github.com/bryanwahyu/finsight/internal/application/auth"
	appcompare "github.com/bryanwahyu/finsight/internal/application/comparisons"
	appprefs "github.com/bryanwahyu/finsight/internal/application/preferences"
	appprojects "github.com/bryanwahyu/finsight/internal/application/projects"
	"github.com/bryanwahyu/finsight/internal/config"
	domainai "github.com/bryanwahyu/finsight/internal/domain/ai"
	"github.com/bryanwahyu/finsight/internal/domain/preferences"
	"github.com/bryanwahyu/finsight/internal/domain/projects"
	"github.com/bryanwahyu/finsight/internal/infra/ai/gemini"
	"github.com/bryanwahyu/finsight/internal/infra/ai/openai"
	"github.com/bryanwahyu/finsight/internal/infra/ai/prompt"
	"github.com/bryanwahyu/finsight/internal/infra/httpserver"
	"github.com/bryanwahyu/finsight/internal/infra/spreadsheet"
	"github.com/bryanwahyu/finsight/internal/infra/storage"
	"github.com/bryanwahyu/finsight/internal/middleware"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(logger.WithContext(ctx), cfg, logger)
		},
	}
}

// providers builds the dispatch table once. A model whose key is missing is
// left out, so selecting it fails as an unsupported model.
func providers(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (map[preferences.ModelType]domainai.Completer, error) {
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	table := map[preferences.ModelType]domainai.Completer{}

	if cfg.AI.GoogleAPIKey != "" {
		g, err := gemini.NewClient(ctx, cfg.AI.GoogleAPIKey, string(preferences.ModelGemini), gemini.Options{HTTPClient: httpClient})
		if err != nil {
			return nil, err
		}
		table[preferences.ModelGemini] = g
	} else {
		logger.Warn().Str("model", string(preferences.ModelGemini)).Msg("GOOGLE_API_KEY not set, model disabled")
	}

	if cfg.AI.GroqAPIKey != "" {
		base := cfg.AI.GroqBaseURL
		if base == "" {
			base = openai.GroqBaseURL
		}
		table[preferences.ModelGemma] = openai.NewClient(cfg.AI.GroqAPIKey, base, string(preferences.ModelGemma), httpClient)
	} else {
		logger.Warn().Str("model", string(preferences.ModelGemma)).Msg("GROQ_API_KEY not set, model disabled")
	}
	return table, nil
}

func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	disk, err := storage.NewDisk(cfg.Uploads.Dir)
	if err != nil {
		return err
	}
	health := map[string]middleware.HealthChecker{"uploads": disk}
	if st.db != nil {
		health["database"] = &middleware.DatabaseHealthChecker{DB: st.db}
	}

	var mirror projects.Mirror
	if cfg.Minio.Enabled {
		store, err := storage.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init error: %w", err)
		}
		mirror = store
		health["minio"] = store
	}

	table, err := providers(ctx, cfg, logger)
	if err != nil {
		return err
	}
	dispatcher := appai.NewService(table, cfg.AI.MaxTokens)

	metrics := middleware.NewMetrics()
	limiter := middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	defer limiter.Close()

	clock := application.SystemClock{}
	extractor := &spreadsheet.Extractor{}
	prompts := prompt.Builder{}

	handler := httpserver.NewRouter(httpserver.Deps{
		Projects: &appprojects.Service{
			Repo:      st.projects,
			Prefs:     st.preferences,
			Files:     disk,
			Mirror:    mirror,
			Extractor: extractor,
			Prompts:   prompts,
			AI:        dispatcher,
			Failures:  st.failures,
			Metrics:   metrics,
			Clock:     clock,
		},
		Comparisons: &appcompare.Service{
			Repo:      st.comparisons,
			Projects:  st.projects,
			Prefs:     st.preferences,
			Extractor: extractor,
			Prompts:   prompts,
			AI:        dispatcher,
			Failures:  st.failures,
			Metrics:   metrics,
			Clock:     clock,
		},
		Preferences: &appprefs.Service{Repo: st.preferences, Clock: clock},
		Auth: &appauth.Service{
			Users:  st.users,
			Secret: []byte(cfg.Auth.JWTSecret),
			TTL:    cfg.Auth.TokenTTL,
			Clock:  clock,
		},
		Logger:      logger,
		Metrics:     metrics,
		Limiter:     limiter,
		Health:      health,
		CORSOrigins: cfg.Server.CORSOrigins,
		MaxUpload:   cfg.Uploads.MaxSize,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  2 * cfg.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
