package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	logx "github.com/agent-poc-v1/server/pkg/logger"
	pkgredis "github.com/agent-poc-v1/server/pkg/redis"

	"github.com/agent-poc-v1/server/internal/agent"
	"github.com/agent-poc-v1/server/internal/agent/graph"
	"github.com/agent-poc-v1/server/internal/agent/model"
	"github.com/agent-poc-v1/server/internal/agent/repo"
	"github.com/agent-poc-v1/server/internal/core"
	"github.com/agent-poc-v1/server/internal/data"
	"github.com/agent-poc-v1/server/internal/server"
)

// AppConfig defines all configurable parameters for the service, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis  pkgredis.Config
	Server server.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Response     model.ResponseModelConfig
	Prompt       model.AgentPromptConfig
	Conversation model.ConversationConfig
	Data         model.DataConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	rdb, err := envCfg.Redis.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis")

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("ttl", envCfg.Conversation.TTL).Msg("Invalid CONVERSATION_TTL")
	}
	maxAge, err := time.ParseDuration(envCfg.Conversation.MaxAge)
	if err != nil {
		logx.Fatal().Err(err).Str("max_age", envCfg.Conversation.MaxAge).Msg("Invalid CONVERSATION_MAX_AGE")
	}

	conversationRepo := repo.NewRedisConversationRepository(rdb, ttl)
	store := data.NewStore(envCfg.Data.Dir)

	runner, err := graph.BuildChatGraph(ctx, graph.Config{
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		ResponseModel:    envCfg.Response,
		Prompt:           envCfg.Prompt,
		Conversation:     envCfg.Conversation,
		ConversationRepo: conversationRepo,
		DataStore:        store,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build chat graph")
	}

	svc := agent.NewService(runner, conversationRepo)
	srv := server.New(envCfg.Server, svc, maxAge)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("HTTP server failed")
		}
	case sig := <-sigCh:
		logx.Info().Str("signal", sig.String()).Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logx.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}
