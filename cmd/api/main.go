package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"charitychain/internal/authz"
	"charitychain/internal/contract"
	"charitychain/internal/http/handlers"
	"charitychain/internal/http/httpapi"
	"charitychain/internal/infra"
	"charitychain/internal/ledger"
	"charitychain/internal/ledger/memledger"
	"charitychain/internal/ledger/pgledger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	var backend ledger.Invoker
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()

		store := pgledger.New(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare ledger schema")
		}
		backend = store
		logger.Info().Msg("using postgres ledger backend")
	} else {
		backend = memledger.New()
		logger.Warn().Msg("DATABASE_URL not set, using in-memory ledger (state is not durable)")
	}

	svc := contract.New(authz.Default(cfg.OracleIdentity), logger)
	app := handlers.NewApp(backend, svc, logger)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
