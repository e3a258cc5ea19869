package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shashank-1177/SBFood/cache"
	"github.com/Shashank-1177/SBFood/config"
	"github.com/Shashank-1177/SBFood/events"
	"github.com/Shashank-1177/SBFood/handlers"
	"github.com/Shashank-1177/SBFood/middleware"
	"github.com/Shashank-1177/SBFood/routes"
	"github.com/Shashank-1177/SBFood/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()
	log := a.log

	if err := config.Migrate(a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	var c cache.Cache = cache.Noop{}
	if addr := a.cfg.Redis.Addr; addr != "" {
		rc, err := cache.Dial(ctx, addr, a.cfg.Redis.Password, a.cfg.Redis.DB, a.cfg.Redis.TTL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without cache")
		} else {
			defer rc.Close()
			c = rc
			checks["redis"] = rc.Ping
			log.Info().Str("addr", addr).Msg("redis cache enabled")
		}
	}

	var pub events.Publisher = events.Nop{}
	if brokers := a.cfg.Kafka.Brokers; len(brokers) > 0 {
		pub = events.NewKafkaPublisher(brokers, a.cfg.Kafka.Topic)
		log.Info().Strs("brokers", brokers).Str("topic", a.cfg.Kafka.Topic).Msg("order events enabled")
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Warn().Err(err).Msg("closing event publisher")
		}
	}()

	svc := services.New(a.db, services.Options{
		Cache:     c,
		Events:    pub,
		Logger:    log,
		PublicURL: a.cfg.Public.URL,
	})
	tokens := middleware.NewTokens(a.cfg.JWT.Secret, a.cfg.JWT.TTL)
	h := handlers.New(svc, tokens, handlers.Options{
		Development: a.cfg.IsDevelopment(),
		Checks:      checks,
	})

	if !a.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := routes.NewRouter(log, a.cfg.CORS.Origin, h, tokens)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", a.cfg.App.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
