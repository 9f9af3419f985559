// cmd/server/cmd_serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/repuestos-py/marketplace/internal/blob"
	"github.com/repuestos-py/marketplace/internal/cart"
	"github.com/repuestos-py/marketplace/internal/config"
	"github.com/repuestos-py/marketplace/internal/database"
	"github.com/repuestos-py/marketplace/internal/middleware"
	"github.com/repuestos-py/marketplace/internal/router"
)

const shutdownTimeout = 30 * time.Second

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if serveMigrate {
			if err := migrate(ctx, cfg); err != nil {
				return err
			}
		}

		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "run schema migrations before serving")
}

func serve(ctx context.Context, cfg *config.Config) error {
	st, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logrus.WithError(err).Warn("Failed to close document store")
		}
	}()

	blobs, err := blob.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize blob store: %w", err)
	}

	slots, rdb, err := cartSlots(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close redis client")
			}
		}()
	}
	sessions := cart.NewSessions(slots, cart.WithMaxQuantity(cfg.Policy.CartMaxQuantity))
	idle := time.Duration(cfg.Policy.CartIdleMinutes) * time.Minute
	go sessions.Run(ctx, time.Minute, idle)

	limiters := middleware.NewRateLimiters()
	go limiters.Run(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.Initialize(cfg, router.Dependencies{
		Store:    st,
		Blobs:    blobs,
		Sessions: sessions,
		Limiters: limiters,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":      cfg.Server.Port,
			"doc_store": cfg.DocStore.Driver,
			"storage":   cfg.Storage.Driver,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logrus.Info("Server exited")
	return nil
}

// cartSlots persists carts in Redis when enabled and in process memory
// otherwise. The returned client is nil without Redis; the caller closes it.
func cartSlots(ctx context.Context, cfg config.RedisConfig) (cart.SlotFactory, *redis.Client, error) {
	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if rdb == nil {
		logrus.Warn("Redis disabled; carts are kept in process memory")
		return cart.NewMemoryBackend().Slots(), nil, nil
	}
	return cart.RedisSlots(rdb, time.Duration(cfg.CartTTL)*time.Hour), rdb, nil
}
