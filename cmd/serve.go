package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azafe/Bandidos-backend/app/controller"
	authgrpc "github.com/azafe/Bandidos-backend/app/grpc"
	"github.com/azafe/Bandidos-backend/app/middleware"
	"github.com/azafe/Bandidos-backend/app/repository"
	"github.com/azafe/Bandidos-backend/app/service"
	"github.com/azafe/Bandidos-backend/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  `Start the HTTP (Echo) and gRPC servers exposing the password reset flow.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dialect, err := openDB(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	store := repository.NewPasswordResetStore(db, dialect)

	sender, queueClient, err := newEmailSender(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure email provider")
	}
	if queueClient != nil {
		defer queueClient.Close()
	}

	checks := map[string]controller.Pinger{"database": store}
	if cfg.Email.Provider == config.EmailProviderQueue {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to parse REDIS_URL")
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		checks["redis"] = controller.RedisPinger(rdb)
	}

	resetService := service.NewPasswordResetService(store, sender, cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runHTTPServer(gctx, cfg, resetService, controller.NewHealthController(checks))
	})
	if cfg.GRPC.Enabled {
		g.Go(func() error {
			return runGRPCServer(gctx, cfg, resetService)
		})
	}

	serveErr := g.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = resetService.Wait(drainCtx); err != nil {
		logrus.WithError(err).Warn("Abandoning pending reset emails")
	}

	if serveErr != nil {
		logrus.WithError(serveErr).Fatal("Server stopped with error")
	}
	logrus.Info("Servers stopped")
}

func newHTTPServer(cfg *config.Config, resetService *service.PasswordResetService, health *controller.HealthController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{cfg.HTTP.FrontendOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(echomiddleware.BodyLimit("64K"))

	e.GET("/health", health.Health)
	e.GET("/ready", health.Ready)

	resetController := controller.NewPasswordResetController(resetService)
	auth := e.Group("/auth", middleware.RateLimitByIP(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	auth.POST("/forgot-password", resetController.ForgotPassword)
	auth.POST("/reset-password", resetController.ResetPassword)

	return e
}

func runHTTPServer(ctx context.Context, cfg *config.Config, resetService *service.PasswordResetService, health *controller.HealthController) error {
	e := newHTTPServer(cfg, resetService, health)

	httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logrus.Info("Shutting down HTTP server")
	return e.Shutdown(shutdownCtx)
}

func runGRPCServer(ctx context.Context, cfg *config.Config, resetService *service.PasswordResetService) error {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return err
	}

	if cfg.GRPC.InternalAPIKey == "" {
		logrus.Warn("INTERNAL_API_KEY is not set, gRPC password reset service is unauthenticated")
	}
	grpcServer := authgrpc.NewServer(authgrpc.NewPasswordResetServer(resetService), cfg.GRPC.InternalAPIKey)

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down gRPC server")
		grpcServer.GracefulStop()
	}()

	logrus.WithField("addr", grpcAddr).Info("Starting gRPC server")
	return grpcServer.Serve(lis)
}
