package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "net/http/pprof"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "github.com/taldoflemis/jollof/ordini/docs"
	"github.com/taldoflemis/jollof/pacchetto"
	"github.com/taldoflemis/jollof/pacchetto/auth"
	"github.com/taldoflemis/jollof/pacchetto/telemetry"
)

// @title						Ordini
// @version						1.0
// @description					Order lifecycle API of the jollof delivery platform.
// @host						localhost:8080
// @BasePath					/
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description					Type "Bearer" followed by a space and JWT token.
func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()
	retcode := 0
	defer func() {
		os.Exit(retcode)
	}()

	slog.InfoContext(ctx, "Launching ordini")

	slog.InfoContext(ctx, "Loading config")
	settings, err := LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("err", err))
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Setting up opentelemetry")
	otelShutdown, err := telemetry.SetupOTelSDK(ctx, settings.App, settings.OpenTelemetry)
	if err != nil {
		slog.Error("failed to setup telemetry", slog.Any("err", err))
		retcode = 1
		return
	}

	defer func() {
		err = errors.Join(err, otelShutdown(context.Background()))
		if err != nil {
			slog.ErrorContext(
				ctx,
				"failed to shutdown opentelemetry providers",
				slog.Any("err", err),
			)
			retcode = 1
		}
	}()

	slog.InfoContext(ctx, "Opening database", slog.String("driver", settings.Database.Driver))
	db, err := settings.Database.Open(&gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to open database", slog.Any("err", err))
		retcode = 1
		return
	}

	store := NewGormStore(db)
	if err = store.Migrate(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to migrate database", slog.Any("err", err))
		retcode = 1
		return
	}

	if settings.Ordini.SeedDemoData {
		if err = Seed(ctx, db); err != nil {
			slog.ErrorContext(ctx, "failed to seed database", slog.Any("err", err))
			retcode = 1
			return
		}
	}

	slog.InfoContext(ctx, "Connecting to NATS server")
	nc, err := settings.Nats.GetNatsClient()
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to NATS server", slog.Any("err", err))
		retcode = 1
		return
	}
	defer nc.Drain()

	events, err := NewNATSEventPublisher(ctx, nc, settings.Nats.Stream, settings.Nats.Subject)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create event publisher", slog.Any("err", err))
		retcode = 1
		return
	}

	orderService, err := NewOrderService(store, events, settings.Ordini)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create order service", slog.Any("err", err))
		retcode = 1
		return
	}
	authenticator := auth.NewAuthenticator(settings.Auth)
	loginService := NewLoginService(store, authenticator)

	probeNats := func(ctx context.Context) error {
		if !nc.IsConnected() {
			return errors.New("NATS connection is not active")
		}
		return nil
	}

	slog.InfoContext(ctx, "Setting up health checker")
	health, err := healthgo.New(
		healthgo.WithComponent(healthgo.Component{
			Name:    settings.App.Name,
			Version: settings.App.Version,
		}),
		healthgo.WithChecks(
			healthgo.Config{Name: "database", Timeout: 2 * time.Second, Check: store.Ping},
			healthgo.Config{Name: "nats", Check: probeNats},
		),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create health checker", slog.Any("err", err))
		retcode = 1
		return
	}

	errChan := make(chan error, 2)

	slog.InfoContext(ctx, "Creating gRPC server")
	grpcServer, healthcheck := pacchetto.CreateGRPCServer(settings.GRPCServer)
	go pacchetto.WatchServingStatus(ctx, healthcheck,
		time.Duration(settings.GRPCServer.AsyncHealthIntervalInSeconds)*time.Second,
		func(ctx context.Context) error {
			return errors.Join(store.Ping(ctx), probeNats(ctx))
		},
	)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", settings.GRPCServer.Host, strconv.Itoa(settings.GRPCServer.Port)))
	if err != nil {
		slog.ErrorContext(ctx, "failed to listen", slog.Any("err", err))
		retcode = 1
		return
	}

	go func() {
		slog.InfoContext(ctx, "Starting gRPC server", slog.Any("addr", lis.Addr()))
		if err := grpcServer.Serve(lis); err != nil {
			errChan <- err
		}
	}()

	server := echo.New()
	NewMainHandler(server, settings, orderService, loginService, authenticator, health)
	server.GET("/swagger/*", echoSwagger.WrapHandler)
	pprof.Register(server)

	go func() {
		slog.InfoContext(ctx, "listening for requests", slog.String("ip", settings.HTTP.IP), slog.String("port", settings.HTTP.Port))
		errChan <- server.Start(fmt.Sprintf("%s:%s", settings.HTTP.IP, settings.HTTP.Port))
	}()

	select {
	case err = <-errChan:
		slog.ErrorContext(ctx, "error when running server", slog.Any("err", err))
		retcode = 1
	case <-ctx.Done():
		// Wait for first Signal arrives
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "failed to shutdown gracefully the server", slog.Any("err", err))
	}
	grpcServer.GracefulStop()
	slog.InfoContext(ctx, "ordini stopped")
}
