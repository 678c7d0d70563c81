package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/taldoflemis/jollof/pacchetto"
	"github.com/taldoflemis/jollof/pacchetto/auth"
	"github.com/taldoflemis/jollof/pacchetto/telemetry"
	_ "github.com/taldoflemis/jollof/radar/docs"
)

// @title						Radar
// @version						1.0
// @description					Live order feed of the jollof delivery platform.
// @host						localhost:8081
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

	slog.InfoContext(ctx, "Launching radar")

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

	slog.InfoContext(ctx, "Connecting to NATS server")
	nc, err := settings.Nats.GetNatsClient()
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to NATS server", slog.Any("err", err))
		retcode = 1
		return
	}
	defer nc.Drain()

	hub, err := NewHub(settings.Radar.SubscriberBuffer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create hub", slog.Any("err", err))
		retcode = 1
		return
	}

	forwarder, err := NewNATSForwarder(nc, settings.Nats.Stream, settings.Nats.Subject, settings.Radar.ReplayOnStart, hub)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create forwarder", slog.Any("err", err))
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Creating ordini gRPC client")
	ordiniConn, err := pacchetto.CreateGRPCClient(ctx, settings.Ordini)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create ordini client", slog.Any("err", err))
		retcode = 1
		return
	}
	defer ordiniConn.Close()

	slog.InfoContext(ctx, "Setting up health checker")
	health, err := healthgo.New(
		healthgo.WithComponent(healthgo.Component{
			Name:    settings.App.Name,
			Version: settings.App.Version,
		}),
		healthgo.WithChecks(
			healthgo.Config{
				Name: "nats",
				Check: func(ctx context.Context) error {
					if !nc.IsConnected() {
						return errors.New("NATS connection is not active")
					}
					return nil
				},
			},
			healthgo.Config{
				Name:      "ordini",
				Timeout:   2 * time.Second,
				SkipOnErr: true,
				Check: func(ctx context.Context) error {
					return pacchetto.CheckGRPCHealth(ctx, ordiniConn)
				},
			},
		),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create health checker", slog.Any("err", err))
		retcode = 1
		return
	}

	errChan := make(chan error, 2)

	go func() {
		if err := forwarder.Run(ctx); err != nil {
			errChan <- err
		}
	}()

	authenticator := auth.NewAuthenticator(settings.Auth)
	server := echo.New()
	NewMainHandler(server, settings, hub, authenticator, health)
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
	slog.InfoContext(ctx, "radar stopped")
}
