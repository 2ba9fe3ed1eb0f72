package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/seabird-social/seabird/internal/config"
	"github.com/seabird-social/seabird/internal/infra/database"
	"github.com/seabird-social/seabird/internal/infra/gateway"
	"github.com/seabird-social/seabird/internal/infra/repository"
	"github.com/seabird-social/seabird/internal/infra/session"
	"github.com/seabird-social/seabird/internal/infra/verifier"
	"github.com/seabird-social/seabird/internal/present/rest"
	"github.com/seabird-social/seabird/internal/present/rest/middleware"
	"github.com/seabird-social/seabird/internal/usecase"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	instance := cfg.InstanceProfile()

	if cfg.Server.EnableTrace {
		cleanup, err := setupTraceProvider(cfg.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up trace provider", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer cleanup()
	}

	db, err := database.NewPostgres(cfg.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(cfg.Server.RedisAddr, "", cfg.Server.RedisDB)

	actorRepo := repository.NewActorRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)

	if err := actorRepo.EnsureInstanceActor(context.Background()); err != nil {
		slog.Error("failed to ensure instance actor", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sessions := session.NewStore(rdb)
	profiles := gateway.NewProfileGateway(cfg.Federation.FetchTimeout())

	credentialVerifier, err := verifier.New(verifier.Config{
		RPDisplayName: cfg.WebAuthn.RPDisplayName,
		RPID:          cfg.WebAuthn.RPID,
		RPOrigins:     cfg.WebAuthn.RPOrigins,
	})
	if err != nil {
		slog.Error("failed to set up credential verifier", slog.String("error", err.Error()))
		os.Exit(1)
	}

	actorUsecase := usecase.NewActorUsecase(actorRepo)
	noteUsecase := usecase.NewNoteUsecase(noteRepo)
	ceremonyUsecase := usecase.NewCeremonyUsecase(actorRepo, credentialRepo, credentialVerifier, sessions)
	inboxUsecase := usecase.NewInboxUsecase(instance, actorUsecase, noteRepo, profiles)

	handler := rest.NewHandler(instance, actorUsecase, noteUsecase, ceremonyUsecase, inboxUsecase, sessions)
	sessionMiddleware := middleware.NewSessionMiddleware(sessions)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if cfg.Server.EnableTrace {
		e.Use(otelecho.Middleware(instance.FQDN))
	}

	handler.RegisterRoutes(e, sessionMiddleware)

	e.Logger.Fatal(e.Start(cfg.Server.Listen))
}

func setupTraceProvider(endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("seabird"),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			slog.Error("failed to shut down trace provider", slog.String("error", err.Error()))
		}
	}, nil
}
