package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "charlad",
		Usage:   "topic moderation daemon (keeps the charla on track)",
		Version: versioninfo.Short(),
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the moderation daemon",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "telegram-token",
			Usage:    "bot credential from BotFather",
			Required: true,
			EnvVars:  []string{"TELEGRAM_TOKEN", "CHARLA_TELEGRAM_TOKEN"},
		},
		&cli.StringSliceFlag{
			Name:    "keyword",
			Usage:   "watched term (repeatable); case-insensitive substring match",
			Value:   cli.NewStringSlice("kerem", "bürsin", "bursin", "çarpıntı", "çarpinti", "inombrable"),
			EnvVars: []string{"CHARLA_KEYWORDS"},
		},
		&cli.IntFlag{
			Name:    "threshold",
			Usage:   "watched messages allowed per chat before suppression",
			Value:   50,
			EnvVars: []string{"CHARLA_THRESHOLD"},
		},
		&cli.DurationFlag{
			Name:    "cooldown",
			Usage:   "how long a chat stays suppressed after the threshold",
			Value:   3 * time.Hour,
			EnvVars: []string{"CHARLA_COOLDOWN"},
		},
		&cli.DurationFlag{
			Name:    "window",
			Usage:   "idle period after which an unblocked count decays to zero (0 disables)",
			Value:   0,
			EnvVars: []string{"CHARLA_WINDOW"},
		},
		&cli.DurationFlag{
			Name:    "pre-delete-delay",
			Usage:   "wait before deleting a suppressed message",
			Value:   0,
			EnvVars: []string{"CHARLA_PRE_DELETE_DELAY"},
		},
		&cli.StringFlag{
			Name:    "state-file",
			Usage:   "path of the durable counter state",
			Value:   "data/charlad/counters.json",
			EnvVars: []string{"CHARLA_STATE_FILE"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection for counter state, instead of the state file",
			EnvVars: []string{"CHARLA_REDIS_URL"},
		},
		&cli.IntFlag{
			Name:    "poll-timeout",
			Usage:   "long-poll duration in seconds for fetching updates",
			Value:   30,
			EnvVars: []string{"CHARLA_POLL_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3989",
			EnvVars: []string{"CHARLA_METRICS_LISTEN"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := context.Background()
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		// Enable OTLP HTTP exporter
		// For relevant environment variables:
		// https://pkg.go.dev/go.opentelemetry.io/otel/exporters/otlp/otlptrace#readme-environment-variables
		// At a minimum, you need to set
		// OTEL_EXPORTER_OTLP_ENDPOINT=http://localhost:4318
		if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" {
			slog.Info("setting up trace exporter", "endpoint", ep)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			exp, err := otlptracehttp.New(ctx)
			if err != nil {
				log.Fatal("failed to create trace exporter", "error", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := exp.Shutdown(ctx); err != nil {
					slog.Error("failed to shutdown trace exporter", "error", err)
				}
			}()

			tp := tracesdk.NewTracerProvider(
				tracesdk.WithBatcher(exp),
				tracesdk.WithResource(resource.NewWithAttributes(
					semconv.SchemaURL,
					semconv.ServiceNameKey.String("charlad"),
					attribute.String("env", os.Getenv("ENVIRONMENT")),         // DataDog
					attribute.String("environment", os.Getenv("ENVIRONMENT")), // Others
					attribute.Int64("ID", 1),
				)),
			)
			otel.SetTracerProvider(tp)
		}

		srv, err := NewServer(
			Config{
				Token:       cctx.String("telegram-token"),
				Keywords:    cctx.StringSlice("keyword"),
				Threshold:   cctx.Int("threshold"),
				Cooldown:    cctx.Duration("cooldown"),
				Window:      cctx.Duration("window"),
				DeleteDelay: cctx.Duration("pre-delete-delay"),
				StateFile:   cctx.String("state-file"),
				RedisURL:    cctx.String("redis-url"),
				PollTimeout: cctx.Int("poll-timeout"),
				Logger:      logger,
			},
		)
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		if err := srv.RunConsumer(ctx); err != nil {
			return fmt.Errorf("failed to run moderation daemon: %w", err)
		}
		return nil
	},
}
