package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/horizonte-social/charla/telegram"
	"github.com/horizonte-social/charla/topicmod"
	"github.com/horizonte-social/charla/topicmod/admingate"
	"github.com/horizonte-social/charla/topicmod/counterstore"
	"github.com/horizonte-social/charla/topicmod/keyword"
	"github.com/horizonte-social/charla/topicmod/rategate"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	logger      *slog.Logger
	client      *telegram.Client
	engine      *topicmod.Engine
	pollTimeout int
}

type Config struct {
	Token       string
	Keywords    []string
	Threshold   int
	Window      time.Duration
	Cooldown    time.Duration
	DeleteDelay time.Duration
	StateFile   string
	RedisURL    string
	PollTimeout int
	Logger      *slog.Logger
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	if config.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	if config.Threshold < 1 {
		return nil, fmt.Errorf("threshold must be at least 1")
	}
	if config.Cooldown <= 0 {
		return nil, fmt.Errorf("cooldown must be positive")
	}

	client := telegram.NewClient(config.Token)

	var counters counterstore.CounterStore
	if config.RedisURL != "" {
		cnt, err := counterstore.NewRedisCounterStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis counterstore: %w", err)
		}
		counters = cnt
	} else {
		cnt, err := counterstore.NewFileCounterStore(config.StateFile, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing file counterstore: %w", err)
		}
		counters = cnt
	}

	sink := &telegramSink{client: client}
	engine := &topicmod.Engine{
		Logger:  logger,
		Matcher: keyword.NewMatcher(config.Keywords),
		Gate: &rategate.Gate{
			Threshold: config.Threshold,
			Window:    config.Window,
			Cooldown:  config.Cooldown,
			Counters:  counters,
		},
		Admins:      admingate.NewGate(&telegramMembers{client: client}, logger),
		Sink:        sink,
		DeleteDelay: config.DeleteDelay,
	}

	s := &Server{
		logger:      logger,
		client:      client,
		engine:      engine,
		pollTimeout: config.PollTimeout,
	}

	return s, nil
}

// checkIdentity verifies the bot credential and logs who we are.
func (s *Server) checkIdentity(ctx context.Context) error {
	me, err := s.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("verifying bot token: %w", err)
	}
	s.logger.Info("connected to telegram", "username", me.Username, "botID", me.ID)
	return nil
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}
