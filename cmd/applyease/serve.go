package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/answers"
	"github.com/jonathan/applyease/internal/config"
	"github.com/jonathan/applyease/internal/db"
	"github.com/jonathan/applyease/internal/llm"
	"github.com/jonathan/applyease/internal/server"
	"github.com/jonathan/applyease/internal/server/ratelimit"
	"github.com/jonathan/applyease/internal/tailoring"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes similarity, matching, tailoring and rendering endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	deps := server.Deps{
		Auth:    server.NewJWTService(jwtCfg),
		Limiter: ratelimit.NewLimiter(ratelimit.LoadConfig(os.Getenv)),
		Logger:  log,
	}

	if cfg.Database.URL != "" {
		database, err := connectDatabase(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer database.Close()
		deps.Store = database
	} else {
		log.Warn("no database configured, per-user routes will answer 503")
	}

	scorer, closeCache, err := newScorer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeCache() }()
	deps.Scorer = scorer

	gen, err := newGenerator(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = llm.Close(gen) }()
	deps.Tailorer = tailoring.New(gen, cfg.TailoringOptions(), log)
	deps.Answers = answers.NewComposer(gen, cfg.Tailoring.ClipChars, log)

	srv := server.New(deps, server.Options{
		Port:                     cfg.Server.Port,
		MatchLimit:               cfg.Matching.Limit,
		Geometry:                 cfg.Geometry(),
		MaxConcurrentGenerations: cfg.Server.MaxConcurrentGenerations,
		AllowedOrigins:           cfg.Server.AllowedOrigins,
	})
	log.Info("starting applyease", zap.String("version", version), zap.Int("port", cfg.Server.Port))
	return srv.Start(ctx)
}

func connectDatabase(ctx context.Context, url string) (*db.DB, error) {
	database, err := db.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return database, nil
}
