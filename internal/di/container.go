package di

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskagent/internal/application/port/input"
	"taskagent/internal/application/port/output"
	"taskagent/internal/infrastructure/browser/rod"
	"taskagent/internal/infrastructure/llm"
	"taskagent/internal/infrastructure/logger"
	"taskagent/internal/infrastructure/screenshots"
	"taskagent/internal/infrastructure/store/memory"
	"taskagent/internal/infrastructure/store/postgres"
	"taskagent/internal/usecase/runner"
	"taskagent/internal/usecase/worker"
)

type Config struct {
	Logger logger.Config

	// DatabaseURL selects the postgres task store; empty keeps tasks in
	// process memory.
	DatabaseURL string

	ScreenshotDir string
	Workers       int

	SystemPromptTemplate string
	CompletionPhrases    []string
}

type Container struct {
	Logger     output.LoggerPort
	Store      output.TaskStorePort
	Shots      output.ScreenshotStorePort
	TaskRunner input.TaskRunner
	Runner     *runner.Runner
	Pool       *worker.Pool

	pgPool *pgxpool.Pool
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c := &Container{Logger: log}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Close()
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		store, err := postgres.New(ctx, pool, log.WithField("component", "store"))
		if err != nil {
			pool.Close()
			log.Close()
			return nil, fmt.Errorf("failed to create task store: %w", err)
		}
		c.pgPool = pool
		c.Store = store
	} else {
		c.Store = memory.New()
	}

	shots, err := screenshots.NewFileStore(cfg.ScreenshotDir)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create screenshot store: %w", err)
	}
	c.Shots = shots

	r := runner.New(
		rod.NewFactory(log.WithField("component", "browser")),
		llm.NewFactory(log.WithField("component", "llm")),
		c.Store,
		shots,
		log,
		runner.Config{
			SystemPromptTemplate: cfg.SystemPromptTemplate,
			CompletionPhrases:    cfg.CompletionPhrases,
		},
	)
	c.Runner = r
	c.TaskRunner = r

	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	c.Pool = worker.NewPool(r, log.WithField("component", "pool"), workers)

	return c, nil
}

func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Shutdown()
	}
	if c.pgPool != nil {
		c.pgPool.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
