package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maestro/hello-world-dag/internal/application"
	"github.com/maestro/hello-world-dag/internal/config"
	"github.com/maestro/hello-world-dag/internal/dags"
	"github.com/maestro/hello-world-dag/internal/domain"
	"github.com/maestro/hello-world-dag/internal/infrastructure/objectstore"
	"github.com/maestro/hello-world-dag/internal/logger"
	"github.com/maestro/hello-world-dag/internal/operators"
)

type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	registry *operators.Registry
	orch     *application.Orchestrator
}

func newApp(ctx context.Context, flags *rootFlags, out io.Writer) (*app, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flags.debug {
		level = "debug"
	}
	if flags.trace {
		level = "trace"
	}

	log, err := logger.New(out, level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	store, err := objectstore.NewS3Client(ctx, objectstore.S3Config{
		Region:          cfg.AWS.Region,
		Endpoint:        cfg.AWS.Endpoint,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		UsePathStyle:    cfg.AWS.UsePathStyle,
		MaxAttempts:     cfg.AWS.MaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	registry := operators.NewRegistry(operators.BreakerSettings{
		MaxRequests:  cfg.Breaker.MaxRequests,
		Interval:     cfg.Breaker.Interval,
		Timeout:      cfg.Breaker.Timeout,
		MinRequests:  cfg.Breaker.MinRequests,
		FailureRatio: cfg.Breaker.FailureRatio,
	})
	if err := operators.RegisterDefaults(registry, store); err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   log,
		registry: registry,
		orch:     application.New(registry, log),
	}, nil
}

// loadWorkflow registers the YAML workflow at path, or the built-in
// hello-world workflow when path is empty.
func (a *app) loadWorkflow(path string) (*domain.Workflow, error) {
	if path != "" {
		return a.orch.LoadWorkflow(path)
	}

	wf, err := dags.HelloWorld(a.registry.Has)
	if err != nil {
		return nil, err
	}
	if err := a.orch.Register(wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// parseParams merges a JSON object with key=value pairs; pairs win.
func parseParams(inputJSON string, pairs []string) (map[string]any, error) {
	params := make(map[string]any)

	if inputJSON != "" {
		if err := json.Unmarshal([]byte(inputJSON), &params); err != nil {
			return nil, fmt.Errorf("failed to parse input JSON: %w", err)
		}
		if params == nil {
			params = make(map[string]any)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q, expected key=value", pair)
		}
		params[key] = value
	}

	return params, nil
}
