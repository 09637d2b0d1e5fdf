package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"

	"ssiserve/internal/config"
	"ssiserve/internal/include"
	"ssiserve/internal/resolver"
	"ssiserve/internal/slogutil"
)

// app is the wiring shared by the serve and render commands.
type app struct {
	cfg      *config.Config
	root     string
	logger   *slog.Logger
	closer   io.Closer
	resolver *resolver.Resolver
	engine   *include.Engine
}

// newApp loads configuration for workDir and builds the resolver and
// include engine. A non-empty portArg overrides the configured port.
func newApp(workDir, portArg string, console io.Writer) (*app, error) {
	result, err := config.LoadConfigWithDetails(workDir)
	if err != nil {
		return nil, err
	}
	cfg := result.Config

	if portArg != "" {
		port, err := parsePort(portArg)
		if err != nil {
			return nil, err
		}
		cfg.Server.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	root := cfg.Server.Root
	if !filepath.IsAbs(root) {
		root = filepath.Join(workDir, root)
	}
	root = filepath.Clean(root)

	logger, closer, err := slogutil.FromConfig(cfg.Logging, console)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if result.ConfigPath != "" {
		logger.Debug("Loaded config", "path", result.ConfigPath)
	}
	for _, ov := range result.EnvOverrides {
		logger.Debug("Env override applied", "env", ov.EnvVar, "path", ov.Path)
	}

	res := resolver.New(root, resolver.Options{
		IndexFiles:          cfg.Include.IndexFiles,
		ForbiddenExtensions: cfg.Include.ForbiddenExtensions,
		RenderExtensions:    cfg.Include.RenderExtensions,
	})
	engine := include.NewEngine(include.Config{
		Root:     root,
		MaxDepth: cfg.Include.MaxDepth,
		Policy:   res,
		Logger:   logger,
	})

	return &app{
		cfg:      cfg,
		root:     root,
		logger:   logger,
		closer:   closer,
		resolver: res,
		engine:   engine,
	}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}

// parsePort validates the positional port argument.
func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}
