package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/pkg/config"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "repolens",
		Usage:   "Software quality metrics for Python codebases",
		Version: version,
		Description: `Repolens analyzes a local directory or remote repository and reports
lines of code, structure counts, cyclomatic complexity, maintainability,
and code duplication.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"REPOLENS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, yaml",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			historyCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration from the --config flag or standard
// locations, then applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	if format := c.String("format"); format != "" {
		cfg.Output.Format = format
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
	return cfg, nil
}
