package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/internal/cache"
	"github.com/repolens/repolens/internal/vcs"
	"github.com/repolens/repolens/pkg/analyzer"
	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/source"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyze a local directory or remote repository",
		ArgsUsage: "[path or URL]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "window",
				Usage: "Duplication window size in lines",
			},
			&cli.StringFlag{
				Name:  "scope",
				Usage: "Duplication scope: per-file, corpus-wide",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Recompute even when a cached report exists",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Pull the latest changes for remote repositories",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	opts := cfg.Analysis
	if c.IsSet("window") {
		opts.DuplicationWindow = c.Int("window")
	}
	if c.IsSet("scope") {
		opts.DuplicationScope = config.Scope(c.String("scope"))
	}
	if c.Bool("force") {
		opts.ForceRecompute = true
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	ref := "."
	if c.Args().Len() > 0 {
		ref = c.Args().First()
	}

	dir := ref
	if vcs.IsRemote(ref) {
		fmt.Fprintf(c.App.Writer, "Fetching %s...\n", ref)
		dir, err = vcs.Ensure(c.Context, ref, cfg.Repo.CacheDir, c.Bool("refresh"))
		if err != nil {
			return err
		}
	}

	corpus, err := source.LoadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", dir, err)
	}
	if len(corpus.Files) == 0 {
		return fmt.Errorf("no Python files found under %s", dir)
	}
	// Reports carry the reference the user asked for, not the clone path.
	corpus.Root = ref

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	bar := progressbar.NewOptions(len(corpus.Files),
		progressbar.OptionSetDescription("Analyzing"),
		progressbar.OptionSetWriter(c.App.ErrWriter),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
	)
	eng := analyzer.New(analyzer.WithProgress(func(string) {
		_ = bar.Add(1)
	}))

	gate := cache.NewGate(store, eng, cache.WithWarnFunc(func(format string, args ...any) {
		color.Yellow("Warning: "+format, args...)
	}))
	report, cached, err := gate.GetOrCompute(c.Context, corpus, opts)
	_ = bar.Finish()
	if err != nil {
		return err
	}
	if cached && cfg.Output.Format == "text" {
		fmt.Fprintln(c.App.Writer, "Using cached analysis.")
	}

	return renderReport(c.App.Writer, cfg, report)
}

// openStore builds the configured cache backend. The returned close func is
// a no-op for backends without resources to release.
func openStore(cfg *config.Config) (cache.Store, func(), error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryStore(), func() {}, nil
	case "sqlite":
		s, err := cache.NewSQLiteStore(cfg.Cache.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "", "file":
		s, err := cache.NewFileStore(cfg.Cache.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
