package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/repolens/repolens/internal/cache"
	"github.com/repolens/repolens/pkg/metric"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past analyses stored in the sqlite cache",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Value: 20,
				Usage: "Maximum number of analyses to list",
			},
		},
		Action: runHistory,
	}
}

func runHistory(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Cache.Backend != "sqlite" {
		return fmt.Errorf("history requires the sqlite cache backend (configured: %q)", cfg.Cache.Backend)
	}

	store, err := cache.NewSQLiteStore(cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.History(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.App.Writer, "No stored analyses.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.Repo,
			strconv.Itoa(e.Summary.NumFiles),
			strconv.FormatInt(e.Summary.Totals[metric.IDLines], 10),
			fmt.Sprintf("%.1f", e.Summary.Averages[metric.IDMaintainability]),
			e.Key[:12],
		})
	}
	writeTable(c.App.Writer, "Analysis History",
		[]string{"Date", "Repo", "Files", "LOC", "MI", "Key"}, rows, nil)
	return nil
}
