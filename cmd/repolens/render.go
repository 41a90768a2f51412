package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"

	"github.com/repolens/repolens/pkg/config"
	"github.com/repolens/repolens/pkg/metric"
	"github.com/repolens/repolens/pkg/models"
)

// renderReport writes the report in the configured output format.
func renderReport(w io.Writer, cfg *config.Config, report *models.AnalysisReport) error {
	switch strings.ToLower(cfg.Output.Format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml", "yml":
		data, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "", "text":
		return renderText(w, cfg.Output.Color, report)
	default:
		return fmt.Errorf("unknown output format %q", cfg.Output.Format)
	}
}

func renderText(w io.Writer, colored bool, report *models.AnalysisReport) error {
	title := fmt.Sprintf("Analysis of %s", report.Repo)
	if colored {
		color.New(color.Bold).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
	fmt.Fprintln(w)

	s := report.Summary
	writeTable(w, "", []string{"Metric", "Value"}, [][]string{
		{"Files analyzed", strconv.Itoa(s.NumFiles)},
		{"Parse failures", strconv.Itoa(s.ParseFailures)},
		{"Lines of code", strconv.FormatInt(s.Totals[metric.IDLines], 10)},
		{"Functions", strconv.FormatInt(s.Totals[metric.IDFunctions], 10)},
		{"Classes", strconv.FormatInt(s.Totals[metric.IDClasses], 10)},
		{"Imports", strconv.FormatInt(s.Totals[metric.IDImports], 10)},
		{"TODO comments", strconv.FormatInt(s.Totals[metric.IDTodos], 10)},
		{"Avg complexity / function", fmt.Sprintf("%.2f", s.Averages[metric.IDCyclomatic])},
		{"Avg maintainability", fmt.Sprintf("%.1f", s.Averages[metric.IDMaintainability])},
		{"Avg duplication", fmt.Sprintf("%.1f%%", s.Averages[metric.IDDuplication]*100)},
	}, nil)

	if len(report.Files) > 0 {
		rows := make([][]string, 0, len(report.Files))
		for _, f := range report.Files {
			rows = append(rows, []string{
				f.Path,
				strconv.FormatInt(f.Metrics[metric.IDLines].Count, 10),
				strconv.FormatInt(f.Metrics[metric.IDFunctions].Count, 10),
				strconv.FormatInt(f.Metrics[metric.IDCyclomatic].Count, 10),
				fmt.Sprintf("%.1f", f.Metrics[metric.IDMaintainability].Score),
				fmt.Sprintf("%.1f%%", f.Metrics[metric.IDDuplication].Score*100),
			})
		}
		writeTable(w, "Files", []string{"Path", "LOC", "Funcs", "CC", "MI", "Dup"}, rows, nil)
	}

	if len(report.Failures) > 0 {
		rows := make([][]string, 0, len(report.Failures))
		for _, f := range report.Failures {
			rows = append(rows, []string{f.Path, f.Reason})
		}
		writeTable(w, "Skipped Files", []string{"Path", "Reason"}, rows, nil)
	}
	return nil
}

// writeTable renders one borderless left-aligned table.
func writeTable(w io.Writer, title string, headers []string, rows [][]string, footer []string) {
	if title != "" {
		fmt.Fprintln(w, title)
		fmt.Fprintln(w, strings.Repeat("-", len(title)))
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Footer: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	if len(footer) > 0 {
		footerArgs := make([]any, len(footer))
		for i, f := range footer {
			footerArgs[i] = f
		}
		table.Footer(footerArgs...)
	}
	table.Render()
	fmt.Fprintln(w)
}
