// Package report renders statistics as JSON or as terminal tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/naka-gawa/repostats/internal/domain"
)

// Format selects how results are written.
type Format string

const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatTable:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format %q (expected json or table)", s)
}

// WriteJSON writes v as pretty-printed JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// WriteStatsTable prints one row per repository.
func WriteStatsTable(w io.Writer, results []*domain.RepoStats) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Repository", "Contributors", "Top", "Commits/yr", "Owner %", "Median/wk", "P90/wk", "Additions", "Deletions", "Busiest"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range results {
		busiest := "-"
		if r.BusiestSlot != nil {
			busiest = fmt.Sprintf("%s %02d:00", r.BusiestSlot.DayOfWeek.String()[:3], r.BusiestSlot.HourOfDay)
		}
		data = append(data, []string{
			r.Name,
			strconv.Itoa(r.Contributors),
			r.TopContributor,
			strconv.Itoa(r.CommitsLastYear),
			fmt.Sprintf("%.1f", r.OwnerCommitShare*100),
			fmt.Sprintf("%.1f", r.WeeklyCommits.Median),
			fmt.Sprintf("%.1f", r.WeeklyCommits.P90),
			strconv.FormatInt(r.Additions, 10),
			strconv.FormatInt(r.Deletions, 10),
			busiest,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// WritePunchCardTable prints a day-by-hour grid of commit counts.
func WritePunchCardTable(w io.Writer, card domain.PunchCard) error {
	table := tablewriter.NewWriter(w)
	headers := []string{"Day"}
	for hour := 0; hour < 24; hour++ {
		headers = append(headers, strconv.Itoa(hour))
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for day := time.Sunday; day <= time.Saturday; day++ {
		row := []string{day.String()[:3]}
		for hour := 0; hour < 24; hour++ {
			row = append(row, strconv.Itoa(card.CommitsFor(day, hour)))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
