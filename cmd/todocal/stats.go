package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nhle/todocal/internal/model"
	"github.com/nhle/todocal/internal/service"
	"github.com/nhle/todocal/internal/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many todos a user completed recently",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var (
	statsUser string
	statsDays int
)

func init() {
	statsCmd.Flags().StringVar(&statsUser, "user", "", "username to report on")
	statsCmd.Flags().IntVar(&statsDays, "days", service.DefaultStatisticsDays, "look-back window in days")
}

func runStats(cmd *cobra.Command, _ []string) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
		ctx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()

		user, err := a.lookupUser(ctx, statsUser)
		if err != nil {
			return err
		}
		stats, err := a.queries.Statistics(ctx, user.ID, statsDays)
		if err != nil {
			return err
		}
		renderStats(cmd.OutOrStdout(), user.Username, statsDays, stats)
		return nil
	})
}

const maxBarWidth = 40

// renderStats prints the completion total and one bar per active day,
// newest first.
func renderStats(w io.Writer, username string, days int, stats *service.Statistics) {
	dates := make([]model.Date, 0, len(stats.DailyStats))
	peak := 0
	for d, n := range stats.DailyStats {
		dates = append(dates, d)
		peak = max(peak, n)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render(fmt.Sprintf("%s · last %d days", username, days)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Completed: %d\n", stats.CompletedCount)

	if len(dates) == 0 {
		b.WriteString(theme.HelpStyle.Render("Nothing completed yet."))
	} else {
		b.WriteString("\n")
		rows := make([]string, len(dates))
		for i, d := range dates {
			n := stats.DailyStats[d]
			width := max(n*maxBarWidth/peak, 1)
			rows[i] = fmt.Sprintf("%s %s %d", d, theme.BarStyle.Render(strings.Repeat("█", width)), n)
		}
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	fmt.Fprintln(w, theme.PanelStyle.Render(b.String()))
}
