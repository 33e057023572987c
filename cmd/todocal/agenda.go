package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/todocal/internal/reminder"
	"github.com/nhle/todocal/internal/ui/agenda"
)

var agendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Browse and check off a user's todos in the terminal",
	Args:  cobra.NoArgs,
	RunE:  runAgenda,
}

var agendaUser string

func init() {
	agendaCmd.Flags().StringVar(&agendaUser, "user", "", "username whose todos to show")
}

func runAgenda(cmd *cobra.Command, _ []string) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
		user, err := a.lookupUser(ctx, agendaUser)
		if err != nil {
			return err
		}

		opts := []agenda.Option{agenda.WithTags(a.tags)}
		if a.cfg.Reminder.Enabled {
			// The poller logs nothing here; stderr belongs to the alt screen.
			poller := reminder.New(a.store, a.cfg.Reminder.Interval, a.cfg.Reminder.LeadTime,
				reminder.WithClock(a.clock.Now),
			)
			poller.Start()
			defer poller.Stop()
			opts = append(opts, agenda.WithReminders(poller))
		}

		m := agenda.New(a.queries, a.todos, user.ID, user.Username, opts...)
		_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	})
}
