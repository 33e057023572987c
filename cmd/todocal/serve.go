package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nhle/todocal/internal/api"
	"github.com/nhle/todocal/internal/reminder"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the reminder poller",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withApp(ctx, func(ctx context.Context, a *app) error {
		if serveAddr != "" {
			a.cfg.Server.Addr = serveAddr
		}

		if a.cfg.Reminder.Enabled {
			poller := reminder.New(a.store, a.cfg.Reminder.Interval, a.cfg.Reminder.LeadTime,
				reminder.WithClock(a.clock.Now),
				reminder.WithLogger(a.logger.WithPrefix("reminder")),
			)
			poller.Start()
			defer poller.Stop()
		}

		gin.SetMode(gin.ReleaseMode)
		router := api.NewRouter(api.Deps{
			Todos:         a.todos,
			Queries:       a.queries,
			Tags:          a.tags,
			Users:         a.users,
			Notifications: a.store,
			Tokens:        a.tokens,
			Ping:          a.store.Ping,
			Logger:        a.logger.WithPrefix("api"),
			CORSOrigins:   a.cfg.Server.CORSOrigins,
			RateLimit:     a.cfg.RateLimit,
		})

		return api.Serve(ctx, a.cfg.Server, router, a.logger)
	})
}
