package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hammamikhairi/cookalong/internal/alert"
	"github.com/hammamikhairi/cookalong/internal/server"
	"github.com/hammamikhairi/cookalong/internal/storage"
	"github.com/hammamikhairi/cookalong/internal/telemetry"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with timer alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, flags, "")
			if err != nil {
				return err
			}
			defer a.close()

			shutdown, err := telemetry.Setup(ctx, "cookalong", a.cfg.OTelEndpoint)
			if err != nil {
				a.log.Warn("tracing disabled: %v", err)
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					a.log.Warn("flushing traces: %v", err)
				}
			}()

			if addr != "" {
				a.cfg.Addr = addr
			}
			srv := server.New(a.cfg.Addr, a.manager, a.recipes, a.classifier, a.log)
			announcer := alert.New(a.manager, alert.NewConsoleNotifier(cmd.OutOrStdout(), a.log), a.log,
				alert.WithInterval(a.cfg.AlertInterval),
				alert.WithAlmostDone(a.cfg.AlmostDone),
			)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.ListenAndServe(gctx) })
			g.Go(func() error { return announcer.Run(gctx) })
			if badger, ok := a.store.(*storage.BadgerStore); ok {
				g.Go(func() error { return badger.RunGCLoop(gctx, a.cfg.GCInterval) })
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $COOKALONG_ADDR)")
	return cmd
}
