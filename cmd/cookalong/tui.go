package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hammamikhairi/cookalong/internal/alert"
	"github.com/hammamikhairi/cookalong/internal/display"
)

// Logs would garble the terminal view, so they go to a file by default.
const tuiLogFile = ".cookalong-logs/cookalong.log"

func newWatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <session-id>",
		Short: "Follow a session's step and timers in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags, false, func(ctx context.Context, a *app) (string, error) {
				if _, err := a.manager.Get(ctx, args[0]); err != nil {
					return "", err
				}
				return args[0], nil
			})
		},
	}
}

func newCookCmd(flags *globalFlags) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "cook [recipe-file|recipe-id]",
		Short: "Cook interactively: start a recipe, or resume a session with --session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" && len(args) == 0 {
				return errors.New("give a recipe to start or --session to resume")
			}
			return runTUI(cmd, flags, true, func(ctx context.Context, a *app) (string, error) {
				if sessionID != "" {
					_, err := a.manager.Get(ctx, sessionID)
					return sessionID, err
				}
				r, err := a.resolveRecipe(ctx, args[0])
				if err != nil {
					return "", err
				}
				s, err := a.manager.Create(ctx, r)
				if err != nil {
					return "", err
				}
				return s.ID, nil
			})
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "resume this session instead of starting a new one")
	return cmd
}

// runTUI wires the terminal view and the timer announcer around the session
// picked by pick, and runs both until the view is closed.
func runTUI(cmd *cobra.Command, flags *globalFlags, interactive bool, pick func(context.Context, *app) (string, error)) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, flags, tuiLogFile)
	if err != nil {
		return err
	}
	defer a.close()

	id, err := pick(ctx, a)
	if err != nil {
		return err
	}

	ui := display.NewUI(localSession{app: a, id: id}, interactive)
	announcer := alert.New(a.manager, ui, a.log,
		alert.WithInterval(a.cfg.AlertInterval),
		alert.WithAlmostDone(a.cfg.AlmostDone),
	)

	g, gctx := errgroup.WithContext(ctx)
	uiCtx, quitUI := context.WithCancel(gctx)
	g.Go(func() error {
		// Closing the view ends everything else.
		defer quitUI()
		return ui.Run(uiCtx)
	})
	g.Go(func() error {
		select {
		case <-ui.Ready():
		case <-uiCtx.Done():
			return nil
		}
		return announcer.Run(uiCtx)
	})
	return g.Wait()
}
