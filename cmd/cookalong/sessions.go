package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/engine"
)

// withApp runs fn against a freshly loaded app and closes it afterwards.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx, flags, "")
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

func newStartCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start <recipe-file|recipe-id>",
		Short: "Start a cooking session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				r, err := a.resolveRecipe(ctx, args[0])
				if err != nil {
					return err
				}
				s, err := a.manager.Create(ctx, r)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "session %s: %s (%d steps)\n", s.ID, s.Recipe.Title, s.TotalSteps())
				printStep(out, s.CurrentStep, s.TotalSteps(), s.Current())
				return nil
			})
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show the state of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				v, err := a.manager.State(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(v)
				}
				printState(out, v)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full state as JSON")
	return cmd
}

func newStepCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "step <session-id> next|previous|repeat",
		Short: "Move between steps",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := domain.ParseNavAction(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				res, err := a.manager.Step(ctx, args[0], action)
				if err != nil {
					return err
				}
				printStep(cmd.OutOrStdout(), res.CurrentStep, res.TotalSteps, res.StepData)
				return nil
			})
		},
	}
}

func newJumpCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "jump <session-id> <step>",
		Short: "Go straight to a step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("step must be a number: %w", err)
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				res, err := a.manager.JumpTo(ctx, args[0], n)
				if err != nil {
					return err
				}
				printStep(cmd.OutOrStdout(), res.CurrentStep, res.TotalSteps, res.StepData)
				return nil
			})
		},
	}
}

func newTimerCmd(flags *globalFlags) *cobra.Command {
	timer := &cobra.Command{
		Use:   "timer <session-id> <label> <duration>",
		Short: "Start a timer, or manage one with a subcommand",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				t, err := a.manager.AddTimer(ctx, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				printTimer(cmd.OutOrStdout(), t)
				return nil
			})
		},
	}

	ops := []struct {
		use, short string
		fn         func(m *engine.Manager, ctx context.Context, id, timerID string) (domain.TimerView, error)
	}{
		{"pause", "Pause a timer", (*engine.Manager).PauseTimer},
		{"resume", "Resume a paused timer", (*engine.Manager).ResumeTimer},
		{"cancel", "Cancel a timer", (*engine.Manager).CancelTimer},
	}
	for _, op := range ops {
		timer.AddCommand(&cobra.Command{
			Use:   op.use + " <session-id> <timer-id>",
			Short: op.short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, flags, func(ctx context.Context, a *app) error {
					t, err := op.fn(a.manager, ctx, args[0], args[1])
					if err != nil {
						return err
					}
					printTimer(cmd.OutOrStdout(), t)
					return nil
				})
			},
		})
	}
	return timer
}

func newSayCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "say <session-id> <utterance...>",
		Short: "Talk to a session: next, pause, set a timer, or ask a question",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				res, err := a.say(ctx, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, res.Response)
				for _, alert := range res.Alerts {
					fmt.Fprintf(out, "⏰ %s\n", alert)
				}
				return nil
			})
		},
	}
}

func newNoteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "note <session-id> <text...>",
		Short: "Add a note to a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				n, err := a.manager.AddNote(ctx, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "noted at %s\n", n.CreatedAt.Local().Format("15:04"))
				return nil
			})
		},
	}
}

func newSessionsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				now := a.manager.Now()
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tRECIPE\tSTEP\tTIMERS\tSTARTED")
				for _, s := range a.manager.List(ctx) {
					step := fmt.Sprintf("%d/%d", s.CurrentStep, s.TotalSteps())
					if s.Paused {
						step += " (paused)"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
						s.ID, s.Recipe.Title, step, len(s.ActiveTimers(now)), s.CreatedAt.Local().Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}
}

func newDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and its timers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if err := a.manager.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newRecipesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List available recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				list, err := a.recipes.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tSTEPS\tTIME")
				for _, r := range list {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.ID, r.Title, r.TotalSteps, r.TotalTime)
				}
				return tw.Flush()
			})
		},
	}
}

func printStep(out io.Writer, current, total int, st domain.Step) {
	header := fmt.Sprintf("Step %d/%d", current, total)
	if st.EstimatedTime != "" {
		header += " (~" + st.EstimatedTime + ")"
	}
	fmt.Fprintf(out, "%s: %s\n", header, st.Instruction)
}

func printTimer(out io.Writer, t domain.TimerView) {
	fmt.Fprintf(out, "%s %q %s: %s of %s left\n",
		t.ID, t.Label, t.Status, domain.FormatSeconds(t.SecondsRemaining), domain.FormatSeconds(t.SecondsTotal))
}

func printState(out io.Writer, v domain.SessionView) {
	fmt.Fprintf(out, "%s (%s)\n", v.RecipeTitle, v.SessionID)
	printStep(out, v.CurrentStep, v.TotalSteps, v.CurrentStepData)
	if v.IsPaused {
		fmt.Fprintln(out, "Session is paused.")
	}
	for _, t := range v.Timers {
		if t.Status == domain.TimerCancelled.String() {
			continue
		}
		printTimer(out, t)
	}
	for _, n := range v.Notes {
		fmt.Fprintf(out, "note %s: %s\n", n.CreatedAt.Local().Format("15:04"), n.Text)
	}
}
