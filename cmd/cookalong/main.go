// cookalong is a cooking companion: it walks through a recipe step by step
// and keeps any number of kitchen timers running across restarts.
//
// Usage:
//
//	cookalong serve
//	cookalong cook chicken-alfredo
//	cookalong start ./recipes/pancakes.yaml
//	cookalong say <session-id> "set a timer for 10 minutes for the pasta"
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand. Empty values fall back to
// the environment.
type globalFlags struct {
	envFile    string
	store      string
	dataDir    string
	recipesDir string
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "cookalong",
		Short:         "Step-by-step cooking sessions with durable timers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	pf.StringVar(&flags.store, "store", "", "session store: memory|badger|sqlite (default $COOKALONG_STORE)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "directory for durable stores (default $COOKALONG_DATA_DIR)")
	pf.StringVar(&flags.recipesDir, "recipes-dir", "", "directory of recipe files (default $COOKALONG_RECIPES_DIR, built-in recipes if empty)")
	pf.StringVar(&flags.logLevel, "log-level", "", "off|info|debug (default $COOKALONG_LOG_LEVEL)")
	pf.StringVar(&flags.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		newServeCmd(flags),
		newStartCmd(flags),
		newStatusCmd(flags),
		newStepCmd(flags),
		newJumpCmd(flags),
		newTimerCmd(flags),
		newSayCmd(flags),
		newNoteCmd(flags),
		newSessionsCmd(flags),
		newDeleteCmd(flags),
		newRecipesCmd(flags),
		newWatchCmd(flags),
		newCookCmd(flags),
	)
	return root
}
