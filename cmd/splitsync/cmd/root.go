// Package cmd provides the CLI commands for splitsync.
package cmd

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carden/splitsync/internal/logger"
)

var (
	credsFile string
	debug     bool

	log zerolog.Logger
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "splitsync",
	Short: "Mirror Splitwise expenses into YNAB and back",
	Long: `splitsync keeps one or more YNAB budgets in step with Splitwise.

The forward direction imports new and changed Splitwise expenses into a
dedicated YNAB account as tagged transactions, updating and deleting
mirrors as the source changes. The reverse direction pushes YNAB
transactions whose memo mentions "splitwise" back to Splitwise, split
between the named friends.

Example:
  splitsync sync
  splitsync friends`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logger.New()
		if debug {
			log = log.Level(zerolog.DebugLevel)
		} else {
			log = log.Level(zerolog.InfoLevel)
		}
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&credsFile, "creds", "creds.yaml", "credentials file merged into the environment outside CI")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(friendsCmd)
}

// commandContext returns the command's context with the logger attached.
func commandContext(cmd *cobra.Command) context.Context {
	return logger.WithContext(cmd.Context(), log)
}
