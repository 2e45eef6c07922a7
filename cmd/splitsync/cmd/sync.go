package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carden/splitsync/internal/config"
	"github.com/carden/splitsync/internal/mirror"
	"github.com/carden/splitsync/internal/splitwise"
	"github.com/carden/splitsync/internal/ynab"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass for every configured user",
	Long: `Run one reconciliation pass for every configured user, in order.

Each user gets an isolated pass: their own credentials, budget, and
mirror account. A failing user does not stop the remaining users, but
any failure makes the command exit non-zero.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, err := config.Load(credsFile)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	var failed []string
	for _, user := range cfg.Users {
		userLog := log.With().Str("user", user.UserName).Logger()
		userLog.Info().Msg("Starting sync")

		if err := syncUser(ctx, cfg, user); err != nil {
			userLog.Error().Err(err).Msg("Sync failed")
			failed = append(failed, user.UserName)
			continue
		}
		userLog.Info().Msg("Sync completed")
	}

	if len(failed) > 0 {
		return fmt.Errorf("sync failed for %d of %d users: %v", len(failed), len(cfg.Users), failed)
	}
	return nil
}

// syncUser runs one user's full pass: validate credentials, resolve the
// budget and mirror account, then run both sync directions.
func syncUser(ctx context.Context, cfg *config.Config, user config.Credentials) error {
	if err := user.Validate(); err != nil {
		return err
	}

	swClient := splitwise.NewClient(splitwise.ClientConfig{
		ConsumerKey:    user.SWConsumerKey,
		ConsumerSecret: user.SWConsumerSecret,
		APIKey:         user.SWAPIKey,
	})
	source, err := splitwise.NewSource(ctx, swClient)
	if err != nil {
		return err
	}

	ledger := ynab.NewClient(user.YNABToken)
	budgetID, err := ledger.GetBudgetID(ctx, user.YNABBudgetName)
	if err != nil {
		return err
	}
	accountID, err := ledger.GetAccountID(ctx, budgetID, user.YNABAccountName)
	if err != nil {
		return err
	}

	syncer := mirror.New(source, ledger, budgetID, accountID, cfg.UseUpdatedAt, cfg.SyncReverse)
	return syncer.Run(ctx)
}
