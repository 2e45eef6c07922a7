package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carden/splitsync/internal/config"
	"github.com/carden/splitsync/internal/splitwise"
)

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "List each configured user's Splitwise friends",
	Long: `List each configured user's Splitwise friends with their IDs.

Useful for checking which names the reverse sync can match against a
transaction memo.`,
	RunE: runFriends,
}

func runFriends(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, err := config.Load(credsFile)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	for _, user := range cfg.Users {
		if err := user.Validate(); err != nil {
			log.Error().Err(err).Str("user", user.UserName).Msg("Skipping user")
			continue
		}

		client := splitwise.NewClient(splitwise.ClientConfig{
			ConsumerKey:    user.SWConsumerKey,
			ConsumerSecret: user.SWConsumerSecret,
			APIKey:         user.SWAPIKey,
		})
		source, err := splitwise.NewSource(ctx, client)
		if err != nil {
			log.Error().Err(err).Str("user", user.UserName).Msg("Failed to connect to Splitwise")
			continue
		}

		friends, err := source.ListFriends(ctx)
		if err != nil {
			log.Error().Err(err).Str("user", user.UserName).Msg("Failed to list friends")
			continue
		}

		fmt.Printf("%s (user %d):\n", user.UserName, source.CurrentUserID())
		for _, f := range friends {
			fmt.Printf("  %d  %s\n", f.ID, f.Name)
		}
	}
	return nil
}
