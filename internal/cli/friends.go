package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vytor/uptriv/internal/logger"
)

func newFriendsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friends",
		Short: "Manage accepted friendships",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <username> <friend-username>",
		Short: "Record an accepted friendship between two players",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx := logger.NewContext(cmd.Context(), log)
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.users.GetByUsername(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.users.AddFriend(ctx, user.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s and %s are now friends\n", args[0], args[1])
			return nil
		},
	})
	return cmd
}
