package cmd

import (
	"context"
	"fmt"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/interaction"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var actionHelp = map[interaction.Action]string{
	interaction.Like:      "Like a post (replaces a dislike)",
	interaction.Unlike:    "Remove your like",
	interaction.Dislike:   "Break a heart on a post (replaces a like)",
	interaction.Undislike: "Remove your broken heart",
	interaction.Repost:    "Repost a post",
	interaction.Unrepost:  "Remove your repost",
}

// newActionCmd builds the subcommand for one reaction action.
func newActionCmd(action interaction.Action) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <post-id>", action),
		Short: actionHelp[action],
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *service.Session) error {
				return service.NewPostActionsService(s).Run(ctx, args[0], action)
			})
		},
	}
}

func init() {
	for _, action := range []interaction.Action{
		interaction.Like,
		interaction.Unlike,
		interaction.Dislike,
		interaction.Undislike,
		interaction.Repost,
		interaction.Unrepost,
	} {
		postCmd.AddCommand(newActionCmd(action))
	}
}
