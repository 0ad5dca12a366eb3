package cmd

import (
	"context"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post commands",
	Long:  "View posts and react to them",
}

var postShowCmd = &cobra.Command{
	Use:     "show <post-id>",
	Aliases: []string{"view"},
	Short:   "View post details",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *service.Session) error {
			return service.NewPostService(s).Show(ctx, args[0])
		})
	},
}

func init() {
	postCmd.AddCommand(postShowCmd)
}
