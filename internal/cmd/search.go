package cmd

import (
	"context"
	"strings"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search posts by content",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *service.Session) error {
			return service.NewSearchService(s).Show(ctx, strings.Join(args, " "), searchLimit)
		})
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", service.DefaultSearchLimit, "Maximum number of results")
}
