package cmd

import (
	"context"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var flushForce bool

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Inspect locally remembered post counters",
	Long: `Counters you changed in this session are remembered locally so that
every view shows them, even before the backend catches up.`,
}

var overlayShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List remembered counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *service.Session) error {
			return service.NewOverlayService(s).Show()
		})
	},
}

var overlayFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Forget all remembered counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *service.Session) error {
			return service.NewOverlayService(s).Flush(ctx, flushForce)
		})
	},
}

func init() {
	overlayFlushCmd.Flags().BoolVarP(&flushForce, "yes", "y", false, "Do not ask for confirmation")
	overlayCmd.AddCommand(overlayShowCmd)
	overlayCmd.AddCommand(overlayFlushCmd)
}
