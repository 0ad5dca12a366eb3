package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	clierrors "github.com/blazeapp-lab/blazeapp-sub000/pkg/errors"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/output"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "blaze",
	Short: "Blaze CLI - short-form social feed in your terminal",
	Long: `Blaze CLI is a command-line client for Blaze. Read your home feed,
react to posts and watch notifications arrive from the terminal.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}

		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return clierrors.ValidationError("output", "must be one of text, json, table")
			}
			config.Set("output.format", outputFmt)
		}
		return nil
	},
}

// Execute runs the CLI and exits non-zero on failure. Ctrl+C cancels the
// running command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Close()

	if err == nil {
		return
	}
	if !errors.Is(err, service.ErrSilent) {
		fmt.Fprint(os.Stderr, clierrors.FormatError(err))
	}
	os.Exit(1)
}

// withSession opens the session for one command and closes it afterwards.
func withSession(cmd *cobra.Command, run func(ctx context.Context, s *service.Session) error) error {
	ctx := cmd.Context()
	s, err := service.OpenSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn("Failed to close session", "error", err)
		}
	}()
	return run(ctx, s)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/blaze/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")
	_ = rootCmd.RegisterFlagCompletionFunc("output", completeOutputFormat)

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(overlayCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(versionCmd)
}
