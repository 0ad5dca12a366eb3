package cmd

import (
	"fmt"
	"runtime"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/output"
	"github.com/spf13/cobra"
)

// Version and Commit are set at build time:
//
//	go build -ldflags "-X github.com/blazeapp-lab/blazeapp-sub000/internal/cmd.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "0.3.0"
	Commit  = "dev"
)

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Go      string `json:"go"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the blaze version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{Version: Version, Commit: Commit, Go: runtime.Version()}
		if output.GetOutputFormat() == output.FormatJSON {
			return output.PrintJSON(info)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "blaze %s (%s, %s)\n", info.Version, info.Commit, info.Go)
		return nil
	},
}
