package cmd

import (
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/client"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Sign in to Blaze and manage the stored session",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to Blaze",
	Long:  "Authenticate with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newAuthService().Login(cmd.Context())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from Blaze",
	Long:  "Revoke the session and discard its locally remembered counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newAuthService().Logout(cmd.Context())
	},
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Display the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newAuthService().WhoAmI()
	},
}

func newAuthService() *service.AuthService {
	return service.NewAuthService(api.NewClient(client.GetClient()))
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)
}
