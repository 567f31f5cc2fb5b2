package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var portOverride string

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Employee back-office: edge gateway, identity and employee services",
	Long: `backoffice runs one of the three processes of the employee back-office.
All of them must share AUTH_JWT_SECRET; each verifies bearer tokens on its own.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&portOverride, "port", "", "HTTP listen port (env: APP_PORT)")

	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(identityCmd)
	rootCmd.AddCommand(employeeCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
