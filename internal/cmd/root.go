// Package cmd defines the orderdesk CLI: an operator console over the order
// management backend. Commands wire the credential store, authenticated
// client, and services once in the root pre-run and share them via context.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "orderdesk",
	Short: "Operator console for the order management backend",
	Long: `orderdesk is the command-line console for managing orders across sales
channels. It keeps a persistent login session, refreshes access tokens
transparently, and exposes the order book, dashboard stats, and the
super-admin surface.

Start with:
  orderdesk login --email you@example.com
  orderdesk orders list
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Root().SetContext(context.WithValue(cmd.Context(), appKey{}, a))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON instead of tables")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(devserverCmd)
}

// ExecuteContext runs the CLI to completion.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
