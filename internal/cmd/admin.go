package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Super-admin surface: feature flags and channel sync",
}

var adminFlagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "List feature flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)

		flags, err := a.admin.ListFlags(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(flags)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tENABLED\tDESCRIPTION")
		for _, f := range flags {
			fmt.Fprintf(w, "%s\t%t\t%s\n", f.FlagKey, f.Enabled, f.Description)
		}
		return w.Flush()
	},
}

var adminToggleCmd = &cobra.Command{
	Use:   "toggle <flag-key> <true|false>",
	Short: "Enable or disable a feature flag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)

		enabled, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("second argument must be true or false, got %q", args[1])
		}

		flag, err := a.admin.ToggleFlag(cmd.Context(), args[0], enabled)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(flag)
		}
		fmt.Printf("%s → enabled=%t\n", flag.FlagKey, flag.Enabled)
		return nil
	},
}

var adminSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Trigger an immediate order import from every channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)

		results, err := a.admin.SyncChannels(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(results)
		}

		total := 0
		for _, ch := range domain.Channels {
			fmt.Printf("%-10s %d new\n", ch, results[string(ch)])
			total += results[string(ch)]
		}
		fmt.Printf("Imported %d orders\n", total)
		return nil
	},
}

func init() {
	adminCmd.AddCommand(adminFlagsCmd)
	adminCmd.AddCommand(adminToggleCmd)
	adminCmd.AddCommand(adminSyncCmd)
}
