package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orderdesk/crm-console/internal/core/domain"
	"github.com/orderdesk/crm-console/internal/core/ports"
)

var listFilter ports.OrderFilter

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Browse and manage the order book",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders with filters, sorting, and paging",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)

		page, err := a.orders.List(cmd.Context(), listFilter)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(page)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEXTERNAL\tCHANNEL\tSTATUS\tCUSTOMER\tAMOUNT\tORDERED")
		for _, o := range page.Content {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f %s\t%s\n",
				o.ID, o.ExternalOrderID, o.Channel, o.Status,
				o.CustomerName, o.TotalAmount, o.Currency,
				o.OrderedAt.Format("2006-01-02 15:04"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\nPage %d of %d (%d orders)\n", page.Page+1, max(page.TotalPages, 1), page.TotalElements)
		return nil
	},
}

var ordersGetCmd = &cobra.Command{
	Use:   "get <order-id>",
	Short: "Show one order in full, including status history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)

		order, err := a.orders.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(order)
		}

		fmt.Printf("%s  %s  %s\n", order.ExternalOrderID, order.Channel, order.Status)
		fmt.Printf("Customer:  %s <%s>\n", order.CustomerName, order.CustomerEmail)
		fmt.Printf("Amount:    %.2f %s\n", order.TotalAmount, order.Currency)
		fmt.Printf("Ordered:   %s\n", order.OrderedAt.Format("2006-01-02 15:04:05"))
		if order.ShippingAddress != "" {
			fmt.Printf("Ship to:   %s\n", order.ShippingAddress)
		}

		if len(order.Items) > 0 {
			fmt.Println("\nItems:")
			for _, item := range order.Items {
				fmt.Printf("  %dx %-28s %s  %.2f\n", item.Quantity, item.ProductName, item.SKU, item.TotalPrice)
			}
		}

		if len(order.StatusHistory) > 0 {
			fmt.Println("\nHistory:")
			for _, h := range order.StatusHistory {
				from := "—"
				if h.OldStatus != nil {
					from = *h.OldStatus
				}
				line := fmt.Sprintf("  %s  %s → %s", h.ChangedAt.Format("2006-01-02 15:04"), from, h.NewStatus)
				if h.Notes != nil {
					line += "  (" + *h.Notes + ")"
				}
				fmt.Println(line)
			}
		}

		if next := order.Status.Transitions(); len(next) > 0 {
			fmt.Printf("\nNext: %v\n", next)
		}
		return nil
	},
}

var statusNotes string

var ordersStatusCmd = &cobra.Command{
	Use:   "status <order-id> <new-status>",
	Short: "Move an order to a new status",
	Long: `Move an order through its lifecycle. Transitions follow the fixed table:

  PENDING    → CONFIRMED, CANCELLED
  CONFIRMED  → PROCESSING, CANCELLED
  PROCESSING → SHIPPED, CANCELLED
  SHIPPED    → DELIVERED, RETURNED
  DELIVERED  → RETURNED

CANCELLED and RETURNED are terminal. Requires the ADMIN or SUPER_ADMIN role.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)

		target, err := domain.ParseOrderStatus(args[1])
		if err != nil {
			return fmt.Errorf("%w: %q (want one of %v)", err, args[1], domain.AllStatuses)
		}

		order, err := a.orders.ChangeStatus(cmd.Context(), args[0], target, statusNotes)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(order)
		}
		fmt.Printf("%s is now %s\n", order.ExternalOrderID, order.Status)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the dashboard aggregates",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)

		stats, err := a.orders.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(stats)
		}

		fmt.Printf("Orders:   %d total, %d today\n", stats.TotalOrders, stats.TodayOrders)
		fmt.Printf("Revenue:  %.2f\n\n", stats.TotalRevenue)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CHANNEL\tORDERS\tREVENUE")
		for _, cs := range stats.ChannelStats {
			fmt.Fprintf(w, "%s\t%d\t%.2f\n", cs.Channel, cs.OrderCount, cs.Revenue)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Println()
		for _, status := range domain.AllStatuses {
			fmt.Printf("%-12s %d\n", status, stats.StatusBreakdown[string(status)])
		}
		return nil
	},
}

func init() {
	f := ordersListCmd.Flags()
	f.StringVar(&listFilter.Channel, "channel", "", "filter by channel (AMAZON, FLIPKART, WEBSITE)")
	f.StringVar(&listFilter.Status, "status", "", "filter by status")
	f.StringVar(&listFilter.Search, "search", "", "match external ID, customer name, or email")
	f.StringVar(&listFilter.From, "from", "", "ordered at or after (RFC 3339)")
	f.StringVar(&listFilter.To, "to", "", "ordered at or before (RFC 3339)")
	f.IntVar(&listFilter.Page, "page", 0, "page number (0-based)")
	f.IntVar(&listFilter.Size, "size", 20, "page size")
	f.StringVar(&listFilter.SortBy, "sort-by", "date", "sort key: date, amount, customer, status, channel")
	f.StringVar(&listFilter.SortDir, "sort-dir", "desc", "sort direction: asc or desc")

	ordersStatusCmd.Flags().StringVar(&statusNotes, "notes", "", "note recorded on the history entry")

	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersGetCmd)
	ordersCmd.AddCommand(ordersStatusCmd)
}
