package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"logistics-route-service/internal/api/dto"
	"logistics-route-service/internal/domain"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRoutesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Inspect and manage delivery routes",
	}
	cmd.AddCommand(newRoutesListCmd(opts))
	cmd.AddCommand(newRoutesShowCmd(opts))
	cmd.AddCommand(newRoutesCancelCmd(opts))
	return cmd
}

func newRoutesListCmd(opts *rootOptions) *cobra.Command {
	var (
		date   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the routes of a delivery date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.Parse(dto.DateLayout, date)
			if err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}

			store, err := opts.openMigratedStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			routes, err := store.Routes.ListRoutesByDate(cmd.Context(), d)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), dto.FromRoutes(routes))
			}
			return writeRouteTable(cmd.OutOrStdout(), routes)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "delivery date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newRoutesShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <route-id>",
		Short: "Print one route with its stops as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid route id %q", args[0])
			}

			store, err := opts.openMigratedStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			route, err := store.Routes.GetRoute(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.FromRoute(route))
		},
	}
}

// Cancelling frees the date for a new route generation.
func newRoutesCancelCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <route-id>",
		Short: "Mark a route as CANCELLED",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid route id %q", args[0])
			}

			store, err := opts.openMigratedStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Routes.UpdateRouteStatus(cmd.Context(), id, domain.RouteStatusCancelled); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "route %s cancelled\n", id)
			return nil
		},
	}
}

func writeRouteTable(w io.Writer, routes []*domain.Route) error {
	if len(routes) == 0 {
		_, err := fmt.Fprintln(w, "no routes")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tSTOPS\tORDERS\tCREATED")
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID,
			r.DeliveryDate.Format(dto.DateLayout),
			r.Status,
			len(r.Stops),
			r.OrderCount(),
			r.CreatedAt.Format(time.RFC3339),
		)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
