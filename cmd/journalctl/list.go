package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trading-journal-go/internal/models"
)

func newHoldingsCmd(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "holdings",
		Short: "List all holdings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := rc.api.Holdings(cmd.Context())
			if err != nil {
				return err
			}
			return printHoldings(cmd.OutOrStdout(), rows)
		},
	}
}

func newPositionsCmd(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "List all positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := rc.api.Positions(cmd.Context())
			if err != nil {
				return err
			}
			return printPositions(cmd.OutOrStdout(), rows)
		},
	}
}

func printHoldings(out io.Writer, rows []models.Holding) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tQTY\tAVG\tPRICE\tNET\tDAY")
	for _, h := range rows {
		fmt.Fprintf(tw, "%s\t%g\t%.2f\t%.2f\t%s\t%s\n", h.Name, h.Qty, h.Avg, h.Price, h.Net, h.Day)
	}
	return tw.Flush()
}

func printPositions(out io.Writer, rows []models.Position) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tAVG\tPRICE\tNET\tDAY")
	for _, p := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%.2f\t%.2f\t%s\t%s\n", p.Product, p.Name, p.Qty, p.Avg, p.Price, p.Net, p.Day)
	}
	return tw.Flush()
}

func printOrders(out io.Writer, rows []models.Order) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tMODE")
	for _, o := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%.2f\t%s\n", o.ID.Hex(), o.Name, o.Qty, o.Price, o.Mode)
	}
	return tw.Flush()
}
