package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trading-journal-go/internal/models"
)

func newOrdersCmd(rc *rootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List or submit orders",
	}
	cmd.AddCommand(
		newOrdersListCmd(rc),
		newOrdersNewCmd(rc),
	)
	return cmd
}

func newOrdersListCmd(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := rc.api.Orders(cmd.Context())
			if err != nil {
				return err
			}
			return printOrders(cmd.OutOrStdout(), rows)
		},
	}
}

func newOrdersNewCmd(rc *rootConfig) *cobra.Command {
	var o models.Order

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Submit a new order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.Mode = strings.ToUpper(o.Mode)
			if o.Mode != models.ModeBuy && o.Mode != models.ModeSell {
				return errors.New("--mode must be BUY or SELL")
			}
			msg, err := rc.api.NewOrder(cmd.Context(), o)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&o.Name, "name", "", "instrument name")
	cmd.Flags().Float64Var(&o.Qty, "qty", 0, "quantity")
	cmd.Flags().Float64Var(&o.Price, "price", 0, "limit price")
	cmd.Flags().StringVar(&o.Mode, "mode", models.ModeBuy, "BUY or SELL")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}
