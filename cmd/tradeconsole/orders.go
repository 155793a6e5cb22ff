package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tradeconsole/internal/adapters/rest"
	"tradeconsole/internal/domain"
)

func ordersCmd() *cobra.Command {
	var place bool
	var cancelID string
	var symbol, direction, offset, orderType string
	var volume, price string

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List working orders, place a new one, or cancel one",
		Example: `  tradeconsole orders
  tradeconsole orders --place --symbol BTCUSDT --direction long --offset open --volume 0.5 --price 42000
  tradeconsole orders --cancel a1b2c3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPTimeout)
			defer cancel()

			if cancelID != "" {
				if err := a.engine.Trade.CancelOrder(ctx, cancelID); err != nil {
					return err
				}
				fmt.Printf("cancel requested for order %s\n", cancelID)
				return nil
			}

			if place {
				req := rest.PlaceOrderRequest{
					Symbol:    symbol,
					Direction: domain.Direction(direction),
					Offset:    domain.Offset(offset),
					OrderType: domain.OrderType(orderType),
				}
				if volume != "" {
					if req.Volume, err = decimal.NewFromString(volume); err != nil {
						return fmt.Errorf("invalid --volume %q: %w", volume, err)
					}
				}
				if price != "" {
					if req.Price, err = decimal.NewFromString(price); err != nil {
						return fmt.Errorf("invalid --price %q: %w", price, err)
					}
				}
				if err := a.engine.Trade.PlaceOrder(ctx, req); err != nil {
					return err
				}
				fmt.Printf("order submitted: %s %s %s x %s\n", symbol, direction, offset, volume)
				return nil
			}

			if err := a.engine.Trade.FetchOrders(ctx); err != nil {
				return err
			}
			if err := a.storeError(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tSYMBOL\tDIR\tOFFSET\tPRICE\tTRADED/VOL\tSTATUS\tTIME")
			for _, o := range a.store.Orders() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s/%s\t%s\t%s\n",
					o.OrderID, o.Symbol, o.Direction, o.Offset,
					o.Price, o.Traded, o.Volume, o.Status, o.OrderTime)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&place, "place", false, "Place a new order")
	cmd.Flags().StringVar(&cancelID, "cancel", "", "Cancel the order with this ID")
	cmd.Flags().StringVar(&symbol, "symbol", "", "Symbol to trade")
	cmd.Flags().StringVar(&direction, "direction", "long", "Order direction (long/short)")
	cmd.Flags().StringVar(&offset, "offset", "open", "Order offset (open/close)")
	cmd.Flags().StringVar(&orderType, "type", "limit", "Order type (limit/market)")
	cmd.Flags().StringVar(&volume, "volume", "", "Order volume")
	cmd.Flags().StringVar(&price, "price", "", "Limit price (required for limit orders)")
	return cmd
}
