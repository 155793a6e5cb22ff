package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tradeconsole/internal/domain"
)

func accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List trading accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPTimeout)
			defer cancel()
			if err := a.engine.Accounts.FetchAll(ctx); err != nil {
				return err
			}
			if err := a.storeError(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tBALANCE\tAVAILABLE\tFROZEN\tCURRENCY")
			for _, acc := range a.store.Accounts() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					acc.AccountID, acc.Balance, acc.Available, acc.Frozen, acc.Currency)
			}
			return w.Flush()
		},
	}
}

func positionsCmd() *cobra.Command {
	var closeSymbol string
	var direction string
	var volume string
	var price string

	cmd := &cobra.Command{
		Use:   "positions",
		Short: "List open positions, or close one",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPTimeout)
			defer cancel()

			if closeSymbol != "" {
				vol, err := decimal.NewFromString(volume)
				if err != nil {
					return fmt.Errorf("invalid --volume %q: %w", volume, err)
				}
				px := decimal.Zero
				if price != "" {
					if px, err = decimal.NewFromString(price); err != nil {
						return fmt.Errorf("invalid --price %q: %w", price, err)
					}
				}
				if err := a.engine.Positions.Close(ctx, closeSymbol, domain.Direction(direction), vol, px); err != nil {
					return err
				}
				fmt.Printf("close order sent for %s\n", closeSymbol)
				return nil
			}

			if err := a.engine.Positions.FetchAll(ctx); err != nil {
				return err
			}
			if err := a.storeError(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SYMBOL\tDIR\tVOLUME\tOPEN\tLAST\tPNL\tPNL%\tMARGIN")
			for _, p := range a.store.Positions() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					p.Symbol, p.Direction, p.Volume, p.OpenPrice, p.LastPrice,
					p.UnrealizedPnl, p.PnlRatio, p.Margin)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&closeSymbol, "close", "", "Close the position on this symbol")
	cmd.Flags().StringVar(&direction, "direction", "long", "Direction of the position being closed (long/short)")
	cmd.Flags().StringVar(&volume, "volume", "", "Volume to close")
	cmd.Flags().StringVar(&price, "price", "", "Limit price for the close; omit for a market order")
	return cmd
}

func quotesCmd() *cobra.Command {
	var subscribe string
	var unsubscribe string
	var exchange string

	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "List quotes, or manage streaming subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPTimeout)
			defer cancel()

			// Subscription management needs only the REST side; the backend
			// remembers the watchlist and streams on the next connect.
			if subscribe != "" {
				if err := a.engine.Quotes.Subscribe(ctx, subscribe, exchange); err != nil {
					return err
				}
				fmt.Printf("subscribed %s\n", subscribe)
				return nil
			}
			if unsubscribe != "" {
				if err := a.engine.Quotes.Unsubscribe(ctx, unsubscribe); err != nil {
					return err
				}
				fmt.Printf("unsubscribed %s\n", unsubscribe)
				return nil
			}

			if err := a.engine.Quotes.FetchAll(ctx); err != nil {
				return err
			}
			if err := a.storeError(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SYMBOL\tEXCHANGE\tLAST\tCHG%\tBID\tASK\tVOLUME\tSTATUS")
			for _, q := range a.store.Quotes() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					q.Symbol, q.Exchange, q.LastPrice, q.Change,
					q.BidPrice1, q.AskPrice1, q.Volume, q.Status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&subscribe, "subscribe", "", "Add a symbol to the streaming watchlist")
	cmd.Flags().StringVar(&unsubscribe, "unsubscribe", "", "Remove a symbol from the streaming watchlist")
	cmd.Flags().StringVar(&exchange, "exchange", "", "Exchange for --subscribe")
	return cmd
}

func tradesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trades",
		Short: "List today's fills",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPTimeout)
			defer cancel()
			if err := a.engine.Trade.FetchTrades(ctx); err != nil {
				return err
			}
			if err := a.storeError(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TRADE\tORDER\tSYMBOL\tDIR\tOFFSET\tPRICE\tVOLUME\tTIME")
			for _, t := range a.store.Trades() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					t.TradeID, t.OrderID, t.Symbol, t.Direction, t.Offset,
					t.Price, t.Volume, t.TradeTime)
			}
			return w.Flush()
		},
	}
}
