package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tradeconsole/internal/store"
)

func watchCmd() *cobra.Command {
	var symbols []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard of accounts, positions, quotes and orders",
		Long: `watch connects the push channel, subscribes the given symbols for
streaming quotes and redraws a dashboard whenever the snapshot changes.
Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			readyCtx, readyCancel := context.WithTimeout(ctx, 30*time.Second)
			defer readyCancel()
			if err := a.engine.WaitReady(readyCtx); err != nil {
				return fmt.Errorf("backend not reachable at %s: %w", a.cfg.BackendURL, err)
			}

			if err := a.engine.Start(ctx); err != nil {
				return err
			}
			defer a.engine.Stop()

			for _, s := range symbols {
				if err := a.engine.Quotes.Subscribe(ctx, s, ""); err != nil {
					a.log.Warn(ctx, "Quote subscription failed", map[string]interface{}{"symbol": s, "error": err.Error()})
				}
			}

			changes := a.store.Watch()
			defer a.store.Unwatch(changes)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

			// Coalesce redraws: the store notifies on every mutation, but
			// repainting faster than ~4 Hz just flickers.
			redraw := time.NewTicker(250 * time.Millisecond)
			defer redraw.Stop()
			dirty := true

			for {
				select {
				case <-sig:
					fmt.Println()
					return nil
				case <-changes:
					dirty = true
				case <-redraw.C:
					if dirty {
						renderDashboard(a.store)
						dirty = false
					}
				}
			}
		},
	}

	cmd.Flags().StringSliceVarP(&symbols, "symbol", "s", nil, "Symbols to subscribe for streaming quotes (repeatable)")
	return cmd
}

func renderDashboard(st *store.Store) {
	var b strings.Builder
	b.WriteString("\033[2J\033[H") // clear screen, cursor home

	conn := "DISCONNECTED"
	if st.Connected() {
		conn = "CONNECTED"
	}
	fmt.Fprintf(&b, "tradeconsole  |  push: %s", conn)
	if st.Loading() {
		b.WriteString("  |  loading...")
	}
	if msg := st.Error(); msg != "" {
		fmt.Fprintf(&b, "  |  ERROR: %s", msg)
	}
	b.WriteString("\n\n")

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "ACCOUNT\tBALANCE\tAVAILABLE\tFROZEN")
	for _, a := range st.Accounts() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.AccountID, a.Balance, a.Available, a.Frozen)
	}
	fmt.Fprintln(w, "\t\t\t")

	fmt.Fprintln(w, "POSITION\tDIR\tVOLUME\tOPEN\tLAST\tPNL")
	for _, p := range st.Positions() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Symbol, p.Direction, p.Volume, p.OpenPrice, p.LastPrice, p.UnrealizedPnl)
	}
	fmt.Fprintln(w, "\t\t\t\t\t")

	fmt.Fprintln(w, "QUOTE\tLAST\tCHG%\tBID\tASK\tVOLUME")
	for _, q := range st.Quotes() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			q.Symbol, q.LastPrice, q.Change, q.BidPrice1, q.AskPrice1, q.Volume)
	}
	fmt.Fprintln(w, "\t\t\t\t\t")

	fmt.Fprintln(w, "ORDER\tSYMBOL\tDIR\tOFFSET\tPRICE\tTRADED/VOL\tSTATUS")
	for _, o := range st.Orders() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s/%s\t%s\n",
			o.OrderID, o.Symbol, o.Direction, o.Offset, o.Price, o.Traded, o.Volume, o.Status)
	}
	w.Flush()

	fmt.Print(b.String())
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check backend health",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPTimeout)
			defer cancel()
			if err := a.engine.WaitReady(ctx); err != nil {
				return fmt.Errorf("backend not healthy at %s: %w", a.cfg.BackendURL, err)
			}
			fmt.Printf("backend ok: %s\n", a.cfg.BackendURL)
			return nil
		},
	}
}
