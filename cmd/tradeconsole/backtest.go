package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tradeconsole/internal/adapters/rest"
)

func backtestCmd() *cobra.Command {
	var run, stop, results, chart string
	var symbol, startDate, endDate, params string
	var wait bool

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "List, run and inspect backtests",
		Example: `  tradeconsole backtest
  tradeconsole backtest --run my-grid --symbol BTCUSDT --start 2026-01-01 --end 2026-06-30 --wait
  tradeconsole backtest --results 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPTimeout)
			defer cancel()

			switch {
			case run != "":
				var p map[string]interface{}
				if params != "" {
					if err := json.Unmarshal([]byte(params), &p); err != nil {
						return fmt.Errorf("invalid --params JSON: %w", err)
					}
				}
				if err := a.engine.Backtests.Run(ctx, rest.RunBacktestRequest{
					StrategyName: run,
					Symbol:       symbol,
					StartDate:    startDate,
					EndDate:      endDate,
					Parameters:   p,
				}); err != nil {
					return err
				}
				fmt.Printf("backtest queued for %s on %s\n", run, symbol)
				if wait {
					return waitBacktests(a)
				}
				return nil

			case stop != "":
				if err := a.engine.Backtests.Stop(ctx, stop); err != nil {
					return err
				}
				fmt.Printf("stop requested for backtest %s\n", stop)
				return nil

			case results != "":
				bt, err := a.engine.Backtests.Results(ctx, results)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintf(w, "strategy\t%s\n", bt.StrategyName)
				fmt.Fprintf(w, "symbol\t%s\n", bt.Symbol)
				fmt.Fprintf(w, "period\t%s .. %s\n", bt.StartDate, bt.EndDate)
				fmt.Fprintf(w, "status\t%s\n", bt.Status)
				fmt.Fprintf(w, "total pnl\t%s\n", bt.TotalPnl)
				fmt.Fprintf(w, "return rate\t%s\n", bt.ReturnRate)
				fmt.Fprintf(w, "max drawdown\t%s\n", bt.MaxDrawdown)
				fmt.Fprintf(w, "win rate\t%s\n", bt.WinRate)
				fmt.Fprintf(w, "sharpe\t%s\n", bt.SharpeRatio)
				return w.Flush()

			case chart != "":
				raw, err := a.engine.Backtests.Chart(ctx, chart)
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(append(raw, '\n'))
				return err
			}

			if err := a.engine.Backtests.FetchAll(ctx); err != nil {
				return err
			}
			if err := a.storeError(); err != nil {
				return err
			}
			printBacktests(a)
			return nil
		},
	}

	cmd.Flags().StringVar(&run, "run", "", "Run a backtest of this strategy name")
	cmd.Flags().StringVar(&stop, "stop", "", "Stop the backtest with this ID")
	cmd.Flags().StringVar(&results, "results", "", "Show the result metrics of the backtest with this ID")
	cmd.Flags().StringVar(&chart, "chart", "", "Print the raw chart series of the backtest with this ID")
	cmd.Flags().StringVar(&symbol, "symbol", "", "Symbol for --run")
	cmd.Flags().StringVar(&startDate, "start", "", "Start date for --run (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date for --run (YYYY-MM-DD)")
	cmd.Flags().StringVar(&params, "params", "", "Strategy parameters as a JSON object")
	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until all backtests reach a finished status")
	return cmd
}

// waitBacktests polls the collection until nothing is queued or running,
// reusing the same poller the dashboard runs on.
func waitBacktests(a *app) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.engine.Backtests.FetchAll(ctx); err != nil {
				return err
			}
			done := true
			for _, bt := range a.store.Backtests() {
				if !bt.Status.IsFinished() {
					done = false
					break
				}
			}
			if done {
				printBacktests(a)
				return nil
			}
		}
	}
}

func printBacktests(a *app) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTRATEGY\tSYMBOL\tPERIOD\tSTATUS\tPNL\tRETURN\tDRAWDOWN")
	for _, bt := range a.store.Backtests() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s..%s\t%s\t%s\t%s\t%s\n",
			bt.ID, bt.StrategyName, bt.Symbol, bt.StartDate, bt.EndDate,
			bt.Status, bt.TotalPnl, bt.ReturnRate, bt.MaxDrawdown)
	}
	w.Flush()
}
