package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tradeconsole/internal/adapters/rest"
	"tradeconsole/internal/domain"
)

func dataCmd() *cobra.Command {
	var bars, ticks, cached bool
	var importPath, exportPath string
	var clean, format string
	var cleanAll bool
	var symbol, exchange, interval, start, end string

	cmd := &cobra.Command{
		Use:   "data",
		Short: "Query, import, export and clean historical market data",
		Example: `  tradeconsole data --bars --symbol BTCUSDT --interval 1h --start 2026-01-01 --end 2026-02-01
  tradeconsole data --import bars.csv --symbol BTCUSDT --interval 1h
  tradeconsole data --export out.csv --symbol BTCUSDT --format csv
  tradeconsole data --clean BTCUSDT`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPTimeout)
			defer cancel()

			p := rest.MarketDataParams{
				Symbol:   symbol,
				Exchange: exchange,
				Interval: interval,
				Start:    start,
				End:      end,
			}

			switch {
			case importPath != "":
				msg, err := a.engine.Data.Import(ctx, importPath, symbol, exchange, interval)
				if err != nil {
					return err
				}
				fmt.Println(msg)
				return nil

			case exportPath != "":
				n, err := a.engine.Data.Export(ctx, rest.ExportRequest{
					Symbol:   symbol,
					Exchange: exchange,
					Interval: interval,
					Format:   format,
					Start:    start,
					End:      end,
				}, exportPath)
				if err != nil {
					return err
				}
				fmt.Printf("wrote %d bytes to %s\n", n, exportPath)
				return nil

			case clean != "" || cleanAll:
				n, err := a.engine.Data.Clean(ctx, rest.CleanParams{
					Symbol:   clean,
					Exchange: exchange,
					Interval: interval,
					All:      cleanAll,
				})
				if err != nil {
					return err
				}
				fmt.Printf("removed %d records\n", n)
				return nil

			case ticks:
				rows, err := a.engine.Data.FetchTicks(ctx, p)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "SYMBOL\tTIME\tLAST\tBID\tASK\tVOLUME")
				for _, t := range rows {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						t.Symbol, t.Timestamp.Format("2006-01-02 15:04:05.000"),
						t.LastPrice, t.BidPrice1, t.AskPrice1, t.Volume)
				}
				return w.Flush()

			case cached:
				rows, err := a.engine.Data.CachedBars(ctx, symbol, interval)
				if err != nil {
					return err
				}
				return printBars(rows)

			case bars:
				rows, err := a.engine.Data.FetchBars(ctx, p)
				if err != nil {
					return err
				}
				return printBars(rows)
			}

			return fmt.Errorf("nothing to do: pass one of --bars, --ticks, --cached, --import, --export or --clean")
		},
	}

	cmd.Flags().BoolVar(&bars, "bars", false, "Fetch candlesticks from the backend")
	cmd.Flags().BoolVar(&ticks, "ticks", false, "Fetch raw ticks from the backend")
	cmd.Flags().BoolVar(&cached, "cached", false, "List locally cached candlesticks")
	cmd.Flags().StringVar(&importPath, "import", "", "Upload a CSV file of market data")
	cmd.Flags().StringVar(&exportPath, "export", "", "Download market data into this file")
	cmd.Flags().StringVar(&clean, "clean", "", "Remove server-side and cached data for this symbol")
	cmd.Flags().BoolVar(&cleanAll, "clean-all", false, "Remove all server-side and cached data")
	cmd.Flags().StringVar(&format, "format", "csv", "Export format")
	cmd.Flags().StringVar(&symbol, "symbol", "", "Symbol")
	cmd.Flags().StringVar(&exchange, "exchange", "", "Exchange")
	cmd.Flags().StringVar(&interval, "interval", "", "Bar interval, e.g. 1m, 1h, 1d")
	cmd.Flags().StringVar(&start, "start", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Range end (YYYY-MM-DD)")
	return cmd
}

func printBars(rows []domain.Bar) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tINTERVAL\tOPEN TIME\tOPEN\tHIGH\tLOW\tCLOSE\tVOLUME")
	for _, b := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.Symbol, b.Interval, b.OpenTime.Format("2006-01-02 15:04"),
			b.Open, b.High, b.Low, b.Close, b.Volume)
	}
	return w.Flush()
}
