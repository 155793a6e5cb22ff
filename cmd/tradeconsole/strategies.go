package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tradeconsole/internal/adapters/rest"
)

func strategiesCmd() *cobra.Command {
	var create, update, del, start, stop, showLog string
	var name, className, params string

	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "List and manage server-side strategies",
		Example: `  tradeconsole strategies
  tradeconsole strategies --create my-grid --class GridStrategy --params '{"grid_step": 10}'
  tradeconsole strategies --start 42
  tradeconsole strategies --log 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPTimeout)
			defer cancel()

			parseParams := func() (map[string]interface{}, error) {
				if params == "" {
					return nil, nil
				}
				var m map[string]interface{}
				if err := json.Unmarshal([]byte(params), &m); err != nil {
					return nil, fmt.Errorf("invalid --params JSON: %w", err)
				}
				return m, nil
			}

			switch {
			case create != "":
				p, err := parseParams()
				if err != nil {
					return err
				}
				if err := a.engine.Strategies.Create(ctx, rest.StrategyRequest{
					Name: create, ClassName: className, Parameters: p,
				}); err != nil {
					return err
				}
				fmt.Printf("strategy %q created\n", create)
				return nil

			case update != "":
				p, err := parseParams()
				if err != nil {
					return err
				}
				if err := a.engine.Strategies.Update(ctx, update, rest.StrategyRequest{
					Name: name, ClassName: className, Parameters: p,
				}); err != nil {
					return err
				}
				fmt.Printf("strategy %s updated\n", update)
				return nil

			case del != "":
				if err := a.engine.Strategies.Delete(ctx, del); err != nil {
					return err
				}
				fmt.Printf("strategy %s deleted\n", del)
				return nil

			case start != "":
				if err := a.engine.Strategies.Start(ctx, start); err != nil {
					return err
				}
				fmt.Printf("strategy %s started\n", start)
				return nil

			case stop != "":
				if err := a.engine.Strategies.Stop(ctx, stop); err != nil {
					return err
				}
				fmt.Printf("strategy %s stopped\n", stop)
				return nil

			case showLog != "":
				lines, err := a.engine.Strategies.Log(ctx, showLog)
				if err != nil {
					return err
				}
				for _, line := range lines {
					fmt.Println(line)
				}
				return nil
			}

			if err := a.engine.Strategies.FetchAll(ctx); err != nil {
				return err
			}
			if err := a.storeError(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCLASS\tSTATUS\tCREATED\tSTARTED")
			for _, s := range a.store.Strategies() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.Name, s.ClassName, s.Status, s.CreatedAt, s.StartedAt)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&create, "create", "", "Create a strategy with this name")
	cmd.Flags().StringVar(&update, "update", "", "Update the strategy with this ID")
	cmd.Flags().StringVar(&del, "delete", "", "Delete the strategy with this ID")
	cmd.Flags().StringVar(&start, "start", "", "Start the strategy with this ID")
	cmd.Flags().StringVar(&stop, "stop", "", "Stop the strategy with this ID")
	cmd.Flags().StringVar(&showLog, "log", "", "Print the log of the strategy with this ID")
	cmd.Flags().StringVar(&name, "name", "", "Strategy name for --update")
	cmd.Flags().StringVar(&className, "class", "", "Strategy class name for --create/--update")
	cmd.Flags().StringVar(&params, "params", "", "Strategy parameters as a JSON object")
	return cmd
}
