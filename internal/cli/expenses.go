package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tally-web/internal/model"
)

func newListCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			items, err := st.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDESCRIPTION\tAMOUNT")
			for _, e := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, e.Description, model.FormatAmount(e.Amount))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var desc, amount, note string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an expense",
		Example: `tally add -d "Coffee" -a 3.00 -n "with **oat** milk"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			exp, err := st.Create(cmd.Context(), model.Draft{
				Description: desc,
				Amount:      amount,
				Note:        note,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added expense %d: %s %s\n",
				exp.ID, exp.Description, model.FormatAmount(exp.Amount))
			return nil
		},
	}

	cmd.Flags().StringVarP(&desc, "description", "d", "", "expense description")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount, e.g. 3.50")
	cmd.Flags().StringVarP(&note, "note", "n", "", "optional markdown note")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("bad expense id %q", args[0])
			}

			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted expense %d\n", id)
			return nil
		},
	}
	return cmd
}
