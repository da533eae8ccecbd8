package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/webnn-conformance/internal/conformance"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <path>...",
		Short: "List the cases found in fixture files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := conformance.LoadPaths(cmd.Context(), args)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CASE\tOPERATORS\tTOLERANCE\tSOURCE")
			for _, c := range cases {
				ops := make([]string, len(c.Graph.Operators))
				for i, op := range c.Graph.Operators {
					ops[i] = op.Name
				}
				tol := "policy"
				if c.Tolerance != nil {
					tol = c.Tolerance.String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, strings.Join(ops, ","), tol, c.Source)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d cases\n", len(cases))
			return err
		},
	}
}
