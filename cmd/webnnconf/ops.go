package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/webnn-conformance/internal/conformance"
	"github.com/born-ml/webnn-conformance/internal/webnn/operators"
)

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List supported operators and whether they have a tolerance policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			policies := make(map[string]bool)
			for _, op := range conformance.DefaultPolicies().Operators() {
				policies[op] = true
			}

			for _, op := range operators.NewRegistry().SupportedOps() {
				suffix := ""
				if !policies[op] {
					suffix = " (no tolerance policy)"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", op, suffix); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
