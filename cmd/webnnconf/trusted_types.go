package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/born-ml/webnn-conformance/internal/trustedtypes"
)

func newTrustedTypesCmd() *cobra.Command {
	var (
		suffix   string
		location string
	)

	cmd := &cobra.Command{
		Use:   "trusted-types",
		Short: "Check the sample Trusted Types policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			factory := trustedtypes.NewFactory(trustedtypes.WithLogger(slog.Default()))

			results, err := trustedtypes.SelfCheck(factory, suffix)
			for _, r := range results {
				status := "ok"
				if !r.OK() {
					status = "FAIL: " + r.Err.Error()
				}
				fmt.Fprintf(out, "%-10s %-28s %q %s\n", r.Kind, r.Policy, r.Got, status)
			}
			if err != nil {
				return err
			}

			if location != "" {
				p, err := factory.CreatePolicy("LocationPolicy"+suffix, trustedtypes.PolicyOptions{
					CreateURL: trustedtypes.LocationFragment(location),
				})
				if err != nil {
					return err
				}
				v, err := p.CreateURL(trustedtypes.Inputs[trustedtypes.KindURL])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-10s %-28s %q\n", "Location", p.Name(), v.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&suffix, "suffix", "", "Suffix appended to the sample policy names")
	cmd.Flags().StringVar(&location, "location", "", "Also run the location fragment policy against this href")

	return cmd
}
