package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTestCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a probe push to every active device.",
		Args:  cobra.NoArgs,
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			printReport(cmd.OutOrStdout(), a.tester.Run(cmd.Context()))
			return nil
		}),
	}
}

func newLastTestCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "last-test",
		Short: "Show the last connectivity report.",
		Args:  cobra.NoArgs,
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			r := a.tester.Last(cmd.Context())
			if r == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no connectivity test recorded")
				return nil
			}

			printReport(cmd.OutOrStdout(), *r)

			return nil
		}),
	}
}

func newSweepCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Recompute expiry flags of registered devices.",
		Args:  cobra.NoArgs,
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			a.registry.RecomputeExpiry(cmd.Context())
			printDevices(cmd.OutOrStdout(), a.registry.List())
			return nil
		}),
	}
}
