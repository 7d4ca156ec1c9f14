package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ferux/pushcenter"
)

func newRootCmd() *cobra.Command {
	gf := &globalFlags{}

	root := &cobra.Command{
		Use:           "pushcenter",
		Short:         "Register Bark devices and fan out push notifications to them.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&gf.configPath, "config", defaultConfigPath, "path to config")
	root.PersistentFlags().StringVar(&gf.dataFile, "data", "", "path to data file, overrides config")
	root.PersistentFlags().BoolVar(&gf.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&gf.ephemeral, "ephemeral", false, "keep state in memory only")

	root.AddCommand(
		newDeviceCmd(gf),
		newSendCmd(gf),
		newHistoryCmd(gf),
		newTestCmd(gf),
		newLastTestCmd(gf),
		newAvatarCmd(gf),
		newGroupsCmd(gf),
		newSweepCmd(gf),
		newWatchCmd(gf),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of the application.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "revision=%s branch=%s env=%s\n",
				pushcenter.Revision, pushcenter.Branch, pushcenter.Env)
		},
	}
}
