package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAvatarCmd(gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "avatar",
		Short: "Show or change the icon attached to every push.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show current avatar url.",
		Args:  cobra.NoArgs,
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.settings.Get().AvatarURL)
			return nil
		}),
	}, &cobra.Command{
		Use:   "set <url>",
		Short: "Change avatar url.",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.settings.SetAvatar(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), a.settings.Get().AvatarURL)

			return nil
		}),
	})

	return cmd
}

func newGroupsCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List message groups. The first one is the default.",
		Args:  cobra.NoArgs,
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			for _, g := range a.settings.MessageGroups() {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}

			return nil
		}),
	}
}
