package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ferux/pushcenter/internal/dispatch"
	"github.com/ferux/pushcenter/internal/model"
)

func newSendCmd(gf *globalFlags) *cobra.Command {
	var req dispatch.Request
	var target string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to all active devices or to a single one.",
		Args:  cobra.NoArgs,
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			req.Target = model.Target(target)

			res, err := a.dispatcher.Send(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "outcome: %s\n", res.Outcome())
			printReport(out, res.Report)

			if res.Outcome() == dispatch.OutcomeFailure {
				return fmt.Errorf("sending message: %s", res.Message.ErrorMessage)
			}

			return nil
		}),
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "message title")
	cmd.Flags().StringVar(&req.Content, "content", "", "message content")
	cmd.Flags().StringVar(&target, "target", string(model.TargetAll), "all or single")
	cmd.Flags().StringVar(&req.TargetDeviceID, "device", "", "device id for single target")
	cmd.Flags().StringVar(&req.Group, "group", "", "message group, defaults to the first configured group")

	return cmd
}

func newHistoryCmd(gf *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show sent messages, newest first.",
		Args:  cobra.NoArgs,
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			messages := a.dispatcher.History()
			if limit > 0 && len(messages) > limit {
				messages = messages[:limit]
			}

			printMessages(cmd.OutOrStdout(), messages)

			return nil
		}),
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max entries to show, 0 for all")

	return cmd
}
