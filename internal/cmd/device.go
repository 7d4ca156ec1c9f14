package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ferux/pushcenter/internal/model"
	ptime "github.com/ferux/pushcenter/internal/time"
)

// errValidationFailed is returned when the relay did not accept a device code.
const errValidationFailed = model.Error("device code validation failed")

func newDeviceCmd(gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage registered devices.",
	}

	cmd.AddCommand(
		newDeviceAddCmd(gf),
		newDeviceListCmd(gf),
		newDeviceUpdateCmd(gf),
		newDeviceDeleteCmd(gf),
		newDeviceValidateCmd(gf),
	)

	return cmd
}

func parseExpire(s string) (*ptime.Date, error) {
	if s == "" {
		return nil, nil
	}

	d, err := ptime.ParseDate(s)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func newDeviceAddCmd(gf *globalFlags) *cobra.Command {
	var code, name, expire string
	var skipValidation bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Validate a device code against the relay and register the device.",
		Args:  cobra.NoArgs,
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			exp, err := parseExpire(expire)
			if err != nil {
				return err
			}

			code, name = strings.TrimSpace(code), strings.TrimSpace(name)

			if code == "" {
				return model.ErrEmptyDeviceCode
			}

			if name == "" {
				return model.ErrEmptyName
			}

			if !skipValidation && !a.registry.ValidateDeviceCode(cmd.Context(), code) {
				return errValidationFailed
			}

			d, err := a.registry.Add(cmd.Context(), code, name, exp)
			if err != nil {
				return err
			}

			printDevices(cmd.OutOrStdout(), []model.Device{d})

			return nil
		}),
	}

	cmd.Flags().StringVar(&code, "code", "", "device code issued by the relay")
	cmd.Flags().StringVar(&name, "name", "", "device name")
	cmd.Flags().StringVar(&expire, "expire", "", "expire date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "do not probe the relay")

	return cmd
}

func newDeviceListCmd(gf *globalFlags) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered devices.",
		Args:  cobra.NoArgs,
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			devices := a.registry.List()
			if activeOnly {
				devices = a.registry.Active()
			}

			printDevices(cmd.OutOrStdout(), devices)

			return nil
		}),
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only devices which are not expired")

	return cmd
}

func newDeviceUpdateCmd(gf *globalFlags) *cobra.Command {
	var code, name, expire string
	var noExpire bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a registered device.",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			d, err := a.registry.Get(args[0])
			if err != nil {
				return fmt.Errorf("device %s: %w", args[0], err)
			}

			if cmd.Flags().Changed("code") {
				d.DeviceCode = code
			}

			if cmd.Flags().Changed("name") {
				d.Name = name
			}

			if cmd.Flags().Changed("expire") {
				if d.ExpireDate, err = parseExpire(expire); err != nil {
					return err
				}
			}

			if noExpire {
				d.ExpireDate = nil
			}

			if err = a.registry.Update(cmd.Context(), d); err != nil {
				return err
			}

			d, err = a.registry.Get(d.ID)
			if err != nil {
				return err
			}

			printDevices(cmd.OutOrStdout(), []model.Device{d})

			return nil
		}),
	}

	cmd.Flags().StringVar(&code, "code", "", "new device code")
	cmd.Flags().StringVar(&name, "name", "", "new device name")
	cmd.Flags().StringVar(&expire, "expire", "", "new expire date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&noExpire, "no-expire", false, "remove expire date")

	return cmd
}

func newDeviceDeleteCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a device. Its history entries are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.registry.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "device %s deleted\n", args[0])

			return nil
		}),
	}
}

func newDeviceValidateCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <code>",
		Short: "Check a device code against the relay without registering it.",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(gf, func(cmd *cobra.Command, args []string, a *app) error {
			if !a.registry.ValidateDeviceCode(cmd.Context(), args[0]) {
				return errValidationFailed
			}

			fmt.Fprintln(cmd.OutOrStdout(), "device code is valid")

			return nil
		}),
	}
}
