package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/go-kit/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	httpclient "github.com/foreseegroup/unitsvc/client/http"
	"github.com/foreseegroup/unitsvc/models"
	"github.com/foreseegroup/unitsvc/unitsvc"
)

var instance string

// unitsCmd groups the commands that talk to a running instance.
var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "Manage units on a running instance.",
}

var unitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all units.",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, s unitsvc.Service, w io.Writer, _ []string) error {
		units, err := s.ListUnits(ctx)
		if err != nil {
			return err
		}
		return printJSON(w, units)
	}),
}

var unitsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one unit.",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, s unitsvc.Service, w io.Writer, args []string) error {
		unit, err := s.GetUnit(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(w, unit)
	}),
}

var unitsCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a unit.",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, s unitsvc.Service, w io.Writer, args []string) error {
		unit, err := s.CreateUnit(ctx, &models.Unit{Name: args[0]})
		if err != nil {
			return err
		}
		return printJSON(w, unit)
	}),
}

var unitsRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a unit.",
	Args:  cobra.ExactArgs(2),
	RunE: withClient(func(ctx context.Context, s unitsvc.Service, w io.Writer, args []string) error {
		unit, err := s.UpdateUnit(ctx, args[0], &models.Unit{Name: args[1]})
		if err != nil {
			return err
		}
		return printJSON(w, unit)
	}),
}

var unitsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a unit.",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, s unitsvc.Service, _ io.Writer, args []string) error {
		return s.DeleteUnit(ctx, args[0])
	}),
}

func init() {
	RootCmd.AddCommand(unitsCmd)
	unitsCmd.AddCommand(unitsListCmd, unitsGetCmd, unitsCreateCmd, unitsRenameCmd, unitsDeleteCmd)

	unitsCmd.PersistentFlags().StringVarP(&instance, "instance", "i", "localhost:8080", "address of the unitsvc instance")
}

type clientFunc func(ctx context.Context, s unitsvc.Service, w io.Writer, args []string) error

func withClient(fn clientFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := log.NewLogfmtLogger(logrus.StandardLogger().Out)
		s, err := httpclient.New(instance, logger)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return fn(ctx, s, cmd.OutOrStdout(), args)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
