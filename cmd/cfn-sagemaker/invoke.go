package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/func/cfn-sagemaker/handler"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var invokeCommand = &cobra.Command{
	Use:   "invoke <file>",
	Short: "Invoke a handler once and print the progress event",
	Long: `Invoke a handler once and print the progress event.

The request is read from a json or yaml file, or from stdin if the file is -.
In progress events are printed as is; use run to drive a request to
completion.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.sync()

		reqs, err := readRequests(args[0])
		if err != nil {
			return err
		}
		if len(reqs) != 1 {
			return errors.Errorf("invoke takes a single request, got %d", len(reqs))
		}
		req := reqs[0]
		if err := applyRequestFlags(cmd, req); err != nil {
			return err
		}

		ctx := signalContext(context.Background())
		ev := a.registry.Invoke(ctx, req, a.logger)

		fmt.Fprintln(os.Stderr, summary(ev))
		if err := writeJSON(os.Stdout, ev); err != nil {
			return err
		}
		if ev.Status == handler.Failed {
			return errors.Errorf("%s %s failed", req.Action, req.TypeName)
		}
		return nil
	},
}

// applyRequestFlags overrides request fields set with flags.
func applyRequestFlags(cmd *cobra.Command, req *handler.Request) error {
	if cmd.Flags().Changed("action") {
		s, err := cmd.Flags().GetString("action")
		if err != nil {
			return err
		}
		a, ok := handler.ParseAction(s)
		if !ok {
			return errors.Errorf("invalid action %q", s)
		}
		req.Action = a
	}
	if cmd.Flags().Changed("type") {
		t, err := cmd.Flags().GetString("type")
		if err != nil {
			return err
		}
		req.TypeName = t
	}
	return nil
}

func init() {
	invokeCommand.Flags().String("action", "", "Override the request action")
	invokeCommand.Flags().String("type", "", "Override the request type name")

	Root.AddCommand(invokeCommand)
}
