package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/func/cfn-sagemaker/orchestrator"
	"github.com/func/cfn-sagemaker/storage"
	"github.com/func/cfn-sagemaker/storage/kvbackend"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var runCommand = &cobra.Command{
	Use:   "run <file>",
	Short: "Drive requests to completion",
	Long: `Drive requests to completion.

Handlers are invoked until they report SUCCESS or FAILED. Callback delays are
honored, list results are followed across pages and throttled invocations are
retried. Every event is checkpointed to the state file so that an interrupted
run can be continued with resume.

If the file contains a list of requests, they are run concurrently.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.sync()

		reqs, err := readRequests(args[0])
		if err != nil {
			return err
		}
		if len(reqs) == 1 {
			if err := applyRequestFlags(cmd, reqs[0]); err != nil {
				return err
			}
		}

		runs, closeRuns, err := a.openRuns()
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, closeRuns())
		}()

		ctx := signalContext(context.Background())
		d := a.driver(runs)
		if n, err := cmd.Flags().GetUint("concurrency"); err == nil && n > 0 {
			d.Concurrency = n
		}

		results, runErr := d.RunAll(ctx, reqs)
		for _, res := range results {
			if res != nil {
				printResult(res)
			}
		}
		return runErr
	},
}

var resumeCommand = &cobra.Command{
	Use:   "resume <run-id>",
	Short: "Resume an interrupted run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.sync()

		runs, closeRuns, err := a.openRuns()
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, closeRuns())
		}()

		ctx := signalContext(context.Background())
		res, err := a.driver(runs).Resume(ctx, args[0])
		if err != nil {
			if errors.Cause(err) == storage.ErrNotFound {
				return errors.Errorf("run %s not found", args[0])
			}
			return err
		}
		printResult(res)
		return res.Err()
	},
}

var runsCommand = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.sync()

		runs, closeRuns, err := a.openRuns()
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, closeRuns())
		}()

		ctx := context.Background()
		list, err := runs.List(ctx)
		if err != nil {
			return err
		}
		if prune, _ := cmd.Flags().GetBool("prune"); prune {
			var n int
			list, n, err = pruneRuns(ctx, runs, list)
			if err != nil {
				return err
			}
			a.logger.Info("Pruned runs", zap.Int("count", n))
		}
		return writeRuns(os.Stdout, list)
	},
}

// pruneRuns deletes the completed runs in list and returns the runs that are
// left.
func pruneRuns(ctx context.Context, runs *storage.Runs, list []*storage.Checkpoint) ([]*storage.Checkpoint, int, error) {
	left := list[:0:0]
	n := 0
	for _, cp := range list {
		if !cp.Done() {
			left = append(left, cp)
			continue
		}
		if err := runs.Delete(ctx, cp.ID); err != nil {
			return nil, n, err
		}
		n++
	}
	return left, n, nil
}

// openRuns opens the run store in the configured state file.
func (a *app) openRuns() (*storage.Runs, func() error, error) {
	db, err := kvbackend.NewBolt(a.settings.StateFile, boltTimeout)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open state file")
	}
	a.logger.Debug("Opened state file", zap.String("path", db.Path()))
	return &storage.Runs{Backend: db}, db.Close, nil
}

func printResult(res *orchestrator.Result) {
	fmt.Fprintf(os.Stderr, "Run %s: %s %s\n", cyan(res.ID), summary(res.Event), faint(fmt.Sprintf("(%d invocations)", res.Invocations)))
	var out interface{} = res.Event
	if res.Models != nil {
		out = res.Models
	}
	if err := writeJSON(os.Stdout, out); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func init() {
	runCommand.Flags().String("action", "", "Override the request action")
	runCommand.Flags().String("type", "", "Override the request type name")
	runCommand.Flags().Uint("concurrency", 0, "Maximum number of concurrent runs")
	runsCommand.Flags().Bool("prune", false, "Delete completed runs")

	Root.AddCommand(runCommand)
	Root.AddCommand(resumeCommand)
	Root.AddCommand(runsCommand)
}
