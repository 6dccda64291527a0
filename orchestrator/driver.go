package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/func/cfn-sagemaker/handler"
	"github.com/func/cfn-sagemaker/storage"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default maximum number of concurrent runs in
// RunAll.
var DefaultConcurrency = 4

// DefaultMaxInvocations is the default maximum number of invocations in a
// single run.
const DefaultMaxInvocations = 1000

// An Invoker invokes a handler. It is implemented by *handler.Registry.
type Invoker interface {
	Invoke(ctx context.Context, req *handler.Request, logger *zap.Logger) *handler.ProgressEvent
}

// A Driver drives requests to a terminal event.
type Driver struct {
	Invoker Invoker

	// Runs stores run checkpoints. If not set, runs are not stored and
	// cannot be resumed.
	Runs *storage.Runs

	// Logger logs run updates. If not set, logs are discarded.
	Logger *zap.Logger

	// Backoff algorithm used for retries. If not set, exponential backoff is used.
	Backoff func() backoff.BackOff

	// MaxRetries is the number of times a retryable failure is retried
	// within a single invocation. Zero disables retries.
	MaxRetries uint64

	// MaxInvocations limits the number of invocations of a single run. If
	// not set, DefaultMaxInvocations is used.
	MaxInvocations int

	// Concurrency sets the maximum allowed concurrency in RunAll.
	// If not set, DefaultConcurrency is used.
	Concurrency uint

	// Sleep waits for the callback delay. If not set, a timer is used.
	Sleep func(ctx context.Context, d time.Duration) error
}

// A Result is the outcome of a run.
type Result struct {
	ID          string
	Event       *handler.ProgressEvent // Final event.
	Models      []interface{}          // Models from all list pages.
	Invocations int
}

// Err returns the failure reported by the final event, or nil if the run
// succeeded.
func (r *Result) Err() error {
	if r.Event.Status != handler.Failed {
		return nil
	}
	return &handler.Error{Code: r.Event.ErrorCode, Message: r.Event.Message}
}

// Run drives a new request to a terminal event. The returned error is only
// set if the run could not be completed; a FAILED event is returned as part
// of the result.
func (d *Driver) Run(ctx context.Context, req *handler.Request) (*Result, error) {
	r := *req
	now := time.Now()
	cp := &storage.Checkpoint{
		ID:      ksuid.New().String(),
		Request: &r,
		Started: now,
		Updated: now,
	}
	if r.ClientRequestToken == "" {
		r.ClientRequestToken = cp.ID
	}
	if err := d.save(ctx, cp); err != nil {
		return nil, err
	}
	return d.drive(ctx, cp)
}

// Resume continues a previously started run.
func (d *Driver) Resume(ctx context.Context, id string) (*Result, error) {
	if d.Runs == nil {
		return nil, errors.New("runs cannot be resumed without a run store")
	}
	cp, err := d.Runs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.drive(ctx, cp)
}

// RunAll runs all requests concurrently. Results are returned in the same
// order as the requests. The returned error combines the errors of all runs
// that could not be completed or that failed.
func (d *Driver) RunAll(ctx context.Context, reqs []*handler.Request) ([]*Result, error) {
	c := d.Concurrency
	if c == 0 {
		c = uint(DefaultConcurrency)
	}
	sem := semaphore.NewWeighted(int64(c))

	results := make([]*Result, len(reqs))
	errs := make([]error, len(reqs))

	var g errgroup.Group
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				errs[i] = errors.Wrap(err, "acquire semaphore")
				return nil
			}
			defer sem.Release(1)

			res, err := d.Run(ctx, req)
			if err != nil {
				errs[i] = errors.Wrapf(err, "%s %s", req.Action, req.TypeName)
				return nil
			}
			results[i] = res
			if err := res.Err(); err != nil {
				errs[i] = errors.Wrapf(err, "%s %s", req.Action, req.TypeName)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, multierr.Combine(errs...)
}

func (d *Driver) drive(ctx context.Context, cp *storage.Checkpoint) (*Result, error) {
	// The invoker scopes handler logs by type and action.
	logger := d.logger().With(zap.String("run", cp.ID))
	logger.Info("Run started",
		zap.String("type", cp.Request.TypeName),
		zap.String("action", string(cp.Request.Action)),
		zap.Int("invocations", cp.Invocations),
	)

	limit := d.MaxInvocations
	if limit == 0 {
		limit = DefaultMaxInvocations
	}

	for !cp.Done() {
		if cp.Invocations >= limit {
			return nil, errors.Errorf("run %s not done after %d invocations", cp.ID, cp.Invocations)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev := d.invoke(ctx, cp.Request, logger)
		cp.Invocations++
		cp.Event = ev
		cp.Updated = time.Now()
		logger.Debug("Invoked",
			zap.String("status", string(ev.Status)),
			zap.Int("invocation", cp.Invocations),
		)

		delay, err := advance(cp)
		if err != nil {
			return nil, err
		}
		if err := d.save(ctx, cp); err != nil {
			return nil, err
		}

		if delay > 0 {
			logger.Debug("Waiting for callback", zap.Duration("delay", delay))
			if err := d.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	if cp.Event.Status == handler.Failed {
		logger.Info("Run failed", zap.String("code", string(cp.Event.ErrorCode)), zap.String("message", cp.Event.Message))
	} else {
		logger.Info("Run done", zap.Int("invocations", cp.Invocations))
	}

	return &Result{
		ID:          cp.ID,
		Event:       cp.Event,
		Models:      cp.Models,
		Invocations: cp.Invocations,
	}, nil
}

// advance prepares the request for the next invocation based on the latest
// event. It returns the time to wait before invoking again.
func advance(cp *storage.Checkpoint) (time.Duration, error) {
	ev, req := cp.Event, cp.Request
	switch ev.Status {
	case handler.InProgress:
		req.CallbackContext = ev.CallbackContext
		if ev.ResourceModel != nil {
			state, err := json.Marshal(ev.ResourceModel)
			if err != nil {
				return 0, errors.Wrap(err, "marshal resource model")
			}
			req.DesiredResourceState = state
		}
		return time.Duration(ev.CallbackDelaySeconds) * time.Second, nil
	case handler.Success:
		req.CallbackContext = nil
		if req.Action == handler.List {
			cp.Models = append(cp.Models, ev.ResourceModels...)
			req.NextToken = nil
			if ev.NextToken != nil && *ev.NextToken != "" {
				req.NextToken = ev.NextToken
			}
		}
	default:
		req.CallbackContext = nil
		req.NextToken = nil
	}
	return 0, nil
}

// invoke invokes the handler, retrying failures with retryable error codes.
// The last event is returned if retries run out.
func (d *Driver) invoke(ctx context.Context, req *handler.Request, logger *zap.Logger) *handler.ProgressEvent {
	var ev *handler.ProgressEvent
	op := func() error {
		ev = d.Invoker.Invoke(ctx, req, logger)
		if ev == nil {
			ev = handler.Fail(handler.Errorf(handler.GeneralServiceException, "Handler for %s returned no event.", req.TypeName))
			return backoff.Permanent(errors.New("no event"))
		}
		if ev.Status == handler.Failed && ev.ErrorCode.Retryable() {
			return &handler.Error{Code: ev.ErrorCode, Message: ev.Message}
		}
		return nil
	}

	var algo backoff.BackOff = &backoff.StopBackOff{}
	if d.MaxRetries > 0 {
		algo = backoff.WithMaxRetries(d.backoff(), d.MaxRetries)
	}
	algo = backoff.WithContext(algo, ctx)
	notify := func(err error, dur time.Duration) {
		logger.Info("Retrying", zap.Error(err), zap.Duration("duration", dur))
	}
	_ = backoff.RetryNotify(op, algo, notify)
	return ev
}

func (d *Driver) save(ctx context.Context, cp *storage.Checkpoint) error {
	if d.Runs == nil {
		return nil
	}
	// Use new context so a cancelled context still stores the checkpoint.
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Runs.Put(sctx, cp); err != nil {
		return errors.Wrap(err, "store checkpoint")
	}
	return nil
}

func (d *Driver) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d *Driver) backoff() backoff.BackOff {
	if d.Backoff == nil {
		return backoff.NewExponentialBackOff()
	}
	return d.Backoff()
}

func (d *Driver) sleep(ctx context.Context, dur time.Duration) error {
	if d.Sleep != nil {
		return d.Sleep(ctx, dur)
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
