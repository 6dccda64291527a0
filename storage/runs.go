package storage

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/func/cfn-sagemaker/handler"
	"github.com/pkg/errors"
)

// The KVBackend is used for persisting key-value data.
type KVBackend interface {
	// Put creates or updates a key.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the given key. Returns ErrNotFound if the given key does not
	// exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete deletes a key. Returns ErrNotFound if the given key does not exist.
	Delete(ctx context.Context, key string) error

	// Scan returns a key-value map of all keys matching the given prefix.
	Scan(ctx context.Context, prefix string) (map[string][]byte, error)
}

// A Checkpoint is the state of a run after its latest invocation.
type Checkpoint struct {
	ID string `json:"id"`

	// Request is the request for the next invocation. The callback context,
	// resource state and next token reflect the latest event.
	Request *handler.Request `json:"request"`

	// Event is the latest event. Nil if the run has not been invoked yet.
	Event *handler.ProgressEvent `json:"event,omitempty"`

	// Models collects resource models from all list pages.
	Models []interface{} `json:"models,omitempty"`

	Invocations int       `json:"invocations"`
	Started     time.Time `json:"started"`
	Updated     time.Time `json:"updated"`
}

// Done returns true if the run reached a terminal event.
func (c *Checkpoint) Done() bool {
	return c.Event != nil && c.Event.Status.Terminal() && c.Request.NextToken == nil
}

const runsPrefix = "runs"

// Runs stores run checkpoints.
type Runs struct {
	Backend KVBackend // Backend to use for persisting data.
}

func runKey(id string) string { return runsPrefix + "/" + id }

// Put creates or updates a checkpoint.
func (r *Runs) Put(ctx context.Context, cp *Checkpoint) error {
	if cp.ID == "" {
		return errors.New("checkpoint id not set")
	}
	j, err := json.Marshal(cp)
	if err != nil {
		return errors.Wrap(err, "marshal checkpoint")
	}
	if err := r.Backend.Put(ctx, runKey(cp.ID), j); err != nil {
		return errors.Wrap(err, "store")
	}
	return nil
}

// Get returns a checkpoint by run id. The returned error has ErrNotFound as
// its cause if the run does not exist.
func (r *Runs) Get(ctx context.Context, id string) (*Checkpoint, error) {
	data, err := r.Backend.Get(ctx, runKey(id))
	if err != nil {
		return nil, errors.Wrapf(err, "get run %s", id)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, errors.Wrap(err, "unmarshal checkpoint")
	}
	return &cp, nil
}

// Delete deletes a checkpoint.
func (r *Runs) Delete(ctx context.Context, id string) error {
	if err := r.Backend.Delete(ctx, runKey(id)); err != nil {
		return errors.Wrapf(err, "delete run %s", id)
	}
	return nil
}

// List returns all checkpoints ordered by run id.
func (r *Runs) List(ctx context.Context) ([]*Checkpoint, error) {
	values, err := r.Backend.Scan(ctx, runsPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	ret := make([]*Checkpoint, 0, len(values))
	for k, v := range values {
		var cp Checkpoint
		if err := json.Unmarshal(v, &cp); err != nil {
			return nil, errors.Wrapf(err, "unmarshal checkpoint %s", k)
		}
		ret = append(ret, &cp)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret, nil
}
