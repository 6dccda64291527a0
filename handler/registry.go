package handler

import (
	"context"
	"fmt"
	"sort"

	"github.com/func/cfn-sagemaker/suggest"
	"go.uber.org/zap"
)

// A Resource handles all actions for one resource type.
type Resource interface {
	// TypeName returns the type name the resource is registered with, for
	// example AWS::SageMaker::Pipeline.
	TypeName() string

	// Handle processes a single invocation. Handle must not return a nil
	// event.
	Handle(ctx context.Context, req *Request, logger *zap.Logger) *ProgressEvent
}

// A Registry maintains a list of registered resources and dispatches
// requests to them.
type Registry struct {
	resources map[string]Resource
}

// Register adds a resource. If another resource with the same type name is
// already registered, it is overwritten.
//
// Not safe for concurrent access.
func (r *Registry) Register(res Resource) {
	if r.resources == nil {
		r.resources = make(map[string]Resource)
	}
	r.resources[res.TypeName()] = res
}

// Resource returns the resource registered with a type name. Returns nil if
// the type has not been registered.
func (r *Registry) Resource(typename string) Resource {
	return r.resources[typename]
}

// Types returns the type names that have been registered. The results are
// lexicographically sorted.
func (r *Registry) Types() []string {
	tt := make([]string, 0, len(r.resources))
	for k := range r.resources {
		tt = append(tt, k)
	}
	sort.Strings(tt)
	return tt
}

// Invoke dispatches a request to the resource registered for its type.
//
// Invoke always returns an event. Requests for unknown types or actions fail
// with InvalidRequest, and a panic in a handler is reported as
// GeneralServiceException.
func (r *Registry) Invoke(ctx context.Context, req *Request, logger *zap.Logger) (ev *ProgressEvent) {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Actions are case insensitive; handlers only see the canonical name.
	action, supported := ParseAction(string(req.Action))
	if supported {
		req.Action = action
	}

	logger = logger.With(
		zap.String("type", req.TypeName),
		zap.String("action", string(req.Action)),
	)
	if req.ClientRequestToken != "" {
		logger = logger.With(zap.String("token", req.ClientRequestToken))
	}

	res := r.Resource(req.TypeName)
	if res == nil {
		msg := fmt.Sprintf("Resource type %q is not supported.", req.TypeName)
		if s := suggest.String(req.TypeName, r.Types()); s != "" {
			msg += fmt.Sprintf(" Did you mean %q?", s)
		}
		logger.Debug("Unknown type")
		return Fail(Errorf(InvalidRequest, "%s", msg))
	}
	if !supported {
		return Fail(Errorf(InvalidRequest, "Action %q is not supported.", req.Action))
	}

	defer func() {
		if v := recover(); v != nil {
			logger.Error("Handler panic", zap.Any("panic", v), zap.Stack("stack"))
			ev = Fail(Translate(KindUnknown, Operation{
				API:     string(req.Action),
				Message: fmt.Sprint(v),
			}))
		}
	}()

	logger.Debug("Invoke")
	ev = res.Handle(ctx, req, logger)
	if ev == nil {
		return Fail(Errorf(GeneralServiceException, "Handler for %s returned no event.", req.TypeName))
	}
	if ev.Status.Terminal() {
		ev.CallbackDelaySeconds = 0
		ev.CallbackContext = nil
	}
	if ev.Status == Failed {
		ev.ResourceModel = nil
		logger.Info("Failed", zap.String("code", string(ev.ErrorCode)), zap.String("message", ev.Message))
	} else {
		logger.Debug("Progress", zap.String("status", string(ev.Status)), zap.Int("delay", ev.CallbackDelaySeconds))
	}
	return ev
}
