package handler

// A Status is the state of an operation reported in a ProgressEvent.
type Status string

// Operation statuses.
const (
	InProgress Status = "IN_PROGRESS"
	Success    Status = "SUCCESS"
	Failed     Status = "FAILED"
)

// Terminal returns true if no further invocations are expected.
func (s Status) Terminal() bool { return s == Success || s == Failed }

// A ProgressEvent is returned from every handler invocation.
type ProgressEvent struct {
	Status    Status    `json:"status"`
	ErrorCode ErrorCode `json:"errorCode,omitempty"`
	Message   string    `json:"message,omitempty"`

	// ResourceModel is set on SUCCESS for create, read and update, and on
	// IN_PROGRESS when the handler has learned identifiers worth keeping.
	ResourceModel interface{} `json:"resourceModel,omitempty"`

	// ResourceModels and NextToken are only set for list.
	ResourceModels []interface{} `json:"resourceModels,omitempty"`
	NextToken      *string       `json:"nextToken,omitempty"`

	CallbackContext      *CallbackContext `json:"callbackContext,omitempty"`
	CallbackDelaySeconds int              `json:"callbackDelaySeconds"`
}

// Done returns a SUCCESS event. Model may be nil for delete.
func Done(model interface{}) *ProgressEvent {
	return &ProgressEvent{
		Status:        Success,
		ResourceModel: model,
	}
}

// Listed returns a SUCCESS event for a page of list results.
func Listed(models []interface{}, next *string) *ProgressEvent {
	if models == nil {
		models = []interface{}{}
	}
	return &ProgressEvent{
		Status:         Success,
		ResourceModels: models,
		NextToken:      next,
	}
}

// Pending returns an IN_PROGRESS event asking to be invoked again with cbctx
// after delaySeconds.
func Pending(model interface{}, cbctx *CallbackContext, delaySeconds int) *ProgressEvent {
	return &ProgressEvent{
		Status:               InProgress,
		ResourceModel:        model,
		CallbackContext:      cbctx,
		CallbackDelaySeconds: delaySeconds,
	}
}

// Fail returns a FAILED event for err. Errors that are not an *Error are
// reported as GeneralServiceException so that no raw error crosses the
// handler boundary.
func Fail(err error) *ProgressEvent {
	e := AsError(err)
	return &ProgressEvent{
		Status:    Failed,
		ErrorCode: e.Code,
		Message:   e.Message,
	}
}
