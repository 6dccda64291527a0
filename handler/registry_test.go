package handler_test

import (
	"context"
	"strings"
	"testing"

	"github.com/func/cfn-sagemaker/handler"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fakeResource struct {
	name string
	fn   func(req *handler.Request) *handler.ProgressEvent
}

func (f *fakeResource) TypeName() string { return f.name }

func (f *fakeResource) Handle(_ context.Context, req *handler.Request, _ *zap.Logger) *handler.ProgressEvent {
	return f.fn(req)
}

func TestRegistry_Types(t *testing.T) {
	reg := &handler.Registry{}
	reg.Register(&fakeResource{name: "AWS::SageMaker::Pipeline"})
	reg.Register(&fakeResource{name: "AWS::SageMaker::ModelPackageGroup"})
	reg.Register(&fakeResource{name: "AWS::SageMaker::Pipeline"})

	got := reg.Types()
	want := []string{"AWS::SageMaker::ModelPackageGroup", "AWS::SageMaker::Pipeline"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Types() (-got, +want)\n%s", diff)
	}
	if reg.Resource("AWS::Lambda::Function") != nil {
		t.Errorf("Resource() returned resource for unregistered type")
	}
}

func TestRegistry_Invoke(t *testing.T) {
	tests := []struct {
		name string
		fn   func(req *handler.Request) *handler.ProgressEvent
		req  *handler.Request
		want *handler.ProgressEvent
	}{
		{
			name: "Success",
			fn: func(req *handler.Request) *handler.ProgressEvent {
				return handler.Done(map[string]string{"Name": "x"})
			},
			req: &handler.Request{TypeName: "Test::Type", Action: handler.Read},
			want: &handler.ProgressEvent{
				Status:        handler.Success,
				ResourceModel: map[string]string{"Name": "x"},
			},
		},
		{
			name: "InProgress",
			fn: func(req *handler.Request) *handler.ProgressEvent {
				return handler.Pending(nil, &handler.CallbackContext{Stage: "create"}, 5)
			},
			req: &handler.Request{TypeName: "Test::Type", Action: handler.Create},
			want: &handler.ProgressEvent{
				Status:               handler.InProgress,
				CallbackContext:      &handler.CallbackContext{Stage: "create"},
				CallbackDelaySeconds: 5,
			},
		},
		{
			name: "TerminalClearsCallback",
			fn: func(req *handler.Request) *handler.ProgressEvent {
				ev := handler.Done(nil)
				ev.CallbackDelaySeconds = 10
				ev.CallbackContext = &handler.CallbackContext{Stage: "create"}
				return ev
			},
			req:  &handler.Request{TypeName: "Test::Type", Action: handler.Delete},
			want: &handler.ProgressEvent{Status: handler.Success},
		},
		{
			name: "FailedDropsModel",
			fn: func(req *handler.Request) *handler.ProgressEvent {
				ev := handler.Fail(handler.Errorf(handler.NotFound, "gone"))
				ev.ResourceModel = "stale"
				return ev
			},
			req: &handler.Request{TypeName: "Test::Type", Action: handler.Read},
			want: &handler.ProgressEvent{
				Status:    handler.Failed,
				ErrorCode: handler.NotFound,
				Message:   "gone",
			},
		},
		{
			name: "Panic",
			fn: func(req *handler.Request) *handler.ProgressEvent {
				panic("boom")
			},
			req: &handler.Request{TypeName: "Test::Type", Action: handler.Update},
			want: &handler.ProgressEvent{
				Status:    handler.Failed,
				ErrorCode: handler.GeneralServiceException,
				Message:   "Error occurred during operation 'UPDATE'. Reason: boom",
			},
		},
		{
			name: "NilEvent",
			fn: func(req *handler.Request) *handler.ProgressEvent {
				return nil
			},
			req: &handler.Request{TypeName: "Test::Type", Action: handler.List},
			want: &handler.ProgressEvent{
				Status:    handler.Failed,
				ErrorCode: handler.GeneralServiceException,
				Message:   "Handler for Test::Type returned no event.",
			},
		},
		{
			name: "LowerCaseAction",
			fn: func(req *handler.Request) *handler.ProgressEvent {
				if req.Action != handler.Delete {
					return handler.Fail(handler.Errorf(handler.InvalidRequest, "Action %q is not supported.", req.Action))
				}
				return handler.Done(nil)
			},
			req:  &handler.Request{TypeName: "Test::Type", Action: "delete"},
			want: &handler.ProgressEvent{Status: handler.Success},
		},
		{
			name: "UnknownAction",
			req:  &handler.Request{TypeName: "Test::Type", Action: "IMPORT"},
			want: &handler.ProgressEvent{
				Status:    handler.Failed,
				ErrorCode: handler.InvalidRequest,
				Message:   `Action "IMPORT" is not supported.`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &handler.Registry{}
			reg.Register(&fakeResource{name: "Test::Type", fn: tt.fn})

			got := reg.Invoke(context.Background(), tt.req, zaptest.NewLogger(t))
			if diff := cmp.Diff(got, tt.want); diff != "" {
				t.Errorf("Invoke() (-got, +want)\n%s", diff)
			}
		})
	}
}

func TestRegistry_Invoke_unknownType(t *testing.T) {
	reg := &handler.Registry{}
	reg.Register(&fakeResource{name: "AWS::SageMaker::Pipeline"})

	got := reg.Invoke(context.Background(), &handler.Request{
		TypeName: "AWS::SageMaker::Pipelin",
		Action:   handler.Read,
	}, nil)

	if got.Status != handler.Failed || got.ErrorCode != handler.InvalidRequest {
		t.Fatalf("Invoke() = %s %s, want FAILED InvalidRequest", got.Status, got.ErrorCode)
	}
	if !strings.Contains(got.Message, `Did you mean "AWS::SageMaker::Pipeline"?`) {
		t.Errorf("Message does not contain suggestion: %s", got.Message)
	}
}
