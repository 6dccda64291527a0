package sagemaker_test

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/smithy-go"
	"github.com/func/cfn-sagemaker/handler"
	provider "github.com/func/cfn-sagemaker/provider/sagemaker"
	"github.com/func/cfn-sagemaker/provider/sagemaker/sagemakertest"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

const groupArn = "arn:aws:sagemaker:us-east-1:123456789012:model-package-group/g1"

var groupCreated = time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

func describeGroup(status types.ModelPackageGroupStatus) func(context.Context, *sagemaker.DescribeModelPackageGroupInput) (*sagemaker.DescribeModelPackageGroupOutput, error) {
	return func(context.Context, *sagemaker.DescribeModelPackageGroupInput) (*sagemaker.DescribeModelPackageGroupOutput, error) {
		return &sagemaker.DescribeModelPackageGroupOutput{
			ModelPackageGroupArn:         aws.String(groupArn),
			ModelPackageGroupName:        aws.String("g1"),
			ModelPackageGroupDescription: aws.String("models"),
			ModelPackageGroupStatus:      status,
			CreationTime:                 aws.Time(groupCreated),
		}, nil
	}
}

func groupMissing(context.Context, *sagemaker.DescribeModelPackageGroupInput) (*sagemaker.DescribeModelPackageGroupOutput, error) {
	return nil, &smithy.GenericAPIError{Code: "ValidationException", Message: "ModelPackageGroup g1 does not exist."}
}

func noPolicy(context.Context, *sagemaker.GetModelPackageGroupPolicyInput) (*sagemaker.GetModelPackageGroupPolicyOutput, error) {
	return nil, &smithy.GenericAPIError{Code: "ValidationException", Message: "Cannot find Model Package Group policy"}
}

func noTags(context.Context, *sagemaker.ListTagsInput) (*sagemaker.ListTagsOutput, error) {
	return &sagemaker.ListTagsOutput{}, nil
}

func TestModelPackageGroup_Create(t *testing.T) {
	client := &sagemakertest.Client{
		CreateModelPackageGroupFunc: func(context.Context, *sagemaker.CreateModelPackageGroupInput) (*sagemaker.CreateModelPackageGroupOutput, error) {
			return &sagemaker.CreateModelPackageGroupOutput{ModelPackageGroupArn: aws.String(groupArn)}, nil
		},
	}
	h := &provider.ModelPackageGroupHandler{Options: provider.Options{Client: client, CallbackDelay: 3}}

	req := &handler.Request{
		Action: handler.Create,
		DesiredResourceState: mustJSON(t, map[string]interface{}{
			"ModelPackageGroupName":        "g1",
			"ModelPackageGroupDescription": "models",
		}),
		DesiredResourceTags: map[string]string{"team": "ml"},
	}
	got := h.Handle(context.Background(), req, zaptest.NewLogger(t))

	want := &handler.ProgressEvent{
		Status: handler.InProgress,
		ResourceModel: &provider.ModelPackageGroup{
			ModelPackageGroupArn:         groupArn,
			ModelPackageGroupName:        "g1",
			ModelPackageGroupDescription: aws.String("models"),
		},
		CallbackContext:      &handler.CallbackContext{Stage: "create"},
		CallbackDelaySeconds: 3,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Handle() (-got, +want)\n%s", diff)
	}

	in := client.Input("CreateModelPackageGroup").(*sagemaker.CreateModelPackageGroupInput)
	if len(in.Tags) != 1 || aws.ToString(in.Tags[0].Key) != "team" {
		t.Errorf("Tags = %v, want [team=ml]", in.Tags)
	}
}

func TestModelPackageGroup_CreateAlreadyExists(t *testing.T) {
	client := &sagemakertest.Client{
		CreateModelPackageGroupFunc: func(context.Context, *sagemaker.CreateModelPackageGroupInput) (*sagemaker.CreateModelPackageGroupOutput, error) {
			return nil, &types.ResourceInUse{Message: aws.String("already exists")}
		},
	}
	h := &provider.ModelPackageGroupHandler{Options: provider.Options{Client: client}}

	req := &handler.Request{
		Action:               handler.Create,
		DesiredResourceState: mustJSON(t, map[string]string{"ModelPackageGroupName": "g1"}),
	}
	got := h.Handle(context.Background(), req, zaptest.NewLogger(t))
	want := &handler.ProgressEvent{
		Status:    handler.Failed,
		ErrorCode: handler.InvalidRequest,
		Message:   "Resource of type 'AWS::SageMaker::ModelPackageGroup' with identifier 'g1' already exists.",
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Handle() (-got, +want)\n%s", diff)
	}
}

func TestModelPackageGroup_StabilizeCreate(t *testing.T) {
	policy := map[string]interface{}{"Version": "2012-10-17"}
	state := map[string]interface{}{
		"ModelPackageGroupArn":    groupArn,
		"ModelPackageGroupName":   "g1",
		"ModelPackageGroupPolicy": policy,
	}

	tests := []struct {
		name     string
		describe func(context.Context, *sagemaker.DescribeModelPackageGroupInput) (*sagemaker.DescribeModelPackageGroupOutput, error)
		want     *handler.ProgressEvent
		calls    []string
	}{
		{
			name:     "InProgress",
			describe: describeGroup(types.ModelPackageGroupStatusInProgress),
			want: &handler.ProgressEvent{
				Status: handler.InProgress,
				ResourceModel: &provider.ModelPackageGroup{
					ModelPackageGroupArn:    groupArn,
					ModelPackageGroupName:   "g1",
					ModelPackageGroupPolicy: policy,
				},
				CallbackContext:      &handler.CallbackContext{Stage: "create", Attempts: 2},
				CallbackDelaySeconds: provider.DefaultCallbackDelay,
			},
			calls: []string{"DescribeModelPackageGroup"},
		},
		{
			name:     "NotVisible",
			describe: groupMissing,
			want: &handler.ProgressEvent{
				Status: handler.InProgress,
				ResourceModel: &provider.ModelPackageGroup{
					ModelPackageGroupArn:    groupArn,
					ModelPackageGroupName:   "g1",
					ModelPackageGroupPolicy: policy,
				},
				CallbackContext:      &handler.CallbackContext{Stage: "create", Attempts: 2},
				CallbackDelaySeconds: provider.DefaultCallbackDelay,
			},
			calls: []string{"DescribeModelPackageGroup"},
		},
		{
			name:     "Failed",
			describe: describeGroup(types.ModelPackageGroupStatusFailed),
			want: &handler.ProgressEvent{
				Status:    handler.Failed,
				ErrorCode: handler.GeneralServiceException,
				Message:   "Resource of type 'AWS::SageMaker::ModelPackageGroup' with identifier '" + groupArn + "' did not stabilize. Status: Failed",
			},
			calls: []string{"DescribeModelPackageGroup"},
		},
		{
			name:     "Completed",
			describe: describeGroup(types.ModelPackageGroupStatusCompleted),
			want: &handler.ProgressEvent{
				Status: handler.Success,
				ResourceModel: &provider.ModelPackageGroup{
					ModelPackageGroupArn:         groupArn,
					ModelPackageGroupName:        "g1",
					ModelPackageGroupDescription: aws.String("models"),
					ModelPackageGroupPolicy:      policy,
					ModelPackageGroupStatus:      "Completed",
					CreationTime:                 "2021-06-01T12:00:00Z",
				},
			},
			calls: []string{
				"DescribeModelPackageGroup",
				"PutModelPackageGroupPolicy",
				"DescribeModelPackageGroup",
				"ListTags",
				"GetModelPackageGroupPolicy",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var putPolicy string
			client := &sagemakertest.Client{
				DescribeModelPackageGroupFunc: tc.describe,
				PutModelPackageGroupPolicyFunc: func(_ context.Context, in *sagemaker.PutModelPackageGroupPolicyInput) (*sagemaker.PutModelPackageGroupPolicyOutput, error) {
					putPolicy = aws.ToString(in.ResourcePolicy)
					return &sagemaker.PutModelPackageGroupPolicyOutput{}, nil
				},
				ListTagsFunc: noTags,
				GetModelPackageGroupPolicyFunc: func(context.Context, *sagemaker.GetModelPackageGroupPolicyInput) (*sagemaker.GetModelPackageGroupPolicyOutput, error) {
					return &sagemaker.GetModelPackageGroupPolicyOutput{ResourcePolicy: aws.String(putPolicy)}, nil
				},
			}
			h := &provider.ModelPackageGroupHandler{Options: provider.Options{Client: client}}
			req := &handler.Request{
				Action:               handler.Create,
				DesiredResourceState: mustJSON(t, state),
				CallbackContext:      &handler.CallbackContext{Stage: "create", Attempts: 1},
			}

			got := h.Handle(context.Background(), req, zaptest.NewLogger(t))
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Handle() (-got, +want)\n%s", diff)
			}
			if diff := cmp.Diff(client.Methods(), tc.calls); diff != "" {
				t.Errorf("Calls (-got, +want)\n%s", diff)
			}
		})
	}
}

func TestModelPackageGroup_Read(t *testing.T) {
	client := &sagemakertest.Client{
		DescribeModelPackageGroupFunc: describeGroup(types.ModelPackageGroupStatusCompleted),
		ListTagsFunc: func(_ context.Context, in *sagemaker.ListTagsInput) (*sagemaker.ListTagsOutput, error) {
			if got := aws.ToString(in.ResourceArn); got != groupArn {
				t.Errorf("ListTags() ResourceArn = %q, want %q", got, groupArn)
			}
			return &sagemaker.ListTagsOutput{
				Tags: []types.Tag{{Key: aws.String("team"), Value: aws.String("ml")}},
			}, nil
		},
		GetModelPackageGroupPolicyFunc: noPolicy,
	}
	h := &provider.ModelPackageGroupHandler{Options: provider.Options{Client: client}}

	req := &handler.Request{
		Action:               handler.Read,
		DesiredResourceState: mustJSON(t, map[string]string{"ModelPackageGroupArn": groupArn}),
	}
	got := h.Handle(context.Background(), req, zaptest.NewLogger(t))
	want := &handler.ProgressEvent{
		Status: handler.Success,
		ResourceModel: &provider.ModelPackageGroup{
			ModelPackageGroupArn:         groupArn,
			ModelPackageGroupName:        "g1",
			ModelPackageGroupDescription: aws.String("models"),
			ModelPackageGroupStatus:      "Completed",
			CreationTime:                 "2021-06-01T12:00:00Z",
			Tags:                         []provider.Tag{{Key: "team", Value: "ml"}},
		},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Handle() (-got, +want)\n%s", diff)
	}

	in := client.Input("DescribeModelPackageGroup").(*sagemaker.DescribeModelPackageGroupInput)
	if got := aws.ToString(in.ModelPackageGroupName); got != "g1" {
		t.Errorf("Describe name = %q, want name derived from arn", got)
	}
}

func TestModelPackageGroup_ReadNotFound(t *testing.T) {
	client := &sagemakertest.Client{
		DescribeModelPackageGroupFunc: groupMissing,
	}
	h := &provider.ModelPackageGroupHandler{Options: provider.Options{Client: client}}

	req := &handler.Request{
		Action:               handler.Read,
		DesiredResourceState: mustJSON(t, map[string]string{"ModelPackageGroupArn": groupArn}),
	}
	got := h.Handle(context.Background(), req, zaptest.NewLogger(t))
	want := &handler.ProgressEvent{
		Status:    handler.Failed,
		ErrorCode: handler.NotFound,
		Message:   "Resource of type 'AWS::SageMaker::ModelPackageGroup' with identifier '" + groupArn + "' was not found.",
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Handle() (-got, +want)\n%s", diff)
	}
	if diff := cmp.Diff(client.Methods(), []string{"DescribeModelPackageGroup"}); diff != "" {
		t.Errorf("Calls (-got, +want)\n%s", diff)
	}
}

func TestModelPackageGroup_Update(t *testing.T) {
	client := &sagemakertest.Client{
		DescribeModelPackageGroupFunc: describeGroup(types.ModelPackageGroupStatusCompleted),
		DeleteModelPackageGroupPolicyFunc: func(context.Context, *sagemaker.DeleteModelPackageGroupPolicyInput) (*sagemaker.DeleteModelPackageGroupPolicyOutput, error) {
			return &sagemaker.DeleteModelPackageGroupPolicyOutput{}, nil
		},
		AddTagsFunc: func(context.Context, *sagemaker.AddTagsInput) (*sagemaker.AddTagsOutput, error) {
			return &sagemaker.AddTagsOutput{}, nil
		},
		ListTagsFunc:                   noTags,
		GetModelPackageGroupPolicyFunc: noPolicy,
	}
	h := &provider.ModelPackageGroupHandler{Options: provider.Options{Client: client}}

	req := &handler.Request{
		Action: handler.Update,
		DesiredResourceState: mustJSON(t, map[string]interface{}{
			"ModelPackageGroupArn":  groupArn,
			"ModelPackageGroupName": "g1",
		}),
		PreviousResourceState: mustJSON(t, map[string]interface{}{
			"ModelPackageGroupArn":    groupArn,
			"ModelPackageGroupName":   "g1",
			"ModelPackageGroupPolicy": `{"Version":"2012-10-17"}`,
		}),
		DesiredResourceTags: map[string]string{"team": "ml"},
		PreviousResourceTags: map[string]string{
			"aws:cloudformation:stack-name": "s1",
		},
	}
	got := h.Handle(context.Background(), req, zaptest.NewLogger(t))
	if got.Status != handler.Success {
		t.Fatalf("Status = %s, want %s: %s", got.Status, handler.Success, got.Message)
	}

	wantCalls := []string{
		"DescribeModelPackageGroup",
		"DeleteModelPackageGroupPolicy",
		"AddTags",
		"DescribeModelPackageGroup",
		"ListTags",
		"GetModelPackageGroupPolicy",
	}
	if diff := cmp.Diff(client.Methods(), wantCalls); diff != "" {
		t.Errorf("Calls (-got, +want)\n%s", diff)
	}
}

func TestModelPackageGroup_UpdateNotFound(t *testing.T) {
	client := &sagemakertest.Client{
		DescribeModelPackageGroupFunc: groupMissing,
	}
	h := &provider.ModelPackageGroupHandler{Options: provider.Options{Client: client}}

	state := mustJSON(t, map[string]string{"ModelPackageGroupArn": groupArn, "ModelPackageGroupName": "g1"})
	req := &handler.Request{
		Action:                handler.Update,
		DesiredResourceState:  state,
		PreviousResourceState: state,
	}
	got := h.Handle(context.Background(), req, zaptest.NewLogger(t))
	want := &handler.ProgressEvent{
		Status:    handler.Failed,
		ErrorCode: handler.NotFound,
		Message:   "Resource of type 'AWS::SageMaker::ModelPackageGroup' with identifier 'g1' was not found.",
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Handle() (-got, +want)\n%s", diff)
	}
	if diff := cmp.Diff(client.Methods(), []string{"DescribeModelPackageGroup"}); diff != "" {
		t.Errorf("Calls (-got, +want)\n%s", diff)
	}
}

func TestModelPackageGroup_UpdateRename(t *testing.T) {
	prev := map[string]string{"ModelPackageGroupArn": groupArn, "ModelPackageGroupName": "g1"}

	tests := []struct {
		name    string
		desired map[string]string
		want    string
	}{
		{
			name:    "Name",
			desired: map[string]string{"ModelPackageGroupName": "g2"},
			want:    `Invalid request provided: ModelPackageGroupName cannot be updated from "g1" to "g2"`,
		},
		{
			name: "Arn",
			desired: map[string]string{
				"ModelPackageGroupArn":  "arn:aws:sagemaker:us-east-1:123456789012:model-package-group/g1-copy",
				"ModelPackageGroupName": "g1",
			},
			want: "Invalid request provided: ModelPackageGroupArn cannot be updated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &sagemakertest.Client{}
			h := &provider.ModelPackageGroupHandler{Options: provider.Options{Client: client}}

			req := &handler.Request{
				Action:                handler.Update,
				DesiredResourceState:  mustJSON(t, tt.desired),
				PreviousResourceState: mustJSON(t, prev),
			}
			got := h.Handle(context.Background(), req, zaptest.NewLogger(t))
			want := &handler.ProgressEvent{
				Status:    handler.Failed,
				ErrorCode: handler.InvalidRequest,
				Message:   tt.want,
			}
			if diff := cmp.Diff(got, want); diff != "" {
				t.Errorf("Handle() (-got, +want)\n%s", diff)
			}
			if calls := client.Methods(); len(calls) > 0 {
				t.Errorf("Unexpected calls %v", calls)
			}
		})
	}
}

func TestModelPackageGroup_Delete(t *testing.T) {
	state := mustJSON(t, map[string]string{"ModelPackageGroupArn": groupArn, "ModelPackageGroupName": "g1"})
	model := &provider.ModelPackageGroup{ModelPackageGroupArn: groupArn, ModelPackageGroupName: "g1"}

	tests := []struct {
		name   string
		cbctx  *handler.CallbackContext
		client *sagemakertest.Client
		want   *handler.ProgressEvent
	}{
		{
			name: "Started",
			client: &sagemakertest.Client{
				DeleteModelPackageGroupFunc: func(context.Context, *sagemaker.DeleteModelPackageGroupInput) (*sagemaker.DeleteModelPackageGroupOutput, error) {
					return &sagemaker.DeleteModelPackageGroupOutput{}, nil
				},
			},
			want: &handler.ProgressEvent{
				Status:               handler.InProgress,
				ResourceModel:        model,
				CallbackContext:      &handler.CallbackContext{Stage: "delete"},
				CallbackDelaySeconds: provider.DefaultCallbackDelay,
			},
		},
		{
			name: "AlreadyDeleted",
			client: &sagemakertest.Client{
				DeleteModelPackageGroupFunc: func(context.Context, *sagemaker.DeleteModelPackageGroupInput) (*sagemaker.DeleteModelPackageGroupOutput, error) {
					return nil, &smithy.GenericAPIError{Code: "ValidationException", Message: "ModelPackageGroup g1 does not exist."}
				},
			},
			want: &handler.ProgressEvent{Status: handler.Success},
		},
		{
			name:  "Deleting",
			cbctx: &handler.CallbackContext{Stage: "delete"},
			client: &sagemakertest.Client{
				DescribeModelPackageGroupFunc: describeGroup(types.ModelPackageGroupStatusDeleting),
			},
			want: &handler.ProgressEvent{
				Status:               handler.InProgress,
				ResourceModel:        model,
				CallbackContext:      &handler.CallbackContext{Stage: "delete", Attempts: 1},
				CallbackDelaySeconds: provider.DefaultCallbackDelay,
			},
		},
		{
			name:  "DeleteFailed",
			cbctx: &handler.CallbackContext{Stage: "delete", Attempts: 4},
			client: &sagemakertest.Client{
				DescribeModelPackageGroupFunc: describeGroup(types.ModelPackageGroupStatusDeleteFailed),
			},
			want: &handler.ProgressEvent{
				Status:    handler.Failed,
				ErrorCode: handler.GeneralServiceException,
				Message:   "Resource of type 'AWS::SageMaker::ModelPackageGroup' with identifier '" + groupArn + "' did not stabilize. Status: DeleteFailed",
			},
		},
		{
			name:  "Gone",
			cbctx: &handler.CallbackContext{Stage: "delete", Attempts: 2},
			client: &sagemakertest.Client{
				DescribeModelPackageGroupFunc: groupMissing,
			},
			want: &handler.ProgressEvent{Status: handler.Success},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := &provider.ModelPackageGroupHandler{Options: provider.Options{Client: tc.client}}
			req := &handler.Request{
				Action:               handler.Delete,
				DesiredResourceState: state,
				CallbackContext:      tc.cbctx,
			}
			got := h.Handle(context.Background(), req, zaptest.NewLogger(t))
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Handle() (-got, +want)\n%s", diff)
			}
		})
	}
}

func TestModelPackageGroup_List(t *testing.T) {
	client := &sagemakertest.Client{
		ListModelPackageGroupsFunc: func(context.Context, *sagemaker.ListModelPackageGroupsInput) (*sagemaker.ListModelPackageGroupsOutput, error) {
			return &sagemaker.ListModelPackageGroupsOutput{
				ModelPackageGroupSummaryList: []types.ModelPackageGroupSummary{
					{
						ModelPackageGroupArn:    aws.String(groupArn),
						ModelPackageGroupName:   aws.String("g1"),
						ModelPackageGroupStatus: types.ModelPackageGroupStatusCompleted,
					},
				},
			}, nil
		},
	}
	h := &provider.ModelPackageGroupHandler{Options: provider.Options{Client: client}}

	got := h.Handle(context.Background(), &handler.Request{Action: handler.List}, zaptest.NewLogger(t))
	want := &handler.ProgressEvent{
		Status: handler.Success,
		ResourceModels: []interface{}{
			&provider.ModelPackageGroup{
				ModelPackageGroupArn:    groupArn,
				ModelPackageGroupName:   "g1",
				ModelPackageGroupStatus: "Completed",
			},
		},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Handle() (-got, +want)\n%s", diff)
	}
}
