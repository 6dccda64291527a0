// Package sagemakertest provides a fake SageMaker client for tests.
package sagemakertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
)

// A Client is a fake SageMaker client. Every call is recorded and passed on
// to the matching function. Calling a method that has no function set
// returns an error.
type Client struct {
	CreatePipelineFunc                func(ctx context.Context, input *sagemaker.CreatePipelineInput) (*sagemaker.CreatePipelineOutput, error)
	DescribePipelineFunc              func(ctx context.Context, input *sagemaker.DescribePipelineInput) (*sagemaker.DescribePipelineOutput, error)
	UpdatePipelineFunc                func(ctx context.Context, input *sagemaker.UpdatePipelineInput) (*sagemaker.UpdatePipelineOutput, error)
	DeletePipelineFunc                func(ctx context.Context, input *sagemaker.DeletePipelineInput) (*sagemaker.DeletePipelineOutput, error)
	ListPipelinesFunc                 func(ctx context.Context, input *sagemaker.ListPipelinesInput) (*sagemaker.ListPipelinesOutput, error)
	CreateModelPackageGroupFunc       func(ctx context.Context, input *sagemaker.CreateModelPackageGroupInput) (*sagemaker.CreateModelPackageGroupOutput, error)
	DescribeModelPackageGroupFunc     func(ctx context.Context, input *sagemaker.DescribeModelPackageGroupInput) (*sagemaker.DescribeModelPackageGroupOutput, error)
	DeleteModelPackageGroupFunc       func(ctx context.Context, input *sagemaker.DeleteModelPackageGroupInput) (*sagemaker.DeleteModelPackageGroupOutput, error)
	ListModelPackageGroupsFunc        func(ctx context.Context, input *sagemaker.ListModelPackageGroupsInput) (*sagemaker.ListModelPackageGroupsOutput, error)
	GetModelPackageGroupPolicyFunc    func(ctx context.Context, input *sagemaker.GetModelPackageGroupPolicyInput) (*sagemaker.GetModelPackageGroupPolicyOutput, error)
	PutModelPackageGroupPolicyFunc    func(ctx context.Context, input *sagemaker.PutModelPackageGroupPolicyInput) (*sagemaker.PutModelPackageGroupPolicyOutput, error)
	DeleteModelPackageGroupPolicyFunc func(ctx context.Context, input *sagemaker.DeleteModelPackageGroupPolicyInput) (*sagemaker.DeleteModelPackageGroupPolicyOutput, error)
	ListTagsFunc                      func(ctx context.Context, input *sagemaker.ListTagsInput) (*sagemaker.ListTagsOutput, error)
	AddTagsFunc                       func(ctx context.Context, input *sagemaker.AddTagsInput) (*sagemaker.AddTagsOutput, error)
	DeleteTagsFunc                    func(ctx context.Context, input *sagemaker.DeleteTagsInput) (*sagemaker.DeleteTagsOutput, error)

	mu    sync.Mutex
	calls []Call
}

// A Call is a recorded call.
type Call struct {
	Method string      // Called method, DescribePipeline.
	Input  interface{} // Input that was passed in.
}

// Calls returns all recorded calls in the order they were made.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// Methods returns the names of the called methods in order.
func (c *Client) Methods() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	for i, call := range c.calls {
		out[i] = call.Method
	}
	return out
}

// Input returns the input of the first call to the given method, or nil if
// the method was not called.
func (c *Client) Input(method string) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.Method == method {
			return call.Input
		}
	}
	return nil
}

func (c *Client) record(method string, input interface{}) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Method: method, Input: input})
	c.mu.Unlock()
}

func unexpected(method string) error {
	return fmt.Errorf("unexpected call to %s", method)
}

// CreatePipeline calls CreatePipelineFunc.
func (c *Client) CreatePipeline(ctx context.Context, input *sagemaker.CreatePipelineInput, _ ...func(*sagemaker.Options)) (*sagemaker.CreatePipelineOutput, error) {
	c.record("CreatePipeline", input)
	if c.CreatePipelineFunc == nil {
		return nil, unexpected("CreatePipeline")
	}
	return c.CreatePipelineFunc(ctx, input)
}

// DescribePipeline calls DescribePipelineFunc.
func (c *Client) DescribePipeline(ctx context.Context, input *sagemaker.DescribePipelineInput, _ ...func(*sagemaker.Options)) (*sagemaker.DescribePipelineOutput, error) {
	c.record("DescribePipeline", input)
	if c.DescribePipelineFunc == nil {
		return nil, unexpected("DescribePipeline")
	}
	return c.DescribePipelineFunc(ctx, input)
}

// UpdatePipeline calls UpdatePipelineFunc.
func (c *Client) UpdatePipeline(ctx context.Context, input *sagemaker.UpdatePipelineInput, _ ...func(*sagemaker.Options)) (*sagemaker.UpdatePipelineOutput, error) {
	c.record("UpdatePipeline", input)
	if c.UpdatePipelineFunc == nil {
		return nil, unexpected("UpdatePipeline")
	}
	return c.UpdatePipelineFunc(ctx, input)
}

// DeletePipeline calls DeletePipelineFunc.
func (c *Client) DeletePipeline(ctx context.Context, input *sagemaker.DeletePipelineInput, _ ...func(*sagemaker.Options)) (*sagemaker.DeletePipelineOutput, error) {
	c.record("DeletePipeline", input)
	if c.DeletePipelineFunc == nil {
		return nil, unexpected("DeletePipeline")
	}
	return c.DeletePipelineFunc(ctx, input)
}

// ListPipelines calls ListPipelinesFunc.
func (c *Client) ListPipelines(ctx context.Context, input *sagemaker.ListPipelinesInput, _ ...func(*sagemaker.Options)) (*sagemaker.ListPipelinesOutput, error) {
	c.record("ListPipelines", input)
	if c.ListPipelinesFunc == nil {
		return nil, unexpected("ListPipelines")
	}
	return c.ListPipelinesFunc(ctx, input)
}

// CreateModelPackageGroup calls CreateModelPackageGroupFunc.
func (c *Client) CreateModelPackageGroup(ctx context.Context, input *sagemaker.CreateModelPackageGroupInput, _ ...func(*sagemaker.Options)) (*sagemaker.CreateModelPackageGroupOutput, error) {
	c.record("CreateModelPackageGroup", input)
	if c.CreateModelPackageGroupFunc == nil {
		return nil, unexpected("CreateModelPackageGroup")
	}
	return c.CreateModelPackageGroupFunc(ctx, input)
}

// DescribeModelPackageGroup calls DescribeModelPackageGroupFunc.
func (c *Client) DescribeModelPackageGroup(ctx context.Context, input *sagemaker.DescribeModelPackageGroupInput, _ ...func(*sagemaker.Options)) (*sagemaker.DescribeModelPackageGroupOutput, error) {
	c.record("DescribeModelPackageGroup", input)
	if c.DescribeModelPackageGroupFunc == nil {
		return nil, unexpected("DescribeModelPackageGroup")
	}
	return c.DescribeModelPackageGroupFunc(ctx, input)
}

// DeleteModelPackageGroup calls DeleteModelPackageGroupFunc.
func (c *Client) DeleteModelPackageGroup(ctx context.Context, input *sagemaker.DeleteModelPackageGroupInput, _ ...func(*sagemaker.Options)) (*sagemaker.DeleteModelPackageGroupOutput, error) {
	c.record("DeleteModelPackageGroup", input)
	if c.DeleteModelPackageGroupFunc == nil {
		return nil, unexpected("DeleteModelPackageGroup")
	}
	return c.DeleteModelPackageGroupFunc(ctx, input)
}

// ListModelPackageGroups calls ListModelPackageGroupsFunc.
func (c *Client) ListModelPackageGroups(ctx context.Context, input *sagemaker.ListModelPackageGroupsInput, _ ...func(*sagemaker.Options)) (*sagemaker.ListModelPackageGroupsOutput, error) {
	c.record("ListModelPackageGroups", input)
	if c.ListModelPackageGroupsFunc == nil {
		return nil, unexpected("ListModelPackageGroups")
	}
	return c.ListModelPackageGroupsFunc(ctx, input)
}

// GetModelPackageGroupPolicy calls GetModelPackageGroupPolicyFunc.
func (c *Client) GetModelPackageGroupPolicy(ctx context.Context, input *sagemaker.GetModelPackageGroupPolicyInput, _ ...func(*sagemaker.Options)) (*sagemaker.GetModelPackageGroupPolicyOutput, error) {
	c.record("GetModelPackageGroupPolicy", input)
	if c.GetModelPackageGroupPolicyFunc == nil {
		return nil, unexpected("GetModelPackageGroupPolicy")
	}
	return c.GetModelPackageGroupPolicyFunc(ctx, input)
}

// PutModelPackageGroupPolicy calls PutModelPackageGroupPolicyFunc.
func (c *Client) PutModelPackageGroupPolicy(ctx context.Context, input *sagemaker.PutModelPackageGroupPolicyInput, _ ...func(*sagemaker.Options)) (*sagemaker.PutModelPackageGroupPolicyOutput, error) {
	c.record("PutModelPackageGroupPolicy", input)
	if c.PutModelPackageGroupPolicyFunc == nil {
		return nil, unexpected("PutModelPackageGroupPolicy")
	}
	return c.PutModelPackageGroupPolicyFunc(ctx, input)
}

// DeleteModelPackageGroupPolicy calls DeleteModelPackageGroupPolicyFunc.
func (c *Client) DeleteModelPackageGroupPolicy(ctx context.Context, input *sagemaker.DeleteModelPackageGroupPolicyInput, _ ...func(*sagemaker.Options)) (*sagemaker.DeleteModelPackageGroupPolicyOutput, error) {
	c.record("DeleteModelPackageGroupPolicy", input)
	if c.DeleteModelPackageGroupPolicyFunc == nil {
		return nil, unexpected("DeleteModelPackageGroupPolicy")
	}
	return c.DeleteModelPackageGroupPolicyFunc(ctx, input)
}

// ListTags calls ListTagsFunc.
func (c *Client) ListTags(ctx context.Context, input *sagemaker.ListTagsInput, _ ...func(*sagemaker.Options)) (*sagemaker.ListTagsOutput, error) {
	c.record("ListTags", input)
	if c.ListTagsFunc == nil {
		return nil, unexpected("ListTags")
	}
	return c.ListTagsFunc(ctx, input)
}

// AddTags calls AddTagsFunc.
func (c *Client) AddTags(ctx context.Context, input *sagemaker.AddTagsInput, _ ...func(*sagemaker.Options)) (*sagemaker.AddTagsOutput, error) {
	c.record("AddTags", input)
	if c.AddTagsFunc == nil {
		return nil, unexpected("AddTags")
	}
	return c.AddTagsFunc(ctx, input)
}

// DeleteTags calls DeleteTagsFunc.
func (c *Client) DeleteTags(ctx context.Context, input *sagemaker.DeleteTagsInput, _ ...func(*sagemaker.Options)) (*sagemaker.DeleteTagsOutput, error) {
	c.record("DeleteTags", input)
	if c.DeleteTagsFunc == nil {
		return nil, unexpected("DeleteTags")
	}
	return c.DeleteTagsFunc(ctx, input)
}
