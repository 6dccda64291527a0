package sagemaker

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/func/cfn-sagemaker/handler"
	"github.com/pkg/errors"
)

// API is the subset of the SageMaker API used by the handlers. It is
// satisfied by *sagemaker.Client.
type API interface {
	CreatePipeline(ctx context.Context, params *sagemaker.CreatePipelineInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreatePipelineOutput, error)
	DescribePipeline(ctx context.Context, params *sagemaker.DescribePipelineInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribePipelineOutput, error)
	UpdatePipeline(ctx context.Context, params *sagemaker.UpdatePipelineInput, optFns ...func(*sagemaker.Options)) (*sagemaker.UpdatePipelineOutput, error)
	DeletePipeline(ctx context.Context, params *sagemaker.DeletePipelineInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeletePipelineOutput, error)
	ListPipelines(ctx context.Context, params *sagemaker.ListPipelinesInput, optFns ...func(*sagemaker.Options)) (*sagemaker.ListPipelinesOutput, error)

	CreateModelPackageGroup(ctx context.Context, params *sagemaker.CreateModelPackageGroupInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateModelPackageGroupOutput, error)
	DescribeModelPackageGroup(ctx context.Context, params *sagemaker.DescribeModelPackageGroupInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeModelPackageGroupOutput, error)
	DeleteModelPackageGroup(ctx context.Context, params *sagemaker.DeleteModelPackageGroupInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteModelPackageGroupOutput, error)
	ListModelPackageGroups(ctx context.Context, params *sagemaker.ListModelPackageGroupsInput, optFns ...func(*sagemaker.Options)) (*sagemaker.ListModelPackageGroupsOutput, error)
	GetModelPackageGroupPolicy(ctx context.Context, params *sagemaker.GetModelPackageGroupPolicyInput, optFns ...func(*sagemaker.Options)) (*sagemaker.GetModelPackageGroupPolicyOutput, error)
	PutModelPackageGroupPolicy(ctx context.Context, params *sagemaker.PutModelPackageGroupPolicyInput, optFns ...func(*sagemaker.Options)) (*sagemaker.PutModelPackageGroupPolicyOutput, error)
	DeleteModelPackageGroupPolicy(ctx context.Context, params *sagemaker.DeleteModelPackageGroupPolicyInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteModelPackageGroupPolicyOutput, error)

	ListTags(ctx context.Context, params *sagemaker.ListTagsInput, optFns ...func(*sagemaker.Options)) (*sagemaker.ListTagsOutput, error)
	AddTags(ctx context.Context, params *sagemaker.AddTagsInput, optFns ...func(*sagemaker.Options)) (*sagemaker.AddTagsOutput, error)
	DeleteTags(ctx context.Context, params *sagemaker.DeleteTagsInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteTagsOutput, error)
}

// Options configure how SageMaker clients are created.
type Options struct {
	// Region is used when the request does not specify one. If both are
	// empty, the region is resolved from the environment and shared config.
	Region string

	// Profile selects a shared config profile. Only used when the request
	// does not carry credentials.
	Profile string

	// Endpoint overrides the SageMaker endpoint, for example to point at a
	// local emulator.
	Endpoint string

	// CallbackDelay is the delay in seconds returned while a resource is
	// stabilizing. If not set, DefaultCallbackDelay is used.
	CallbackDelay int

	// Client is used for all requests if set. Primarily used in tests.
	Client API
}

// DefaultCallbackDelay is the number of seconds the orchestrator is asked to
// wait before checking on a stabilizing resource again.
const DefaultCallbackDelay = 5

func (o Options) callbackDelay() int {
	if o.CallbackDelay > 0 {
		return o.CallbackDelay
	}
	return DefaultCallbackDelay
}

// service returns a SageMaker API Client for the request. If a client was
// set, it is returned.
//
// Credentials on the request take precedence over the configured profile, so
// that remote calls are made on behalf of the caller.
func (o Options) service(ctx context.Context, req *handler.Request) (API, error) {
	if o.Client != nil {
		return o.Client, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	region := req.Region
	if region == "" {
		region = o.Region
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if c := req.Credentials; c != nil {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
		))
	} else if o.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(o.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	endpoint := o.Endpoint
	return sagemaker.NewFromConfig(cfg, func(so *sagemaker.Options) {
		if endpoint != "" {
			so.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}
