package sagemaker

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/func/cfn-sagemaker/handler"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PipelineType is the type name of SageMaker pipelines.
const PipelineType = "AWS::SageMaker::Pipeline"

// Pipeline is the resource model of a SageMaker Model Building Pipeline.
//
// A pipeline is a workflow of interconnected steps defined by a JSON
// pipeline definition. The pipeline name identifies the pipeline and cannot
// be changed after creation.
type Pipeline struct {
	// The name of the pipeline.
	PipelineName string `json:"PipelineName,omitempty" validate:"required,min=1,max=256"`

	// The display name of the pipeline.
	PipelineDisplayName *string `json:"PipelineDisplayName,omitempty" validate:"omitempty,min=1,max=256"`

	// A description of the pipeline.
	PipelineDescription *string `json:"PipelineDescription,omitempty" validate:"omitempty,max=3072"`

	// The definition of the pipeline, either inline or as an object in S3.
	PipelineDefinition *PipelineDefinition `json:"PipelineDefinition,omitempty"`

	// The ARN of the role used by the pipeline to access and create resources.
	RoleArn string `json:"RoleArn,omitempty" validate:"required,arn"`

	// Limits how many steps of the pipeline run in parallel.
	ParallelismConfiguration *ParallelismConfiguration `json:"ParallelismConfiguration,omitempty"`

	Tags []Tag `json:"Tags,omitempty" validate:"dive"`
}

// PipelineDefinition holds a pipeline definition. Exactly one of the fields
// must be set.
type PipelineDefinition struct {
	// The JSON pipeline definition.
	PipelineDefinitionBody *string `json:"PipelineDefinitionBody,omitempty" validate:"omitempty,min=1,max=1048576"`

	// The location of the JSON pipeline definition in S3.
	PipelineDefinitionS3Location *S3Location `json:"PipelineDefinitionS3Location,omitempty"`
}

// S3Location locates an object in S3.
type S3Location struct {
	Bucket  string  `json:"Bucket" validate:"required,min=3,max=63"`
	Key     string  `json:"Key" validate:"required,min=1,max=1024"`
	Version *string `json:"Version,omitempty"`
	ETag    *string `json:"ETag,omitempty"`
}

// ParallelismConfiguration limits pipeline execution parallelism.
type ParallelismConfiguration struct {
	// The max number of steps that can be executed in parallel.
	MaxParallelExecutionSteps int32 `json:"MaxParallelExecutionSteps" validate:"min=1"`
}

// PipelineHandler handles AWS::SageMaker::Pipeline requests.
//
// Pipeline creation, update and deletion are synchronous from the caller's
// point of view, so every action finishes in a single invocation.
type PipelineHandler struct {
	Options
}

// TypeName returns AWS::SageMaker::Pipeline.
func (h *PipelineHandler) TypeName() string { return PipelineType }

// Handle handles a single request.
func (h *PipelineHandler) Handle(ctx context.Context, req *handler.Request, logger *zap.Logger) *handler.ProgressEvent {
	svc, err := h.service(ctx, req)
	if err != nil {
		return handler.Fail(err)
	}

	var desired Pipeline
	if err := handler.DecodeModel(req.DesiredResourceState, &desired); err != nil {
		return handler.Fail(err)
	}

	switch req.Action {
	case handler.Create:
		return h.create(ctx, svc, req, &desired, logger)
	case handler.Read:
		return result(h.read(ctx, svc, desired.PipelineName, logger))
	case handler.Update:
		var prev Pipeline
		if err := handler.DecodeModel(req.PreviousResourceState, &prev); err != nil {
			return handler.Fail(err)
		}
		return h.update(ctx, svc, req, &desired, &prev, logger)
	case handler.Delete:
		return h.delete(ctx, svc, req, &desired, logger)
	case handler.List:
		return h.list(ctx, svc, req, logger)
	}
	return handler.Fail(handler.Errorf(handler.InvalidRequest, "Action %q is not supported.", req.Action))
}

func (h *PipelineHandler) create(ctx context.Context, svc API, req *handler.Request, p *Pipeline, logger *zap.Logger) *handler.ProgressEvent {
	if err := handler.Validate(p); err != nil {
		return handler.Fail(err)
	}
	if err := checkDefinition(p.PipelineDefinition); err != nil {
		return handler.Fail(err)
	}

	input := createPipelineInput(p, clientToken(req), requestTags(p.Tags, req.DesiredResourceTags, req.SystemTags))
	logger.Debug("Create pipeline", zap.String("name", p.PipelineName))
	resp, err := svc.CreatePipeline(ctx, input)
	if err != nil {
		return handler.Fail(translate(err, PipelineType, p.PipelineName, "CreatePipeline"))
	}
	logger.Info("Pipeline created", zap.String("arn", aws.ToString(resp.PipelineArn)))

	return result(h.read(ctx, svc, p.PipelineName, logger))
}

// read describes the pipeline and its tags. Tags are listed with the arn
// returned from describe; if describe fails, tags are not listed.
func (h *PipelineHandler) read(ctx context.Context, svc API, name string, logger *zap.Logger) (*Pipeline, error) {
	logger.Debug("Describe pipeline", zap.String("name", name))
	desc, err := svc.DescribePipeline(ctx, &sagemaker.DescribePipelineInput{
		PipelineName: aws.String(name),
	})
	if err != nil {
		return nil, translate(err, PipelineType, name, "DescribePipeline")
	}

	arn := aws.ToString(desc.PipelineArn)
	tags, err := listTags(ctx, svc, arn)
	if err != nil {
		return nil, translate(err, PipelineType, name, "ListTags")
	}

	return pipelineFromDescribe(desc, tags), nil
}

func (h *PipelineHandler) update(ctx context.Context, svc API, req *handler.Request, p, prev *Pipeline, logger *zap.Logger) *handler.ProgressEvent {
	name := prev.PipelineName
	if name == "" {
		name = p.PipelineName
	}
	if p.PipelineName != "" && p.PipelineName != name {
		return handler.Fail(handler.Errorf(handler.InvalidRequest,
			"Invalid request provided: PipelineName cannot be updated from %q to %q", name, p.PipelineName,
		))
	}
	p.PipelineName = name
	if err := handler.Validate(p); err != nil {
		return handler.Fail(err)
	}
	if err := checkDefinition(p.PipelineDefinition); err != nil {
		return handler.Fail(err)
	}

	logger.Debug("Describe pipeline", zap.String("name", name))
	desc, err := svc.DescribePipeline(ctx, &sagemaker.DescribePipelineInput{
		PipelineName: aws.String(name),
	})
	if err != nil {
		return handler.Fail(translate(err, PipelineType, name, "DescribePipeline"))
	}

	logger.Debug("Update pipeline", zap.String("name", name))
	if _, err := svc.UpdatePipeline(ctx, updatePipelineInput(name, p)); err != nil {
		return handler.Fail(translate(err, PipelineType, name, "UpdatePipeline"))
	}

	add, remove := diffTags(
		tagMap(prev.Tags, req.PreviousResourceTags),
		tagMap(p.Tags, req.DesiredResourceTags),
	)
	if api, err := updateTags(ctx, svc, aws.ToString(desc.PipelineArn), add, remove); err != nil {
		return handler.Fail(translate(err, PipelineType, name, api))
	}
	logger.Info("Pipeline updated", zap.Int("tagsAdded", len(add)), zap.Int("tagsRemoved", len(remove)))

	return result(h.read(ctx, svc, name, logger))
}

func (h *PipelineHandler) delete(ctx context.Context, svc API, req *handler.Request, p *Pipeline, logger *zap.Logger) *handler.ProgressEvent {
	if p.PipelineName == "" {
		return handler.Fail(handler.Errorf(handler.InvalidRequest, "Invalid request provided: PipelineName is required"))
	}

	logger.Debug("Delete pipeline", zap.String("name", p.PipelineName))
	_, err := svc.DeletePipeline(ctx, &sagemaker.DeletePipelineInput{
		PipelineName:       aws.String(p.PipelineName),
		ClientRequestToken: aws.String(clientToken(req)),
	})
	if err != nil {
		if isNotFound(err, "DeletePipeline") {
			// Already deleted
			logger.Debug("Pipeline not found")
			return handler.Done(nil)
		}
		return handler.Fail(translate(err, PipelineType, p.PipelineName, "DeletePipeline"))
	}
	logger.Info("Pipeline deleted", zap.String("name", p.PipelineName))
	return handler.Done(nil)
}

func (h *PipelineHandler) list(ctx context.Context, svc API, req *handler.Request, logger *zap.Logger) *handler.ProgressEvent {
	resp, err := svc.ListPipelines(ctx, &sagemaker.ListPipelinesInput{
		NextToken: req.NextToken,
	})
	if err != nil {
		return handler.Fail(translate(err, PipelineType, "", "ListPipelines"))
	}
	models := make([]interface{}, len(resp.PipelineSummaries))
	for i, s := range resp.PipelineSummaries {
		models[i] = pipelineFromSummary(s)
	}
	logger.Debug("Listed pipelines", zap.Int("count", len(models)))
	return handler.Listed(models, resp.NextToken)
}

// clientToken returns the idempotency token for a mutating call. The
// orchestrator's token is reused so that retried invocations are
// idempotent.
func clientToken(req *handler.Request) string {
	if req.ClientRequestToken != "" {
		return req.ClientRequestToken
	}
	return uuid.New().String()
}

// result converts the result of a read to a progress event.
func result(model interface{}, err error) *handler.ProgressEvent {
	if err != nil {
		return handler.Fail(err)
	}
	return handler.Done(model)
}
