package sagemaker

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/func/cfn-sagemaker/handler"
)

// createPipelineInput translates a pipeline model to a create request.
func createPipelineInput(p *Pipeline, token string, tags []types.Tag) *sagemaker.CreatePipelineInput {
	in := &sagemaker.CreatePipelineInput{
		ClientRequestToken:       aws.String(token),
		PipelineName:             aws.String(p.PipelineName),
		PipelineDisplayName:      p.PipelineDisplayName,
		PipelineDescription:      p.PipelineDescription,
		RoleArn:                  aws.String(p.RoleArn),
		ParallelismConfiguration: parallelismInput(p.ParallelismConfiguration),
		Tags:                     tags,
	}
	in.PipelineDefinition, in.PipelineDefinitionS3Location = definitionInput(p.PipelineDefinition)
	return in
}

// updatePipelineInput translates the mutable fields of a pipeline model to an
// update request for the pipeline identified by name.
//
// Identifier fields on the model are ignored.
func updatePipelineInput(name string, p *Pipeline) *sagemaker.UpdatePipelineInput {
	in := &sagemaker.UpdatePipelineInput{
		PipelineName:             aws.String(name),
		PipelineDisplayName:      p.PipelineDisplayName,
		PipelineDescription:      p.PipelineDescription,
		RoleArn:                  aws.String(p.RoleArn),
		ParallelismConfiguration: parallelismInput(p.ParallelismConfiguration),
	}
	in.PipelineDefinition, in.PipelineDefinitionS3Location = definitionInput(p.PipelineDefinition)
	return in
}

func definitionInput(d *PipelineDefinition) (*string, *types.PipelineDefinitionS3Location) {
	if d == nil {
		return nil, nil
	}
	if d.PipelineDefinitionBody != nil {
		return d.PipelineDefinitionBody, nil
	}
	if s3 := d.PipelineDefinitionS3Location; s3 != nil {
		return nil, &types.PipelineDefinitionS3Location{
			Bucket:    aws.String(s3.Bucket),
			ObjectKey: aws.String(s3.Key),
			VersionId: s3.Version,
		}
	}
	return nil, nil
}

func parallelismInput(c *ParallelismConfiguration) *types.ParallelismConfiguration {
	if c == nil {
		return nil
	}
	return &types.ParallelismConfiguration{
		MaxParallelExecutionSteps: aws.Int32(c.MaxParallelExecutionSteps),
	}
}

// pipelineFromDescribe projects a describe response and the pipeline's tags
// into a model.
func pipelineFromDescribe(out *sagemaker.DescribePipelineOutput, tags []types.Tag) *Pipeline {
	p := &Pipeline{
		PipelineName:        aws.ToString(out.PipelineName),
		PipelineDisplayName: out.PipelineDisplayName,
		PipelineDescription: out.PipelineDescription,
		RoleArn:             aws.ToString(out.RoleArn),
		Tags:                modelTags(tags),
	}
	if out.PipelineDefinition != nil {
		p.PipelineDefinition = &PipelineDefinition{
			PipelineDefinitionBody: out.PipelineDefinition,
		}
	}
	if c := out.ParallelismConfiguration; c != nil && c.MaxParallelExecutionSteps != nil {
		p.ParallelismConfiguration = &ParallelismConfiguration{
			MaxParallelExecutionSteps: *c.MaxParallelExecutionSteps,
		}
	}
	return p
}

// pipelineFromSummary converts a list entry to a minimal model.
func pipelineFromSummary(s types.PipelineSummary) *Pipeline {
	return &Pipeline{
		PipelineName:        aws.ToString(s.PipelineName),
		PipelineDisplayName: s.PipelineDisplayName,
		PipelineDescription: s.PipelineDescription,
		RoleArn:             aws.ToString(s.RoleArn),
	}
}

// checkDefinition verifies that exactly one definition source is set.
func checkDefinition(d *PipelineDefinition) error {
	if d == nil {
		return handler.Errorf(handler.InvalidRequest, "Invalid request provided: PipelineDefinition is required")
	}
	body, s3 := d.PipelineDefinitionBody != nil, d.PipelineDefinitionS3Location != nil
	if body == s3 {
		return handler.Errorf(handler.InvalidRequest, "Invalid request provided: exactly one of PipelineDefinitionBody or PipelineDefinitionS3Location must be set")
	}
	return nil
}
