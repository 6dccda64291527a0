// Package sagemaker implements handlers for SageMaker resource types.
package sagemaker

import "github.com/func/cfn-sagemaker/handler"

//go:generate go run ../../tools/modeldoc -f pipeline.go -s Pipeline,PipelineDefinition,S3Location,ParallelismConfiguration --type AWS::SageMaker::Pipeline -o ../../docs/pipeline.md
//go:generate go run ../../tools/modeldoc -f model_package_group.go -s ModelPackageGroup --type AWS::SageMaker::ModelPackageGroup -o ../../docs/model-package-group.md

type registry interface {
	Register(handler.Resource)
}

// Register adds all supported SageMaker resources to the registry.
func Register(reg registry, opts Options) {
	reg.Register(&PipelineHandler{Options: opts})
	reg.Register(&ModelPackageGroupHandler{Options: opts})
}
