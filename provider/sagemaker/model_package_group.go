package sagemaker

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/func/cfn-sagemaker/handler"
	"go.uber.org/zap"
)

// ModelPackageGroupType is the type name of SageMaker model package groups.
const ModelPackageGroupType = "AWS::SageMaker::ModelPackageGroup"

// Callback stages used while a model package group stabilizes.
const (
	stageCreate = "create"
	stageDelete = "delete"
)

// ModelPackageGroup is the resource model of a SageMaker model package
// group, a collection of versioned models in the model registry.
type ModelPackageGroup struct {
	ModelPackageGroupArn string `json:"ModelPackageGroupArn,omitempty"`

	// The name of the model group. Must be unique within the account and
	// region.
	ModelPackageGroupName string `json:"ModelPackageGroupName,omitempty" validate:"required,min=1,max=63"`

	ModelPackageGroupDescription *string `json:"ModelPackageGroupDescription,omitempty" validate:"omitempty,max=1024"`

	// The resource policy for the group, as a json object or a string.
	ModelPackageGroupPolicy interface{} `json:"ModelPackageGroupPolicy,omitempty"`

	CreationTime            string `json:"CreationTime,omitempty"`
	ModelPackageGroupStatus string `json:"ModelPackageGroupStatus,omitempty"`

	Tags []Tag `json:"Tags,omitempty" validate:"dive"`
}

// name returns the group name, derived from the arn if only the arn is set.
func (g *ModelPackageGroup) name() string {
	if g.ModelPackageGroupName != "" {
		return g.ModelPackageGroupName
	}
	a, err := arn.Parse(g.ModelPackageGroupArn)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(a.Resource, "model-package-group/")
}

// identifier returns the primary identifier if known.
func (g *ModelPackageGroup) identifier() string {
	if g.ModelPackageGroupArn != "" {
		return g.ModelPackageGroupArn
	}
	return g.ModelPackageGroupName
}

// ModelPackageGroupHandler handles AWS::SageMaker::ModelPackageGroup
// requests.
//
// Model package groups are provisioned asynchronously. Create and delete
// return IN_PROGRESS after the initial call and check the group status on
// each following invocation until it settles.
type ModelPackageGroupHandler struct {
	Options
}

// TypeName returns AWS::SageMaker::ModelPackageGroup.
func (h *ModelPackageGroupHandler) TypeName() string { return ModelPackageGroupType }

// Handle handles a single request.
func (h *ModelPackageGroupHandler) Handle(ctx context.Context, req *handler.Request, logger *zap.Logger) *handler.ProgressEvent {
	svc, err := h.service(ctx, req)
	if err != nil {
		return handler.Fail(err)
	}

	var desired ModelPackageGroup
	if err := handler.DecodeModel(req.DesiredResourceState, &desired); err != nil {
		return handler.Fail(err)
	}

	switch req.Action {
	case handler.Create:
		if req.Stage() == stageCreate {
			return h.stabilizeCreate(ctx, svc, req, &desired, logger)
		}
		return h.create(ctx, svc, req, &desired, logger)
	case handler.Read:
		return result(h.read(ctx, svc, &desired, logger))
	case handler.Update:
		var prev ModelPackageGroup
		if err := handler.DecodeModel(req.PreviousResourceState, &prev); err != nil {
			return handler.Fail(err)
		}
		return h.update(ctx, svc, req, &desired, &prev, logger)
	case handler.Delete:
		if req.Stage() == stageDelete {
			return h.stabilizeDelete(ctx, svc, req, &desired, logger)
		}
		return h.delete(ctx, svc, &desired, logger)
	case handler.List:
		return h.list(ctx, svc, req, logger)
	}
	return handler.Fail(handler.Errorf(handler.InvalidRequest, "Action %q is not supported.", req.Action))
}

func (h *ModelPackageGroupHandler) create(ctx context.Context, svc API, req *handler.Request, g *ModelPackageGroup, logger *zap.Logger) *handler.ProgressEvent {
	if err := handler.Validate(g); err != nil {
		return handler.Fail(err)
	}
	if _, err := policyDocument(g.ModelPackageGroupPolicy); err != nil {
		return handler.Fail(err)
	}

	input := createModelPackageGroupInput(g, requestTags(g.Tags, req.DesiredResourceTags, req.SystemTags))
	logger.Debug("Create model package group", zap.String("name", g.ModelPackageGroupName))
	resp, err := svc.CreateModelPackageGroup(ctx, input)
	if err != nil {
		return handler.Fail(translate(err, ModelPackageGroupType, g.ModelPackageGroupName, "CreateModelPackageGroup"))
	}
	g.ModelPackageGroupArn = aws.ToString(resp.ModelPackageGroupArn)
	logger.Info("Model package group created", zap.String("arn", g.ModelPackageGroupArn))

	return handler.Pending(g, &handler.CallbackContext{Stage: stageCreate}, h.callbackDelay())
}

// stabilizeCreate checks whether a newly created group has settled. The
// policy is attached once the group is complete.
func (h *ModelPackageGroupHandler) stabilizeCreate(ctx context.Context, svc API, req *handler.Request, g *ModelPackageGroup, logger *zap.Logger) *handler.ProgressEvent {
	name := g.name()
	next := &handler.CallbackContext{Stage: stageCreate, Attempts: req.CallbackContext.Attempts + 1}

	desc, err := svc.DescribeModelPackageGroup(ctx, &sagemaker.DescribeModelPackageGroupInput{
		ModelPackageGroupName: aws.String(name),
	})
	if err != nil {
		if isNotFound(err, "DescribeModelPackageGroup") {
			// Not visible yet.
			logger.Debug("Model package group not found while stabilizing", zap.Int("attempt", next.Attempts))
			return handler.Pending(g, next, h.callbackDelay())
		}
		return handler.Fail(translate(err, ModelPackageGroupType, g.identifier(), "DescribeModelPackageGroup"))
	}

	status := desc.ModelPackageGroupStatus
	logger.Debug("Model package group status", zap.String("status", string(status)), zap.Int("attempt", next.Attempts))
	switch status {
	case types.ModelPackageGroupStatusCompleted:
	case types.ModelPackageGroupStatusPending, types.ModelPackageGroupStatusInProgress, "":
		return handler.Pending(g, next, h.callbackDelay())
	default:
		return handler.Fail(notStabilized(g.identifier(), status))
	}

	doc, err := policyDocument(g.ModelPackageGroupPolicy)
	if err != nil {
		return handler.Fail(err)
	}
	if doc != nil {
		logger.Debug("Put model package group policy")
		if _, err := svc.PutModelPackageGroupPolicy(ctx, &sagemaker.PutModelPackageGroupPolicyInput{
			ModelPackageGroupName: aws.String(name),
			ResourcePolicy:        doc,
		}); err != nil {
			return handler.Fail(translate(err, ModelPackageGroupType, g.identifier(), "PutModelPackageGroupPolicy"))
		}
	}

	return result(h.read(ctx, svc, g, logger))
}

// read describes the group, then lists its tags by arn and fetches its
// policy. A missing policy is not an error.
func (h *ModelPackageGroupHandler) read(ctx context.Context, svc API, g *ModelPackageGroup, logger *zap.Logger) (*ModelPackageGroup, error) {
	name, id := g.name(), g.identifier()

	logger.Debug("Describe model package group", zap.String("name", name))
	desc, err := svc.DescribeModelPackageGroup(ctx, &sagemaker.DescribeModelPackageGroupInput{
		ModelPackageGroupName: aws.String(name),
	})
	if err != nil {
		return nil, translate(err, ModelPackageGroupType, id, "DescribeModelPackageGroup")
	}

	tags, err := listTags(ctx, svc, aws.ToString(desc.ModelPackageGroupArn))
	if err != nil {
		return nil, translate(err, ModelPackageGroupType, id, "ListTags")
	}

	var doc *string
	policy, err := svc.GetModelPackageGroupPolicy(ctx, &sagemaker.GetModelPackageGroupPolicyInput{
		ModelPackageGroupName: aws.String(name),
	})
	switch {
	case err == nil:
		doc = policy.ResourcePolicy
	case isNotFound(err, "GetModelPackageGroupPolicy"):
		logger.Debug("No policy")
	default:
		return nil, translate(err, ModelPackageGroupType, id, "GetModelPackageGroupPolicy")
	}

	return modelPackageGroupFromDescribe(desc, tags, doc), nil
}

func (h *ModelPackageGroupHandler) update(ctx context.Context, svc API, req *handler.Request, g, prev *ModelPackageGroup, logger *zap.Logger) *handler.ProgressEvent {
	name := prev.name()
	if name == "" {
		name = g.name()
	}
	if g.ModelPackageGroupName != "" && g.ModelPackageGroupName != name {
		return handler.Fail(handler.Errorf(handler.InvalidRequest,
			"Invalid request provided: ModelPackageGroupName cannot be updated from %q to %q", name, g.ModelPackageGroupName,
		))
	}
	if prev.ModelPackageGroupArn != "" && g.ModelPackageGroupArn != "" && g.ModelPackageGroupArn != prev.ModelPackageGroupArn {
		return handler.Fail(handler.Errorf(handler.InvalidRequest,
			"Invalid request provided: ModelPackageGroupArn cannot be updated",
		))
	}
	g.ModelPackageGroupName = name
	if err := handler.Validate(g); err != nil {
		return handler.Fail(err)
	}
	doc, err := policyDocument(g.ModelPackageGroupPolicy)
	if err != nil {
		return handler.Fail(err)
	}

	desc, err := svc.DescribeModelPackageGroup(ctx, &sagemaker.DescribeModelPackageGroupInput{
		ModelPackageGroupName: aws.String(name),
	})
	if err != nil {
		return handler.Fail(translate(err, ModelPackageGroupType, name, "DescribeModelPackageGroup"))
	}
	groupArn := aws.ToString(desc.ModelPackageGroupArn)

	switch {
	case doc != nil:
		logger.Debug("Put model package group policy")
		if _, err := svc.PutModelPackageGroupPolicy(ctx, &sagemaker.PutModelPackageGroupPolicyInput{
			ModelPackageGroupName: aws.String(name),
			ResourcePolicy:        doc,
		}); err != nil {
			return handler.Fail(translate(err, ModelPackageGroupType, groupArn, "PutModelPackageGroupPolicy"))
		}
	case prev.ModelPackageGroupPolicy != nil:
		logger.Debug("Delete model package group policy")
		_, err := svc.DeleteModelPackageGroupPolicy(ctx, &sagemaker.DeleteModelPackageGroupPolicyInput{
			ModelPackageGroupName: aws.String(name),
		})
		if err != nil && !isNotFound(err, "DeleteModelPackageGroupPolicy") {
			return handler.Fail(translate(err, ModelPackageGroupType, groupArn, "DeleteModelPackageGroupPolicy"))
		}
	}

	add, remove := diffTags(
		tagMap(prev.Tags, req.PreviousResourceTags),
		tagMap(g.Tags, req.DesiredResourceTags),
	)
	if api, err := updateTags(ctx, svc, groupArn, add, remove); err != nil {
		return handler.Fail(translate(err, ModelPackageGroupType, groupArn, api))
	}
	logger.Info("Model package group updated", zap.Int("tagsAdded", len(add)), zap.Int("tagsRemoved", len(remove)))

	return result(h.read(ctx, svc, &ModelPackageGroup{ModelPackageGroupName: name, ModelPackageGroupArn: groupArn}, logger))
}

func (h *ModelPackageGroupHandler) delete(ctx context.Context, svc API, g *ModelPackageGroup, logger *zap.Logger) *handler.ProgressEvent {
	name := g.name()
	if name == "" {
		return handler.Fail(handler.Errorf(handler.InvalidRequest, "Invalid request provided: ModelPackageGroupName or ModelPackageGroupArn is required"))
	}

	logger.Debug("Delete model package group", zap.String("name", name))
	_, err := svc.DeleteModelPackageGroup(ctx, &sagemaker.DeleteModelPackageGroupInput{
		ModelPackageGroupName: aws.String(name),
	})
	if err != nil {
		if isNotFound(err, "DeleteModelPackageGroup") {
			// Already deleted
			logger.Debug("Model package group not found")
			return handler.Done(nil)
		}
		return handler.Fail(translate(err, ModelPackageGroupType, g.identifier(), "DeleteModelPackageGroup"))
	}

	return handler.Pending(g, &handler.CallbackContext{Stage: stageDelete}, h.callbackDelay())
}

// stabilizeDelete waits for the group to disappear.
func (h *ModelPackageGroupHandler) stabilizeDelete(ctx context.Context, svc API, req *handler.Request, g *ModelPackageGroup, logger *zap.Logger) *handler.ProgressEvent {
	next := &handler.CallbackContext{Stage: stageDelete, Attempts: req.CallbackContext.Attempts + 1}

	desc, err := svc.DescribeModelPackageGroup(ctx, &sagemaker.DescribeModelPackageGroupInput{
		ModelPackageGroupName: aws.String(g.name()),
	})
	if err != nil {
		if isNotFound(err, "DescribeModelPackageGroup") {
			logger.Info("Model package group deleted", zap.Int("attempt", next.Attempts))
			return handler.Done(nil)
		}
		return handler.Fail(translate(err, ModelPackageGroupType, g.identifier(), "DescribeModelPackageGroup"))
	}

	if desc.ModelPackageGroupStatus == types.ModelPackageGroupStatusDeleteFailed {
		return handler.Fail(notStabilized(g.identifier(), desc.ModelPackageGroupStatus))
	}
	logger.Debug("Model package group status", zap.String("status", string(desc.ModelPackageGroupStatus)), zap.Int("attempt", next.Attempts))
	return handler.Pending(g, next, h.callbackDelay())
}

func (h *ModelPackageGroupHandler) list(ctx context.Context, svc API, req *handler.Request, logger *zap.Logger) *handler.ProgressEvent {
	resp, err := svc.ListModelPackageGroups(ctx, &sagemaker.ListModelPackageGroupsInput{
		NextToken: req.NextToken,
	})
	if err != nil {
		return handler.Fail(translate(err, ModelPackageGroupType, "", "ListModelPackageGroups"))
	}
	models := make([]interface{}, len(resp.ModelPackageGroupSummaryList))
	for i, s := range resp.ModelPackageGroupSummaryList {
		models[i] = modelPackageGroupFromSummary(s)
	}
	logger.Debug("Listed model package groups", zap.Int("count", len(models)))
	return handler.Listed(models, resp.NextToken)
}

func notStabilized(id string, status types.ModelPackageGroupStatus) *handler.Error {
	return &handler.Error{
		Code: handler.GeneralServiceException,
		Message: fmt.Sprintf("Resource of type '%s' with identifier '%s' did not stabilize. Status: %s",
			ModelPackageGroupType, id, status),
	}
}
