package sagemaker

import (
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/func/cfn-sagemaker/handler"
)

func createModelPackageGroupInput(g *ModelPackageGroup, tags []types.Tag) *sagemaker.CreateModelPackageGroupInput {
	return &sagemaker.CreateModelPackageGroupInput{
		ModelPackageGroupName:        aws.String(g.ModelPackageGroupName),
		ModelPackageGroupDescription: g.ModelPackageGroupDescription,
		Tags:                         tags,
	}
}

// policyDocument returns the policy as a json string. The model accepts the
// policy either as a json object or as a string containing json.
func policyDocument(policy interface{}) (*string, error) {
	switch p := policy.(type) {
	case nil:
		return nil, nil
	case string:
		if p == "" {
			return nil, nil
		}
		return aws.String(p), nil
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, handler.Errorf(handler.InvalidRequest, "Invalid request provided: ModelPackageGroupPolicy: %v", err)
		}
		return aws.String(string(b)), nil
	}
}

// policyObject parses a policy document returned from SageMaker. Documents
// that are not valid json are returned as strings.
func policyObject(doc *string) interface{} {
	if doc == nil || *doc == "" {
		return nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(*doc), &obj); err != nil {
		return *doc
	}
	return obj
}

// modelPackageGroupFromDescribe projects a describe response, the group's
// tags and its policy into a model.
func modelPackageGroupFromDescribe(out *sagemaker.DescribeModelPackageGroupOutput, tags []types.Tag, policy *string) *ModelPackageGroup {
	return &ModelPackageGroup{
		ModelPackageGroupArn:         aws.ToString(out.ModelPackageGroupArn),
		ModelPackageGroupName:        aws.ToString(out.ModelPackageGroupName),
		ModelPackageGroupDescription: out.ModelPackageGroupDescription,
		ModelPackageGroupPolicy:      policyObject(policy),
		ModelPackageGroupStatus:      string(out.ModelPackageGroupStatus),
		CreationTime:                 formatTime(out.CreationTime),
		Tags:                         modelTags(tags),
	}
}

// modelPackageGroupFromSummary converts a list entry to a minimal model.
func modelPackageGroupFromSummary(s types.ModelPackageGroupSummary) *ModelPackageGroup {
	return &ModelPackageGroup{
		ModelPackageGroupArn:         aws.ToString(s.ModelPackageGroupArn),
		ModelPackageGroupName:        aws.ToString(s.ModelPackageGroupName),
		ModelPackageGroupDescription: s.ModelPackageGroupDescription,
		ModelPackageGroupStatus:      string(s.ModelPackageGroupStatus),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
