package sagemaker

import (
	"context"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

// A Tag is a key-value pair attached to a resource.
type Tag struct {
	Key   string `json:"Key" validate:"required,min=1,max=128"`
	Value string `json:"Value" validate:"max=256"`
}

// systemTagPrefix marks tags managed by AWS. They are never removed by an
// update.
const systemTagPrefix = "aws:"

// requestTags merges the tags set on the model with the resource level tags
// and system tags from the request.
//
// Model tags keep their order and are not deduplicated; duplicate keys are
// passed on to SageMaker as is. Map tags are appended sorted by key.
func requestTags(model []Tag, desired, system map[string]string) []types.Tag {
	out := make([]types.Tag, 0, len(model)+len(desired)+len(system))
	for _, t := range model {
		out = append(out, types.Tag{Key: aws.String(t.Key), Value: aws.String(t.Value)})
	}
	out = append(out, mapTags(desired)...)
	out = append(out, mapTags(system)...)
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapTags(m map[string]string) []types.Tag {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]types.Tag, len(keys))
	for i, k := range keys {
		out[i] = types.Tag{Key: aws.String(k), Value: aws.String(m[k])}
	}
	return out
}

// modelTags converts tags returned from SageMaker to model tags. Returns nil
// if there are no tags.
func modelTags(tags []types.Tag) []Tag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]Tag, len(tags))
	for i, t := range tags {
		out[i] = Tag{Key: aws.ToString(t.Key), Value: aws.ToString(t.Value)}
	}
	return out
}

// tagMap flattens model tags and resource level tags into a map. Later
// values win for duplicate keys.
func tagMap(model []Tag, resource map[string]string) map[string]string {
	m := make(map[string]string, len(model)+len(resource))
	for _, t := range model {
		m[t.Key] = t.Value
	}
	for k, v := range resource {
		m[k] = v
	}
	return m
}

// diffTags computes the changes needed to go from prev to next. Tags with
// the system prefix are never removed.
func diffTags(prev, next map[string]string) (add []types.Tag, remove []string) {
	for k, v := range next {
		if old, ok := prev[k]; !ok || old != v {
			add = append(add, types.Tag{Key: aws.String(k), Value: aws.String(v)})
		}
	}
	for k := range prev {
		if _, ok := next[k]; !ok && !strings.HasPrefix(k, systemTagPrefix) {
			remove = append(remove, k)
		}
	}
	sort.Slice(add, func(i, j int) bool { return *add[i].Key < *add[j].Key })
	sort.Strings(remove)
	return add, remove
}

// listTags returns all tags for a resource arn.
func listTags(ctx context.Context, svc API, arn string) ([]types.Tag, error) {
	var tags []types.Tag
	pages := sagemaker.NewListTagsPaginator(svc, &sagemaker.ListTagsInput{
		ResourceArn: aws.String(arn),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		tags = append(tags, page.Tags...)
	}
	return tags, nil
}

// updateTags applies a tag diff to a resource. On failure the name of the
// failed call is returned with the error.
func updateTags(ctx context.Context, svc API, arn string, add []types.Tag, remove []string) (api string, err error) {
	if len(remove) > 0 {
		if _, err := svc.DeleteTags(ctx, &sagemaker.DeleteTagsInput{
			ResourceArn: aws.String(arn),
			TagKeys:     remove,
		}); err != nil {
			return "DeleteTags", err
		}
	}
	if len(add) > 0 {
		if _, err := svc.AddTags(ctx, &sagemaker.AddTagsInput{
			ResourceArn: aws.String(arn),
			Tags:        add,
		}); err != nil {
			return "AddTags", err
		}
	}
	return "", nil
}
