package modeldoc

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const code = `
package example

// Group is a test
//
// This is a test
type Group struct {
	// The name of the group.
	Name string ` + "`json:\"GroupName\" validate:\"required,min=1,max=63\"`" + ` // name comment
	Desc *string ` + "`json:\"Description,omitempty\" validate:\"omitempty,max=1024\"`" + `
	Policy interface{} ` + "`json:\"Policy,omitempty\"`" + `
	Tags []Tag ` + "`json:\"Tags,omitempty\" validate:\"dive\"`" + `
	internal string
} // comment

type Tag struct {
	Key string ` + "`json:\"Key\"`" + `
}
`

func TestParse(t *testing.T) {
	got, err := Parse(strings.NewReader(code), "Group")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []*Struct{{
		Name:    "Group",
		Doc:     "Group is a test\n\nThis is a test",
		Comment: "comment",
		Fields: []Field{
			{
				Doc:     "The name of the group.",
				Comment: "name comment",
				Name:    "Name",
				Type:    "string",
				Tags: []Tag{
					{Key: "json", Name: "GroupName"},
					{Key: "validate", Name: "required", Options: []string{"min=1", "max=63"}},
				},
			},
			{
				Name:    "Desc",
				Pointer: true,
				Type:    "string",
				Tags: []Tag{
					{Key: "json", Name: "Description", Options: []string{"omitempty"}},
					{Key: "validate", Name: "omitempty", Options: []string{"max=1024"}},
				},
			},
			{
				Name: "Policy",
				Type: "any",
				Tags: []Tag{
					{Key: "json", Name: "Policy", Options: []string{"omitempty"}},
				},
			},
			{
				Name: "Tags",
				Type: "[]Tag",
				Tags: []Tag{
					{Key: "json", Name: "Tags", Options: []string{"omitempty"}},
					{Key: "validate", Name: "dive"},
				},
			},
		},
	}}

	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("(-got, +want)\n%s", diff)
	}
}

func TestParse_notFound(t *testing.T) {
	_, err := Parse(strings.NewReader(code), "Group", "Pipeline")
	if err == nil || err.Error() != "Pipeline not found" {
		t.Errorf("Parse() err = %v, want Pipeline not found", err)
	}
}

func TestProperties(t *testing.T) {
	structs, err := Parse(strings.NewReader(code), "Group")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got := Properties(structs[0])
	want := []Property{
		{Name: "GroupName", Type: "string", Required: true, Constraints: []string{"min=1", "max=63"}, Doc: "The name of the group."},
		{Name: "Description", Type: "string", Constraints: []string{"max=1024"}},
		{Name: "Policy", Type: "any"},
		{Name: "Tags", Type: "[]Tag"},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("(-got, +want)\n%s", diff)
	}
}
