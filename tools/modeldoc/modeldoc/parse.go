// Package modeldoc extracts property documentation from resource model
// structs.
package modeldoc

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"strings"

	"github.com/fatih/structtag"
	"github.com/pkg/errors"
)

// A Struct represents a parsed struct.
type Struct struct {
	Name    string
	Doc     string
	Comment string
	Fields  []Field
}

// A Field represents a parsed struct field.
type Field struct {
	Doc     string
	Comment string
	Name    string
	Pointer bool
	Type    string
	Tags    []Tag
}

// A Tag is a struct tag set on a struct field.
type Tag struct {
	Key     string
	Name    string
	Options []string
}

// Tag returns the tag with the given key, or nil if the field does not have
// one.
func (f Field) Tag(key string) *Tag {
	for i := range f.Tags {
		if f.Tags[i].Key == key {
			return &f.Tags[i]
		}
	}
	return nil
}

// Parse parses go source code from the given reader, looking for struct type
// definitions with the given names. The structs are returned in the order
// they were requested.
func Parse(r io.Reader, typenames ...string) ([]*Struct, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", r, parser.ParseComments)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	found := make(map[string]*Struct, len(typenames))
	for _, d := range f.Decls {
		decl, ok := d.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range decl.Specs {
			spec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			name := spec.Name.Name
			if !contains(typenames, name) {
				continue
			}
			strct, ok := spec.Type.(*ast.StructType)
			if !ok {
				return nil, fmt.Errorf("type %q is a %T, want struct", name, spec.Type)
			}

			fields, err := parseFields(strct)
			if err != nil {
				return nil, errors.Wrapf(err, "parse %s fields", name)
			}

			doc := decl.Doc
			if spec.Doc != nil {
				doc = spec.Doc
			}
			found[name] = &Struct{
				Name:    name,
				Doc:     strings.TrimSpace(doc.Text()),
				Comment: strings.TrimSpace(spec.Comment.Text()),
				Fields:  fields,
			}
		}
	}

	out := make([]*Struct, len(typenames))
	for i, name := range typenames {
		s, ok := found[name]
		if !ok {
			return nil, errors.Errorf("%s not found", name)
		}
		out[i] = s
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func parseFields(t *ast.StructType) ([]Field, error) {
	var fields []Field // nolint: prealloc

	for _, f := range t.Fields.List {
		if len(f.Names) == 0 {
			continue
		}
		name := f.Names[0].Name
		if !ast.IsExported(name) {
			continue
		}
		tags, err := parseTags(f)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s struct tags", name)
		}
		out := Field{
			Doc:     strings.TrimSpace(f.Doc.Text()),
			Comment: strings.TrimSpace(f.Comment.Text()),
			Name:    name,
			Tags:    tags,
		}
		setType(f.Type, &out)
		fields = append(fields, out)
	}

	return fields, nil
}

func setType(expr ast.Expr, field *Field) {
	switch e := expr.(type) {
	case *ast.StarExpr:
		field.Pointer = true
		setType(e.X, field)
	case *ast.Ident:
		field.Type = e.Name
	case *ast.SelectorExpr:
		field.Type = e.Sel.Name
	case *ast.StructType:
		field.Type = "struct"
	case *ast.MapType:
		field.Type = "map"
	case *ast.InterfaceType:
		field.Type = "any"
	case *ast.ArrayType:
		var elem Field
		setType(e.Elt, &elem)
		field.Type = "[]" + elem.Type
	default:
		field.Type = fmt.Sprintf("%T", expr)
	}
}

func parseTags(field *ast.Field) ([]Tag, error) {
	if field.Tag == nil {
		return nil, nil
	}
	tagstr := strings.Replace(field.Tag.Value, "`", "", -1)
	tt, err := structtag.Parse(tagstr)
	if err != nil {
		return nil, errors.Wrapf(err, "parse struct tag %s", tagstr)
	}
	tags := make([]Tag, tt.Len())
	for i, t := range tt.Tags() {
		tags[i] = Tag(*t)
	}
	return tags, nil
}
