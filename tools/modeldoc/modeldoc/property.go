package modeldoc

import "strings"

// A Property is a documented resource model property.
type Property struct {
	Name        string // Name in json.
	Type        string
	Required    bool
	Constraints []string // Validation rules other than required.
	Doc         string
}

// Properties returns the documented properties of a struct. Fields without a
// json name are skipped.
func Properties(s *Struct) []Property {
	var props []Property // nolint: prealloc
	for _, f := range s.Fields {
		j := f.Tag("json")
		if j == nil || j.Name == "-" {
			continue
		}
		p := Property{
			Name: j.Name,
			Type: f.Type,
			Doc:  oneLine(f.Doc),
		}
		if p.Doc == "" {
			p.Doc = oneLine(f.Comment)
		}
		if v := f.Tag("validate"); v != nil {
			for _, rule := range append([]string{v.Name}, v.Options...) {
				switch rule {
				case "", "omitempty", "dive":
				case "required":
					p.Required = true
				default:
					p.Constraints = append(p.Constraints, rule)
				}
			}
		}
		props = append(props, p)
	}
	return props
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
