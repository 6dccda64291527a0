package main

import (
	"bytes"
	"io/ioutil"
	"log"
	"os"
	"strings"
	"text/template"

	"github.com/func/cfn-sagemaker/tools/modeldoc/modeldoc"
	"github.com/spf13/cobra"
)

// A Data struct is passed to the template
type Data struct {
	File    string            // Filename passed to modeldoc
	Type    string            // Resource type name
	Structs []Struct          // Requested structs, in order
	Data    map[string]string // Additional data passed in flag
}

// A Struct is a documented struct passed to the template.
type Struct struct {
	Name       string
	Doc        string
	Properties []modeldoc.Property
}

const defaultTemplate = `# {{ .Type }}
{{ range .Structs }}
## {{ .Name }}
{{ if .Doc }}
{{ .Doc }}
{{ end }}
| Property | Type | Required | Constraints | Description |
|---|---|---|---|---|
{{- range .Properties }}
| {{ .Name }} | {{ .Type }} | {{ if .Required }}yes{{ else }}no{{ end }} | {{ join .Constraints ", " }} | {{ .Doc }} |
{{- end }}
{{ end }}`

var cmd = &cobra.Command{
	Use:   "modeldoc",
	Short: "modeldoc generates property references for resource models",
	Long: `modeldoc generates property references for resource models

modeldoc \
	--file pipeline.go \
	--struct Pipeline \
	--struct PipelineDefinition \
	--type AWS::SageMaker::Pipeline \
	--output pipeline.md
`,
	Run: func(cmd *cobra.Command, args []string) {
		flagFile, _ := cmd.Flags().GetString("file")
		flagTypes, _ := cmd.Flags().GetStringSlice("struct")
		flagName, _ := cmd.Flags().GetString("type")
		flagTmpl, _ := cmd.Flags().GetString("template")
		flagOutp, _ := cmd.Flags().GetString("output")
		flagVars, _ := cmd.Flags().GetStringToString("data")

		f, err := os.Open(flagFile)
		if err != nil {
			log.Fatal(err)
		}

		structs, err := modeldoc.Parse(f, flagTypes...)
		if err != nil {
			log.Fatal(err)
		}

		if err := f.Close(); err != nil {
			log.Fatal(err)
		}

		src := defaultTemplate
		if flagTmpl != "" {
			b, err := ioutil.ReadFile(flagTmpl)
			if err != nil {
				log.Fatal(err)
			}
			src = string(b)
		}
		tmpl, err := template.New("").Funcs(template.FuncMap{"join": strings.Join}).Parse(src)
		if err != nil {
			log.Fatal(err)
		}

		data := Data{
			File: flagFile,
			Type: flagName,
			Data: flagVars,
		}
		for _, s := range structs {
			data.Structs = append(data.Structs, Struct{
				Name:       s.Name,
				Doc:        s.Doc,
				Properties: modeldoc.Properties(s),
			})
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			log.Fatal(err)
		}

		if flagOutp != "" {
			if err := ioutil.WriteFile(flagOutp, buf.Bytes(), 0644); err != nil {
				log.Fatal(err)
			}
			return
		}

		if _, err := buf.WriteTo(os.Stdout); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	cmd.Flags().StringP("file", "f", "", "Target file to read")
	cmd.Flags().StringSliceP("struct", "s", nil, "Struct names, in output order")
	cmd.Flags().String("type", "", "Resource type name used as title")
	cmd.Flags().StringP("template", "t", "", "Template file. If omitted, a markdown table is written")
	cmd.Flags().StringP("output", "o", "", "Output file. If omitted, print to stdout")
	cmd.Flags().StringToStringP("data", "d", map[string]string{}, "Custom `key=value` data to pass to template")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("struct")
}

func main() {
	_ = cmd.Execute()
}
