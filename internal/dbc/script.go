package dbc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"

	"github.com/matthewbaird/formforge/internal/field"
)

// DefaultAuthor signs resource scripts whose metadata names no author.
const DefaultAuthor = "formforge"

// Envelope is the named wrapper around the statements of a resource script.
type Envelope struct {
	Author      string
	Name        string
	Description string
}

// EnvelopeFor fills the script envelope from meta, applying defaults.
func EnvelopeFor(meta field.Metadata) Envelope {
	env := Envelope{
		Author:      strings.TrimSpace(meta.Author),
		Name:        meta.ScriptNameOrDefault(),
		Description: strings.TrimSpace(meta.Description),
	}
	if env.Author == "" {
		env.Author = DefaultAuthor
	}
	if env.Description == "" {
		env.Description = "Setup for " + meta.AppID()
	}
	return env
}

const scriptTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE script SYSTEM "script.dtd">
<script author="{{x .Envelope.Author}}" scriptname="{{x .Envelope.Name}}">
  <description>{{x .Envelope.Description}}</description>
  <statements>
{{- range .Objects}}
{{- if eq .Operation "define_table"}}
    <define_table object="{{x .Object}}" description="{{x .Description}}" service="{{x .Service}}" classname="psdi.mbo.custapp.CustomMboSet" persistent="true" type="system" primarykey="{{x .PrimaryKey}}" uniqueid="{{x .UniqueID}}">
{{- template "attrs" .Attributes}}
    </define_table>
{{- else}}
    <add_attributes object="{{x .Object}}">
{{- template "attrs" .Attributes}}
    </add_attributes>
{{- end}}
{{- end}}
  </statements>
</script>
{{define "attrs"}}
{{- range .}}
      <attrdef attribute="{{x .Name}}" maxtype="{{x .MaxType}}" length="{{.Length}}"{{if .Scale}} scale="{{.Scale}}"{{end}} persistent="{{.Persistent}}" required="{{.Required}}" userdefined="true" title="{{x .Title}}" remarks="{{x .Remarks}}"{{if .DefaultValue}} defaultvalue="{{x .DefaultValue}}"{{end}}/>
{{- end}}
{{- end}}`

var script = template.Must(template.New("script").Funcs(template.FuncMap{
	"x": escapeAttr,
}).Parse(scriptTemplate))

// RenderScript renders plan as a resource-provisioning script.
func RenderScript(p Plan, meta field.Metadata) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Envelope Envelope
		Objects  []ObjectPlan
	}{EnvelopeFor(meta), p.Objects}
	if err := script.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing script template: %w", err)
	}
	return buf.String(), nil
}

func escapeAttr(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
