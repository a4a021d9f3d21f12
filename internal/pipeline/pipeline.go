// Package pipeline runs the generators over one field list and returns the
// mutually consistent artifact set, or nothing at all when the input has
// blocking errors.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matthewbaird/formforge/internal/dbc"
	"github.com/matthewbaird/formforge/internal/diagnostic"
	"github.com/matthewbaird/formforge/internal/field"
	"github.com/matthewbaird/formforge/internal/fmb"
	"github.com/matthewbaird/formforge/internal/grouping"
	"github.com/matthewbaird/formforge/internal/presentation"
	"github.com/matthewbaird/formforge/internal/project"
	"github.com/matthewbaird/formforge/internal/specdoc"
)

// ErrInvalidFields is wrapped by ValidationError.
var ErrInvalidFields = errors.New("pipeline: invalid field definitions")

// ValidationError carries the blocking diagnostics of a rejected input.
type ValidationError struct {
	Diagnostics diagnostic.Diagnostics
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInvalidFields, e.Diagnostics.Err())
}

func (e *ValidationError) Unwrap() error { return ErrInvalidFields }

// Options configures one run.
type Options struct {
	Naming       field.Naming
	Grouping     grouping.Options
	Presentation presentation.Options
	// Author fills the script envelope when the metadata names none.
	Author string
	// Module adds the legacy source appendix to the specification.
	Module *fmb.Module
}

// Artifacts is the output of a successful run.
type Artifacts struct {
	Layout        grouping.Layout        `json:"layout"`
	Presentation  string                 `json:"presentation"`
	Bindings      []presentation.Binding `json:"bindings"`
	Plan          dbc.Plan               `json:"plan"`
	Migration     string                 `json:"migration"`
	Script        string                 `json:"script"`
	Specification string                 `json:"specification"`
	Coverage      dbc.Coverage           `json:"coverage"`
	Diagnostics   diagnostic.Diagnostics `json:"diagnostics"`
}

// Generate validates defs and renders every artifact. Any blocking problem
// returns an error and no artifacts; coverage gaps and other soft problems
// are reported as warnings.
func Generate(defs []field.Definition, meta field.Metadata, opts Options) (Artifacts, error) {
	if meta.Object() == "" {
		return Artifacts{}, dbc.ErrMissingMainObject
	}
	if len(defs) == 0 {
		return Artifacts{}, dbc.ErrNoFields
	}
	if diags := validate(defs, opts.Presentation.Dialogs); diags.HasErrors() {
		return Artifacts{}, &ValidationError{Diagnostics: diags}
	}
	if meta.Author == "" {
		meta.Author = opts.Author
	}

	var out Artifacts
	layout, diags := grouping.Group(defs, opts.Grouping)
	out.Layout = layout
	out.Diagnostics.Merge(diags)

	popts := opts.Presentation
	popts.Naming = opts.Naming
	res, err := presentation.Generate(layout, meta, popts)
	if err != nil {
		return Artifacts{}, fmt.Errorf("rendering presentation: %w", err)
	}
	out.Presentation = res.XML
	out.Bindings = res.Bindings

	plan, err := dbc.BuildPlan(planInput(defs, opts.Presentation.Dialogs), meta, opts.Naming)
	if err != nil {
		return Artifacts{}, fmt.Errorf("planning schema: %w", err)
	}
	out.Plan = plan
	out.Diagnostics.Merge(plan.Diagnostics)
	out.Migration = dbc.RenderMigration(plan)

	out.Script, err = dbc.RenderScript(plan, meta)
	if err != nil {
		return Artifacts{}, fmt.Errorf("rendering resource script: %w", err)
	}

	out.Coverage, err = dbc.CheckCoverage(res.Bindings, out.Script)
	if err != nil {
		return Artifacts{}, fmt.Errorf("checking coverage: %w", err)
	}
	out.Diagnostics.Merge(out.Coverage.Diagnostics)

	out.Specification = specdoc.Render(layout, meta, specdoc.Options{Naming: opts.Naming, Module: opts.Module})
	return out, nil
}

// FromProject runs Generate with the project's own settings layered over
// base.
func FromProject(p project.Project, base Options) (Artifacts, error) {
	opts := base
	opts.Naming = p.Naming(base.Naming)
	if p.DefaultMainDetailLabel != "" {
		opts.Grouping.DefaultMainDetailLabel = p.DefaultMainDetailLabel
	}
	if len(p.MainDetailLabels) > 0 {
		opts.Grouping.MainDetailLabels = p.MainDetailLabels
	}
	if len(p.Tables) > 0 {
		opts.Presentation.Relationships = p.Tables
	}
	if len(p.Dialogs) > 0 {
		opts.Presentation.Dialogs = p.Dialogs
	}
	return Generate(p.Fields, p.Metadata, opts)
}

func validate(defs []field.Definition, dialogs []presentation.Dialog) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics
	check := func(object string, d field.Definition) {
		if err := d.Validate(); err != nil {
			diags.AddError(diagnostic.CodeInvalidField, err.Error(), object, d.FieldName)
		}
	}
	for _, d := range defs {
		check(d.ObjectName, d)
	}
	for _, dlg := range dialogs {
		for _, d := range dlg.Definitions() {
			check("dialog "+dlg.ID, d)
		}
	}
	return diags
}

// planInput is every field the presentation binds: the page fields followed
// by the dialog fields.
func planInput(defs []field.Definition, dialogs []presentation.Dialog) []field.Definition {
	out := append([]field.Definition(nil), defs...)
	for _, dlg := range dialogs {
		out = append(out, dlg.Definitions()...)
	}
	return out
}

// File is one named artifact on disk.
type File struct {
	Name    string
	Content string
}

// Files names the rendered artifacts of a run for writing to a directory.
func (a Artifacts) Files(meta field.Metadata) []File {
	app := strings.ToLower(meta.AppID())
	return []File{
		{Name: app + ".presentation.xml", Content: a.Presentation},
		{Name: app + ".migration.sql", Content: a.Migration},
		{Name: strings.ToLower(meta.ScriptNameOrDefault()) + ".dbc", Content: a.Script},
		{Name: app + ".md", Content: a.Specification},
	}
}
