package pipeline

import (
	"context"

	"github.com/matthewbaird/formforge/internal/diagnostic"
	"github.com/matthewbaird/formforge/internal/er"
	"github.com/matthewbaird/formforge/internal/field"
	"github.com/matthewbaird/formforge/internal/fmb"
)

// Ingest is everything derived from one legacy form document.
type Ingest struct {
	Module      fmb.Module             `json:"module"`
	Metadata    field.Metadata         `json:"metadata"`
	Fields      []field.Definition     `json:"fields"`
	Records     []fmb.SpecRecord       `json:"records"`
	Graph       er.Graph               `json:"graph"`
	Diagnostics diagnostic.Diagnostics `json:"diagnostics"`
}

// FromFMB parses a legacy form and derives the field list, the flattened
// spec records and the entity-relationship graph. Malformed content never
// fails; problems surface as warnings.
func FromFMB(doc string, opts fmb.Options) Ingest {
	m := fmb.Parse(doc, opts)
	meta, defs := fmb.ToFields(m)
	g := er.Derive(m)

	in := Ingest{
		Module:   m,
		Metadata: meta,
		Fields:   defs,
		Records:  fmb.ExtractSpec(m),
		Graph:    g,
	}
	in.Diagnostics.Merge(m.Diagnostics)
	in.Diagnostics.Merge(g.Diagnostics)
	return in
}

// GenerateFMB converts a legacy form and runs Generate over the result. The
// legacy module is attached to the specification appendix.
func GenerateFMB(doc string, fopts fmb.Options, opts Options) (Ingest, Artifacts, error) {
	in := FromFMB(doc, fopts)
	opts.Module = &in.Module
	art, err := Generate(in.Fields, in.Metadata, opts)
	if err != nil {
		return in, Artifacts{}, err
	}
	art.Diagnostics.Merge(in.Diagnostics)
	return in, art, nil
}

// Diagram lays out the graph of a legacy form.
func Diagram(ctx context.Context, doc string, fopts fmb.Options, showExternal bool, l er.Layouter) (er.Diagram, error) {
	return er.Arrange(ctx, er.Derive(fmb.Parse(doc, fopts)), showExternal, l)
}
