package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/formforge/internal/fmb"
	"github.com/matthewbaird/formforge/internal/pipeline"
	"github.com/matthewbaird/formforge/internal/project"
)

func readDoc(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading form: %w", err)
	}
	return string(b), nil
}

func newFMBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmb",
		Short: "Inspect and convert legacy form exports",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "parse FILE",
			Short: "Print the parsed form module as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				doc, err := readDoc(args[0])
				if err != nil {
					return err
				}
				m := fmb.Parse(doc, a.cfg.FMBOptions())
				a.report(m.Diagnostics)
				return a.printJSON(m)
			},
		},
		&cobra.Command{
			Use:   "spec FILE",
			Short: "Print the flattened item records as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				doc, err := readDoc(args[0])
				if err != nil {
					return err
				}
				m := fmb.Parse(doc, a.cfg.FMBOptions())
				a.report(m.Diagnostics)
				return a.printJSON(fmb.ExtractSpec(m))
			},
		},
		newFieldsCmd(a),
		newFMBGenerateCmd(a),
	)
	return cmd
}

func newFieldsCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "fields FILE",
		Short: "Convert a form into a project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			doc, err := readDoc(args[0])
			if err != nil {
				return err
			}
			in := pipeline.FromFMB(doc, a.cfg.FMBOptions())
			a.report(in.Diagnostics)
			out, err := project.Marshal(project.Project{Metadata: in.Metadata, Fields: in.Fields}, project.Format(format))
			if err != nil {
				return err
			}
			_, err = a.out.Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(project.FormatYAML), "output format (cue, json, yaml)")
	return cmd
}

func newFMBGenerateCmd(a *app) *cobra.Command {
	var (
		outDir string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "generate FILE",
		Short: "Generate every artifact of a form, with the legacy appendix",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			doc, err := readDoc(args[0])
			if err != nil {
				return err
			}
			in, art, err := pipeline.GenerateFMB(doc, a.cfg.FMBOptions(), a.cfg.PipelineOptions())
			if err != nil {
				a.report(in.Diagnostics)
				return a.generationError(err)
			}
			return a.emit(art, in.Metadata, outDir, dryRun)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the files without writing them")
	return cmd
}

func newERCmd(a *app) *cobra.Command {
	var external bool
	cmd := &cobra.Command{
		Use:   "er FILE",
		Short: "Print the laid-out entity-relationship diagram of a form as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDoc(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Layout.Timeout)
			defer cancel()
			d, err := pipeline.Diagram(ctx, doc, a.cfg.FMBOptions(), external, a.cfg.Layouter())
			if err != nil {
				return err
			}
			a.report(d.Graph.Diagnostics)
			return a.printJSON(d)
		},
	}
	cmd.Flags().BoolVar(&external, "external", false, "show lookup entities")
	return cmd
}
