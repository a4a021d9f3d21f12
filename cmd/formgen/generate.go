package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/formforge/internal/field"
	"github.com/matthewbaird/formforge/internal/pipeline"
	"github.com/matthewbaird/formforge/internal/project"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		projectFile string
		outDir      string
		dryRun      bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate every artifact of a project file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := project.Load(projectFile)
			if err != nil {
				return err
			}
			art, err := pipeline.FromProject(p, a.cfg.PipelineOptions())
			if err != nil {
				return a.generationError(err)
			}
			return a.emit(art, p.Metadata, outDir, dryRun)
		},
	}
	cmd.Flags().StringVarP(&projectFile, "project", "p", "", "project file (.cue, .json, .yaml)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the files without writing them")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func (a *app) generationError(err error) error {
	var verr *pipeline.ValidationError
	if errors.As(err, &verr) {
		a.report(verr.Diagnostics)
		return fmt.Errorf("%w: %d error(s)", pipeline.ErrInvalidFields, len(verr.Diagnostics.Errors))
	}
	return err
}

// emit reports the run's diagnostics and writes its files under dir.
func (a *app) emit(art pipeline.Artifacts, meta field.Metadata, dir string, dryRun bool) error {
	a.report(art.Diagnostics)
	if !art.Coverage.OK() {
		a.log.Warn().Strs("missing", art.Coverage.Missing).Msg("script does not define every custom attribute")
	}

	files := art.Files(meta)
	if !dryRun {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if !dryRun {
			if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", f.Name, err)
			}
		}
		fmt.Fprintln(a.out, path)
	}
	a.log.Info().
		Str("app", meta.AppID()).
		Int("files", len(files)).
		Bool("dry_run", dryRun).
		Msg("generated")
	return nil
}
