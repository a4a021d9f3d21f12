// cmd/driftcheck checks that a project and its resource script have not
// drifted apart.
//
// Phase 1 validates the project file against the project schema and the
// field rules. Phase 2 generates the artifacts and checks that every custom
// persistent attribute the presentation binds is defined by the script. By
// default the freshly generated script is checked; --script checks a script
// on disk instead, e.g. one edited by hand after generation.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/formforge/internal/config"
	"github.com/matthewbaird/formforge/internal/dbc"
	"github.com/matthewbaird/formforge/internal/pipeline"
	"github.com/matthewbaird/formforge/internal/project"
)

// ErrDrift reports attributes bound by the presentation but missing from the
// script.
var ErrDrift = errors.New("drift detected")

func check(out io.Writer, projectFile, scriptFile string, opts pipeline.Options) (dbc.Coverage, error) {
	fmt.Fprintf(out, "Phase 1: Validating project (%s)...\n", projectFile)
	p, err := project.Load(projectFile)
	if err != nil {
		return dbc.Coverage{}, err
	}
	art, err := pipeline.FromProject(p, opts)
	if err != nil {
		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			for _, d := range verr.Diagnostics.Errors {
				fmt.Fprintf(out, "  %s\n", d)
			}
		}
		return dbc.Coverage{}, err
	}
	fmt.Fprintf(out, "  %d field(s) validate.\n", len(p.Fields))

	cov := art.Coverage
	if scriptFile == "" {
		fmt.Fprintln(out, "Phase 2: Checking generated script coverage...")
	} else {
		fmt.Fprintf(out, "Phase 2: Checking script coverage (%s)...\n", scriptFile)
		b, err := os.ReadFile(scriptFile)
		if err != nil {
			return dbc.Coverage{}, fmt.Errorf("reading script: %w", err)
		}
		if cov, err = dbc.CheckCoverage(art.Bindings, string(b)); err != nil {
			return dbc.Coverage{}, err
		}
	}
	if !cov.OK() {
		for _, m := range cov.Missing {
			fmt.Fprintf(out, "  MISSING: %s\n", m)
		}
		return cov, fmt.Errorf("%w: %d attribute(s) not defined by the script", ErrDrift, len(cov.Missing))
	}
	fmt.Fprintf(out, "  %d custom attribute(s) covered.\n", len(cov.Expected))
	return cov, nil
}

func newCmd(out io.Writer) *cobra.Command {
	var (
		cfgFile     string
		projectFile string
		scriptFile  string
	)
	cmd := &cobra.Command{
		Use:           "driftcheck",
		Short:         "Check a project and its resource script for drift",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if _, err := check(out, projectFile, scriptFile, cfg.PipelineOptions()); err != nil {
				return err
			}
			fmt.Fprintln(out, "\ndriftcheck: OK, no drift detected")
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file")
	cmd.Flags().StringVarP(&projectFile, "project", "p", "", "project file (.cue, .json, .yaml)")
	cmd.Flags().StringVarP(&scriptFile, "script", "s", "", "resource script to check instead of the generated one")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func main() {
	if err := newCmd(os.Stdout).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "driftcheck:", err)
		os.Exit(1)
	}
}
