// cmd/formgen generates presentation XML, database configuration scripts,
// migrations and functional specifications from field definitions or legacy
// form exports.
//
// Usage:
//
//	formgen generate -p project.yaml -o out/
//	formgen fmb fields orders.xml --format yaml > project.yaml
//	formgen er orders.xml --external
//	formgen serve --port 8080
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matthewbaird/formforge/internal/config"
	"github.com/matthewbaird/formforge/internal/diagnostic"
	"github.com/matthewbaird/formforge/internal/logging"
)

type app struct {
	cfgFile string
	envFile string

	cfg config.Config
	log zerolog.Logger
	out io.Writer
	err io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, err: errOut}

	root := &cobra.Command{
		Use:           "formgen",
		Short:         "Generate application artifacts from field definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file, ignored when missing")
	pf.String("log-level", "", "log level override")
	pf.String("log-format", "", "log format override (console or json)")
	pf.String("prefix", "", "custom attribute prefix override")

	root.AddCommand(
		newGenerateCmd(a),
		newFMBCmd(a),
		newERCmd(a),
		newServeCmd(a),
	)
	return root
}

// flagOverrides maps command-line flags to config keys.
var flagOverrides = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"prefix":     "naming.prefix",
	"port":       "port",
}

func (a *app) init(cmd *cobra.Command) error {
	opts := []config.Option{config.WithEnvFile(a.envFile)}
	for name, key := range flagOverrides {
		f := cmd.Flags().Lookup(name)
		if f != nil && f.Changed {
			opts = append(opts, config.WithOverride(key, f.Value.String()))
		}
	}
	cfg, err := config.Load(a.cfgFile, opts...)
	if err != nil {
		return err
	}
	l, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: a.err})
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, l
	return nil
}

// report logs every diagnostic at the level matching its severity.
func (a *app) report(d diagnostic.Diagnostics) {
	for _, e := range d.Errors {
		a.log.Error().Str("code", e.Code).Msg(e.String())
	}
	for _, w := range d.Warnings {
		a.log.Warn().Str("code", w.Code).Msg(w.String())
	}
	for _, i := range d.Infos {
		a.log.Debug().Str("code", i.Code).Msg(i.String())
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "formgen:", err)
		os.Exit(1)
	}
}
