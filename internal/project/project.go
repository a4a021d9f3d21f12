// Package project loads hand-authored project files. CUE, JSON and YAML
// sources are all unified with the embedded #Project schema before they are
// decoded, so every format is held to the same structure.
package project

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/format"
	"gopkg.in/yaml.v3"

	"github.com/matthewbaird/formforge/internal/field"
	"github.com/matthewbaird/formforge/internal/presentation"
)

//go:embed schema.cue
var schemaSource string

var (
	// ErrUnsupportedFormat is returned for files that are not CUE, JSON or YAML.
	ErrUnsupportedFormat = errors.New("project: unsupported format")
	// ErrInvalidProject is returned when a source does not satisfy #Project.
	ErrInvalidProject = errors.New("project: invalid project")
)

// Format is a project file encoding.
type Format string

const (
	FormatCUE  Format = "cue"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor returns the format implied by a file name's extension.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".cue":
		return FormatCUE, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Project is the complete input of one generation run.
type Project struct {
	Metadata field.Metadata     `json:"metadata" yaml:"metadata"`
	Fields   []field.Definition `json:"fields" yaml:"fields"`

	// Prefix overrides the custom attribute prefix.
	Prefix                 string                              `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	DefaultMainDetailLabel string                              `json:"defaultMainDetailLabel,omitempty" yaml:"defaultMainDetailLabel,omitempty"`
	MainDetailLabels       map[string]string                   `json:"mainDetailLabels,omitempty" yaml:"mainDetailLabels,omitempty"`
	Tables                 map[string]presentation.TableConfig `json:"tables,omitempty" yaml:"tables,omitempty"`
	Dialogs                []presentation.Dialog               `json:"dialogs,omitempty" yaml:"dialogs,omitempty"`
}

// Naming returns the naming policy of the project, falling back to def when
// no prefix is set.
func (p Project) Naming(def field.Naming) field.Naming {
	if p.Prefix != "" {
		return field.Naming{Prefix: p.Prefix}
	}
	return def
}

// Load reads and decodes the project file at path.
func Load(path string) (Project, error) {
	f, err := FormatFor(path)
	if err != nil {
		return Project{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("reading project: %w", err)
	}
	return Parse(data, f, filepath.Base(path))
}

// Parse decodes a project source. name labels error positions.
func Parse(data []byte, f Format, name string) (Project, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Project{}, fmt.Errorf("compiling project schema: %w", err)
	}

	var src cue.Value
	switch f {
	case FormatCUE, FormatJSON:
		// JSON is a subset of CUE.
		src = ctx.CompileBytes(data, cue.Filename(name))
	case FormatYAML:
		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Project{}, fmt.Errorf("%w: %s: %v", ErrInvalidProject, name, err)
		}
		src = ctx.Encode(doc)
	default:
		return Project{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err := src.Err(); err != nil {
		return Project{}, invalid(name, err)
	}

	v := schema.LookupPath(cue.ParsePath("#Project")).Unify(src)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Project{}, invalid(name, err)
	}

	// Decoding goes through JSON so field.Number keeps its permissive
	// unmarshaling.
	b, err := v.MarshalJSON()
	if err != nil {
		return Project{}, invalid(name, err)
	}
	var p Project
	if err := json.Unmarshal(b, &p); err != nil {
		return Project{}, fmt.Errorf("%w: %s: %v", ErrInvalidProject, name, err)
	}
	return p, nil
}

// Marshal encodes p in format f.
func Marshal(p Project, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		b, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(p)
	case FormatCUE:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		v := cuecontext.New().CompileBytes(b)
		if err := v.Err(); err != nil {
			return nil, err
		}
		return format.Node(v.Syntax(cue.Concrete(true)))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

func invalid(name string, err error) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidProject, name, strings.TrimSpace(cueerrors.Details(err, nil)))
}
