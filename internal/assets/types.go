package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"maps"
	"sync"
)

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	Imports    []ImportInfo `json:"imports"`
	CSSBundle  string       `json:"cssBundle"`
}

type ImportInfo struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external"`
}

// Pipeline manages the asset build process and script loading
type Pipeline struct {
	config   Config
	metadata map[Target]*BuildMetadata
	tmpl     *template.Template
	mu       sync.RWMutex
}

// New creates a new asset pipeline with the given configuration
func New(config Config) *Pipeline {
	return &Pipeline{
		config:   config,
		metadata: make(map[Target]*BuildMetadata),
	}
}

// NewWithTemplateFS creates a new asset pipeline and loads the templates
// matching patterns from fsys with custom functions
func NewWithTemplateFS(config Config, fsys fs.FS, customFuncs template.FuncMap, patterns ...string) (*Pipeline, error) {
	p := New(config)

	funcs := template.FuncMap{
		"marshal": marshal,
		"safe": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec
		},
	}

	// Merge custom functions
	maps.Copy(funcs, customFuncs)

	tmpl, err := template.New("").Funcs(funcs).ParseFS(fsys, patterns...)
	if err != nil {
		return nil, err
	}
	p.tmpl = tmpl
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

func marshal(value any) string {
	buf := new(bytes.Buffer)

	if err := json.NewEncoder(buf).Encode(value); err != nil {
		panic(errors.New("context can only be json serializable"))
	}

	return buf.String()
}
