package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/jellyweb/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNoEntryPoints      = errors.New("no entry points found")
	ErrNotBuilt           = errors.New("assets not built yet, call Build() first")
	ErrEntrypointNotFound = errors.New("entrypoint not found in metadata")
)

// Rules returns the module rules applied to a build of the given target.
func Rules(bc BuildContext) []ModuleRule {
	return InjectRules(DefaultRules(), bc)
}

// Build runs esbuild for the build target with the configured settings and loads metadata.
// Define is forwarded to esbuild to substitute environment values in the bundle.
func (p *Pipeline) Build(bc BuildContext, define map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entryPoints, err := filepath.Glob(p.config.EntryPointGlob)
	if err != nil {
		return err
	}

	if len(entryPoints) == 0 {
		return ErrNoEntryPoints
	}

	outdir := p.config.TargetDir(bc.Target)

	log.Info().Strs("entrypoints", entryPoints).Str("target", string(bc.Target)).Msg("Building assets")

	metrics := telemetry.GetMetrics()
	attrs := metric.WithAttributes(attribute.String("target", string(bc.Target)))
	start := time.Now()
	defer func() {
		metrics.BuildDuration.Record(context.Background(), float64(time.Since(start).Milliseconds()), attrs)
	}()
	metrics.BuildsTotal.Add(context.Background(), 1, attrs)

	rules := Rules(bc)
	plugin := RulesPlugin(rules, PluginOptions{
		OutputDir:  outdir,
		PublicPath: p.config.PublicPath,
		Write:      true,
		Minify:     p.config.Minify,
		Define:     define,
	})

	result := api.Build(api.BuildOptions{
		EntryPoints:       entryPoints,
		Bundle:            true,
		Splitting:         bc.IsClient(),
		Write:             true,
		Outdir:            outdir,
		Format:            api.FormatESModule,
		Platform:          cond(bc.IsClient(), api.PlatformBrowser, api.PlatformNode),
		PublicPath:        p.config.PublicPath,
		AssetNames:        "[name]", // opaque modules keep the name their runtime looks them up by
		Define:            define,
		MinifyWhitespace:  p.config.Minify,
		MinifyIdentifiers: p.config.Minify,
		MinifySyntax:      p.config.Minify,
		TreeShaking:       api.TreeShakingTrue,
		Sourcemap:         cond(p.config.SourceMap, api.SourceMapLinked, api.SourceMapNone),
		Metafile:          true,
		Plugins:           []api.Plugin{plugin},
		LogLevel:          api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			log.Error().Str("error", msg.Text).Msg("Build error")
		}
		metrics.BuildErrorsTotal.Add(context.Background(), 1, attrs)
		return errors.New("esbuild failed with errors")
	}

	for _, msg := range result.Warnings {
		log.Warn().Str("warning", msg.Text).Msg("Build warning")
	}

	for _, file := range result.OutputFiles {
		log.Info().Str("file", file.Path).Msg("Built file")
	}

	// Write metafile
	if err := os.WriteFile(p.config.MetafilePath(bc.Target), []byte(result.Metafile), 0600); err != nil {
		return err
	}

	// Parse and cache metadata
	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return err
	}

	p.metadata[bc.Target] = &metadata
	return nil
}

// LoadMetafile loads the metadata of a previous build of the target from its metafile.
func (p *Pipeline) LoadMetafile(bc BuildContext) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := os.ReadFile(p.config.MetafilePath(bc.Target))
	if err != nil {
		return fmt.Errorf("failed to read metafile: %w", err)
	}

	var metadata BuildMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return fmt.Errorf("failed to parse metafile: %w", err)
	}

	p.metadata[bc.Target] = &metadata
	return nil
}

// LoadScripts returns the ordered list of client script paths needed for the given entrypoint
// and the main entrypoint file path
func (p *Pipeline) LoadScripts(entryPointPath string) ([]string, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	metadata := p.metadata[TargetClient]
	if metadata == nil {
		return nil, "", ErrNotBuilt
	}

	scripts := []string{}
	visited := make(map[string]bool)

	// Find the output file for this entrypoint
	for outputPath, info := range metadata.Outputs {
		if info.EntryPoint == entryPointPath {
			entrypoint := "/" + outputPath
			scripts = append(scripts, entrypoint)
			visited[outputPath] = true
			addDependencies(metadata, info, &scripts, visited)
			return scripts, entrypoint, nil
		}
	}

	return nil, "", ErrEntrypointNotFound
}

// LoadStyles returns the stylesheet bundled for the given entrypoint, if any.
func (p *Pipeline) LoadStyles(entryPointPath string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	metadata := p.metadata[TargetClient]
	if metadata == nil {
		return nil, ErrNotBuilt
	}

	for _, info := range metadata.Outputs {
		if info.EntryPoint == entryPointPath {
			if info.CSSBundle == "" {
				return nil, nil
			}
			return []string{"/" + info.CSSBundle}, nil
		}
	}

	return nil, ErrEntrypointNotFound
}

func addDependencies(metadata *BuildMetadata, output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.External || !strings.HasSuffix(imp.Path, ".js") {
			continue
		}
		if !visited[imp.Path] {
			visited[imp.Path] = true
			*scripts = append(*scripts, "/"+imp.Path)

			if chunkInfo, exists := metadata.Outputs[imp.Path]; exists {
				addDependencies(metadata, chunkInfo, scripts, visited)
			}
		}
	}
}

// Handler returns an http.HandlerFunc that renders the given template and entrypoint with its scripts
func (p *Pipeline) Handler(templateName, title, entryPointPath string, contextFn func(ctx context.Context) any) (http.HandlerFunc, error) {
	if p.tmpl == nil {
		return nil, errors.New("template not loaded, use NewWithTemplateFS")
	}

	if contextFn == nil {
		contextFn = func(ctx context.Context) any {
			return nil
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		scripts, _, err := p.LoadScripts(entryPointPath)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load scripts")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		styles, err := p.LoadStyles(entryPointPath)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load styles")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		data := map[string]any{
			"Title":   title,
			"Scripts": scripts,
			"Styles":  styles,
			"Context": contextFn(r.Context()),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := p.tmpl.ExecuteTemplate(w, templateName, data); err != nil {
			log.Error().Err(err).Msg("Failed to render template")
		}
	}, nil
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
