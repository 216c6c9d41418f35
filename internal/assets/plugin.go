package assets

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/jellyweb/internal/telemetry"
)

const pluginName = "module-rules"

// PluginOptions configures how RulesPlugin emits files.
type PluginOptions struct {
	// OutputDir receives copied files and worker bundles
	OutputDir string
	// PublicPath is the URL prefix OutputDir is served under (e.g. "/public/")
	PublicPath string
	// Write controls whether emitted files are written to disk
	Write bool
	// Minify applies to worker bundles
	Minify bool
	// Define is forwarded to worker bundles
	Define map[string]string
}

// ruleFor returns the first rule claiming the path, rules are evaluated in order.
func ruleFor(rules []ModuleRule, p string) (ModuleRule, bool) {
	for _, rule := range rules {
		if rule.Matches(p) {
			return rule, true
		}
	}
	return ModuleRule{}, false
}

// RulesPlugin returns an esbuild plugin applying the rule list at load time.
// Files no rule claims fall through to esbuild's own loaders.
func RulesPlugin(rules []ModuleRule, opts PluginOptions) api.Plugin {
	return api.Plugin{
		Name: pluginName,
		Setup: func(build api.PluginBuild) {
			// url() tokens in stylesheets must resolve to a URL, not a JS module
			build.OnResolve(api.OnResolveOptions{Filter: `.*`}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if args.Kind != api.ResolveCSSURLToken || !isRelative(args.Path) {
					return api.OnResolveResult{}, nil
				}

				src := filepath.Join(args.ResolveDir, filepath.FromSlash(stripQuery(args.Path)))
				rule, ok := ruleFor(rules, src)
				if !ok || len(rule.Use) == 0 || rule.Use[0].Loader != LoaderFile {
					return api.OnResolveResult{}, nil
				}

				url, err := copyFile(src, rule.Use[0], opts)
				if err != nil {
					return api.OnResolveResult{}, err
				}
				return api.OnResolveResult{Path: url, External: true}, nil
			})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: "file"}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				rule, ok := ruleFor(rules, args.Path)
				if !ok {
					return api.OnLoadResult{}, nil
				}
				return applyRule(rules, rule, args.Path, opts)
			})
		},
	}
}

// applyRule loads src through rule. rules is the full list the plugin was
// built with, worker bundles are built against it.
func applyRule(rules []ModuleRule, rule ModuleRule, src string, opts PluginOptions) (api.OnLoadResult, error) {
	if rule.Type == ModuleTypeOpaque {
		data, err := os.ReadFile(src)
		if err != nil {
			return api.OnLoadResult{}, err
		}
		contents := string(data)
		return api.OnLoadResult{Contents: &contents, Loader: api.LoaderFile}, nil
	}

	switch len(rule.Use) {
	case 0:
		return api.OnLoadResult{}, nil
	case 1:
	default:
		return api.OnLoadResult{}, fmt.Errorf("rule %s: chained loaders are not supported", rule.Name)
	}

	spec := rule.Use[0]
	switch spec.Loader {
	case LoaderFile:
		url, err := copyFile(src, spec, opts)
		if err != nil {
			return api.OnLoadResult{}, err
		}
		contents := fmt.Sprintf("export default %q;\n", url)
		return api.OnLoadResult{Contents: &contents, Loader: api.LoaderJS}, nil

	case LoaderWorkerProxy:
		singleton, _ := spec.Options["singleton"].(bool)
		contents, err := buildWorker(src, singleton, rules, opts)
		if err != nil {
			return api.OnLoadResult{}, err
		}
		return api.OnLoadResult{
			Contents:   &contents,
			Loader:     api.LoaderJS,
			WatchFiles: []string{src},
		}, nil

	default:
		return api.OnLoadResult{}, fmt.Errorf("rule %s: unknown loader %q", rule.Name, spec.Loader)
	}
}

// copyFile copies src verbatim into the output directory and returns its public URL.
func copyFile(src string, spec LoaderSpec, opts PluginOptions) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}

	tmpl, _ := spec.Options["name"].(string)
	if tmpl == "" {
		tmpl = "[hash].[ext]"
	}
	name := renderName(tmpl, src, data)

	if opts.Write {
		dst := filepath.Join(opts.OutputDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return "", err
		}
		if err := os.WriteFile(dst, data, 0o600); err != nil {
			return "", err
		}
		telemetry.GetMetrics().FilesCopied.Add(context.Background(), 1)
		log.Debug().Str("src", src).Str("dst", dst).Msg("Copied file")
	}

	return path.Join(opts.PublicPath, name), nil
}

func isRelative(p string) bool {
	return strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../")
}

func stripQuery(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i]
	}
	return p
}
