package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/jellyweb/internal/telemetry"
)

const (
	workerDir = "workers"
	// workerName keeps same-named sources in different directories apart
	workerName = "[name].[hash:8]"
)

// workerEntry dispatches messages posted to the background thread onto the
// exports of the worker module.
const workerEntry = `import * as mod from %s;
const api = mod.default ?? mod;
self.onmessage = async (event) => {
  const { id, method, args } = event.data;
  try {
    const fn = api[method];
    if (typeof fn !== "function") throw new Error("unknown worker method: " + method);
    self.postMessage({ id, value: await fn(...args) });
  } catch (err) {
    self.postMessage({ id, error: String(err && err.message ? err.message : err) });
  }
};
`

// workerProxy is the module importers receive in place of the worker source.
const workerProxy = `const url = %s;
function spawn() {
  const worker = new Worker(url, { type: "module" });
  const pending = new Map();
  let seq = 0;
  worker.onmessage = (event) => {
    const { id, value, error } = event.data;
    const call = pending.get(id);
    if (!call) return;
    pending.delete(id);
    error === undefined ? call.resolve(value) : call.reject(new Error(error));
  };
  return new Proxy({}, {
    get(_, method) {
      if (method === "then") return undefined;
      if (method === "terminate") return () => worker.terminate();
      return (...args) => new Promise((resolve, reject) => {
        const id = ++seq;
        pending.set(id, { resolve, reject });
        worker.postMessage({ id, method, args });
      });
    }
  });
}
%s
`

const (
	singletonExport = `let shared;
export default new Proxy({}, { get: (_, method) => (shared ??= spawn())[method] });`
	factoryExport = `export default spawn;`
)

// buildWorker bundles a worker source behind the message dispatcher and
// returns the proxy module that replaces it for importers. The worker bundle
// is built with the same rules as its importer, minus worker-proxy rules.
func buildWorker(src string, singleton bool, rules []ModuleRule, opts PluginOptions) (string, error) {
	entry, err := json.Marshal(filepath.ToSlash(src))
	if err != nil {
		return "", err
	}

	name := renderName(workerName, src, []byte(filepath.ToSlash(src)))

	result := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   fmt.Sprintf(workerEntry, entry),
			ResolveDir: filepath.Dir(src),
			Sourcefile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".entry.js",
			Loader:     api.LoaderJS,
		},
		Bundle:            true,
		Write:             opts.Write,
		Outfile:           filepath.Join(opts.OutputDir, workerDir, name+".js"),
		Format:            api.FormatESModule,
		Platform:          api.PlatformBrowser,
		Define:            opts.Define,
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		LogLevel:          api.LogLevelSilent,
		Plugins:           []api.Plugin{RulesPlugin(withoutLoader(rules, LoaderWorkerProxy), opts)},
	})

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			log.Error().Str("worker", src).Str("error", msg.Text).Msg("Worker build error")
		}
		return "", errors.New("worker build failed")
	}

	url, err := json.Marshal(path.Join(opts.PublicPath, workerDir, name+".js"))
	if err != nil {
		return "", err
	}

	telemetry.GetMetrics().WorkersBuilt.Add(context.Background(), 1)
	log.Debug().Str("worker", src).Str("name", name).Bool("singleton", singleton).Msg("Built worker")

	return fmt.Sprintf(workerProxy, url, cond(singleton, singletonExport, factoryExport)), nil
}

// withoutLoader returns a copy of rules without the rules using loader.
func withoutLoader(rules []ModuleRule, loader string) []ModuleRule {
	out := make([]ModuleRule, 0, len(rules))
	for _, rule := range rules {
		if slices.ContainsFunc(rule.Use, func(spec LoaderSpec) bool { return spec.Loader == loader }) {
			continue
		}
		out = append(out, rule)
	}
	return out
}
