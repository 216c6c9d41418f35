package assets

import (
	"path"
	"strings"
)

const (
	vendorDir         = "node_modules"
	octopusWorkerPath = "libass-wasm/dist/js/subtitles-octopus-worker"
)

// workerScriptExts lists the script extensions a background worker source may use.
var workerScriptExts = []string{"ts", "js"}

// Matcher reports whether a resource path is selected by a rule.
type Matcher func(path string) bool

// normalizeSeparators rewrites backslashes to forward slashes and collapses
// runs of separators so matching does not depend on the host OS.
func normalizeSeparators(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// IsWorkerSource matches files ending in .worker.<ext>, e.g. "playback.worker.ts".
func IsWorkerSource(p string) bool {
	base := path.Base(normalizeSeparators(p))
	for _, ext := range workerScriptExts {
		if strings.HasSuffix(base, ".worker."+ext) {
			return true
		}
	}
	return false
}

// IsVendored matches any path inside a node_modules directory.
func IsVendored(p string) bool {
	return strings.Contains(normalizeSeparators(p), vendorDir)
}

// IsOctopusWasm matches the subtitle renderer's WASM worker binary.
func IsOctopusWasm(p string) bool {
	return strings.Contains(normalizeSeparators(p), octopusWorkerPath+".wasm")
}

// IsOctopusWorkerScript matches the subtitle renderer's worker script, never its .wasm sibling.
func IsOctopusWorkerScript(p string) bool {
	return strings.Contains(normalizeSeparators(p), octopusWorkerPath) && !IsOctopusWasm(p)
}

// HasExt returns a matcher selecting files by extension, case insensitive.
func HasExt(exts ...string) Matcher {
	return func(p string) bool {
		ext := strings.ToLower(path.Ext(normalizeSeparators(p)))
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}
