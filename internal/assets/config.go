package assets

import "path/filepath"

type Config struct {
	// Entry point glob pattern (e.g., "app/entry/*.ts")
	EntryPointGlob string
	// Output directory for client files
	OutputDir string
	// Output directory for server files
	ServerOutputDir string
	// URL prefix OutputDir is served under
	PublicPath string
	// Whether to minify output
	Minify bool
	// Whether to enable source maps
	SourceMap bool
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		EntryPointGlob:  "app/entry/*.ts",
		OutputDir:       "public",
		ServerOutputDir: ".output/server",
		PublicPath:      "/public/",
		Minify:          true,
		SourceMap:       true,
	}
}

// TargetDir returns the output directory for a build target.
func (c Config) TargetDir(t Target) string {
	if t == TargetServer {
		return c.ServerOutputDir
	}
	return c.OutputDir
}

// MetafilePath returns where the metafile of a build target is written.
func (c Config) MetafilePath(t Target) string {
	return filepath.Join(c.TargetDir(t), "meta.json")
}
