package appconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve_routerMode(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected RouterMode
	}{
		{
			name:     "flag set to 1",
			env:      map[string]string{EnvHistoryRouterMode: "1"},
			expected: RouterModeHistory,
		},
		{
			name:     "absent",
			env:      map[string]string{},
			expected: RouterModeHash,
		},
		{
			name:     "empty",
			env:      map[string]string{EnvHistoryRouterMode: ""},
			expected: RouterModeHash,
		},
		{
			name:     "true is not 1",
			env:      map[string]string{EnvHistoryRouterMode: "true"},
			expected: RouterModeHash,
		},
		{
			name:     "zero",
			env:      map[string]string{EnvHistoryRouterMode: "0"},
			expected: RouterModeHash,
		},
		{
			name:     "padded",
			env:      map[string]string{EnvHistoryRouterMode: " 1"},
			expected: RouterModeHash,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Resolve(MapEnv(tt.env))
			require.NoError(t, err)
			require.Equal(t, tt.expected, cfg.Router.Mode)
		})
	}
}

func TestResolve_env(t *testing.T) {
	cfg, err := Resolve(MapEnv(map[string]string{
		EnvDefaultServers:     "http://192.168.1.1, https://your.server.domain",
		EnvCommitHash:         "abc123",
		EnvPagesCommitSHA:     "def456",
		EnvPackageDescription: "A media client",
	}))
	require.NoError(t, err)

	require.Equal(t, "http://192.168.1.1, https://your.server.domain", cfg.Env.ServerURLList)
	require.Equal(t, "abc123", cfg.Env.CommitHash)
	require.Equal(t, "A media client", cfg.Description())
}

func TestResolve_commitHashFallback(t *testing.T) {
	cfg, err := Resolve(MapEnv(map[string]string{EnvPagesCommitSHA: "def456"}))
	require.NoError(t, err)
	require.Equal(t, "def456", cfg.Env.CommitHash)

	cfg, err = Resolve(MapEnv(map[string]string{EnvCommitHash: "", EnvPagesCommitSHA: "def456"}))
	require.NoError(t, err)
	require.Equal(t, "def456", cfg.Env.CommitHash)
}

func TestResolve_emptyEnv(t *testing.T) {
	cfg, err := Resolve(MapEnv(nil))
	require.NoError(t, err)

	require.Empty(t, cfg.Env.ServerURLList)
	require.Empty(t, cfg.Env.CommitHash)
	require.Empty(t, cfg.Description())
	require.Equal(t, RouterModeHash, cfg.Router.Mode)
}

func TestResolve_defaults(t *testing.T) {
	cfg, err := Resolve(MapEnv(nil))
	require.NoError(t, err)

	require.Equal(t, []string{"auth", "meta"}, cfg.Router.Middleware)
	require.Equal(t, "%s - Jellyfin", cfg.Head.TitleTemplate)
	require.Equal(t, "plugins/store/index.ts", cfg.Plugins[0])
	require.NotEmpty(t, cfg.CSS)
	require.NotEmpty(t, cfg.I18n.Locales)
	require.Contains(t, cfg.Theme.Themes, "dark")
	require.Contains(t, cfg.Theme.Themes, "light")
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestResolve_independent(t *testing.T) {
	a, err := Resolve(MapEnv(map[string]string{EnvPackageDescription: "first"}))
	require.NoError(t, err)

	b, err := Resolve(MapEnv(nil))
	require.NoError(t, err)

	require.Equal(t, "first", a.Description())
	require.Empty(t, b.Description())
}

func TestResolve_overlay(t *testing.T) {
	overlay := []byte(`
plugins: [plugins/only.ts]
i18n:
  default_locale: en-US
`)

	cfg, err := Resolve(MapEnv(map[string]string{EnvHistoryRouterMode: "1"}), overlay)
	require.NoError(t, err)

	require.Equal(t, []string{"plugins/only.ts"}, cfg.Plugins)
	require.Equal(t, "en-US", cfg.I18n.DefaultLocale)
	// untouched sections keep their defaults
	require.Equal(t, "zh-CN", cfg.I18n.FallbackLocale)
	require.Equal(t, RouterModeHistory, cfg.Router.Mode)
}

func TestResolve_overlayUnknownField(t *testing.T) {
	_, err := Resolve(MapEnv(nil), []byte("unknown: true\n"))
	require.ErrorContains(t, err, "overlay 0")
}

func TestResolveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "web.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transpile: [screenfull, hls.js]\n"), 0o600))

	cfg, err := ResolveFile(MapEnv(nil), path)
	require.NoError(t, err)
	require.Equal(t, []string{"screenfull", "hls.js"}, cfg.Transpile)

	_, err = ResolveFile(MapEnv(nil), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	cfg, err = ResolveFile(MapEnv(nil), "")
	require.NoError(t, err)
	require.Equal(t, []string{"screenfull"}, cfg.Transpile)
}

func TestEnv_serverURLs(t *testing.T) {
	tests := []struct {
		name     string
		list     string
		expected []string
	}{
		{name: "empty", list: "", expected: nil},
		{name: "single", list: "http://192.168.1.1", expected: []string{"http://192.168.1.1"}},
		{
			name:     "with spaces",
			list:     "http://192.168.1.1, https://your.server.domain",
			expected: []string{"http://192.168.1.1", "https://your.server.domain"},
		},
		{name: "blank entries", list: " , http://a,,", expected: []string{"http://a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Env{ServerURLList: tt.list}.ServerURLs())
		})
	}
}

func TestConfig_define(t *testing.T) {
	cfg, err := Resolve(MapEnv(map[string]string{
		EnvDefaultServers:    `http://a,"b"`,
		EnvCommitHash:        "abc123",
		EnvHistoryRouterMode: "1",
	}))
	require.NoError(t, err)

	require.Equal(t, map[string]string{
		"process.env.server_url_list": `"http://a,\"b\""`,
		"process.env.commit_hash":     `"abc123"`,
		"process.env.router_mode":     `"history"`,
	}, cfg.Define())
}

func TestConfig_manifest(t *testing.T) {
	cfg, err := Resolve(MapEnv(nil))
	require.NoError(t, err)

	manifest := cfg.Manifest()
	require.Equal(t, "Jellyfin", manifest["name"])
	require.Equal(t, "#14141F", manifest["background_color"])
	require.Equal(t, "#1c2331", manifest["theme_color"])
}
