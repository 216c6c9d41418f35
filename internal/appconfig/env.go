package appconfig

import (
	"encoding/json"
	"os"
	"strings"
)

// Environment variables read by Resolve.
const (
	EnvDefaultServers     = "DEFAULT_SERVERS"
	EnvCommitHash         = "COMMIT_HASH"
	EnvPagesCommitSHA     = "CF_PAGES_COMMIT_SHA"
	EnvHistoryRouterMode  = "HISTORY_ROUTER_MODE"
	EnvPackageDescription = "npm_package_description"
)

// LookupFunc retrieves an environment variable, os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// OSEnv looks variables up in the process environment.
var OSEnv LookupFunc = os.LookupEnv

// MapEnv looks variables up in a map.
func MapEnv(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// RouterMode selects how client routes are addressed.
type RouterMode string

const (
	RouterModeHash    RouterMode = "hash"
	RouterModeHistory RouterMode = "history"
)

// Env holds the values injected verbatim into the client runtime environment.
type Env struct {
	// ServerURLList is the comma separated list of predefined servers
	ServerURLList string `yaml:"server_url_list" json:"server_url_list"`
	// CommitHash identifies the build, set in CI
	CommitHash string `yaml:"commit_hash" json:"commit_hash"`
}

// ServerURLs splits ServerURLList, dropping blank entries.
func (e Env) ServerURLs() []string {
	var urls []string
	for _, s := range strings.Split(e.ServerURLList, ",") {
		if s = strings.TrimSpace(s); s != "" {
			urls = append(urls, s)
		}
	}
	return urls
}

// ResolveRouterMode returns history mode only when the flag is exactly "1".
func ResolveRouterMode(lookup LookupFunc) RouterMode {
	if v, _ := lookup(EnvHistoryRouterMode); v == "1" {
		return RouterModeHistory
	}
	return RouterModeHash
}

// firstSet returns the first non-empty value among keys.
func firstSet(lookup LookupFunc, keys ...string) string {
	for _, key := range keys {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) applyEnv(lookup LookupFunc) {
	c.Env = Env{
		ServerURLList: firstSet(lookup, EnvDefaultServers),
		CommitHash:    firstSet(lookup, EnvCommitHash, EnvPagesCommitSHA),
	}
	c.Router.Mode = ResolveRouterMode(lookup)

	if desc := firstSet(lookup, EnvPackageDescription); desc != "" {
		for i := range c.Head.Meta {
			if c.Head.Meta[i].HID == "description" {
				c.Head.Meta[i].Content = desc
			}
		}
	}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
