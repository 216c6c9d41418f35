package routes

import "strings"

const aliasFile = "index.html"

// Route is a single entry of the navigational route table.
type Route struct {
	// Name is the route name used by the client router (e.g. "settings-account")
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Path is the vue-router style path, possibly ending in "/"
	Path string `json:"path" yaml:"path"`
	// Alias is the static-file path that resolves to the same page, empty until expanded
	Alias string `json:"alias,omitempty" yaml:"alias,omitempty"`
	// Component is the page file backing the route, relative to the pages root
	Component string `json:"component,omitempty" yaml:"component,omitempty"`
}

// AliasFor returns the index.html alias for a route path.
func AliasFor(path string) string {
	if strings.HasSuffix(path, "/") {
		return path + aliasFile
	}
	return path + "/" + aliasFile
}

// ExpandAliases sets the alias of every route so a static host serving
// pre-rendered index.html files resolves the same page. The slice is
// updated in place and returned; order and length are unchanged.
func ExpandAliases(routes []Route) []Route {
	for i := range routes {
		routes[i].Alias = AliasFor(routes[i].Path)
	}
	return routes
}

// IsDynamic reports whether the path contains a parameter or wildcard segment.
func IsDynamic(path string) bool {
	return strings.Contains(path, ":") || strings.Contains(path, "*")
}
