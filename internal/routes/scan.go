package routes

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// DefaultPageExtensions lists the page file extensions picked up by Scan.
var DefaultPageExtensions = []string{".vue"}

// Scan builds a route table from a pages directory using file based routing:
//
//	index.vue               -> /
//	settings/index.vue      -> /settings
//	settings/account.vue    -> /settings/account
//	item/_itemId/index.vue  -> /item/:itemId
//	_.vue                   -> /*
//
// Static segments sort before parameters, parameters before wildcards.
func Scan(fsys fs.FS, root string, exts ...string) ([]Route, error) {
	if len(exts) == 0 {
		exts = DefaultPageExtensions
	}

	seen := make(map[string]string)
	var table []Route

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !slices.Contains(exts, path.Ext(p)) {
			return nil
		}

		rel := p
		if root != "." {
			rel = strings.TrimPrefix(p, strings.TrimSuffix(root, "/")+"/")
		}
		route := routeFromFile(rel)

		if prev, ok := seen[route.Path]; ok {
			return fmt.Errorf("duplicate route %q from %s and %s", route.Path, prev, rel)
		}
		seen[route.Path] = rel

		table = append(table, route)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan pages in %s: %w", root, err)
	}

	slices.SortStableFunc(table, func(a, b Route) int {
		return comparePaths(a.Path, b.Path)
	})

	return table, nil
}

func routeFromFile(rel string) Route {
	segments := strings.Split(strings.TrimSuffix(rel, path.Ext(rel)), "/")
	if segments[len(segments)-1] == "index" {
		segments = segments[:len(segments)-1]
	}

	parts := make([]string, 0, len(segments))
	names := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch {
		case seg == "_":
			parts = append(parts, "*")
			names = append(names, "all")
		case strings.HasPrefix(seg, "_"):
			parts = append(parts, ":"+seg[1:])
			names = append(names, seg[1:])
		default:
			parts = append(parts, seg)
			names = append(names, seg)
		}
	}

	name := strings.Join(names, "-")
	if name == "" {
		name = "index"
	}

	return Route{
		Name:      name,
		Path:      "/" + strings.Join(parts, "/"),
		Component: rel,
	}
}

func segmentRank(seg string) int {
	switch {
	case seg == "*":
		return 2
	case strings.HasPrefix(seg, ":"):
		return 1
	default:
		return 0
	}
}

func comparePaths(a, b string) int {
	as := splitPath(a)
	bs := splitPath(b)

	for i := 0; i < len(as) && i < len(bs); i++ {
		if r := segmentRank(as[i]) - segmentRank(bs[i]); r != 0 {
			return r
		}
		if c := strings.Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
