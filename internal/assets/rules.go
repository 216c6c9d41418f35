package assets

// Target selects the runtime the compiled output is destined for.
type Target string

const (
	TargetClient Target = "client"
	TargetServer Target = "server"
)

// BuildContext describes the build invocation the rule list is assembled for.
type BuildContext struct {
	Target Target
}

// IsClient reports whether the build produces code for the browser.
func (bc BuildContext) IsClient() bool {
	return bc.Target == TargetClient
}

// ModuleType overrides how the bundler treats a matched resource.
type ModuleType string

// ModuleTypeOpaque includes the resource verbatim without parsing it as source.
const ModuleTypeOpaque ModuleType = "opaque"

// Loader identifiers understood by RulesPlugin.
const (
	LoaderFile        = "file"
	LoaderWorkerProxy = "worker-proxy"
)

// LoaderSpec names a handler and its options.
type LoaderSpec struct {
	Loader  string
	Options map[string]any
}

// ModuleRule describes how resources whose path matches Test are handled.
type ModuleRule struct {
	Name    string
	Test    Matcher
	Exclude Matcher
	Use     []LoaderSpec
	Type    ModuleType
}

// Matches reports whether the rule claims the path: Test accepts it and Exclude does not.
func (r ModuleRule) Matches(p string) bool {
	if r.Test == nil || !r.Test(p) {
		return false
	}
	return r.Exclude == nil || !r.Exclude(p)
}

// DefaultRules returns the base rule list every build starts from.
func DefaultRules() []ModuleRule {
	return []ModuleRule{
		{
			Name: "images",
			Test: HasExt(".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico"),
			Use:  []LoaderSpec{{Loader: LoaderFile, Options: map[string]any{"name": "img/[name].[hash:7].[ext]"}}},
		},
		{
			Name: "fonts",
			Test: HasExt(".woff", ".woff2", ".eot", ".ttf", ".otf"),
			Use:  []LoaderSpec{{Loader: LoaderFile, Options: map[string]any{"name": "fonts/[name].[hash:7].[ext]"}}},
		},
	}
}

// InjectRules appends the worker and subtitle renderer rules for the build.
//
// Client builds get the worker proxy transform first. The two subtitle
// renderer rules follow for every target so the narrower paths are never
// shadowed by the worker suffix rule.
func InjectRules(rules []ModuleRule, bc BuildContext) []ModuleRule {
	if bc.IsClient() {
		rules = append(rules, ModuleRule{
			Name:    "worker-source",
			Test:    IsWorkerSource,
			Exclude: IsVendored,
			Use: []LoaderSpec{{
				Loader:  LoaderWorkerProxy,
				Options: map[string]any{"singleton": true},
			}},
		})
	}

	// the WASM payload must not be parsed as source
	rules = append(rules,
		ModuleRule{
			Name: "octopus-wasm",
			Test: IsOctopusWasm,
			Type: ModuleTypeOpaque,
		},
		ModuleRule{
			Name: "octopus-worker",
			Test: IsOctopusWorkerScript,
			Use: []LoaderSpec{{
				Loader:  LoaderFile,
				Options: map[string]any{"name": "[name].[ext]"},
			}},
		},
	)

	return rules
}
