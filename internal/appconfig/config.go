// Package appconfig resolves the configuration of the web client from the
// process environment and the embedded static data.
package appconfig

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaults []byte

// Config is the resolved client configuration. It is rebuilt by Resolve on
// every invocation and never mutated afterwards.
type Config struct {
	Env       Env          `yaml:"env" json:"env"`
	Router    RouterConfig `yaml:"router" json:"router"`
	Head      Head         `yaml:"head" json:"head"`
	Loading   LoadingBar   `yaml:"loading" json:"loading"`
	PWA       PWA          `yaml:"pwa" json:"pwa"`
	CSS       []string     `yaml:"css" json:"css"`
	Plugins   []string     `yaml:"plugins" json:"plugins"`
	I18n      I18n         `yaml:"i18n" json:"i18n"`
	DateFns   DateFns      `yaml:"date_fns" json:"dateFns"`
	Theme     Theme        `yaml:"theme" json:"theme"`
	Transpile []string     `yaml:"transpile" json:"transpile"`
	Server    Server       `yaml:"server" json:"server"`
}

type RouterConfig struct {
	Mode       RouterMode `yaml:"mode" json:"mode"`
	Middleware []string   `yaml:"middleware" json:"middleware"`
}

type Head struct {
	TitleTemplate string    `yaml:"title_template" json:"titleTemplate"`
	Title         string    `yaml:"title" json:"title"`
	Meta          []MetaTag `yaml:"meta" json:"meta"`
	Link          []LinkTag `yaml:"link" json:"link"`
}

type MetaTag struct {
	HID     string `yaml:"hid,omitempty" json:"hid,omitempty"`
	Charset string `yaml:"charset,omitempty" json:"charset,omitempty"`
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Content string `yaml:"content,omitempty" json:"content,omitempty"`
}

type LinkTag struct {
	Rel  string `yaml:"rel" json:"rel"`
	Type string `yaml:"type,omitempty" json:"type,omitempty"`
	Href string `yaml:"href" json:"href"`
}

type LoadingBar struct {
	Color       string `yaml:"color" json:"color"`
	FailedColor string `yaml:"failed_color" json:"failedColor"`
	Height      string `yaml:"height" json:"height"`
}

type PWA struct {
	Meta     PWAMeta     `yaml:"meta" json:"meta"`
	Manifest PWAManifest `yaml:"manifest" json:"manifest"`
}

type PWAMeta struct {
	NativeUI            bool   `yaml:"native_ui" json:"nativeUI"`
	AppleStatusBarStyle string `yaml:"apple_status_bar_style" json:"appleStatusBarStyle"`
	Name                string `yaml:"name" json:"name"`
	ThemeColor          string `yaml:"theme_color" json:"themeColor"`
}

type PWAManifest struct {
	Name            string `yaml:"name" json:"name"`
	BackgroundColor string `yaml:"background_color" json:"backgroundColor"`
}

type I18n struct {
	Locales        []Locale `yaml:"locales" json:"locales"`
	Lazy           bool     `yaml:"lazy" json:"lazy"`
	LangDir        string   `yaml:"lang_dir" json:"langDir"`
	Strategy       string   `yaml:"strategy" json:"strategy"`
	DefaultLocale  string   `yaml:"default_locale" json:"defaultLocale"`
	FallbackLocale string   `yaml:"fallback_locale" json:"fallbackLocale"`
}

type Locale struct {
	Code string `yaml:"code" json:"code"`
	ISO  string `yaml:"iso" json:"iso"`
	Name string `yaml:"name" json:"name"`
	File string `yaml:"file" json:"file"`
}

type DateFns struct {
	Locales        []string `yaml:"locales" json:"locales"`
	DefaultLocale  string   `yaml:"default_locale" json:"defaultLocale"`
	FallbackLocale string   `yaml:"fallback_locale" json:"fallbackLocale"`
}

// Palette maps a theme color role (primary, background, ...) to a CSS color.
type Palette map[string]string

type Theme struct {
	Dark             bool               `yaml:"dark" json:"dark"`
	Default          string             `yaml:"default" json:"default"`
	CustomProperties bool               `yaml:"custom_properties" json:"customProperties"`
	IconFont         string             `yaml:"icon_font" json:"iconFont"`
	Themes           map[string]Palette `yaml:"themes" json:"themes"`
}

type Server struct {
	Host string `yaml:"host" json:"host"`
}

// Resolve builds the configuration from the embedded defaults, the given
// overlays (YAML documents applied in order) and the environment.
func Resolve(lookup LookupFunc, overlays ...[]byte) (*Config, error) {
	cfg := new(Config)

	if err := decode(defaults, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode defaults: %w", err)
	}

	for i, overlay := range overlays {
		if err := decode(overlay, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode overlay %d: %w", i, err)
		}
	}

	cfg.applyEnv(lookup)

	return cfg, nil
}

// ResolveFile is Resolve with an optional overlay read from path, an empty path skips it.
func ResolveFile(lookup LookupFunc, path string) (*Config, error) {
	if path == "" {
		return Resolve(lookup)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return Resolve(lookup, data)
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Description returns the content of the description meta tag.
func (c *Config) Description() string {
	for _, m := range c.Head.Meta {
		if m.HID == "description" {
			return m.Content
		}
	}
	return ""
}

// Define returns the compile time substitutions injecting the environment
// into the client bundle.
func (c *Config) Define() map[string]string {
	return map[string]string{
		"process.env.server_url_list": quote(c.Env.ServerURLList),
		"process.env.commit_hash":     quote(c.Env.CommitHash),
		"process.env.router_mode":     quote(string(c.Router.Mode)),
	}
}

// Manifest returns the web app manifest served to browsers.
func (c *Config) Manifest() map[string]any {
	return map[string]any{
		"name":             c.PWA.Manifest.Name,
		"short_name":       c.PWA.Manifest.Name,
		"description":      c.Description(),
		"lang":             c.I18n.DefaultLocale,
		"start_url":        "/?standalone=true",
		"display":          "standalone",
		"background_color": c.PWA.Manifest.BackgroundColor,
		"theme_color":      c.PWA.Meta.ThemeColor,
	}
}
