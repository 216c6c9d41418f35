// Package web embeds the page shell rendered for every client route.
package web

import "embed"

// ShellTemplate is the name of the page shell template.
const ShellTemplate = "shell.html"

// TemplatePattern selects the shell templates inside Templates.
const TemplatePattern = "templates/*.html"

// Templates holds the page shell.
//
//go:embed templates
var Templates embed.FS
