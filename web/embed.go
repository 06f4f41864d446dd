// Package web embeds the web client's HTML templates.
package web

import "embed"

//go:embed all:templates
var Templates embed.FS
