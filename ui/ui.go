// Package ui embeds the board's HTML templates and static assets.
package ui

import "embed"

//go:embed html/*.html
var HTML embed.FS

//go:embed static
var Static embed.FS
