// Package templates embeds the HTML views rendered by the fiber view engine.
package templates

import "embed"

//go:embed *.html layouts/*.html
var FS embed.FS
