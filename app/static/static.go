// Package static embeds the stylesheet and script shared by every page.
package static

import "embed"

//go:embed css js
var FS embed.FS
