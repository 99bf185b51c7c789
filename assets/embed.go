// Package assets holds the GLSL sources of every render pass.
package assets

import "embed"

//go:embed shaders
var FS embed.FS
