package gpu

import (
	"regexp"
	"sort"
	"strings"
)

var (
	uniformDecl   = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(\w+)\s*(?:\[\s*\w+\s*\])?\s*;`)
	attributeDecl = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?(?:in|attribute)\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(\w+)\s*;`)
)

// ParseUniforms lists the uniform names declared at file scope in the given
// shader sources, sorted and de-duplicated. Array uniforms are reported by
// their base name.
func ParseUniforms(sources ...string) []string {
	seen := make(map[string]struct{})
	for _, src := range sources {
		for _, m := range uniformDecl.FindAllStringSubmatch(stripComments(src), -1) {
			seen[m[1]] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// ParseAttributes lists the vertex inputs declared by a vertex shader.
func ParseAttributes(vertexSrc string) []string {
	seen := make(map[string]struct{})
	for _, m := range attributeDecl.FindAllStringSubmatch(stripComments(vertexSrc), -1) {
		seen[m[1]] = struct{}{}
	}
	return sortedKeys(seen)
}

// UniformBaseName strips an array suffix such as "[0]" reported by drivers.
func UniformBaseName(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

func stripComments(src string) string {
	var b strings.Builder
	for _, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
