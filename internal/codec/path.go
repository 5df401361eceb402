package codec

import (
	"strings"

	"github.com/dshills/tether/internal/binding"
)

// queryEscaper escapes characters gjson and sjson give meaning to inside
// a path segment.
var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`.`, `\.`,
)

// QueryPath converts a binding path such as "items[0].name" into the
// gjson/sjson form "items.0.name". Segments are escaped so wildcards,
// modifiers and pipes are matched literally. Empty or malformed paths are
// rejected with the binding package's path errors.
func QueryPath(path string) (string, error) {
	segments, err := binding.ParsePath(path)
	if err != nil {
		return "", err
	}
	for i, seg := range segments {
		segments[i] = queryEscaper.Replace(seg)
	}
	return strings.Join(segments, "."), nil
}
