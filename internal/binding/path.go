package binding

import (
	"regexp"
	"strconv"
	"strings"
)

// indexerPattern is what may appear between brackets.
var indexerPattern = regexp.MustCompile(`^[0-9A-Za-z_$]*$`)

// NormalizePath rewrites bracket indexers to dot form, so "items[0].name"
// becomes "items.0.name". A path that starts with an indexer loses the
// leading dot: "[0].name" becomes "0.name".
func NormalizePath(path string) (string, error) {
	if !strings.ContainsAny(path, "[]") {
		return path, nil
	}

	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '[':
			end := strings.IndexByte(path[i+1:], ']')
			if end < 0 {
				return "", &PathSyntaxError{Path: path, Offset: i, Reason: "unterminated '['"}
			}
			inner := path[i+1 : i+1+end]
			if !indexerPattern.MatchString(inner) {
				return "", &PathSyntaxError{Path: path, Offset: i + 1, Reason: "invalid indexer " + strconv.Quote(inner)}
			}
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(inner)
			i += end + 1
		case ']':
			return "", &PathSyntaxError{Path: path, Offset: i, Reason: "unexpected ']'"}
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// ParsePath normalizes path and splits it into segments.
func ParsePath(path string) ([]string, error) {
	if path == "" {
		return nil, &EmptyPathError{}
	}
	norm, err := NormalizePath(path)
	if err != nil {
		return nil, err
	}
	segments := strings.Split(norm, ".")
	for _, s := range segments {
		if s == "" {
			return nil, &EmptyPathError{Path: path}
		}
	}
	return segments, nil
}
