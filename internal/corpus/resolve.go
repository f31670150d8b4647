package corpus

import (
	"fmt"
	"path"
	"strings"
)

// ResolveTarget resolves a link destination against the corpus. Destinations
// starting with "." are interpreted relative to the source file; everything
// else is relative to the corpus root. A destination without an extension
// gets ".md" appended, so `[CTEs](ctes)` and `[CTEs](ctes.md)` resolve the
// same lesson.
func ResolveTarget(source, destination string) (string, error) {
	if destination == "" {
		return "", fmt.Errorf("empty link destination")
	}

	if path.Ext(destination) == "" {
		destination += ".md"
	}

	if destination[0] == '.' {
		resolved := path.Join(path.Dir(source), destination)
		if strings.HasPrefix(resolved, "..") {
			return "", fmt.Errorf("destination %q escapes the corpus", destination)
		}
		return resolved, nil
	}

	resolved := path.Clean(destination)
	if strings.HasPrefix(resolved, "..") || path.IsAbs(resolved) {
		return "", fmt.Errorf("destination %q escapes the corpus", destination)
	}
	return resolved, nil
}
