package domain

import (
	"fmt"
	"strings"
)

// PathSeparator joins category names into a category path.
const PathSeparator = "."

// SplitPath returns the segments of a category path. The empty path has none.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

// JoinPath appends name to prefix.
func JoinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + PathSeparator + name
}

// LastSegment returns the leaf category name of a path.
func LastSegment(path string) string {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// FormatPath renders a path for display, e.g. "Multifamily > OCCUPANCY".
func FormatPath(path string) string {
	return strings.Join(SplitPath(path), " > ")
}

// Resolve walks root segment by segment. It fails at the first missing
// segment and never returns a partial result.
func Resolve(root *Node, path string) (*Node, error) {
	current := root
	for _, segment := range SplitPath(path) {
		child, ok := current.Child(segment)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrPathNotFound, path)
		}
		current = child
	}
	if current == nil {
		return nil, fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}
	return current, nil
}

// ResolveList resolves path and requires the node to be a company list.
func ResolveList(root *Node, path string) (*Node, error) {
	node, err := Resolve(root, path)
	if err != nil {
		return nil, err
	}
	if !node.IsCompanies() {
		return nil, fmt.Errorf("%w: %q", ErrNotAList, path)
	}
	return node, nil
}
