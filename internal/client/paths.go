package client

import (
	"sort"
	"strconv"
	"strings"

	"github.com/actions-automation/githubgql/pkg/githubgql"
)

// step addresses one level of a response tree: a map key or a list index.
type step struct {
	key  string
	idx  int
	list bool
}

// keySteps converts a cursor-node path into steps.
func keySteps(keys []string) []step {
	steps := make([]step, len(keys))
	for i, key := range keys {
		steps[i] = step{key: key}
	}

	return steps
}

// joinSteps concatenates two step paths into a fresh slice.
func joinSteps(prefix, suffix []step) []step {
	joined := make([]step, 0, len(prefix)+len(suffix))
	joined = append(joined, prefix...)
	joined = append(joined, suffix...)

	return joined
}

// pathString renders a step path for diagnostics, e.g.
// "repository.issues.nodes.3".
func pathString(path []step) string {
	parts := make([]string, len(path))
	for i, s := range path {
		if s.list {
			parts[i] = strconv.Itoa(s.idx)
		} else {
			parts[i] = s.key
		}
	}

	return strings.Join(parts, ".")
}

// descend walks a decoded response tree along path.
func descend(root interface{}, path []step) (interface{}, error) {
	current := root

	for i, s := range path {
		if s.list {
			list, ok := current.([]interface{})
			if !ok {
				return nil, &githubgql.ShapeError{Path: pathString(path[:i]), Missing: "list"}
			}

			if s.idx < 0 || s.idx >= len(list) {
				return nil, &githubgql.ShapeError{Path: pathString(path[:i+1]), Missing: "list element"}
			}

			current = list[s.idx]

			continue
		}

		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, &githubgql.ShapeError{Path: pathString(path[:i]), Missing: "object"}
		}

		value, ok := obj[s.key]
		if !ok {
			return nil, &githubgql.ShapeError{Path: pathString(path[:i+1]), Missing: "key " + strconv.Quote(s.key)}
		}

		current = value
	}

	return current, nil
}

// connectionAt descends to path and asserts the result is an object.
func connectionAt(root interface{}, path []step) (map[string]interface{}, error) {
	value, err := descend(root, path)
	if err != nil {
		return nil, err
	}

	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, &githubgql.ShapeError{Path: pathString(path), Missing: "object"}
	}

	return obj, nil
}

// sortedCursorNames returns the tree's cursor names in a stable order.
func sortedCursorNames(cursors githubgql.CursorTree) []string {
	names := make([]string, 0, len(cursors))
	for name := range cursors {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
