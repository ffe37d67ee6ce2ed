package githubgql

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Vars holds GraphQL variable bindings. Values must be JSON-encodable.
//
// The client treats the map it is given as read-only: depagination works on
// a copy, so the caller's bindings are never mutated.
type Vars map[string]interface{}

// CursorTree maps top-level cursor variable names to the cursor nodes that
// describe where their connections live in the response.
type CursorTree map[string]*CursorNode

// CursorNode describes one paginated connection.
//
// Path names the descent from the local root of the response to the
// connection object. Next, when present, describes connections that live
// inside each element of the current connection's nodes list, keyed by
// their cursor variable names.
type CursorNode struct {
	Path []string   `json:"path"           yaml:"path"`
	Next CursorTree `json:"next,omitempty" yaml:"next,omitempty"`
}

// Path is a shorthand constructor for a leaf cursor node:
//
//	githubgql.Path("repository", "issues")
//
// is equivalent to &CursorNode{Path: []string{"repository", "issues"}}.
func Path(keys ...string) *CursorNode {
	return &CursorNode{Path: keys}
}

// UnmarshalJSON accepts either the full {path, next} object form or the
// bare-sequence shorthand:
//
//	{"cursor1": ["repository", "issues"]}
func (n *CursorNode) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err == nil {
		n.Path = keys
		n.Next = nil

		return nil
	}

	type plain CursorNode

	var node plain
	if err := json.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("parsing cursor node: %w", err)
	}

	*n = CursorNode(node)

	return nil
}

// UnmarshalYAML accepts the same two forms as UnmarshalJSON, so cursor
// trees written as YAML can use bare key sequences for leaf cursors.
func (n *CursorNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var keys []string
		if err := value.Decode(&keys); err != nil {
			return fmt.Errorf("parsing cursor path: %w", err)
		}

		n.Path = keys
		n.Next = nil

		return nil
	}

	type plain CursorNode

	var node plain
	if err := value.Decode(&node); err != nil {
		return fmt.Errorf("parsing cursor node: %w", err)
	}

	*n = CursorNode(node)

	return nil
}
