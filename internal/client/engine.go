package client

import (
	"context"
	"fmt"

	"github.com/actions-automation/githubgql/pkg/githubgql"
)

// depaginate issues one request and then follows every cursor in the tree,
// splicing later pages into data in place. prevPath is the path prefix
// under which this frame's connections live in the response; recursive
// calls use it to walk their own fresh responses from the top.
func (c *Client) depaginate(ctx context.Context, query string, vars githubgql.Vars, cursors githubgql.CursorTree, prevPath []step) (map[string]interface{}, error) {
	data, err := c.transport.Execute(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	if len(cursors) == 0 {
		return data, nil
	}

	for _, name := range sortedCursorNames(cursors) {
		node := cursors[name]
		if node == nil || len(node.Path) == 0 {
			return nil, fmt.Errorf("cursor %q: %w", name, githubgql.ErrInvalidCursorTree)
		}

		fullPath := joinSteps(prevPath, keySteps(node.Path))

		conn, err := connectionAt(data, fullPath)
		if err != nil {
			return nil, err
		}

		info, err := popPageInfo(conn, fullPath)
		if err != nil {
			return nil, err
		}

		// More pages at this level: re-run the whole query with the end
		// cursor bound and splice the follow-up nodes onto this page.
		if info.hasNextPage {
			vars[name] = info.endCursor

			dataNext, err := c.depaginate(ctx, query, cloneVars(vars), githubgql.CursorTree{name: node}, prevPath)
			if err != nil {
				return nil, err
			}

			peer, err := connectionAt(dataNext, fullPath)
			if err != nil {
				return nil, err
			}

			if err := extendNodes(conn, peer, fullPath); err != nil {
				return nil, err
			}
		}

		// Nested cursors are resolved per element once this frame's page is
		// terminal; while sibling pages remain, the continuation frame that
		// finally sees hasNextPage false handles its own elements.
		if node.Next != nil && !info.hasNextPage {
			if err := c.depaginateElements(ctx, query, vars, data, node, prevPath); err != nil {
				return nil, err
			}
		}
	}

	return data, nil
}

// depaginateElements walks the elements of a completed connection and
// depaginates the nested connections inside each one.
func (c *Client) depaginateElements(ctx context.Context, query string, vars githubgql.Vars, data map[string]interface{}, node *githubgql.CursorNode, prevPath []step) error {
	connPath := joinSteps(prevPath, keySteps(node.Path))

	conn, err := connectionAt(data, connPath)
	if err != nil {
		return err
	}

	nodes, err := nodeList(conn, connPath)
	if err != nil {
		return err
	}

	// The element descent base deliberately omits node.Path when prevPath
	// is set: continuation frames already carry the full connection path in
	// prevPath.
	base := prevPath
	if len(base) == 0 {
		base = keySteps(node.Path)
	}

	for i := range nodes {
		elemPath := joinSteps(base, []step{{key: "nodes"}, {idx: i, list: true}})

		// A follow-up call is needed when any nested connection of this
		// element has another page or nested cursors of its own.
		callRequired := false

		for _, childName := range sortedCursorNames(node.Next) {
			child := node.Next[childName]
			if child == nil || len(child.Path) == 0 {
				return fmt.Errorf("cursor %q: %w", childName, githubgql.ErrInvalidCursorTree)
			}

			childPath := joinSteps(elemPath, keySteps(child.Path))

			childConn, err := connectionAt(data, childPath)
			if err != nil {
				return err
			}

			childInfo, err := popPageInfo(childConn, childPath)
			if err != nil {
				return err
			}

			if childInfo.hasNextPage || child.Next != nil {
				callRequired = true
			}
		}

		if !callRequired {
			continue
		}

		dataNested, err := c.depaginate(ctx, query, cloneVars(vars), node.Next, elemPath)
		if err != nil {
			return err
		}

		// Weld the depaginated nested connections back into data. The
		// recursive call has already merged every page and stripped the
		// pagination metadata from its own tree.
		for _, childName := range sortedCursorNames(node.Next) {
			child := node.Next[childName]
			joinPath := joinSteps(elemPath, keySteps(child.Path))

			src, err := connectionAt(dataNested, joinPath)
			if err != nil {
				return err
			}

			merged, err := nodeList(src, joinPath)
			if err != nil {
				return err
			}

			dst, err := connectionAt(data, joinPath)
			if err != nil {
				return err
			}

			if _, ok := dst["nodes"]; !ok {
				return &githubgql.ShapeError{Path: pathString(joinPath), Missing: `"nodes" list`}
			}

			dst["nodes"] = merged
		}
	}

	return nil
}

// pageInfo is the pagination metadata stripped from a connection.
type pageInfo struct {
	endCursor   interface{}
	hasNextPage bool
}

// popPageInfo removes the pageInfo object from a connection and parses it.
func popPageInfo(conn map[string]interface{}, at []step) (pageInfo, error) {
	raw, ok := conn["pageInfo"]
	if !ok {
		return pageInfo{}, &githubgql.ShapeError{Path: pathString(at), Missing: `"pageInfo" object`}
	}

	fields, ok := raw.(map[string]interface{})
	if !ok {
		return pageInfo{}, &githubgql.ShapeError{Path: pathString(at), Missing: `"pageInfo" object`}
	}

	delete(conn, "pageInfo")

	hasNextPage, ok := fields["hasNextPage"].(bool)
	if !ok {
		return pageInfo{}, &githubgql.ShapeError{Path: pathString(at), Missing: `boolean "hasNextPage" in pageInfo`}
	}

	return pageInfo{endCursor: fields["endCursor"], hasNextPage: hasNextPage}, nil
}

// nodeList returns the nodes list of a connection.
func nodeList(conn map[string]interface{}, at []step) ([]interface{}, error) {
	raw, ok := conn["nodes"]
	if !ok {
		return nil, &githubgql.ShapeError{Path: pathString(at), Missing: `"nodes" list`}
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil, &githubgql.ShapeError{Path: pathString(at), Missing: `"nodes" list`}
	}

	return list, nil
}

// extendNodes appends src's nodes to dst's nodes, preserving order.
func extendNodes(dst, src map[string]interface{}, at []step) error {
	dstNodes, err := nodeList(dst, at)
	if err != nil {
		return err
	}

	srcNodes, err := nodeList(src, at)
	if err != nil {
		return err
	}

	dst["nodes"] = append(dstNodes, srcNodes...)

	return nil
}

// cloneVars copies a variable map so each call frame owns its bindings.
func cloneVars(vars githubgql.Vars) githubgql.Vars {
	clone := make(githubgql.Vars, len(vars)+1)
	for name, value := range vars {
		clone[name] = value
	}

	return clone
}
