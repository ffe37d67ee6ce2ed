package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/actions-automation/githubgql/internal/client"
	"github.com/actions-automation/githubgql/pkg/githubgql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphQLServer scripts GraphQL responses keyed on the decoded variable
// bindings of each request.
type graphQLServer struct {
	server   *httptest.Server
	requests int
	varsSeen []map[string]interface{}
}

func newGraphQLServer(t *testing.T, respond func(vars map[string]interface{}) map[string]interface{}) *graphQLServer {
	t.Helper()

	srv := &graphQLServer{}
	srv.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		var body struct {
			Query     string `json:"query"`
			Variables string `json:"variables"`
		}

		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))

		var vars map[string]interface{}

		require.NoError(t, json.Unmarshal([]byte(body.Variables), &vars))

		srv.requests++
		srv.varsSeen = append(srv.varsSeen, vars)

		_ = json.NewEncoder(writer).Encode(map[string]interface{}{"data": respond(vars)})
	}))
	t.Cleanup(srv.server.Close)

	return srv
}

func (s *graphQLServer) client() *client.Client {
	return client.New(&githubgql.Config{Endpoint: s.server.URL, Token: "test-token"})
}

// connection builds a connection object with pagination metadata.
func connection(endCursor interface{}, hasNextPage bool, nodes ...interface{}) map[string]interface{} {
	if nodes == nil {
		nodes = []interface{}{}
	}

	return map[string]interface{}{
		"pageInfo": map[string]interface{}{"endCursor": endCursor, "hasNextPage": hasNextPage},
		"nodes":    nodes,
	}
}

// assertNoPageInfo walks the whole tree and fails on any surviving pageInfo.
func assertNoPageInfo(t *testing.T, value interface{}) {
	t.Helper()

	switch typed := value.(type) {
	case map[string]interface{}:
		_, found := typed["pageInfo"]
		assert.False(t, found, "pageInfo left behind in %v", typed)

		for _, child := range typed {
			assertNoPageInfo(t, child)
		}
	case []interface{}:
		for _, child := range typed {
			assertNoPageInfo(t, child)
		}
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Query(t *testing.T) {
	t.Parallel()
	t.Run("no cursors returns the response unchanged", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			return map[string]interface{}{
				"repository": map[string]interface{}{
					"issues": connection("A", true, map[string]interface{}{"number": float64(1)}),
				},
			}
		})

		data, err := srv.client().Query(context.Background(), "query { x }", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, srv.requests)

		// Pagination metadata is preserved when nothing is depaginated.
		issues := data["repository"].(map[string]interface{})["issues"].(map[string]interface{})
		assert.Contains(t, issues, "pageInfo")
	})

	t.Run("single page strips pagination metadata", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			return map[string]interface{}{
				"repository": map[string]interface{}{
					"issues": connection("A", false,
						map[string]interface{}{"number": float64(1)},
						map[string]interface{}{"number": float64(2)},
					),
				},
			}
		})

		cursors := githubgql.CursorTree{"cursor": githubgql.Path("repository", "issues")}

		data, err := srv.client().Query(context.Background(), "query { x }", nil, cursors)
		require.NoError(t, err)
		assert.Equal(t, 1, srv.requests)
		assert.Equal(t, map[string]interface{}{
			"repository": map[string]interface{}{
				"issues": map[string]interface{}{
					"nodes": []interface{}{
						map[string]interface{}{"number": float64(1)},
						map[string]interface{}{"number": float64(2)},
					},
				},
			},
		}, data)
	})

	t.Run("two pages merge in order", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			if vars["cursor"] == "A" {
				return map[string]interface{}{
					"repository": map[string]interface{}{
						"issues": connection(nil, false, map[string]interface{}{"number": float64(2)}),
					},
				}
			}

			return map[string]interface{}{
				"repository": map[string]interface{}{
					"issues": connection("A", true, map[string]interface{}{"number": float64(1)}),
				},
			}
		})

		cursors := githubgql.CursorTree{"cursor": githubgql.Path("repository", "issues")}

		data, err := srv.client().Query(context.Background(), "query { x }", githubgql.Vars{"owner": "org"}, cursors)
		require.NoError(t, err)
		assert.Equal(t, 2, srv.requests)

		// The follow-up request binds the end cursor alongside the caller's
		// own variables.
		assert.Equal(t, map[string]interface{}{"owner": "org"}, srv.varsSeen[0])
		assert.Equal(t, map[string]interface{}{"owner": "org", "cursor": "A"}, srv.varsSeen[1])

		issues := data["repository"].(map[string]interface{})["issues"].(map[string]interface{})
		assert.Equal(t, []interface{}{
			map[string]interface{}{"number": float64(1)},
			map[string]interface{}{"number": float64(2)},
		}, issues["nodes"])
		assertNoPageInfo(t, data)
	})

	t.Run("caller variables are not mutated", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			if vars["cursor"] == "A" {
				return map[string]interface{}{"items": connection(nil, false)}
			}

			return map[string]interface{}{"items": connection("A", true)}
		})

		vars := githubgql.Vars{"owner": "org"}
		cursors := githubgql.CursorTree{"cursor": githubgql.Path("items")}

		_, err := srv.client().Query(context.Background(), "query { x }", vars, cursors)
		require.NoError(t, err)
		assert.Equal(t, githubgql.Vars{"owner": "org"}, vars)
	})

	t.Run("empty connection is terminal", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			return map[string]interface{}{
				"repository": map[string]interface{}{"issues": connection(nil, false)},
			}
		})

		cursors := githubgql.CursorTree{
			"cursor": {
				Path: []string{"repository", "issues"},
				Next: githubgql.CursorTree{"nested": githubgql.Path("comments")},
			},
		}

		data, err := srv.client().Query(context.Background(), "query { x }", nil, cursors)
		require.NoError(t, err)
		assert.Equal(t, 1, srv.requests)

		issues := data["repository"].(map[string]interface{})["issues"].(map[string]interface{})
		assert.Empty(t, issues["nodes"])
		assertNoPageInfo(t, data)
	})

	t.Run("sibling cursors depaginate independently", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			issues := connection("I1", true, map[string]interface{}{"number": float64(1)})
			if vars["c1"] == "I1" {
				issues = connection(nil, false, map[string]interface{}{"number": float64(2)})
			}

			pullRequests := connection("P1", true, map[string]interface{}{"title": "first"})
			if vars["c2"] == "P1" {
				pullRequests = connection(nil, false, map[string]interface{}{"title": "second"})
			}

			return map[string]interface{}{
				"repository": map[string]interface{}{
					"issues":       issues,
					"pullRequests": pullRequests,
				},
			}
		})

		cursors := githubgql.CursorTree{
			"c1": githubgql.Path("repository", "issues"),
			"c2": githubgql.Path("repository", "pullRequests"),
		}

		data, err := srv.client().Query(context.Background(), "query { x }", nil, cursors)
		require.NoError(t, err)
		assert.Equal(t, 3, srv.requests)

		// The second sibling's follow-up still carries the first sibling's
		// evolved cursor binding.
		assert.Equal(t, map[string]interface{}{"c1": "I1", "c2": "P1"}, srv.varsSeen[2])

		repo := data["repository"].(map[string]interface{})
		assert.Equal(t, []interface{}{
			map[string]interface{}{"number": float64(1)},
			map[string]interface{}{"number": float64(2)},
		}, repo["issues"].(map[string]interface{})["nodes"])
		assert.Equal(t, []interface{}{
			map[string]interface{}{"title": "first"},
			map[string]interface{}{"title": "second"},
		}, repo["pullRequests"].(map[string]interface{})["nodes"])
		assertNoPageInfo(t, data)
	})

	t.Run("nested connections depaginate per element", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			first := connection("T0", true, map[string]interface{}{"id": "a0"})
			if vars["c3"] == "T0" {
				first = connection(nil, false, map[string]interface{}{"id": "a1"})
			}

			second := connection("T1", true, map[string]interface{}{"id": "b0"})
			if vars["c3"] == "T1" {
				second = connection(nil, false, map[string]interface{}{"id": "b1"})
			}

			return map[string]interface{}{
				"repository": map[string]interface{}{
					"pullRequests": connection(nil, false,
						map[string]interface{}{"number": float64(1), "timelineItems": first},
						map[string]interface{}{"number": float64(2), "timelineItems": second},
					),
				},
			}
		})

		cursors := githubgql.CursorTree{
			"c2": {
				Path: []string{"repository", "pullRequests"},
				Next: githubgql.CursorTree{"c3": githubgql.Path("timelineItems")},
			},
		}

		data, err := srv.client().Query(context.Background(), "query { x }", nil, cursors)
		require.NoError(t, err)

		// One root request, then two per element: a fresh fetch plus the
		// follow-up page.
		assert.Equal(t, 5, srv.requests)

		prs := data["repository"].(map[string]interface{})["pullRequests"].(map[string]interface{})
		nodes := prs["nodes"].([]interface{})
		require.Len(t, nodes, 2)

		firstTimeline := nodes[0].(map[string]interface{})["timelineItems"].(map[string]interface{})
		assert.Equal(t, []interface{}{
			map[string]interface{}{"id": "a0"},
			map[string]interface{}{"id": "a1"},
		}, firstTimeline["nodes"])

		secondTimeline := nodes[1].(map[string]interface{})["timelineItems"].(map[string]interface{})
		assert.Equal(t, []interface{}{
			map[string]interface{}{"id": "b0"},
			map[string]interface{}{"id": "b1"},
		}, secondTimeline["nodes"])
		assertNoPageInfo(t, data)
	})

	t.Run("complete nested connections need no follow-up call", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			return map[string]interface{}{
				"repository": map[string]interface{}{
					"pullRequests": connection(nil, false,
						map[string]interface{}{
							"number":        float64(1),
							"timelineItems": connection(nil, false, map[string]interface{}{"id": "a0"}),
						},
					),
				},
			}
		})

		cursors := githubgql.CursorTree{
			"c2": {
				Path: []string{"repository", "pullRequests"},
				Next: githubgql.CursorTree{"c3": githubgql.Path("timelineItems")},
			},
		}

		data, err := srv.client().Query(context.Background(), "query { x }", nil, cursors)
		require.NoError(t, err)
		assert.Equal(t, 1, srv.requests)
		assertNoPageInfo(t, data)
	})

	t.Run("nested cursors resolve only on the final page's elements", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			if vars["c2"] != "P1" {
				return map[string]interface{}{
					"repository": map[string]interface{}{
						"pullRequests": connection("P1", true,
							map[string]interface{}{
								"number":        float64(1),
								"timelineItems": connection("T0", true, map[string]interface{}{"id": "a0"}),
							},
						),
					},
				}
			}

			timeline := connection("T1", true, map[string]interface{}{"id": "b0"})
			if vars["c3"] == "T1" {
				timeline = connection(nil, false, map[string]interface{}{"id": "b1"})
			}

			return map[string]interface{}{
				"repository": map[string]interface{}{
					"pullRequests": connection(nil, false,
						map[string]interface{}{"number": float64(2), "timelineItems": timeline},
					),
				},
			}
		})

		cursors := githubgql.CursorTree{
			"c2": {
				Path: []string{"repository", "pullRequests"},
				Next: githubgql.CursorTree{"c3": githubgql.Path("timelineItems")},
			},
		}

		data, err := srv.client().Query(context.Background(), "query { x }", nil, cursors)
		require.NoError(t, err)
		assert.Equal(t, 4, srv.requests)

		prs := data["repository"].(map[string]interface{})["pullRequests"].(map[string]interface{})
		assert.NotContains(t, prs, "pageInfo")

		nodes := prs["nodes"].([]interface{})
		require.Len(t, nodes, 2)

		// Only the elements of the page that closed the outer connection get
		// their nested connections resolved; earlier pages' elements keep
		// theirs as fetched.
		firstTimeline := nodes[0].(map[string]interface{})["timelineItems"].(map[string]interface{})
		assert.Contains(t, firstTimeline, "pageInfo")
		assert.Equal(t, []interface{}{map[string]interface{}{"id": "a0"}}, firstTimeline["nodes"])

		secondTimeline := nodes[1].(map[string]interface{})["timelineItems"].(map[string]interface{})
		assert.NotContains(t, secondTimeline, "pageInfo")
		assert.Equal(t, []interface{}{
			map[string]interface{}{"id": "b0"},
			map[string]interface{}{"id": "b1"},
		}, secondTimeline["nodes"])
	})

	t.Run("graphql errors abort depagination", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{"data":null,"errors":[{"message":"field missing"}]}`))
		}))
		defer server.Close()

		ghClient := client.New(&githubgql.Config{Endpoint: server.URL, Token: "test-token"})

		cursors := githubgql.CursorTree{"cursor": githubgql.Path("repository", "issues")}

		_, err := ghClient.Query(context.Background(), "query { x }", nil, cursors)
		require.Error(t, err)

		gqlErr := &githubgql.GraphQLError{}
		require.ErrorAs(t, err, &gqlErr)
	})

	t.Run("invalid cursor node", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			return map[string]interface{}{}
		})

		cursors := githubgql.CursorTree{"cursor": {}}

		_, err := srv.client().Query(context.Background(), "query { x }", nil, cursors)
		require.ErrorIs(t, err, githubgql.ErrInvalidCursorTree)
	})
}

func TestClient_Query_ShapeErrors(t *testing.T) {
	t.Parallel()
	t.Run("missing pageInfo", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			return map[string]interface{}{
				"repository": map[string]interface{}{
					"issues": map[string]interface{}{"nodes": []interface{}{}},
				},
			}
		})

		cursors := githubgql.CursorTree{"cursor": githubgql.Path("repository", "issues")}

		_, err := srv.client().Query(context.Background(), "query { x }", nil, cursors)
		require.Error(t, err)

		shapeErr := &githubgql.ShapeError{}
		require.ErrorAs(t, err, &shapeErr)
		assert.Equal(t, "repository.issues", shapeErr.Path)
	})

	t.Run("missing path segment", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			return map[string]interface{}{"repository": map[string]interface{}{}}
		})

		cursors := githubgql.CursorTree{"cursor": githubgql.Path("repository", "issues")}

		_, err := srv.client().Query(context.Background(), "query { x }", nil, cursors)
		require.Error(t, err)

		shapeErr := &githubgql.ShapeError{}
		require.ErrorAs(t, err, &shapeErr)
	})

	t.Run("missing nodes on merge", func(t *testing.T) {
		t.Parallel()

		srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
			if vars["cursor"] == "A" {
				return map[string]interface{}{"items": connection(nil, false)}
			}

			// First page advertises another page but carries no nodes list to
			// merge onto.
			return map[string]interface{}{
				"items": map[string]interface{}{
					"pageInfo": map[string]interface{}{"endCursor": "A", "hasNextPage": true},
				},
			}
		})

		cursors := githubgql.CursorTree{"cursor": githubgql.Path("items")}

		_, err := srv.client().Query(context.Background(), "query { x }", nil, cursors)
		require.Error(t, err)

		shapeErr := &githubgql.ShapeError{}
		require.ErrorAs(t, err, &shapeErr)
		assert.Equal(t, "items", shapeErr.Path)
	})
}

func TestClient_Execute(t *testing.T) {
	t.Parallel()

	srv := newGraphQLServer(t, func(vars map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{
			"repository": map[string]interface{}{
				"issues": connection("A", true, map[string]interface{}{"number": float64(1)}),
			},
		}
	})

	data, err := srv.client().Execute(context.Background(), "query { x }", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, srv.requests)

	// Execute never follows cursors or touches the tree.
	issues := data["repository"].(map[string]interface{})["issues"].(map[string]interface{})
	assert.Contains(t, issues, "pageInfo")
	assert.Equal(t, 1, srv.requests)
}
