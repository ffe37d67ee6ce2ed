// Package githubgql provides types, interfaces, and errors for executing
// GraphQL queries against the GitHub API with transparent depagination.
//
// # Overview
//
// The githubgql package defines the public surface: the Client interface,
// the Config used to build one, the cursor-tree types that describe which
// response paths are paginated, and the typed errors the client returns. A
// concrete implementation is provided by the gqlclient package, which wires
// transport, authentication, and the depagination engine. Most consumers
// should import gqlclient to construct a client.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//	  "os"
//
//	  "github.com/actions-automation/githubgql/pkg/githubgql"
//	  "github.com/actions-automation/githubgql/pkg/gqlclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := gqlclient.NewWithToken(os.Getenv("GITHUB_TOKEN"))
//	  if err != nil { log.Fatal(err) }
//
//	  data, err := cli.Execute(ctx, `query { viewer { login } }`, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = data
//	}
//
// # Depagination
//
// A cursor tree names each cursor variable in the query and the response
// path of the connection it pages through. Nested trees describe
// connections that live inside the elements of an outer connection:
//
//	query := `
//	query($owner:String!, $name:String!, $cursor1:String, $cursor2:String, $cursor3:String) {
//	  repository(owner:$owner, name:$name) {
//	    issues(first:100, after:$cursor1) {
//	      pageInfo { endCursor hasNextPage }
//	      nodes { number }
//	    }
//	    pullRequests(first:100, after:$cursor2) {
//	      pageInfo { endCursor hasNextPage }
//	      nodes {
//	        timelineItems(first:100, after:$cursor3) {
//	          pageInfo { endCursor hasNextPage }
//	          nodes { __typename }
//	        }
//	      }
//	    }
//	  }
//	}`
//
//	cursors := githubgql.CursorTree{
//	  "cursor1": githubgql.Path("repository", "issues"),
//	  "cursor2": {
//	    Path: []string{"repository", "pullRequests"},
//	    Next: githubgql.CursorTree{
//	      "cursor3": githubgql.Path("timelineItems"),
//	    },
//	  },
//	}
//
//	data, err := cli.Query(ctx, query, githubgql.Vars{"owner": "org", "name": "repo"}, cursors)
//
// The query must declare every cursor variable as an optional String, pass
// it as `after:` on the connection it pages, and select
// `pageInfo { endCursor hasNextPage }` plus `nodes` on that connection.
// Fetch as many objects per page as the endpoint permits (first:100).
//
// The results of depagination are merged: each named connection's `nodes`
// holds every element across all of its pages, in order, and `pageInfo` is
// removed from the result.
//
// # Errors
//
// A call either returns a fully merged data tree or exactly one error:
// ErrMissingToken when no token is configured, HTTPError for a non-200
// reply (carrying the full reply), GraphQLError for a 200 reply with an
// errors array, or ShapeError when the response does not contain a
// connection where the cursor tree says one should live. Helpers such as
// IsRateLimited and IsUnauthorized branch on common HTTP cases.
package githubgql
