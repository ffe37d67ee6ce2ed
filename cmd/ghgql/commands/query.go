package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/actions-automation/githubgql/pkg/githubgql"
	"github.com/spf13/cobra"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var (
		varFlags    []string
		cursorsFile string
	)

	cmd := &cobra.Command{
		Use:   "query [file]",
		Short: "Execute a GraphQL query",
		Long: `Execute a GraphQL query read from a file or stdin.

When --cursors names a YAML cursor-tree file, every connection it
describes is depaginated: follow-up requests are issued until each
connection is exhausted, and the merged document is printed with the
pagination metadata removed.

Cursor-tree file example:

    cursor1: [repository, issues]
    cursor2:
      path: [repository, pullRequests]
      next:
        cursor3: [timelineItems]`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(args)
			if err != nil {
				return err
			}

			vars, err := parseVarFlags(varFlags)
			if err != nil {
				return err
			}

			cursors, err := loadCursors(cursorsFile)
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			data, err := client.Query(cmd.Context(), query, vars, cursors)
			if err != nil {
				return fmt.Errorf("executing query: %w", err)
			}

			return writeResult(data)
		},
	}

	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "query variable as key=value (repeatable; JSON values accepted)")
	cmd.Flags().StringVar(&cursorsFile, "cursors", "", "YAML cursor-tree file describing paginated connections")

	return cmd
}

func readQuery(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0]) // #nosec G304 -- path is an explicit CLI argument
		if err != nil {
			return "", fmt.Errorf("reading query file: %w", err)
		}

		return string(data), nil
	}

	stat, err := os.Stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return "", ErrNoQuerySource
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading query from stdin: %w", err)
	}

	return string(data), nil
}

func loadCursors(path string) (githubgql.CursorTree, error) {
	if path == "" {
		return nil, nil
	}

	return loadCursorTree(path)
}
