package commands

import (
	"fmt"
	"os"

	"github.com/actions-automation/githubgql/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const rateLimitQuery = `
query {
  viewer { login }
  rateLimit {
    limit
    cost
    remaining
    used
    resetAt
  }
}`

// NewRateLimitCommand creates the ratelimit command.
func NewRateLimitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Show the GraphQL API rate limit for the configured token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			data, err := client.Execute(cmd.Context(), rateLimitQuery, nil)
			if err != nil {
				return fmt.Errorf("fetching rate limit: %w", err)
			}

			output := viper.GetString("output")
			if output == constants.FormatJSON || output == constants.FormatYAML {
				return writeResult(data)
			}

			viewer, _ := data["viewer"].(map[string]interface{})
			rateLimit, _ := data["rateLimit"].(map[string]interface{})

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Property", "Value")
			_ = table.Append("Viewer", stringField(viewer, "login"))
			_ = table.Append("Limit", stringField(rateLimit, "limit"))
			_ = table.Append("Cost", stringField(rateLimit, "cost"))
			_ = table.Append("Remaining", stringField(rateLimit, "remaining"))
			_ = table.Append("Used", stringField(rateLimit, "used"))
			_ = table.Append("Resets At", stringField(rateLimit, "resetAt"))

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}

func stringField(obj map[string]interface{}, key string) string {
	value, ok := obj[key]
	if !ok || value == nil {
		return constants.NotAvailable
	}

	return fmt.Sprintf("%v", value)
}
