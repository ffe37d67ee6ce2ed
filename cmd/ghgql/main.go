package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/actions-automation/githubgql/cmd/ghgql/commands"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ghgql",
	Short: "GitHub GraphQL CLI with transparent depagination",
	Long: `A command-line interface for the GitHub GraphQL API.

Queries are executed with retry/backoff, and paginated connections named
by a cursor-tree file are followed until exhausted, producing one merged
result document.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.ghgql/config.yml)")
	rootCmd.PersistentFlags().StringP("endpoint", "e", "", "GraphQL endpoint URL")
	rootCmd.PersistentFlags().StringP("token", "t", "", "GitHub access token")
	rootCmd.PersistentFlags().String("accept", "", "Accept header for preview schema features")
	rootCmd.PersistentFlags().String("output", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().Int("max-retries", 0, "retry budget for transient failures (0 = default)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("accept", rootCmd.PersistentFlags().Lookup("accept"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("max-retries", rootCmd.PersistentFlags().Lookup("max-retries"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewRateLimitCommand())
	rootCmd.AddCommand(commands.NewTokenCommand())
}

func initConfig() {
	// Pick up GITHUB_TOKEN from a project dotenv when present.
	_ = godotenv.Load()

	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.ghgql/config.yml
		viper.AddConfigPath(filepath.Join(home, ".ghgql"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("GHGQL")
	viper.AutomaticEnv()
	_ = viper.BindEnv("token", "GHGQL_TOKEN", "GITHUB_TOKEN", "GH_TOKEN")
	_ = viper.BindEnv("endpoint", "GHGQL_ENDPOINT", "GITHUB_GRAPHQL_URL")

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
