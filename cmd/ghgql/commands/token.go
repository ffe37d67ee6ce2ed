package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/actions-automation/githubgql/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored GitHub access token",
	}

	cmd.AddCommand(newTokenSetCommand())
	cmd.AddCommand(newTokenShowCommand())
	cmd.AddCommand(newTokenClearCommand())

	return cmd
}

func newTokenSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set [token]",
		Short: "Store a token in the config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string

			if len(args) == 1 {
				token = args[0]
			} else {
				fmt.Print("Token: ")

				byteToken, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				token = strings.TrimSpace(string(byteToken))

				fmt.Println()
			}

			if err := saveTokenConfig(token); err != nil {
				return err
			}

			fmt.Println("Token saved")

			return nil
		},
	}
}

func newTokenShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the configured token (masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := viper.GetString("token")
			if token == "" {
				fmt.Println("No token configured")

				return nil
			}

			fmt.Println(maskToken(token))

			return nil
		},
	}
}

func newTokenClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := saveTokenConfig(""); err != nil {
				return err
			}

			fmt.Println("Token cleared")

			return nil
		},
	}
}

// maskToken keeps the first four characters so related tokens can be told
// apart without exposing the credential.
func maskToken(token string) string {
	const visible = 4

	if len(token) <= visible {
		return constants.MaskedSecret
	}

	return token[:visible] + constants.MaskedSecret
}

// saveTokenConfig persists the token to the viper config file, creating
// ~/.ghgql/config.yml when no config file is in use yet.
func saveTokenConfig(token string) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".ghgql")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	config := map[string]string{}

	// configFile is built from the user home dir or an explicit flag
	// #nosec G304
	if data, err := os.ReadFile(configFile); err == nil {
		_ = yaml.Unmarshal(data, &config)
	}

	if token == "" {
		delete(config, "token")
	} else {
		config["token"] = token
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
