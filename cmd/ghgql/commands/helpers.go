package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/actions-automation/githubgql/internal/constants"
	"github.com/actions-automation/githubgql/pkg/githubgql"
	"github.com/actions-automation/githubgql/pkg/gqlclient"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Static errors for err113 compliance.
var (
	ErrInvalidVarFlag = errors.New("variable flag must be key=value")
	ErrNoQuerySource  = errors.New("provide a query file argument or pipe the query on stdin")
)

// createClient builds a client from the current viper configuration.
func createClient() (githubgql.Client, error) {
	config := &githubgql.Config{
		Endpoint:   viper.GetString("endpoint"),
		Token:      viper.GetString("token"),
		Accept:     viper.GetString("accept"),
		MaxRetries: viper.GetInt("max-retries"),
	}

	if viper.GetBool("verbose") {
		config.Logger = &stderrLogger{}
		config.Debug = true
	}

	return gqlclient.New(config)
}

// parseVarFlags converts repeated --var key=value flags into bindings.
// Values that parse as JSON are bound typed; everything else is a string.
func parseVarFlags(pairs []string) (githubgql.Vars, error) {
	vars := githubgql.Vars{}

	for _, pair := range pairs {
		key, rawValue, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVarFlag, pair)
		}

		var value interface{}
		if err := json.Unmarshal([]byte(rawValue), &value); err != nil {
			value = rawValue
		}

		vars[key] = value
	}

	return vars, nil
}

// loadCursorTree reads a YAML cursor-tree file. Bare key sequences are
// accepted as shorthand for leaf cursors.
func loadCursorTree(path string) (githubgql.CursorTree, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is an explicit CLI argument
	if err != nil {
		return nil, fmt.Errorf("reading cursor file: %w", err)
	}

	var cursors githubgql.CursorTree
	if err := yaml.Unmarshal(data, &cursors); err != nil {
		return nil, fmt.Errorf("parsing cursor file: %w", err)
	}

	return cursors, nil
}

// writeResult renders a result document in the configured output format.
func writeResult(result interface{}) error {
	switch viper.GetString("output") {
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		return encoder.Encode(result)
	default:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(result)
	}
}

// stderrLogger implements githubgql.Logger for --verbose output.
type stderrLogger struct{}

func (l *stderrLogger) log(level, msg string, fields map[string]interface{}) {
	fmt.Fprintf(os.Stderr, "%s: %s", level, msg)

	for key, value := range fields {
		fmt.Fprintf(os.Stderr, " %s=%v", key, value)
	}

	fmt.Fprintln(os.Stderr)
}

func (l *stderrLogger) Debug(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *stderrLogger) Info(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *stderrLogger) Warn(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *stderrLogger) Error(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}
