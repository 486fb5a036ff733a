package cli

import (
	"os"
	"strconv"
	"strings"
)

const (
	envCatalog   = "NOEXCEPT_CATALOG"
	envTerminate = "NOEXCEPT_TERMINATE"
	envOutput    = "NOEXCEPT_OUTPUT"

	defaultOutput = outputTable
)

// CLIConfig holds settings read from the environment. Flags override them.
type CLIConfig struct {
	// CatalogPath is the YAML code catalog loaded before every command.
	CatalogPath string
	// Terminate switches raises to print-and-exit.
	Terminate bool
	// Output is the default output format: table, yaml or json.
	Output string
}

// DefaultCLIConfig is the configuration read at startup.
var DefaultCLIConfig = LoadCLIConfig()

// LoadCLIConfig reads the CLI configuration from the environment. Invalid
// values fall back to defaults.
func LoadCLIConfig() CLIConfig {
	return CLIConfig{
		CatalogPath: strings.TrimSpace(os.Getenv(envCatalog)),
		Terminate:   getEnvBool(envTerminate, false),
		Output:      getEnvOutput(envOutput, defaultOutput),
	}
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvOutput(key, fallback string) string {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if !validOutput(value) {
		return fallback
	}
	return value
}
