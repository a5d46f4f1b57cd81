package config

import (
	"fmt"
	"os"
	"strings"

	"sunbench/internal/benchmark"

	"github.com/spf13/viper"
)

// ValidateConfig validates configuration values and returns an error if any are invalid.
// This function should be called after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string
	s := Current()

	// Zero and one are allowed: they run, but the statistics come out as NaN.
	if s.RepeatCount < 0 {
		errors = append(errors, fmt.Sprintf("repeat_count must not be negative, got: %d", s.RepeatCount))
	}

	switch s.Runtime {
	case RuntimeLocal:
	case RuntimeDocker:
		if s.DockerImage == "" {
			errors = append(errors, "docker.image is required when runtime is docker")
		}
	default:
		errors = append(errors, fmt.Sprintf("runtime must be %q or %q, got: %q", RuntimeLocal, RuntimeDocker, s.Runtime))
	}

	if strings.TrimSpace(s.Engine) == "" {
		errors = append(errors, "engine must not be empty")
	}

	if viper.IsSet("timeout") && s.Timeout < 0 {
		errors = append(errors, fmt.Sprintf("timeout must not be negative, got: %v", s.Timeout))
	}

	if s.Resolution <= 0 {
		errors = append(errors, fmt.Sprintf("resolution must be positive, got: %v", s.Resolution))
	}

	if info, err := os.Stat(s.SuiteDir); err != nil || !info.IsDir() {
		errors = append(errors, fmt.Sprintf("suite_dir must be an existing directory, got: %q", s.SuiteDir))
	}

	if _, err := benchmark.ParseIDs(s.TestList()); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
	}
	return nil
}
