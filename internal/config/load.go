package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"sunbench/internal/benchmark"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Runtimes a workload can be executed in.
const (
	RuntimeLocal  = "local"
	RuntimeDocker = "docker"
)

// Settings is a typed snapshot of the loaded configuration.
type Settings struct {
	RepeatCount int
	Tests       []string
	SuiteDir    string
	Extension   string
	Engine      string
	Runtime     string
	DockerImage string
	Timeout     time.Duration
	Resolution  time.Duration
	Verbose     bool
	LogFile     string
	MetricsAddr string
	PushURL     string
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("repeat_count", benchmark.DefaultRepeatCount)
	viper.SetDefault("tests", []string{})
	viper.SetDefault("suite_dir", ".")
	viper.SetDefault("extension", ".js")
	viper.SetDefault("engine", "js")
	viper.SetDefault("runtime", RuntimeLocal)
	viper.SetDefault("docker.image", "node:22-alpine")
	viper.SetDefault("timeout", 0)
	viper.SetDefault("resolution", "1ms")
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")
	viper.SetDefault("metrics_addr", "")
	viper.SetDefault("push_url", "")
}

// Load initializes the configuration from .env, the config file and
// SUNBENCH_* environment variables. A missing default config file is not an
// error; a missing explicit one is.
func Load(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("sunbench")
	}

	viper.SetEnvPrefix("SUNBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return nil
}

// Current returns the active configuration.
func Current() Settings {
	return Settings{
		RepeatCount: viper.GetInt("repeat_count"),
		Tests:       testIDs(),
		SuiteDir:    viper.GetString("suite_dir"),
		Extension:   viper.GetString("extension"),
		Engine:      viper.GetString("engine"),
		Runtime:     viper.GetString("runtime"),
		DockerImage: viper.GetString("docker.image"),
		Timeout:     durationSetting("timeout"),
		Resolution:  durationSetting("resolution"),
		Verbose:     viper.GetBool("verbose"),
		LogFile:     viper.GetString("log_file"),
		MetricsAddr: viper.GetString("metrics_addr"),
		PushURL:     viper.GetString("push_url"),
	}
}

// TestList returns the configured test list, or the default suite when none
// is configured.
func (s Settings) TestList() []string {
	if len(s.Tests) == 0 {
		return benchmark.DefaultTests
	}
	return s.Tests
}

// testIDs reads the tests key. A single string, as given through the
// environment, may separate ids with commas, whitespace or both.
func testIDs() []string {
	var ids []string
	for _, v := range viper.GetStringSlice("tests") {
		ids = append(ids, strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})...)
	}
	return ids
}

// durationSetting reads a duration that may also be given as a bare number
// of seconds.
func durationSetting(key string) time.Duration {
	switch v := viper.Get(key).(type) {
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return time.Duration(viper.GetFloat64(key) * float64(time.Second))
	case string:
		if secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return viper.GetDuration(key)
}
