package app

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/pimctl/pkg/constants"
	"github.com/agentstation/pimctl/pkg/errors"
)

// envPrefix namespaces pimctl settings in the environment (PIMCTL_LOOKUP_MODE).
const envPrefix = "PIMCTL"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Automation bridge
	OSAScriptPath  string
	BridgeTimeout  time.Duration
	MaxOutputBytes int64

	// Contact store
	AddressBookDir string
	LookupMode     string
	VerifyWrites   bool

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	// logLevelFromFlag is set when --log-level was given.
	logLevelFromFlag bool
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (configFile, or ~/.pimctl.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	// The logging keys also honor the unprefixed LOG_* variables.
	for _, key := range []string{"log_level", "log_format", "log_output"} {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(key), strings.ToUpper(key)); err != nil {
			return nil, errors.NewConfigError("env", "failed to bind "+key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing default config file is fine; an explicit one must exist.
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("file", "failed to read config", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		OSAScriptPath:  v.GetString("osascript_path"),
		BridgeTimeout:  v.GetDuration("bridge_timeout"),
		MaxOutputBytes: v.GetInt64("max_output_bytes"),

		AddressBookDir: v.GetString("addressbook_dir"),
		LookupMode:     strings.ToLower(v.GetString("lookup_mode")),
		VerifyWrites:   v.GetBool("verify_writes"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("format", "json")
	v.SetDefault("osascript_path", constants.OSAScriptBinary)
	v.SetDefault("bridge_timeout", constants.BridgeTimeout)
	v.SetDefault("max_output_bytes", constants.MaxBridgeOutputBytes)
	v.SetDefault("addressbook_dir", constants.AddressBookDir)
	v.SetDefault("lookup_mode", constants.LookupByID)
	v.SetDefault("verify_writes", true)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate checks the values that cannot be corrected silently.
func (c *Config) Validate() error {
	switch c.LookupMode {
	case constants.LookupByID, constants.LookupByName:
	default:
		return errors.NewConfigError("lookup_mode", fmt.Sprintf("must be %q or %q, got %q",
			constants.LookupByID, constants.LookupByName, c.LookupMode), nil)
	}
	if c.BridgeTimeout <= 0 || c.BridgeTimeout > constants.MaxBridgeTimeout {
		return errors.NewConfigError("bridge_timeout", fmt.Sprintf("must be between 0 and %s, got %s",
			constants.MaxBridgeTimeout, c.BridgeTimeout), nil)
	}
	if c.MaxOutputBytes <= 0 {
		return errors.NewConfigError("max_output_bytes", "must be positive", nil)
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
		c.logLevelFromFlag = true
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first because godotenv never overrides a variable
// that is already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
