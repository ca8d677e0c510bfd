package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings shared by every command.
type Config struct {
	Data   DataConfig
	Log    LogConfig
	Output OutputConfig

	// File is the config file that was read, empty when none was found.
	File string
}

// DataConfig locates the input files.
type DataConfig struct {
	NEOs       string `validate:"required"`
	Approaches string `validate:"required"`
}

// LogConfig controls the logger built in internal/logging.
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	JSON  bool
}

// OutputConfig controls result output.
type OutputConfig struct {
	Indent int `validate:"gte=0,lte=8"`
	// Limit caps the number of results printed to stdout; 0 disables the cap.
	Limit int `validate:"gte=0"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			NEOs:       "data/neos.csv",
			Approaches: "data/cad.json",
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Indent: 2,
			Limit:  10,
		},
	}
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"neofile":   "data.neos",
	"cadfile":   "data.approaches",
	"log-level": "log.level",
	"log-json":  "log.json",
}

// Load resolves the configuration from defaults, an optional config.yaml in
// configPath, NEO_* environment variables and flags, in increasing priority.
func Load(configPath string, flags *pflag.FlagSet) (Config, error) {
	// Start with default
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.SetEnvPrefix("NEO") // NEO_DATA_NEOS, NEO_LOG_LEVEL, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{"data.neos", "data.approaches", "log.level", "log.json", "output.indent", "output.limit"} {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return cfg, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if configPath != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else {
			cfg.File = v.ConfigFileUsed()
		}
	}

	// Override defaults if values exist
	if v.IsSet("data.neos") {
		cfg.Data.NEOs = v.GetString("data.neos")
	}
	if v.IsSet("data.approaches") {
		cfg.Data.Approaches = v.GetString("data.approaches")
	}
	if v.IsSet("log.level") {
		cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	}
	if v.IsSet("log.json") {
		cfg.Log.JSON = v.GetBool("log.json")
	}
	if v.IsSet("output.indent") {
		cfg.Output.Indent = v.GetInt("output.indent")
	}
	if v.IsSet("output.limit") {
		cfg.Output.Limit = v.GetInt("output.limit")
	}

	if err := validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func validate(cfg Config) error {
	err := validator.New().Struct(cfg)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		errs = append(errs, fmt.Errorf(
			"key=%q, value=\"%v\", failed %q validation",
			strings.ToLower(strings.TrimPrefix(e.Namespace(), "Config.")),
			e.Value(),
			e.ActualTag(),
		))
	}
	return errors.Join(errs...)
}
