package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Decode error policies.
const (
	DecodeWarn = "warn"
	DecodeFail = "fail"
)

// LevelQuiet disables logging entirely.
const LevelQuiet = "quiet"

// Config holds the full application configuration.
type Config struct {
	Input        string          `yaml:"input" mapstructure:"input"`
	Output       string          `yaml:"output" mapstructure:"output"`
	Header       bool            `yaml:"header" mapstructure:"header"`
	CRLF         bool            `yaml:"crlf" mapstructure:"crlf"`
	DecodeErrors string          `yaml:"decode_errors" mapstructure:"decode_errors"`
	TaskDir      string          `yaml:"task_dir" mapstructure:"task_dir"`
	Reference    ReferenceConfig `yaml:"reference" mapstructure:"reference"`
	Log          LogConfig       `yaml:"log" mapstructure:"log"`
}

// ReferenceConfig locates the country reference table.
type ReferenceConfig struct {
	File     string `yaml:"file" mapstructure:"file"`
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
}

// LogConfig configures logging.
type LogConfig struct {
	File   string `yaml:"file" mapstructure:"file"`
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"input":         "input",
	"output":        "output",
	"header":        "header",
	"crlf":          "crlf",
	"decode-errors": "decode_errors",
	"task-dir":      "task_dir",
	"reference":     "reference.file",
	"log-file":      "log.file",
	"log-level":     "log.level",
	"log-format":    "log.format",
}

// Load reads configuration from defaults, an optional config.yaml, the
// environment and finally flags. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GADM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	taskDir := defaultTaskDir()
	v.SetDefault("input", "-")
	v.SetDefault("output", "-")
	v.SetDefault("header", true)
	v.SetDefault("crlf", false)
	v.SetDefault("decode_errors", DecodeWarn)
	v.SetDefault("task_dir", taskDir)
	v.SetDefault("reference.file", "")
	v.SetDefault("reference.encoding", "utf-8")
	v.SetDefault("log.file", defaultLogFile(time.Now()))
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "json")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, eris.Wrapf(err, "config: bind flag %s", name)
				}
			}
		}
		if noHeader, err := flags.GetBool("no-header"); err == nil && noHeader {
			v.Set("header", false)
		}
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.Reference.File == "" {
		cfg.Reference.File = filepath.Join(cfg.TaskDir, "countries.csv")
	}

	return &cfg, nil
}

// Validate checks option values that Load can not type-check.
func (c *Config) Validate() error {
	switch c.DecodeErrors {
	case DecodeWarn, DecodeFail:
	default:
		return eris.Errorf("config: invalid decode_errors %q (want %s or %s)", c.DecodeErrors, DecodeWarn, DecodeFail)
	}
	if !strings.EqualFold(c.Log.Level, LevelQuiet) {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return eris.Wrapf(err, "config: invalid log level %q", c.Log.Level)
		}
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return eris.Errorf("config: invalid log format %q", c.Log.Format)
	}
	return nil
}

// defaultTaskDir is the directory holding the running executable, where the
// reference table ships.
func defaultTaskDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// defaultLogFile returns ~/.gqc/log/<UTC timestamp>.log, or stderr when the
// home directory is unknown.
func defaultLogFile(now time.Time) string {
	home, err := homedir.Dir()
	if err != nil {
		return "stderr"
	}
	return filepath.Join(home, ".gqc", "log", now.UTC().Format("20060102T150405")+".log")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	if strings.EqualFold(cfg.Level, LevelQuiet) {
		zap.ReplaceGlobals(zap.NewNop())
		return nil
	}

	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	if cfg.File != "" {
		if cfg.File != "stderr" && cfg.File != "stdout" {
			if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
				return eris.Wrap(err, "config: create log directory")
			}
		}
		zapCfg.OutputPaths = []string{cfg.File}
	}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
