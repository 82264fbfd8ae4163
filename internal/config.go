package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/tuannm99/pagesim/internal/replacer"
)

// DefaultReference is used when neither a reference string nor a trace file is configured.
const DefaultReference = "1 2 4 2 1 5 4"

// DefaultPolicies is the sweep order used when the config names none.
var DefaultPolicies = []string{
	replacer.FIFOName,
	replacer.LRUName,
	replacer.SecondChanceName,
	replacer.NRUName,
}

var ErrInvalidConfig = errors.New("pagesim: invalid config")

type PageSimConfig struct {
	Policies       []string `mapstructure:"policies"`
	FrameSizes     []int    `mapstructure:"frame_sizes"`
	Reference      string   `mapstructure:"reference"`
	TraceFile      string   `mapstructure:"trace_file"`
	Seed           uint64   `mapstructure:"seed"`
	Parallelism    int      `mapstructure:"parallelism"`
	ReferenceReset int      `mapstructure:"reference_reset"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Metrics struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"metrics"`
}

// LoadConfig reads a YAML config file. An empty path yields the defaults.
// PAGESIM_* environment variables override both (PAGESIM_LOG_LEVEL, PAGESIM_FRAME_SIZES=3,5).
func LoadConfig(path string) (*PageSimConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PAGESIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg PageSimConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Reference == "" && cfg.TraceFile == "" {
		cfg.Reference = DefaultReference
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("policies", slices.Clone(DefaultPolicies))
	v.SetDefault("frame_sizes", []int{3, 5, 10})
	v.SetDefault("reference", "")
	v.SetDefault("trace_file", "")
	v.SetDefault("seed", 1)
	v.SetDefault("parallelism", 4)
	v.SetDefault("reference_reset", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", "")
}

func (c *PageSimConfig) Validate() error {
	if len(c.Policies) == 0 {
		return fmt.Errorf("%w: no policies", ErrInvalidConfig)
	}
	for _, p := range c.Policies {
		if _, err := replacer.Canonical(p); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	if len(c.FrameSizes) == 0 {
		return fmt.Errorf("%w: no frame sizes", ErrInvalidConfig)
	}
	for _, n := range c.FrameSizes {
		if n < 1 {
			return fmt.Errorf("%w: frame size %d", ErrInvalidConfig, n)
		}
	}

	if c.Parallelism < 0 {
		return fmt.Errorf("%w: parallelism %d", ErrInvalidConfig, c.Parallelism)
	}
	if c.ReferenceReset < 0 {
		return fmt.Errorf("%w: reference_reset %d", ErrInvalidConfig, c.ReferenceReset)
	}
	if c.Reference != "" && c.TraceFile != "" {
		return fmt.Errorf("%w: reference and trace_file are mutually exclusive", ErrInvalidConfig)
	}

	return nil
}

// LogLevel maps log.level to a slog level. Unknown names fall back to info
// and return an error the caller can log.
func (c *PageSimConfig) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q, using info", c.Log.Level)
	}
}
