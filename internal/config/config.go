package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"gan-video-studio/internal/core"
)

// Config holds application settings. Zero values are filled from DefaultConfig
// when loading a file.
type Config struct {
	// ModelPath points at an exported generator network (ONNX, TF pb, ...).
	// Empty selects the built-in OpenCV stylization filter.
	ModelPath string `toml:"model_path"`
	// ModelInputSize is the square side the generator was trained on
	ModelInputSize int `toml:"model_input_size"`
	// Backend and Target select the OpenCV DNN backend/target by name
	// ("default", "opencv", "cuda", ... / "cpu", "opencl", "cuda", ...)
	Backend string `toml:"backend"`
	Target  string `toml:"target"`

	// OutputPath is the single recording artifact
	OutputPath string `toml:"output_path"`
	// Codec is a four character code understood by OpenCV's VideoWriter
	Codec string `toml:"codec"`
	// FlushFinalFrame also records the last transformed frame
	FlushFinalFrame bool `toml:"flush_final_frame"`

	// TickIntervalMS is the preview cadence, independent of the video fps
	TickIntervalMS int `toml:"tick_interval_ms"`
	PreviewWidth   int `toml:"preview_width"`
	PreviewHeight  int `toml:"preview_height"`

	Debug bool `toml:"debug"`
}

// DefaultConfig returns the settings of the desktop demo
func DefaultConfig() Config {
	return Config{
		ModelInputSize: 256,
		Backend:        "default",
		Target:         "cpu",
		OutputPath:     "output.avi",
		Codec:          "DIVX",
		TickIntervalMS: 33,
		PreviewWidth:   600,
		PreviewHeight:  600,
	}
}

// Load reads a TOML file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return cfg, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and required values
func (c Config) Validate() error {
	var errs []error
	if c.ModelInputSize <= 0 {
		errs = append(errs, fmt.Errorf("model_input_size must be positive, got %d", c.ModelInputSize))
	}
	if c.OutputPath == "" {
		errs = append(errs, errors.New("output_path must not be empty"))
	}
	if len(c.Codec) != 4 {
		errs = append(errs, fmt.Errorf("codec must be a four character code, got %q", c.Codec))
	}
	if c.TickIntervalMS < 0 {
		errs = append(errs, fmt.Errorf("tick_interval_ms must not be negative, got %d", c.TickIntervalMS))
	}
	if c.PreviewWidth <= 0 || c.PreviewHeight <= 0 {
		errs = append(errs, fmt.Errorf("preview size must be positive, got %dx%d", c.PreviewWidth, c.PreviewHeight))
	}
	return errors.Join(errs...)
}

// TickInterval returns the preview cadence as a duration
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// PipelineOptions maps the config onto controller options
func (c Config) PipelineOptions() core.Options {
	opts := core.DefaultOptions()
	opts.TickInterval = c.TickInterval()
	opts.OutputPath = c.OutputPath
	opts.Codec = c.Codec
	opts.FlushFinalFrame = c.FlushFinalFrame
	return opts
}
