package monitor

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Output levels, from quietest to loudest.
const (
	OutputNothing    = "nothing"
	OutputExperiment = "experiment"
	OutputDefault    = "default"
	OutputMaxState   = "max_state"
	OutputDebug      = "debug"
)

// Config drives one monitoring run.
type Config struct {
	PropertyFile string `yaml:"property"`
	TraceFile    string `yaml:"trace"`
	Reduce       bool   `yaml:"reduce"`
	OutputLevel  string `yaml:"output_level"`
	DotFile      string `yaml:"dot_file"`
}

func (c *Config) Validate() error {
	if c.PropertyFile == "" {
		return fmt.Errorf("config: property file is required")
	}
	if c.TraceFile == "" {
		return fmt.Errorf("config: trace file is required")
	}
	switch c.OutputLevel {
	case "":
		c.OutputLevel = OutputDefault
	case OutputNothing, OutputExperiment, OutputDefault, OutputMaxState, OutputDebug:
	default:
		return fmt.Errorf("config: unknown output level %q", c.OutputLevel)
	}
	return nil
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) logLevel() logrus.Level {
	switch c.OutputLevel {
	case OutputNothing:
		return logrus.ErrorLevel
	case OutputExperiment:
		return logrus.WarnLevel
	case OutputDebug:
		return logrus.DebugLevel
	default:
		// default and max_state
		return logrus.InfoLevel
	}
}
