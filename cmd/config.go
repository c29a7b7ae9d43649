package cmd

import (
	"os"

	"github.com/adrg/xdg"
	"github.com/hansbonini/gameidtools/pkg/common"
	"gopkg.in/yaml.v3"
)

// Config holds the optional per-user settings file. Command-line flags
// override everything in it.
type Config struct {
	Database     string `yaml:"database"`
	Delimiter    string `yaml:"delimiter"`
	PreferGameDB bool   `yaml:"prefer_gamedb"`
}

// loadConfig reads the user config from the XDG config directory. A missing
// file yields defaults; a malformed file is an error.
func loadConfig() (*Config, error) {
	cfg := &Config{Delimiter: "\t"}

	path, err := xdg.ConfigFile("gameidtools/config.yaml")
	if err != nil {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, common.FormatError(common.ErrFailedToReadConfig, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, common.FormatError(common.ErrFailedToParseConfig, err)
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = "\t"
	}
	return cfg, nil
}
