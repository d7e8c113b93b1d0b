// Package config loads the attestlog service configuration from a YAML
// file. Everything has a working default so `attestlog serve` runs with no
// file at all.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	coreerrors "github.com/attestlog/attestlog/core/errors"
)

type Config struct {
	Listen     string `yaml:"listen"`
	DataDir    string `yaml:"data_dir"`
	SigningKey string `yaml:"signing_key"`
	PublicKey  string `yaml:"public_key"`
	SignerID   string `yaml:"signer_id"`
}

func Default() Config {
	return Config{
		Listen:  "127.0.0.1:8420",
		DataDir: "attestlog-data",
	}
}

// Load reads the YAML file at path, applying defaults for anything unset.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	config := Default()
	if strings.TrimSpace(path) == "" {
		return config, nil
	}
	// #nosec G304 -- config path is explicit operator input.
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, coreerrors.Wrap(
			fmt.Errorf("read config: %w", err),
			coreerrors.CategoryIOFailure,
			"config_read_failed",
			"check the config path",
		)
	}
	decoder := yaml.NewDecoder(strings.NewReader(string(raw)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, coreerrors.Wrap(
			fmt.Errorf("parse config: %w", err),
			coreerrors.CategoryInvalidInput,
			"config_invalid",
			"fix the YAML config file",
		)
	}
	if strings.TrimSpace(config.Listen) == "" {
		config.Listen = Default().Listen
	}
	if strings.TrimSpace(config.DataDir) == "" {
		config.DataDir = Default().DataDir
	}
	return config, nil
}
