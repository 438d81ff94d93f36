// Package config loads the YAML run file that describes which analyzer
// chains the index command runs.
package config

import (
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/jsphweid/polyindex/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Chain struct {
	Name string `yaml:"name" validate:"required"`
	// Frequency also writes the aggregated token counts of the chain
	Frequency bool         `yaml:"frequency,omitempty"`
	Steps     []model.Step `yaml:"steps" validate:"required,min=1,dive"`
}

type RunConfig struct {
	MediaDir  string  `yaml:"media,omitempty"`
	IndexDir  string  `yaml:"out,omitempty"`
	Workers   int     `yaml:"workers,omitempty" validate:"gte=0"`
	MaxPieces int     `yaml:"max_pieces,omitempty" validate:"gte=0"`
	Chains    []Chain `yaml:"chains" validate:"required,min=1,unique=Name,dive"`
}

var validate = validator.New()

func Default() RunConfig {
	return RunConfig{
		Chains: []Chain{
			{Name: "noterest", Steps: []model.Step{{Analyzer: "noterest"}}},
			{
				Name:      "vertical",
				Frequency: true,
				Steps:     []model.Step{{Analyzer: "noterest"}, {Analyzer: "vertical_interval"}},
			},
		},
	}
}

func Parse(data []byte) (*RunConfig, error) {
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse the run file")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid run file")
	}
	return &cfg, nil
}

func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the run file")
	}
	return Parse(data)
}

func Write(path string, cfg RunConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create the config directory")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
