package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Runtime settings of the tool. Everything can also be set from the command line.
type Config struct {
	Verbose      bool `yaml:"verbose"`       // debug logging (header dumps)
	Quiet        bool `yaml:"quiet"`         // no progress bar, warnings only
	GenerateDiff bool `yaml:"generate_diff"` // write a diff image after hiding
	KeepRestored bool `yaml:"keep_restored"` // keep the carrier with the payload bits cleared after extracting
	Strict       bool `yaml:"strict"`        // exit with a non-zero code when an operation fails

	// where outputs go; names are given without extension
	OutputDir     string `yaml:"output_dir"`
	MergedName    string `yaml:"merged_name"`
	DiffName      string `yaml:"diff_name"`
	RecoveredName string `yaml:"recovered_name"`
	RestoredName  string `yaml:"restored_name"`

	ProgressStep int `yaml:"progress_step"` // percent per progress mark, must divide 100
}

// Returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		OutputDir:     ".",
		MergedName:    "merged_image",
		DiffName:      "merged_image_diff",
		RecoveredName: "obr1_separated",
		RestoredName:  "obr2_separated",
		ProgressStep:  10,
	}
}

// Loads a YAML configuration on top of the defaults. An empty filename gives the defaults.
func Load(filename string) (*Config, error) {
	conf := Default()
	if filename == "" {
		return conf, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(conf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return conf, nil
}

// Saves the configuration as YAML
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

func (c *Config) Validate() error {
	names := map[string]string{
		"merged_name":    c.MergedName,
		"diff_name":      c.DiffName,
		"recovered_name": c.RecoveredName,
		"restored_name":  c.RestoredName,
	}
	for key, name := range names {
		if name == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}
	if c.ProgressStep <= 0 || c.ProgressStep > 100 || 100%c.ProgressStep != 0 {
		return fmt.Errorf("progress_step %d does not divide 100", c.ProgressStep)
	}
	return nil
}
