// Package config holds the externally supplied configuration surface:
// warehouse connection identities per environment, the source document
// location, the staging area, and the alert destination.
package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/starling-data/starling/pkg/mysql"
	"github.com/starling-data/starling/pkg/postgres"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWorkerCount = 8
	DefaultStagingDir  = "/tmp/starling"
)

type Connections struct {
	MySQL    []mysql.Config    `yaml:"mysql"`
	Postgres []postgres.Config `yaml:"postgres"`
}

type Environment struct {
	Connections Connections `yaml:"connections"`
}

type PipelineConfig struct {
	Name       string `yaml:"name"`
	Schedule   string `yaml:"schedule"`
	SourceURL  string `yaml:"source_url"`
	StagingDir string `yaml:"staging_dir"`
	Connection string `yaml:"connection"`
	AlertEmail string `yaml:"alert_email"`
	Workers    int    `yaml:"workers"`
}

type Config struct {
	DefaultEnvironmentName  string                 `yaml:"default_environment"`
	Environments            map[string]Environment `yaml:"environments"`
	Pipeline                PipelineConfig         `yaml:"pipeline"`
	SelectedEnvironmentName string                 `yaml:"-"`
	SelectedEnvironment     *Environment           `yaml:"-"`
}

func (c *Config) SelectEnvironment(name string) error {
	e, ok := c.Environments[name]
	if !ok {
		return errors.Errorf("environment '%s' not found in the configuration file", name)
	}

	c.SelectedEnvironment = &e
	c.SelectedEnvironmentName = name
	return nil
}

func LoadFromFile(fs afero.Fs, path string) (*Config, error) {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read the config file '%s'", path)
	}

	var config Config
	if err := yaml.Unmarshal(contents, &config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse the config file '%s'", path)
	}

	if config.Pipeline.Workers <= 0 {
		config.Pipeline.Workers = DefaultWorkerCount
	}
	if config.Pipeline.StagingDir == "" {
		config.Pipeline.StagingDir = DefaultStagingDir
	}

	if config.DefaultEnvironmentName == "" {
		config.DefaultEnvironmentName = "default"
	}

	if err := config.SelectEnvironment(config.DefaultEnvironmentName); err != nil {
		return nil, err
	}

	return &config, nil
}
