package core

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	defaultHost = "127.0.0.1"
	defaultPort = 8080
	// Width of the caption column in the images table.
	maxCaptionColumnLength = 100
)

type Database struct {
	// Endpoint is used when a connect request leaves the endpoint blank.
	Endpoint string `yaml:"endpoint" env:"IMAGEREPO_DATABASE_ENDPOINT"`
	Username string `yaml:"username" env:"IMAGEREPO_DATABASE_USERNAME"`
}

type Batch struct {
	// AbortOnError stops a folder insert at the first failing entry instead of
	// attempting every entry and collecting the failures.
	AbortOnError bool `yaml:"abortOnError" env:"IMAGEREPO_BATCH_ABORT_ON_ERROR"`
}

type ServiceConfig struct {
	// Host is the interface the HTTP server binds to. The server reads files
	// from its own disk on request, so it stays on loopback unless set.
	Host             string   `yaml:"host" env:"IMAGEREPO_HOST"`
	Port             int      `yaml:"port" env:"IMAGEREPO_PORT"`
	Database         Database `yaml:"database"`
	Batch            Batch    `yaml:"batch"`
	CaptionMaxLength int      `yaml:"captionMaxLength" env:"IMAGEREPO_CAPTION_MAX_LENGTH"`
}

// LoadConfig loads configuration from the specified YAML file. Environment
// variables override values from the file.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Parse YAML
	var config ServiceConfig
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return finalizeConfig(&config)
}

// LoadConfigFromEnv builds a configuration from defaults and environment
// variables only.
func LoadConfigFromEnv() (*ServiceConfig, error) {
	return finalizeConfig(&ServiceConfig{})
}

func finalizeConfig(config *ServiceConfig) (*ServiceConfig, error) {
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	applyDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func applyDefaults(config *ServiceConfig) {
	if config.Host == "" {
		config.Host = defaultHost
	}
	if config.Port == 0 {
		config.Port = defaultPort
	}
	if config.CaptionMaxLength == 0 {
		config.CaptionMaxLength = maxCaptionColumnLength
	}
}

func validateConfig(config *ServiceConfig) error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d out of range", config.Port)
	}
	if config.CaptionMaxLength < 1 || config.CaptionMaxLength > maxCaptionColumnLength {
		return fmt.Errorf("captionMaxLength must be between 1 and %d, got %d", maxCaptionColumnLength, config.CaptionMaxLength)
	}
	return nil
}

// ListenAddress is the host:port the HTTP server listens on.
func (config *ServiceConfig) ListenAddress() string {
	return net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
}
