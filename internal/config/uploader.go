package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Upload contracts understood by the uploader
const (
	ContractResource = "resource"
	ContractEnvelope = "envelope"
)

// UploaderConfig configures the command-line upload client
type UploaderConfig struct {
	ServerURL   string        `yaml:"server_url"`
	OnDuplicate string        `yaml:"on_duplicate"`
	Contract    string        `yaml:"contract"`
	RequireCSRF bool          `yaml:"require_csrf"`
	CSRFToken   string        `yaml:"csrf_token"`
	CSRFHeader  string        `yaml:"csrf_header"`
	Timeout     time.Duration `yaml:"timeout"`
	LogLevel    string        `yaml:"log_level"`
}

// LoadUploader builds the uploader configuration from defaults, an optional
// YAML profile and UPLOADER_* environment variables, in that order.
// A missing profile file is not an error.
func LoadUploader(profilePath string) (*UploaderConfig, error) {
	cfg := &UploaderConfig{
		ServerURL:   "http://localhost:8080",
		OnDuplicate: "cancel",
		Contract:    ContractResource,
		RequireCSRF: true,
		CSRFHeader:  DefaultCSRFHeader,
		LogLevel:    "warn",
	}

	if profilePath != "" {
		if err := cfg.mergeProfile(profilePath); err != nil {
			return nil, err
		}
	}

	cfg.ServerURL = getEnv("UPLOADER_SERVER_URL", cfg.ServerURL)
	cfg.OnDuplicate = getEnv("UPLOADER_ON_DUPLICATE", cfg.OnDuplicate)
	cfg.Contract = getEnv("UPLOADER_CONTRACT", cfg.Contract)
	cfg.CSRFToken = getEnv("UPLOADER_CSRF_TOKEN", cfg.CSRFToken)
	cfg.CSRFHeader = getEnv("UPLOADER_CSRF_HEADER", cfg.CSRFHeader)
	cfg.LogLevel = getEnv("UPLOADER_LOG_LEVEL", cfg.LogLevel)

	if raw := os.Getenv("UPLOADER_REQUIRE_CSRF"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &ValidationError{Field: "uploader.require_csrf", Value: raw, Message: "must be a boolean"}
		}
		cfg.RequireCSRF = v
	}

	if raw := os.Getenv("UPLOADER_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, &ValidationError{Field: "uploader.timeout", Value: raw, Message: "must be a duration"}
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

func (c *UploaderConfig) mergeProfile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read uploader profile %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse uploader profile %s: %w", path, err)
	}
	return nil
}

// Validate checks the uploader configuration
func (c *UploaderConfig) Validate() error {
	var validationErrors ValidationErrors

	parsed, err := url.Parse(c.ServerURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "uploader.server_url",
			Value:   c.ServerURL,
			Message: "server URL must be an absolute http(s) URL",
		})
	}

	switch strings.ToLower(c.Contract) {
	case ContractResource, ContractEnvelope:
	default:
		validationErrors = append(validationErrors, ValidationError{
			Field:   "uploader.contract",
			Value:   c.Contract,
			Message: "contract must be one of: resource, envelope",
		})
	}

	if c.Timeout < 0 {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "uploader.timeout",
			Value:   c.Timeout,
			Message: "timeout cannot be negative",
		})
	}

	if validationErrors.Has() {
		return validationErrors
	}
	return nil
}
