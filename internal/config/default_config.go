package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/cubelab/solfilter/domain"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config template.
type DefaultConfigValues struct {
	domain.FilterConfig

	OutputFormat          string
	ServerAddr            string
	RequestTimeoutSeconds int
	MaxBatchSize          int
}

func newDefaultConfigValues() DefaultConfigValues {
	return DefaultConfigValues{
		FilterConfig:          domain.DefaultFilterConfig(),
		OutputFormat:          string(domain.OutputFormatText),
		ServerAddr:            domain.DefaultServerAddr,
		RequestTimeoutSeconds: domain.DefaultRequestTimeoutSeconds,
		MaxBatchSize:          domain.DefaultMaxBatchSize,
	}
}

// GenerateDefaultConfigTOML renders the default config template and returns
// the resulting TOML string.
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}

// LoadDefaultConfigFromTOML parses the embedded default config
func LoadDefaultConfigFromTOML() (*Config, error) {
	configTOML, err := GenerateDefaultConfigTOML()
	if err != nil {
		return nil, err
	}
	return NewTomlConfigLoader().Parse([]byte(configTOML))
}
