package mcp

import (
	"go.uber.org/zap"

	"github.com/cubelab/solfilter/domain"
	"github.com/cubelab/solfilter/internal/config"
	"github.com/cubelab/solfilter/service"
)

// Dependencies is what the tool handlers share: the solution reader, the
// labeling service and the configuration the server started with.
type Dependencies struct {
	reader     domain.SolutionReader
	service    domain.FilterService
	logger     *zap.Logger
	config     *config.Config
	configPath string
}

// DependencyOption customizes Dependencies
type DependencyOption func(*Dependencies)

// WithLogger routes handler and service logs to logger
func WithLogger(logger *zap.Logger) DependencyOption {
	return func(d *Dependencies) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDependencies wires the production reader and service. A nil cfg uses
// the defaults.
func NewDependencies(cfg *config.Config, configPath string, opts ...DependencyOption) *Dependencies {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	d := &Dependencies{
		reader:     service.NewSolutionReader(),
		logger:     zap.NewNop(),
		config:     cfg,
		configPath: configPath,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.service = service.NewFilterService(d.logger.Named("service"), nil)
	return d
}

// Config returns the configuration snapshot.
func (d *Dependencies) Config() *config.Config {
	return d.config
}

// ConfigPath returns the file the configuration came from; empty when it
// was discovered or defaulted.
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// BaseFilterConfig is the starting point tool arguments overlay
func (d *Dependencies) BaseFilterConfig() domain.FilterConfig {
	return d.config.Filter.ToFilterConfig()
}
