package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cubelab/solfilter/domain"
)

// FilterUseCase orchestrates reading, labeling and reporting a batch of solutions
type FilterUseCase struct {
	service      domain.FilterService
	reader       domain.SolutionReader
	formatter    domain.FilterOutputFormatter
	configLoader domain.FilterConfigurationLoader
	output       domain.ReportWriter
	stdin        io.Reader
}

// NewFilterUseCase creates a new filter use case
func NewFilterUseCase(
	service domain.FilterService,
	reader domain.SolutionReader,
	formatter domain.FilterOutputFormatter,
	configLoader domain.FilterConfigurationLoader,
	output domain.ReportWriter,
	stdin io.Reader,
) *FilterUseCase {
	return &FilterUseCase{
		service:      service,
		reader:       reader,
		formatter:    formatter,
		configLoader: configLoader,
		output:       output,
		stdin:        stdin,
	}
}

// Execute performs the complete labeling workflow and writes the report
func (uc *FilterUseCase) Execute(ctx context.Context, req domain.FilterRequest) error {
	response, finalReq, err := uc.run(ctx, req)
	if err != nil {
		return err
	}

	formatter := uc.formatter
	if colorizable, ok := formatter.(domain.ColorizableFormatter); ok {
		formatter = colorizable.Colorized(finalReq.Color)
	}

	return uc.output.Write(finalReq.OutputWriter, finalReq.OutputPath, finalReq.OutputFormat, func(w io.Writer) error {
		return formatter.Write(response, finalReq.OutputFormat, w)
	})
}

// Label runs the workflow and returns the response without writing a report
func (uc *FilterUseCase) Label(ctx context.Context, req domain.FilterRequest) (*domain.FilterResponse, error) {
	response, _, err := uc.run(ctx, req)
	return response, err
}

func (uc *FilterUseCase) run(ctx context.Context, req domain.FilterRequest) (*domain.FilterResponse, domain.FilterRequest, error) {
	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return nil, req, err
	}

	if err := uc.validateRequest(finalReq); err != nil {
		return nil, finalReq, domain.NewInvalidInputError("invalid request", err)
	}

	if len(finalReq.Solutions) == 0 {
		solutions, err := uc.reader.ReadSolutions(ctx, finalReq.Paths, uc.stdin)
		if err != nil {
			return nil, finalReq, err
		}
		if len(solutions) == 0 {
			return nil, finalReq, domain.NewInvalidInputError("no solutions found in the specified paths", nil)
		}
		finalReq.Solutions = solutions
	}

	response, err := uc.service.Label(ctx, finalReq)
	if err != nil {
		return nil, finalReq, err
	}
	return response, finalReq, nil
}

// validateRequest validates the filter request
func (uc *FilterUseCase) validateRequest(req domain.FilterRequest) error {
	if len(req.Solutions) == 0 && len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}
	if req.Top < 0 {
		return fmt.Errorf("top cannot be negative")
	}
	if _, err := domain.ParseOutputFormat(string(req.OutputFormat)); err != nil {
		return err
	}
	return nil
}

// loadAndMergeConfig loads configuration from file and merges with request
func (uc *FilterUseCase) loadAndMergeConfig(req domain.FilterRequest) (domain.FilterRequest, error) {
	if uc.configLoader == nil {
		return req, nil
	}

	var configReq *domain.FilterRequest
	if req.ConfigPath != "" {
		loaded, err := uc.configLoader.LoadConfig(req.ConfigPath)
		if err != nil {
			return req, domain.NewConfigError(fmt.Sprintf("failed to load config from %s", req.ConfigPath), err)
		}
		configReq = loaded
	} else {
		configReq = uc.configLoader.LoadDefaultConfig()
	}

	if configReq == nil {
		return req, nil
	}
	// Explicit request values take precedence
	return *uc.configLoader.MergeConfig(configReq, &req), nil
}

// FilterUseCaseBuilder provides a builder pattern for creating FilterUseCase
type FilterUseCaseBuilder struct {
	service      domain.FilterService
	reader       domain.SolutionReader
	formatter    domain.FilterOutputFormatter
	configLoader domain.FilterConfigurationLoader
	output       domain.ReportWriter
	stdin        io.Reader
}

// NewFilterUseCaseBuilder creates a new builder
func NewFilterUseCaseBuilder() *FilterUseCaseBuilder {
	return &FilterUseCaseBuilder{}
}

// WithService sets the filter service
func (b *FilterUseCaseBuilder) WithService(service domain.FilterService) *FilterUseCaseBuilder {
	b.service = service
	return b
}

// WithSolutionReader sets the solution reader
func (b *FilterUseCaseBuilder) WithSolutionReader(reader domain.SolutionReader) *FilterUseCaseBuilder {
	b.reader = reader
	return b
}

// WithFormatter sets the output formatter
func (b *FilterUseCaseBuilder) WithFormatter(formatter domain.FilterOutputFormatter) *FilterUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader
func (b *FilterUseCaseBuilder) WithConfigLoader(configLoader domain.FilterConfigurationLoader) *FilterUseCaseBuilder {
	b.configLoader = configLoader
	return b
}

// WithOutputWriter sets the report writer
func (b *FilterUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *FilterUseCaseBuilder {
	b.output = output
	return b
}

// WithStdin sets the stream read for the "-" path
func (b *FilterUseCaseBuilder) WithStdin(stdin io.Reader) *FilterUseCaseBuilder {
	b.stdin = stdin
	return b
}

// Build creates the FilterUseCase with the configured dependencies
func (b *FilterUseCaseBuilder) Build() (*FilterUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("filter service is required")
	}
	if b.reader == nil {
		return nil, fmt.Errorf("solution reader is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}
	if b.output == nil {
		return nil, fmt.Errorf("report writer is required")
	}

	stdin := b.stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	// configLoader is optional; nil skips config loading
	return NewFilterUseCase(b.service, b.reader, b.formatter, b.configLoader, b.output, stdin), nil
}
