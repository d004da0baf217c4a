package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cubelab/solfilter/domain"
)

// categoryPatterns pairs a category with the message fragments that select it.
type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	patterns []categoryPatterns
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		patterns: initializeErrorPatterns(),
	}
}

// initializeErrorPatterns lists message fragments in match order
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{
			"timeout",
			"deadline",
			"context canceled",
			"cancelled",
			"operation timed out",
		}},
		{domain.ErrorCategoryConfig, []string{
			"config",
			"configuration",
			"invalid settings",
			".solfilter.toml",
			"toml",
			"yaml",
		}},
		{domain.ErrorCategoryInput, []string{
			"invalid input",
			"no files found",
			"no solutions",
			"file not found",
			"standard input",
			"cannot access",
			"permission denied",
			"batch too large",
		}},
		{domain.ErrorCategoryOutput, []string{
			"write",
			"output",
			"unsupported format",
			"cannot create",
			"report generation",
		}},
		{domain.ErrorCategoryProcessing, []string{
			"labeling failed",
			"malformed",
			"move",
			"process",
		}},
	}
}

// Categorize determines the category of an error. Domain error codes take
// precedence over message patterns.
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	if category, ok := categoryFromCode(err); ok {
		return ec.categorized(category, err)
	}

	errMsg := strings.ToLower(err.Error())
	for _, entry := range ec.patterns {
		if containsAnyPattern(errMsg, entry.patterns) {
			return ec.categorized(entry.category, err)
		}
	}

	return &domain.CategorizedError{
		Category: domain.ErrorCategoryUnknown,
		Message:  err.Error(),
		Original: err,
	}
}

func (ec *ErrorCategorizerImpl) categorized(category domain.ErrorCategory, err error) *domain.CategorizedError {
	return &domain.CategorizedError{
		Category: category,
		Message:  ec.getCategoryMessage(category),
		Original: err,
	}
}

func categoryFromCode(err error) (domain.ErrorCategory, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrorCategoryTimeout, true
	}

	var domainErr domain.DomainError
	if !errors.As(err, &domainErr) {
		return "", false
	}
	switch domainErr.Code {
	case domain.ErrCodeInvalidInput, domain.ErrCodeFileNotFound:
		return domain.ErrorCategoryInput, true
	case domain.ErrCodeConfigError:
		return domain.ErrorCategoryConfig, true
	case domain.ErrCodeOutputError, domain.ErrCodeUnsupportedFormat:
		return domain.ErrorCategoryOutput, true
	case domain.ErrCodeAnalysisError:
		return domain.ErrorCategoryProcessing, true
	case domain.ErrCodeCancelled:
		return domain.ErrorCategoryTimeout, true
	}
	return "", false
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that the files exist and hold one solution per line",
			"Use - to read solutions from standard input",
			"Quote glob patterns such as 'solutions/**/*.txt' so the shell does not expand them",
		},
		domain.ErrorCategoryConfig: {
			"Verify configuration file format and values",
			"Try: solfilter init to generate a valid .solfilter.toml",
			"Check SOLFILTER_* environment variables for invalid values",
		},
		domain.ErrorCategoryTimeout: {
			"Label a smaller batch of solutions",
			"Increase server.request_timeout_seconds when using solfilter serve",
		},
		domain.ErrorCategoryOutput: {
			"Use --json, --yaml or --csv, or omit them for text output",
			"Ensure the output directory is writable",
		},
		domain.ErrorCategoryProcessing: {
			"Check for malformed moves in the solution files",
			"Run with --verbose for detailed pipeline logs",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
			"Report the issue if it persists",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

// getCategoryMessage returns a user-friendly message for an error category
func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryInput:      "Failed to read solutions",
		domain.ErrorCategoryConfig:     "Configuration file or settings error",
		domain.ErrorCategoryTimeout:    "Labeling was cancelled or timed out",
		domain.ErrorCategoryOutput:     "Failed to generate or write output",
		domain.ErrorCategoryProcessing: "Error while labeling solutions",
		domain.ErrorCategoryUnknown:    "An unexpected error occurred",
	}

	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An error occurred"
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
