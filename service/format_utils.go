package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cubelab/solfilter/domain"
	"github.com/cubelab/solfilter/internal/analyzer"
	"github.com/cubelab/solfilter/internal/constants"
)

// EncodeJSON returns an indented JSON string for the given value.
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", domain.NewOutputError("failed to marshal JSON", err)
	}
	return string(data), nil
}

// WriteJSON writes indented JSON for the given value to the writer.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// EncodeYAML returns a YAML string for the given value.
func EncodeYAML(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", domain.NewOutputError("failed to marshal YAML", err)
	}
	return string(data), nil
}

// WriteYAML writes YAML for the given value to the writer.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode YAML", err)
	}
	return nil
}

// Standard formatting constants
const (
	HeaderWidth    = 40
	LabelWidth     = 25
	SectionPadding = 2
	ItemPadding    = 4
)

// ANSI color codes for consistent color usage
const (
	ColorReset  = "\x1b[0m"
	ColorRed    = "\x1b[31m"
	ColorYellow = "\x1b[33m"
	ColorGreen  = "\x1b[32m"
	ColorCyan   = "\x1b[36m"
	ColorBold   = "\x1b[1m"
)

// FormatUtils provides shared formatting utilities
type FormatUtils struct {
	color bool
}

// NewFormatUtils creates a new format utilities instance. Colors are off
// unless enabled with WithColor.
func NewFormatUtils() *FormatUtils {
	return &FormatUtils{}
}

// WithColor returns a copy that emits ANSI colors when enabled is true.
func (f *FormatUtils) WithColor(enabled bool) *FormatUtils {
	return &FormatUtils{color: enabled}
}

// FormatMainHeader creates a standardized main header
func (f *FormatUtils) FormatMainHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(title + "\n")
	builder.WriteString(strings.Repeat("=", HeaderWidth) + "\n\n")
	return builder.String()
}

// FormatSectionHeader creates a standardized section header
func (f *FormatUtils) FormatSectionHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(strings.ToUpper(title) + "\n")
	builder.WriteString(strings.Repeat("-", len(title)) + "\n")
	return builder.String()
}

// FormatSectionSeparator creates a section separator
func (f *FormatUtils) FormatSectionSeparator() string {
	return "\n"
}

// FormatLabel creates a consistently formatted label with right alignment
func (f *FormatUtils) FormatLabel(label string, value interface{}) string {
	padding := LabelWidth - len(label)
	if padding < 0 {
		padding = 0
	}
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", padding), label, value)
}

// FormatLabelWithIndent creates a formatted label with specific indentation
func (f *FormatUtils) FormatLabelWithIndent(indent int, label string, value interface{}) string {
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", indent), label, value)
}

// FormatScore formats a score with one decimal
func (f *FormatUtils) FormatScore(score float64) string {
	return fmt.Sprintf("%.1f", score)
}

// FormatDuration formats duration in milliseconds consistently
func (f *FormatUtils) FormatDuration(durationMs int64) string {
	return fmt.Sprintf("%dms", durationMs)
}

// GetLabelColor returns the color used for a display label
func (f *FormatUtils) GetLabelColor(label string) string {
	switch analyzer.Label(label) {
	case analyzer.LabelRepresentative:
		return ColorGreen
	case analyzer.LabelShortestAlternative:
		return ColorCyan
	case analyzer.LabelAlternative:
		return ColorYellow
	default:
		return ColorReset
	}
}

// FormatLabelWithColor colors a display label when colors are enabled
func (f *FormatUtils) FormatLabelWithColor(label string) string {
	if !f.color {
		return label
	}
	return fmt.Sprintf("%s%s%s", f.GetLabelColor(label), label, ColorReset)
}

// FormatTableHeader writes space separated column titles over a dashed rule,
// both indented like section items
func (f *FormatUtils) FormatTableHeader(columns ...string) string {
	indent := strings.Repeat(" ", SectionPadding)
	header := strings.Join(columns, " ")
	return indent + header + "\n" + indent + strings.Repeat("-", len(header)) + "\n"
}

// FormatLabelDistribution lists label counts in display order, skipping
// labels with no candidates.
func (f *FormatUtils) FormatLabelDistribution(counts map[string]int) string {
	var builder strings.Builder
	builder.WriteString(f.FormatSectionHeader("LABELS"))
	for _, label := range constants.LabelNames {
		if n := counts[label]; n > 0 {
			builder.WriteString(f.FormatLabelWithIndent(SectionPadding, label, n))
		}
	}
	builder.WriteString(f.FormatSectionSeparator())
	return builder.String()
}

// FormatWarningsSection creates a standardized warnings section
func (f *FormatUtils) FormatWarningsSection(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(f.FormatSectionHeader("WARNINGS"))

	for _, warning := range warnings {
		builder.WriteString(f.FormatLabelWithIndent(SectionPadding, "!", warning))
	}

	builder.WriteString(f.FormatSectionSeparator())
	return builder.String()
}
