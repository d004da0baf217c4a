package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cubelab/solfilter/domain"
)

// maxTextRecommendations caps the recommendation table in text reports.
const maxTextRecommendations = 20

// FilterFormatterImpl implements the FilterOutputFormatter interface
type FilterFormatterImpl struct {
	utils *FormatUtils
}

// NewFilterFormatter creates a new filter output formatter
func NewFilterFormatter() *FilterFormatterImpl {
	return &FilterFormatterImpl{utils: NewFormatUtils()}
}

// WithColor enables ANSI colors in text output
func (f *FilterFormatterImpl) WithColor(enabled bool) *FilterFormatterImpl {
	return &FilterFormatterImpl{utils: f.utils.WithColor(enabled)}
}

// Colorized implements domain.ColorizableFormatter
func (f *FilterFormatterImpl) Colorized(enabled bool) domain.FilterOutputFormatter {
	return f.WithColor(enabled)
}

// Format formats the labeling response according to the specified format
func (f *FilterFormatterImpl) Format(response *domain.FilterResponse, format domain.OutputFormat) (string, error) {
	switch format {
	case domain.OutputFormatText:
		return f.formatText(response), nil
	case domain.OutputFormatJSON:
		return EncodeJSON(response)
	case domain.OutputFormatYAML:
		return EncodeYAML(response)
	case domain.OutputFormatCSV:
		return f.formatCSV(response)
	default:
		return "", domain.NewUnsupportedFormatError(string(format))
	}
}

// Write writes the formatted output to the writer
func (f *FilterFormatterImpl) Write(response *domain.FilterResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	}

	formatted, err := f.Format(response, format)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(writer, formatted); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

// formatText formats the response as human-readable text
func (f *FilterFormatterImpl) formatText(response *domain.FilterResponse) string {
	var builder strings.Builder
	utils := f.utils

	builder.WriteString(utils.FormatMainHeader("Solution Filter Report"))

	// Summary
	builder.WriteString(utils.FormatSectionHeader("SUMMARY"))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Solutions", response.Stats.Total))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Labeled", response.Stats.Labeled))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Unlabeled", response.Stats.Unlabeled))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Schools", response.Stats.Schools))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Perfect scores", response.Stats.Score100))
	builder.WriteString(utils.FormatSectionSeparator())

	builder.WriteString(utils.FormatWarningsSection(response.Warnings))

	builder.WriteString(utils.FormatLabelDistribution(map[string]int{
		"Representative": response.Stats.Representative,
		"Alternative":    response.Stats.Alternative,
		"Member":         response.Stats.Member,
		"Unlabeled":      response.Stats.Unlabeled,
	}))

	// Schools
	if len(response.Schools) > 0 {
		builder.WriteString(utils.FormatSectionHeader("SCHOOLS"))
		for _, school := range response.Schools {
			fmt.Fprintf(&builder, "%s%s: %d solutions, %d subgroups, leader #%d\n",
				strings.Repeat(" ", SectionPadding), school.Name, school.Size, school.Subgroups, school.Leader)
			if len(school.Outliers) > 0 {
				builder.WriteString(utils.FormatLabelWithIndent(ItemPadding, "Outliers", joinInts(school.Outliers)))
			}
		}
		builder.WriteString(utils.FormatSectionSeparator())
	}

	// Recommendations
	recommended := response.Recommended()
	if len(recommended) > 0 {
		builder.WriteString(utils.FormatSectionHeader("RECOMMENDATIONS"))
		builder.WriteString(utils.FormatTableHeader("No.", fmt.Sprintf("%-9s", "School"), "Label"))
		for i, res := range recommended {
			if i >= maxTextRecommendations {
				fmt.Fprintf(&builder, "%s... and %d more\n", strings.Repeat(" ", SectionPadding), len(recommended)-i)
				break
			}
			fmt.Fprintf(&builder, "%s%2d. %-9s %s (score %s, adjusted %s, %d QTM / %d HTM)\n",
				strings.Repeat(" ", SectionPadding),
				*res.RecommendationRank,
				res.School,
				utils.FormatLabelWithColor(res.Label),
				utils.FormatScore(res.Score),
				utils.FormatScore(*res.AdjustedScore),
				res.QTM, res.HTM)
			if res.Solution != "" {
				builder.WriteString(utils.FormatLabelWithIndent(ItemPadding+2, "Solution", res.Solution))
			}
		}
		builder.WriteString(utils.FormatSectionSeparator())
	}

	// Footer
	builder.WriteString(utils.FormatSectionHeader("METADATA"))
	builder.WriteString(utils.FormatLabel("Min cluster size", response.MinClusterSize))
	builder.WriteString(utils.FormatLabel("Subgroup threshold", response.SubgroupThreshold))
	builder.WriteString(utils.FormatLabel("Duration", utils.FormatDuration(response.DurationMs)))
	builder.WriteString(utils.FormatLabel("Generated at", response.GeneratedAt))
	builder.WriteString(utils.FormatLabel("Version", response.Version))

	return builder.String()
}

// csvHeader lists the result columns in output record order
var csvHeader = []string{
	"originalIndex", "solution", "school", "label", "prefix", "schoolRank", "score",
	"adjustedScore", "recommendationRank", "qtm", "htm", "subgroupIndex", "subgroupSize",
	"totalSubgroups", "totalCandidates",
}

// formatCSV formats the results as CSV. Null fields are empty cells.
func (f *FilterFormatterImpl) formatCSV(response *domain.FilterResponse) (string, error) {
	var builder strings.Builder
	writer := csv.NewWriter(&builder)

	if err := writer.Write(csvHeader); err != nil {
		return "", domain.NewOutputError("failed to write CSV header", err)
	}

	for _, res := range response.Results {
		row := []string{
			strconv.Itoa(res.OriginalIndex),
			res.Solution,
			res.School,
			res.Label,
			res.Prefix,
			optionalInt(res.SchoolRank),
			strconv.FormatFloat(res.Score, 'f', 4, 64),
			optionalFloat(res.AdjustedScore),
			optionalInt(res.RecommendationRank),
			strconv.Itoa(res.QTM),
			strconv.Itoa(res.HTM),
			optionalInt(res.SubgroupIndex),
			optionalInt(res.SubgroupSize),
			strconv.Itoa(res.TotalSubgroups),
			strconv.Itoa(res.TotalCandidates),
		}
		if err := writer.Write(row); err != nil {
			return "", domain.NewOutputError("failed to write CSV row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", domain.NewOutputError("CSV writer error", err)
	}

	return builder.String(), nil
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "#" + strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
