package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/cubelab/solfilter/domain"
)

const (
	outputModeSummary = "summary"
	outputModeFull    = "full"

	// maxSummaryRecommendations caps the recommendations in summary mode
	maxSummaryRecommendations = 10
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil, "")
	}
	return &HandlerSet{deps: deps}
}

// HandleLabelSolutions handles the label_solutions tool
func (h *HandlerSet) HandleLabelSolutions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	rawSolutions, ok := args["solutions"].([]interface{})
	if !ok {
		return mcp.NewToolResultError("solutions parameter is required and must be an array"), nil
	}

	// Non-string items keep their slot and come back unlabeled
	solutions := make([]string, len(rawSolutions))
	var excluded []int
	for i, item := range rawSolutions {
		if s, ok := item.(string); ok {
			solutions[i] = s
		} else {
			excluded = append(excluded, i)
		}
	}

	return h.label(ctx, args, solutions, excluded)
}

// HandleLabelFile handles the label_file tool
func (h *HandlerSet) HandleLabelFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}

	solutions, err := h.deps.reader.ReadSolutions(ctx, []string{path}, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read solutions: %v", err)), nil
	}

	return h.label(ctx, args, solutions, nil)
}

func (h *HandlerSet) label(ctx context.Context, args map[string]interface{}, solutions []string, excluded []int) (*mcp.CallToolResult, error) {
	config, err := h.filterConfig(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outputMode := outputModeSummary
	if om, ok := args["output_mode"].(string); ok && om != "" {
		outputMode = om
	}
	if outputMode != outputModeSummary && outputMode != outputModeFull {
		return mcp.NewToolResultError(fmt.Sprintf("output_mode must be %q or %q", outputModeSummary, outputModeFull)), nil
	}

	response, err := h.deps.service.Label(ctx, domain.FilterRequest{
		Solutions: solutions,
		Excluded:  excluded,
		Config:    config,
	})
	if err != nil {
		h.deps.logger.Warn("label tool failed", zap.Int("solutions", len(solutions)), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("labeling failed: %v", err)), nil
	}
	h.deps.logger.Info("label tool completed",
		zap.Int("solutions", len(solutions)),
		zap.Int("labeled", response.Stats.Labeled),
		zap.String("output_mode", outputMode),
	)

	var responseData interface{}
	switch outputMode {
	case outputModeFull:
		responseData = response
	default:
		responseData = formatSummary(response, maxSummaryRecommendations)
	}

	jsonData, err := json.MarshalIndent(responseData, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to format result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// filterConfig applies the tool arguments over the configured parameters
func (h *HandlerSet) filterConfig(args map[string]interface{}) (domain.FilterConfig, error) {
	config := h.deps.BaseFilterConfig()

	if v, ok := args["threshold"]; ok {
		threshold, ok := v.(float64)
		if !ok {
			return config, fmt.Errorf("threshold must be a number")
		}
		config.Threshold = threshold
	}

	if v, ok := args["prefix_len"]; ok {
		prefixLen, ok := v.(float64)
		if !ok || prefixLen != math.Trunc(prefixLen) {
			return config, fmt.Errorf("prefix_len must be an integer")
		}
		config.PrefixLen = int(prefixLen)
	}

	return config, nil
}

func formatSummary(response *domain.FilterResponse, maxResults int) map[string]interface{} {
	recommended := response.Recommended()
	if len(recommended) > maxResults {
		recommended = recommended[:maxResults]
	}

	recommendations := make([]map[string]interface{}, 0, len(recommended))
	for _, r := range recommended {
		recommendations = append(recommendations, map[string]interface{}{
			"rank":           *r.RecommendationRank,
			"solution":       r.Solution,
			"school":         r.School,
			"label":          r.Label,
			"score":          r.Score,
			"adjusted_score": *r.AdjustedScore,
			"qtm":            r.QTM,
			"htm":            r.HTM,
			"original_index": r.OriginalIndex,
		})
	}

	return map[string]interface{}{
		"stats":           response.Stats,
		"schools":         response.Schools,
		"recommendations": recommendations,
	}
}
