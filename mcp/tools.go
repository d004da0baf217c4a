package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers the solfilter MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	// Tool 1: label_solutions - label an inline batch
	s.AddTool(mcp.NewTool("label_solutions",
		mcp.WithDescription("Group twisty-puzzle solutions into schools and subgroups, then score, label and rank them"),
		mcp.WithArray("solutions",
			mcp.Required(),
			mcp.Items(map[string]any{"type": "string"}),
			mcp.Description("Move sequences in standard notation, e.g. \"R U R' U'\"")),
		mcp.WithNumber("threshold",
			mcp.Description("School distance threshold 0-10 (default: 4)")),
		mcp.WithNumber("prefix_len",
			mcp.Description("Opening moves compared when deduplicating labels (default: 4)")),
		mcp.WithString("output_mode",
			mcp.Enum(outputModeSummary, outputModeFull),
			mcp.Description("summary returns stats and recommendations, full returns every record (default: summary)")),
	), h.HandleLabelSolutions)

	// Tool 2: label_file - label solutions stored on disk
	s.AddTool(mcp.NewTool("label_file",
		mcp.WithDescription("Label the solutions listed one per line in a file or glob pattern"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Solution file, directory or glob pattern")),
		mcp.WithNumber("threshold",
			mcp.Description("School distance threshold 0-10 (default: 4)")),
		mcp.WithNumber("prefix_len",
			mcp.Description("Opening moves compared when deduplicating labels (default: 4)")),
		mcp.WithString("output_mode",
			mcp.Enum(outputModeSummary, outputModeFull),
			mcp.Description("summary or full (default: summary)")),
	), h.HandleLabelFile)
}
