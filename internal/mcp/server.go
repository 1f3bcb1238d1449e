package mcp

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"fsguard/internal/filemanager"
	"fsguard/internal/logging"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "fsguard"

// Server exposes a FileManager as a set of MCP tools.
type Server struct {
	fm        *filemanager.FileManager
	logger    *logging.AppLogger
	mcpServer *server.MCPServer
	tools     map[string]server.ServerTool
}

// NewServer creates a Server and registers every filesystem tool on a new
// mcp-go server.
func NewServer(fm *filemanager.FileManager, logger *logging.AppLogger, version string) *Server {
	if logger == nil {
		logger = logging.GetDefault()
	}

	s := &Server{
		fm:     fm,
		logger: logger,
		mcpServer: server.NewMCPServer(ServerName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		tools: make(map[string]server.ServerTool),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	defs := []server.ServerTool{
		{Tool: readFileTool(), Handler: s.handleReadFile},
		{Tool: readMultipleFilesTool(), Handler: s.handleReadMultipleFiles},
		{Tool: writeFileTool(), Handler: s.handleWriteFile},
		{Tool: editFileTool(), Handler: s.handleEditFile},
		{Tool: createDirectoryTool(), Handler: s.handleCreateDirectory},
		{Tool: listDirectoryTool(), Handler: s.handleListDirectory},
		{Tool: directoryTreeTool(), Handler: s.handleDirectoryTree},
		{Tool: moveFileTool(), Handler: s.handleMoveFile},
		{Tool: searchFilesTool(), Handler: s.handleSearchFiles},
		{Tool: getFileInfoTool(), Handler: s.handleGetFileInfo},
		{Tool: listAllowedDirectoriesTool(), Handler: s.handleListAllowedDirectories},
	}

	for i := range defs {
		defs[i].Handler = s.instrument(defs[i].Tool.Name, defs[i].Handler)
		s.tools[defs[i].Tool.Name] = defs[i]
	}
	s.mcpServer.AddTools(defs...)

	s.logger.Debug("Registered MCP tools", "count", len(defs))
}

// instrument tags every call with an ID and logs it before dispatch.
func (s *Server) instrument(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callID := uuid.NewString()
		start := time.Now()

		s.logger.LogToolCall(callID, name, req.GetArguments())
		result, err := h(ctx, req)
		s.logger.With("call_id", callID, "tool", name).Debug("Tool call finished",
			"is_error", result != nil && result.IsError,
			"duration", time.Since(start),
		)
		return result, err
	}
}

// MCPServer returns the underlying mcp-go server, for serving over a
// transport chosen by the host.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Tools returns the registered tool definitions sorted by name.
func (s *Server) Tools() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		tools = append(tools, t.Tool)
	}
	slices.SortFunc(tools, func(a, b mcp.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})
	return tools
}

// Call dispatches a tool call in-process. Failures of the operation itself
// are reported in the result with IsError set; an error is returned only for
// an unknown tool.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	tool, ok := s.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if args == nil {
		args = map[string]any{}
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return tool.Handler(ctx, req)
}

// ResultText joins the text content of a tool result.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var parts []string
	for _, c := range result.Content {
		if text, ok := mcp.AsTextContent(c); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
