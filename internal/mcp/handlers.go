package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/mcp-go/mcp"

	"fsguard/internal/filemanager"
)

// Tool handlers translate arguments, call the FileManager and turn its typed
// errors into tool-error results. They never return a Go error, so failures
// stay inside the protocol's tool result.

func (s *Server) handleReadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString(argPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := s.fm.ReadFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) handleReadMultipleFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths, err := req.RequireStringSlice(argPaths)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := filemanager.MarshalBatch(s.fm.ReadMultipleFiles(ctx, paths))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode results: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleWriteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString(argPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString(argContent)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.fm.WriteFile(ctx, path, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully wrote to %s", path)), nil
}

func (s *Server) handleEditFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString(argPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	edits, err := decodeEdits(req.GetArguments()[argEdits])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	diff, err := s.fm.EditFile(ctx, path, edits, filemanager.EditOptions{
		DryRun: req.GetBool(argDryRun, false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if diff == "" {
		return mcp.NewToolResultText(fmt.Sprintf("No changes made to %s", path)), nil
	}
	return mcp.NewToolResultText(diff), nil
}

// decodeEdits converts the loosely typed edits argument into EditOperations.
func decodeEdits(raw any) ([]filemanager.EditOperation, error) {
	if raw == nil {
		return nil, fmt.Errorf("required argument %q not found", argEdits)
	}

	data, err := sonic.ConfigStd.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid edits: %w", err)
	}

	var edits []filemanager.EditOperation
	if err := sonic.ConfigStd.Unmarshal(data, &edits); err != nil {
		return nil, fmt.Errorf("invalid edits: expected a list of {oldText, newText} objects: %w", err)
	}
	return edits, nil
}

func (s *Server) handleCreateDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString(argPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	created, err := s.fm.CreateDirectory(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !created {
		return mcp.NewToolResultText(fmt.Sprintf("Directory already exists: %s", path)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully created directory: %s", path)), nil
}

func (s *Server) handleListDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString(argPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries, err := s.fm.ListDirectory(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(filemanager.FormatListing(entries)), nil
}

func (s *Server) handleDirectoryTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString(argPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tree, err := s.fm.DirectoryTree(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := filemanager.MarshalTree(tree)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode tree: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleMoveFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString(argSource)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	destination, err := req.RequireString(argDestination)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.fm.MoveFile(ctx, source, destination); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully moved %s to %s", source, destination)), nil
}

func (s *Server) handleSearchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString(argPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pattern, err := req.RequireString(argPattern)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	matches, err := s.fm.SearchFiles(ctx, path, pattern, filemanager.SearchOptions{
		Exclude: req.GetStringSlice(argExcludePatterns, nil),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText("No matches found"), nil
	}
	return mcp.NewToolResultText(strings.Join(matches, "\n")), nil
}

func (s *Server) handleGetFileInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString(argPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := s.fm.GetFileInfo(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(filemanager.FormatFileInfo(info)), nil
}

func (s *Server) handleListAllowedDirectories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := sonic.ConfigStd.Marshal(s.fm.ListAllowedDirectories())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode directories: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
