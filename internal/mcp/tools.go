package mcp

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/mark3labs/mcp-go/mcp"

	"fsguard/internal/filemanager"
)

// Argument names shared by several tools.
const (
	argPath            = "path"
	argPaths           = "paths"
	argContent         = "content"
	argEdits           = "edits"
	argDryRun          = "dryRun"
	argSource          = "source"
	argDestination     = "destination"
	argPattern         = "pattern"
	argExcludePatterns = "excludePatterns"
)

func readFileTool() mcp.Tool {
	return mcp.NewTool(filemanager.OpReadFile,
		mcp.WithDescription(heredoc.Doc(`
			Read the complete contents of a file from the file system.
			Handles various text encodings and provides detailed error messages
			if the file cannot be read. Use this tool when you need to examine
			the contents of a single file. Only works within allowed directories.
		`)),
		mcp.WithString(argPath, mcp.Required(), mcp.Description("Path to the file to read")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func readMultipleFilesTool() mcp.Tool {
	return mcp.NewTool(filemanager.OpReadMultipleFiles,
		mcp.WithDescription(heredoc.Doc(`
			Read the contents of multiple files simultaneously. This is more
			efficient than reading files one by one when you need to analyze or
			compare multiple files. Each file's content is returned keyed by its
			path. Failed reads for individual files won't stop the entire
			operation. Only works within allowed directories.
		`)),
		mcp.WithArray(argPaths,
			mcp.Required(),
			mcp.Description("Paths of the files to read"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func writeFileTool() mcp.Tool {
	return mcp.NewTool(filemanager.OpWriteFile,
		mcp.WithDescription(heredoc.Doc(`
			Create a new file or completely overwrite an existing file with new
			content. Use with caution as it will overwrite existing files without
			warning. The parent directory must exist. Only works within allowed
			directories.
		`)),
		mcp.WithString(argPath, mcp.Required(), mcp.Description("Path where to write the file")),
		mcp.WithString(argContent, mcp.Required(), mcp.Description("Content to write to the file")),
		mcp.WithDestructiveHintAnnotation(true),
	)
}

func editFileTool() mcp.Tool {
	return mcp.NewTool(filemanager.OpEditFile,
		mcp.WithDescription(heredoc.Doc(`
			Make text edits to a file. Each edit replaces the first exact
			occurrence of oldText with newText, applied in order. If any edit
			does not match, nothing is written. Returns a git-style diff showing
			the changes made. Set dryRun to preview the diff without writing.
			Only works within allowed directories.
		`)),
		mcp.WithString(argPath, mcp.Required(), mcp.Description("Path to the file to edit")),
		mcp.WithArray(argEdits,
			mcp.Required(),
			mcp.Description("List of edits to apply"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"oldText": map[string]any{"type": "string", "description": "Text to search for, must match exactly"},
					"newText": map[string]any{"type": "string", "description": "Text to replace it with"},
				},
				"required": []string{"oldText", "newText"},
			}),
		),
		mcp.WithBoolean(argDryRun, mcp.Description("Preview changes as a diff without writing")),
		mcp.WithDestructiveHintAnnotation(true),
	)
}

func createDirectoryTool() mcp.Tool {
	return mcp.NewTool(filemanager.OpCreateDirectory,
		mcp.WithDescription(heredoc.Doc(`
			Create a new directory or ensure a directory exists. Can create
			multiple nested directories in one operation. If the directory
			already exists, this operation will succeed silently. Only works
			within allowed directories.
		`)),
		mcp.WithString(argPath, mcp.Required(), mcp.Description("Path of directory to create")),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

func listDirectoryTool() mcp.Tool {
	return mcp.NewTool(filemanager.OpListDirectory,
		mcp.WithDescription(heredoc.Doc(`
			Get a detailed listing of all files and directories in a specified
			path. Results clearly distinguish between files and directories with
			[FILE] and [DIR] prefixes. Only works within allowed directories.
		`)),
		mcp.WithString(argPath, mcp.Required(), mcp.Description("Path to list contents of")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func directoryTreeTool() mcp.Tool {
	return mcp.NewTool(filemanager.OpDirectoryTree,
		mcp.WithDescription(heredoc.Doc(`
			Get a recursive tree view of files and directories as a JSON
			structure. Each entry includes 'name', 'type' (file/directory), and
			'children' for directories. Files have no children array, while
			directories always have a children array (which may be empty). The
			output is formatted with 2-space indentation for readability. Only
			works within allowed directories.
		`)),
		mcp.WithString(argPath, mcp.Required(), mcp.Description("Root path to create tree from")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func moveFileTool() mcp.Tool {
	return mcp.NewTool(filemanager.OpMoveFile,
		mcp.WithDescription(heredoc.Doc(`
			Move or rename files and directories. Can move files between
			directories and rename them in a single operation. If the
			destination exists, the operation will fail. Both source and
			destination must be within allowed directories.
		`)),
		mcp.WithString(argSource, mcp.Required(), mcp.Description("Source path")),
		mcp.WithString(argDestination, mcp.Required(), mcp.Description("Destination path")),
	)
}

func searchFilesTool() mcp.Tool {
	return mcp.NewTool(filemanager.OpSearchFiles,
		mcp.WithDescription(heredoc.Doc(`
			Recursively search for files and directories matching a pattern.
			Searches through all subdirectories from the starting path. The
			search is case-insensitive and matches partial names. Entries
			matching any of the glob excludePatterns are skipped along with
			their contents. Returns full paths to all matching items. Only
			searches within allowed directories.
		`)),
		mcp.WithString(argPath, mcp.Required(), mcp.Description("Starting path for search")),
		mcp.WithString(argPattern, mcp.Required(), mcp.Description("Pattern to search for")),
		mcp.WithArray(argExcludePatterns,
			mcp.Description("Glob patterns to exclude, e.g. node_modules or **/*.log"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getFileInfoTool() mcp.Tool {
	return mcp.NewTool(filemanager.OpGetFileInfo,
		mcp.WithDescription(heredoc.Doc(`
			Retrieve detailed metadata about a file or directory. Returns size,
			creation time, last modified time, permissions, type and MIME type
			without reading the file content. Only works within allowed
			directories.
		`)),
		mcp.WithString(argPath, mcp.Required(), mcp.Description("Path to get info for")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func listAllowedDirectoriesTool() mcp.Tool {
	return mcp.NewTool(filemanager.OpListAllowedDirectories,
		mcp.WithDescription(heredoc.Doc(`
			Returns the list of directories that this server is allowed to
			access, as a JSON array of paths. Use this to understand which
			directories are available before trying to access files.
		`)),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
