// Package mcp exposes fsguard's sandboxed file operations as Model Context
// Protocol (MCP) tools using mcp-go.
//
// Every tool maps onto one filemanager.FileManager operation:
//
//	read_file                 ReadFile
//	read_multiple_files       ReadMultipleFiles
//	write_file                WriteFile
//	edit_file                 EditFile
//	create_directory          CreateDirectory
//	list_directory            ListDirectory
//	directory_tree            DirectoryTree
//	move_file                 MoveFile
//	search_files              SearchFiles
//	get_file_info             GetFileInfo
//	list_allowed_directories  ListAllowedDirectories
//
// # Errors
//
// Operation failures, including sandbox violations, are returned as tool
// results with IsError set and the typed error's message as text. They are
// never protocol errors.
//
// # Transport
//
// The package does not start a transport. Hosts serve MCPServer() over the
// transport of their choice; the fsguard CLI dispatches in-process through
// Call:
//
//	fsguard call read_file '{"path": "~/projects/README.md"}'
//
// # Security
//
// All path validation happens in the FileManager's fileops.Guard. Handlers
// only decode arguments and format results.
package mcp
