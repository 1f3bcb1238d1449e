package filemanager

import (
	"time"

	"github.com/bytedance/sonic"
)

// Operation names, used for error labels, log fields and metric labels.
const (
	OpReadFile               = "read_file"
	OpReadMultipleFiles      = "read_multiple_files"
	OpWriteFile              = "write_file"
	OpEditFile               = "edit_file"
	OpCreateDirectory        = "create_directory"
	OpListDirectory          = "list_directory"
	OpDirectoryTree          = "directory_tree"
	OpMoveFile               = "move_file"
	OpSearchFiles            = "search_files"
	OpGetFileInfo            = "get_file_info"
	OpListAllowedDirectories = "list_allowed_directories"
)

// EntryType names the kind of a directory entry.
type EntryType string

const (
	EntryFile      EntryType = "file"
	EntryDirectory EntryType = "directory"
	EntryOther     EntryType = "other"
)

// TreeEntry is one node of a directory_tree result. Directories always carry
// a Children slice, possibly empty; files never do.
type TreeEntry struct {
	Name     string      `json:"name"`
	Type     EntryType   `json:"type"`
	Children []TreeEntry `json:"children,omitempty"`
}

// MarshalJSON emits "children" for every directory, even an empty one, and
// never for a file.
func (e TreeEntry) MarshalJSON() ([]byte, error) {
	type entry struct {
		Name     string       `json:"name"`
		Type     EntryType    `json:"type"`
		Children *[]TreeEntry `json:"children,omitempty"`
	}

	out := entry{Name: e.Name, Type: e.Type}
	if e.Type == EntryDirectory {
		children := e.Children
		if children == nil {
			children = []TreeEntry{}
		}
		out.Children = &children
	}
	return sonic.ConfigStd.Marshal(out)
}

// DirEntry is one line of a list_directory result.
type DirEntry struct {
	Name string    `json:"name"`
	Type EntryType `json:"type"`
}

// EditOperation replaces the first occurrence of OldText with NewText.
type EditOperation struct {
	OldText string `json:"oldText"`
	NewText string `json:"newText"`
}

// EditOptions configures EditFile.
type EditOptions struct {
	// DryRun computes the diff without writing the file.
	DryRun bool
}

// SearchOptions configures SearchFiles.
type SearchOptions struct {
	// Exclude holds glob patterns (doublestar syntax) for entries to skip.
	Exclude []string
}

// ReadResult is the outcome of reading one path in a batch. Exactly one of
// Content and Err is meaningful.
type ReadResult struct {
	Content string
	Err     error
}

// MarshalJSON renders {"content": ...} or {"error": ...}.
func (r ReadResult) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return sonic.ConfigStd.Marshal(map[string]string{"error": r.Err.Error()})
	}
	return sonic.ConfigStd.Marshal(map[string]string{"content": r.Content})
}

// BatchReadResult maps each requested path, exactly as given, to its result.
type BatchReadResult map[string]ReadResult

// MarshalBatch renders results as a JSON object keyed by path, indented by
// two spaces.
func MarshalBatch(results BatchReadResult) (string, error) {
	data, err := sonic.ConfigStd.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FileInfo is the metadata returned by get_file_info.
type FileInfo struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	// Created is the birth time where the platform records one, otherwise
	// the modification time.
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Accessed    time.Time `json:"accessed"`
	Permissions string    `json:"permissions"`
	Mode        string    `json:"mode"`
	Type        EntryType `json:"type"`
	IsSymlink   bool      `json:"isSymlink"`
	LinkTarget  string    `json:"linkTarget,omitempty"`
	MIMEType    string    `json:"mimeType,omitempty"`
}
