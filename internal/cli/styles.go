package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"fsguard/internal/filemanager"
)

// Lip Gloss styles for command output. All colors are hex codes.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff5fd2"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff005f")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff5f")).
			Bold(true)

	DirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5fd7ff")).
			Bold(true)

	FileStyle = lipgloss.NewStyle()

	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	DiffAddStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff5f"))

	DiffRemoveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff005f"))

	DiffHunkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fff"))
)

// renderListing styles a directory listing line by line.
func renderListing(entries []filemanager.DirEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type == filemanager.EntryDirectory {
			lines = append(lines, SubtleStyle.Render("[DIR] ")+" "+DirStyle.Render(e.Name))
		} else {
			lines = append(lines, SubtleStyle.Render("[FILE]")+" "+FileStyle.Render(e.Name))
		}
	}
	return strings.Join(lines, "\n")
}

// renderDiff colors a unified diff.
func renderDiff(diff string) string {
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = TitleStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = DiffHunkStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = DiffAddStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = DiffRemoveStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// styleAuto picks a markdown style from the terminal background.
const styleAuto = "auto"

// detectMarkdownStyle resolves a glamour style name. GLAMOUR_STYLE wins over
// the background query, which falls back to "dark" if the terminal does not
// answer within timeout.
func detectMarkdownStyle(w io.Writer, timeout time.Duration) string {
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" && style != styleAuto {
		return style
	}

	ch := make(chan string, 1)
	go func() {
		if termenv.NewOutput(w).HasDarkBackground() {
			ch <- "dark"
			return
		}
		ch <- "light"
	}()

	select {
	case style := <-ch:
		return style
	case <-time.After(timeout):
		return "dark"
	}
}

// renderMarkdown renders content for the terminal with a glamour standard
// style.
func renderMarkdown(content, style string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(content)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
