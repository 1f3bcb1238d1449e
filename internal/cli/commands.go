package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"fsguard/internal/filemanager"
)

func newReadCmd(a *app) *cobra.Command {
	var (
		render bool
		style  string
		width  int
	)

	cmd := &cobra.Command{
		Use:   "read PATH",
		Short: "Print the contents of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := a.fm.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if render {
				if style == styleAuto {
					style = detectMarkdownStyle(cmd.OutOrStdout(), 50*time.Millisecond)
				}
				if content, err = renderMarkdown(content, style, width); err != nil {
					return err
				}
			}
			_, err = io.WriteString(cmd.OutOrStdout(), content)
			return err
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "render the file as Markdown")
	cmd.Flags().StringVar(&style, "style", styleAuto, "Markdown style: auto, dark, light, notty or ascii")
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width for rendered Markdown")
	return cmd
}

func newReadManyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read-many PATH...",
		Short: "Read several files, reporting per-file errors as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := filemanager.MarshalBatch(a.fm.ReadMultipleFiles(cmd.Context(), args))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newWriteCmd(a *app) *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "write PATH",
		Short: "Create or overwrite a file",
		Long: `Create or overwrite a file. The content comes from --content, or from
standard input when the flag is not given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("content") {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read standard input: %w", err)
				}
				content = string(data)
			}

			if err := a.fm.WriteFile(cmd.Context(), args[0], content); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Successfully wrote to "+args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "file content")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		editsFile string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "edit PATH",
		Short: "Apply exact-text replacements to a file and print the diff",
		Long: `Apply a list of exact-text replacements to a file. Edits are read from
--edits as a JSON array of {"oldText": ..., "newText": ...} objects; use "-"
to read them from standard input. Either every edit applies or the file is
left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := readEdits(cmd, editsFile)
			if err != nil {
				return err
			}

			diff, err := a.fm.EditFile(cmd.Context(), args[0], edits, filemanager.EditOptions{DryRun: dryRun})
			if err != nil {
				return err
			}
			if diff == "" {
				fmt.Fprintln(cmd.OutOrStdout(), SubtleStyle.Render("No changes made to "+args[0]))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderDiff(diff))
			return nil
		},
	}

	cmd.Flags().StringVar(&editsFile, "edits", "", `JSON file with the edits, or "-" for standard input`)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the diff without writing")
	_ = cmd.MarkFlagRequired("edits")
	return cmd
}

func readEdits(cmd *cobra.Command, source string) ([]filemanager.EditOperation, error) {
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read edits: %w", err)
	}

	var edits []filemanager.EditOperation
	if err := sonic.ConfigStd.Unmarshal(data, &edits); err != nil {
		return nil, fmt.Errorf("invalid edits: %w", err)
	}
	return edits, nil
}

func newMkdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir PATH",
		Short: "Create a directory and any missing parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.fm.CreateDirectory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintln(cmd.OutOrStdout(), SubtleStyle.Render("Directory already exists: "+args[0]))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Successfully created directory: "+args[0]))
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls PATH",
		Aliases: []string{"list"},
		Short:   "List a directory",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.fm.ListDirectory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(entries) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), renderListing(entries))
			}
			return nil
		},
	}
}

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree PATH",
		Short: "Print a directory tree as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.fm.DirectoryTree(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := filemanager.MarshalTree(tree)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "mv SOURCE DESTINATION",
		Aliases: []string{"move"},
		Short:   "Move or rename a file or directory",
		Long:    "Move or rename a file or directory. The destination must not exist.",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fm.MoveFile(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(fmt.Sprintf("Successfully moved %s to %s", args[0], args[1])))
			return nil
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var exclude []string

	cmd := &cobra.Command{
		Use:   "search PATH PATTERN",
		Short: "Find entries whose name contains PATTERN",
		Long: `Recursively find files and directories under PATH whose name contains
PATTERN, ignoring case. Entries matching an --exclude glob are skipped along
with everything beneath them.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := a.fm.SearchFiles(cmd.Context(), args[0], args[1], filemanager.SearchOptions{
				Exclude: exclude,
			})
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), SubtleStyle.Render("No matches found"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(matches, "\n"))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "glob pattern to exclude, repeatable")
	return cmd
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info PATH",
		Short: "Show metadata for a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := a.fm.GetFileInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filemanager.FormatFileInfo(info))
			return nil
		},
	}
}

func newRootsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "roots",
		Short: "List the allowed directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(a.fm.ListAllowedDirectories(), "\n"))
			return nil
		},
	}
}
