package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"fsguard/internal/mcp"
)

// ErrToolFailed is returned by "call" when the tool reported an error. The
// tool's own message has already been printed.
var ErrToolFailed = errors.New("tool call failed")

func newToolsCmd(a *app) *cobra.Command {
	var (
		long  bool
		width int
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, tool := range a.server.Tools() {
				desc := strings.Join(strings.Fields(tool.Description), " ")
				if !long {
					summary, _, _ := strings.Cut(desc, ". ")
					fmt.Fprintf(out, "%s  %s\n", TitleStyle.Render(fmt.Sprintf("%-25s", tool.Name)), strings.TrimSuffix(summary, "."))
					continue
				}
				fmt.Fprintln(out, TitleStyle.Render(tool.Name))
				fmt.Fprintln(out, indent.String(wordwrap.String(desc, width-4), 4))
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "print full descriptions")
	cmd.Flags().IntVar(&width, "width", 80, "wrap width for --long")
	return cmd
}

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call TOOL [ARGUMENTS]",
		Short: "Invoke an MCP tool in-process",
		Long: `Invoke an MCP tool in-process. ARGUMENTS is a JSON object; use "-" to read
it from standard input. The tool's text result is printed as-is, and a tool
error exits with a non-zero status.`,
		Example: `  fsguard call read_file '{"path": "~/projects/README.md"}'
  fsguard call list_allowed_directories`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			switch {
			case len(args) == 1:
			case args[1] == "-":
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read standard input: %w", err)
				}
				raw = data
			default:
				raw = []byte(args[1])
			}

			params := map[string]any{}
			if len(strings.TrimSpace(string(raw))) > 0 {
				if err := sonic.ConfigStd.Unmarshal(raw, &params); err != nil {
					return fmt.Errorf("arguments must be a JSON object: %w", err)
				}
			}

			result, err := a.server.Call(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			text := mcp.ResultText(result)
			if result.IsError {
				fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render(text))
				return ErrToolFailed
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
