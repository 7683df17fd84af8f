package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/lucky-aeon/agentx/mcp-manager/store"
	"github.com/lucky-aeon/agentx/mcp-manager/types"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

func newFragmentCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fragment",
		Aliases: []string{"fragments", "f"},
		Short:   "Manage config fragments",
		GroupID: "content",
	}
	cmd.AddCommand(
		newFragmentListCmd(opts),
		newFragmentShowCmd(opts),
		newFragmentSaveCmd(opts),
		newFragmentDeleteCmd(opts),
	)
	return cmd
}

func newFragmentListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List fragments",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mgr, err := opts.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			list, err := mgr.ListFragments(xlog.NewLogger("[cli]"))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, f := range list {
				servers := strings.Join(f.Servers, ", ")
				if !f.Valid {
					servers = "(invalid JSON)"
				}
				rows = append(rows, []string{store.DisplayName(f.Name), servers, firstLine(f.Description)})
			}
			return printOutput(cmd.OutOrStdout(), list, []string{"NAME", "SERVERS", "DESCRIPTION"}, rows)
		},
	}
}

func newFragmentShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a fragment and its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mgr, err := opts.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			f, err := mgr.GetFragment(xlog.NewLogger("[cli]"), args[0])
			if err != nil {
				return err
			}
			if outputFormat() != OutputFormatTable {
				return printOutput(cmd.OutOrStdout(), f, nil, nil)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", store.DisplayName(f.Name))
			if f.Description != "" {
				fmt.Fprintf(out, "%s\n", f.Description)
			}
			fmt.Fprintln(out, prettyJSON(f.Content))
			return printServers(out, f.Content)
		},
	}
}

func newFragmentSaveCmd(opts *rootOptions) *cobra.Command {
	var content, file, description, previous string
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Create or overwrite a fragment",
		Long: `Create or overwrite a fragment. The content must be well-formed JSON,
usually {"mcpServers": {...}}. With --previous the fragment named there is
removed, which renames it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), content, file)
			if err != nil {
				return err
			}
			_, mgr, err := opts.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			xl := xlog.NewLogger("[cli]")
			if !cmd.Flags().Changed("description") && previous == "" {
				if old, err := mgr.GetFragment(xl, args[0]); err == nil {
					description = old.Description
				}
			}
			f, err := mgr.SaveFragment(xl, args[0], types.SaveFragmentRequest{
				Content:      text,
				Description:  description,
				PreviousName: previous,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved fragment %s\n", store.DisplayName(f.Name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&content, "content", "c", "", "Fragment JSON")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read fragment JSON from a file, - for stdin")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Free text description")
	cmd.Flags().StringVar(&previous, "previous", "", "Previous name of the fragment when renaming")
	return cmd
}

func newFragmentDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>...",
		Aliases: []string{"rm"},
		Short:   "Delete fragments and their descriptions",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mgr, err := opts.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			xl := xlog.NewLogger("[cli]")
			for _, name := range args {
				if err := mgr.DeleteFragment(xl, name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted fragment %s\n", store.DisplayName(name))
			}
			return nil
		},
	}
}

func prettyJSON(content string) string {
	if !gjson.Valid(content) {
		return content
	}
	out, err := json.MarshalIndent(json.RawMessage(content), "", "  ")
	if err != nil {
		return content
	}
	return string(out)
}

// printServers renders the servers of a document as a table.
func printServers(w io.Writer, content string) error {
	var rows [][]string
	gjson.Get(content, "mcpServers").ForEach(func(key, value gjson.Result) bool {
		var def types.ServerDefinition
		if err := json.Unmarshal([]byte(value.Raw), &def); err != nil {
			rows = append(rows, []string{key.String(), "", ""})
			return true
		}
		rows = append(rows, []string{key.String(), def.Endpoint(), strings.Join(def.GetEnvs(), ", ")})
		return true
	})
	if len(rows) == 0 {
		return nil
	}
	return printOutput(w, nil, []string{"SERVER", "COMMAND / URL", "ENV"}, rows)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
