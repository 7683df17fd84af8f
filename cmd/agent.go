package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucky-aeon/agentx/mcp-manager/store"
	"github.com/lucky-aeon/agentx/mcp-manager/types"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

func newAgentCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agent",
		Aliases: []string{"agents", "a"},
		Short:   "Manage agents, saved merges of fragments",
		GroupID: "content",
	}
	cmd.AddCommand(
		newAgentListCmd(opts),
		newAgentShowCmd(opts),
		newAgentSaveCmd(opts),
		newAgentEditCmd(opts),
		newAgentDeleteCmd(opts),
		newAgentApplyCmd(opts),
	)
	return cmd
}

func newAgentListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List agents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mgr, err := opts.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			agents, err := mgr.ListAgents(xlog.NewLogger("[cli]"))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(agents))
			for _, a := range agents {
				servers := "(invalid)"
				if c, err := store.Composite(a); err == nil {
					servers = strings.Join(c.Servers(), ", ")
				}
				rows = append(rows, []string{store.DisplayName(a.Name), strconv.Itoa(len(a.Files)), servers, firstLine(a.Description)})
			}
			return printOutput(cmd.OutOrStdout(), agents, []string{"NAME", "FILES", "SERVERS", "DESCRIPTION"}, rows)
		},
	}
}

func newAgentShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print the merged config of an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mgr, err := opts.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			agent, err := mgr.GetAgent(xlog.NewLogger("[cli]"), args[0])
			if err != nil {
				return err
			}
			if outputFormat() != OutputFormatTable {
				return printOutput(cmd.OutOrStdout(), agent, nil, nil)
			}
			composite, err := store.Composite(agent)
			if err != nil {
				return err
			}
			data, err := composite.Indent()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", store.DisplayName(agent.Name))
			if agent.Description != "" {
				fmt.Fprintln(out, agent.Description)
			}
			fmt.Fprintln(out, string(data))
			return printServers(out, string(data))
		},
	}
}

func newAgentSaveCmd(opts *rootOptions) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "save <name> [fragment]...",
		Short: "Merge fragments in order and save the result as an agent",
		Long: `Merge the given fragments in order and save the result as an agent.
Without fragments a blank agent is created.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mgr, err := opts.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			agent, err := mgr.SaveAgent(xlog.NewLogger("[cli]"), args[0], types.SaveAgentRequest{
				Description: description,
				Fragments:   args[1:],
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved agent %s from %d fragments\n", store.DisplayName(agent.Name), len(args)-1)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Free text description")
	return cmd
}

func newAgentEditCmd(opts *rootOptions) *cobra.Command {
	var content, file, description, previous string
	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Replace the merged config of an agent",
		Long: `Replace the merged config of an agent with the given JSON. The JSON is
merged on its own before saving, so it must be a well-formed document.
With --previous the agent is renamed from that name.`,
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
			if !cmd.Flags().Changed("description") {
				from := args[0]
				if previous != "" {
					from = previous
				}
				if old, err := mgr.GetAgent(xl, from); err == nil {
					description = old.Description
				}
			}
			agent, err := mgr.SaveAgent(xl, args[0], types.SaveAgentRequest{
				Description:  description,
				Content:      json.RawMessage(text),
				PreviousName: previous,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved agent %s\n", store.DisplayName(agent.Name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&content, "content", "c", "", "Composite JSON")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read composite JSON from a file, - for stdin")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Free text description (default: keep)")
	cmd.Flags().StringVar(&previous, "previous", "", "Previous name of the agent when renaming")
	return cmd
}

func newAgentDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>...",
		Aliases: []string{"rm"},
		Short:   "Delete agents",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mgr, err := opts.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			xl := xlog.NewLogger("[cli]")
			for _, name := range args {
				if err := mgr.DeleteAgent(xl, name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted agent %s\n", store.DisplayName(name))
			}
			return nil
		},
	}
}

func newAgentApplyCmd(opts *rootOptions) *cobra.Command {
	var targets []string
	cmd := &cobra.Command{
		Use:   "apply <name>",
		Short: "Write an agent to the target config files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mgr, err := opts.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			_, res, err := mgr.ApplyAgent(xlog.NewLogger("[cli]"), args[0], targets)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringSliceVarP(&targets, "target", "t", nil, "Target to write (repeatable, default: all)")
	return cmd
}
