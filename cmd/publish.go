package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lucky-aeon/agentx/mcp-manager/publish"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

func newMergeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "merge <fragment>...",
		Short:   "Print the composite of the given fragments",
		Long:    `Merge the given fragments in order and print the result. Later fragments win when two declare the same server.`,
		GroupID: "publish",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mgr, err := opts.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			composite, err := mgr.MergeFragments(xlog.NewLogger("[cli]"), args)
			if err != nil {
				return err
			}
			if outputFormat() == OutputFormatYAML {
				return printYAML(cmd.OutOrStdout(), composite)
			}
			data, err := composite.Indent()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func newApplyCmd(opts *rootOptions) *cobra.Command {
	var targets []string
	cmd := &cobra.Command{
		Use:   "apply <fragment>...",
		Short: "Merge fragments and write the result to the target config files",
		Long: `Merge the given fragments in order and write the result to each target.
The target file is replaced as a whole. A failing target does not stop the others.`,
		GroupID: "publish",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mgr, err := opts.manager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			_, res, err := mgr.ApplyFragments(xlog.NewLogger("[cli]"), args, targets)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringSliceVarP(&targets, "target", "t", nil, "Target to write (repeatable, default: all)")
	return cmd
}

func newTargetsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "targets",
		Short:   "List the config files apply writes to",
		GroupID: "publish",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			targets := cfg.TargetList()
			rows := make([][]string, 0, len(targets))
			for _, t := range targets {
				rows = append(rows, []string{t.Name, t.Path})
			}
			return printOutput(cmd.OutOrStdout(), targets, []string{"NAME", "PATH"}, rows)
		},
	}
}

// printReport prints one row per target and returns the combined error of the
// failed ones.
func printReport(w io.Writer, res *publish.Result) error {
	report := res.Report()
	rows := make([][]string, 0, len(report))
	for _, o := range report {
		status := "ok"
		if !o.OK {
			status = "failed: " + o.Error
		}
		rows = append(rows, []string{o.Target, o.Path, status})
	}
	if err := printOutput(w, report, []string{"TARGET", "PATH", "STATUS"}, rows); err != nil {
		return err
	}
	return res.Err()
}
