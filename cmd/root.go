package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucky-aeon/agentx/mcp-manager/config"
	"github.com/lucky-aeon/agentx/mcp-manager/service"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

var version = "dev"

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v string) {
	if v != "" {
		version = v
	}
}

type rootOptions struct {
	configDir string
	output    string
	quiet     bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "mcpm",
		Short: "Manage MCP server config fragments and publish them to Cursor and Claude",
		Long: `mcpm keeps named JSON fragments, each declaring some "mcpServers", merges a
chosen set of them into one config and writes it to the files read by Cursor
and Claude Desktop. Merged sets can be saved as agents and applied later.

When two fragments declare the same server, the one merged later wins.
Publishing replaces the whole target file.`,
		Example: `  mcpm fragment save github --file github.json -d "GitHub tools"
  mcpm merge github filesystem          # print the composite
  mcpm apply github filesystem          # write it to every target
  mcpm agent save dev github filesystem # keep the combination
  mcpm agent apply dev --target cursor
  mcpm serve                            # HTTP API and /mcp endpoint`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configDir, "config-dir", config.DefaultConfigDir(), "Directory holding config.json, data and logs")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", string(OutputFormatTable), "Output format: table, json or yaml")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only log warnings and errors")
	_ = viper.BindPFlag("output_format", root.PersistentFlags().Lookup("output"))

	root.AddGroup(
		&cobra.Group{ID: "content", Title: "Content Commands:"},
		&cobra.Group{ID: "publish", Title: "Publish Commands:"},
		&cobra.Group{ID: "server", Title: "Server Commands:"},
	)
	root.CompletionOptions.HiddenDefaultCmd = true

	root.AddCommand(
		newFragmentCmd(opts),
		newAgentCmd(opts),
		newMergeCmd(opts),
		newApplyCmd(opts),
		newTargetsCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.InitConfig(o.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init config: %w", err)
	}
	level := cfg.LogLevel
	if o.quiet {
		level = "warn"
	}
	if !xlog.SetLevel(level) {
		xlog.NewLogger("[Config]").Warnf("unknown log_level %q, keeping info", level)
	}
	return cfg, nil
}

// manager builds a service without session GC. Callers must Close it.
func (o *rootOptions) manager() (*config.Config, *service.ServiceManager, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, service.New(newFragmentStore(cfg), newAgentStore(cfg), newPublisher(cfg), nil), nil
}
