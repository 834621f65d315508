package main

import (
	"github.com/spf13/cobra"

	"github.com/hurttlocker/wastesort/internal/config"
	"github.com/hurttlocker/wastesort/internal/logging"
)

// globalOptions are the flags shared by every subcommand. Subcommands add
// their own overrides (addr, image backend) before the config is resolved.
type globalOptions struct {
	configPath string
	dataFile   string
	backend    string
	dbPath     string
	logLevel   string
	addr       string
	image      string

	cfg config.ResolvedConfig
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "wastesort",
		Short: "Household waste classification",
		Long: `wastesort sorts household waste into four categories: 可回收垃圾 (recyclable),
有害垃圾 (hazardous), 厨余垃圾 (kitchen) and 其他垃圾 (other).

Items are classified by name against a rule table, falling back to similar
rules and then keyword heuristics. Photos can be classified when an image
backend (onnx or http) is configured.

Examples:
  # Classify a few items
  wastesort classify 废电池 香蕉皮 塑料瓶

  # Run the HTTP API with image classification over a local CLIP model
  wastesort serve --image-backend onnx

  # Serve MCP tools over stdio
  wastesort mcp`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default is $HOME/.wastesort/config.yaml)")
	pf.StringVar(&opts.dataFile, "data", "", "rule CSV file")
	pf.StringVar(&opts.backend, "backend", "", "rule store backend (csv, sqlite)")
	pf.StringVar(&opts.dbPath, "db", "", "SQLite database path when --backend=sqlite")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newMCPCmd(opts),
		newClassifyCmd(opts),
		newSimilarCmd(opts),
		newStatsCmd(opts),
		newRulesCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// resolve merges defaults, the config file, env and flags, then configures
// logging. Validation is left to the commands that use the values. Logs go to stderr so stdout stays clean for command output and
// the MCP stdio transport.
func (o *globalOptions) resolve() error {
	cfg, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath:  o.configPath,
		CLIDataFile: o.dataFile,
		CLIBackend:  o.backend,
		CLIDBPath:   o.dbPath,
		CLIAddr:     o.addr,
		CLIImage:    o.image,
		CLILogLevel: o.logLevel,
	})
	if err != nil {
		return err
	}
	if err := logging.Configure(cfg.LogLevel.Value); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}
