// Package cli implements the poetry2rye command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/poetry2rye/pkg/buildinfo"
	"github.com/matzehuels/poetry2rye/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for config lookup and display.
const appName = "poetry2rye"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	config *viper.Viper
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: viper.New(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself converts a project.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "poetry2rye [project-path]",
		Short: "Convert a Poetry project to rye",
		Long: `poetry2rye rewrites a Poetry pyproject.toml into a PEP 621 [project] table
managed by rye and built with hatchling.

The whole project directory is copied to a sibling backup (<dir>.bak,
<dir>.bak.1, ...) before anything is changed. poetry.lock is removed and,
unless --no-src is given, the package is moved under src/.`,
		Args:         cobra.MaximumNArgs(1),
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			observability.SetConvertHooks(newHookPrinter(cmd.OutOrStdout()))
			return c.loadConfig(cmd)
		},
		RunE: c.runConvert,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().String("config", "", "config file (default: ./"+appName+".yaml or ~/.config/"+appName+"/config.yaml)")
	addConvertFlags(root)

	// Register all subcommands
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// projectPath returns the positional project directory, defaulting to ".".
func projectPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
