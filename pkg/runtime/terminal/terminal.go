package terminal

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/cost-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
	"github.com/de-tools/cost-atlas/pkg/terminal/commands"
)

// Output formats of the analyze command
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
)

// CLI represents the command-line interface
type CLI struct {
	registry cost.Registry
	output   io.Writer
	logs     io.Writer
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry cost.Registry
	Output   io.Writer
	Logs     io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logs == nil {
		opts.Logs = os.Stderr
	}

	cli := &CLI{
		registry: opts.Registry,
		output:   opts.Output,
		logs:     opts.Logs,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides the process arguments
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

// NewSink returns the local report sink for format
func NewSink(format string, w io.Writer) (export.Sink, error) {
	switch format {
	case FormatText, "":
		return NewReporter(w), nil
	case FormatTable:
		return export.NewReporter(w), nil
	case FormatJSON:
		return export.NewJSONReporter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q, expected %s, %s or %s", format, FormatText, FormatTable, FormatJSON)
	}
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cost-atlas",
		Short:         "Cost analysis across cloud and data platforms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.output)

	deps := commands.Deps{
		Registry: cli.registry,
		Sinks:    NewSink,
		Logs:     cli.logs,
	}
	cmd.AddCommand(commands.NewAnalyzeCmd(deps))
	cmd.AddCommand(commands.NewSourcesCmd(deps))

	return cmd
}
