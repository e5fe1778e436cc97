package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/cost-atlas/pkg/services/config"
)

type SourcesCmd struct {
	configPath string
	deps       Deps
}

func NewSourcesCmd(deps Deps) *cobra.Command {
	sc := &SourcesCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the supported cost sources and their configuration",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.configPath, "config", "", "Path to the cost-atlas YAML config")

	return cmd
}

func (sc *SourcesCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(sc.configPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Supported sources:")
	for _, name := range sc.deps.Registry.List() {
		src, ok := cfg.Sources[name]
		status := "not configured"
		switch {
		case ok && src.Disabled:
			status = "disabled"
		case ok && src.Profile != "":
			status = fmt.Sprintf("enabled (profile %s)", src.Profile)
		case ok:
			status = "enabled"
		}
		fmt.Fprintf(out, "  %-12s %s\n", name, status)
	}
	return nil
}
