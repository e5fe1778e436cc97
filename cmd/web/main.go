package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/de-tools/cost-atlas/pkg/server"
	"github.com/de-tools/cost-atlas/pkg/services/config"
	"github.com/de-tools/cost-atlas/pkg/services/registry"
	"github.com/de-tools/cost-atlas/pkg/services/workflow"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Cost Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the cost-atlas YAML config (COST_ATLAS_* variables override it)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	logger := cfg.Logger(os.Stdout)
	ctx := logger.WithContext(cmd.Context())

	sources, err := registry.Sources(ctx, registry.Default(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create cost sources: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := registry.NewService(ctx, sources, cfg, reg)
	if err != nil {
		return err
	}
	if len(svc.Sources()) == 0 {
		logger.Warn().Msg("no cost sources configured, reports will be rejected")
	}

	if cfg.Refresh.Interval > 0 && len(svc.Sources()) > 0 {
		refreshCtx, stopRefresh := context.WithCancel(ctx)
		defer stopRefresh()
		go workflow.NewRunner(svc, cfg.Refresh).Run(refreshCtx)
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Dependencies: server.Dependencies{
			Service:  svc,
			Gatherer: reg,
		},
	})
	return api.Start()
}
