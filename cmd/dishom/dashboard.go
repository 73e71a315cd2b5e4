package main

import (
	"context"
	"fmt"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/brizzai/dishom-client/internal/api"
	"github.com/brizzai/dishom-client/internal/auth"
	"github.com/brizzai/dishom-client/internal/config"
	"github.com/brizzai/dishom-client/internal/models"
	"github.com/brizzai/dishom-client/internal/server"
	"github.com/brizzai/dishom-client/internal/tui"
	tuimodels "github.com/brizzai/dishom-client/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newMetricsCmd() *cobra.Command {
	var rng string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show the platform metrics for a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, protected(func(ctx context.Context, service *auth.Service, _ models.User) error {
				res := service.API().DashboardMetrics(ctx, rng)
				if !res.OK() {
					return res.Err
				}

				rows := pterm.TableData{{"Metric", "Current", "Previous", "Change"}}
				for _, item := range tuimodels.Items(*res.Data) {
					rows = append(rows, []string{
						item.Label(),
						tuimodels.FormatNumber(item.Metric.Current),
						tuimodels.FormatNumber(item.Metric.Prev),
						fmt.Sprintf("%+.1f%%", item.Metric.Pct),
					})
				}
				pterm.Info.Printfln("Metrics for %s", pterm.LightGreen(rng))
				return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
			}))
		},
	}

	cmd.Flags().StringVarP(&rng, "range", "r", api.DefaultMetricsRange, "Range like 24h, 7d or 30d")
	return cmd
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the terminal dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, service *auth.Service) (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("caught panic: %v\n%s", r, debug.Stack())
					}
				}()

				model := tui.NewAppModel(service)
				defer model.Close()

				p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("error running dashboard: %w", err)
				}
				return nil
			})
		},
	}
}

func newServeCmd() *cobra.Command {
	var mode, host string
	var port int

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"mcp"},
		Short:   "Serve the account tools over MCP (stdio or http)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("mode") {
				cfg.Server.Mode = config.ServerMode(mode)
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var srv *server.Server
			return withService(cmd, func(context.Context, *auth.Service) error {
				return srv.Start(ctx)
			}, &srv)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(config.ServerModeSTDIO), "Transport (stdio|http)")
	cmd.Flags().StringVar(&host, "host", "", "Listen host in http mode")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port in http mode")
	return cmd
}
