package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/premium-forecast/internal/planner"
	"github.com/iwvelando/premium-forecast/internal/server"
	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/output"
	"github.com/iwvelando/premium-forecast/pkg/strategy"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlanCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Generate monthly plans for every active scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			results, err := planner.GetForecasts(s.logger, *s.conf)
			if err != nil {
				s.logger.Error("failed to compute plans",
					zap.String("op", "main.plan"),
					zap.Error(err),
				)
				return err
			}

			if s.format == constants.OutputFormatCSV {
				return output.CsvFormat(cmd.OutOrStdout(), results)
			}
			output.PrettyFormat(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func newProjectCommand(opts *rootOptions) *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Print the compound premium growth projection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			if months == 0 {
				months = s.conf.Simulation.ProjectionMonths
			}

			active := s.conf.ActiveScenarios()
			if len(active) == 0 {
				return errors.New("no active scenarios to project")
			}
			resolved, err := s.conf.Resolve(active[0])
			if err != nil {
				return fmt.Errorf("scenario %q: %w", active[0].Name, err)
			}

			compounder, err := strategy.NewPremiumCompounder(s.logger, resolved.Parameters, resolved.Policy)
			if err != nil {
				return err
			}
			rows, err := compounder.ProjectGrowth(months)
			if err != nil {
				return err
			}

			s.logger.Info("projection computed",
				zap.String("op", "main.project"),
				zap.String("scenario", resolved.Name),
				zap.Int("months", months),
			)

			if s.format == constants.OutputFormatCSV {
				return output.ProjectionCSV(cmd.OutOrStdout(), rows)
			}
			output.ProjectionPretty(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&months, "months", 0, "projection horizon in months (defaults to simulation.projectionMonths)")
	return cmd
}

func newScenariosCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "Print share accumulation and appreciation tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			results, err := planner.GetForecasts(s.logger, *s.conf)
			if err != nil {
				return err
			}

			if s.format == constants.OutputFormatCSV {
				return output.ScenariosCSV(cmd.OutOrStdout(), results)
			}
			output.ScenariosPretty(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		serverConfigPath string
		address          string
		maxUploadSize    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plan API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}
			if maxUploadSize != "" {
				size, err := server.ParseSize(maxUploadSize)
				if err != nil {
					return err
				}
				if size > 0 {
					cfg.MaxUploadSize = size
				}
			}

			logger, err := initializeLogger(cfg.Logging, opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := server.NewHandler(logger, cfg.MaxUploadSize, version)
			if err := server.Run(ctx, logger, cfg, handler); err != nil {
				logger.Error("server stopped with error",
					zap.String("op", "main.serve"),
					zap.Error(err),
				)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flags.StringVar(&address, "address", "", "listen address override")
	flags.StringVar(&maxUploadSize, "max-upload-size", "", "maximum configuration upload size, e.g. 256K or 10M")
	return cmd
}
