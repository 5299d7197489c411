package main

import (
	"context"
	"fmt"
	"os"

	"fieldbook/config"
	"fieldbook/internal/database"
	"fieldbook/internal/logger"
	"fieldbook/internal/models"
	"fieldbook/internal/service"

	"github.com/spf13/cobra"
)

func main() {
	logger.InitLoggerTo(os.Stderr)

	a := &app{open: openGateway}
	if err := a.execute(a.rootCommand()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// backend is the store the CLI drives. *database.Gateway implements it.
type backend interface {
	service.FieldStore
	SeedFields(ctx context.Context, fields []models.Field) (int, error)
	Close(ctx context.Context) error
}

type opener func(ctx context.Context, cfg config.Config) (backend, error)

func openGateway(ctx context.Context, cfg config.Config) (backend, error) {
	gw, err := database.Open(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	return gw, nil
}

type app struct {
	open       opener
	configPath string
	store      backend
	svc        *service.FieldService
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fieldctl",
		Short:         "Manage football field records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.connect(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "./config", "Directory containing config.yaml")

	cmd.AddCommand(
		newListCommand(a),
		newGetCommand(a),
		newCreateCommand(a),
		newUpdateCommand(a),
		newDeleteCommand(a),
		newSearchCommand(a),
		newFilterCommand(a),
		newExportCommand(a),
		newReportCommand(a),
		newSeedCommand(a),
	)
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (a *app) connect(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	logger.SetLogLevel(&cfg)

	store, err := a.open(commandContext(cmd), cfg)
	if err != nil {
		return err
	}
	a.store = store
	a.svc = service.New(store, nil)
	return nil
}

// execute runs cmd and then closes the store, also when the command failed.
func (a *app) execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if cerr := a.close(commandContext(cmd)); err == nil {
		err = cerr
	}
	return err
}

func (a *app) close(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close(ctx)
	a.store = nil
	return err
}
