package cli

import (
	"context"
	"errors"
	"fmt"
	"logistics-route-service/internal/adapters/repositories"
	"logistics-route-service/internal/config"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "dbtool",
		Short:         "Administer the logistics route store",
		Long:          "dbtool applies schema migrations and inspects or cancels delivery routes directly in the configured store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newRoutesCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

func (o *rootOptions) openStore(ctx context.Context) (*repositories.Store, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	store, err := repositories.OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// openMigratedStore opens the store and fails when the schema is missing.
func (o *rootOptions) openMigratedStore(ctx context.Context) (*repositories.Store, error) {
	store, err := o.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.CheckSchema(ctx); err != nil {
		store.Close()
		if errors.Is(err, repositories.ErrSchemaNotInitialized) {
			return nil, fmt.Errorf("%w: run `dbtool migrate` first", err)
		}
		return nil, err
	}
	return store, nil
}
