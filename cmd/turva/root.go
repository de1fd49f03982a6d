package main

import (
	"turva/config"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var envFile string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "turva",
		Short:        "Turva clinical safety platform API",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewWorkerCmd())
	cmd.AddCommand(NewSessionsCmd())
	cmd.AddCommand(NewUsersCmd())

	return cmd
}

func loadRuntime() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return config.Config{}, nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return cfg, logger, nil
}
