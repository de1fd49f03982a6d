package main

import (
	"turva/internal/service"

	"github.com/spf13/cobra"
)

func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Session maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete every session whose expiry has passed",
		RunE:  runSessionsPrune,
	})
	return cmd
}

func runSessionsPrune(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	manager := service.NewSessionManager(st.sessions, service.RealClock{}, service.AuthConfig{
		SessionLifetime: cfg.App.SessionLifetime(),
	})
	deleted, err := manager.PruneExpired(cmd.Context())
	if err != nil {
		return err
	}
	log.WithField("deleted", deleted).Info("expired sessions pruned")
	cmd.Printf("Deleted %d expired sessions\n", deleted)
	return nil
}
