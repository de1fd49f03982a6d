package main

import (
	"context"

	"turva/internal/repository"
	"turva/internal/utils"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Account administration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "deactivate <email>",
		Short: "Disable an account and revoke all of its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetActive(cmd, args[0], false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "activate <email>",
		Short: "Re-enable a deactivated account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetActive(cmd, args[0], true)
		},
	})
	return cmd
}

func runSetActive(cmd *cobra.Command, email string, active bool) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := setActive(cmd.Context(), st.users, st.sessions, email, active); err != nil {
		return err
	}
	log.WithField("active", active).Info("account status changed")
	cmd.Printf("%s active=%t\n", utils.NormalizeEmail(email), active)
	return nil
}

// setActive flips the account flag. Deactivation also deletes the account's
// sessions rather than waiting for the next request to evict them.
func setActive(ctx context.Context, users repository.UserRepository, sessions repository.SessionRepository, email string, active bool) error {
	user, err := users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return oops.Code("USER_LOOKUP_FAILED").Wrap(err)
	}
	if user == nil {
		return oops.Code("USER_NOT_FOUND").With("email", email).Errorf("no account for %s", email)
	}
	if err := users.SetActive(ctx, user.ID, active); err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("user_id", user.ID).Wrap(err)
	}
	if !active {
		if err := sessions.DeleteAllByUser(ctx, user.ID); err != nil {
			return oops.Code("SESSION_REVOKE_FAILED").With("user_id", user.ID).Wrap(err)
		}
	}
	return nil
}
