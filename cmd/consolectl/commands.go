package main

import (
	"context"
	"fmt"

	"github.com/nimada80/plusp/internal/logger"
	"github.com/nimada80/plusp/internal/models"
	"github.com/spf13/cobra"
)

// Reconciler runs reconciliation passes inline
type Reconciler interface {
	ReconcileAll(ctx context.Context) (*models.ReconcileReport, error)
	ReconcileChannel(ctx context.Context, name string) (*models.ReconcileReport, error)
}

// SuperAdminCreator creates super admin accounts
type SuperAdminCreator interface {
	CreateSuperAdmin(ctx context.Context, actor string, req *models.CreateSuperAdminRequest) (*models.SuperAdmin, error)
}

// console bundles the services behind the operator commands
type console struct {
	reconciler  Reconciler
	superAdmins SuperAdminCreator
}

// cliActor is recorded as created_by for accounts bootstrapped from the command line
const cliActor = "consolectl"

func newRootCmd(load func() (*console, error)) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "consolectl",
		Short: "Operator tooling for the console backend.",
		Long: `consolectl runs maintenance tasks against the record store directly.

It reads the same environment as the API server (RECORD_STORE_URL, SERVICE_ROLE_KEY, ...).`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	rootCmd.AddCommand(newRepairCmd(load), newSuperAdminCmd(load))
	return rootCmd
}

func newRepairCmd(load func() (*console, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "repair [channel-name]",
		Short: "Restore user channel lists from channel authorised-user lists.",
		Long: `repair adds every channel back to the channel list of each user it authorises.
Without an argument every channel is processed.`,
		Example: "consolectl repair\nconsolectl repair support",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}

			var report *models.ReconcileReport
			if len(args) == 1 {
				report, err = c.reconciler.ReconcileChannel(cmd.Context(), args[0])
			} else {
				report, err = c.reconciler.ReconcileAll(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "channels scanned: %d\n", report.ChannelsScanned)
			fmt.Fprintf(out, "channels skipped: %d\n", report.ChannelsSkipped)
			fmt.Fprintf(out, "users updated:    %d\n", report.UsersUpdated)
			for _, id := range report.Failures {
				fmt.Fprintf(out, "failed user:      %s\n", id)
			}
			if len(report.Failures) > 0 {
				return fmt.Errorf("%d users could not be updated", len(report.Failures))
			}
			return nil
		},
	}
}

func newSuperAdminCmd(load func() (*console, error)) *cobra.Command {
	superAdminCmd := &cobra.Command{
		Use:   "superadmin",
		Short: "Manage super admin accounts.",
	}

	var (
		username  string
		password  string
		userLimit int
	)
	createCmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a super admin account.",
		Example: "consolectl superadmin create --username root --password 'long-password' --user-limit 0",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}

			req := &models.CreateSuperAdminRequest{Username: username, Password: password, UserLimit: &userLimit}

			admin, err := c.superAdmins.CreateSuperAdmin(cmd.Context(), cliActor, req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created super admin %q (id %d, user limit %d)\n", admin.Username, admin.ID, admin.UserLimit)
			return nil
		},
	}
	createCmd.Flags().StringVar(&username, "username", "", "login name (stored lower-case)")
	createCmd.Flags().StringVar(&password, "password", "", "password (at least 8 characters)")
	createCmd.Flags().IntVar(&userLimit, "user-limit", 0, "maximum number of users the admin may create (default 0, unlimited)")
	createCmd.MarkFlagRequired("username")
	createCmd.MarkFlagRequired("password")

	superAdminCmd.AddCommand(createCmd)
	return superAdminCmd
}
