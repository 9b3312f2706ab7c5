package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/kistconnect/portal/core/user"
	"github.com/kistconnect/portal/storage/database"
)

var (
	gooseRunFunc = database.RunMigration // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sqlx.DB
	usrSvc *user.Service
}

func (cli *commandLine) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "KistConnect administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.AddCommand(cli.migrateCommand(), cli.setRoleCommand())
	return root
}

func (cli *commandLine) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a migration command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return errHelp
			}
			return cli.migrate(args)
		},
	}
}

func (cli *commandLine) setRoleCommand() *cobra.Command {
	var identityID, role string
	cmd := &cobra.Command{
		Use:   "setrole",
		Short: "Override the role of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if identityID == "" || role == "" {
				_ = cmd.Help()
				return errHelp
			}
			return cli.setRole(cmd, identityID, role)
		},
	}
	cmd.Flags().StringVar(&identityID, "identity", "", "The user's identity provider ID")
	cmd.Flags().StringVar(&role, "role", "", "The new role: teacher | student")
	return cmd
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCommand()
	root.SetArgs(args[1:])
	return root.Execute()
}

func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}

func (cli *commandLine) setRole(cmd *cobra.Command, identityID, role string) error {
	usr, err := cli.usrSvc.SetRole(context.Background(), identityID, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now a %s\n", usr.Name, usr.IdentityID, usr.Role)
	return nil
}
