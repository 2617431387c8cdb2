package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/minicrm/core/user"
	"github.com/trezcool/minicrm/storage/database"
)

const minPasswordLen = 6

var (
	readPasswordFunc = term.ReadPassword // mockable
	migrateFunc      = database.Migrate  // mockable

	errHelp        = errors.New("help provided")
	errPasswordLen = fmt.Errorf("password must have at least %d characters", minPasswordLen)
)

type commandLine struct {
	db     *sql.DB
	engine string
	usrSvc *user.Service
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "MiniCRM administration commands",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(cli.migrateCmd(), cli.addUserCmd(), cli.resetPasswordCmd())
	return root
}

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a database migration command",
		Long: `Run a goose migration command against the configured database.

Commands:
  up                   Migrate the DB to the most recent version available
  up-by-one            Migrate the DB up by 1
  up-to VERSION        Migrate the DB to a specific VERSION
  down                 Roll back the version by 1
  down-to VERSION      Roll back to a specific VERSION
  redo                 Re-run the latest migration
  reset                Roll back all migrations
  status               Dump the migration status for the current DB
  version              Print the current version of the database
  create NAME [sql|go] Creates new migration file with the current timestamp
  fix                  Apply sequential ordering to migrations`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return migrateFunc(cmd.Context(), cli.db, cli.engine, args[0], args[1:]...)
		},
	}
}

func (cli *commandLine) addUserCmd() *cobra.Command {
	var name, email string
	var isAdmin bool

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user or update an existing one; the password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			role := user.RoleUser
			if isAdmin {
				role = user.RoleAdmin
			}
			usr, err := cli.usrSvc.AddOrUpdate(cmd.Context(), name, email, pwd, role)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user %d (%s) saved with role %s\n", usr.ID, usr.Email, usr.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "The user's name (defaults to the email).")
	cmd.Flags().StringVar(&email, "email", "", "The user's email. The password will be prompted next.")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "Grant the admin role.")
	return cmd
}

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password; the new password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			return cli.usrSvc.ResetPassword(cmd.Context(), email, pwd)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "The user's email. The password will be prompted next.")
	return cmd
}

func promptPassword(cmd *cobra.Command) (string, error) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprint(out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		_ = cmd.Usage()
		return "", errHelp
	}
	if len(pwd) < minPasswordLen {
		return "", errPasswordLen
	}
	return string(pwd), nil
}

// run executes the command line; args do not include the program name.
func (cli *commandLine) run(ctx context.Context, args []string) error {
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
