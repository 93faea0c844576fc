// Command admin runs maintenance tasks against the library database:
// schema migration and bootstrapping accounts, including the first administrator.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gorm.io/gorm"

	"library-api/internal/core/config"
	"library-api/internal/core/database"
	"library-api/internal/core/logger"
	"library-api/internal/domain"
	"library-api/internal/repo"
	"library-api/internal/service"
	"library-api/pkg/utils"
)

type app struct {
	cfgPath string
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	flush   func()
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Library API maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", os.Getenv("CONFIG_PATH"), "config file")

	root.AddCommand(a.migrateCmd(), a.createUserCmd(), a.grantAdminCmd())
	return root
}

func (a *app) open() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log, a.flush = logger.New(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})

	a.db, err = database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             a.log,
	})
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	return nil
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.flush != nil {
		a.flush()
	}
}

func (a *app) users() *service.UserService {
	hasher := utils.NewBcryptHasher(a.cfg.Auth.BcryptCost)
	return service.NewUserService(repo.NewUserRepo(a.db), repo.NewRoleRepo(a.db), hasher, a.log)
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := database.Migrate(a.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func (a *app) createUserCmd() *cobra.Command {
	var (
		in      service.AccountData
		isAdmin bool
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account, optionally with the ADMIN role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Username == "" || in.Email == "" {
				return errors.New("--username and --email are required")
			}
			if in.Password == "" {
				pw, err := readPassword(cmd, "Password: ")
				if err != nil {
					return err
				}
				in.Password = pw
			}
			if in.Password == "" {
				return errors.New("password must not be empty")
			}

			ctx := cmd.Context()
			svc := a.users()
			u, err := svc.Save(ctx, in)
			if err != nil {
				return err
			}
			if isAdmin {
				if err := svc.GrantRole(ctx, u.ID, domain.RoleAdmin); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", u.ID, u.Username)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Username, "username", "", "login name")
	f.StringVar(&in.Name, "name", "", "display name")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.Password, "password", "", "password; prompted when omitted")
	f.BoolVar(&isAdmin, "admin", false, "grant the ADMIN role")
	return cmd
}

func (a *app) grantAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin <user-id>",
		Short: "Give an existing user the ADMIN role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			if err := a.users().GrantRole(cmd.Context(), id, domain.RoleAdmin); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d is now an administrator\n", id)
			return nil
		},
	}
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
// The password is kept as typed apart from the line ending.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		pw, err := readLine(in)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return pw, nil
	}
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// readLine returns the first line of r without its "\n" or "\r\n" ending.
// A final line without a newline is accepted.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}
