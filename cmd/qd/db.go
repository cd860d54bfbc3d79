package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/qadesk/internal/config"
	"github.com/zulandar/qadesk/internal/db"
	"golang.org/x/term"
	"gorm.io/gorm"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the qadesk database",
		Long:  "Migrates the requirement, test plan and execution tables and seeds the sample requirements and plans.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

// backendName describes where the data lives, for messages.
func backendName(b config.BackendConfig) string {
	if b.Driver == config.DriverSQLite {
		return fmt.Sprintf("sqlite %s", b.Path)
	}
	return fmt.Sprintf("%s %s@%s:%d", b.Driver, b.Database, b.Host, b.Port)
}

func connectBackend(cmd *cobra.Command, configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	gormDB, err := db.Connect(context.Background(), cfg.Backend)
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s\n", backendName(cfg.Backend))
	return cfg, gormDB, nil
}

func closeDB(gormDB *gorm.DB) {
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := connectBackend(cmd, configPath)
	if err != nil {
		return err
	}
	defer closeDB(gormDB)
	return migrateAndSeed(cmd, gormDB, "initialized")
}

func migrateAndSeed(cmd *cobra.Command, gormDB *gorm.DB, verb string) error {
	out := cmd.OutOrStdout()

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	n, err := db.SeedRequirements(gormDB)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d requirements\n", n)

	n, err = db.SeedPlans(gormDB)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d test plans\n", n)

	fmt.Fprintf(out, "\nqadesk database %s successfully.\n", verb)
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and re-initialize the qadesk tables",
		Long: `Drops every qadesk table, then migrates and seeds again.

Asks for confirmation unless --yes is given. Without a terminal on stdin
the command refuses to run unless --yes is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, yes)
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	name := backendName(cfg.Backend)

	if !skipConfirm {
		ok, err := confirmReset(cmd, name)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	gormDB, err := db.Connect(context.Background(), cfg.Backend)
	if err != nil {
		return err
	}
	defer closeDB(gormDB)
	fmt.Fprintf(out, "Connected to %s\n", name)

	if err := db.DropAll(gormDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Dropped all qadesk tables")

	return migrateAndSeed(cmd, gormDB, "reset and re-initialized")
}

// confirmReset asks for a typed "yes". A non-terminal stdin is refused so
// that a piped script cannot wipe data by accident.
func confirmReset(cmd *cobra.Command, name string) (bool, error) {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal; pass --yes to reset %s", name)
	}

	fmt.Fprintf(out, "WARNING: This will permanently delete all qadesk data in %s.\n", name)
	fmt.Fprintln(out, "This action cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes", nil
	}
	return false, nil
}
