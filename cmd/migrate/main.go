package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"go-leave/db"
	"go-leave/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Apply or roll back the go-leave database schema",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB, dir string) error {
			return goose.UpContext(ctx, conn, dir)
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB, dir string) error {
			return goose.DownContext(ctx, conn, dir)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of every migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, conn *sql.DB, dir string) error {
			return goose.StatusContext(ctx, conn, dir)
		})
	},
}

func init() {
	rootCmd.AddCommand(upCmd, downCmd, statusCmd)
}

func withDB(ctx context.Context, fn func(ctx context.Context, conn *sql.DB, dir string) error) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	conn, err := goose.OpenDBWithDriver("pgx", cfg.DSN())
	if err != nil {
		return fmt.Errorf("goose: open db: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(db.Migrations)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	zap.L().Info("running migrations", zap.String("db", cfg.Name), zap.String("dir", cfg.MigrationsDir))
	return fn(ctx, conn, cfg.MigrationsDir)
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("migrate failed", zap.Error(err))
		os.Exit(1)
	}
}
