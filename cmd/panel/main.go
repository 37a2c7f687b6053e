package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gym-panel/internal/models/config"
	"gym-panel/migrations"
	database "gym-panel/pkg"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "gym-panel",
	Short:         "Панель управления спортзалом",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTP панель, realtime и Telegram бот тренеров",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
				return &fxevent.ZapLogger{Logger: logger.Named("fx")}
			}),
			appModule,
		)
		app.Run()
		return app.Err()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Применить SQL схему",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		db, err := database.NewPostgres(cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		n, err := migrations.Apply(ctx, db, cfg.Database.Schema, logger)
		if err != nil {
			return err
		}
		logger.Info("🏁 Миграции применены", zap.Int("count", n), zap.String("schema", cfg.Database.Schema))
		return nil
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
