package main

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/atrule/invoicing/internal/config"
	"github.com/atrule/invoicing/internal/db"
	"github.com/atrule/invoicing/internal/logger"
	"github.com/atrule/invoicing/internal/mail"
	"github.com/atrule/invoicing/internal/server"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "invoicerd",
	Short: "Multi-tenant invoicing service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Missing .env is fine; real deployments set the environment directly.
		_ = godotenv.Load()
		cfg = config.Load()
		return logger.Setup(logger.LogConfig{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
			Output: "stdout",
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.Connect(db.Options{
			DSN:  cfg.DatabaseDSN,
			Seed: config.ParseBool("DB_SEED", false),
		})
		if err != nil {
			return err
		}

		smtpPort, err := strconv.Atoi(cfg.SMTPPort)
		if err != nil {
			smtpPort = 587
		}
		sender := mail.NewSMTPSender(cfg.SMTPHost, smtpPort, cfg.SenderEmail, cfg.SenderName, cfg.SenderPassword)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.Run(ctx, ":"+cfg.Port, server.NewRouter(conn, sender))
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply versioned schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		_, err := db.Connect(db.Options{
			DSN:           cfg.DatabaseDSN,
			MigrationsDir: dir,
		})
		if err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load currency and designation reference data",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.Connect(db.Options{DSN: cfg.DatabaseDSN})
		if err != nil {
			return err
		}
		if err := db.Seed(conn); err != nil {
			return err
		}
		log.Info().Msg("reference data seeded")
		return nil
	},
}

func init() {
	migrateCmd.Flags().String("dir", "migrations", "migrations directory")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}
