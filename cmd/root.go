package cmd

import (
	"fmt"
	"os"

	"github.com/Shashank-1177/SBFood/config"
	"github.com/Shashank-1177/SBFood/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sbfoods",
	Short: "SB Foods food ordering API",
	Long: `sbfoods serves the SB Foods REST API: restaurant and menu browsing, carts,
checkout and the order lifecycle. Without a subcommand it runs the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml); SBFOOD_* env vars override it")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, createAdminCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what every command needs: config, logger and database.
type app struct {
	cfg *config.Config
	log zerolog.Logger
	db  *gorm.DB
}

func setup() (*app, error) {
	cfg, err := config.Load(viper.New(), cfgFile)
	if err != nil {
		return nil, err
	}
	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Pretty)
	db, err := config.OpenDB(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("driver", cfg.DB.Driver).Msg("database connected")
	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing database")
		}
	}
}
