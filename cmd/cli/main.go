package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dvloznov/spend-insights/internal/config"
	"github.com/dvloznov/spend-insights/internal/logger"
)

var (
	cfg     *config.Config
	rootCmd = &cobra.Command{
		Use:   "spend-insights",
		Short: "Analyze purchase-card transaction workbooks",
		Long: `spend-insights reads a purchase-card transaction workbook, groups spend into
categories, derives findings and writes a multi-sheet Excel report.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-format", "", "log format (console, json); overrides LOG_FORMAT")
	rootCmd.PersistentFlags().String("categories", "", "YAML category catalog; overrides CATEGORIES_FILE")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(categoriesCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	cfg = config.Load()

	flags := cmd.Flags()
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}
	if v, _ := flags.GetString("categories"); v != "" {
		cfg.CategoriesFile = v
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	cmd.SetContext(logger.WithContext(cmd.Context(), cfg.Logger()))
	return nil
}
