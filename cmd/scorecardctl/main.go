package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/scorecard-dashboard/internal/app"
	"github.com/yungbote/scorecard-dashboard/internal/domain"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

var (
	// Global flags
	verbose bool
	user    string
	timeout time.Duration

	core *app.Core

	// openCore builds the store and catalog from the environment. Tests swap it.
	openCore = func(verbose bool) (*app.Core, error) {
		if err := app.LoadDotEnv(); err != nil {
			return nil, err
		}
		level := "warn"
		if verbose {
			level = "debug"
		}
		log, err := logger.NewWithLevel("development", level)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		cfg, err := app.LoadConfig(log)
		if err != nil {
			return nil, err
		}
		return app.NewCore(log, cfg, nil)
	}
)

var rootCmd = &cobra.Command{
	Use:   "scorecardctl",
	Short: "Operate on saved policy scorecards",
	Long: `scorecardctl reads and writes the same scorecard store the dashboard uses.

Storage is selected from the environment exactly as the server does it
(ENVIRONMENT, DATA_BUCKET, DATA_PATH, FILESYSTEM, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if core != nil {
			return nil
		}
		c, err := openCore(verbose)
		if err != nil {
			return err
		}
		core = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if core != nil {
			core.Close()
			core.Log.Sync()
			core = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&user, "user", "u", domain.UnknownUser, "User recorded in saved metadata")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	saveCmd.Flags().StringVar(&saveName, "name", "", "Scorecard name (required)")
	saveCmd.Flags().StringVar(&saveDescription, "description", "", "Scorecard description")
	saveCmd.Flags().StringVar(&recordsPath, "records", "", "Records file with id, on_off and option columns (csv, xlsx, xls, json, yaml)")
	_ = saveCmd.MarkFlagRequired("name")
	_ = saveCmd.MarkFlagRequired("records")

	overwriteCmd.Flags().StringVar(&recordsPath, "records", "", "Records file with id, on_off and option columns")
	_ = overwriteCmd.MarkFlagRequired("records")

	priceCmd.Flags().StringVar(&lensName, "lens", string(domain.LensDomain), "Breakdown lens: domain or capability")
	compareCmd.Flags().StringVar(&lensName, "group-by", string(domain.LensDomain), "Grouping: domain, capability or package")
	compareCmd.Flags().StringVar(&pngPath, "png", "", "Also write the comparison treemap to this PNG file")

	catalogueCmd.AddCommand(catalogueExportCmd, catalogueImportCmd)
	rootCmd.AddCommand(listCmd, showCmd, saveCmd, overwriteCmd, archiveCmd, priceCmd, compareCmd, catalogueCmd)
}

// commandContext bounds a command by --timeout and cancels on interrupt.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
