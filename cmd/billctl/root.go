package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/app"
	"github.com/sangkips/brokerbill-api/internal/config"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
	"github.com/sangkips/brokerbill-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "billctl",
	Short: "Operate the brokerage billing engine from the command line",
	Long: `billctl runs maintenance and billing operations against the same
database the API uses. Connection settings come from .env or the environment
(DB_DRIVER, DB_HOST, DB_NAME, REDIS_ADDR, ...).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		decimal.MarshalJSONWithoutQuotes = true
		cfg = config.Load()
		log = app.NewLogger(cfg)
	},
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd, sweepCmd, issueCmd, agingCmd, tokenCmd)
}

// openApp connects to storage; the caller must Close it
func openApp(cmd *cobra.Command) (*app.App, error) {
	return app.New(cmd.Context(), cfg, log)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func uuidFlag(cmd *cobra.Command, name string, required bool) (*uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		if required {
			return nil, fmt.Errorf("--%s is required", name)
		}
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &id, nil
}

func dateFlag(cmd *cobra.Command, name string, required bool) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		if required {
			return nil, fmt.Errorf("--%s is required", name)
		}
		return nil, nil
	}
	d, err := dateutil.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s, use YYYY-MM-DD: %w", name, err)
	}
	return &d, nil
}

func newJWTManager() *utils.JWTManager {
	return utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
}
