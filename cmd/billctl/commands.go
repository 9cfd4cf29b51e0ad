package main

import (
	"fmt"

	"github.com/sangkips/brokerbill-api/internal/application/service"
	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sangkips/brokerbill-api/internal/infrastructure/database"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/brokerbill-api/pkg/dateutil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the billing tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return database.AutoMigrate(a.DB, log)
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the daily sweep once",
	Long: `Ensures fiscal periods for every firm, auto-issues year-end bills when
BILLING_AUTO_BILL is set and drops expired idempotency keys. Safe to run
repeatedly and alongside the API's own scheduler.`,
	Example: `  billctl sweep
  billctl sweep --date 2025-03-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateFlag(cmd, "date", false)
		if err != nil {
			return err
		}
		today := dateutil.Today()
		if date != nil {
			today = *date
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Sweeper().RunOnce(cmd.Context(), today)
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]interface{}{
			"date":    dateutil.Format(result.Date),
			"locked":  result.Locked,
			"firms":   result.Firms,
			"issued":  result.Issued,
			"skipped": result.Skipped,
			"failed":  result.Failed,
			"purged":  result.Purged,
		})
	},
}

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a party bill",
	Example: `  billctl issue --firm <uuid> --party <uuid> --from 2024-04-01 --to 2025-03-31 --fy <uuid>
  billctl issue --firm <uuid> --party <uuid> --from 2024-04-01 --to 2024-04-30 --brokerage 25 --number 101`,
	RunE: func(cmd *cobra.Command, args []string) error {
		firmID, err := uuidFlag(cmd, "firm", true)
		if err != nil {
			return err
		}
		partyID, err := uuidFlag(cmd, "party", true)
		if err != nil {
			return err
		}
		periodID, err := uuidFlag(cmd, "fy", false)
		if err != nil {
			return err
		}
		from, err := dateFlag(cmd, "from", true)
		if err != nil {
			return err
		}
		to, err := dateFlag(cmd, "to", true)
		if err != nil {
			return err
		}
		billDate, err := dateFlag(cmd, "date", false)
		if err != nil {
			return err
		}

		input := &service.IssueInvoiceInput{
			FirmID:  *firmID,
			Scope:   entity.ScopeOf(periodID),
			PartyID: *partyID,
			From:    *from,
			To:      *to,
		}
		if billDate != nil {
			input.BillDate = *billDate
		}
		input.BillNo, _ = cmd.Flags().GetString("number")
		if raw, _ := cmd.Flags().GetString("brokerage"); raw != "" {
			rate, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("invalid --brokerage: %w", err)
			}
			input.Brokerage = &rate
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		bill, err := a.Services.Invoice.IssueInvoice(cmd.Context(), input)
		if err != nil {
			return err
		}
		_, comp, err := a.Services.Invoice.GetInvoice(cmd.Context(), bill.FirmID, bill.ID)
		if err != nil {
			return err
		}
		return printJSON(cmd, response.InvoiceDetailResponse{
			Invoice:     response.NewInvoiceResponse(bill),
			Computation: response.NewComputationResponse(comp),
		})
	},
}

var agingCmd = &cobra.Command{
	Use:   "aging",
	Short: "Print the receivables aging report of a firm",
	RunE: func(cmd *cobra.Command, args []string) error {
		firmID, err := uuidFlag(cmd, "firm", true)
		if err != nil {
			return err
		}
		partyID, err := uuidFlag(cmd, "party", false)
		if err != nil {
			return err
		}
		asOf, err := dateFlag(cmd, "as-of", false)
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Services.Receivables.Aging(cmd.Context(), &service.AgingInput{
			FirmID:  *firmID,
			AsOf:    asOf,
			PartyID: partyID,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, response.NewAgingResponse(report))
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token for a firm",
	RunE: func(cmd *cobra.Command, args []string) error {
		firmID, err := uuidFlag(cmd, "firm", true)
		if err != nil {
			return err
		}
		user, _ := cmd.Flags().GetString("user")
		if user == "" {
			return fmt.Errorf("--user is required")
		}
		if cfg.App.Env == "production" {
			return fmt.Errorf("refusing to mint tokens in production")
		}

		token, err := newJWTManager().GenerateAccessToken(*firmID, user)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	sweepCmd.Flags().String("date", "", "Run as if today were this date (YYYY-MM-DD)")

	issueCmd.Flags().String("firm", "", "Firm ID")
	issueCmd.Flags().String("party", "", "Party ID")
	issueCmd.Flags().String("from", "", "First trade date (YYYY-MM-DD)")
	issueCmd.Flags().String("to", "", "Last trade date (YYYY-MM-DD)")
	issueCmd.Flags().String("fy", "", "Fiscal period ID; omit for an unscoped bill")
	issueCmd.Flags().String("date", "", "Bill date (YYYY-MM-DD, default today)")
	issueCmd.Flags().String("brokerage", "", "Brokerage rate override per unit")
	issueCmd.Flags().String("number", "", "Requested bill number")

	agingCmd.Flags().String("firm", "", "Firm ID")
	agingCmd.Flags().String("party", "", "Limit to one party")
	agingCmd.Flags().String("as-of", "", "Report date (YYYY-MM-DD, default today)")

	tokenCmd.Flags().String("firm", "", "Firm ID")
	tokenCmd.Flags().String("user", "", "User the token is issued to")
}
