package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/subx/internal/database/migrations"
	"github.com/MrJamesThe3rd/subx/internal/importer"
	"github.com/MrJamesThe3rd/subx/internal/reconcile"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := migrations.Apply(cmd.Context(), e.db); err != nil {
				return err
			}

			fmt.Println("migrations applied")

			return nil
		},
	}
}

func reconcileCmd(e *env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Audit inventory, portfolios and referral rewards against the ownership ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := e.svc.Reconcile.Run(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")

				return enc.Encode(report)
			}

			printReport(report)

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}

func printReport(r *reconcile.Report) {
	fmt.Printf("plots checked: %d  users checked: %d  auto-fixed: %d  manual review: %d  referrals repaired: %d\n",
		r.PlotsChecked, r.UsersChecked, r.AutoFixed, r.ManualReview, r.ReferralsRepaired)

	if len(r.Discrepancies) > 0 {
		t := newTable("KIND", "SUBJECT", "EXPECTED", "ACTUAL", "ACTION")
		for _, d := range r.Discrepancies {
			t.Row(string(d.Kind), d.Subject, d.Expected, d.Actual, string(d.Action))
		}

		fmt.Println(t)
	}

	for _, msg := range r.Errors {
		fmt.Println("error:", msg)
	}
}

func expireCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Expire reservations whose hold has run out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := e.svc.Purchases.ExpireStale(cmd.Context())
			fmt.Printf("expired %d reservations\n", n)

			return err
		},
	}
}

func plotsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plots",
		Short: "Manage plot inventory",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List plots with their availability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			plots, err := e.svc.Plots.List(cmd.Context())
			if err != nil {
				return err
			}

			t := newTable("ID", "NAME", "TOTAL", "AVAILABLE", "SOLD %", "PRICE/SQM")
			for _, p := range plots {
				t.Row(p.ID.String(), p.Name, strconv.Itoa(p.TotalSqm), strconv.Itoa(p.AvailableSqm),
					p.SoldPercentage().StringFixed(2), p.PricePerSqm.StringFixed(2))
			}

			fmt.Println(t)

			return nil
		},
	})

	var dryRun bool

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create plots from a CSV or YAML register",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			format := importer.FormatFromFilename(args[0])

			if dryRun {
				params, err := e.svc.Importer.Parse(format, f)
				if err != nil {
					return err
				}

				for _, p := range params {
					fmt.Printf("%s\t%d sqm\t%s/sqm\n", p.Name, p.TotalSqm, p.PricePerSqm.StringFixed(2))
				}

				fmt.Printf("%d plots parsed, nothing written\n", len(params))

				return nil
			}

			plots, err := e.svc.Importer.Import(cmd.Context(), format, f)
			if err != nil {
				return err
			}

			fmt.Printf("imported %d plots\n", len(plots))

			return nil
		},
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the register without creating plots")

	cmd.AddCommand(importCmd)

	return cmd
}

func incidentsCmd(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "incidents",
		Short: "List confirmed payments that need manual review",
		RunE: func(cmd *cobra.Command, _ []string) error {
			incidents, err := e.svc.Purchases.ListIncidents(cmd.Context(), limit)
			if err != nil {
				return err
			}

			t := newTable("REFERENCE", "KIND", "DETAIL", "AT")
			for _, inc := range incidents {
				t.Row(inc.PaymentReference, string(inc.Kind), inc.Detail, inc.CreatedAt.Format("2006-01-02 15:04"))
			}

			fmt.Println(t)

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum incidents to show")

	return cmd
}

func rewardsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Referral reward payouts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <referrer-id>",
		Short: "List a referrer's rewards and wallet balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rewards, err := e.svc.Referrals.ListRewards(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			wallet, err := e.svc.Referrals.Wallet(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			t := newTable("ID", "REFERRED", "PURCHASE", "COMMISSION", "STATUS")
			for _, r := range rewards {
				t.Row(r.ID.String(), r.ReferredUserID, r.PurchaseReference, r.Commission.StringFixed(2), string(r.Status))
			}

			fmt.Println(t)
			fmt.Printf("wallet balance: %s\n", wallet.Balance.StringFixed(2))

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "pay <reward-id>",
		Short: "Record a reward payout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid reward id: %w", err)
			}

			reward, err := e.svc.Referrals.MarkPaid(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("paid %s to %s\n", reward.Commission.StringFixed(2), reward.ReferrerID)

			return nil
		},
	})

	return cmd
}
