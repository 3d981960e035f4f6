package main

import (
	"errors"
	"fmt"
	"time"

	"piaopiao-backend-go/internal/db"
	httpapi "piaopiao-backend-go/internal/http"
	"piaopiao-backend-go/internal/migrations"
	"piaopiao-backend-go/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer database.Close()
		applied, err := migrations.Apply(cmd.Context(), database, logger)
		if err != nil {
			return err
		}
		logger.Info("migrations complete", zap.Int("applied", len(applied)))
		return nil
	},
}

var pushWeeklyGroup string

// pushWeeklyCmd is the scheduled weekly push, run from cron.
var pushWeeklyCmd = &cobra.Command{
	Use:   "push-weekly",
	Short: "Push this week's text report to a group",
	RunE: func(cmd *cobra.Command, args []string) error {
		group := pushWeeklyGroup
		if group == "" {
			group = cfg.WeeklyGroupID
		}
		if group == "" {
			return errors.New("no group: pass --group or set WEEKLY_GROUP_ID")
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return a.bot.PushWeekly(cmd.Context(), group)
	},
}

var (
	pushSummaryProject string
	pushSummaryGroup   string
)

var pushSummaryCmd = &cobra.Command{
	Use:   "push-summary",
	Short: "Push a project's summary card to a group",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return a.bot.PushSummary(cmd.Context(), pushSummaryProject, pushSummaryGroup)
	},
}

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Print a bearer token for POST /send_project_summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens := services.TokenService{Secret: []byte(cfg.SummaryAPISecret), Issuer: httpapi.TokenIssuer, TTL: tokenTTL}
		if !tokens.Enabled() {
			return errors.New("missing env var: SUMMARY_API_SECRET")
		}
		signed, _, err := tokens.CreatePushToken(tokenSubject, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), signed)
		return nil
	},
}

func init() {
	pushWeeklyCmd.Flags().StringVar(&pushWeeklyGroup, "group", "", "target group id (defaults to WEEKLY_GROUP_ID)")
	pushSummaryCmd.Flags().StringVar(&pushSummaryProject, "project", "", "project id")
	pushSummaryCmd.Flags().StringVar(&pushSummaryGroup, "group", "", "target group id")
	_ = pushSummaryCmd.MarkFlagRequired("project")
	_ = pushSummaryCmd.MarkFlagRequired("group")
	issueTokenCmd.Flags().StringVar(&tokenSubject, "subject", "scheduler", "token subject")
	issueTokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (0 means no expiry)")
}
