package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"piaopiao-backend-go/internal/bot"
	"piaopiao-backend-go/internal/card"
	"piaopiao-backend-go/internal/config"
	"piaopiao-backend-go/internal/db"
	"piaopiao-backend-go/internal/logging"
	"piaopiao-backend-go/internal/messaging"
	"piaopiao-backend-go/internal/services"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const conversationTTL = 30 * time.Minute

var (
	cfg    config.Config
	logger *zap.Logger
	flush  func()
)

var rootCmd = &cobra.Command{
	Use:           "piaopiao",
	Short:         "Project assistant chat bot: webhook server and report pushes",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg = config.Load()
		var err error
		logger, flush, err = logging.New(logging.Options{
			Dir:           cfg.LogDir,
			Level:         cfg.LogLevel,
			MaxSizeMB:     cfg.LogMaxSizeMB,
			RetentionDays: cfg.LogRetentionDays,
		})
		if err != nil {
			return fmt.Errorf("logger setup failed: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if flush != nil {
			flush()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, pushWeeklyCmd, pushSummaryCmd, issueTokenCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			flush()
		}
		os.Exit(1)
	}
}

type app struct {
	db  *sqlx.DB
	bot *bot.Bot
}

// openApp wires storage, reports and transport shared by every command that
// talks to the database.
func openApp(ctx context.Context) (*app, error) {
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	layout, err := card.LoadLayout(cfg.CardLayoutPath)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	var transport messaging.Transport = messaging.LogTransport{Logger: logger}
	if cfg.ChannelAccessToken != "" {
		line, err := messaging.NewLineTransport(cfg.ChannelAccessToken, cfg.FetchTimeout)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		transport = line
	} else {
		logger.Warn("CHANNEL_ACCESS_TOKEN not set, messages will only be logged")
	}

	store := services.NewStore(database, cfg.FetchTimeout)
	reports := services.NewAggregator(store, services.AggregateOptions{
		ScopeRepliesToProject:   cfg.ScopeRepliesToProject,
		CountEmptyTasksComplete: cfg.CountEmptyTasksComplete,
	})
	b := bot.New(bot.Options{
		Reports:       reports,
		Projects:      services.NewProjectService(store),
		Conversations: services.NewMemoryConversations(conversationTTL),
		Transport:     transport,
		Layout:        layout,
		JoinURL:       cfg.JoinSuccessURL,
		Logger:        logger,
	})
	return &app{db: database, bot: b}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}
