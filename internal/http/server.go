package httpapi

import (
	"context"
	"net/http"

	"piaopiao-backend-go/internal/config"
	"piaopiao-backend-go/internal/messaging"
	"piaopiao-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Dispatcher answers webhook events and pushes reports.
type Dispatcher interface {
	HandleEvents(ctx context.Context, events []messaging.Event)
	PushSummary(ctx context.Context, projectID, groupID string) error
}

type Server struct {
	DB         *sqlx.DB
	Config     config.Config
	Dispatcher Dispatcher
	Tokens     services.TokenService
	Logger     *zap.Logger

	parseEvents func(r *http.Request) ([]messaging.Event, error)
}

func NewServer(db *sqlx.DB, cfg config.Config, dispatcher Dispatcher, logger *zap.Logger) *Server {
	secret := cfg.ChannelSecret
	return &Server{
		DB:         db,
		Config:     cfg,
		Dispatcher: dispatcher,
		Tokens:     services.TokenService{Secret: []byte(cfg.SummaryAPISecret), Issuer: TokenIssuer},
		Logger:     logger,
		parseEvents: func(r *http.Request) ([]messaging.Event, error) {
			return messaging.ParseWebhook(secret, r)
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.Logger))
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", s.Health)
	r.Post("/callback", s.Callback)
	r.With(RequirePushToken(s.Tokens)).Post("/send_project_summary", s.SendProjectSummary)
	return r
}
