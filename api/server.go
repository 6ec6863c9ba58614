package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jub0bs/fcors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/oybek/wellness/entity"
	"github.com/oybek/wellness/model"
)

type SessionService interface {
	ListPublished(ctx context.Context) ([]entity.Session, error)
	ListOwned(ctx context.Context, ownerID string) ([]entity.Session, error)
	GetOwned(ctx context.Context, ownerID, sessionID string) (entity.Session, error)
	SaveDraft(ctx context.Context, ownerID string, in model.SessionInput) (entity.Session, error)
	Publish(ctx context.Context, ownerID string, in model.SessionInput) (entity.Session, error)
	DeleteOwned(ctx context.Context, ownerID, sessionID string) error
}

type AuthService interface {
	Register(ctx context.Context, c model.Credentials) (string, entity.User, error)
	Login(ctx context.Context, c model.Credentials) (string, entity.User, error)
	Authenticate(ctx context.Context, token string) (string, error)
}

type Config struct {
	CORSOrigin     string
	AuthRateLimit  int
	RequestTimeout time.Duration
	Logger         zerolog.Logger
	Registry       *prometheus.Registry
}

const maxBodyBytes = 1 << 20

type Server struct {
	sessions SessionService
	auth     AuthService
	cfg      Config
	log      zerolog.Logger
	metrics  *metrics
}

func NewServer(sessions SessionService, auth AuthService, cfg Config) *Server {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.AuthRateLimit <= 0 {
		cfg.AuthRateLimit = 20
	}
	return &Server{
		sessions: sessions,
		auth:     auth,
		cfg:      cfg,
		log:      cfg.Logger,
		metrics:  newMetrics(cfg.Registry),
	}
}

// Handler returns the full HTTP surface including CORS and request logging.
func (s *Server) Handler() (http.Handler, error) {
	cors, err := s.cors()
	if err != nil {
		return nil, err
	}
	return s.logRequests(cors(s.Router())), nil
}

func (s *Server) cors() (func(http.Handler) http.Handler, error) {
	methods := fcors.WithMethods(
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
	)
	headers := fcors.WithRequestHeaders("Authorization", "Content-Type")
	if s.cfg.CORSOrigin == "" || s.cfg.CORSOrigin == "*" {
		return fcors.AllowAccess(fcors.FromAnyOrigin(), methods, headers)
	}
	return fcors.AllowAccess(fcors.FromOrigins(s.cfg.CORSOrigin), methods, headers)
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument, s.limitBody, s.withTimeout)

	authLimit := rateLimit(s.cfg.AuthRateLimit, time.Minute)
	protected := func(h http.HandlerFunc) http.Handler { return s.requireAuth(h) }

	r.HandleFunc("/api/health", s.health).Methods(http.MethodGet)
	r.Handle("/api/auth/register", authLimit(http.HandlerFunc(s.register))).Methods(http.MethodPost)
	r.Handle("/api/auth/login", authLimit(http.HandlerFunc(s.login))).Methods(http.MethodPost)

	r.HandleFunc("/api/sessions", s.listPublished).Methods(http.MethodGet)
	r.Handle("/api/sessions/my-sessions", protected(s.listOwned)).Methods(http.MethodGet)
	r.Handle("/api/sessions/my-sessions/save-draft", protected(s.saveDraft)).Methods(http.MethodPost)
	r.Handle("/api/sessions/my-sessions/publish", protected(s.publish)).Methods(http.MethodPost)
	r.Handle("/api/sessions/my-sessions/{id}", protected(s.getOwned)).Methods(http.MethodGet)
	r.Handle("/api/sessions/my-sessions/{id}", protected(s.deleteOwned)).Methods(http.MethodDelete)

	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusNotFound, "Can't find "+r.URL.Path+" on this server")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Message: "Server is healthy"})
}
