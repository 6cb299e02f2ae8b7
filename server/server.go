package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/sanctyr/internal/config"
	"github.com/jrsteele09/sanctyr/token"
	"github.com/jrsteele09/sanctyr/token/jwt"
	"github.com/jrsteele09/sanctyr/token/refresh"
	"github.com/jrsteele09/sanctyr/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const limiterIdleTimeout = 5 * time.Minute

// Repos are the stores the server reads and writes.
type Repos struct {
	Users         users.UserRepo
	RefreshTokens refresh.Repo
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	repos    Repos
	logger   zerolog.Logger
	registry prometheus.Registerer
	gatherer prometheus.Gatherer
	metrics  *httpMetrics

	creator   *jwt.Creator
	inspector *jwt.Inspector
	revoked   *token.InMemoryRevokedTokenCache
	refresh   *refresh.Manager
	limiter   *RateLimiter

	demoPassword string
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithLogger sets the logger (defaults to the global zerolog logger)
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry registers the server metrics with reg and serves reg on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
		s.gatherer = reg
	}
}

// New builds the local API server and seeds the demo member.
func New(cfg config.Config, repos Repos, options ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[Server New] config is required")
	}
	if repos.Users == nil || repos.RefreshTokens == nil {
		return nil, fmt.Errorf("[Server New] user and refresh token repos are required")
	}

	signer, err := token.NewHMACSigner(cfg.GetJWTSecret())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create signer: %w", err)
	}
	revoked := token.NewInMemoryRevokedTokenCache()

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		repos:     repos,
		logger:    log.Logger,
		registry:  prometheus.DefaultRegisterer,
		gatherer:  prometheus.DefaultGatherer,
		creator:   jwt.NewCreator(cfg, signer),
		inspector: jwt.NewInspector(cfg.GetIssuer(), signer, revoked),
		revoked:   revoked,
		refresh:   refresh.NewManager(repos.RefreshTokens, cfg),
	}
	for _, opt := range options {
		opt(s)
	}
	s.metrics = newHTTPMetrics(s.registry)
	if cfg.GetEnableRateLimiting() {
		perSecond, burst := cfg.GetAuthRateLimit()
		s.limiter = NewRateLimiter(perSecond, burst)
	}

	if err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// DemoPassword is the password the demo member was seeded with.
func (s *Server) DemoPassword() string {
	return s.demoPassword
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

// RunCleanup evicts expired revocations and idle rate limiters every interval
// until ctx is done.
func (s *Server) RunCleanup(ctx context.Context, interval time.Duration) {
	if s.limiter != nil {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s.limiter.Cleanup(limiterIdleTimeout)
				}
			}
		}()
	}
	token.RunCleanup(ctx, s.revoked, interval)
}
