package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-enquiry-service/auth"
	"github.com/jrsteele09/go-enquiry-service/clients"
	"github.com/jrsteele09/go-enquiry-service/enquiries"
	"github.com/jrsteele09/go-enquiry-service/internal/config"
	"github.com/jrsteele09/go-enquiry-service/internal/obs"
	"github.com/jrsteele09/go-enquiry-service/users"
)

// Repos are the stores the HTTP layer reads directly, outside the
// authorization flow.
type Repos struct {
	Users     users.Repo
	Enquiries enquiries.Repo
	Clients   clients.Repo
}

type Server struct {
	env       string // Environment ("DEV" or "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	auth      *auth.AuthorizationService
	repos     Repos
	metrics   *obs.Metrics
	startedAt time.Time
}

func New(ctx context.Context, config config.Config, authService *auth.AuthorizationService, repos Repos, metrics *obs.Metrics) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[Server New] authorization service is required")
	}
	if repos.Users == nil || repos.Enquiries == nil || repos.Clients == nil {
		return nil, errors.New("[Server New] users, enquiries and clients repos are required")
	}
	if metrics == nil {
		return nil, errors.New("[Server New] metrics are required")
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		auth:      authService,
		repos:     repos,
		metrics:   metrics,
		startedAt: time.Now(),
	}

	if err := s.InitialiseSystem(ctx); err != nil {
		return nil, fmt.Errorf("[Server New] failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
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
	if s.env != config.EnvDev {
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

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
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
