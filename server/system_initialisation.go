package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-enquiry-service/clients"
	"github.com/jrsteele09/go-enquiry-service/internal/config"
)

type systemStatus struct {
	Status        string    `json:"status"`
	App           string    `json:"app"`
	Env           string    `json:"env"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Time          time.Time `json:"time"`
}

// InitialiseSystem registers the clients listed in the clients file and
// logs where the flow endpoints live.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	seeds, err := config.LoadClientSeeds(s.config.GetClientsFile())
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to load clients: %w", err)
	}
	if err := clients.Seed(ctx, s.repos.Clients, seeds); err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to seed clients: %w", err)
	}

	registered, err := s.repos.Clients.List(ctx)
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to list clients: %w", err)
	}
	if len(registered) == 0 {
		log.Warn().Msg("no OAuth clients are registered; every /authorize request will be rejected")
	}

	baseURL := s.config.GetBaseURL()
	log.Info().
		Str("base_url", baseURL).
		Str("authorize", baseURL+RouteAuthorize).
		Str("token", baseURL+RouteToken).
		Str("userinfo", baseURL+RouteUserInfo).
		Int("clients", len(registered)).
		Msg("system configuration")
	for _, c := range registered {
		log.Debug().
			Str("client_id", c.ID).
			Bool("public", c.IsPublic()).
			Strs("redirect_uris", c.RedirectURIs).
			Msg("registered client")
	}
	return nil
}

// SystemStatus is a liveness probe.
func (s *Server) SystemStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		writeJSON(w, http.StatusOK, systemStatus{
			Status:        "ok",
			App:           s.config.GetAppName(),
			Env:           s.env,
			UptimeSeconds: int64(now.Sub(s.startedAt).Seconds()),
			Time:          now,
		})
	}
}
