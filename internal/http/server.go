package http

import (
	"net/http"
	"time"

	"github.com/nmdr-club/courtsync/internal/config"
	"github.com/nmdr-club/courtsync/internal/game"
	"github.com/nmdr-club/courtsync/internal/localstore"
	"github.com/nmdr-club/courtsync/internal/metrics"
	"github.com/nmdr-club/courtsync/internal/notifier"
	"github.com/nmdr-club/courtsync/internal/roster"
	"github.com/nmdr-club/courtsync/internal/settings"
	"github.com/nmdr-club/courtsync/internal/syncer"
)

func NewServer(
	keeper *game.Keeper,
	rosterStore roster.RosterStore,
	settingsStore settings.Store,
	localStore localstore.Store,
	sync syncer.Syncer,
	metricsSvc metrics.Metrics,
	metricsHandler http.Handler,
	notifier notifier.Notifier,
	cfg config.Config,
) *Server {
	server := &Server{
		Keeper:         keeper,
		Roster:         rosterStore,
		Settings:       settingsStore,
		Local:          localStore,
		Syncer:         sync,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Notifier:       notifier,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		now:            time.Now,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an
	// authentication middleware.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), requestMiddleware))
	s.Router.Handle("/state", Chain(s.StateHandler(), requestMiddleware))
	s.Router.Handle("/state/teams", Chain(s.TeamsHandler(), requestMiddleware))
	s.Router.Handle("/state/courts/assign", Chain(s.AssignCourtHandler(), requestMiddleware))
	s.Router.Handle("/state/courts/finish", Chain(s.FinishGameHandler(), requestMiddleware))
	s.Router.Handle("/state/players/refresh", Chain(s.RefreshPlayersHandler(), requestMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStateHandler(), requestMiddleware))
	s.Router.Handle("/sync", Chain(s.SyncHandler(), requestMiddleware))
	s.Router.Handle("/sync/status", Chain(s.SyncStatusHandler(), requestMiddleware))
	s.Router.Handle("/conflicts", Chain(s.ConflictsHandler(), requestMiddleware))
	s.Router.Handle("/conflicts/resolve", Chain(s.ResolveConflictHandler(), requestMiddleware))
	s.Router.Handle("/members", Chain(s.MembersHandler(), requestMiddleware))
	s.Router.Handle("/members/skill", Chain(s.UpdateSkillHandler(), requestMiddleware))
	s.Router.Handle("/attendance", Chain(s.AttendanceHandler(), requestMiddleware))
	s.Router.Handle("/stats", Chain(s.PlayerStatsHandler(), requestMiddleware))
	s.Router.Handle("/settings", Chain(s.SettingsHandler(), requestMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
