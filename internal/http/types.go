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

type Server struct {
	Keeper         *game.Keeper
	Roster         roster.RosterStore
	Settings       settings.Store
	Local          localstore.Store
	Syncer         syncer.Syncer
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Notifier       notifier.Notifier
	Cfg            config.Config
	Router         *http.ServeMux

	now func() time.Time
}

// stateResponse is the full game state plus its sync identity.
type stateResponse struct {
	Courts           []game.Court  `json:"courts"`
	Teams            []game.Team   `json:"teams"`
	AvailablePlayers []game.Player `json:"available_players"`
	Version          int64         `json:"version"`
	DeviceID         string        `json:"device_id"`
}

type createTeamRequest struct {
	PlayerIDs []string `json:"player_ids"`
}

type assignCourtRequest struct {
	CourtID int    `json:"court_id"`
	TeamID  string `json:"team_id"`
}

type finishGameRequest struct {
	CourtID int `json:"court_id"`
}

type createMemberRequest struct {
	Name      string      `json:"name"`
	BirthYear int         `json:"birth_year"`
	Gender    game.Gender `json:"gender"`
	Skill     game.Skill  `json:"skill"`
}

type updateSkillRequest struct {
	MemberID string     `json:"member_id"`
	Skill    game.Skill `json:"skill"`
}

type markAttendanceRequest struct {
	MemberID string      `json:"member_id,omitempty"`
	Guest    bool        `json:"guest,omitempty"`
	Name     string      `json:"name,omitempty"`
	Skill    game.Skill  `json:"skill,omitempty"`
	Gender   game.Gender `json:"gender,omitempty"`
	Shuttles int         `json:"shuttles"`
}

type resolveConflictRequest struct {
	ConflictID string `json:"conflict_id"`
	Choice     string `json:"choice"`
}
