package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/nmdr-club/courtsync/internal/game"
	"github.com/nmdr-club/courtsync/internal/remote"
	"github.com/nmdr-club/courtsync/internal/roster"
	"github.com/nmdr-club/courtsync/internal/settings"
	"github.com/nmdr-club/courtsync/internal/syncer"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) StateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courts, teams, players := s.Keeper.State()
		resp := stateResponse{
			Courts:           courts,
			Teams:            teams,
			AvailablePlayers: players,
			DeviceID:         s.Local.DeviceID(),
		}
		if current := s.Local.Current(); current != nil {
			resp.Version = current.Version
		}
		s.respondJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) TeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req createTeamRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			team, err := s.Keeper.CreateTeam(req.PlayerIDs)
			if err != nil {
				s.gameError(w, err)
				return
			}
			s.respondJSON(w, http.StatusCreated, team)
		case http.MethodDelete:
			teamID := r.URL.Query().Get("team_id")
			if teamID == "" {
				http.Error(w, "team_id is required", http.StatusBadRequest)
				return
			}
			if err := s.Keeper.DeleteTeam(teamID); err != nil {
				s.gameError(w, err)
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Team %s deleted", teamID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) AssignCourtHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assignCourtRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := s.Keeper.AssignTeamToCourt(req.CourtID, req.TeamID); err != nil {
			s.gameError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Team %s assigned to court %d", req.TeamID, req.CourtID)
	}
}

func (s *Server) FinishGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		var req finishGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		participants, err := s.Keeper.FinishGame(req.CourtID)
		if err != nil {
			s.gameError(w, err)
			return
		}

		date := s.today()
		if isDryRun {
			log.Info("[Dry Run] Would have recorded game", "court", req.CourtID, "players", len(participants))
		} else if err := s.Roster.RecordGamePlayed(date, participants); err != nil {
			// The in-memory counters already moved; the durable ones
			// catch up on the next finished game.
			log.Error("Failed to record game in durable stats", "error", err)
		}
		s.respondJSON(w, http.StatusOK, participants)
	}
}

func (s *Server) RefreshPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Roster.AvailablePlayers(s.today())
		if err != nil {
			log.Error("Failed to load available players", "error", err)
			http.Error(w, "Failed to load available players", http.StatusInternalServerError)
			return
		}
		s.Keeper.SetAvailablePlayers(players)
		s.respondJSON(w, http.StatusOK, players)
	}
}

func (s *Server) ClearStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear local game state")
		if err := s.Local.Clear(); err != nil {
			log.Error("Failed to clear local state", "error", err)
			http.Error(w, "Failed to clear local state", http.StatusInternalServerError)
			return
		}
		s.Keeper.Restore(&game.Snapshot{Courts: game.DefaultCourts(s.Cfg.CourtsCount)})
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Local state cleared!")
	}
}

func (s *Server) SyncHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.Syncer.SyncNow(r.Context())
		switch {
		case errors.Is(err, syncer.ErrSyncInProgress):
			http.Error(w, "Sync already in progress", http.StatusConflict)
		case errors.Is(err, syncer.ErrOffline):
			http.Error(w, "Device is offline", http.StatusServiceUnavailable)
		case err != nil:
			log.Error("Manual sync failed", "error", err)
			http.Error(w, "Sync failed", http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "Sync completed.")
		}
	}
}

func (s *Server) SyncStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, s.Syncer.Status())
	}
}

func (s *Server) ConflictsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conflicts := s.Syncer.Status().Conflicts
		if conflicts == nil {
			conflicts = []syncer.ConflictRecord{}
		}
		s.respondJSON(w, http.StatusOK, conflicts)
	}
}

func (s *Server) ResolveConflictHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveConflictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		err := s.Syncer.Resolve(r.Context(), req.ConflictID, syncer.Choice(req.Choice))
		switch {
		case errors.Is(err, syncer.ErrConflictNotFound):
			http.Error(w, "Conflict not found", http.StatusNotFound)
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			// The resolved snapshot becomes the working state.
			if current := s.Local.Current(); current != nil {
				s.Keeper.Restore(current)
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Conflict %s resolved with %s", req.ConflictID, req.Choice)
		}
	}
}

func (s *Server) MembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			members, err := s.Roster.ListMembers()
			if err != nil {
				log.Error("Failed to list members", "error", err)
				http.Error(w, "Failed to list members", http.StatusInternalServerError)
				return
			}
			if members == nil {
				members = []*roster.Member{}
			}
			s.respondJSON(w, http.StatusOK, members)
		case http.MethodPost:
			var req createMemberRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			member, err := s.Roster.CreateMember(req.Name, req.BirthYear, req.Gender, req.Skill)
			if errors.Is(err, roster.ErrMemberExists) {
				http.Error(w, "Member already exists", http.StatusConflict)
				return
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			s.respondJSON(w, http.StatusCreated, member)
		case http.MethodDelete:
			memberID := r.URL.Query().Get("member_id")
			if memberID == "" {
				http.Error(w, "member_id is required", http.StatusBadRequest)
				return
			}
			if err := s.Roster.DeleteMember(memberID); err != nil {
				s.rosterError(w, err)
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Member %s removed", memberID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) UpdateSkillHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateSkillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := s.Roster.UpdateMemberSkill(req.MemberID, req.Skill); err != nil {
			s.rosterError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Member %s skill set to %s", req.MemberID, req.Skill)
	}
}

func (s *Server) AttendanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			date = s.today()
		}
		switch r.Method {
		case http.MethodGet:
			records, err := s.Roster.GetAttendance(date)
			if err != nil {
				log.Error("Failed to load attendance", "error", err)
				http.Error(w, "Failed to load attendance", http.StatusInternalServerError)
				return
			}
			if records == nil {
				records = []*roster.AttendanceRecord{}
			}
			s.respondJSON(w, http.StatusOK, records)
		case http.MethodPost:
			var req markAttendanceRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			var record *roster.AttendanceRecord
			var err error
			if req.Guest {
				record, err = s.Roster.MarkGuestAttendance(date, req.Name, req.Skill, req.Gender, req.Shuttles)
			} else {
				record, err = s.Roster.MarkMemberAttendance(date, req.MemberID, req.Shuttles)
			}
			if err != nil {
				s.rosterError(w, err)
				return
			}
			s.respondJSON(w, http.StatusCreated, record)
		case http.MethodDelete:
			participantID := r.URL.Query().Get("participant_id")
			if participantID == "" {
				http.Error(w, "participant_id is required", http.StatusBadRequest)
				return
			}
			if err := s.Roster.RemoveAttendance(date, participantID); err != nil {
				s.rosterError(w, err)
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Attendance removed for %s", participantID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) PlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			date = s.today()
		}
		stats, err := s.Roster.GetPlayerStats(date)
		if err != nil {
			log.Error("Failed to load player stats", "error", err)
			http.Error(w, "Failed to load player stats", http.StatusInternalServerError)
			return
		}
		if stats == nil {
			stats = []*roster.PlayerStats{}
		}
		s.respondJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) SettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg, err := s.Settings.Get()
			if err != nil {
				log.Error("Failed to load settings", "error", err)
				http.Error(w, "Failed to load settings", http.StatusInternalServerError)
				return
			}
			s.respondJSON(w, http.StatusOK, cfg)
		case http.MethodPut, http.MethodPost:
			var cfg settings.Settings
			if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			if err := s.Settings.Set(cfg); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			// The court overview follows the configured count.
			s.Keeper.ResizeCourts(cfg.CourtsCount)
			s.respondJSON(w, http.StatusOK, cfg)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) today() string {
	return remote.TodayKey(s.now())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// gameError maps domain sentinels to HTTP statuses.
func (s *Server) gameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrTeamNotFound), errors.Is(err, game.ErrCourtNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, game.ErrCourtOccupied), errors.Is(err, game.ErrCourtIdle):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (s *Server) rosterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roster.ErrMemberNotFound), errors.Is(err, roster.ErrNotCheckedIn):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, roster.ErrMemberExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
