package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	ErrTeamSize          = errors.New("a team needs exactly four players")
	ErrPlayerUnavailable = errors.New("player is already waiting or playing")
	ErrTeamNotFound      = errors.New("team not found")
	ErrCourtNotFound     = errors.New("court not found")
	ErrCourtOccupied     = errors.New("court already has a team playing")
	ErrCourtIdle         = errors.New("court has no game in progress")
)

// ChangeFunc is invoked after every successful mutation with copies of
// the new state. The keeper never blocks on it doing I/O; persistence
// and syncing live behind it.
type ChangeFunc func(courts []Court, teams []Team, players []Player)

// Keeper owns the in-memory game state for the current session. It is
// the single writer: all mutations go through it, and every mutation
// notifies the registered ChangeFunc.
type Keeper struct {
	mu       sync.Mutex
	courts   []Court
	teams    []Team
	players  []Player
	onChange ChangeFunc
	now      func() time.Time
}

// NewKeeper creates a keeper with n idle courts.
func NewKeeper(courtCount int, onChange ChangeFunc) *Keeper {
	return &Keeper{
		courts:   DefaultCourts(courtCount),
		onChange: onChange,
		now:      time.Now,
	}
}

// SetClock overrides the keeper's clock. Used in tests.
func (k *Keeper) SetClock(now func() time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.now = now
}

// Restore seeds the keeper from a persisted snapshot.
func (k *Keeper) Restore(snap *Snapshot) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.courts = append([]Court(nil), snap.Courts...)
	k.teams = append([]Team(nil), snap.Teams...)
	k.players = append([]Player(nil), snap.AvailablePlayers...)
	log.Info("Restored game state", "courts", len(k.courts), "teams", len(k.teams), "players", len(k.players))
}

// SetAvailablePlayers replaces the derived player pool, typically after
// an attendance refresh. Players already waiting or playing keep their
// team copies untouched.
func (k *Keeper) SetAvailablePlayers(players []Player) {
	k.mu.Lock()
	k.players = append([]Player(nil), players...)
	k.notifyLocked()
	k.mu.Unlock()
}

// State returns copies of the current courts, teams and players.
func (k *Keeper) State() (courts []Court, teams []Team, players []Player) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return copyCourts(k.courts), copyTeams(k.teams), append([]Player(nil), k.players...)
}

// PlayerStatus derives the status of a single player.
func (k *Keeper) PlayerStatus(playerID string) PlayerStatus {
	k.mu.Lock()
	defer k.mu.Unlock()
	return StatusOf(playerID, k.courts, k.teams)
}

// CreateTeam forms a team of exactly four available players and appends
// it to the waiting queue.
func (k *Keeper) CreateTeam(playerIDs []string) (Team, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(playerIDs) != TeamSize {
		return Team{}, fmt.Errorf("%w: got %d", ErrTeamSize, len(playerIDs))
	}

	members := make([]Player, 0, TeamSize)
	seen := make(map[string]bool, TeamSize)
	for _, id := range playerIDs {
		if seen[id] {
			return Team{}, fmt.Errorf("%w: duplicate player %s", ErrTeamSize, id)
		}
		seen[id] = true

		if StatusOf(id, k.courts, k.teams) != PlayerAvailable {
			return Team{}, fmt.Errorf("%w: %s", ErrPlayerUnavailable, id)
		}
		player, ok := k.findPlayer(id)
		if !ok {
			return Team{}, fmt.Errorf("player %s is not checked in today", id)
		}
		members = append(members, player)
	}

	team := Team{
		ID:        NewTeamID(k.now()),
		Players:   members,
		CreatedAt: k.now(),
	}
	k.teams = append(k.teams, team)
	log.Info("Team created", "teamID", team.ID, "queue_len", len(k.teams))
	k.notifyLocked()
	return team, nil
}

// DeleteTeam removes a waiting team from the queue.
func (k *Keeper) DeleteTeam(teamID string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i, t := range k.teams {
		if t.ID == teamID {
			k.teams = append(k.teams[:i], k.teams[i+1:]...)
			log.Info("Team deleted", "teamID", teamID)
			k.notifyLocked()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
}

// AssignTeamToCourt moves a waiting team onto an idle court. The team
// leaves the queue atomically with the assignment. Teams holding a
// player who is mid-game on another court are rejected.
func (k *Keeper) AssignTeamToCourt(courtID int, teamID string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	teamIdx := -1
	for i, t := range k.teams {
		if t.ID == teamID {
			teamIdx = i
			break
		}
	}
	if teamIdx == -1 {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	}
	team := k.teams[teamIdx]

	for _, p := range team.Players {
		if playingOn(p.ID, k.courts) {
			return fmt.Errorf("%w: %s", ErrPlayerUnavailable, p.ID)
		}
	}

	courtIdx := -1
	for i, c := range k.courts {
		if c.ID == courtID {
			courtIdx = i
			break
		}
	}
	if courtIdx == -1 {
		return fmt.Errorf("%w: %d", ErrCourtNotFound, courtID)
	}
	if k.courts[courtIdx].Team != nil {
		return fmt.Errorf("%w: %d", ErrCourtOccupied, courtID)
	}

	started := k.now()
	k.courts[courtIdx].Status = CourtPlaying
	k.courts[courtIdx].Team = &team
	k.courts[courtIdx].StartedAt = &started
	k.teams = append(k.teams[:teamIdx], k.teams[teamIdx+1:]...)

	log.Info("Team assigned to court", "courtID", courtID, "teamID", teamID)
	k.notifyLocked()
	return nil
}

// FinishGame ends the game on a court, returns its participants with
// their games-played counter already bumped, and leaves the court idle.
// The waiting queue is untouched.
func (k *Keeper) FinishGame(courtID int) ([]Player, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	courtIdx := -1
	for i, c := range k.courts {
		if c.ID == courtID {
			courtIdx = i
			break
		}
	}
	if courtIdx == -1 {
		return nil, fmt.Errorf("%w: %d", ErrCourtNotFound, courtID)
	}
	court := k.courts[courtIdx]
	if court.Team == nil {
		return nil, fmt.Errorf("%w: %d", ErrCourtIdle, courtID)
	}

	inTeam := make(map[string]bool, TeamSize)
	for _, p := range court.Team.Players {
		inTeam[p.ID] = true
	}
	for i := range k.players {
		if inTeam[k.players[i].ID] {
			k.players[i].GamesPlayedToday++
		}
	}

	participants := make([]Player, 0, TeamSize)
	for _, p := range court.Team.Players {
		p.GamesPlayedToday++
		participants = append(participants, p)
	}

	k.courts[courtIdx].Status = CourtIdle
	k.courts[courtIdx].Team = nil
	k.courts[courtIdx].StartedAt = nil

	log.Info("Game finished", "courtID", courtID, "players", len(participants))
	k.notifyLocked()
	return participants, nil
}

// ResizeCourts grows or shrinks the court set to n, keeping existing
// courts by id. New courts start idle.
func (k *Keeper) ResizeCourts(n int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if n == len(k.courts) {
		return
	}
	resized := make([]Court, 0, n)
	for i := 1; i <= n; i++ {
		kept := false
		for _, c := range k.courts {
			if c.ID == i {
				resized = append(resized, c)
				kept = true
				break
			}
		}
		if !kept {
			resized = append(resized, Court{ID: i, Status: CourtIdle})
		}
	}
	k.courts = resized
	log.Info("Courts resized", "count", n)
	k.notifyLocked()
}

func (k *Keeper) findPlayer(id string) (Player, bool) {
	for _, p := range k.players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// notifyLocked hands copies of the state to the change hook. Called
// with k.mu held; the hook must not call back into the keeper.
func (k *Keeper) notifyLocked() {
	if k.onChange == nil {
		return
	}
	k.onChange(copyCourts(k.courts), copyTeams(k.teams), append([]Player(nil), k.players...))
}

func playingOn(playerID string, courts []Court) bool {
	for _, c := range courts {
		if c.Team == nil {
			continue
		}
		for _, p := range c.Team.Players {
			if p.ID == playerID {
				return true
			}
		}
	}
	return false
}

func copyCourts(courts []Court) []Court {
	out := make([]Court, len(courts))
	copy(out, courts)
	for i := range out {
		if out[i].Team != nil {
			team := *out[i].Team
			team.Players = append([]Player(nil), team.Players...)
			out[i].Team = &team
		}
		if out[i].StartedAt != nil {
			started := *out[i].StartedAt
			out[i].StartedAt = &started
		}
	}
	return out
}

func copyTeams(teams []Team) []Team {
	out := make([]Team, len(teams))
	copy(out, teams)
	for i := range out {
		out[i].Players = append([]Player(nil), out[i].Players...)
	}
	return out
}
