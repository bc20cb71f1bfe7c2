package game

import (
	"fmt"
	"time"
)

// Skill is the club's seven-grade ordinal skill ladder, strongest first.
type Skill string

const (
	SkillS Skill = "S"
	SkillA Skill = "A"
	SkillB Skill = "B"
	SkillC Skill = "C"
	SkillD Skill = "D"
	SkillE Skill = "E"
	SkillF Skill = "F"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// CourtStatus is the lifecycle state of a single court.
type CourtStatus string

const (
	CourtIdle     CourtStatus = "idle"
	CourtPlaying  CourtStatus = "playing"
	CourtFinished CourtStatus = "finished"
)

// PlayerStatus is derived from the snapshot, never persisted.
type PlayerStatus string

const (
	PlayerAvailable PlayerStatus = "available"
	PlayerWaiting   PlayerStatus = "waiting"
	PlayerPlaying   PlayerStatus = "playing"
)

// Player is a club member or day guest who checked in today.
type Player struct {
	ID               string `json:"id" msgpack:"id"`
	Name             string `json:"name" msgpack:"name"`
	Skill            Skill  `json:"skill" msgpack:"skill"`
	Gender           Gender `json:"gender" msgpack:"gender"`
	IsGuest          bool   `json:"is_guest" msgpack:"is_guest"`
	GamesPlayedToday int    `json:"games_played_today" msgpack:"games_played_today"`
}

// Team is a doubles four queued to play. Insertion order in the
// teams slice is queue order.
type Team struct {
	ID        string    `json:"id" msgpack:"id"`
	Players   []Player  `json:"players" msgpack:"players"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
}

// Court is a physical play area. Team and StartedAt are set iff the
// court is playing.
type Court struct {
	ID        int         `json:"id" msgpack:"id"`
	Status    CourtStatus `json:"status" msgpack:"status"`
	Team      *Team       `json:"team,omitempty" msgpack:"team,omitempty"`
	StartedAt *time.Time  `json:"started_at,omitempty" msgpack:"started_at,omitempty"`
}

// Snapshot is the full game-state value at one point in time. Version
// is the optimistic-concurrency token, strictly increasing within a
// device's own history.
type Snapshot struct {
	Courts           []Court   `json:"courts" msgpack:"courts"`
	Teams            []Team    `json:"teams" msgpack:"teams"`
	AvailablePlayers []Player  `json:"available_players" msgpack:"available_players"`
	Version          int64     `json:"version" msgpack:"version"`
	DeviceID         string    `json:"device_id" msgpack:"device_id"`
	LastUpdated      time.Time `json:"last_updated" msgpack:"last_updated"`
}

// TeamSize is the doubles format: every team holds exactly four players.
const TeamSize = 4

// NewTeamID returns a time-based team identifier.
func NewTeamID(now time.Time) string {
	return fmt.Sprintf("team-%d", now.UnixMilli())
}

// DefaultCourts returns n idle courts numbered 1..n.
func DefaultCourts(n int) []Court {
	courts := make([]Court, 0, n)
	for i := 1; i <= n; i++ {
		courts = append(courts, Court{ID: i, Status: CourtIdle})
	}
	return courts
}

// StatusOf derives a player's status by scanning the waiting teams and
// the courts. It is a pure function of the snapshot.
func StatusOf(playerID string, courts []Court, teams []Team) PlayerStatus {
	for _, c := range courts {
		if c.Team == nil {
			continue
		}
		for _, p := range c.Team.Players {
			if p.ID == playerID {
				return PlayerPlaying
			}
		}
	}
	for _, t := range teams {
		for _, p := range t.Players {
			if p.ID == playerID {
				return PlayerWaiting
			}
		}
	}
	return PlayerAvailable
}
