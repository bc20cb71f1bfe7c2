package roster

import (
	"errors"
	"time"

	"github.com/nmdr-club/courtsync/internal/game"
)

// ParticipantType distinguishes club members from walk-in guests.
type ParticipantType string

const (
	ParticipantMember ParticipantType = "member"
	ParticipantGuest  ParticipantType = "guest"
)

// Member is a registered club member.
type Member struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	BirthYear int         `json:"birth_year"`
	Gender    game.Gender `json:"gender"`
	Skill     game.Skill  `json:"skill"`
	CreatedAt time.Time   `json:"created_at"`
}

// AttendanceRecord is one check-in for a club night. Guests carry their
// details inline since they have no member row.
type AttendanceRecord struct {
	ID              int64           `json:"id"`
	Date            string          `json:"date"`
	ParticipantID   string          `json:"participant_id"`
	ParticipantType ParticipantType `json:"participant_type"`
	Name            string          `json:"name"`
	Skill           game.Skill      `json:"skill"`
	Gender          game.Gender     `json:"gender"`
	BirthYear       int             `json:"birth_year,omitempty"`
	Shuttles        int             `json:"shuttles"`
}

// PlayerStats is the per-day games-played counter for one participant.
type PlayerStats struct {
	PlayerID    string          `json:"player_id"`
	PlayerName  string          `json:"player_name"`
	PlayerType  ParticipantType `json:"player_type"`
	Date        string          `json:"date"`
	GamesPlayed int             `json:"games_played"`
	LastUpdated time.Time       `json:"last_updated"`
}

// MaxShuttles bounds the per-night shuttle count a participant can buy.
const MaxShuttles = 5

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrMemberExists   = errors.New("member already exists")
	ErrShuttleCount   = errors.New("shuttle count out of range")
	ErrNotCheckedIn   = errors.New("participant not checked in")
)
