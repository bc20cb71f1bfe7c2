package roster

import "github.com/nmdr-club/courtsync/internal/game"

// RosterStore is the durable roster, attendance and per-day stats
// layer. Dates are YYYY-MM-DD strings throughout.
type RosterStore interface {
	// CreateMember registers a member. The id is a slug derived from
	// name, birth year and gender, so re-registering the same person
	// returns ErrMemberExists.
	CreateMember(name string, birthYear int, gender game.Gender, skill game.Skill) (*Member, error)
	GetMember(id string) (*Member, error)
	// ListMembers returns all non-deleted members sorted by name.
	ListMembers() ([]*Member, error)
	UpdateMemberSkill(id string, skill game.Skill) error
	// DeleteMember soft-deletes so historical attendance keeps its
	// reference.
	DeleteMember(id string) error

	// MarkMemberAttendance checks a member in for the night. Calling it
	// again updates the shuttle count.
	MarkMemberAttendance(date, memberID string, shuttles int) (*AttendanceRecord, error)
	// MarkGuestAttendance checks in a walk-in guest under a day-scoped
	// id.
	MarkGuestAttendance(date, name string, skill game.Skill, gender game.Gender, shuttles int) (*AttendanceRecord, error)
	GetAttendance(date string) ([]*AttendanceRecord, error)
	RemoveAttendance(date, participantID string) error

	// AvailablePlayers projects the night's attendance into game
	// players, games-played counters included.
	AvailablePlayers(date string) ([]game.Player, error)

	// RecordGamePlayed bumps the day's counter by one for each given
	// player.
	RecordGamePlayed(date string, players []game.Player) error
	GetPlayerStats(date string) ([]*PlayerStats, error)
}
