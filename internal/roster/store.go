package roster

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nmdr-club/courtsync/internal/game"
)

type store struct {
	db  *sql.DB
	now func() time.Time
	mu  sync.RWMutex
}

// New creates a RosterStore over the service database.
func New(db *sql.DB) RosterStore {
	return &store{db: db, now: time.Now}
}

// NewWithClock is New with an injected clock. Used in tests.
func NewWithClock(db *sql.DB, now func() time.Time) RosterStore {
	return &store{db: db, now: now}
}

// memberID builds the slug id, e.g. "anne-holm-1989-f". Name collisions
// across different birth years stay distinct.
func memberID(name string, birthYear int, gender game.Gender) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return fmt.Sprintf("%s-%d-%s", slug, birthYear, strings.ToLower(string(gender)))
}

func (s *store) CreateMember(name string, birthYear int, gender game.Gender, skill game.Skill) (*Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member := &Member{
		ID:        memberID(name, birthYear, gender),
		Name:      strings.TrimSpace(name),
		BirthYear: birthYear,
		Gender:    gender,
		Skill:     skill,
		CreatedAt: s.now(),
	}
	if member.Name == "" {
		return nil, fmt.Errorf("member name is required")
	}

	res, err := s.db.Exec(`
		INSERT INTO members (id, name, name_lower, birth_year, gender, skill, created_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO NOTHING
	`, member.ID, member.Name, strings.ToLower(member.Name), member.BirthYear, member.Gender, member.Skill, member.CreatedAt.Unix())
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrMemberExists
	}
	log.Info("Member registered", "id", member.ID, "skill", member.Skill)
	return member, nil
}

func (s *store) GetMember(id string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, name, birth_year, gender, skill, created_at
		FROM members
		WHERE id = ? AND deleted = 0
	`, id)
	return scanMember(row)
}

func (s *store) ListMembers() ([]*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, birth_year, gender, skill, created_at
		FROM members
		WHERE deleted = 0
		ORDER BY name_lower
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			log.Error("Failed to scan member row", "error", err)
			continue
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (s *store) UpdateMemberSkill(id string, skill game.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE members SET skill = ? WHERE id = ? AND deleted = 0", skill, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *store) DeleteMember(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE members SET deleted = 1 WHERE id = ? AND deleted = 0", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMemberNotFound
	}
	log.Info("Member removed", "id", id)
	return nil
}

func (s *store) MarkMemberAttendance(date, memberID string, shuttles int) (*AttendanceRecord, error) {
	if shuttles < 0 || shuttles > MaxShuttles {
		return nil, ErrShuttleCount
	}
	member, err := s.GetMember(memberID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := &AttendanceRecord{
		Date:            date,
		ParticipantID:   member.ID,
		ParticipantType: ParticipantMember,
		Name:            member.Name,
		Skill:           member.Skill,
		Gender:          member.Gender,
		BirthYear:       member.BirthYear,
		Shuttles:        shuttles,
	}
	return s.upsertAttendance(record)
}

func (s *store) MarkGuestAttendance(date, name string, skill game.Skill, gender game.Gender, shuttles int) (*AttendanceRecord, error) {
	if shuttles < 0 || shuttles > MaxShuttles {
		return nil, ErrShuttleCount
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("guest name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var guests int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM attendance WHERE date = ? AND participant_type = ?",
		date, ParticipantGuest,
	).Scan(&guests); err != nil {
		return nil, err
	}

	record := &AttendanceRecord{
		Date:            date,
		ParticipantID:   fmt.Sprintf("guest-%s-%d", date, guests+1),
		ParticipantType: ParticipantGuest,
		Name:            strings.TrimSpace(name),
		Skill:           skill,
		Gender:          gender,
		Shuttles:        shuttles,
	}
	return s.upsertAttendance(record)
}

func (s *store) upsertAttendance(record *AttendanceRecord) (*AttendanceRecord, error) {
	res, err := s.db.Exec(`
		INSERT INTO attendance (date, participant_id, participant_type, name, skill, gender, birth_year, shuttles)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, participant_id) DO UPDATE SET
			shuttles = excluded.shuttles,
			skill = excluded.skill
	`, record.Date, record.ParticipantID, record.ParticipantType, record.Name, record.Skill, record.Gender, record.BirthYear, record.Shuttles)
	if err != nil {
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		record.ID = id
	}
	log.Info("Attendance marked", "date", record.Date, "participant", record.ParticipantID, "shuttles", record.Shuttles)
	return record, nil
}

func (s *store) GetAttendance(date string) ([]*AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, date, participant_id, participant_type, name, skill, gender, birth_year, shuttles
		FROM attendance
		WHERE date = ?
		ORDER BY id
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*AttendanceRecord
	for rows.Next() {
		var record AttendanceRecord
		var birthYear sql.NullInt64
		if err := rows.Scan(&record.ID, &record.Date, &record.ParticipantID, &record.ParticipantType,
			&record.Name, &record.Skill, &record.Gender, &birthYear, &record.Shuttles); err != nil {
			log.Error("Failed to scan attendance row", "error", err)
			continue
		}
		record.BirthYear = int(birthYear.Int64)
		records = append(records, &record)
	}
	return records, rows.Err()
}

func (s *store) RemoveAttendance(date, participantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM attendance WHERE date = ? AND participant_id = ?", date, participantID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotCheckedIn
	}
	return nil
}

func (s *store) AvailablePlayers(date string) ([]game.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT a.participant_id, a.participant_type, a.name, a.skill, a.gender,
		       COALESCE(ps.games_played, 0)
		FROM attendance a
		LEFT JOIN player_stats ps ON ps.player_id = a.participant_id AND ps.date = a.date
		WHERE a.date = ?
		ORDER BY a.id
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []game.Player
	for rows.Next() {
		var player game.Player
		var participantType ParticipantType
		if err := rows.Scan(&player.ID, &participantType, &player.Name, &player.Skill, &player.Gender, &player.GamesPlayedToday); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		player.IsGuest = participantType == ParticipantGuest
		players = append(players, player)
	}
	return players, rows.Err()
}

func (s *store) RecordGamePlayed(date string, players []game.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO player_stats (player_id, player_name, player_type, date, games_played, last_updated)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(player_id, date) DO UPDATE SET
			games_played = games_played + 1,
			last_updated = excluded.last_updated
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := s.now().Unix()
	for _, player := range players {
		playerType := ParticipantMember
		if player.IsGuest {
			playerType = ParticipantGuest
		}
		if _, err := stmt.Exec(player.ID, player.Name, playerType, date, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording game for %s: %w", player.ID, err)
		}
	}
	return tx.Commit()
}

func (s *store) GetPlayerStats(date string) ([]*PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT player_id, player_name, player_type, date, games_played, last_updated
		FROM player_stats
		WHERE date = ?
		ORDER BY games_played DESC, player_name
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*PlayerStats
	for rows.Next() {
		var st PlayerStats
		var lastUpdated int64
		if err := rows.Scan(&st.PlayerID, &st.PlayerName, &st.PlayerType, &st.Date, &st.GamesPlayed, &lastUpdated); err != nil {
			log.Error("Failed to scan stats row", "error", err)
			continue
		}
		st.LastUpdated = time.Unix(lastUpdated, 0)
		stats = append(stats, &st)
	}
	return stats, rows.Err()
}

func scanMember(scanner interface{ Scan(...any) error }) (*Member, error) {
	var member Member
	var createdAt int64
	err := scanner.Scan(&member.ID, &member.Name, &member.BirthYear, &member.Gender, &member.Skill, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	member.CreatedAt = time.Unix(createdAt, 0)
	return &member, nil
}
