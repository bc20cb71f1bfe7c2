package roster

import (
	"fmt"
	"sync"
	"time"

	"github.com/nmdr-club/courtsync/internal/game"
)

// MockStore is an in-memory RosterStore for testing. It is safe for
// concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AvailablePlayersFunc func(date string) ([]game.Player, error)
	RecordGamePlayedFunc func(date string, players []game.Player) error

	members    map[string]*Member
	attendance map[string][]*AttendanceRecord
	stats      map[string]map[string]*PlayerStats

	// Call records
	RecordGamePlayedCalls []struct {
		Date    string
		Players []game.Player
	}
}

// NewMockStore creates a new mock instance.
func NewMockStore() *MockStore {
	return &MockStore{
		members:    make(map[string]*Member),
		attendance: make(map[string][]*AttendanceRecord),
		stats:      make(map[string]map[string]*PlayerStats),
	}
}

var _ RosterStore = (*MockStore)(nil)

func (m *MockStore) CreateMember(name string, birthYear int, gender game.Gender, skill game.Skill) (*Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	member := &Member{
		ID:        memberID(name, birthYear, gender),
		Name:      name,
		BirthYear: birthYear,
		Gender:    gender,
		Skill:     skill,
		CreatedAt: time.Now(),
	}
	if _, ok := m.members[member.ID]; ok {
		return nil, ErrMemberExists
	}
	m.members[member.ID] = member
	return member, nil
}

func (m *MockStore) GetMember(id string) (*Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	member, ok := m.members[id]
	if !ok {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

func (m *MockStore) ListMembers() ([]*Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	members := make([]*Member, 0, len(m.members))
	for _, member := range m.members {
		members = append(members, member)
	}
	return members, nil
}

func (m *MockStore) UpdateMemberSkill(id string, skill game.Skill) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	member, ok := m.members[id]
	if !ok {
		return ErrMemberNotFound
	}
	member.Skill = skill
	return nil
}

func (m *MockStore) DeleteMember(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.members[id]; !ok {
		return ErrMemberNotFound
	}
	delete(m.members, id)
	return nil
}

func (m *MockStore) MarkMemberAttendance(date, memberID string, shuttles int) (*AttendanceRecord, error) {
	member, err := m.GetMember(memberID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
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
	m.attendance[date] = append(m.attendance[date], record)
	return record, nil
}

func (m *MockStore) MarkGuestAttendance(date, name string, skill game.Skill, gender game.Gender, shuttles int) (*AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	guests := 0
	for _, record := range m.attendance[date] {
		if record.ParticipantType == ParticipantGuest {
			guests++
		}
	}
	record := &AttendanceRecord{
		Date:            date,
		ParticipantID:   fmt.Sprintf("guest-%s-%d", date, guests+1),
		ParticipantType: ParticipantGuest,
		Name:            name,
		Skill:           skill,
		Gender:          gender,
		Shuttles:        shuttles,
	}
	m.attendance[date] = append(m.attendance[date], record)
	return record, nil
}

func (m *MockStore) GetAttendance(date string) ([]*AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*AttendanceRecord(nil), m.attendance[date]...), nil
}

func (m *MockStore) RemoveAttendance(date, participantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.attendance[date]
	for i, record := range records {
		if record.ParticipantID == participantID {
			m.attendance[date] = append(records[:i], records[i+1:]...)
			return nil
		}
	}
	return ErrNotCheckedIn
}

func (m *MockStore) AvailablePlayers(date string) ([]game.Player, error) {
	if m.AvailablePlayersFunc != nil {
		return m.AvailablePlayersFunc(date)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var players []game.Player
	for _, record := range m.attendance[date] {
		games := 0
		if byDay, ok := m.stats[date]; ok {
			if st, ok := byDay[record.ParticipantID]; ok {
				games = st.GamesPlayed
			}
		}
		players = append(players, game.Player{
			ID:               record.ParticipantID,
			Name:             record.Name,
			Skill:            record.Skill,
			Gender:           record.Gender,
			IsGuest:          record.ParticipantType == ParticipantGuest,
			GamesPlayedToday: games,
		})
	}
	return players, nil
}

func (m *MockStore) RecordGamePlayed(date string, players []game.Player) error {
	m.mu.Lock()
	m.RecordGamePlayedCalls = append(m.RecordGamePlayedCalls, struct {
		Date    string
		Players []game.Player
	}{date, players})
	fn := m.RecordGamePlayedFunc
	if fn == nil {
		if _, ok := m.stats[date]; !ok {
			m.stats[date] = make(map[string]*PlayerStats)
		}
		for _, player := range players {
			st, ok := m.stats[date][player.ID]
			if !ok {
				st = &PlayerStats{PlayerID: player.ID, PlayerName: player.Name, Date: date}
				m.stats[date][player.ID] = st
			}
			st.GamesPlayed++
			st.LastUpdated = time.Now()
		}
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(date, players)
	}
	return nil
}

func (m *MockStore) GetPlayerStats(date string) ([]*PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stats []*PlayerStats
	for _, st := range m.stats[date] {
		stats = append(stats, st)
	}
	return stats, nil
}
