package roster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmdr-club/courtsync/internal/database"
	"github.com/nmdr-club/courtsync/internal/game"
	"github.com/nmdr-club/courtsync/internal/roster"
)

const testDate = "2026-08-31"

func setupTestStore(t *testing.T) roster.RosterStore {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)

	return roster.New(db)
}

func TestCreateMember(t *testing.T) {
	store := setupTestStore(t)

	t.Run("creates with slug id", func(t *testing.T) {
		member, err := store.CreateMember("Anne Holm", 1989, game.GenderFemale, game.SkillB)
		require.NoError(t, err)
		assert.Equal(t, "anne-holm-1989-f", member.ID)
		assert.Equal(t, game.SkillB, member.Skill)
	})

	t.Run("same person twice is rejected", func(t *testing.T) {
		_, err := store.CreateMember("Anne Holm", 1989, game.GenderFemale, game.SkillC)
		assert.ErrorIs(t, err, roster.ErrMemberExists)
	})

	t.Run("same name different birth year is fine", func(t *testing.T) {
		member, err := store.CreateMember("Anne Holm", 2001, game.GenderFemale, game.SkillD)
		require.NoError(t, err)
		assert.Equal(t, "anne-holm-2001-f", member.ID)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		_, err := store.CreateMember("   ", 1990, game.GenderMale, game.SkillC)
		assert.Error(t, err)
	})
}

func TestListMembersExcludesDeleted(t *testing.T) {
	store := setupTestStore(t)

	a, err := store.CreateMember("Bo Jensen", 1975, game.GenderMale, game.SkillA)
	require.NoError(t, err)
	_, err = store.CreateMember("Carla Madsen", 1992, game.GenderFemale, game.SkillC)
	require.NoError(t, err)

	require.NoError(t, store.DeleteMember(a.ID))

	members, err := store.ListMembers()
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "carla-madsen-1992-f", members[0].ID)

	_, err = store.GetMember(a.ID)
	assert.ErrorIs(t, err, roster.ErrMemberNotFound)
	assert.ErrorIs(t, store.DeleteMember(a.ID), roster.ErrMemberNotFound)
}

func TestUpdateMemberSkill(t *testing.T) {
	store := setupTestStore(t)

	member, err := store.CreateMember("Bo Jensen", 1975, game.GenderMale, game.SkillC)
	require.NoError(t, err)

	require.NoError(t, store.UpdateMemberSkill(member.ID, game.SkillS))
	got, err := store.GetMember(member.ID)
	require.NoError(t, err)
	assert.Equal(t, game.SkillS, got.Skill)

	assert.ErrorIs(t, store.UpdateMemberSkill("nobody", game.SkillA), roster.ErrMemberNotFound)
}

func TestAttendance(t *testing.T) {
	store := setupTestStore(t)
	member, err := store.CreateMember("Bo Jensen", 1975, game.GenderMale, game.SkillA)
	require.NoError(t, err)

	t.Run("member check-in", func(t *testing.T) {
		record, err := store.MarkMemberAttendance(testDate, member.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, roster.ParticipantMember, record.ParticipantType)
		assert.Equal(t, 2, record.Shuttles)
	})

	t.Run("re-check-in updates shuttles", func(t *testing.T) {
		_, err := store.MarkMemberAttendance(testDate, member.ID, 4)
		require.NoError(t, err)

		records, err := store.GetAttendance(testDate)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 4, records[0].Shuttles)
	})

	t.Run("guests get day-scoped ids", func(t *testing.T) {
		first, err := store.MarkGuestAttendance(testDate, "Visiting Vera", game.SkillD, game.GenderFemale, 0)
		require.NoError(t, err)
		second, err := store.MarkGuestAttendance(testDate, "Walk-in Willy", game.SkillE, game.GenderMale, 1)
		require.NoError(t, err)
		assert.Equal(t, "guest-"+testDate+"-1", first.ParticipantID)
		assert.Equal(t, "guest-"+testDate+"-2", second.ParticipantID)
	})

	t.Run("shuttle count is bounded", func(t *testing.T) {
		_, err := store.MarkMemberAttendance(testDate, member.ID, 6)
		assert.ErrorIs(t, err, roster.ErrShuttleCount)
		_, err = store.MarkGuestAttendance(testDate, "Greedy Greta", game.SkillC, game.GenderFemale, -1)
		assert.ErrorIs(t, err, roster.ErrShuttleCount)
	})

	t.Run("unknown member cannot check in", func(t *testing.T) {
		_, err := store.MarkMemberAttendance(testDate, "nobody", 0)
		assert.ErrorIs(t, err, roster.ErrMemberNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, store.RemoveAttendance(testDate, member.ID))
		assert.ErrorIs(t, store.RemoveAttendance(testDate, member.ID), roster.ErrNotCheckedIn)

		records, err := store.GetAttendance(testDate)
		require.NoError(t, err)
		assert.Len(t, records, 2) // the guests stay
	})
}

func TestAvailablePlayersAndStats(t *testing.T) {
	store := setupTestStore(t)

	member, err := store.CreateMember("Bo Jensen", 1975, game.GenderMale, game.SkillA)
	require.NoError(t, err)
	_, err = store.MarkMemberAttendance(testDate, member.ID, 1)
	require.NoError(t, err)
	_, err = store.MarkGuestAttendance(testDate, "Visiting Vera", game.SkillD, game.GenderFemale, 0)
	require.NoError(t, err)

	players, err := store.AvailablePlayers(testDate)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, member.ID, players[0].ID)
	assert.False(t, players[0].IsGuest)
	assert.True(t, players[1].IsGuest)
	assert.Equal(t, 0, players[0].GamesPlayedToday)

	// Two finished games for the member, one for the guest.
	require.NoError(t, store.RecordGamePlayed(testDate, players))
	require.NoError(t, store.RecordGamePlayed(testDate, players[:1]))

	players, err = store.AvailablePlayers(testDate)
	require.NoError(t, err)
	assert.Equal(t, 2, players[0].GamesPlayedToday)
	assert.Equal(t, 1, players[1].GamesPlayedToday)

	stats, err := store.GetPlayerStats(testDate)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, member.ID, stats[0].PlayerID)
	assert.Equal(t, 2, stats[0].GamesPlayed)

	// Another day starts from zero.
	other, err := store.GetPlayerStats("2026-09-01")
	require.NoError(t, err)
	assert.Empty(t, other)
}
