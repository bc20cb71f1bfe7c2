package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nmdr-club/courtsync/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSnapshot(t *testing.T) {
	mockJSONResponse := `{
		"courts": [
			{ "id": 1, "status": "playing", "team": { "id": "team-1", "players": [] } },
			{ "id": 2, "status": "idle" }
		],
		"teams": [],
		"available_players": [
			{ "id": "p1", "name": "Anna", "skill": "A", "gender": "F", "games_played_today": 2 }
		],
		"version": 12,
		"device_id": "device-abc",
		"last_updated": "2025-07-09T18:00:00Z"
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/game-states/2025-07-09", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, mockJSONResponse)
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())

	snapshot, err := client.GetSnapshot(context.Background(), "2025-07-09")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.EqualValues(t, 12, snapshot.Version)
	assert.Equal(t, "device-abc", snapshot.DeviceID)
	require.Len(t, snapshot.Courts, 2)
	assert.Equal(t, game.CourtPlaying, snapshot.Courts[0].Status)
	require.NotNil(t, snapshot.Courts[0].Team)
	assert.Equal(t, 2, snapshot.AvailablePlayers[0].GamesPlayedToday)
}

func TestGetSnapshotAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())

	snapshot, err := client.GetSnapshot(context.Background(), "2025-07-09")
	require.NoError(t, err, "an absent remote record is not an error")
	assert.Nil(t, snapshot)
}

func TestPutSnapshot(t *testing.T) {
	var received game.Snapshot
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/game-states/2025-07-09", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())

	snap := game.Snapshot{Courts: game.DefaultCourts(4), Version: 3, DeviceID: "device-abc", LastUpdated: time.Now()}
	err := client.PutSnapshot(context.Background(), "2025-07-09", snap)
	require.NoError(t, err)
	assert.EqualValues(t, 3, received.Version)
	assert.Len(t, received.Courts, 4)
}

func TestPutSnapshotServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())

	err := client.PutSnapshot(context.Background(), "2025-07-09", game.Snapshot{})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	client := NewClientWithHTTP(server.URL, server.Client())
	assert.NoError(t, client.Ping(context.Background()))

	server.Close()
	assert.Error(t, client.Ping(context.Background()), "an unreachable remote fails the probe")
}

func TestTodayKey(t *testing.T) {
	day := time.Date(2025, 7, 9, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-07-09", TodayKey(day))
}
