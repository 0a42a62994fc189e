package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceLifecycle(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("learner")

	added, err := h.library.AddResource(h.dbc, u.ID, AddResourceInput{Title: "Concurrency in Go", Topic: "Go"})
	require.NoError(t, err)
	assert.Equal(t, "article", added.Resource.ResourceType)
	assert.Equal(t, 8, added.XPEarned)

	done, err := h.library.MarkResourceDone(h.dbc, u.ID, added.Resource.ID)
	require.NoError(t, err)
	require.False(t, done.Failed(), done.Error)
	assert.Equal(t, 25, done.XPEarned)
	assert.True(t, done.Resource.IsCompleted)

	again, err := h.library.MarkResourceDone(h.dbc, u.ID, added.Resource.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyDone)
	assert.Zero(t, again.XPEarned)

	open, err := h.library.ListResources(h.dbc, u.ID, true)
	require.NoError(t, err)
	assert.Empty(t, open)

	missing, err := h.library.MarkResourceDone(h.dbc, u.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "Resource not found", missing.Error)

	assert.Equal(t, 33, h.reload(u.ID).TotalXPEarned)
}

func TestSuggest(t *testing.T) {
	h := newHarness(t)

	curated := h.library.Suggest("GO")
	require.Len(t, curated, 2)
	assert.Equal(t, "Effective Go", curated[0].Title)

	search := h.library.Suggest("rust async")
	require.Len(t, search, 3)
	assert.Equal(t, "https://habr.com/ru/search/?q=rust+async", search[0].URL)
	assert.Equal(t, "rust async", search[2].Topic)

	assert.Nil(t, h.library.Suggest("  "))
}

func TestPlaylistTracks(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("dj")
	other := h.seedUser("listener")

	p, err := h.library.CreatePlaylist(h.dbc, u.ID, "Focus", "🎧")
	require.NoError(t, err)
	assert.Equal(t, 10, p.XPEarned)

	for i, id := range []string{"file-a", "file-b"} {
		tr, err := h.library.AddTrack(h.dbc, u.ID, p.Playlist.ID, AddTrackInput{FileID: id, Title: id})
		require.NoError(t, err)
		require.False(t, tr.Failed())
		assert.Equal(t, i+1, tr.Track.Position)
		assert.Equal(t, 4, tr.XPEarned)
	}

	foreign, err := h.library.AddTrack(h.dbc, other.ID, p.Playlist.ID, AddTrackInput{FileID: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Not your playlist", foreign.Error)

	tracks, err := h.library.ListTracks(h.dbc, u.ID, p.Playlist.ID)
	require.NoError(t, err)
	assert.Len(t, tracks, 2)

	hidden, err := h.library.ListTracks(h.dbc, other.ID, p.Playlist.ID)
	require.NoError(t, err)
	assert.Empty(t, hidden)

	del, err := h.library.DeletePlaylist(h.dbc, u.ID, p.Playlist.ID)
	require.NoError(t, err)
	assert.True(t, del.Deleted)
	assert.Equal(t, "Focus", del.Title)

	lists, err := h.library.ListPlaylists(h.dbc, u.ID)
	require.NoError(t, err)
	assert.Empty(t, lists)
}
