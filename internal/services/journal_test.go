package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yungbote/mentor-backend/internal/pkg/errors"
)

func TestExtractHashtags(t *testing.T) {
	got := ExtractHashtags("Learned #Go channels and #go generics, also ##notatag and #Редис_кэш")
	assert.Equal(t, []string{"go", "редис_кэш"}, got)
	assert.Empty(t, ExtractHashtags("no tags here"))
}

func TestCreateEntryDerivesTitleAndTags(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("writer")

	out, err := h.journal.CreateEntry(h.dbc, u.ID, CreateEntryInput{
		Content: "Today I profiled the #api\nand found a slow #SQL query",
	})
	require.NoError(t, err)
	assert.Equal(t, "Today I profiled the #api", out.Entry.Title)
	assert.Equal(t, []string{"api", "sql"}, out.Tags)
	assert.Equal(t, 10, out.XPEarned)

	long, err := h.journal.CreateEntry(h.dbc, u.ID, CreateEntryInput{
		Title:   "Deep dive",
		Content: strings.Repeat("word ", 120),
		Tags:    []string{"#API"},
	})
	require.NoError(t, err)
	assert.Equal(t, 20, long.XPEarned)
	assert.Equal(t, []string{"api"}, long.Tags)

	_, err = h.journal.CreateEntry(h.dbc, u.ID, CreateEntryInput{Content: "   "})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
}

func TestListEntriesAndRelated(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("searcher")

	a, err := h.journal.CreateEntry(h.dbc, u.ID, CreateEntryInput{Content: "Tuning #postgres indexes"})
	require.NoError(t, err)
	b, err := h.journal.CreateEntry(h.dbc, u.ID, CreateEntryInput{Content: "Vacuum notes #postgres #ops"})
	require.NoError(t, err)
	_, err = h.journal.CreateEntry(h.dbc, u.ID, CreateEntryInput{Content: "Unrelated #frontend"})
	require.NoError(t, err)

	byTag, err := h.journal.ListEntries(h.dbc, u.ID, "#Postgres", "", 0)
	require.NoError(t, err)
	assert.Len(t, byTag, 2)

	byQuery, err := h.journal.ListEntries(h.dbc, u.ID, "", "VACUUM", 0)
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, b.Entry.ID, byQuery[0].ID)

	related, err := h.journal.Related(h.dbc, u.ID, a.Entry.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, b.Entry.ID, related[0].ID)

	other := h.seedUser("stranger")
	none, err := h.journal.Related(h.dbc, other.ID, a.Entry.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteEntryOwnership(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("deleter")
	other := h.seedUser("other")

	e, err := h.journal.CreateEntry(h.dbc, u.ID, CreateEntryInput{Title: "Mine", Content: "private"})
	require.NoError(t, err)

	res, err := h.journal.DeleteEntry(h.dbc, other.ID, e.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Not your entry", res.Error)

	res, err = h.journal.DeleteEntry(h.dbc, u.ID, e.Entry.ID)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Equal(t, "Mine", res.Title)

	res, err = h.journal.DeleteEntry(h.dbc, u.ID, e.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, FailNotFound, res.FailureKind())
}
