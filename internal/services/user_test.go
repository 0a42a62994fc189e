package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentor-backend/internal/data/repos/testutil"
	pkgerrors "github.com/yungbote/mentor-backend/internal/pkg/errors"
	"github.com/yungbote/mentor-backend/internal/pkg/pointers"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/ctxutil"
)

func TestBootstrapCreatesThenRefreshes(t *testing.T) {
	h := newHarness(t)

	u, created, err := h.users.Bootstrap(h.dbc, 4242, "neo", "Thomas")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, clock.DefaultZone, u.Timezone)
	assert.Equal(t, 1, u.Level)
	assert.Equal(t, "Iron Mentor", u.ParsedSettings().MentorName)

	again, created, err := h.users.Bootstrap(h.dbc, 4242, "the_one", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "the_one", again.Username)
	assert.Equal(t, "Thomas", again.FirstName)

	_, _, err = h.users.Bootstrap(h.dbc, 0, "", "")
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
}

func TestUpdateProfilePaysSetupOnce(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("profiled")

	res, err := h.users.UpdateProfile(h.dbc, u.ID, ProfileInput{
		DisplayName: pointers.String("Neo"),
		TechStack:   []string{"Go", "Postgres"},
		Goals:       []string{"Ship v1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 25, res.XPEarned)
	assert.Equal(t, []string{"Go", "Postgres"}, res.User.TechStackList())

	// Refilling after clearing does not pay again.
	_, err = h.users.UpdateProfile(h.dbc, u.ID, ProfileInput{Goals: []string{}})
	require.NoError(t, err)
	res, err = h.users.UpdateProfile(h.dbc, u.ID, ProfileInput{Goals: []string{"Ship v2"}})
	require.NoError(t, err)
	assert.Zero(t, res.XPEarned)
	assert.Equal(t, 25, h.reload(u.ID).TotalXPEarned)
}

func TestUpdateProfileValidation(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("invalid")

	_, err := h.users.UpdateProfile(h.dbc, u.ID, ProfileInput{Timezone: pointers.String("Mars/Olympus")})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))

	_, err = h.users.UpdateProfile(h.dbc, u.ID, ProfileInput{MentorPersona: pointers.String("pirate")})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))

	res, err := h.users.UpdateProfile(h.dbc, u.ID, ProfileInput{MentorPersona: pointers.String(" STRICT ")})
	require.NoError(t, err)
	assert.Equal(t, "strict", res.User.ParsedSettings().MentorPersona)

	_, err = h.users.GetUser(h.dbc, uuid.New())
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
}

func TestPatchSettingsMergesOverStored(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("settings")

	s, err := h.users.PatchSettings(h.dbc, u.ID, []byte(`{"mentor_discipline_bias":140,"ai_permissions":{"read_journal":false}}`))
	require.NoError(t, err)
	assert.Equal(t, 100, s.MentorDisciplineBias)
	assert.False(t, s.AIPermissions.ReadJournal)
	assert.True(t, s.AIPermissions.ReadTasks)

	stored, err := h.users.GetSettings(h.dbc, u.ID)
	require.NoError(t, err)
	assert.Equal(t, s, stored)

	_, err = h.users.PatchSettings(h.dbc, u.ID, []byte(`{"mentor_persona":"pirate"}`))
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
}

func TestProgressView(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("progress")
	require.NoError(t, h.repos.Users.UpdateFields(h.dbc, u.ID, map[string]any{"total_xp_earned": 300, "xp": 280}))

	p, err := h.users.Progress(h.dbc, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 280, p.XP)
	assert.Equal(t, 300, p.TotalXP)
	assert.Contains(t, p.Text, "⭐ Level 2")
}

func TestAuthTokenRoundTrip(t *testing.T) {
	clk := clock.NewFake(testNow)
	auth := NewAuthService(testutil.Logger(t), clk, "secret", "bot-secret", time.Hour)
	id := uuid.New()

	tok, err := auth.IssueToken(id)
	require.NoError(t, err)

	ctx, err := auth.SetContextFromToken(context.Background(), tok)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(ctx)
	require.NotNil(t, rd)
	assert.Equal(t, id, rd.UserID)

	clk.Advance(2 * time.Hour)
	_, err = auth.SetContextFromToken(context.Background(), tok)
	assert.Error(t, err)

	other := NewAuthService(testutil.Logger(t), clk, "other", "", 0)
	_, err = other.SetContextFromToken(context.Background(), tok)
	assert.Error(t, err)
	assert.Equal(t, 24*time.Hour, other.GetAccessTTL())

	assert.True(t, auth.CheckBotSecret("bot-secret"))
	assert.False(t, auth.CheckBotSecret("nope"))
	assert.False(t, other.CheckBotSecret(""))
}
