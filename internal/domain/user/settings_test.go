package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestDecodeSettingsKeepsDefaultsForMissingKeys(t *testing.T) {
	s := DecodeSettings(datatypes.JSON(`{"notifications":{"morning_time":"07:30"},"mentor_name":"Coach"}`))
	assert.Equal(t, "07:30", s.Notifications.MorningTime)
	assert.True(t, s.Notifications.TaskRemindDefault)
	assert.Equal(t, "21:00", s.Notifications.EveningTime)
	assert.Equal(t, "Coach", s.MentorName)
	assert.Equal(t, PersonaAdaptive, s.MentorPersona)
	assert.Equal(t, 85, s.MentorDisciplineBias)
	assert.True(t, s.AIPermissions.ReadJournal)
}

func TestDecodeSettingsCorruptBlobFallsBack(t *testing.T) {
	assert.Equal(t, DefaultSettings(), DecodeSettings(datatypes.JSON(`{not json`)))
}

func TestPatchMergesNested(t *testing.T) {
	s := DefaultSettings()
	next, err := s.Patch([]byte(`{"notifications":{"evening":false},"mentor_persona":"goggins","mentor_discipline_bias":140}`))
	require.NoError(t, err)
	assert.False(t, next.Notifications.Evening)
	assert.True(t, next.Notifications.Morning)
	assert.Equal(t, PersonaGoggins, next.MentorPersona)
	assert.Equal(t, 100, next.MentorDisciplineBias)
}

func TestPatchRejectsInvalidValues(t *testing.T) {
	s := DefaultSettings()
	_, err := s.Patch([]byte(`{"mentor_persona":"drill-sergeant"}`))
	assert.Error(t, err)
	_, err = s.Patch([]byte(`{"notifications":{"morning_time":"25:00"}}`))
	assert.Error(t, err)
}

func TestRenderTemplate(t *testing.T) {
	n := DefaultSettings().Notifications
	assert.Equal(t, "🔔 Time: Read book", n.RenderTemplate("Read book"))
	n.RemindTextTemplate = ""
	assert.Equal(t, "🔔 Time: x", n.RenderTemplate("x"))
}

func TestProfileFilled(t *testing.T) {
	u := &User{FirstName: "Ann"}
	assert.False(t, u.ProfileFilled())
	u.TechStack = EncodeList([]string{"Go", " "})
	u.Goals = EncodeList([]string{"ship"})
	assert.True(t, u.ProfileFilled())
	assert.Equal(t, []string{"Go"}, u.TechStackList())
}
