package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(v bool) *bool { return &v }

func TestDefaultNotificationSettings(t *testing.T) {
	defaults := DefaultNotificationSettings()

	assert.True(t, defaults.Messages)
	assert.False(t, defaults.Email)
	assert.True(t, defaults.Desktop)
	assert.True(t, defaults.SoundEnabled)
	assert.True(t, defaults.MessagePreview)
	assert.True(t, defaults.ShowSender)
}

func TestNotificationSettingsApply(t *testing.T) {
	t.Run("empty patch changes nothing", func(t *testing.T) {
		current := DefaultNotificationSettings()
		assert.Equal(t, current, current.Apply(NotificationSettingsPatch{}))
	})

	t.Run("only provided fields change", func(t *testing.T) {
		current := DefaultNotificationSettings()
		merged := current.Apply(NotificationSettingsPatch{
			SoundEnabled: boolPtr(false),
			Email:        boolPtr(true),
		})

		assert.False(t, merged.SoundEnabled)
		assert.True(t, merged.Email)
		assert.True(t, merged.Messages)
		assert.True(t, merged.Desktop)
		assert.True(t, merged.MessagePreview)
		assert.True(t, merged.ShowSender)
	})

	t.Run("explicit false survives a later unrelated patch", func(t *testing.T) {
		current := DefaultNotificationSettings().Apply(NotificationSettingsPatch{
			Desktop: boolPtr(false),
		})
		merged := current.Apply(NotificationSettingsPatch{
			MessagePreview: boolPtr(false),
		})

		assert.False(t, merged.Desktop)
		assert.False(t, merged.MessagePreview)
	})
}
