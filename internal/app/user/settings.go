package user

import "context"

// NotificationSettings controls how a user's client surfaces incoming events.
// The zero value is not meaningful; use DefaultNotificationSettings for users
// who never saved anything.
type NotificationSettings struct {
	Messages       bool `json:"messages"`
	Email          bool `json:"email"`
	Desktop        bool `json:"desktop"`
	SoundEnabled   bool `json:"soundEnabled"`
	MessagePreview bool `json:"messagePreview"`
	ShowSender     bool `json:"showSender"`
}

// DefaultNotificationSettings returns the settings applied before a user has
// saved any: everything on except email digests.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Messages:       true,
		Email:          false,
		Desktop:        true,
		SoundEnabled:   true,
		MessagePreview: true,
		ShowSender:     true,
	}
}

// NotificationSettingsPatch is a partial update. Nil fields are left unchanged,
// so a client can toggle one switch without resending the rest.
type NotificationSettingsPatch struct {
	Messages       *bool `json:"messages"`
	Email          *bool `json:"email"`
	Desktop        *bool `json:"desktop"`
	SoundEnabled   *bool `json:"soundEnabled"`
	MessagePreview *bool `json:"messagePreview"`
	ShowSender     *bool `json:"showSender"`
}

// Apply merges the patch over the receiver and returns the result.
func (s NotificationSettings) Apply(p NotificationSettingsPatch) NotificationSettings {
	if p.Messages != nil {
		s.Messages = *p.Messages
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Desktop != nil {
		s.Desktop = *p.Desktop
	}
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	if p.MessagePreview != nil {
		s.MessagePreview = *p.MessagePreview
	}
	if p.ShowSender != nil {
		s.ShowSender = *p.ShowSender
	}
	return s
}

// GetNotificationSettings returns the user's stored settings, falling back to
// the defaults when the user never saved any.
func (s *Store) GetNotificationSettings(ctx context.Context, id string) (NotificationSettings, error) {
	var stored *NotificationSettings
	err := s.pool.QueryRow(ctx,
		`SELECT notification_settings FROM users WHERE id = $1::uuid`, id).Scan(&stored)
	if err != nil {
		return NotificationSettings{}, err
	}
	if stored == nil {
		return DefaultNotificationSettings(), nil
	}
	return *stored, nil
}

// UpdateNotificationSettings replaces the user's stored settings. Callers merge
// patches over the current value first so partial updates keep the other switches.
func (s *Store) UpdateNotificationSettings(ctx context.Context, id string, settings NotificationSettings) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET notification_settings = $2, updated_at = now() WHERE id = $1::uuid`,
		id, settings)
	return err
}
