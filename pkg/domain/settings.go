package domain

import "time"

// Settings is the single user_settings row of a user. An empty ID means the row
// has not been created yet.
type Settings struct {
	ID                  string    `json:"id,omitempty"`
	UserID              string    `json:"user_id"`
	EmailNotifications  bool      `json:"email_notifications"`
	PublicProfile       bool      `json:"public_profile"`
	AILearningAssistant bool      `json:"ai_learning_assistant"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
}

// SettingKey names one toggle.
type SettingKey string

const (
	SettingNotifications SettingKey = "notifications"
	SettingPublic        SettingKey = "public"
	SettingAI            SettingKey = "ai"
)

// With returns a copy of s with the toggle key set to value.
func (s Settings) With(key SettingKey, value bool) (Settings, error) {
	switch key {
	case SettingNotifications:
		s.EmailNotifications = value
	case SettingPublic:
		s.PublicProfile = value
	case SettingAI:
		s.AILearningAssistant = value
	default:
		return s, ErrValidation
	}
	return s, nil
}
