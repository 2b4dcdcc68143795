package domain

import "time"

// Preferences are free-form personalisation settings stored on the user.
type Preferences map[string]any

// DefaultPreferences are sent on registration.
func DefaultPreferences() Preferences {
	return Preferences{
		"knowledge_level":     5.0,
		"prefer_explanations": 0.6,
		"prefer_examples":     0.3,
		"prefer_resources":    0.1,
		"prefer_length":       0.5,
	}
}

// User is the authenticated account.
type User struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   Timestamp   `json:"created_at"`
	UpdatedAt   Timestamp   `json:"updated_at"`
	Provenance  Provenance  `json:"provenance,omitempty"`
}

// Credentials are submitted to obtain a token.
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Registration creates a new account.
type Registration struct {
	Username    string      `json:"username"    validate:"required,min=3,max=50"`
	Email       string      `json:"email"       validate:"required,email"`
	Password    string      `json:"password"    validate:"required,min=6"`
	Preferences Preferences `json:"preferences"`
}

// Token is the backend's OAuth2 password-flow response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Session is the locally persisted authentication state.
type Session struct {
	Token     string     `json:"token"`
	Username  string     `json:"username,omitempty"`
	Source    Provenance `json:"source,omitempty"`
	ExpiresAt time.Time  `json:"expires_at,omitzero"`
}

// Empty reports whether no one is logged in.
func (s Session) Empty() bool {
	return s.Token == ""
}

// Expired reports whether the session carries an expiry that has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
