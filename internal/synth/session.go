package synth

import (
	"time"

	"github.com/vietddude/studyclient/internal/core/domain"
)

// DevToken is the token of an offline development session. It is never sent to the backend.
const DevToken = "dev-session"

// DevSession is the local session created by the development login bypass.
func DevSession(username string) domain.Session {
	return domain.Session{
		Token:    DevToken,
		Username: username,
		Source:   domain.ProvenanceSynthetic,
	}
}

// DevUser is the profile reported for a development session.
func DevUser(username string, now time.Time) domain.User {
	return domain.User{
		ID:          "dev-" + username,
		Username:    username,
		Email:       username + "@localhost",
		Preferences: domain.DefaultPreferences(),
		CreatedAt:   domain.NewTimestamp(now),
		UpdatedAt:   domain.NewTimestamp(now),
		Provenance:  domain.ProvenanceSynthetic,
	}
}
