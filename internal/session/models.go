// Package session owns the process-wide session lifecycle: the session
// store, the single-flight refresh coordinator with its proactive expiry
// timer, and the cross-process logout broadcast.
package session

import (
	"time"

	"cockpit/pkg/domain"
)

// Session is the authenticated session metadata. The credential itself
// travels out of band in the cookie jar and is never visible here.
type Session struct {
	UserID        domain.UserID
	ExpiresAt     time.Time
	ExpiresIn     time.Duration
	Authenticated bool
}

// Remaining returns the time until expiry at the given instant.
func (s Session) Remaining(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}

// bootstrapPayload is the wire shape of the session bootstrap and refresh
// endpoints: `{user, expires_at (ms epoch), expires_in (ms)}`.
type bootstrapPayload struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	ExpiresAtMs int64 `json:"expires_at"`
	ExpiresInMs int64 `json:"expires_in"`
}

func (p bootstrapPayload) toSession() (Session, error) {
	userID, err := domain.ParseUserID(p.User.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{
		UserID:        userID,
		ExpiresAt:     time.UnixMilli(p.ExpiresAtMs),
		ExpiresIn:     time.Duration(p.ExpiresInMs) * time.Millisecond,
		Authenticated: true,
	}, nil
}
