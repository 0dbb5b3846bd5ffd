package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cockpit/pkg/domain"
)

func TestStore_Lifecycle(t *testing.T) {
	store := NewStore()
	assert.False(t, store.Authenticated())

	sess := Session{
		UserID:        domain.NewUserID(),
		ExpiresAt:     time.Now().Add(time.Hour),
		ExpiresIn:     time.Hour,
		Authenticated: true,
	}
	store.Set(sess)
	assert.True(t, store.Authenticated())
	assert.Equal(t, sess.UserID, store.Current().UserID)

	store.Clear()
	assert.False(t, store.Authenticated())
	assert.True(t, store.Current().UserID.IsNil())
}

func TestBootstrapPayload_ToSession(t *testing.T) {
	userID := domain.NewUserID()
	expiresAt := time.Now().Add(15 * time.Minute).Truncate(time.Millisecond)

	var p bootstrapPayload
	p.User.ID = userID.String()
	p.ExpiresAtMs = expiresAt.UnixMilli()
	p.ExpiresInMs = (15 * time.Minute).Milliseconds()

	sess, err := p.toSession()
	assert.NoError(t, err)
	assert.Equal(t, userID, sess.UserID)
	assert.True(t, sess.ExpiresAt.Equal(expiresAt))
	assert.Equal(t, 15*time.Minute, sess.ExpiresIn)
	assert.True(t, sess.Authenticated)
}

func TestBootstrapPayload_BadUserID(t *testing.T) {
	var p bootstrapPayload
	p.User.ID = "garbage"
	_, err := p.toSession()
	assert.Error(t, err)
}
