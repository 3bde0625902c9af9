package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoreCreatesAndReturnsSessions(t *testing.T) {
	store := NewStore(time.Minute, nil)
	defer store.Stop()

	sess := store.Get("")
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, 1, store.Len())

	same := store.Get(sess.ID)
	assert.Equal(t, sess.ID, same.ID)
	assert.Equal(t, 1, store.Len())

	other := store.Get("unknown-id")
	assert.NotEqual(t, sess.ID, other.ID)
	assert.Equal(t, 2, store.Len())
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	store := NewStore(10*time.Millisecond, nil)
	defer store.Stop()

	sess := store.Get("")
	sess.LastActive = time.Now().Add(-time.Minute)

	store.expire()
	assert.Zero(t, store.Len())
}

func TestStoreStopIsIdempotent(t *testing.T) {
	store := NewStore(time.Minute, nil)
	store.Stop()
	store.Stop()
}
