package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesight/internal/dataset"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore(time.Minute)
	defer store.Stop()

	sess := store.Create()
	require.NotEmpty(t, sess.Token)

	got, ok := store.Get(sess.Token)
	require.True(t, ok)
	assert.Same(t, sess, got)

	_, ok = store.Get("unknown")
	assert.False(t, ok)

	store.Delete(sess.Token)
	_, ok = store.Get(sess.Token)
	assert.False(t, ok)
}

func TestSessionDatasetIsPerSession(t *testing.T) {
	store := NewStore(time.Minute)
	defer store.Stop()

	a := store.Create()
	b := store.Create()

	ds := dataset.FromRecords([]map[string]any{{"idOportunidad": "1"}})
	a.SetDataset(ds)

	assert.NotNil(t, a.Dataset())
	assert.Nil(t, b.Dataset(), "sessions never share a snapshot")

	a.Clear()
	assert.Nil(t, a.Dataset())
}
