package intake

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreDefaultsToIdle(t *testing.T) {
	s := NewStore()
	require.Equal(t, StateIdle, s.GetState(1))
	require.False(t, s.InProgress(1))
}

func TestStoreUpdateAndClear(t *testing.T) {
	s := NewStore()
	s.Update(1, func(sess *Session) {
		sess.State = StateAwaitingDescription
		sess.IsCompany = true
	})
	sess := s.Get(1)
	require.Equal(t, StateAwaitingDescription, sess.State)
	require.True(t, sess.IsCompany)
	require.True(t, s.InProgress(1))

	s.Clear(1)
	require.Equal(t, StateIdle, s.GetState(1))
}

func TestStoreGetReturnsSnapshot(t *testing.T) {
	s := NewStore()
	s.SetState(1, StateAwaitingName)

	snap := s.Get(1)
	snap.State = StateAwaitingReview
	require.Equal(t, StateAwaitingName, s.GetState(1))
}

func TestStoreConcurrentUpdates(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.Update(id, func(sess *Session) { sess.State = StateAwaitingPhone })
			s.Get(id)
		}(int64(i % 5))
	}
	wg.Wait()
	for id := int64(0); id < 5; id++ {
		require.Equal(t, StateAwaitingPhone, s.GetState(id))
	}
}
