package session

import (
	"fmt"
	"sync"
	"testing"

	"chatimmo/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndHistory(t *testing.T) {
	store := NewStore()
	id := store.Create()
	require.True(t, store.Get(id))

	history, err := store.History(id)
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, store.Append(id,
		model.Message{Sender: model.SenderUser, Message: "2 bedrooms"},
		model.Message{Sender: model.SenderBot, Message: "Here are some suggestions"},
	))
	require.NoError(t, store.Append(id, model.Message{Sender: model.SenderUser, Message: "thanks"}))

	history, err = store.History(id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"2 bedrooms", "Here are some suggestions", "thanks"},
		[]string{history[0].Message, history[1].Message, history[2].Message})
	assert.Equal(t, model.SenderBot, history[1].Sender)
	for _, m := range history {
		assert.NotEmpty(t, m.ID)
		assert.False(t, m.CreatedAt.IsZero())
	}
}

func TestStore_HistoryIsACopy(t *testing.T) {
	store := NewStore()
	id := store.Create()
	require.NoError(t, store.Append(id, model.Message{Message: "first"}))

	history, err := store.History(id)
	require.NoError(t, err)
	history[0].Message = "changed"

	again, err := store.History(id)
	require.NoError(t, err)
	assert.Equal(t, "first", again[0].Message)
}

func TestStore_UnknownSession(t *testing.T) {
	store := NewStore()

	assert.False(t, store.Get("missing"))
	assert.ErrorIs(t, store.Append("missing", model.Message{}), ErrSessionNotFound)
	_, err := store.History("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_Ensure(t *testing.T) {
	store := NewStore()
	id := store.Create()

	assert.Equal(t, id, store.Ensure(id))
	fresh := store.Ensure("stale-cookie")
	assert.NotEqual(t, "stale-cookie", fresh)
	assert.True(t, store.Get(fresh))
	assert.NotEmpty(t, store.Ensure(""))
	assert.Equal(t, 3, store.Len())
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store := NewStore()
	id := store.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Append(id, model.Message{Message: fmt.Sprint(i)}))
		}(i)
	}
	wg.Wait()

	history, err := store.History(id)
	require.NoError(t, err)
	assert.Len(t, history, 50)
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	store := NewBoundedStore(2)
	first := store.Create()
	second := store.Create()

	// touching first leaves second as the oldest
	require.NoError(t, store.Append(first, model.Message{Message: "hi"}))
	third := store.Create()

	assert.Equal(t, 2, store.Len())
	assert.True(t, store.Get(first))
	assert.False(t, store.Get(second))
	assert.True(t, store.Get(third))
	_, err := store.History(second)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_CookielessVisitsStayBounded(t *testing.T) {
	store := NewBoundedStore(10)
	for i := 0; i < 100; i++ {
		store.Ensure("")
	}
	assert.Equal(t, 10, store.Len())
}

func TestNewBoundedStore_NonPositiveLimit(t *testing.T) {
	store := NewBoundedStore(0)
	assert.Equal(t, DefaultMaxSessions, store.max)
}
