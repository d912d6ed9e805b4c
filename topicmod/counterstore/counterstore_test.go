package counterstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemCounterStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCounterStore()

	c, err := cs.Get(ctx, "chat1")
	assert.NoError(err)
	assert.Equal(0, c.Count)
	assert.Nil(c.BlockedUntil)

	now := time.Now().UTC()
	c, err = cs.Apply(ctx, "chat1", func(c *Counter) {
		c.Count++
		c.UpdatedAt = now
	})
	assert.NoError(err)
	assert.Equal(1, c.Count)
	assert.Equal(now, c.UpdatedAt)

	until := now.Add(time.Hour)
	c, err = cs.Apply(ctx, "chat1", func(c *Counter) {
		c.BlockedUntil = &until
	})
	assert.NoError(err)
	assert.True(c.Blocked(now))
	assert.False(c.Blocked(until.Add(time.Second)))

	// other chats are untouched
	c, err = cs.Get(ctx, "chat2")
	assert.NoError(err)
	assert.Equal(0, c.Count)

	assert.NoError(cs.ResetAll(ctx))
	c, err = cs.Get(ctx, "chat1")
	assert.NoError(err)
	assert.Equal(0, c.Count)
}

func TestMemCounterStoreConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCounterStore()

	// Increment the same chat from several goroutines; Apply must not lose
	// updates (run this with `-race`!). A short sleep yields the scheduler so
	// order is decently random and reads interleave with writes.
	var wg sync.WaitGroup
	fnInc := func(chatID string, times int) {
		for i := 0; i < times; i++ {
			_, err := cs.Apply(ctx, chatID, func(c *Counter) { c.Count++ })
			assert.NoError(err)
			time.Sleep(time.Nanosecond)
		}
		wg.Done()
	}
	fnRead := func(chatID string, times int) {
		for i := 0; i < times; i++ {
			_, err := cs.Get(ctx, chatID)
			assert.NoError(err)
			time.Sleep(time.Nanosecond)
		}
		wg.Done()
	}
	wg.Add(6)
	go fnInc("chat1", 10)
	go fnInc("chat1", 10)
	go fnRead("chat1", 10)
	go fnInc("chat2", 6)
	go fnInc("chat2", 6)
	go fnRead("chat2", 6)
	wg.Wait()

	c, err := cs.Get(ctx, "chat1")
	assert.NoError(err)
	assert.Equal(20, c.Count)
	c, err = cs.Get(ctx, "chat2")
	assert.NoError(err)
	assert.Equal(12, c.Count)
}
