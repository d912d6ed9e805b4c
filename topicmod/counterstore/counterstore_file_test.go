package counterstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCounterStoreRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "counters.json")
	cs, err := NewFileCounterStore(path, nil)
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(3 * time.Hour)
	_, err = cs.Apply(ctx, "100", func(c *Counter) {
		c.Count = 7
		c.UpdatedAt = now
	})
	assert.NoError(err)
	_, err = cs.Apply(ctx, "200", func(c *Counter) {
		c.Count = 50
		c.UpdatedAt = now
		c.BlockedUntil = &until
	})
	assert.NoError(err)

	// a fresh store over the same file sees identical state
	reloaded, err := NewFileCounterStore(path, nil)
	require.NoError(t, err)

	c, err := reloaded.Get(ctx, "100")
	assert.NoError(err)
	assert.Equal(7, c.Count)
	assert.True(c.UpdatedAt.Equal(now))
	assert.Nil(c.BlockedUntil)

	c, err = reloaded.Get(ctx, "200")
	assert.NoError(err)
	assert.Equal(50, c.Count)
	require.NotNil(t, c.BlockedUntil)
	assert.True(c.BlockedUntil.Equal(until))
}

func TestFileCounterStoreMissingFile(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs, err := NewFileCounterStore(filepath.Join(t.TempDir(), "nope", "counters.json"), nil)
	assert.NoError(err)

	c, err := cs.Get(ctx, "100")
	assert.NoError(err)
	assert.Equal(0, c.Count)

	// first Apply creates the directory and file
	_, err = cs.Apply(ctx, "100", func(c *Counter) { c.Count++ })
	assert.NoError(err)
}

func TestFileCounterStoreCorruptFile(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "counters.json")
	assert.NoError(os.WriteFile(path, []byte("{not json"), 0644))

	// invalid durable state logs and starts empty instead of failing startup
	cs, err := NewFileCounterStore(path, nil)
	assert.NoError(err)

	c, err := cs.Get(ctx, "100")
	assert.NoError(err)
	assert.Equal(0, c.Count)
}

func TestFileCounterStoreNoTempLeftBehind(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "counters.json")
	cs, err := NewFileCounterStore(path, nil)
	assert.NoError(err)

	_, err = cs.Apply(ctx, "100", func(c *Counter) { c.Count++ })
	assert.NoError(err)

	entries, err := os.ReadDir(dir)
	assert.NoError(err)
	assert.Len(entries, 1)
	assert.Equal("counters.json", entries[0].Name())
}

func TestRedisCounterStoreBasics(t *testing.T) {
	t.Skip("live test, need redis running locally")
	assert := assert.New(t)
	ctx := context.Background()

	cs, err := NewRedisCounterStore("redis://localhost:6379/0")
	if err != nil {
		t.Fail()
	}

	assert.NoError(cs.ResetAll(ctx))

	c, err := cs.Get(ctx, "chat1")
	assert.NoError(err)
	assert.Equal(0, c.Count)

	c, err = cs.Apply(ctx, "chat1", func(c *Counter) { c.Count = 3 })
	assert.NoError(err)
	assert.Equal(3, c.Count)

	c, err = cs.Get(ctx, "chat1")
	assert.NoError(err)
	assert.Equal(3, c.Count)

	assert.NoError(cs.ResetAll(ctx))
}
