package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerValidation(t *testing.T) {
	assert := assert.New(t)

	base := Config{
		Token:     "123:abc",
		Keywords:  []string{"kerem"},
		Threshold: 50,
		Cooldown:  3 * time.Hour,
		StateFile: filepath.Join(t.TempDir(), "counters.json"),
	}

	srv, err := NewServer(base)
	require.NoError(t, err)
	assert.NotNil(srv.engine)

	missing := base
	missing.Token = ""
	_, err = NewServer(missing)
	assert.Error(err)

	bad := base
	bad.Threshold = 0
	_, err = NewServer(bad)
	assert.Error(err)

	bad = base
	bad.Cooldown = 0
	_, err = NewServer(bad)
	assert.Error(err)
}
