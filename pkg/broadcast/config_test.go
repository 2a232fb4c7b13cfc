package broadcast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/revq/pkg/broadcast"
)

func TestLoadConfig(t *testing.T) {
	t.Run("uses defaults when env is empty", func(t *testing.T) {
		cfg, err := broadcast.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.BufferSize)
	})

	t.Run("reads values from the environment", func(t *testing.T) {
		t.Setenv("BROADCAST_BUFFER_SIZE", "7")

		cfg, err := broadcast.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.BufferSize)
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Setenv("BROADCAST_BUFFER_SIZE", "not-a-number")

		_, err := broadcast.LoadConfig()
		require.Error(t, err)
	})
}
