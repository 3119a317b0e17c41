package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigService(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewConfigService(db)
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		entry, err := svc.SetConfig(ctx, "gym_name", "GymFit")
		require.NoError(t, err)
		assert.Equal(t, "GymFit", entry.Value)

		fetched, err := svc.GetConfig(ctx, "gym_name")
		require.NoError(t, err)
		assert.Equal(t, "GymFit", fetched.Value)
	})

	t.Run("set overwrites", func(t *testing.T) {
		_, err := svc.SetConfig(ctx, "gym_name", "GymFit Downtown")
		require.NoError(t, err)

		fetched, err := svc.GetConfig(ctx, "gym_name")
		require.NoError(t, err)
		assert.Equal(t, "GymFit Downtown", fetched.Value)

		entries, err := svc.ListConfig(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("list is sorted by key", func(t *testing.T) {
		_, err := svc.SetConfig(ctx, "opening_hours", "06:00-23:00")
		require.NoError(t, err)

		entries, err := svc.ListConfig(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "gym_name", entries[0].Key)
		assert.Equal(t, "opening_hours", entries[1].Key)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.DeleteConfig(ctx, "opening_hours"))

		_, err := svc.GetConfig(ctx, "opening_hours")
		require.Error(t, err)

		err = svc.DeleteConfig(ctx, "opening_hours")
		require.Error(t, err)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		_, err := svc.SetConfig(ctx, "  ", "value")
		require.Error(t, err)

		_, err = svc.GetConfig(ctx, "")
		require.Error(t, err)
	})
}
