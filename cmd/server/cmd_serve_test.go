package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repuestos-py/marketplace/internal/config"
)

func TestCartSlotsWithoutRedis(t *testing.T) {
	ctx := context.Background()

	slots, rdb, err := cartSlots(ctx, config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, rdb, "no client to close when redis is disabled")

	slot := slots("s1")
	require.NoError(t, slot.Write(ctx, []byte("[]")))
	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestCartSlotsUnreachableRedis(t *testing.T) {
	slots, rdb, err := cartSlots(context.Background(),
		config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
	assert.Nil(t, rdb)
	assert.Nil(t, slots)
}
