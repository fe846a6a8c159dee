package database

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), "redis://"+server.Addr()+"/0", "rci-test")
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	value, err := server.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", value)
}

func TestConnectRedisDisabled(t *testing.T) {
	client, err := ConnectRedis(context.Background(), "  ", "rci-test")
	require.NoError(t, err)
	require.Nil(t, client)
}

func TestConnectRedisInvalidURL(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "://bad", "rci-test")
	require.Error(t, err)
}

func TestConnectNATSDisabled(t *testing.T) {
	conn, err := ConnectNATS("", "rci")
	require.NoError(t, err)
	require.Nil(t, conn)
}
