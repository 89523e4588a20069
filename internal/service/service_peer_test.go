package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/models"
)

func TestPeerService_ServesOpenedCollection(t *testing.T) {
	ctx := testContext()
	writer := newTestWriter(t, newTestStorages(t), "db-core")
	_, err := writer.Sync(ctx, models.KeyMap{hexKey("a"): {Name: "user1"}})
	require.NoError(t, err)

	svc := NewPeerService("node-1", "127.0.0.1:7421", logger.Nop())
	assert.Empty(t, svc.Info(ctx).Topics)

	svc.Serve(writer)

	info := svc.Info(ctx)
	assert.Equal(t, "node-1", info.NodeID)
	assert.Equal(t, "127.0.0.1:7421", info.GRPCAddress)
	assert.Equal(t, []string{writer.DiscoveryKey()}, info.Topics)
	assert.True(t, info.Serves(writer.DiscoveryKey()))
	assert.False(t, info.Serves(writer.Key()), "the collection key is never announced")

	signed, err := svc.Snapshot(ctx, writer.DiscoveryKey())
	require.NoError(t, err)
	assert.Equal(t, int64(1), signed.Version)
	assert.NotEmpty(t, signed.Token)

	_, err = svc.Snapshot(ctx, "unknown")
	assert.ErrorIs(t, err, ErrCollectionNotServed)
}

func TestPeerService_ClosedCollectionIsNotServed(t *testing.T) {
	ctx := testContext()
	writer := newTestWriter(t, newTestStorages(t), "db-core")
	require.NoError(t, writer.Open(ctx))

	svc := NewPeerService("node-1", "", logger.Nop())
	svc.Serve(writer)
	require.NoError(t, writer.Close())

	assert.Empty(t, svc.Info(ctx).Topics)
	_, err := svc.Snapshot(ctx, writer.DiscoveryKey())
	assert.ErrorIs(t, err, ErrCollectionNotServed)
}
