package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── NetAddress ──

func TestNetAddress(t *testing.T) {
	assert.Empty(t, (&NetAddress{}).String())

	tests := []struct {
		input   string
		want    string
		wantErr string
	}{
		{input: "localhost:7420", want: "localhost:7420"},
		{input: "127.0.0.1:7421", want: "127.0.0.1:7421"},
		{input: "localhost7420", wantErr: "host:port"},
		{input: "a:b:c", wantErr: "host:port"},
		{input: "", wantErr: "host:port"},
		{input: "localhost:http", wantErr: "invalid syntax"},
		{input: "localhost:0", wantErr: "positive integer"},
		{input: "peer.local:7420", wantErr: "incorrect IP-address"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var addr NetAddress
			err := addr.Set(tt.input)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				assert.Empty(t, addr.String())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr.String())
		})
	}
}

// ── PeerList ──

func TestPeerList_Set(t *testing.T) {
	var peers PeerList
	require.NoError(t, peers.Set("127.0.0.1:7420, ,127.0.0.2:7420"))
	require.NoError(t, peers.Set("peer.local:7420"))

	assert.Equal(t, PeerList{"127.0.0.1:7420", "127.0.0.2:7420", "peer.local:7420"}, peers)
	assert.Equal(t, "127.0.0.1:7420,127.0.0.2:7420,peer.local:7420", peers.String())
}

// ── parseFlags ──

func TestParseFlags_Sync(t *testing.T) {
	cfg, positional, err := parseFlags(CommandSync, []string{
		"state.yaml",
		"-s", "/tmp/kc.sqlite",
		"-n", "team",
		"-http", "127.0.0.1:8000",
		"-grpc", "localhost:8001",
		"-peers", "10.0.0.1:7420,10.0.0.2:7420",
		"-c", "/etc/kc.json",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"state.yaml"}, positional)
	assert.Equal(t, "/tmp/kc.sqlite", cfg.Storage.DSN)
	assert.Equal(t, "team", cfg.App.Namespace)
	assert.Equal(t, "127.0.0.1:8000", cfg.Server.HTTPAddress)
	assert.Equal(t, "localhost:8001", cfg.Server.GRPCAddress)
	assert.Equal(t, []string{"10.0.0.1:7420", "10.0.0.2:7420"}, cfg.Adapter.Peers)
	assert.Equal(t, "/etc/kc.json", cfg.JSONFilePath)
}

func TestParseFlags_FlagsBeforePositional(t *testing.T) {
	cfg, positional, err := parseFlags(CommandSync, []string{"-storage", "/data", "state.yaml"})
	require.NoError(t, err)

	assert.Equal(t, []string{"state.yaml"}, positional)
	assert.Equal(t, "/data", cfg.Storage.DSN)
}

func TestParseFlags_List(t *testing.T) {
	cfg, positional, err := parseFlags(CommandList, []string{
		"some-key", "-m", "3", "-quorum-timeout", "10s", "-settle-delay", "200ms",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"some-key"}, positional)
	assert.Equal(t, 3, cfg.Quorum.MinPeers)
	assert.Equal(t, 10*time.Second, cfg.Quorum.Timeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Quorum.SettleDelay)
}

func TestParseFlags_ExplicitZeroMinPeersDisablesPolling(t *testing.T) {
	cfg, _, err := parseFlags(CommandList, []string{"k", "-m", "0"})
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.Quorum.MinPeers)

	cfg, _, err = parseFlags(CommandList, []string{"k"})
	require.NoError(t, err)
	assert.Zero(t, cfg.Quorum.MinPeers)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    []string
	}{
		{"unknown command", "serve", nil},
		{"unknown flag", CommandSync, []string{"-x"}},
		{"list flag on sync", CommandSync, []string{"-m", "2"}},
		{"sync flag on list", CommandList, []string{"-n", "team"}},
		{"invalid address", CommandSync, []string{"-http", "nowhere"}},
		{"invalid duration", CommandList, []string{"-quorum-timeout", "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _, err := parseFlags(tt.command, tt.args)
			require.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestParseFlags_UnknownCommandSentinel(t *testing.T) {
	_, _, err := parseFlags("serve", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}
