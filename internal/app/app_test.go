package app

import (
	"bytes"
	"context"
	"encoding/hex"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/idenc"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/service"
	"github.com/MKhiriev/key-collection/models"
)

// ── Helpers ──

// syncBuffer is a bytes.Buffer safe for a command goroutine and a test
// goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func hexKey(b byte) string {
	return hex.EncodeToString(bytes.Repeat([]byte{b}, idenc.KeyLength))
}

func freeAddr(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func testConfig(t *testing.T, command string) *config.StructuredConfig {
	t.Helper()

	cfg := config.Defaults(command)
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "db.sqlite")
	cfg.Server.HTTPAddress = ""
	cfg.Server.GRPCAddress = ""
	cfg.Workers.ProbeInterval = 20 * time.Millisecond
	cfg.Workers.ReplicationInterval = 20 * time.Millisecond
	cfg.Quorum.Timeout = 5 * time.Second
	cfg.Quorum.SettleDelay = 10 * time.Millisecond
	cfg.Quorum.PollInterval = 10 * time.Millisecond
	return cfg
}

func newTestApp(t *testing.T, cfg *config.StructuredConfig, out *syncBuffer) *App {
	t.Helper()

	a, err := NewApp(context.Background(), cfg, models.NewAppBuildInfo("test", "", ""), out, logger.Nop())
	require.NoError(t, err)
	return a
}

func writeDocument(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "keys.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// startSync runs `sync` in the background until the collection key is
// printed. The returned function stops the command and tears the app down.
func startSync(t *testing.T, cfg *config.StructuredConfig, location string) (*syncBuffer, string, func()) {
	t.Helper()

	out := &syncBuffer{}
	a := newTestApp(t, cfg, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.SyncCommand().Run(ctx, []string{location}) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), MsgCollectionKey)
	}, 5*time.Second, 10*time.Millisecond)

	var key string
	for _, line := range strings.Split(out.String(), "\n") {
		if rest, ok := strings.CutPrefix(line, MsgCollectionKey); ok {
			key = strings.TrimSpace(rest)
		}
	}

	stop := func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("sync did not return after cancel")
		}
		assert.NoError(t, a.Close())
	}
	return out, key, stop
}

// ── writeKeyMap ──

func TestWriteKeyMap_SortedLines(t *testing.T) {
	var buf bytes.Buffer

	err := writeKeyMap(&buf, models.KeyMap{
		"b": {Key: "b", Name: "bob"},
		"a": {Key: "a", Name: "alice"},
		"c": {Key: "c"},
	})

	require.NoError(t, err)
	assert.Equal(t, "a -> alice\nb -> bob\nc -> \n", buf.String())
}

func TestWriteKeyMap_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeKeyMap(&buf, models.KeyMap{}))
	assert.Empty(t, buf.String())
}

// ── NewApp ──

func TestNewApp_GeneratesNodeID(t *testing.T) {
	cfg := testConfig(t, config.CommandList)
	a := newTestApp(t, cfg, &syncBuffer{})
	defer a.Close()

	assert.NotEmpty(t, cfg.App.NodeID)
}

func TestNewApp_KeepsNodeID(t *testing.T) {
	cfg := testConfig(t, config.CommandList)
	cfg.App.NodeID = "node-1"
	a := newTestApp(t, cfg, &syncBuffer{})
	defer a.Close()

	assert.Equal(t, "node-1", cfg.App.NodeID)
}

func TestClose_WithoutCommand(t *testing.T) {
	a := newTestApp(t, testConfig(t, config.CommandSync), &syncBuffer{})

	assert.NoError(t, a.Close())
}

// ── sync ──

func TestSync_MissingLocation(t *testing.T) {
	a := newTestApp(t, testConfig(t, config.CommandSync), &syncBuffer{})
	defer a.Close()

	err := a.SyncCommand().Run(context.Background(), nil)

	require.ErrorIs(t, err, ErrMissingArgument)
}

func TestSync_InvalidKeyInDocument(t *testing.T) {
	a := newTestApp(t, testConfig(t, config.CommandSync), &syncBuffer{})
	defer a.Close()

	err := a.SyncCommand().Run(context.Background(), []string{writeDocument(t, "nope:\n  name: x\n")})

	require.ErrorIs(t, err, idenc.ErrInvalidKeyEncoding)
}

func TestSync_PrintsStateAndKey(t *testing.T) {
	cfg := testConfig(t, config.CommandSync)
	doc := writeDocument(t, hexKey(1)+":\n  name: user1\n"+hexKey(2)+":\n  name: user2\n")

	out, key, stop := startSync(t, cfg, doc)
	stop()

	assert.NotEmpty(t, key)
	assert.Contains(t, out.String(), idenc.MustNormalize(hexKey(1))+" -> user1\n")
	assert.Contains(t, out.String(), idenc.MustNormalize(hexKey(2))+" -> user2\n")
}

func TestSync_ResyncKeepsCollectionKey(t *testing.T) {
	cfg := testConfig(t, config.CommandSync)

	_, first, stop := startSync(t, cfg, writeDocument(t, hexKey(1)+":\n  name: user1\n"))
	stop()

	out, second, stop := startSync(t, cfg, writeDocument(t, hexKey(2)+":\n  name: user2\n"))
	stop()

	assert.Equal(t, first, second)
	assert.NotContains(t, out.String(), idenc.MustNormalize(hexKey(1)))
	assert.Contains(t, out.String(), idenc.MustNormalize(hexKey(2))+" -> user2\n")
}

// ── list ──

func TestList_MissingKey(t *testing.T) {
	a := newTestApp(t, testConfig(t, config.CommandList), &syncBuffer{})
	defer a.Close()

	err := a.ListCommand().Run(context.Background(), []string{""})

	require.ErrorIs(t, err, ErrMissingArgument)
}

func TestList_InvalidKey(t *testing.T) {
	a := newTestApp(t, testConfig(t, config.CommandList), &syncBuffer{})
	defer a.Close()

	err := a.ListCommand().Run(context.Background(), []string{"short"})

	require.ErrorIs(t, err, idenc.ErrInvalidKeyEncoding)
}

func TestList_QuorumTimeout(t *testing.T) {
	cfg := testConfig(t, config.CommandList)
	cfg.Quorum.MinPeers = 1
	cfg.Quorum.Timeout = 50 * time.Millisecond

	out := &syncBuffer{}
	a := newTestApp(t, cfg, out)

	err := a.ListCommand().Run(context.Background(), []string{hexKey(9)})
	require.NoError(t, a.Close())

	require.ErrorIs(t, err, service.ErrQuorumTimeout)
	var qErr *service.QuorumTimeoutError
	require.ErrorAs(t, err, &qErr)
	assert.Equal(t, 1, qErr.MinPeers)
	assert.Equal(t, 0, qErr.PeerCount)
	assert.Empty(t, out.String())
}

func TestList_NoQuorumRequired(t *testing.T) {
	cfg := testConfig(t, config.CommandList)
	cfg.Quorum.MinPeers = -1

	out := &syncBuffer{}
	a := newTestApp(t, cfg, out)
	defer a.Close()

	err := a.ListCommand().Run(context.Background(), []string{hexKey(9)})

	require.NoError(t, err)
	assert.Empty(t, out.String())
}

// ── sync → list over the network ──

func TestSyncThenList_ReplicatesFromWriter(t *testing.T) {
	writerCfg := testConfig(t, config.CommandSync)
	writerCfg.Server.HTTPAddress = freeAddr(t)
	writerCfg.Server.GRPCAddress = freeAddr(t)

	doc := writeDocument(t, hexKey(1)+":\n  name: user1\n"+hexKey(2)+":\n  name: user2\n")
	_, key, stop := startSync(t, writerCfg, doc)
	defer stop()

	readerCfg := testConfig(t, config.CommandList)
	readerCfg.Adapter.Peers = []string{writerCfg.Server.HTTPAddress}

	out := &syncBuffer{}
	reader := newTestApp(t, readerCfg, out)
	defer reader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, reader.ListCommand().Run(ctx, []string{key}))

	want := idenc.MustNormalize(hexKey(1)) + " -> user1\n" + idenc.MustNormalize(hexKey(2)) + " -> user2\n"
	if idenc.MustNormalize(hexKey(2)) < idenc.MustNormalize(hexKey(1)) {
		want = idenc.MustNormalize(hexKey(2)) + " -> user2\n" + idenc.MustNormalize(hexKey(1)) + " -> user1\n"
	}
	assert.Equal(t, want, out.String())
}
