package service

import (
	"context"
	"iter"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/key-collection/internal/config"
	"github.com/MKhiriev/key-collection/internal/crypto"
	"github.com/MKhiriev/key-collection/internal/idenc"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/store"
	"github.com/MKhiriev/key-collection/models"
)

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

// hexKey returns a 64-char hex key made of c repeated.
func hexKey(c string) string {
	return strings.Repeat(c, 64)
}

// z32 returns the canonical rendering of raw.
func z32(raw string) string {
	return idenc.MustNormalize(raw)
}

func newTestStorages(t *testing.T) *store.Storages {
	t.Helper()
	s, err := store.NewStorages(testContext(), config.Storage{DSN: filepath.Join(t.TempDir(), "db.sqlite")}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestWriter(t *testing.T, s *store.Storages, namespace string) KeyCollection {
	t.Helper()
	return NewKeyCollectionService(s, crypto.NewKeyChainService(), namespace, logger.Nop())
}

func newTestReplica(t *testing.T, s *store.Storages, key string) KeyCollection {
	t.Helper()
	kc, err := NewReplicaKeyCollectionService(s, crypto.NewKeyChainService(), key, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, kc.Open(testContext()))
	return kc
}

func seqOf(recs ...models.KeyRecord) iter.Seq2[models.KeyRecord, error] {
	return func(yield func(models.KeyRecord, error) bool) {
		for _, rec := range recs {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func seqErr(err error) iter.Seq2[models.KeyRecord, error] {
	return func(yield func(models.KeyRecord, error) bool) {
		yield(models.KeyRecord{}, err)
	}
}
