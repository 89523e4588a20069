package service

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/MKhiriev/key-collection/internal/crypto"
	"github.com/MKhiriev/key-collection/internal/idenc"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/store"
	"github.com/MKhiriev/key-collection/models"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentOps bounds the goroutines submitting operations to one
// transaction.
const maxConcurrentOps = 16

type collectionState int

const (
	stateUnopened collectionState = iota
	stateReady
	stateClosed
)

type keyCollectionService struct {
	repo     store.CollectionRepository
	entries  store.KeyCollectionStore
	keychain crypto.KeyChainService
	planner  SyncService

	namespace string
	// replicaKey is the collection key a read-only replica follows. It is
	// empty for the writer.
	replicaKey string

	openOnce sync.Once
	openErr  error

	// writeMu serializes Sync and ApplySnapshot.
	writeMu sync.Mutex

	mu           sync.RWMutex
	state        collectionState
	collection   models.Collection
	publicKey    ed25519.PublicKey
	secretKey    ed25519.PrivateKey
	discoveryKey string
	lastVerified models.SignedSnapshot

	logger *logger.Logger
}

// NewKeyCollectionService constructs the writer side of the collection stored
// under namespace. The keypair of the collection is created on first Open.
func NewKeyCollectionService(storages *store.Storages, keychain crypto.KeyChainService, namespace string, logger *logger.Logger) KeyCollection {
	return newKeyCollectionService(storages.CollectionRepository, storages.KeyCollection(namespace), keychain, namespace, "", logger)
}

// NewReplicaKeyCollectionService constructs a read-only replica of the
// collection identified by key. The replica is stored under the normalized
// key and only changes through ApplySnapshot.
func NewReplicaKeyCollectionService(storages *store.Storages, keychain crypto.KeyChainService, key string, logger *logger.Logger) (KeyCollection, error) {
	normalized, err := idenc.Normalize(key)
	if err != nil {
		return nil, fmt.Errorf("collection key: %w", err)
	}

	return newKeyCollectionService(storages.CollectionRepository, storages.KeyCollection(normalized), keychain, normalized, normalized, logger), nil
}

func newKeyCollectionService(
	repo store.CollectionRepository,
	entries store.KeyCollectionStore,
	keychain crypto.KeyChainService,
	namespace, replicaKey string,
	logger *logger.Logger,
) *keyCollectionService {
	return &keyCollectionService{
		repo:       repo,
		entries:    entries,
		keychain:   keychain,
		planner:    NewSyncService(),
		namespace:  namespace,
		replicaKey: replicaKey,
		logger:     logger,
	}
}

// ── Lifecycle ───────────────────────────────────────────────────────────────

// Open implements [KeyCollection]. The writer creates its keypair and
// collection row when the namespace is new. A replica registers the followed
// key with an empty secret.
func (c *keyCollectionService) Open(ctx context.Context) error {
	if c.currentState() == stateClosed {
		return ErrCollectionClosed
	}

	c.openOnce.Do(func() {
		c.openErr = c.open(ctx)
	})

	return c.openErr
}

func (c *keyCollectionService) open(ctx context.Context) error {
	log := logger.FromContext(ctx)

	col, err := c.repo.Find(ctx, c.namespace)
	switch {
	case errors.Is(err, store.ErrCollectionNotFound):
		col, err = c.create(ctx)
		if err != nil {
			log.Err(err).Str("func", "*keyCollectionService.open").Str("namespace", c.namespace).Msg("error creating collection")
			return err
		}
	case err != nil:
		log.Err(err).Str("func", "*keyCollectionService.open").Str("namespace", c.namespace).Msg("error finding collection")
		return fmt.Errorf("find collection: %w", err)
	}

	publicKey, err := idenc.Decode(col.PublicKey)
	if err != nil {
		return fmt.Errorf("stored collection key: %w", err)
	}

	var secretKey ed25519.PrivateKey
	if col.Writable() {
		secretKey, err = hex.DecodeString(col.SecretKey)
		if err != nil || len(secretKey) != ed25519.PrivateKeySize {
			return fmt.Errorf("%w: stored secret key of %s", crypto.ErrInvalidKeyLength, c.namespace)
		}
	}

	discoveryKey, err := c.keychain.DiscoveryKey(publicKey)
	if err != nil {
		return fmt.Errorf("derive discovery key: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return ErrCollectionClosed
	}
	c.collection = col
	c.publicKey = publicKey
	c.secretKey = secretKey
	c.discoveryKey = idenc.Encode(discoveryKey)
	c.state = stateReady

	log.Debug().
		Str("func", "*keyCollectionService.open").
		Str("namespace", c.namespace).
		Str("discovery_key", c.discoveryKey).
		Bool("writable", col.Writable()).
		Msg("collection opened")

	return nil
}

func (c *keyCollectionService) create(ctx context.Context) (models.Collection, error) {
	col := models.Collection{Namespace: c.namespace, PublicKey: c.replicaKey}

	if c.replicaKey == "" {
		keys, err := c.keychain.GenerateCollectionKeys()
		if err != nil {
			return models.Collection{}, err
		}
		col.PublicKey = idenc.Encode(keys.PublicKey)
		col.SecretKey = hex.EncodeToString(keys.SecretKey)
	}

	err := c.repo.Create(ctx, col)
	if errors.Is(err, store.ErrCollectionAlreadyExists) {
		// another process created it first
		return c.repo.Find(ctx, c.namespace)
	}
	if err != nil {
		return models.Collection{}, fmt.Errorf("create collection: %w", err)
	}

	return col, nil
}

// Close implements [KeyCollection].
func (c *keyCollectionService) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = stateClosed
	return nil
}

// Ready implements [KeyCollection].
func (c *keyCollectionService) Ready() bool {
	return c.currentState() == stateReady
}

func (c *keyCollectionService) currentState() collectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *keyCollectionService) ready() error {
	switch c.currentState() {
	case stateReady:
		return nil
	case stateClosed:
		return ErrCollectionClosed
	default:
		return ErrCollectionNotOpened
	}
}

// openIfNeeded opens an unopened collection and rejects a closed one.
func (c *keyCollectionService) openIfNeeded(ctx context.Context) error {
	switch c.currentState() {
	case stateClosed:
		return ErrCollectionClosed
	case stateUnopened:
		return c.Open(ctx)
	default:
		return nil
	}
}

// Writable implements [KeyCollection].
func (c *keyCollectionService) Writable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.secretKey != nil
}

// Key implements [KeyCollection]. It is empty until the collection is opened.
func (c *keyCollectionService) Key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collection.PublicKey
}

// DiscoveryKey implements [KeyCollection]. It is empty until the collection is
// opened.
func (c *keyCollectionService) DiscoveryKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.discoveryKey
}

// ── Reads ───────────────────────────────────────────────────────────────────

// ToMap implements [KeyCollection]. Every key is normalized again on the way
// out, so entries written by older peers still collide with fresh input.
func (c *keyCollectionService) ToMap(ctx context.Context) (models.KeyMap, error) {
	if err := c.openIfNeeded(ctx); err != nil {
		return nil, err
	}

	return c.toMap(ctx)
}

func (c *keyCollectionService) toMap(ctx context.Context) (models.KeyMap, error) {
	state := make(models.KeyMap)
	for rec, err := range c.entries.Iterate(ctx) {
		if err != nil {
			return nil, fmt.Errorf("read collection: %w", err)
		}

		key, err := idenc.Normalize(rec.Key)
		if err != nil {
			return nil, fmt.Errorf("persisted key %q: %w", rec.Key, err)
		}
		state[key] = models.KeyRecord{Key: key, Name: rec.Name}
	}

	return state, nil
}

// Get implements [KeyCollection].
func (c *keyCollectionService) Get(ctx context.Context, key string) (models.KeyRecord, error) {
	if err := c.ready(); err != nil {
		return models.KeyRecord{}, err
	}

	normalized, err := idenc.Normalize(key)
	if err != nil {
		return models.KeyRecord{}, err
	}

	return c.entries.Get(ctx, normalized)
}

// Version implements [KeyCollection].
func (c *keyCollectionService) Version(ctx context.Context) (int64, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}

	return c.entries.Version(ctx)
}

// ── Reconciliation ──────────────────────────────────────────────────────────

// Sync implements [KeyCollection].
//
// The persisted state is read fresh, compared with desired and the
// difference is written in a single transaction: every insert and delete is
// submitted concurrently on the same handle, then the handle is flushed once.
// Any failure rolls the transaction back and is reported as
// [ErrTransactionFailed]; the persisted state is then unchanged. An empty
// plan opens no transaction at all.
func (c *keyCollectionService) Sync(ctx context.Context, desired models.KeyMap) (models.SyncPlan, error) {
	log := logger.FromContext(ctx)

	if err := c.openIfNeeded(ctx); err != nil {
		return models.SyncPlan{}, err
	}
	if !c.Writable() {
		return models.SyncPlan{}, ErrCollectionReadOnly
	}

	normalized, err := normalizeDesired(desired)
	if err != nil {
		return models.SyncPlan{}, err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	persisted, err := c.toMap(ctx)
	if err != nil {
		return models.SyncPlan{}, err
	}

	plan, err := c.planner.BuildSyncPlan(ctx, normalized, persisted)
	if err != nil {
		return models.SyncPlan{}, fmt.Errorf("build sync plan: %w", err)
	}
	if plan.IsEmpty() {
		log.Debug().Str("func", "*keyCollectionService.Sync").Msg("collection already in sync")
		return plan, nil
	}

	if err = c.execute(ctx, plan); err != nil {
		log.Err(err).Str("func", "*keyCollectionService.Sync").Str("namespace", c.namespace).Msg("error executing sync plan")
		return models.SyncPlan{}, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	log.Info().
		Str("func", "*keyCollectionService.Sync").
		Str("namespace", c.namespace).
		Int("added", len(plan.Add)).
		Int("deleted", len(plan.Delete)).
		Msg("collection synced")

	return plan, nil
}

func (c *keyCollectionService) execute(ctx context.Context, plan models.SyncPlan) error {
	tx, err := c.entries.Begin(ctx)
	if err != nil {
		return err
	}
	// no-op once flushed
	defer tx.Rollback()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOps)

	for _, rec := range plan.Add {
		g.Go(func() error {
			return tx.Insert(gctx, rec)
		})
	}
	for _, key := range plan.Delete {
		g.Go(func() error {
			return tx.Delete(gctx, key)
		})
	}

	if err = g.Wait(); err != nil {
		return err
	}

	return tx.Flush(ctx)
}

// normalizeDesired rekeys desired by normalized key. The map key wins over
// the record key; the record key is only used when the map key is blank.
// When several spellings of one key are present, the record stored under the
// lexicographically smallest spelling is kept.
func normalizeDesired(desired models.KeyMap) (models.KeyMap, error) {
	raw := desired.Keys()
	slices.Sort(raw)

	out := make(models.KeyMap, len(desired))
	for _, k := range raw {
		rec := desired[k]

		src := k
		if strings.TrimSpace(src) == "" {
			src = rec.Key
		}

		key, err := idenc.Normalize(src)
		if err != nil {
			return nil, fmt.Errorf("desired key %q: %w", src, err)
		}
		if _, dup := out[key]; dup {
			continue
		}
		out[key] = models.KeyRecord{Key: key, Name: rec.Name}
	}

	return out, nil
}

// ── Replication ─────────────────────────────────────────────────────────────

// SignedSnapshot implements [KeyCollection]. The writer signs its current
// content; a replica hands out the last snapshot it verified and applied.
func (c *keyCollectionService) SignedSnapshot(ctx context.Context) (models.SignedSnapshot, error) {
	if err := c.ready(); err != nil {
		return models.SignedSnapshot{}, err
	}

	c.mu.RLock()
	secretKey, discoveryKey, last := c.secretKey, c.discoveryKey, c.lastVerified
	c.mu.RUnlock()

	if secretKey == nil {
		if last.Token == "" {
			return models.SignedSnapshot{}, ErrSnapshotUnavailable
		}
		return last, nil
	}

	version, entries, err := c.entries.Snapshot(ctx)
	if err != nil {
		return models.SignedSnapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	token, err := c.keychain.SignSnapshot(models.Snapshot{
		DiscoveryKey: discoveryKey,
		Version:      version,
		Entries:      entries,
	}, secretKey)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*keyCollectionService.SignedSnapshot").Msg("error signing snapshot")
		return models.SignedSnapshot{}, err
	}

	return models.SignedSnapshot{Token: token, Version: version}, nil
}

// ApplySnapshot implements [KeyCollection]. Snapshots that are not newer than
// the local version are skipped without verifying them.
func (c *keyCollectionService) ApplySnapshot(ctx context.Context, signed models.SignedSnapshot) (bool, error) {
	log := logger.FromContext(ctx)

	if err := c.ready(); err != nil {
		return false, err
	}
	if c.Writable() {
		return false, ErrCollectionWritable
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	local, err := c.entries.Version(ctx)
	if err != nil {
		return false, fmt.Errorf("read local version: %w", err)
	}
	if signed.Version <= local {
		return false, nil
	}

	c.mu.RLock()
	publicKey, discoveryKey := c.publicKey, c.discoveryKey
	c.mu.RUnlock()

	snapshot, err := c.keychain.VerifySnapshot(signed.Token, publicKey)
	if err != nil {
		log.Warn().Err(err).Str("func", "*keyCollectionService.ApplySnapshot").Msg("rejected snapshot")
		return false, err
	}
	if snapshot.DiscoveryKey != discoveryKey {
		return false, ErrSnapshotMismatch
	}

	entries := make([]models.KeyRecord, 0, len(snapshot.Entries))
	seen := make(map[string]struct{}, len(snapshot.Entries))
	for _, rec := range snapshot.Entries {
		key, err := idenc.Normalize(rec.Key)
		if err != nil {
			return false, fmt.Errorf("snapshot key %q: %w", rec.Key, err)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, models.KeyRecord{Key: key, Name: rec.Name})
	}

	applied, err := c.entries.ReplaceAll(ctx, snapshot.Version, entries)
	if err != nil {
		log.Err(err).Str("func", "*keyCollectionService.ApplySnapshot").Msg("error installing snapshot")
		return false, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	if applied {
		c.mu.Lock()
		c.lastVerified = models.SignedSnapshot{Token: signed.Token, Version: snapshot.Version}
		c.mu.Unlock()

		log.Info().
			Str("func", "*keyCollectionService.ApplySnapshot").
			Int64("version", snapshot.Version).
			Int("entries", len(entries)).
			Msg("snapshot applied")
	}

	return applied, nil
}
