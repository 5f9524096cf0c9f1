// Package catalog keeps the enrolled identities in an immutable in-memory
// snapshot that matching reads without locks.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/utils"
	"rollcall.io/entities"
	"rollcall.io/infrastructure/biometric"
	"rollcall.io/infrastructure/biometric/types"
	"rollcall.io/infrastructure/logger"
)

type CatalogStore interface {
	All(ctx context.Context) ([]entities.EnrolledIdentity, error)
	Get(ctx context.Context, id string) (*entities.EnrolledIdentity, error)
	Upsert(ctx context.Context, identity entities.EnrolledIdentity) (*entities.EnrolledIdentity, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// VersionStamp lets several instances notice each other's writes.
type VersionStamp interface {
	Current(ctx context.Context) (int64, error)
	Bump(ctx context.Context) error
}

type snapshot struct {
	entries  []entities.EnrolledIdentity
	loadedAt time.Time
	version  int64
}

type Catalog struct {
	Store     CatalogStore
	Version   VersionStamp
	Matcher   biometric.IdentityMatcher
	Dimension int
	Refresh   time.Duration
	Now       func() time.Time

	current atomic.Pointer[snapshot]
	mu      sync.Mutex
}

func New(store CatalogStore, version VersionStamp, dimension int, refresh time.Duration) *Catalog {
	return &Catalog{
		Store:     store,
		Version:   version,
		Matcher:   biometric.NewIdentityMatcher(dimension),
		Dimension: dimension,
		Refresh:   refresh,
		Now:       time.Now,
	}
}

// Match runs the matcher over the current snapshot.
func (c *Catalog) Match(ctx context.Context, query []float32) (types.MatchResult, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return types.MatchResult{}, err
	}
	return c.Matcher.Match(query, snap.entries)
}

// Get returns a copy of the identity, or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id string) (entities.EnrolledIdentity, error) {
	id = utils.NormalizeID(id)
	snap, err := c.snapshot(ctx)
	if err != nil {
		return entities.EnrolledIdentity{}, err
	}
	for _, entry := range snap.entries {
		if entry.ID == id {
			return entry.Clone(), nil
		}
	}
	return entities.EnrolledIdentity{}, apperrors.ErrNotFound
}

// Profile reads the full record, image included, straight from the store.
func (c *Catalog) Profile(ctx context.Context, id string) (*entities.EnrolledIdentity, error) {
	return c.Store.Get(ctx, utils.NormalizeID(id))
}

func (c *Catalog) Count(ctx context.Context) (int, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return len(snap.entries), nil
}

// Enroll creates or fully replaces an identity and publishes a new snapshot.
func (c *Catalog) Enroll(ctx context.Context, identity entities.EnrolledIdentity) (entities.EnrolledIdentity, error) {
	identity.ID = utils.NormalizeID(identity.ID)
	if !utils.IsStorageKey(identity.ID) {
		return entities.EnrolledIdentity{}, fmt.Errorf("%w: identity %q", apperrors.ErrInvalidKey, identity.ID)
	}
	if c.Dimension > 0 && len(identity.Embedding) != c.Dimension {
		return entities.EnrolledIdentity{}, &apperrors.DimensionError{Want: c.Dimension, Got: len(identity.Embedding)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	saved, err := c.Store.Upsert(ctx, identity)
	if err != nil {
		return entities.EnrolledIdentity{}, err
	}
	stored := saved.Clone()
	stored.ImageData = nil

	c.publish(ctx, func(entries []entities.EnrolledIdentity) []entities.EnrolledIdentity {
		for i := range entries {
			if entries[i].ID == stored.ID {
				entries[i] = stored
				return entries
			}
		}
		return append(entries, stored)
	})
	return saved.Clone(), nil
}

// Delete reports whether the identity existed.
func (c *Catalog) Delete(ctx context.Context, id string) (bool, error) {
	id = utils.NormalizeID(id)

	c.mu.Lock()
	defer c.mu.Unlock()

	deleted, err := c.Store.Delete(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}
	c.publish(ctx, func(entries []entities.EnrolledIdentity) []entities.EnrolledIdentity {
		out := entries[:0]
		for _, entry := range entries {
			if entry.ID != id {
				out = append(out, entry)
			}
		}
		return out
	})
	return true, nil
}

// Reload replaces the snapshot with the store's current contents.
func (c *Catalog) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.load(ctx, c.remoteVersion(ctx))
	return err
}

// publish must be called with mu held. It copies the current entries, applies
// edit and swaps the result in, so readers never see a partial change.
func (c *Catalog) publish(ctx context.Context, edit func([]entities.EnrolledIdentity) []entities.EnrolledIdentity) {
	var version int64
	if c.Version != nil {
		if err := c.Version.Bump(ctx); err != nil {
			logger.Warning("could not bump catalog version", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
		version = c.remoteVersion(ctx)
	}

	old := c.current.Load()
	if old == nil {
		// nothing cached yet; the next read loads from the store
		return
	}
	entries := make([]entities.EnrolledIdentity, len(old.entries))
	copy(entries, old.entries)
	c.current.Store(&snapshot{entries: edit(entries), loadedAt: c.now(), version: version})
}

func (c *Catalog) snapshot(ctx context.Context) (*snapshot, error) {
	snap := c.current.Load()
	if snap != nil && !c.stale(snap) {
		version := c.remoteVersion(ctx)
		if version == snap.version {
			return snap, nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	version := c.remoteVersion(ctx)
	if snap = c.current.Load(); snap != nil && !c.stale(snap) && snap.version == version {
		return snap, nil
	}
	return c.load(ctx, version)
}

func (c *Catalog) load(ctx context.Context, version int64) (*snapshot, error) {
	entries, err := c.Store.All(ctx)
	if err != nil {
		if snap := c.current.Load(); snap != nil {
			logger.Warning("catalog reload failed, serving previous snapshot", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			return snap, nil
		}
		return nil, err
	}
	for i := range entries {
		entries[i] = entries[i].Clone()
		entries[i].ImageData = nil
	}
	snap := &snapshot{entries: entries, loadedAt: c.now(), version: version}
	c.current.Store(snap)
	return snap, nil
}

func (c *Catalog) stale(snap *snapshot) bool {
	return c.Refresh > 0 && c.now().Sub(snap.loadedAt) > c.Refresh
}

// remoteVersion returns 0 when no stamp is configured or it cannot be read.
func (c *Catalog) remoteVersion(ctx context.Context) int64 {
	if c.Version == nil {
		return 0
	}
	version, err := c.Version.Current(ctx)
	if err != nil {
		logger.Warning("could not read catalog version", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return 0
	}
	return version
}

func (c *Catalog) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
