package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/alexivanou/powderscout/internal/model"
	"github.com/alexivanou/powderscout/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// State is the lifecycle stage of the in-memory catalog
type State int

const (
	StateEmpty State = iota
	StateLoading
	StatePopulated
	StateInvalidated
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	case StateInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// requiredCachedFields must all be present on the first cached record,
// otherwise the cached entry predates the current schema.
var requiredCachedFields = []string{"liftCount", "website", "peakElevation", "baseElevation"}

// Catalog owns the resort catalog. It is loaded lazily, once, from the
// persistent store or the upstream source, and replaced wholesale afterwards.
type Catalog struct {
	source Source
	store  repository.Store
	logger *zap.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	state   State
	resorts []model.Resort
}

// New creates an empty catalog
func New(source Source, store repository.Store, logger *zap.Logger) *Catalog {
	return &Catalog{
		source: source,
		store:  store,
		logger: logger.Named("catalog"),
	}
}

// Load returns the catalog, populating it on first use. Failures are logged
// and yield an empty slice. The returned slice must not be modified.
func (c *Catalog) Load(ctx context.Context) []model.Resort {
	if resorts := c.snapshot(); len(resorts) > 0 {
		return resorts
	}

	// Concurrent first loads share one fetch; it must not die with the
	// first caller's request.
	loadCtx := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do("catalog", func() (interface{}, error) {
		if resorts := c.snapshot(); len(resorts) > 0 {
			return resorts, nil
		}

		c.mu.Lock()
		previous := c.state
		c.state = StateLoading
		c.mu.Unlock()

		resorts := c.load(loadCtx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if len(resorts) == 0 {
			c.state = previous
			return []model.Resort{}, nil
		}
		c.resorts = resorts
		c.state = StatePopulated
		return resorts, nil
	})

	return v.([]model.Resort)
}

func (c *Catalog) load(ctx context.Context) []model.Resort {
	if resorts, ok := c.loadCached(ctx); ok {
		c.logger.Info("Loaded catalog from cache", zap.Int("resorts", len(resorts)))
		return resorts
	}

	fc, err := c.source.Fetch(ctx)
	if err != nil {
		c.logger.Error("Failed to fetch ski resorts", zap.Error(err))
		return nil
	}

	resorts := Normalize(fc)
	c.logger.Info("Fetched catalog from source",
		zap.Int("features", len(fc.Features)),
		zap.Int("resorts", len(resorts)),
	)

	if err := c.persist(ctx, resorts); err != nil {
		c.logger.Warn("Failed to cache catalog", zap.Error(err))
	}
	return resorts
}

func (c *Catalog) loadCached(ctx context.Context) ([]model.Resort, bool) {
	data, err := c.store.Get(ctx, repository.KeyResorts)
	if err != nil {
		c.logger.Warn("Failed to read cached catalog", zap.Error(err))
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var resorts []model.Resort
	if !isCurrentSchema(data) || json.Unmarshal(data, &resorts) != nil {
		c.logger.Info("Stale catalog cache detected, clearing")
		if err := c.store.Delete(ctx, repository.KeyResorts); err != nil {
			c.logger.Warn("Failed to clear stale catalog cache", zap.Error(err))
		}
		return nil, false
	}
	return resorts, true
}

// isCurrentSchema checks the cached entry is a non-empty array whose first
// record carries every field the current Resort shape writes.
func isCurrentSchema(data []byte) bool {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil || len(records) == 0 {
		return false
	}
	for _, field := range requiredCachedFields {
		if _, ok := records[0][field]; !ok {
			return false
		}
	}
	return true
}

func (c *Catalog) persist(ctx context.Context, resorts []model.Resort) error {
	data, err := json.Marshal(resorts)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := c.store.Set(ctx, repository.KeyResorts, data); err != nil {
		return fmt.Errorf("failed to store catalog: %w", err)
	}
	return nil
}

// Replace installs a catalog obtained elsewhere (e.g. an offline import)
// and persists it.
func (c *Catalog) Replace(ctx context.Context, resorts []model.Resort) error {
	c.mu.Lock()
	c.resorts = resorts
	c.state = StatePopulated
	if len(resorts) == 0 {
		c.state = StateEmpty
	}
	c.mu.Unlock()

	return c.persist(ctx, resorts)
}

// Invalidate drops the in-memory catalog and its cached copy. The next Load
// refetches from the source.
func (c *Catalog) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.resorts = nil
	c.state = StateInvalidated
	c.mu.Unlock()

	if err := c.store.Delete(ctx, repository.KeyResorts); err != nil {
		return fmt.Errorf("failed to delete cached catalog: %w", err)
	}
	return nil
}

// State returns the current lifecycle stage
func (c *Catalog) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Len returns the number of resorts held in memory
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.resorts)
}

func (c *Catalog) snapshot() []model.Resort {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resorts
}
