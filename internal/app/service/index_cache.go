package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/shoplive-catalog/internal/app/model"
	"github.com/ikkim/shoplive-catalog/internal/app/repository"
	"github.com/ikkim/shoplive-catalog/internal/variant"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
	"gorm.io/gorm"
)

// DefaultIndexTTL bounds how long a built index is served. Presigned media
// URLs inside an index outlive it.
const DefaultIndexTTL = time.Hour

// IndexInvalidator drops cached indexes after catalog writes.
type IndexInvalidator interface {
	Invalidate(productID uint)
}

// Invalidators fans one invalidation out in order.
type Invalidators []IndexInvalidator

func (list Invalidators) Invalidate(productID uint) {
	for _, inv := range list {
		inv.Invalidate(productID)
	}
}

type indexEntry struct {
	index    *variant.Index
	warnings variant.Warnings
	builtAt  time.Time
}

// IndexCache builds variant indexes from the database and keeps them in
// memory per product. Safe for concurrent use.
type IndexCache struct {
	productRepo repository.ProductRepository
	resolver    model.MediaURLResolver
	ttl         time.Duration
	now         func() time.Time

	mu      sync.RWMutex
	entries map[uint]indexEntry
	// generations[id] is bumped by Invalidate. A build only lands in
	// entries if no invalidation happened while it ran.
	generations map[uint]uint64
}

func NewIndexCache(productRepo repository.ProductRepository, resolver model.MediaURLResolver, ttl time.Duration) *IndexCache {
	if ttl <= 0 {
		ttl = DefaultIndexTTL
	}
	return &IndexCache{
		productRepo: productRepo,
		resolver:    resolver,
		ttl:         ttl,
		now:         time.Now,
		entries:     make(map[uint]indexEntry),
		generations: make(map[uint]uint64),
	}
}

// Get returns the index for productID, building it on a miss.
func (c *IndexCache) Get(productID uint) (*variant.Index, variant.Warnings, error) {
	c.mu.RLock()
	entry, ok := c.entries[productID]
	generation := c.generations[productID]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.builtAt) < c.ttl {
		return entry.index, entry.warnings, nil
	}

	x, warnings, err := BuildProductIndex(c.productRepo, c.resolver, productID)
	if err != nil {
		return nil, nil, err
	}
	if len(warnings) > 0 {
		logger.Warn("Variant index built with catalog warnings", logger.Fields{
			"product_id": productID,
			"warnings":   len(warnings),
			"by_kind":    warnings.ByKind(),
		})
	}

	c.mu.Lock()
	stale := c.generations[productID] != generation
	if !stale {
		c.entries[productID] = indexEntry{index: x, warnings: warnings, builtAt: c.now()}
	}
	c.mu.Unlock()
	if stale {
		logger.Debug("Discarded variant index built before invalidation", logger.Fields{
			"product_id": productID,
		})
	}
	return x, warnings, nil
}

func (c *IndexCache) Invalidate(productID uint) {
	c.mu.Lock()
	delete(c.entries, productID)
	c.generations[productID]++
	c.mu.Unlock()
	logger.Debug("Variant index invalidated", logger.Fields{
		"product_id": productID,
	})
}

// Len reports the number of cached indexes.
func (c *IndexCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// BuildProductIndex loads a product and builds a fresh, uncached index.
func BuildProductIndex(productRepo repository.ProductRepository, resolver model.MediaURLResolver, productID uint) (*variant.Index, variant.Warnings, error) {
	product, err := productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, err
	}

	dims, skus, err := model.ToCatalog(product, resolver)
	if err != nil {
		return nil, nil, fmt.Errorf("convert product %d: %w", productID, err)
	}

	x, warnings := variant.Build(dims, skus)
	return x, warnings, nil
}
