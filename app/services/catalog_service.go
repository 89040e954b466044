package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/inventory/app/chatbot"
	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/app/repositories"
	"github.com/shashiranjanraj/inventory/pkg/cache"
	"github.com/shashiranjanraj/inventory/pkg/event"
	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
	"github.com/shashiranjanraj/inventory/pkg/storage"
)

// CacheKey holds the cached product list; GenerationKey counts catalog
// writes and is bumped after each one.
const (
	CacheKey      = "catalog:products"
	GenerationKey = "catalog:products:generation"
)

// Catalog events.
const (
	EventProductCreated   = "product.created"
	EventProductUpdated   = "product.updated"
	EventProductDeleted   = "product.deleted"
	EventProductFavorited = "product.favorited"
)

// ProductEvent is the payload of every catalog event. Product is nil for
// deletions.
type ProductEvent struct {
	Event     string          `json:"event"`
	ProductID uint            `json:"product_id"`
	Product   *models.Product `json:"product"`
}

// CatalogService wraps the product store with list caching and change
// events.
type CatalogService struct {
	repo   *repositories.ProductRepository
	cache  *cache.Store
	events *event.Dispatcher
	ttl    time.Duration
}

// NewCatalogService wires the service. store and events may be nil.
func NewCatalogService(repo *repositories.ProductRepository, store *cache.Store, events *event.Dispatcher, ttl time.Duration) *CatalogService {
	return &CatalogService{repo: repo, cache: store, events: events, ttl: ttl}
}

// List returns every product ordered by id.
func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	// Read the generation before the rows: a write committing in between
	// bumps it, so the list stored below is never served.
	gen, cacheable := s.cache.Generation(ctx, GenerationKey)

	var products []models.Product
	if cacheable && s.cache.Get(ctx, CacheKey, GenerationKey, &products) && products != nil {
		return products, nil
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	metrics.CatalogProducts.Set(float64(len(products)))

	if !cacheable {
		return products, nil
	}
	if err := s.cache.Set(ctx, CacheKey, gen, products, s.ttl); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache set failed", "error", err)
	}
	return products, nil
}

// Get returns one product.
func (s *CatalogService) Get(ctx context.Context, id uint) (models.Product, error) {
	return s.repo.Find(ctx, id)
}

// Create stores a new product built from in.
func (s *CatalogService) Create(ctx context.Context, in models.ProductInput) (models.Product, error) {
	p := in.ToProduct()
	if err := s.repo.Create(ctx, &p); err != nil {
		return models.Product{}, err
	}
	logger.WithCtx(ctx).Info("product created", "product_id", p.ID)
	s.changed(ctx, EventProductCreated, p.ID, &p)
	return p, nil
}

// Update applies a partial update.
func (s *CatalogService) Update(ctx context.Context, id uint, patch models.ProductPatch) (models.Product, error) {
	p, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return models.Product{}, err
	}
	s.changed(ctx, EventProductUpdated, p.ID, &p)
	return p, nil
}

// Delete removes a product permanently.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("product deleted", "product_id", id)
	s.changed(ctx, EventProductDeleted, id, nil)
	return nil
}

// ToggleFavorite flips the favorite flag.
func (s *CatalogService) ToggleFavorite(ctx context.Context, id uint) (models.Product, error) {
	p, err := s.repo.ToggleFavorite(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	s.changed(ctx, EventProductFavorited, p.ID, &p)
	return p, nil
}

// Ask answers a chatbot message against the current catalog.
func (s *CatalogService) Ask(ctx context.Context, message string) (chatbot.Reply, error) {
	products, err := s.List(ctx)
	if err != nil {
		return chatbot.Reply{}, err
	}
	reply := chatbot.Match(message, products)
	metrics.ChatbotReplies.WithLabelValues(reply.Rule).Inc()
	logger.WithCtx(ctx).Debug("chatbot replied", "rule", reply.Rule)
	return reply, nil
}

// ErrExportExists is returned by Export when the destination is taken and
// overwriting was not asked for.
var ErrExportExists = errors.New("catalog: export destination already exists")

// Export writes the catalog as a JSON array to path on disk and returns
// how many products were written. An existing file is only replaced when
// overwrite is set.
func (s *CatalogService) Export(ctx context.Context, disk storage.Disk, path string, overwrite bool) (int, error) {
	if !overwrite {
		exists, err := disk.Exists(ctx, path)
		if err != nil {
			return 0, err
		}
		if exists {
			return 0, fmt.Errorf("%w: %s", ErrExportExists, path)
		}
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("catalog: encode export: %w", err)
	}
	if err := disk.Put(ctx, path, data); err != nil {
		return 0, err
	}
	return len(products), nil
}

// PruneExports deletes all but the newest keep JSON exports under dir and
// returns the removed paths. Export names carry a sortable timestamp, so
// name order is age order.
func (s *CatalogService) PruneExports(ctx context.Context, disk storage.Disk, dir string, keep int) ([]string, error) {
	files, err := disk.Files(ctx, dir)
	if err != nil {
		return nil, err
	}
	var exports []string
	for _, f := range files {
		if strings.HasSuffix(f, ".json") {
			exports = append(exports, f)
		}
	}
	if keep < 0 || len(exports) <= keep {
		return nil, nil
	}

	stale := exports[:len(exports)-keep]
	for _, f := range stale {
		if err := disk.Delete(ctx, f); err != nil {
			return nil, err
		}
	}
	logger.WithCtx(ctx).Info("catalog: pruned exports", "dir", dir, "removed", len(stale))
	return stale, nil
}

// Import reads a JSON array written by Export and inserts every product,
// keeping ids, in one transaction.
func (s *CatalogService) Import(ctx context.Context, disk storage.Disk, path string) (int, error) {
	data, err := disk.Get(ctx, path)
	if err != nil {
		return 0, err
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return 0, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	if err := s.repo.CreateMany(ctx, products); err != nil {
		return 0, fmt.Errorf("catalog: import: %w", err)
	}
	s.invalidate(ctx)
	return len(products), nil
}

func (s *CatalogService) changed(ctx context.Context, name string, id uint, p *models.Product) {
	s.invalidate(ctx)
	if s.events != nil {
		s.events.FireAsync(ctx, name, ProductEvent{Event: name, ProductID: id, Product: p})
	}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx, GenerationKey); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache invalidate failed", "error", err)
	}
	if err := s.cache.Forget(ctx, CacheKey); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache invalidate failed", "error", err)
	}
}
