package services

import (
	"context"

	"github.com/shashiranjanraj/inventory/app/chatbot"
	"github.com/shashiranjanraj/inventory/app/models"
)

// Catalog is the surface the HTTP and GraphQL layers consume.
type Catalog interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id uint) (models.Product, error)
	Create(ctx context.Context, in models.ProductInput) (models.Product, error)
	Update(ctx context.Context, id uint, patch models.ProductPatch) (models.Product, error)
	Delete(ctx context.Context, id uint) error
	ToggleFavorite(ctx context.Context, id uint) (models.Product, error)
	Ask(ctx context.Context, message string) (chatbot.Reply, error)
}

var _ Catalog = (*CatalogService)(nil)
