package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/app/repositories"
	"github.com/shashiranjanraj/inventory/app/services"
	"github.com/shashiranjanraj/inventory/pkg/ctx"
)

const msgProductNotFound = "Product not found"

type ProductController struct {
	catalog  services.Catalog
	location func(id uint) (string, error)
}

func NewProductController(catalog services.Catalog) *ProductController {
	return &ProductController{catalog: catalog}
}

// WithLocation makes Store answer with a Location header built by fn.
func (pc *ProductController) WithLocation(fn func(id uint) (string, error)) *ProductController {
	pc.location = fn
	return pc
}

// Index handles GET /products.
func (pc *ProductController) Index(c *ctx.Context) {
	products, err := pc.catalog.List(c.Context())
	if err != nil {
		c.InternalError(err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Show handles GET /products/{id}.
func (pc *ProductController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	p, err := pc.catalog.Get(c.Context(), id)
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Store handles POST /products.
func (pc *ProductController) Store(c *ctx.Context) {
	var in models.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.catalog.Create(c.Context(), in)
	if err != nil {
		c.InternalError(err)
		return
	}
	if pc.location != nil {
		if loc, err := pc.location(p.ID); err == nil {
			c.W.Header().Set("Location", loc)
		}
	}
	c.JSON(http.StatusCreated, p)
}

// Update handles PUT /products/{id}. Only fields present in the body change.
func (pc *ProductController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var patch models.ProductPatch
	if !c.BindJSON(&patch) {
		return
	}
	p, err := pc.catalog.Update(c.Context(), id, patch)
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Destroy handles DELETE /products/{id}.
func (pc *ProductController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := pc.catalog.Delete(c.Context(), id); err != nil {
		pc.fail(c, err)
		return
	}
	c.NoContent()
}

// ToggleFavorite handles POST /products/{id}/favorite.
func (pc *ProductController) ToggleFavorite(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	p, err := pc.catalog.ToggleFavorite(c.Context(), id)
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pc *ProductController) fail(c *ctx.Context, err error) {
	if errors.Is(err, repositories.ErrProductNotFound) {
		c.NotFound(msgProductNotFound)
		return
	}
	c.InternalError(err)
}
