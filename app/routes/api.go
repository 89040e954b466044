package routes

import (
	"net/http"
	"strconv"

	gographql "github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/inventory/app/controllers"
	"github.com/shashiranjanraj/inventory/app/services"
	"github.com/shashiranjanraj/inventory/pkg/ctx"
	"github.com/shashiranjanraj/inventory/pkg/graphql"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
	"github.com/shashiranjanraj/inventory/pkg/router"
)

// Deps are the handlers' collaborators. Feed and Schema are optional.
type Deps struct {
	Catalog services.Catalog
	Schema  *gographql.Schema
	Feed    http.Handler
}

func RegisterAPI(r *router.Router, deps Deps) {
	products := controllers.NewProductController(deps.Catalog).WithLocation(func(id uint) (string, error) {
		return r.URL("products.show", map[string]string{"id": strconv.FormatUint(uint64(id), 10)})
	})
	chat := controllers.NewChatbotController(deps.Catalog)

	r.Get("/", "home", ctx.Wrap(controllers.Home))

	g := r.Group("/products")
	g.Get("/", "products.index", ctx.Wrap(products.Index))
	g.Post("/", "products.store", ctx.Wrap(products.Store))
	g.Get("/{id}", "products.show", ctx.Wrap(products.Show))
	g.Put("/{id}", "products.update", ctx.Wrap(products.Update))
	g.Delete("/{id}", "products.destroy", ctx.Wrap(products.Destroy))
	g.Post("/{id}/favorite", "products.favorite", ctx.Wrap(products.ToggleFavorite))

	r.Post("/chatbot", "chatbot.ask", ctx.Wrap(chat.Ask))

	if deps.Schema != nil {
		h := graphql.Handler(*deps.Schema)
		r.Get("/graphql", "graphql.query", h)
		r.Post("/graphql", "graphql.execute", h)
	}
	if deps.Feed != nil {
		r.Get("/ws/products", "products.feed", deps.Feed.ServeHTTP)
	}

	r.Get("/metrics", "metrics", metrics.Handler())
}
