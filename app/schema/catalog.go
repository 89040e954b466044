// Package schema exposes the catalog over GraphQL.
package schema

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/app/repositories"
	"github.com/shashiranjanraj/inventory/app/services"
	"github.com/shashiranjanraj/inventory/pkg/collection"
	gql "github.com/shashiranjanraj/inventory/pkg/graphql"
)

var errProductNotFound = errors.New("Product not found")

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"amount":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"description": &graphql.Field{Type: graphql.String},
		"favorite":    &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

func toMap(p models.Product) map[string]any {
	m := map[string]any{
		"id":          int(p.ID),
		"name":        p.Name,
		"amount":      p.Amount,
		"price":       p.Price,
		"description": nil,
		"favorite":    p.Favorite,
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	return m
}

func idArg(p graphql.ResolveParams) (uint, error) {
	id, _ := p.Args["id"].(int)
	if id <= 0 {
		return 0, errors.New("The id must be a positive integer.")
	}
	return uint(id), nil
}

func notFound(err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return errProductNotFound
	}
	return err
}

// New builds the catalog schema.
func New(catalog services.Catalog) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType))),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					products, err := catalog.List(p.Context)
					if err != nil {
						return nil, err
					}
					return collection.Map(products, toMap), nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, err := idArg(p)
					if err != nil {
						return nil, err
					}
					product, err := catalog.Get(p.Context, id)
					if errors.Is(err, repositories.ErrProductNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return toMap(product), nil
				},
			},
			"chatbot": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Args: graphql.FieldConfigArgument{
					"message": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					msg, _ := p.Args["message"].(string)
					reply, err := catalog.Ask(p.Context, msg)
					if err != nil {
						return nil, err
					}
					return reply.Text, nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createProduct": &graphql.Field{
				Type: graphql.NewNonNull(productType),
				Args: graphql.FieldConfigArgument{
					"name":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"amount":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"price":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					in, err := createInput(p.Args)
					if err != nil {
						return nil, err
					}
					product, err := catalog.Create(p.Context, in)
					if err != nil {
						return nil, err
					}
					return toMap(product), nil
				},
			},
			"updateProduct": &graphql.Field{
				Type: graphql.NewNonNull(productType),
				Args: graphql.FieldConfigArgument{
					"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"name":        &graphql.ArgumentConfig{Type: graphql.String},
					"amount":      &graphql.ArgumentConfig{Type: graphql.Int},
					"price":       &graphql.ArgumentConfig{Type: graphql.Float},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"favorite":    &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, err := idArg(p)
					if err != nil {
						return nil, err
					}
					patch := patchFromArgs(p.Args)
					if errs := patch.Validate(); len(errs) > 0 {
						return nil, firstError(errs)
					}
					product, err := catalog.Update(p.Context, id, patch)
					if err != nil {
						return nil, notFound(err)
					}
					return toMap(product), nil
				},
			},
			"deleteProduct": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, err := idArg(p)
					if err != nil {
						return nil, err
					}
					if err := catalog.Delete(p.Context, id); err != nil {
						return nil, notFound(err)
					}
					return true, nil
				},
			},
			"toggleFavorite": &graphql.Field{
				Type: graphql.NewNonNull(productType),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, err := idArg(p)
					if err != nil {
						return nil, err
					}
					product, err := catalog.ToggleFavorite(p.Context, id)
					if err != nil {
						return nil, notFound(err)
					}
					return toMap(product), nil
				},
			},
		},
	})

	return gql.NewSchema(query, mutation)
}

func createInput(args map[string]any) (models.ProductInput, error) {
	name, _ := args["name"].(string)
	if name == "" {
		return models.ProductInput{}, errors.New("The name field is required.")
	}
	amount, _ := args["amount"].(int)
	price, _ := args["price"].(float64)
	in := models.ProductInput{Name: name, Amount: &amount, Price: &price}
	if d, ok := args["description"].(string); ok {
		in.Description = &d
	}
	return in, nil
}

// patchFromArgs sets only the arguments the caller supplied. graphql-go
// drops null arguments, so GraphQL updates cannot clear a description.
func patchFromArgs(args map[string]any) models.ProductPatch {
	var patch models.ProductPatch
	if v, ok := args["name"]; ok {
		patch.Name = optional[string](v)
	}
	if v, ok := args["amount"]; ok {
		patch.Amount = optional[int](v)
	}
	if v, ok := args["price"]; ok {
		patch.Price = optional[float64](v)
	}
	if v, ok := args["description"]; ok {
		patch.Description = optional[string](v)
	}
	if v, ok := args["favorite"]; ok {
		patch.Favorite = optional[bool](v)
	}
	return patch
}

func optional[T any](v any) models.Optional[T] {
	if t, ok := v.(T); ok {
		return models.Some(t)
	}
	return models.Optional[T]{Set: true, Null: true}
}

func firstError(errs map[string]string) error {
	for _, field := range []string{"name", "amount", "price", "description", "favorite"} {
		if msg, ok := errs[field]; ok {
			return errors.New(msg)
		}
	}
	return errors.New("invalid input")
}
