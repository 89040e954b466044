// Package graphql serves a graphql-go schema over HTTP.
package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/inventory/pkg/bind"
	"github.com/shashiranjanraj/inventory/pkg/response"
)

// NewSchema builds a schema from root query and optional mutation objects.
func NewSchema(query, mutation *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

// Request is the standard GraphQL-over-HTTP body.
type Request struct {
	Query         string         `json:"query" validate:"required"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Handler executes POSTed queries, and GET ?query= for quick checks.
// Resolver errors are reported in the "errors" array with status 200.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		switch r.Method {
		case http.MethodGet:
			req.Query = r.URL.Query().Get("query")
			req.OperationName = r.URL.Query().Get("operationName")
			if v := r.URL.Query().Get("variables"); v != "" {
				if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
					response.Error(w, http.StatusBadRequest, "invalid variables: "+err.Error())
					return
				}
			}
			if req.Query == "" {
				response.ValidationError(w, map[string]string{"query": "The query field is required."})
				return
			}
		default:
			errs, err := bind.JSON(r, &req)
			if err != nil {
				response.Error(w, http.StatusBadRequest, err.Error())
				return
			}
			if len(errs) > 0 {
				response.ValidationError(w, errs)
				return
			}
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        r.Context(),
		})
		response.JSON(w, http.StatusOK, result)
	}
}
