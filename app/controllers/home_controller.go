package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/inventory/pkg/ctx"
)

// Home handles GET /, the liveness probe.
func Home(c *ctx.Context) {
	c.JSON(http.StatusOK, map[string]string{"Hello": "World"})
}
