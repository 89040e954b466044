package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/inventory/app/services"
	"github.com/shashiranjanraj/inventory/pkg/ctx"
)

// ChatInput is the POST /chatbot body. An empty message is allowed.
type ChatInput struct {
	Message *string `json:"message" validate:"required"`
}

// ChatReply is the POST /chatbot response.
type ChatReply struct {
	Response string `json:"response"`
}

type ChatbotController struct {
	catalog services.Catalog
}

func NewChatbotController(catalog services.Catalog) *ChatbotController {
	return &ChatbotController{catalog: catalog}
}

// Ask handles POST /chatbot.
func (cc *ChatbotController) Ask(c *ctx.Context) {
	var in ChatInput
	if !c.BindJSON(&in) {
		return
	}
	reply, err := cc.catalog.Ask(c.Context(), *in.Message)
	if err != nil {
		c.InternalError(err)
		return
	}
	c.JSON(http.StatusOK, ChatReply{Response: reply.Text})
}
