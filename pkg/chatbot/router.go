package chatbot

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planlane/planlane/pkg/logutils"
)

// RegisterRoutes mounts the chatbot sub-router. The webhook accepts
// inbound channel callbacks; replies and conversation state are out of
// scope here, the endpoint only acknowledges delivery.
func RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/status", status)
	g.POST("/webhook", webhook)
}

func status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type inboundMessage struct {
	From string `json:"from"`
	Body string `json:"body"`
}

func webhook(c *gin.Context) {
	var msg inboundMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	logutils.Log.WithFields(logutils.Fields{"from": msg.From}).Info("chatbot inbound message")
	c.JSON(http.StatusOK, gin.H{"received": true})
}
