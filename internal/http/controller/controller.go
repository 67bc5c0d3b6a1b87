package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-list-sync/internal/config"
)

// Controller handles general HTTP requests.
type Controller struct {
	config *config.Config
}

// New creates a new Controller with the given configuration.
func New(config *config.Config) *Controller {
	return &Controller{
		config: config,
	}
}

// Ping handles the HTTP GET request for health check endpoint.
func (con *Controller) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "pong",
		"product_api": con.config.ProductAPI.URL,
	})
}
