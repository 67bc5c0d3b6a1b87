package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-list-sync/internal/http/controller"
	"github.com/iyhunko/product-list-sync/internal/http/middleware"
)

// InitRouter registers the presentation facade routes on server.
func InitRouter(server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery(), middleware.Logger(), middleware.CORS())

	server.GET("/ping", ctr.Ping)

	state := server.Group("/state")
	{
		state.GET("", productCtr.GetState)
		state.GET("/stream", productCtr.StreamState)
	}

	products := server.Group("/products")
	{
		products.POST("", productCtr.CreateProduct)
		products.POST("/refresh", productCtr.Refresh)
		products.POST("/validate", productCtr.ValidateDraft)
		products.DELETE("/:id", productCtr.DeleteProduct)
	}

	form := server.Group("/form")
	{
		form.POST("/open", productCtr.OpenForm)
		form.POST("/cancel", productCtr.CancelForm)
		form.PUT("/draft", productCtr.UpdateDraft)
	}

	return server
}
