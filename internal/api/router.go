package api

import (
	"net/http"

	v1 "github.com/gatherly/gatherly/internal/api/v1"
	"github.com/gatherly/gatherly/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Owner     *v1.OwnerHandler
	Community *v1.CommunityHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.OwnerContextMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	owners := router.Group("/owners")
	{
		owners.POST("", handlers.Owner.CreateOwner)
		owners.GET("/:id", handlers.Owner.GetOwner)
		owners.POST("/:id/cards", handlers.Owner.SetDefaultCard)
		owners.GET("/:id/upcoming-invoice", handlers.Owner.GetUpcomingInvoice)
	}

	communities := router.Group("/communities")
	{
		communities.POST("", handlers.Community.UpsertCommunity)
		communities.GET("", handlers.Community.ListCommunities)
		communities.GET("/:id", handlers.Community.GetCommunity)
		communities.DELETE("/:id", handlers.Community.DeleteCommunity)
		communities.POST("/:id/activate", handlers.Community.ActivateCommunity)
		communities.POST("/:id/deactivate", handlers.Community.DeactivateCommunity)
	}
}
