package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	orderhttp "github.com/Apurer/order-desk-api/internal/domains/orders/adapters/http"
	apierrors "github.com/Apurer/order-desk-api/internal/shared/errors"
)

// RouterDeps are the collaborators mounted on the HTTP router.
type RouterDeps struct {
	ServiceName string
	Version     string
	Orders      *orderhttp.Handler
	// Metrics is optional; /metrics is only mounted when set.
	Metrics http.Handler
}

// NewRouter builds the gin engine with middleware, probes and the order routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		cors.Default(),
		otelgin.Middleware(deps.ServiceName),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": deps.Version})
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}
	if deps.Orders != nil {
		deps.Orders.Register(router)
	}
	router.NoRoute(func(c *gin.Context) {
		apierrors.Respond(c, apierrors.ErrNotFound.WithDetail("no route for "+c.Request.Method+" "+c.Request.URL.Path))
	})
	return router
}
