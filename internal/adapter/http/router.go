package http

import (
	"github.com/carloscruz65/domrealce-site-sub000/internal/adapter/http/middleware"
	"github.com/carloscruz65/domrealce-site-sub000/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(oh *OrderHandler, ph *PaymentHandler, ah *AuthHandler, ch *ContentHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/orders", oh.CreateOrder)
		// gin's tree cannot hold the static "number" segment next to the
		// ":id" wildcard, so both GET lookups share one route.
		api.GET("/orders/*selector", oh.GetOrder)
		api.POST("/orders/:id/payment-state", oh.SetPaymentState)

		api.POST("/payments/create", ph.CreatePayment)
		api.POST("/payments/mbway/status", ph.MBWayStatus)
		api.GET("/payments/callback", ph.Callback)

		api.POST("/admin/login", ah.Login)

		admin := api.Group("/admin", authz.RequireAdmin())
		{
			admin.GET("/orders", oh.ListOrders)
			admin.PUT("/orders/:id", oh.UpdateOrder)
			admin.PUT("/orders/:id/status", oh.UpdateOrderStatus)
			admin.DELETE("/orders/:id", oh.DeleteOrder)

			admin.GET("/pages", ch.ListPages)
			admin.GET("/pages/:slug", ch.GetPage)
			admin.PUT("/pages/:slug", ch.SavePage)
			admin.GET("/media", ch.GetMedia)
			admin.POST("/media/reindex", ch.Reindex)
		}
	}

	return r
}
