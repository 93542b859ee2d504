package router

import (
	"github.com/blues/fundsync/internal/handler"
	"github.com/gin-gonic/gin"
)

// Setup 组装路由
func Setup(campaignHandler *handler.CampaignHandler, lifecycleHandler *handler.LifecycleHandler) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "fundsync",
		})
	})

	v1 := r.Group("/api/v1")
	{
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.GET("/:id/stats", campaignHandler.GetCampaignStats)
			campaigns.GET("/:id/pledges", campaignHandler.GetCampaignPledges)

			campaigns.POST("/:id/deploy", lifecycleHandler.DeployCampaign)
			campaigns.POST("/:id/pledges", lifecycleHandler.ConfirmPledge)
			campaigns.POST("/:id/pledge", lifecycleHandler.SubmitPledge)
			campaigns.POST("/:id/finalize", lifecycleHandler.FinalizeCampaign)
			campaigns.POST("/:id/refund", lifecycleHandler.ClaimRefund)
			campaigns.POST("/:id/reconcile", lifecycleHandler.ReconcileCampaign)
		}

		v1.GET("/creators/:address/campaigns", campaignHandler.GetCreatorCampaigns)
		v1.GET("/backers/:address/pledges", campaignHandler.GetBackerPledges)
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
