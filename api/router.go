package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fyerfyer/treaty-aligner/api/handler"
	"github.com/fyerfyer/treaty-aligner/api/middleware"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(alignHandler *handler.AlignHandler) *gin.Engine {
	handler.RegisterValidators()

	router := gin.New()

	// 应用全局中间件
	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	router.Use(Cors())

	// 在调试模式下记录请求体和响应体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
		router.Use(middleware.ResponseLogger())
	}

	api := router.Group("/api")
	{
		// 对齐两个上传文档 - POST /api/align
		api.POST("/align", alignHandler.AlignDocuments)

		// 对齐段落文本 - POST /api/align/text
		api.POST("/align/text", alignHandler.AlignText)

		// 提取文档段落 - POST /api/extract
		api.POST("/extract", alignHandler.ExtractDocument)

		// 健康检查 - GET /api/health
		api.GET("/health", alignHandler.Health)
	}

	router.NoRoute(func(c *gin.Context) {
		middleware.HandleError(c, middleware.NewNotFoundError("route not found"))
	})

	return router
}

// Cors 跨域资源共享中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
