package app

import (
	"exam_app_backend/docs"
	"exam_app_backend/internal/config"
	"exam_app_backend/internal/middleware"
	"exam_app_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/exams/topics", c.exam.GetTopics)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		exams := authGroup.Group("/exams")
		{
			exams.GET("/start", c.exam.StartExam)
			exams.POST("/save_result", c.exam.SaveResult)
			exams.GET("/history", c.exam.GetHistory)
			exams.GET("/history/:attemptId", c.exam.GetAttemptDetail)
		}
	}
}
