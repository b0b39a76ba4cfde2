package app

import (
	"hackassist_web/internal/config"
	"hackassist_web/internal/middleware"
	"hackassist_web/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	// 以下路由都需要识别浏览器客户端
	client := router.Group("/")
	client.Use(middleware.ClientMiddleware(a.Registry, cfg.Session))

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(client, c)

	// 2. 引导向导
	a.registerAuthRoutes(client, c)

	// 3. 需要完成引导的路由
	guarded := client.Group("/")
	guarded.Use(middleware.RequireOnboarded())
	{
		a.registerDashboardRoutes(guarded, c)
		a.registerTeamRoutes(guarded, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.RouterGroup, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/session", c.session.GetSession)
		public.PUT("/session/role", c.session.SetRole)
		public.POST("/session/logout", c.session.Logout)

		public.GET("/chat", c.chat.GetChat)
		public.POST("/chat", c.chat.Send)
		public.POST("/chat/register", c.chat.Register)

		public.GET("/hackathons", c.dashboard.ListHackathons)
		public.GET("/hackathon/:id", c.dashboard.GetHackathon)
	}
}

func (a *App) registerAuthRoutes(router *gin.RouterGroup, c *controllers) {
	auth := router.Group("/auth")
	{
		auth.GET("", c.auth.GetWizard)
		auth.POST("/mode", c.auth.SetMode)
		auth.POST("/submit", c.auth.Submit)
		auth.POST("/department", c.auth.SelectDepartment)
		auth.POST("/experience", c.auth.SelectExperience)
		auth.POST("/skills/toggle", c.auth.ToggleSkill)
		auth.POST("/skills/confirm", c.auth.ConfirmSkills)
		auth.POST("/interests/toggle", c.auth.ToggleInterest)
		auth.POST("/profile", c.auth.SubmitProfile)
	}
}

func (a *App) registerDashboardRoutes(router *gin.RouterGroup, c *controllers) {
	dashboard := router.Group("/app")
	{
		dashboard.GET("", c.dashboard.GetDashboard)
		dashboard.GET("/recommendations", c.dashboard.GetRecommendations)
		dashboard.GET("/progress", c.dashboard.GetProgress)
		dashboard.GET("/progress/export", c.dashboard.ExportProgress)
		dashboard.POST("/roadmap", c.dashboard.GenerateRoadmap)
		dashboard.GET("/analytics", c.dashboard.GetAnalytics)
		dashboard.POST("/sync", c.dashboard.Sync)
	}
}

func (a *App) registerTeamRoutes(router *gin.RouterGroup, c *controllers) {
	register := router.Group("/register")
	{
		// 缺少活动ID时同样进入流程，由流程提示并跳转
		register.GET("", c.team.Enter)
		register.GET("/:hackathonId", c.team.Enter)
		register.POST("/:hackathonId/mode", c.team.SetMode)
		register.POST("/:hackathonId/abort", c.team.Abort)
		register.POST("/:hackathonId/create", c.team.Create)
		register.POST("/:hackathonId/join", c.team.Join)
		register.POST("/:hackathonId/return", c.team.Return)
	}
}
