package router

import (
	"time"

	"expensetracker/api"
	"expensetracker/config"
	_ "expensetracker/docs"
	"expensetracker/middleware"
	"expensetracker/service"
	"expensetracker/store"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 设置路由
// 身份服务客户端由 main 构造后注入，不依赖包级全局状态
func SetupRouter(cfg *config.Config, db *gorm.DB, identity *service.IdentityClient) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	expenseStore := store.NewExpenseStore(db)
	userStore := store.NewUserStore(db)
	reportService := service.NewReportService(expenseStore)
	emailService := service.NewEmailService(&cfg.Email)

	authHandler := api.NewAuthHandler(identity, userStore)
	expenseHandler := api.NewExpenseHandler(expenseStore)
	reportHandler := api.NewReportHandler(reportService, emailService)
	exportHandler := api.NewExportHandler(expenseStore)

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录，带限流）
		auth := v1.Group("/auth")
		{
			loginLimit := middleware.RateLimit(10, time.Minute)
			auth.POST("/register", loginLimit, authHandler.Register)
			auth.POST("/login", loginLimit, authHandler.Login)
		}

		// 消费类别（无需登录，固定枚举）
		v1.GET("/categories", expenseHandler.GetCategories)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.Auth(identity))
		{
			// 用户相关
			authorized.POST("/auth/logout", authHandler.Logout)
			authorized.GET("/auth/profile", authHandler.GetProfile)

			// 消费记录相关
			expenses := authorized.Group("/expenses")
			{
				expenses.POST("", expenseHandler.Create)
				expenses.GET("", expenseHandler.List)
				expenses.GET("/:id", expenseHandler.Get)
				expenses.PUT("/:id", expenseHandler.Update)
				expenses.DELETE("/:id", expenseHandler.Delete)
			}

			// 报表相关
			reports := authorized.Group("/reports")
			{
				reports.GET("/monthly", reportHandler.Monthly)
				reports.GET("/category", reportHandler.Category)
				reports.POST("/monthly/email", reportHandler.EmailMonthly)
			}

			// 导出相关
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
