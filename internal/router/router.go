package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/movielog/internal/handler"
	"github.com/user/movielog/internal/middleware"
)

// NewRouter 创建 gin 引擎并注册路由
func NewRouter(h *handler.Handler, secret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	RegisterRoutes(r, h, secret)
	return r
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler, secret string) {
	// 健康检查与指标
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RequireToken(secret))

	// ==================== 电影目录 ====================
	catalog := api.Group("/catalog")
	{
		catalog.GET("/search", h.SearchMovies)
		catalog.GET("/directors", h.SearchDirector)
		catalog.GET("/movies/:externalId", h.MovieDetails)
	}

	// ==================== 票房榜 ====================
	api.GET("/boxoffice", h.DailyBoxOffice)
	api.POST("/boxoffice/record", h.QuickRecord)

	// ==================== 观影记录 ====================
	records := api.Group("/records")
	{
		records.GET("", h.ListRecords)
		records.POST("", h.CreateRecord)
		records.GET("/period", h.RecordsInPeriod)
		records.PATCH("/:id/review", h.UpdateReview)
		records.DELETE("/:id", h.DeleteRecord)
	}
	api.GET("/locations", h.Locations)

	// ==================== 报表 ====================
	api.GET("/reports/monthly", h.MonthlyReport)
	api.GET("/reports/yearly", h.YearlyReport)
	api.GET("/stats", h.Stats)

	// ==================== 想看 ====================
	wishlist := api.Group("/wishlist")
	{
		wishlist.GET("", h.ListWishlist)
		wishlist.POST("", h.AddWishlist)
		wishlist.DELETE("/:id", h.RemoveWishlist)
		wishlist.POST("/:id/promote", h.PromoteWishlist)
	}

	// ==================== 推荐 ====================
	api.GET("/recommendations", h.Recommendations)
}
