// internal/api/routes/routes.go
package routes

import (
	"net/http"
	"slices"
	"time"

	"chemnitz-facilities-api/config"
	"chemnitz-facilities-api/internal/account"
	"chemnitz-facilities-api/internal/api/handlers"
	"chemnitz-facilities-api/internal/api/middleware"
	"chemnitz-facilities-api/internal/database"
	"chemnitz-facilities-api/internal/facility"
	"chemnitz-facilities-api/internal/favorite"
	"chemnitz-facilities-api/internal/metrics"
	"chemnitz-facilities-api/internal/models"
	"chemnitz-facilities-api/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the components the router wires into handlers.
type Deps struct {
	Cfg            config.Config
	Store          database.Store
	Resolver       *facility.Resolver
	Accounts       *account.Service
	Favorites      *favorite.Service
	Hub            *socket.Hub
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         *zap.Logger
}

// categoryPaths maps URL segments to facility categories.
var categoryPaths = []struct {
	path     string
	category models.Category
}{
	{"/kindergartens", models.CategoryKindergarten},
	{"/schools", models.CategorySchool},
	{"/social-child-projects", models.CategorySocialChildProject},
	{"/social-teenage-projects", models.CategorySocialTeenageProject},
}

func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Logger))
	router.Use(middleware.Metrics(d.Metrics))
	router.Use(cors.New(corsConfig(d.Cfg.CORS)))

	facilityHandler := &handlers.FacilityHandler{Resolver: d.Resolver}
	userHandler := &handlers.UserHandler{Accounts: d.Accounts}
	favoriteHandler := &handlers.FavoriteHandler{Favorites: d.Favorites}
	webSocketHandler := &handlers.WebSocketHandler{Hub: d.Hub, Accounts: d.Accounts, Logger: d.Logger}
	healthHandler := &handlers.HealthHandler{Store: d.Store}

	router.GET("/healthz", healthHandler.Health)
	if d.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	apiV1 := router.Group("/api/v1")
	{
		// === Public routes ===
		for _, cp := range categoryPaths {
			group := apiV1.Group(cp.path)
			group.GET("", facilityHandler.ListCategory(cp.category))
			group.GET("/:id", facilityHandler.GetInCategory(cp.category))
		}

		facilities := apiV1.Group("/facilities")
		{
			facilities.GET("", facilityHandler.GetAllFacilities)
			facilities.GET("/export", facilityHandler.ExportFacilities)
			facilities.GET("/:id", facilityHandler.GetFacilityByID)
		}

		apiV1.POST("/signup", userHandler.Signup)
		apiV1.POST("/login", userHandler.Login)
		// OAuth2 password-grant clients post to the token URL.
		apiV1.POST("/token", userHandler.Login)

		// Authenticates from the query string itself.
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === Routes requiring a bearer token ===
		me := apiV1.Group("/users/me")
		me.Use(middleware.Authenticate(d.Accounts))
		{
			me.GET("", userHandler.GetMe)
			me.PUT("", userHandler.UpdateMe)
			me.DELETE("", userHandler.DeleteMe)

			me.POST("/favorite", favoriteHandler.SetFavorite)
			me.GET("/favorite", favoriteHandler.GetFavorite)
			me.DELETE("/favorite", favoriteHandler.ClearFavorite)
		}
	}

	return router
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	return c
}
