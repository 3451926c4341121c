package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sagarchy-05/ecommerce-backend/internal/auth"
	"github.com/sagarchy-05/ecommerce-backend/internal/config"
	"github.com/sagarchy-05/ecommerce-backend/internal/handlers"
	"github.com/sagarchy-05/ecommerce-backend/internal/metrics"
)

type Server struct {
	httpServer *http.Server
	router     *gin.Engine
}

// New wires every route. Authentication runs per route group; admin-only
// groups add RequireAdmin on top.
func New(cfg *config.Config, h *handlers.Handlers, issuer *auth.TokenIssuer, db *sql.DB) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), metrics.Middleware())

	router.GET("/health", handlers.Health)
	router.GET("/ready", handlers.Ready(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticated := auth.Authenticate(issuer)
	adminOnly := auth.RequireAdmin()

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/verify-email/:token", h.VerifyEmail)
		}

		users := api.Group("/user", authenticated)
		{
			users.GET("/profile", h.GetProfile)
			users.PUT("/profile", h.UpdateProfile)
			users.DELETE("/profile", h.DeleteProfile)

			users.GET("/all", adminOnly, h.ListUsers)
			users.GET("/:id", adminOnly, h.GetUser)
			users.PUT("/:id", adminOnly, h.UpdateUser)
			users.DELETE("/:id", adminOnly, h.DeleteUser)
		}

		addresses := api.Group("/addresses", authenticated)
		{
			addresses.POST("", h.CreateAddress)
			addresses.GET("", h.ListAddresses)
			addresses.GET("/:id", h.GetAddress)
			addresses.PUT("/:id", h.UpdateAddress)
			addresses.DELETE("/:id", h.DeleteAddress)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", h.ListCategories)
			categories.GET("/:id", h.GetCategory)
			categories.POST("", authenticated, adminOnly, h.CreateCategory)
			categories.PUT("/:id", authenticated, adminOnly, h.UpdateCategory)
			categories.DELETE("/:id", authenticated, adminOnly, h.DeleteCategory)
		}

		products := api.Group("/products")
		{
			products.GET("", h.ListProducts)
			products.GET("/search", h.SearchProducts)
			products.GET("/category/:categoryId", h.ListProductsByCategory)
			products.GET("/:id", h.GetProduct)
			products.POST("", authenticated, adminOnly, h.CreateProduct)
			products.PUT("/:id", authenticated, adminOnly, h.UpdateProduct)
			products.DELETE("/:id", authenticated, adminOnly, h.DeleteProduct)
		}

		orders := api.Group("/orders", authenticated)
		{
			orders.POST("", h.PlaceOrder)
			orders.GET("/all", adminOnly, h.ListAllOrders)
			orders.GET("", h.ListMyOrders)
			orders.GET("/:id", h.GetOrder)
			orders.PUT("/:id", adminOnly, h.EditOrder)
			orders.DELETE("/:id", h.CancelOrder)
		}

		images := api.Group("/product-images")
		{
			images.GET("/:productId", h.ListImages)
			images.POST("/upload", authenticated, adminOnly, h.UploadImage)
			images.DELETE("/:id", authenticated, adminOnly, h.DeleteImage)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{httpServer: srv, router: router}
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
