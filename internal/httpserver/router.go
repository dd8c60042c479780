package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	productsvc "storefront/internal/service/product"
	"storefront/internal/state/session"
)

type ProductService interface {
	List(ctx context.Context, q productsvc.Query) (productsvc.Page, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// SessionManager hands out the per-visitor state containers.
type SessionManager interface {
	Get(ctx context.Context, id string) *session.Session
	Ping(ctx context.Context) error
}

// Deps groups the services the router needs.
type Deps struct {
	Sessions    SessionManager
	ProductSvc  ProductService
	CategorySvc CategoryService
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil || deps.ProductSvc == nil || deps.CategorySvc == nil {
		return nil, errors.New("httpserver: sessions, product and category services are required")
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(zap.NewStdLog(logger).Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
			AllowHeaders:     []string{"Content-Type", sessionHeader},
			ExposeHeaders:    []string{sessionHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Sessions))

	api := router.Group("/api")
	api.GET("/products", listProductsHandler(deps.ProductSvc))
	api.GET("/products/:id", getProductHandler(deps.ProductSvc))
	api.GET("/categories", listCategoriesHandler(deps.CategorySvc))

	visitor := api.Group("", sessionMiddleware(deps.Sessions))

	visitor.GET("/cart", getCartHandler)
	visitor.DELETE("/cart", clearCartHandler)
	visitor.POST("/cart/items", addCartItemHandler(deps.ProductSvc))
	visitor.PATCH("/cart/items/:id", updateCartItemHandler)
	visitor.DELETE("/cart/items/:id", removeCartItemHandler)

	visitor.GET("/auth", authStateHandler)
	visitor.POST("/auth/login", loginHandler)
	visitor.POST("/auth/register", registerHandler)
	visitor.POST("/auth/logout", logoutHandler)
	visitor.PATCH("/auth/me", updateUserHandler)
	visitor.DELETE("/auth/error", clearAuthErrorHandler)

	visitor.GET("/ui/loading", loadingStateHandler)
	visitor.POST("/ui/loading", setLoadingHandler)
	visitor.POST("/ui/navigation", navigationHandler)
	visitor.GET("/ui/navbar", navbarStateHandler)
	visitor.POST("/ui/navbar/events", navbarEventHandler)

	return router, nil
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
