package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/favcart/internal/db"
	authmw "github.com/Skotchmaster/favcart/internal/middleware/auth"
	"github.com/Skotchmaster/favcart/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/favcart/internal/middleware/logging"
)

type Deps struct {
	DB          *gorm.DB
	Auth        *AuthHTTP
	Catalog     *CatalogHTTP
	Cart        *CartHTTP
	RequireAuth echo.MiddlewareFunc
	// CSRF is nil when protection is disabled.
	CSRF *csrf.Config
}

type Options struct {
	CORSOrigins []string
	BodyLimit   string
}

// NewEcho builds the server with the middleware chain shared by every route.
func NewEcho(logger *slog.Logger, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()

	if opts.BodyLimit == "" {
		opts.BodyLimit = "8M"
	}

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	if len(opts.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, "X-CSRF-Token"},
			AllowCredentials: true,
		}))
	}
	e.Use(middleware.BodyLimit(opts.BodyLimit))
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, d.DB); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api")
	if d.CSRF != nil {
		api.Use(csrf.Middleware(*d.CSRF))
	}
	requireAuth := d.RequireAuth

	auth := api.Group("/auth")
	auth.POST("/signup", d.Auth.SignUp)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.LogOut)
	auth.GET("/check", d.Auth.Check, requireAuth)
	auth.PUT("/update-profile", d.Auth.UpdateProfile, requireAuth)
	auth.POST("/favorite/:productId", d.Auth.ToggleFavorite, requireAuth)

	products := api.Group("/products")
	products.GET("/getproducts", d.Catalog.GetProducts)
	products.GET("/getproducts/:id", d.Catalog.GetProduct)
	products.POST("/addproduct", d.Catalog.CreateProduct, requireAuth)
	products.PUT("/:id", d.Catalog.UpdateProduct, requireAuth)
	products.DELETE("/:id", d.Catalog.DeleteProduct, requireAuth)
	products.PATCH("/:id/favorite", d.Auth.ToggleFavorite, requireAuth)

	cart := api.Group("/cart", requireAuth)
	cart.GET("", d.Cart.GetCart)
	cart.POST("/add", d.Cart.AddToCart)
	cart.DELETE("/remove/:productId", d.Cart.RemoveFromCart)
	cart.PATCH("/update", d.Cart.UpdateQuantity)
}

// CSRFSkipPaths are the unauthenticated entry points that establish a session.
func CSRFSkipPaths() []string {
	return []string{"/api/auth/signup", "/api/auth/login", "/api/auth/refresh"}
}

// NewRequireAuth wires the auto-refreshing session check to the auth service.
func NewRequireAuth(accessSecret []byte, r authmw.Refresher, cookieSecure bool) echo.MiddlewareFunc {
	return authmw.NewAutoRefreshMiddleware(accessSecret, r, cookieSecure).RequireAuth
}
