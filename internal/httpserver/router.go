package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/service"
)

// Deps bundles everything the router needs.
type Deps struct {
	Logger *slog.Logger
	DB     *gorm.DB

	Users    *service.UserService
	Carts    *service.CartService
	Purchase *service.PurchaseService
	Catalog  *service.CatalogService
	Messages *service.MessageService
	Search   Searcher

	JWTSecret []byte
}

func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.Recover())
	e.Use(RequestLogger(d.Logger))

	e.GET("/health/live", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "error", "message": "database unavailable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	sessions := &SessionHTTP{Svc: d.Users}
	users := &UserHTTP{Svc: d.Users}
	products := &ProductHTTP{Svc: d.Catalog, Search: d.Search}
	carts := &CartHTTP{Svc: d.Carts, Purchase: d.Purchase}
	messages := &MessageHTTP{Svc: d.Messages}

	auth := RequireAuth(d.JWTSecret)
	adminOnly := RequireRoles(models.RoleAdmin)
	canSell := RequireRoles(models.RoleAdmin, models.RolePremium)

	api := e.Group("/api")

	s := api.Group("/sessions")
	s.POST("/register", sessions.Register)
	s.POST("/login", sessions.Login)
	s.POST("/refresh", sessions.Refresh)
	s.POST("/logout", sessions.Logout)
	s.GET("/current", sessions.Current, auth)
	s.POST("/forgot-password", sessions.ForgotPassword)
	s.POST("/reset-password/:token", sessions.ResetPassword)
	s.PUT("/premium/:uid", sessions.TogglePremium, auth)

	u := api.Group("/users", auth)
	u.PUT("/:uid/profile", users.UpdateProfile)
	u.POST("/:uid/documents", users.UpdateDocuments)
	u.PUT("/:uid/role", users.SetRole, adminOnly)
	u.DELETE("/:uid", users.Delete, adminOnly)
	u.DELETE("/inactive", users.DeleteInactive, adminOnly)
	u.GET("/:uid/tickets", carts.ListTickets)

	tk := api.Group("/tickets", auth)
	tk.GET("/:tid", carts.GetTicket)

	p := api.Group("/products")
	p.GET("", products.List)
	p.GET("/search", products.SearchProducts)
	p.GET("/:pid", products.Get)
	p.POST("", products.Create, auth, canSell)
	p.PUT("/:pid", products.Update, auth, canSell)
	p.DELETE("/:pid", products.Delete, auth, canSell)
	p.POST("/mocking/regenerate", products.RegenerateMocks, auth, adminOnly)

	ct := api.Group("/carts", auth)
	ct.GET("/:cid", carts.GetCart)
	ct.POST("/:cid/products/:pid", carts.AddItem)
	ct.PUT("/:cid/products/:pid", carts.UpdateItem)
	ct.DELETE("/:cid/products/:pid", carts.RemoveItem)
	ct.DELETE("/:cid", carts.ClearItems)
	ct.GET("/:cid/purchase", carts.PurchaseCart)

	m := api.Group("/messages")
	m.GET("", messages.List)
	m.POST("", messages.Create, auth)
	m.DELETE("/:id", messages.Delete, auth, adminOnly)
}
