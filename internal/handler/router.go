package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/handler/api"
	"rental-engine/internal/handler/middleware"
	"rental-engine/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	logger *slog.Logger,
	cartHandler *api.CartHandler,
	orderHandler *api.OrderHandler,
	paymentHandler *api.PaymentHandler,
	walletHandler *api.WalletHandler,
	authMiddleware *middleware.AuthMiddleware,
	callbackVerifier middleware.PayloadVerifier,
) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, cartHandler, orderHandler, paymentHandler, walletHandler, authMiddleware, callbackVerifier)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.RequestLogging(logger))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	cartHandler *api.CartHandler,
	orderHandler *api.OrderHandler,
	paymentHandler *api.PaymentHandler,
	walletHandler *api.WalletHandler,
	authMiddleware *middleware.AuthMiddleware,
	callbackVerifier middleware.PayloadVerifier,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	customerOnly := authMiddleware.RequireRole(actor.RoleCustomer)

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup, []route{
			{Method: http.MethodPost, Path: "/pricing/quote", Handler: cartHandler.Quote},
			{Method: http.MethodPost, Path: "/payments/callback", Handler: paymentHandler.Callback,
				Mw: []gin.HandlerFunc{middleware.RequireSignature(callbackVerifier)}},
		})

		cart := apiGroup.Group("/cart")
		cart.Use(authMiddleware.RequireAuth(), customerOnly)
		{
			addRoutes(cart, []route{
				{Method: http.MethodGet, Path: "", Handler: cartHandler.Get},
				{Method: http.MethodDelete, Path: "", Handler: cartHandler.Clear},
				{Method: http.MethodPost, Path: "/lines", Handler: cartHandler.AddLine},
				{Method: http.MethodPatch, Path: "/lines", Handler: cartHandler.UpdateQuantity},
				{Method: http.MethodDelete, Path: "/lines", Handler: cartHandler.RemoveLine},
				{Method: http.MethodPost, Path: "/coupon", Handler: cartHandler.ApplyCoupon},
				{Method: http.MethodDelete, Path: "/coupon", Handler: cartHandler.RemoveCoupon},
			})
		}

		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			addRoutes(orders, []route{
				{Method: http.MethodPost, Path: "", Handler: orderHandler.Place, Mw: []gin.HandlerFunc{customerOnly}},
				{Method: http.MethodGet, Path: "", Handler: orderHandler.List},
				{Method: http.MethodGet, Path: "/:id", Handler: orderHandler.Get},
				{Method: http.MethodPost, Path: "/:id/transitions", Handler: orderHandler.Transition},
				{Method: http.MethodGet, Path: "/:id/invoice", Handler: orderHandler.Invoice},
				{Method: http.MethodPost, Path: "/:id/payments", Handler: paymentHandler.Pay},
			})
		}

		invoices := apiGroup.Group("/invoices")
		invoices.Use(authMiddleware.RequireAuth())
		{
			addRoutes(invoices, []route{
				{Method: http.MethodGet, Path: "/:id/payments", Handler: orderHandler.InvoicePayments},
			})
		}

		wallet := apiGroup.Group("/wallet")
		wallet.Use(authMiddleware.RequireAuth())
		{
			addRoutes(wallet, []route{
				{Method: http.MethodGet, Path: "", Handler: walletHandler.Get},
				{Method: http.MethodPost, Path: "/top-up", Handler: walletHandler.TopUp},
				{Method: http.MethodPost, Path: "/withdraw", Handler: walletHandler.Withdraw},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
