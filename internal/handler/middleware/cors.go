package middleware

import (
	"log/slog"
	"slices"

	"rental-engine/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewCORSMiddleware applies the configured policy. Browsers always get to
// read the request id and the Location of a placed order.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     withHeaders(cfg.AllowHeaders, RequestIDHeader),
		ExposeHeaders:    withHeaders(cfg.ExposeHeaders, RequestIDHeader, "Location"),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	slog.Info("CORS middleware initialized",
		"allow_origins", corsCfg.AllowOrigins,
		"expose_headers", corsCfg.ExposeHeaders)
	return cors.New(corsCfg)
}

func withHeaders(base []string, extra ...string) []string {
	out := slices.Clone(base)
	for _, h := range extra {
		if !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	return out
}
