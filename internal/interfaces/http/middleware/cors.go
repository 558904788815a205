package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig holds CORS middleware configuration
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       time.Duration
}

// DefaultCORSConfig allows no origin until one is configured
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}
}

// CORS returns the gin-contrib/cors middleware for cfg. With no allowed
// origins it is a no-op, so cross-origin requests get no CORS headers.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	if len(cfg.AllowOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	defaults := DefaultCORSConfig()
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = defaults.AllowMethods
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = defaults.AllowHeaders
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = defaults.MaxAge
	}

	c := cors.Config{
		AllowMethods:  cfg.AllowMethods,
		AllowHeaders:  cfg.AllowHeaders,
		ExposeHeaders: []string{RequestIDHeader, "Content-Disposition"},
		MaxAge:        cfg.MaxAge,
	}
	if slices.Contains(cfg.AllowOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	return cors.New(c)
}
