package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows cross-origin reads from the given hosts. A "*" entry allows any
// origin, and an empty list leaves responses without CORS headers. Requests
// from any other origin are refused with 403.
func CORS(hosts []string) gin.HandlerFunc {
	if len(hosts) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       time.Hour,
	}
	if slices.Contains(hosts, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = hosts
	}
	return cors.New(cfg)
}
