package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// Browser origins allowed to call the API: the Vite dev server and the
// deployed terminal frontends. Matching is by host so http/https and a
// default port all resolve to the same entry.
var allowedHosts = map[string]bool{
	"localhost:3000":      true,
	"localhost:5173":      true,
	"127.0.0.1:3000":      true,
	"127.0.0.1:5173":      true,
	"pos.kinthithe.co.ke": true,
	"www.kinthithe.co.ke": true,
	"kinthithe.co.ke":     true,
}

// CORSMiddleware reflects the Origin header back when its host is on the
// allowlist and short-circuits preflight requests. The M-Pesa gateway posts
// server-to-server without an Origin, so callbacks pass through untouched.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := strings.TrimSpace(strings.TrimSuffix(c.GetHeader("Origin"), "/"))
		if originAllowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Origin, Authorization, Cache-Control, X-Requested-With")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func originAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	// Default ports collapse onto the bare host.
	if h, p, ok := strings.Cut(host, ":"); ok && (p == "443" || p == "80") {
		host = h
	}
	return allowedHosts[host]
}
