package middleware

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"coffee-quality-api/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupCORS allows the methods the router actually serves. "*" allows
// every origin without credentials; a list allows only those origins,
// with the session cookie.
func SetupCORS(cfg config.CORSConfig, routes gin.RoutesInfo) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  routeMethods(routes),
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	origins := allowedOrigins(cfg.AllowedOrigins)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return cors.New(c)
}

func routeMethods(routes gin.RoutesInfo) []string {
	seen := map[string]bool{http.MethodOptions: true}
	for _, r := range routes {
		seen[r.Method] = true
	}
	methods := make([]string, 0, len(seen))
	for m := range seen {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

func allowedOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
