package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		user := "-"
		if id, ok := UserID(c); ok {
			user = id.String()
		}

		log.Printf("[%s] %s %s - %d - %v - %s user=%s",
			c.GetString(requestIDKey),
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			user,
		)
	}
}
