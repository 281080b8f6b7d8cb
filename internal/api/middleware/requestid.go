package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the header carrying the request identifier.
const HeaderRequestID = "X-Request-ID"

// contextKeyRequestID is the gin context key for the request identifier.
const contextKeyRequestID = "request_id"

// RequestID assigns each request an identifier, honoring one supplied by
// the caller, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the request identifier assigned by RequestID, or
// an empty string when the middleware is not installed.
func GetRequestID(c *gin.Context) string {
	return c.GetString(contextKeyRequestID)
}
