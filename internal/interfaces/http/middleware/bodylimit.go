package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leeyunbo/house-ping-sub000/internal/interfaces/http/dto"
)

// BodyLimit rejects requests whose body exceeds maxBytes. Declared lengths
// are checked up front; chunked bodies are capped by MaxBytesReader while
// the handler reads.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodePayloadTooLarge, "request body exceeds the allowed size"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
