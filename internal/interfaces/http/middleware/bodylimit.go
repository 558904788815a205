package middleware

import (
	"net/http"

	"github.com/cookbook/api/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit rejects bodies over maxBytes. A declared Content-Length is
// checked up front, chunked bodies fail while being read by BindJSON.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewDetail(dto.MsgBodyTooLarge))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
