package middleware

import (
	"context"

	"github.com/gatherly/gatherly/internal/types"
	"github.com/gin-gonic/gin"
)

// OwnerContextMiddleware resolves the calling owner from the X-Owner-ID
// header. Authentication proper is out of scope; this keeps the owner
// identity flowing through the request context the same way it would with a
// real auth layer in front.
func OwnerContextMiddleware(c *gin.Context) {
	if ownerID := c.GetHeader(types.HeaderOwnerID); ownerID != "" {
		ctx := context.WithValue(c.Request.Context(), types.CtxOwnerID, ownerID)
		c.Request = c.Request.WithContext(ctx)
	}
	c.Next()
}
