package identity

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/pkg/response"
)

const (
	ViewerIDKey   = "viewer_id"
	ViewerNameKey = "viewer_name"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// RequireAuth returns a Gin middleware that validates bearer tokens with the
// provider and stores the viewer identity in the request context.
func RequireAuth(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Unauthorized(c, "invalid authorization format")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, BearerPrefix)
		viewer, err := provider.Verify(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		c.Set(ViewerIDKey, viewer.ID)
		c.Set(ViewerNameKey, viewer.Name)

		c.Next()
	}
}

// CurrentViewer extracts the authenticated viewer from the Gin context.
func CurrentViewer(c *gin.Context) domain.Viewer {
	viewer := domain.Viewer{}
	if id, exists := c.Get(ViewerIDKey); exists {
		viewer.ID = id.(string)
	}
	if name, exists := c.Get(ViewerNameKey); exists {
		viewer.Name = name.(string)
	}
	return viewer
}
